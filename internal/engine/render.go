package engine

import (
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/format"
)

const (
	// NoResultsMessage is the text of the sentinel row.
	NoResultsMessage = "No transactions found."
	// TableColumns is the column count of the transaction table.
	TableColumns = 6

	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// EditTarget is the navigation target of the edit action of a row.
func EditTarget(id string) string { return "/edit_transaction/" + id }

// DeleteTarget is the navigation target of the delete action of a row.
func DeleteTarget(id string) string { return "/delete_transaction/" + id }

// Render produces table rows with the default currency rule.
func Render(transactions []domain.TransactionRecord) []domain.RowDescriptor {
	return RenderWith(format.DefaultCurrency, transactions)
}

// RenderWith produces one row per record, in order. An empty input yields a
// single sentinel row so the table region is never left blank.
func RenderWith(cur format.Currency, transactions []domain.TransactionRecord) []domain.RowDescriptor {
	if len(transactions) == 0 {
		return []domain.RowDescriptor{SentinelRow()}
	}

	rows := make([]domain.RowDescriptor, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, domain.RowDescriptor{
			ID:          t.ID,
			Date:        format.RowDate(t.Timestamp),
			Description: t.Description,
			Category:    t.Category,
			TypeLabel:   string(t.Type),
			TypeClass:   "type-" + string(t.Type),
			Amount:      cur.FormatAmount(t.Amount),
			Actions: []domain.RowAction{
				{Kind: ActionEdit, Target: EditTarget(t.ID)},
				{Kind: ActionDelete, Target: DeleteTarget(t.ID)},
			},
		})
	}
	return rows
}

// SentinelRow is the placeholder row shown when no transaction matches.
func SentinelRow() domain.RowDescriptor {
	return domain.RowDescriptor{
		Sentinel: true,
		Message:  NoResultsMessage,
		ColSpan:  TableColumns,
	}
}
