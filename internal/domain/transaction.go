package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the canonical direction of a transaction.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// ParseTransactionType canonicalizes a type label case-insensitively.
// Unknown labels are returned lower-cased with ok=false.
func ParseTransactionType(s string) (TransactionType, bool) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TypeIncome, TypeExpense:
		return t, true
	}
	return t, false
}

// timestampLayouts are tried in order when decoding a transaction timestamp.
// The first one is the layout the tracker persists.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a transaction timestamp in any of the accepted layouts.
// Zone-less layouts are read as wall-clock time in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// TransactionRecord is one income or expense entry as supplied by the page.
// Records are immutable for the lifetime of a page view.
type TransactionRecord struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`

	// set when the payload carried no category key at all
	categoryMissing bool
}

// CategoryOr returns the category, or fallback when the record was decoded
// without a category key. An explicit empty category is kept.
func (t TransactionRecord) CategoryOr(fallback string) string {
	if t.categoryMissing {
		return fallback
	}
	return t.Category
}

// transactionWire is the payload shape: loose id, string timestamp.
type transactionWire struct {
	ID          json.RawMessage `json:"id"`
	Timestamp   string          `json:"timestamp"`
	Description string          `json:"description"`
	Category    *string         `json:"category"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
}

// UnmarshalJSON decodes a record, canonicalizing type and amount.
func (t *TransactionRecord) UnmarshalJSON(data []byte) error {
	var w transactionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := decodeID(w.ID)
	if err != nil {
		return err
	}
	ts, err := ParseTimestamp(w.Timestamp)
	if err != nil {
		return err
	}
	typ, ok := ParseTransactionType(w.Type)
	if !ok {
		return fmt.Errorf("transaction %s: unknown type %q", id, w.Type)
	}

	*t = TransactionRecord{
		ID:              id,
		Timestamp:       ts,
		Description:     w.Description,
		Type:            typ,
		Amount:          w.Amount.Abs(),
		categoryMissing: w.Category == nil,
	}
	if w.Category != nil {
		t.Category = *w.Category
	}
	return nil
}

// MarshalJSON writes the record back in the tracker's payload layout.
func (t TransactionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string          `json:"id"`
		Timestamp   string          `json:"timestamp"`
		Description string          `json:"description"`
		Category    *string         `json:"category,omitempty"`
		Type        TransactionType `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
	}{
		ID:          t.ID,
		Timestamp:   t.Timestamp.Format(timestampLayouts[0]),
		Description: t.Description,
		Category:    t.categoryPtr(),
		Type:        t.Type,
		Amount:      t.Amount,
	})
}

func (t TransactionRecord) categoryPtr() *string {
	if t.categoryMissing {
		return nil
	}
	c := t.Category
	return &c
}

// decodeID accepts both string and numeric identifiers.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("transaction id is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("transaction id: %w", err)
	}
	return n.String(), nil
}

// DecodeTransactions decodes a transaction list payload record by record.
// Malformed records are dropped and counted; a payload that is not a JSON
// array yields an error so the caller can treat the list as absent.
func DecodeTransactions(data []byte) ([]TransactionRecord, int, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, 0, err
	}

	out := make([]TransactionRecord, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		var rec TransactionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	return out, dropped, nil
}
