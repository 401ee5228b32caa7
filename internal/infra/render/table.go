package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/port"

	"github.com/olekukonko/tablewriter"
)

// Table output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

var tableHeader = []string{"Date", "Description", "Category", "Type", "Amount", "Actions"}

var _ port.TableRenderer = (*TableWriter)(nil)

// TableWriter renders row descriptors as an ASCII or markdown table.
type TableWriter struct {
	Format string
}

// NewTableWriter validates the format and returns a writer for it.
func NewTableWriter(format string) (*TableWriter, error) {
	switch format {
	case FormatText, FormatMarkdown:
		return &TableWriter{Format: format}, nil
	}
	return nil, &domain.ErrValidation{Field: "format", Message: fmt.Sprintf("unsupported table format %q", format)}
}

// RenderTable writes rows to w. The sentinel row spans the table as a single
// message line.
func (t *TableWriter) RenderTable(rows []domain.RowDescriptor, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(tableHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	if t.Format == FormatMarkdown {
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
	}

	for _, r := range rows {
		if r.Sentinel {
			cells := make([]string, len(tableHeader))
			cells[0] = r.Message
			table.Append(cells)
			continue
		}
		table.Append([]string{
			r.Date,
			r.Description,
			r.Category,
			r.TypeLabel,
			r.Amount,
			actionCell(r.Actions),
		})
	}

	table.Render()
	return nil
}

func actionCell(actions []domain.RowAction) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, a.Kind+" "+a.Target)
	}
	return strings.Join(parts, ", ")
}
