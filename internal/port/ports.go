// Package port defines the interfaces (ports) between the dashboard service
// and its environment: where pages come from and where charts and tables go.
package port

import (
	"context"
	"io"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
)

// PageSource supplies the raw payloads of one rendered dashboard page.
type PageSource interface {
	FetchPage(ctx context.Context) (*domain.PagePayload, error)
}

// ChartRenderer paints a chart specification onto w.
type ChartRenderer interface {
	RenderChart(ctx context.Context, spec domain.ChartSpecification, w io.Writer) error
}

// TableRenderer writes table rows onto w.
type TableRenderer interface {
	RenderTable(rows []domain.RowDescriptor, w io.Writer) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
