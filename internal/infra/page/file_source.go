package page

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/aggregate"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("page")

// FileSource reads a page from disk. A .json file is treated as a ledger of
// transactions and the aggregate datasets are derived from it; anything else
// is parsed as a rendered HTML page.
type FileSource struct {
	Path string
	// Now is the clock used to place the aggregation windows.
	Now func() time.Time
}

// NewFileSource returns a source for path using the wall clock.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, Now: time.Now}
}

// FetchPage reads and decodes the file on every call.
func (s *FileSource) FetchPage(ctx context.Context) (*domain.PagePayload, error) {
	_, span := tracer.Start(ctx, "FileSource.FetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("page.path", s.Path))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.ErrNotFound{Resource: "page", ID: s.Path}
		}
		return nil, fmt.Errorf("reading page: %w", err)
	}

	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		return FromLedger(data, s.Path, s.Now())
	}
	return Extract(bytes.NewReader(data), s.Path)
}

// FromLedger builds a page payload from a JSON array of transactions, the way
// the tracker's server prepares a dashboard: newest first, aggregates at now.
func FromLedger(data []byte, source string, now time.Time) (*domain.PagePayload, error) {
	txs, dropped, err := domain.DecodeTransactions(data)
	if err != nil {
		return nil, &domain.ErrPayload{Dataset: domain.DatasetTransactions, Err: err}
	}
	// Breakdown categories keep ledger order; only the table is sorted.
	ds := aggregate.Build(txs, now)
	txs = aggregate.NewestFirst(txs)

	payload := &domain.PagePayload{Source: source, Datasets: map[domain.DatasetName][]byte{}, Dropped: dropped}

	list := []byte("[]")
	if len(txs) > 0 {
		if list, err = json.Marshal(txs); err != nil {
			return nil, &domain.ErrPayload{Dataset: domain.DatasetTransactions, Err: err}
		}
	}
	payload.Datasets[domain.DatasetTransactions] = list

	members := map[domain.DatasetName]any{
		domain.DatasetMonthlySummary:   ds.Monthly,
		domain.DatasetExpenseBreakdown: ds.Breakdown,
		domain.DatasetCashFlow:         ds.CashFlow,
		domain.DatasetDailySummary:     ds.Daily,
	}
	for name, v := range members {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, &domain.ErrPayload{Dataset: name, Err: err}
		}
		payload.Datasets[name] = b
	}
	return payload, nil
}
