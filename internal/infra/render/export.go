package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/port"

	"golang.org/x/sync/errgroup"
)

// ExportResult lists what ExportCharts wrote and what it left out.
type ExportResult struct {
	Files []string
	Empty []domain.ChartSlot
}

// ExportCharts renders every non-empty chart to dir/<slot>.png, at most limit
// at a time. Empty charts are reported, not written.
func ExportCharts(ctx context.Context, r port.ChartRenderer, charts map[domain.ChartSlot]domain.ChartSpecification, dir string, limit int) (*ExportResult, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}
	if limit < 1 {
		limit = 1
	}

	var (
		mu  sync.Mutex
		res ExportResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for slot, spec := range charts {
		slot, spec := slot, spec
		g.Go(func() error {
			path := filepath.Join(dir, string(slot)+".png")
			err := writeChart(gctx, r, spec, path)

			var empty *domain.ErrEmptyChart
			switch {
			case errors.As(err, &empty):
				mu.Lock()
				res.Empty = append(res.Empty, slot)
				mu.Unlock()
				return nil
			case err != nil:
				return fmt.Errorf("chart %s: %w", slot, err)
			}

			mu.Lock()
			res.Files = append(res.Files, path)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(res.Files)
	sort.Slice(res.Empty, func(i, j int) bool { return res.Empty[i] < res.Empty[j] })
	return &res, nil
}

func writeChart(ctx context.Context, r port.ChartRenderer, spec domain.ChartSpecification, path string) error {
	if spec.Empty {
		return &domain.ErrEmptyChart{Slot: spec.Slot, Message: spec.EmptyMessage}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.RenderChart(ctx, spec, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
