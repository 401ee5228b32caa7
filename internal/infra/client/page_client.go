// Package client holds the HTTP adapters of the dashboard service.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/page"
	"github.com/rupeetrack/rupeetrack-bfa-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// maxPageBytes bounds the size of a fetched page.
const maxPageBytes = 8 << 20

// PageClient fetches the rendered dashboard page from the tracker.
type PageClient struct {
	httpClient *http.Client
	url        string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	now        func() time.Time
}

// NewPageClient creates a new PageClient.
func NewPageClient(httpClient *http.Client, url string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *PageClient {
	return &PageClient{
		httpClient: httpClient,
		url:        url,
		cb:         cb,
		cfg:        cfg,
		now:        time.Now,
	}
}

// FetchPage downloads the page with retry, circuit breaker, and tracing. An
// HTML response is scanned for its embedded payloads; a JSON response is
// taken as a transaction ledger.
func (c *PageClient) FetchPage(ctx context.Context) (*domain.PagePayload, error) {
	ctx, span := tracer.Start(ctx, "PageClient.FetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("page.url", c.url))

	result, err := c.cb.Execute(func() (any, error) {
		var payload *domain.PagePayload
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
			if err != nil {
				return resilience.Permanent(err)
			}
			req.Header.Set("Accept", "text/html, application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return resilience.Permanent(&domain.ErrNotFound{Resource: "page", ID: c.url})
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("page source returned status %d", resp.StatusCode)
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes+1))
			if err != nil {
				return err
			}
			if len(body) > maxPageBytes {
				return resilience.Permanent(&domain.ErrPayload{
					Dataset: domain.DatasetPage,
					Err:     fmt.Errorf("page exceeds %d bytes", maxPageBytes),
				})
			}

			payload, err = c.decode(resp.Header.Get("Content-Type"), body)
			if err != nil {
				return resilience.Permanent(err)
			}
			return nil
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return payload, nil
	})

	if err != nil {
		span.RecordError(err)
		var notFound *domain.ErrNotFound
		var payloadErr *domain.ErrPayload
		switch {
		case errors.As(err, &notFound):
			return nil, notFound
		case errors.As(err, &payloadErr):
			return nil, payloadErr
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, &domain.ErrCircuitOpen{Service: "page"}
		case errors.Is(err, context.DeadlineExceeded):
			return nil, &domain.ErrTimeout{Operation: "PageClient.FetchPage"}
		}
		return nil, &domain.ErrExternalService{Service: "page", Err: err}
	}

	return result.(*domain.PagePayload), nil
}

func (c *PageClient) decode(contentType string, body []byte) (*domain.PagePayload, error) {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/json" {
		return page.FromLedger(body, c.url, c.now())
	}
	return page.Extract(bytes.NewReader(body), c.url)
}
