// Package upstream fetches raw player records from the prediction service
// or from a JSON snapshot file.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Defaults for the prediction service client.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultRateLimit   = 5
	DefaultPageSize    = 100
	DefaultRetries     = 3
	DefaultConcurrency = 4
	InitialBackoff     = 200 * time.Millisecond
	MaxBackoff         = 5 * time.Second

	playersPath = "/api/players"
)

// Source yields a full set of raw records.
type Source interface {
	Fetch(ctx context.Context) ([]normalize.Raw, error)
	Name() string
}

// Client pages through the prediction service's player endpoint.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     logger.Logger

	pageSize        int
	maxRetries      int
	initialBackoff  time.Duration
	concurrency     int
	breakerFailures uint32
	breakerTimeout  time.Duration
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}

	c := &Client{
		baseURL:         u,
		http:            &http.Client{Timeout: DefaultTimeout},
		limiter:         rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		log:             logger.Get().Named("upstream"),
		pageSize:        DefaultPageSize,
		maxRetries:      DefaultRetries,
		initialBackoff:  InitialBackoff,
		concurrency:     DefaultConcurrency,
		breakerFailures: 5,
		breakerTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "prediction-service",
		MaxRequests: 1,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateUpstreamBreakerState(int(to))
			c.log.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return c, nil
}

// Name implements Source.
func (c *Client) Name() string { return "upstream" }

// Fetch implements Source. The first page reports the page count; the rest
// are fetched concurrently and returned in page order.
func (c *Client) Fetch(ctx context.Context) ([]normalize.Raw, error) {
	start := time.Now()
	records, err := c.fetchAll(ctx)
	metrics.RecordUpstreamFetchLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamFetch(c.Name(), "error")
		return nil, err
	}
	metrics.RecordUpstreamFetch(c.Name(), "ok")
	c.log.Info(ctx, "fetched upstream players", logger.Int("count", len(records)),
		logger.Duration("took", time.Since(start)))
	return records, nil
}

func (c *Client) fetchAll(ctx context.Context) ([]normalize.Raw, error) {
	first, pages, err := c.fetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}
	if pages <= 1 {
		return first, nil
	}

	results := make([][]normalize.Raw, pages)
	results[0] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			records, _, err := c.fetchPage(gctx, page)
			if err != nil {
				return err
			}
			results[page-1] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []normalize.Raw
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]normalize.Raw, int, error) {
	u := *c.baseURL
	u.Path += playersPath
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))
	u.RawQuery = q.Encode()

	type pageResult struct {
		records []normalize.Raw
		pages   int
	}
	res, err := c.breaker.Execute(func() (interface{}, error) {
		body, err := c.getWithRetry(ctx, u.String())
		if err != nil {
			return nil, err
		}
		defer func() { _ = body.Close() }()

		records, pages, err := decodeRecords(body)
		if err != nil {
			return nil, err
		}
		return pageResult{records: records, pages: pages}, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetch page %d: %w", page, err)
	}
	pr := res.(pageResult)
	return pr.records, pr.pages, nil
}

// getWithRetry returns the body of a 200 response. 5xx and 429 responses
// and transport errors are retried with exponential backoff.
func (c *Client) getWithRetry(ctx context.Context, target string) (io.ReadCloser, error) {
	backoff := c.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RecordUpstreamRetry()
			c.log.Debug(ctx, "retrying upstream request",
				logger.Int("attempt", attempt), logger.Duration("backoff", backoff), logger.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, MaxBackoff)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		lastErr = fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < http.StatusInternalServerError {
			return nil, lastErr
		}
	}
	return nil, lastErr
}
