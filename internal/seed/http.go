package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scout/internal/domain/normalize"
	"github.com/okian/scout/pkg/logger"
)

// HTTPClient wraps http.Client and tags every request with the run id.
type HTTPClient struct {
	client *http.Client
	runID  string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration, runID string) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		runID:  runID,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(RequestIDHeader, c.runID)
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, c.runID)
	return c.client.Do(req)
}

// GetJSON decodes the body of a 200 response into v.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, v interface{}) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decode: %w", url, err)
	}
	return nil
}

// submitRecords posts records in batches using a worker pool.
func submitRecords(ctx context.Context, config *Config, client *HTTPClient, records []normalize.Raw, stats *Stats) error {
	log := logger.Get().Named("seed")
	batches := chunk(records, max(config.BatchSize, 1))
	workers := max(min(config.Workers, len(batches)), 1)
	log.Info(ctx, "submitting records",
		logger.Int("records", len(records)), logger.Int("batches", len(batches)), logger.Int("workers", workers))

	url := config.BaseURL + "/players"

	var (
		submitted  int64
		failed     int64
		accepted   int64
		duplicates int64
		rejected   int64
	)

	batchChan := make(chan []normalize.Raw, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batchChan {
				ack, err := submitBatch(ctx, client, url, batch)
				atomic.AddInt64(&submitted, 1)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "batch failed", logger.Int("size", len(batch)), logger.Error(err))
					}
					continue
				}
				atomic.AddInt64(&accepted, int64(ack.Accepted))
				atomic.AddInt64(&duplicates, int64(ack.Duplicates))
				atomic.AddInt64(&rejected, int64(ack.Rejected))
			}
		}()
	}

	go func() {
		defer close(batchChan)
		for _, batch := range batches {
			select {
			case <-ctx.Done():
				return
			case batchChan <- batch:
			}
		}
	}()

	wg.Wait()

	stats.BatchesSubmitted = int(atomic.LoadInt64(&submitted))
	stats.BatchesFailed = int(atomic.LoadInt64(&failed))
	stats.RecordsAccepted = int(atomic.LoadInt64(&accepted))
	stats.RecordsDuplicate = int(atomic.LoadInt64(&duplicates))
	stats.RecordsRejected = int(atomic.LoadInt64(&rejected))

	log.Info(ctx, "record submission completed",
		logger.Int("accepted", stats.RecordsAccepted),
		logger.Int("duplicates", stats.RecordsDuplicate),
		logger.Int("rejected", stats.RecordsRejected),
		logger.Int("failedBatches", stats.BatchesFailed))

	if err := ctx.Err(); err != nil {
		return err
	}
	if stats.BatchesFailed > 0 {
		return fmt.Errorf("%d of %d batches failed", stats.BatchesFailed, stats.BatchesSubmitted)
	}
	return nil
}

// submitBatch posts one batch. Both 202 and the 429 backpressure answer
// carry counts; anything else is a failure.
func submitBatch(ctx context.Context, client *HTTPClient, url string, batch []normalize.Raw) (Ack, error) {
	var ack Ack
	resp, err := client.Post(ctx, url, batch)
	if err != nil {
		return ack, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusAccepted:
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			return ack, fmt.Errorf("decode ack: %w", err)
		}
		return ack, nil
	case http.StatusTooManyRequests:
		return ack, fmt.Errorf("service applied backpressure")
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ack, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

func chunk(records []normalize.Raw, size int) [][]normalize.Raw {
	var out [][]normalize.Raw
	for start := 0; start < len(records); start += size {
		out = append(out, records[start:min(start+size, len(records))])
	}
	return out
}
