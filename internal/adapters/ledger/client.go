// Package ledger implements the client for the remote record store: a
// spreadsheet-style ledger with no uniqueness constraint and no
// read-after-write guarantee.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/raspa/internal/domain/model"
	"github.com/okian/raspa/pkg/logger"
	"github.com/okian/raspa/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultTimeout = 5 * time.Second
	defaultRetries = 3
	defaultBackoff = 500 * time.Millisecond
)

// Client talks to the remote ledger over HTTP. Reads treat the store as an
// unordered, possibly-duplicated row collection; writes are upserts keyed by
// (normalized username, date) that the store may or may not honor as updates.
type Client struct {
	baseURL string
	hc      *http.Client
	retries int
	backoff time.Duration
	logger  logger.Logger
}

// NewClient creates a ledger client with configuration options.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: defaultTimeout},
		retries: defaultRetries,
		backoff: defaultBackoff,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("ledger")
	}

	return c
}

// FetchAll returns every row the store currently holds. A failure is always
// an explicit error, never an empty result: the caller uses absence of a
// record as permission to create a new game, so "could not check" must not
// look like "no data".
func (c *Client) FetchAll(ctx context.Context) ([]model.PlayRecord, error) {
	metrics.RecordLedgerFetch()
	start := time.Now()
	defer func() {
		metrics.RecordLedgerFetchLatency(float64(time.Since(start).Milliseconds()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		metrics.RecordLedgerFetchError()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.RecordLedgerFetchError()
		metrics.RecordErrorByComponent("ledger", "fetch_failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordLedgerFetchError()
		metrics.RecordErrorByComponent("ledger", "fetch_status")
		return nil, fmt.Errorf("%w: status %d", ErrStoreUnavailable, resp.StatusCode)
	}

	var rows []row
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		// A malformed response is indistinguishable from an unavailable
		// store for eligibility purposes.
		metrics.RecordLedgerFetchError()
		metrics.RecordErrorByComponent("ledger", "fetch_malformed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	records := make([]model.PlayRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// Upsert pushes a record keyed by (normalized username, date). The retry
// policy lives here, not in callers: reveal pushes are fire-and-forget from
// the session's point of view, so exhausted retries are logged and reported
// as ErrStoreWriteFailed for telemetry only.
func (c *Client) Upsert(ctx context.Context, rec model.PlayRecord) error {
	body, err := json.Marshal(upsertRequest{
		KeyUsername: model.NormalizeUsername(rec.Username),
		KeyDate:     rec.Date,
		Record:      rowFromRecord(rec),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreWriteFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			metrics.RecordPushRetry()
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrStoreWriteFailed, ctx.Err())
			case <-time.After(c.backoff):
			}
		}

		metrics.RecordPushAttempt()
		lastErr = c.post(ctx, body)
		if lastErr == nil {
			metrics.RecordPushSuccess()
			return nil
		}

		c.logger.Warn(ctx, "ledger upsert attempt failed",
			logger.String("user", model.NormalizeUsername(rec.Username)),
			logger.String("date", rec.Date),
			logger.Int("attempt", attempt+1),
			logger.Error(lastErr),
		)
	}

	metrics.RecordPushFailure()
	metrics.RecordErrorByComponent("ledger", "upsert_failed")
	return fmt.Errorf("%w: %v", ErrStoreWriteFailed, lastErr)
}

// post performs one upsert round trip.
func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
