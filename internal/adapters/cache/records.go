package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/okian/raspa/internal/domain/model"
	"github.com/okian/raspa/pkg/logger"
	"github.com/okian/raspa/pkg/metrics"
)

// Logical table keys in the key-value store.
const (
	recordsKey      = "records"
	prizeCatalogKey = "prize_catalog"
	latestKeyPrefix = "latest_"
)

// storedRecord is the on-disk shape of a play record.
type storedRecord struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Agent       string    `json:"agent"`
	Prize       int       `json:"prize"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
	IsScratched bool      `json:"is_scratched"`
	IsClaimed   bool      `json:"is_claimed"`
	IP          string    `json:"ip"`
}

func toStored(rec model.PlayRecord) storedRecord {
	return storedRecord{
		ID:          rec.ID,
		Username:    rec.Username,
		Agent:       rec.Agent,
		Prize:       rec.Prize,
		Date:        rec.Date,
		Timestamp:   rec.Timestamp,
		IsScratched: rec.IsScratched,
		IsClaimed:   rec.IsClaimed,
		IP:          rec.IP,
	}
}

func (s storedRecord) record() model.PlayRecord {
	return model.PlayRecord{
		ID:          s.ID,
		Username:    s.Username,
		Agent:       s.Agent,
		Prize:       s.Prize,
		Date:        s.Date,
		Timestamp:   s.Timestamp,
		IsScratched: s.IsScratched,
		IsClaimed:   s.IsClaimed,
		IP:          s.IP,
	}
}

// RecordCache is the local play-record table: a records list keyed by
// (normalized username, date) plus a per-user latest-record index. Writes
// are synchronous; malformed stored state degrades to empty rather than
// failing a read.
type RecordCache struct {
	kv     KeyValueStore
	logger logger.Logger
}

// NewRecordCache creates a record cache over the given store.
func NewRecordCache(kv KeyValueStore, opts ...RecordCacheOption) *RecordCache {
	c := &RecordCache{kv: kv}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("cache")
	}

	return c
}

// Put stores a record, replacing any record with the same identity, and
// updates the per-user latest index. Both writes complete before Put
// returns so a reload right after a state transition observes it.
func (c *RecordCache) Put(ctx context.Context, rec model.PlayRecord) error {
	records := c.load(ctx)

	norm := model.NormalizeUsername(rec.Username)
	replaced := false
	for i, existing := range records {
		if model.NormalizeUsername(existing.Username) == norm && existing.Date == rec.Date {
			records[i] = toStored(rec)
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, toStored(rec))
	}

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := c.kv.Set(recordsKey, data); err != nil {
		return err
	}

	latest, err := json.Marshal(toStored(rec))
	if err != nil {
		return err
	}
	if err := c.kv.Set(latestKeyPrefix+norm, latest); err != nil {
		return err
	}

	metrics.RecordCacheWrite()
	return nil
}

// Latest returns the most recent record cached for a normalized username.
func (c *RecordCache) Latest(ctx context.Context, username string) (model.PlayRecord, bool) {
	norm := model.NormalizeUsername(username)
	data, ok := c.kv.Get(latestKeyPrefix + norm)
	if !ok {
		return model.PlayRecord{}, false
	}

	var stored storedRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		c.degrade(ctx, "latest index", err)
		return model.PlayRecord{}, false
	}
	return stored.record(), true
}

// Get returns the cached record for a (username, date) identity.
func (c *RecordCache) Get(ctx context.Context, username, date string) (model.PlayRecord, bool) {
	norm := model.NormalizeUsername(username)
	for _, stored := range c.load(ctx) {
		if model.NormalizeUsername(stored.Username) == norm && stored.Date == date {
			return stored.record(), true
		}
	}
	return model.PlayRecord{}, false
}

// All returns every cached record.
func (c *RecordCache) All(ctx context.Context) []model.PlayRecord {
	stored := c.load(ctx)
	records := make([]model.PlayRecord, len(stored))
	for i, s := range stored {
		records[i] = s.record()
	}
	return records
}

// load reads the records table, degrading malformed state to empty.
func (c *RecordCache) load(ctx context.Context) []storedRecord {
	data, ok := c.kv.Get(recordsKey)
	if !ok {
		return nil
	}

	var records []storedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.degrade(ctx, "records table", err)
		return nil
	}
	return records
}

func (c *RecordCache) degrade(ctx context.Context, table string, err error) {
	metrics.RecordCacheReadError()
	c.logger.Warn(ctx, "malformed local state treated as empty",
		logger.String("table", table),
		logger.Error(ErrMalformedLocalState),
		logger.Any("cause", err),
	)
}

// PrizeCache is the local prize-catalog table.
type PrizeCache struct {
	kv     KeyValueStore
	logger logger.Logger
}

// NewPrizeCache creates a prize catalog cache over the given store.
func NewPrizeCache(kv KeyValueStore, opts ...PrizeCacheOption) *PrizeCache {
	c := &PrizeCache{kv: kv}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("cache")
	}

	return c
}

// Prizes returns the cached catalog, or ok=false when absent or malformed.
func (c *PrizeCache) Prizes(ctx context.Context) ([]int, bool) {
	data, ok := c.kv.Get(prizeCatalogKey)
	if !ok {
		return nil, false
	}

	var prizes []int
	if err := json.Unmarshal(data, &prizes); err != nil {
		metrics.RecordCacheReadError()
		c.logger.Warn(ctx, "malformed local state treated as empty",
			logger.String("table", "prize catalog"),
			logger.Error(ErrMalformedLocalState),
			logger.Any("cause", err),
		)
		return nil, false
	}
	return prizes, true
}

// PutPrizes replaces the cached catalog.
func (c *PrizeCache) PutPrizes(ctx context.Context, prizes []int) error {
	data, err := json.Marshal(prizes)
	if err != nil {
		return err
	}
	if err := c.kv.Set(prizeCatalogKey, data); err != nil {
		return err
	}
	metrics.RecordCacheWrite()
	return nil
}
