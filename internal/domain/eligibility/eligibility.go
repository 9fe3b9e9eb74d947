// Package eligibility decides whether a user may start a new game today and
// reconciles possibly-stale local state with the remote ledger.
package eligibility

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/raspa/internal/domain/model"
	"github.com/okian/raspa/pkg/logger"
	"github.com/okian/raspa/pkg/metrics"
)

// Default engine configuration constants.
const (
	// defaultStaleAfter bounds how long a cached in-progress game survives
	// a day rollover or idle gap.
	defaultStaleAfter = 8 * time.Hour
)

// Outcome classifies an eligibility resolution.
type Outcome string

// Resolution outcomes.
const (
	// OutcomeFresh means no eligible prior record was found and a new one
	// was created.
	OutcomeFresh Outcome = "fresh"

	// OutcomeResume means today's record exists but is not yet scratched.
	OutcomeResume Outcome = "resume"

	// OutcomeBlocked means today's record is already scratched; the caller
	// must present the existing prize, not a new one.
	OutcomeBlocked Outcome = "blocked"
)

// Decision is the result of an eligibility resolution.
type Decision struct {
	Outcome Outcome
	Record  model.PlayRecord

	// SharedIP is the advisory anti-abuse signal: the captured IP already
	// correlates to a different user with a scratched today-record. It is
	// observable only and never blocks play.
	SharedIP bool
}

// Fetcher reads all records from the remote ledger. A failure must surface
// as an error, never as an empty slice; the engine treats absence of a
// record as permission to create a new game.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]model.PlayRecord, error)
}

// RecordCache is the local durable record state the engine falls back to
// and writes through.
type RecordCache interface {
	// Latest returns the most recent record cached for a normalized
	// username, or ok=false when absent.
	Latest(ctx context.Context, username string) (model.PlayRecord, bool)

	// Put stores a record synchronously, replacing any record with the
	// same (normalized username, date) identity.
	Put(ctx context.Context, rec model.PlayRecord) error
}

// Catalog draws a prize for a fresh game.
type Catalog interface {
	Draw(ctx context.Context) int
}

// IPResolver captures the client's network origin, best-effort. An empty
// result weakens the anti-abuse signal but never blocks a decision.
type IPResolver interface {
	Resolve(ctx context.Context) string
}

// noopResolver is the default IPResolver when none is configured.
type noopResolver struct{}

func (noopResolver) Resolve(ctx context.Context) string { return "" }

// Engine merges local cache and remote ledger state into a single
// eligibility decision per login attempt.
type Engine struct {
	fetcher Fetcher
	cache   RecordCache
	catalog Catalog
	ips     IPResolver

	now        func() time.Time
	staleAfter time.Duration

	logger logger.Logger
}

// New constructs an Engine with configuration options.
func New(fetcher Fetcher, cache RecordCache, catalog Catalog, opts ...Option) *Engine {
	e := &Engine{
		fetcher:    fetcher,
		cache:      cache,
		catalog:    catalog,
		ips:        noopResolver{},
		now:        time.Now,
		staleAfter: defaultStaleAfter,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("eligibility")
	}

	return e
}

// Resolve decides, for a login attempt, whether the user resumes an existing
// game, is blocked by a completed one, or starts fresh.
//
// The remote ledger is authoritative when reachable; on fetch failure the
// engine degrades to cache-only evaluation (fail-open), trading duplicate
// protection for availability during outages. A Fresh decision creates the
// new record and writes it to the local cache synchronously before
// returning; the remote store is only written at reveal time.
func (e *Engine) Resolve(ctx context.Context, username, agent string) (Decision, error) {
	norm := model.NormalizeUsername(username)
	if norm == "" {
		return Decision{}, ErrInvalidUsername
	}

	now := e.now()
	today := model.Day(now)
	ip := e.ips.Resolve(ctx)

	rows, err := e.fetcher.FetchAll(ctx)
	remoteOK := err == nil
	if !remoteOK {
		metrics.RecordLedgerFallback()
		e.logger.Warn(ctx, "ledger fetch failed, evaluating from local cache only",
			logger.String("user", norm),
			logger.Error(err),
		)
	}

	sharedIP := remoteOK && e.sharedIP(ctx, rows, norm, today, ip)

	if remoteOK {
		if rec, ok := canonicalToday(rows, norm, today); ok {
			// Keep the cache in step with what the ledger showed us.
			if err := e.cache.Put(ctx, rec); err != nil {
				e.logger.Warn(ctx, "cache write-through failed", logger.Error(err))
			}
			return e.decide(ctx, rec, sharedIP), nil
		}
	}

	if rec, ok := e.cachedToday(ctx, norm, today, now); ok {
		return e.decide(ctx, rec, sharedIP), nil
	}

	rec := model.PlayRecord{
		ID:        uuid.NewString(),
		Username:  strings.TrimSpace(username),
		Agent:     agent,
		Prize:     e.catalog.Draw(ctx),
		Date:      today,
		Timestamp: now,
		IP:        ip,
	}
	if err := e.cache.Put(ctx, rec); err != nil {
		// The cache write is part of the Fresh transition; losing it means
		// a reload could double-grant, so it is logged loudly.
		e.logger.Error(ctx, "failed to cache fresh record", logger.Error(err))
	}

	metrics.RecordResolution(string(OutcomeFresh))
	e.logger.Info(ctx, "fresh game created",
		logger.String("user", norm),
		logger.String("date", today),
		logger.Int("prize", rec.Prize),
	)
	return Decision{Outcome: OutcomeFresh, Record: rec, SharedIP: sharedIP}, nil
}

// decide maps an existing today-record to Resume or Blocked.
func (e *Engine) decide(ctx context.Context, rec model.PlayRecord, sharedIP bool) Decision {
	outcome := OutcomeResume
	if rec.IsScratched {
		outcome = OutcomeBlocked
	}
	metrics.RecordResolution(string(outcome))
	e.logger.Debug(ctx, "existing record resolved",
		logger.String("user", model.NormalizeUsername(rec.Username)),
		logger.String("outcome", string(outcome)),
		logger.Bool("scratched", rec.IsScratched),
	)
	return Decision{Outcome: outcome, Record: rec, SharedIP: sharedIP}
}

// cachedToday returns the cached record for the user if it is still
// honorable: same game day and younger than the stale bound.
func (e *Engine) cachedToday(ctx context.Context, norm, today string, now time.Time) (model.PlayRecord, bool) {
	rec, ok := e.cache.Latest(ctx, norm)
	if !ok {
		return model.PlayRecord{}, false
	}
	if rec.Date != today {
		return model.PlayRecord{}, false
	}
	if now.Sub(rec.Timestamp) > e.staleAfter {
		e.logger.Debug(ctx, "cached record expired",
			logger.String("user", norm),
			logger.Duration("age", now.Sub(rec.Timestamp)),
		)
		return model.PlayRecord{}, false
	}
	return rec, true
}

// sharedIP reports whether ip already belongs to a different user with a
// scratched today-record. Advisory only; surfaced via Decision.SharedIP.
func (e *Engine) sharedIP(ctx context.Context, rows []model.PlayRecord, norm, today, ip string) bool {
	if ip == "" {
		return false
	}
	for _, row := range rows {
		if row.IP != ip || row.Date != today || !row.IsScratched {
			continue
		}
		if model.NormalizeUsername(row.Username) == norm {
			continue
		}
		metrics.RecordSharedIPFlag()
		e.logger.Warn(ctx, "ip shared with another scratched record",
			logger.String("user", norm),
			logger.String("ip", ip),
		)
		return true
	}
	return false
}

// canonicalToday selects the single logically-current record for
// (username, today) from whatever rows the store returned. Concurrent
// writes or store limitations may yield several physical rows for one
// identity; the newest timestamp wins.
func canonicalToday(rows []model.PlayRecord, norm, today string) (model.PlayRecord, bool) {
	var best model.PlayRecord
	found := 0
	for _, row := range rows {
		if !row.Matches(norm, today) {
			continue
		}
		found++
		if found == 1 || row.Timestamp.After(best.Timestamp) {
			best = row
		}
	}
	if found > 1 {
		metrics.RecordLedgerDuplicateRows(found - 1)
	}
	return best, found > 0
}
