// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/raspa/internal/adapters/cache"
	"github.com/okian/raspa/internal/adapters/ledger"
	pushqueue "github.com/okian/raspa/internal/adapters/mq/queue"
	workerpool "github.com/okian/raspa/internal/adapters/mq/worker"
	"github.com/okian/raspa/internal/domain/eligibility"
	"github.com/okian/raspa/internal/domain/model"
	"github.com/okian/raspa/internal/domain/prize"
	"github.com/okian/raspa/internal/domain/scratch"
	"github.com/okian/raspa/internal/domain/types"
	"github.com/okian/raspa/pkg/logger"
	"github.com/okian/raspa/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize       = 1024
	defaultWorkerCount     = 2
	defaultCachePath       = "data"
	defaultSurfaceWidth    = 300
	defaultSurfaceHeight   = 220
	defaultScratchRadius   = scratch.DefaultRadius
	defaultRevealThreshold = scratch.DefaultThreshold
)

// Ledger is the remote record store the service reads at login and
// writes at reveal.
type Ledger interface {
	FetchAll(ctx context.Context) ([]model.PlayRecord, error)
	Upsert(ctx context.Context, rec model.PlayRecord) error
}

// RecordStore is the local durable record state.
type RecordStore interface {
	Latest(ctx context.Context, username string) (model.PlayRecord, bool)
	Put(ctx context.Context, rec model.PlayRecord) error
	All(ctx context.Context) []model.PlayRecord
}

// PrizeStore persists the prize catalog locally.
type PrizeStore interface {
	Prizes(ctx context.Context) ([]int, bool)
	PutPrizes(ctx context.Context, prizes []int) error
}

// Service implements the API dependencies for the scratch-card game.
type Service struct {
	mu sync.RWMutex

	// Core components
	ledger     Ledger
	records    RecordStore
	prizeStore PrizeStore
	catalog    *prize.CachedCatalog
	engine     *eligibility.Engine
	pushQueue  pushqueue.Queue
	workerPool *workerpool.Pool

	// Session registry
	sessions map[string]*session
	inFlight map[string]struct{}

	// Configuration
	workerCount     int
	queueSize       int
	cachePath       string
	ledgerURL       string
	staleAfter      time.Duration
	surfaceWidth    int
	surfaceHeight   int
	scratchRadius   int
	revealThreshold float64
	prizeCatalog    []int
	defaultPrize    int
	now             func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of push worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the push queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCachePath sets the directory for the file-backed local state.
func WithCachePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.cachePath = path
		}
	}
}

// WithLedgerURL sets the remote record store endpoint.
func WithLedgerURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.ledgerURL = url
		}
	}
}

// WithStaleAfter bounds how long a cached record stays honorable.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithSurfaceSize sets the scratch surface dimensions.
func WithSurfaceSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.surfaceWidth = width
			s.surfaceHeight = height
		}
	}
}

// WithScratchRadius sets the cleared disk radius per scratch sample.
func WithScratchRadius(radius int) Option {
	return func(s *Service) {
		if radius > 0 {
			s.scratchRadius = radius
		}
	}
}

// WithRevealThreshold sets the coverage percentage that triggers a reveal.
func WithRevealThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold < 100 {
			s.revealThreshold = threshold
		}
	}
}

// WithPrizeCatalog sets the fallback prize catalog.
func WithPrizeCatalog(prizes []int) Option {
	return func(s *Service) {
		if len(prizes) > 0 {
			s.prizeCatalog = prizes
		}
	}
}

// WithDefaultPrize sets the prize granted when no catalog is available.
func WithDefaultPrize(p int) Option {
	return func(s *Service) {
		if p > 0 {
			s.defaultPrize = p
		}
	}
}

// WithClock sets the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLedger injects a remote store client, replacing the default HTTP one.
func WithLedger(l Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithRecordStore injects the local record state, replacing the default
// file-backed one.
func WithRecordStore(store RecordStore) Option {
	return func(s *Service) {
		if store != nil {
			s.records = store
		}
	}
}

// WithPrizeStore injects the local prize catalog state.
func WithPrizeStore(store PrizeStore) Option {
	return func(s *Service) {
		if store != nil {
			s.prizeStore = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		cachePath:       defaultCachePath,
		staleAfter:      0, // engine default applies
		surfaceWidth:    defaultSurfaceWidth,
		surfaceHeight:   defaultSurfaceHeight,
		scratchRadius:   defaultScratchRadius,
		revealThreshold: defaultRevealThreshold,
		prizeCatalog:    []int{38, 58, 88},
		defaultPrize:    prize.DefaultPrize,
		now:             time.Now,
		sessions:        make(map[string]*session),
		inFlight:        make(map[string]struct{}),
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting game service...")

	// Initialize components
	if s.records == nil || s.prizeStore == nil {
		kv := cache.NewFileStore(s.cachePath)
		if s.records == nil {
			s.records = cache.NewRecordCache(kv)
		}
		if s.prizeStore == nil {
			s.prizeStore = cache.NewPrizeCache(kv)
		}
	}
	if s.ledger == nil {
		s.ledger = ledger.NewClient(s.ledgerURL)
	}

	s.catalog = prize.NewCachedCatalog(
		prize.WithStore(s.prizeStore),
		prize.WithFallback(s.prizeCatalog),
		prize.WithDefaultPrize(s.defaultPrize),
	)

	engineOpts := []eligibility.Option{
		eligibility.WithClock(s.now),
		eligibility.WithIPResolver(contextIPResolver{}),
	}
	if s.staleAfter > 0 {
		engineOpts = append(engineOpts, eligibility.WithStaleAfter(s.staleAfter))
	}
	s.engine = eligibility.New(s.ledger, s.records, s.catalog, engineOpts...)

	s.pushQueue = pushqueue.NewInMemoryQueue(
		pushqueue.WithCapacity(s.queueSize),
		pushqueue.WithBufferSize(s.queueSize),
	)

	// Create and start the push worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.pushQueue, s.ledger)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("surfaceWidth", s.surfaceWidth),
		logger.Int("surfaceHeight", s.surfaceHeight),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping game service...")

	// Shut down the push pipeline; the queue is closed first so buffered
	// records still drain.
	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	s.sessions = make(map[string]*session)
	metrics.UpdateActiveSessions(0)

	s.started = false
	s.logger.Info(ctx, "game service stopped")
}

// Login resolves eligibility for a user and opens a session. Concurrent
// logins for the same user are rejected while the first is resolving.
func (s *Service) Login(ctx context.Context, username, agent string) (types.SessionView, error) {
	norm := model.NormalizeUsername(username)
	if norm == "" {
		return types.SessionView{}, eligibility.ErrInvalidUsername
	}

	if !s.beginLogin(norm) {
		s.logger.Debug(ctx, "login debounced", logger.String("user", norm))
		return types.SessionView{}, ErrLoginInProgress
	}
	defer s.endLogin(norm)

	dec, err := s.engine.Resolve(ctx, username, agent)
	if err != nil {
		return types.SessionView{}, err
	}

	sess := newSession(dec, s.surfaceWidth, s.surfaceHeight,
		scratch.WithRadius(s.scratchRadius),
		scratch.WithThreshold(s.revealThreshold),
	)

	s.mu.Lock()
	s.sessions[sess.token] = sess
	count := len(s.sessions)
	s.mu.Unlock()
	metrics.UpdateActiveSessions(count)

	s.logger.Info(ctx, "session opened",
		logger.String("user", norm),
		logger.String("outcome", string(dec.Outcome)),
		logger.Bool("sharedIP", dec.SharedIP),
	)
	return sess.view(), nil
}

// Scratch applies scratch samples to a session's card. When endStroke is
// set the stroke is complete and coverage is checked against the reveal
// threshold. Input on blocked or already revealed sessions is ignored.
func (s *Service) Scratch(ctx context.Context, token string, points []types.Point, endStroke bool) (types.SessionView, error) {
	sess, ok := s.session(token)
	if !ok {
		return types.SessionView{}, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != StateEligible {
		return sess.viewLocked(), nil
	}

	for _, p := range points {
		sess.detector.Scratch(p.X, p.Y)
	}
	if endStroke {
		if _, fired := sess.detector.EndStroke(); fired {
			s.reveal(ctx, sess)
		}
	}

	return sess.viewLocked(), nil
}

// SessionState returns the current view of a session.
func (s *Service) SessionState(ctx context.Context, token string) (types.SessionView, error) {
	sess, ok := s.session(token)
	if !ok {
		return types.SessionView{}, ErrSessionNotFound
	}
	return sess.view(), nil
}

// Logout discards a session's in-memory state. Durable record state is
// untouched; a later login resolves from cache and ledger as usual.
func (s *Service) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	_, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	metrics.UpdateActiveSessions(count)
	s.logger.Debug(ctx, "session closed", logger.String("token", token))
	return nil
}

// reveal finalizes a crossed threshold: the record is marked scratched,
// written to the local state synchronously, and handed to the push
// pipeline. Callers hold sess.mu.
func (s *Service) reveal(ctx context.Context, sess *session) {
	sess.record.IsScratched = true
	sess.record.Timestamp = s.now()
	sess.state = StateRevealed

	if err := s.records.Put(ctx, sess.record); err != nil {
		s.logger.Error(ctx, "failed to persist revealed record locally",
			logger.String("user", model.NormalizeUsername(sess.record.Username)),
			logger.Error(err),
		)
	}

	// Fire and forget: a full queue means the remote copy waits for the
	// next login's write-through, the reveal itself never fails.
	if !s.pushQueue.Enqueue(ctx, sess.record) {
		s.logger.Warn(ctx, "push queue refused record, remote copy deferred",
			logger.String("recordID", sess.record.ID),
		)
	}

	metrics.RecordReveal()
	s.logger.Info(ctx, "card revealed",
		logger.String("user", model.NormalizeUsername(sess.record.Username)),
		logger.Int("prize", sess.record.Prize),
	)
}

func (s *Service) session(token string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	return sess, ok
}

func (s *Service) beginLogin(norm string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[norm]; busy {
		return false
	}
	s.inFlight[norm] = struct{}{}
	return true
}

func (s *Service) endLogin(norm string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, norm)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"sessions":    len(s.sessions),
	}

	if s.started {
		queueLen := s.pushQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["cachedRecords"] = len(s.records.All(ctx))

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
