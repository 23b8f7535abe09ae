// Package app provides the core service that dispatches chat events into
// the scoring engine and implements the dependencies required by the HTTP
// surface.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"kudos/internal/adapters/gateway"
	eventqueue "kudos/internal/adapters/mq/queue"
	workerpool "kudos/internal/adapters/mq/worker"
	"kudos/internal/adapters/repository"
	"kudos/internal/domain/compose"
	"kudos/internal/domain/dedupe"
	"kudos/internal/domain/model"
	"kudos/internal/domain/parser"
	"kudos/internal/domain/quota"
	"kudos/pkg/logger"
	"kudos/pkg/metrics"
)

// Service orchestrates parsing, rate limiting, scoring and replies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	pool       *workerpool.Pool
	limiter    *quota.Limiter
	composer   *compose.Composer
	parser     *parser.Parser
	gw         gateway.Gateway

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	maxOps       int
	botUser      string
	rewardToken  string
	penaltyToken string
	privileged   string
	compensation bool
	secretSalt   string
	clock        func() time.Time
	rngSrc       rand.Source

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the score store. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGateway sets the outbound chat gateway.
func WithGateway(gw gateway.Gateway) Option {
	return func(s *Service) {
		if gw != nil {
			s.gw = gw
		}
	}
}

// WithWorkerCount sets the number of dispatch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the redelivery guard.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxOps sets the per-actor hourly operation cap.
func WithMaxOps(maxOps int) Option {
	return func(s *Service) {
		if maxOps > 0 {
			s.maxOps = maxOps
		}
	}
}

// WithBotUser sets the bot's own platform user id.
func WithBotUser(id string) Option {
	return func(s *Service) {
		s.botUser = id
	}
}

// WithTokens sets the reward and penalty tokens recognized by the parser.
func WithTokens(reward, penalty string) Option {
	return func(s *Service) {
		s.rewardToken = reward
		s.penaltyToken = penalty
	}
}

// WithCompensation enables the privileged compensating-decrement policy.
func WithCompensation(privilegedActor string) Option {
	return func(s *Service) {
		if privilegedActor != "" {
			s.compensation = true
			s.privileged = privilegedActor
		}
	}
}

// WithSecretSalt seeds the daily derived secret gating leaderboardall.
func WithSecretSalt(salt string) Option {
	return func(s *Service) {
		if salt != "" {
			s.secretSalt = salt
		}
	}
}

// WithClock sets the time source, injectable for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// WithComposerSource sets the random source behind reply selection.
func WithComposerSource(src rand.Source) Option {
	return func(s *Service) {
		s.rngSrc = src
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   10_000,
		dedupeSize:  50_000,
		maxOps:      quota.DefaultMaxOps,
		secretSalt:  "kudos",
		clock:       time.Now,
	}

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

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "no store configured, using in-memory store")
	}

	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))

	parserOpts := []parser.Option{
		parser.WithRewardToken(s.rewardToken),
		parser.WithPenaltyToken(s.penaltyToken),
		parser.WithBotUser(s.botUser),
	}
	if s.compensation {
		parserOpts = append(parserOpts, parser.WithCompensation(s.privileged))
	}
	s.parser = parser.New(parserOpts...)

	composerOpts := []compose.Option{}
	if s.rngSrc != nil {
		composerOpts = append(composerOpts, compose.WithSource(s.rngSrc))
	}
	s.composer = compose.New(composerOpts...)

	s.limiter = quota.New(s.store,
		quota.WithMaxOps(s.maxOps),
		quota.WithClock(s.clock),
	)

	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.eventQueue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxOps", s.maxOps),
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
	s.logger.Info(ctx, "stopping scoring service...")

	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// Enqueue validates an inbound event and submits it for asynchronous
// processing. Malformed events are rejected before any parsing is
// attempted; duplicate redeliveries ack successfully without re-queuing.
func (s *Service) Enqueue(ctx context.Context, e model.Event) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	if err := validate(e); err != nil {
		metrics.RecordEventMalformed()
		s.logger.Warn(ctx, "rejecting malformed event",
			logger.String("kind", string(e.Kind)),
			logger.Error(err),
		)
		return err
	}

	if e.EventID == "" {
		// No delivery id means no redelivery correlation; mint one so the
		// rest of the pipeline can log and dedupe uniformly.
		e.EventID = uuid.NewString()
	}

	if s.deduper.SeenAndRecord(ctx, e.EventID) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "suppressing redelivered event",
			logger.String("eventID", e.EventID),
		)
		return nil
	}

	if !s.eventQueue.Enqueue(ctx, e) {
		metrics.RecordEventDropped()
		return ErrBackpressure
	}

	metrics.RecordEventReceived()
	return nil
}

// validate applies the required-field rules for each event kind.
func validate(e model.Event) error {
	if e.Kind == "" {
		return fmt.Errorf("%w: missing kind", ErrMalformedEvent)
	}
	switch e.Kind {
	case model.KindMessage, model.KindMention:
		if e.Text == "" {
			return fmt.Errorf("%w: missing text for %s", ErrMalformedEvent, e.Kind)
		}
		if e.Actor == "" {
			return fmt.Errorf("%w: missing actor for %s", ErrMalformedEvent, e.Kind)
		}
	case model.KindReaction:
		// Reactions carry no text.
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, e.Kind)
	}
	return nil
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.store.TopN(ctx, n)
}

// Score returns the score for a single item, zero if never scored.
func (s *Service) Score(ctx context.Context, item string) (repository.Score, error) {
	return s.store.Query(ctx, item)
}

// Count returns the number of items tracked.
func (s *Service) Count(ctx context.Context) int {
	return s.store.Count(ctx)
}

// QueueLen reports the number of events awaiting dispatch.
func (s *Service) QueueLen(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return s.eventQueue.Len(ctx)
}
