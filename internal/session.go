package internal

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/papertrader/config"
	"github.com/vadiminshakov/papertrader/internal/domain"
	"github.com/vadiminshakov/papertrader/internal/events"
	"github.com/vadiminshakov/papertrader/internal/services/pricer"
	"github.com/vadiminshakov/papertrader/internal/simulator"
	"github.com/vadiminshakov/papertrader/internal/storage/journal"
	"github.com/vadiminshakov/papertrader/pkg/retrier"
)

const (
	journalQueueSize = 1024
	eventBufferSize  = 256
)

type sessionJournal interface {
	SaveTrade(tx domain.Transaction, snapshot domain.Snapshot) (uint64, error)
	SaveReset(at time.Time, snapshot domain.Snapshot) (uint64, error)
	Close() error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithJournal replaces the WAL journal.
func WithJournal(j sessionJournal) SessionOption {
	return func(s *Session) {
		s.journal = j
	}
}

// WithSimulatorOptions passes options through to the simulator.
func WithSimulatorOptions(opts ...simulator.Option) SessionOption {
	return func(s *Session) {
		s.simOpts = append(s.simOpts, opts...)
	}
}

// Session is one paper-trading game: a simulator, its tick schedule and its journal.
type Session struct {
	ID          string
	Config      config.Config
	logger      *zap.Logger
	sim         *simulator.Simulator
	broadcaster *events.Broadcaster
	simOpts     []simulator.Option

	journal      sessionJournal
	journalQueue chan events.Event
	retrier      *retrier.Retrier
	queueMu      sync.RWMutex
	closed       bool
	recorderDone chan struct{}
}

// NewSession creates a session
func NewSession(conf config.Config, logger *zap.Logger, opts ...SessionOption) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	s := &Session{
		ID:          uuid.New().String(),
		Config:      conf,
		broadcaster: events.NewBroadcaster(eventBufferSize),
	}
	s.logger = logger.With(zap.String("session", s.ID))
	for _, opt := range opts {
		opt(s)
	}

	if s.journal == nil && conf.JournalEnabled {
		store, err := journal.NewWALStore(conf.JournalDir, s.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open session journal")
		}
		s.journal = store
	}

	simOpts := append([]simulator.Option{
		simulator.WithLogger(s.logger),
		simulator.WithRandomSource(pricer.NewRandomSource(conf.Seed)),
	}, s.simOpts...)
	simOpts = append(simOpts, simulator.WithPublisher(s))

	sim, err := simulator.New(simulator.Config{
		InitialPrice: conf.InitialPrice,
		InitialCash:  conf.InitialCash,
		WindowSize:   conf.WindowSize,
		MaxChange:    conf.MaxChange(),
		WickSize:     conf.WickSize.InexactFloat64(),
	}, simOpts...)
	if err != nil {
		if s.journal != nil {
			_ = s.journal.Close()
		}
		return nil, errors.Wrap(err, "failed to create simulator")
	}
	s.sim = sim

	if s.journal != nil {
		s.journalQueue = make(chan events.Event, journalQueueSize)
		s.recorderDone = make(chan struct{})
		s.retrier = retrier.New(
			retrier.WithMaxRetries(3),
			retrier.WithInitialInterval(50*time.Millisecond),
			retrier.WithMaxInterval(time.Second),
			retrier.WithRetryIf(func(err error) bool {
				return !errors.Is(err, journal.ErrInvalidEntry)
			}),
			retrier.WithOnRetry(func(attempt int, err error) {
				s.logger.Warn("journal write failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
			}),
		)
		go s.record()
	}

	return s, nil
}

// Simulator returns the session's simulator.
func (s *Session) Simulator() *simulator.Simulator {
	return s.sim
}

// Events returns the broadcaster carrying every simulator event.
func (s *Session) Events() *events.Broadcaster {
	return s.broadcaster
}

// Publish implements simulator.Publisher.
func (s *Session) Publish(e events.Event) {
	s.broadcaster.Publish(e)
	if e.Type == events.TypeTick {
		return
	}

	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	if s.journalQueue == nil || s.closed {
		return
	}
	select {
	case s.journalQueue <- e:
	default:
		s.logger.Warn("journal queue full, entry dropped", zap.String("type", string(e.Type)))
	}
}

// Run emits the warm-up candles, then ticks every TickInterval until ctx is cancelled.
// Reset does not interrupt the schedule.
func (s *Session) Run(ctx context.Context) error {
	for i := 0; i < s.Config.WarmupCandles; i++ {
		s.sim.Tick()
	}

	ticker := time.NewTicker(s.Config.TickInterval)
	defer ticker.Stop()

	s.logger.Info("Starting tick loop",
		zap.Duration("tick_interval", s.Config.TickInterval),
		zap.Int("window", s.Config.WindowSize),
		zap.Int("warmup", s.Config.WarmupCandles))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Context done, stopping tick loop.")
			return ctx.Err()
		case <-ticker.C:
			s.sim.Tick()
		}
	}
}

// Close drains pending journal entries and closes the journal.
func (s *Session) Close() error {
	s.queueMu.Lock()
	if s.closed {
		s.queueMu.Unlock()
		return nil
	}
	s.closed = true
	if s.journalQueue != nil {
		close(s.journalQueue)
	}
	s.queueMu.Unlock()

	if s.recorderDone != nil {
		<-s.recorderDone
	}
	if s.journal != nil {
		return s.journal.Close()
	}
	return nil
}

func (s *Session) record() {
	defer close(s.recorderDone)

	for e := range s.journalQueue {
		index, err := retrier.DoWithData(s.retrier, context.Background(), func(ctx context.Context) (uint64, error) {
			switch e.Type {
			case events.TypeTrade:
				if e.Transaction == nil {
					return 0, errors.Wrap(journal.ErrInvalidEntry, "trade event without transaction")
				}
				return s.journal.SaveTrade(*e.Transaction, e.Snapshot)
			case events.TypeReset:
				return s.journal.SaveReset(e.Time, e.Snapshot)
			}
			return 0, nil
		})
		if err != nil {
			s.logger.Error("failed to journal event", zap.String("type", string(e.Type)), zap.Error(err))
			continue
		}
		s.logger.Debug("event journaled", zap.String("type", string(e.Type)), zap.Uint64("index", index))
	}
}
