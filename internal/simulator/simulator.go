// Package simulator implements the paper-trading engine: a periodic synthetic
// price series and a cash/position ledger.
package simulator

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrader/internal/domain"
	"github.com/vadiminshakov/papertrader/internal/events"
	"github.com/vadiminshakov/papertrader/internal/services/pricer"
	"go.uber.org/zap"
)

// DefaultWindowSize is the number of candles kept for the chart.
const DefaultWindowSize = 50

var (
	DefaultInitialPrice = decimal.NewFromInt(100)
	DefaultInitialCash  = decimal.NewFromInt(100000)
)

// Publisher receives simulator events while the simulator lock is held.
type Publisher interface {
	Publish(e events.Event)
}

// Config holds the starting state and random walk parameters. Zero InitialPrice,
// InitialCash, WindowSize and MaxChange take the defaults. A zero WickSize draws
// candles without wicks; DefaultConfig carries the game's wick length.
type Config struct {
	InitialPrice decimal.Decimal
	InitialCash  decimal.Decimal
	WindowSize   int
	MaxChange    float64
	WickSize     float64
}

// DefaultConfig returns the parameters of the classic game.
func DefaultConfig() Config {
	return Config{
		InitialPrice: DefaultInitialPrice,
		InitialCash:  DefaultInitialCash,
		WindowSize:   DefaultWindowSize,
		MaxChange:    pricer.DefaultMaxChange,
		WickSize:     pricer.DefaultWickSize,
	}
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRandomSource injects the random source used for price moves and wicks.
func WithRandomSource(r pricer.RandomSource) Option {
	return func(s *Simulator) {
		s.rnd = r
	}
}

// WithClock injects the time source for candle and transaction timestamps.
func WithClock(c pricer.Clock) Option {
	return func(s *Simulator) {
		s.clock = c
	}
}

// WithPublisher sets the sink for tick, trade and reset events.
func WithPublisher(p Publisher) Option {
	return func(s *Simulator) {
		s.publisher = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// Simulator owns one SimulationState. All methods are safe for concurrent use.
type Simulator struct {
	mu sync.RWMutex

	cfg       Config
	logger    *zap.Logger
	rnd       pricer.RandomSource
	clock     pricer.Clock
	walk      *pricer.RandomWalk
	publisher Publisher

	price  decimal.Decimal
	cash   decimal.Decimal
	shares int
	window *candleWindow
	ledger []domain.Transaction
	// lastTS survives Reset so timestamps stay increasing for the whole session.
	lastTS int64
}

// New creates a simulator in its initial state.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if cfg.InitialPrice.IsZero() {
		cfg.InitialPrice = DefaultInitialPrice
	}
	if cfg.InitialCash.IsZero() {
		cfg.InitialCash = DefaultInitialCash
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if !cfg.InitialPrice.IsPositive() {
		return nil, errors.Errorf("initial price must be positive, got %s", cfg.InitialPrice.String())
	}
	if cfg.InitialCash.IsNegative() {
		return nil, errors.Errorf("initial cash must not be negative, got %s", cfg.InitialCash.String())
	}
	if cfg.WindowSize < 1 {
		return nil, errors.Errorf("window size must be at least 1, got %d", cfg.WindowSize)
	}

	s := &Simulator{
		cfg:    cfg,
		logger: zap.NewNop(),
		clock:  pricer.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = pricer.NewRandomSource(0)
	}
	s.walk = pricer.NewRandomWalk(pricer.Config{MaxChange: cfg.MaxChange, WickSize: cfg.WickSize}, s.rnd, s.clock)
	s.window = newCandleWindow(cfg.WindowSize)
	s.resetLocked()

	return s, nil
}

// Tick advances the price by one candle. It cannot fail.
func (s *Simulator) Tick() domain.TickEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	candle := s.walk.Next(s.price, s.lastTS)
	s.window.push(candle)
	s.price = candle.Close
	s.lastTS = candle.Timestamp

	tick := domain.TickEvent{Candle: candle, Direction: candle.Direction()}
	s.logger.Debug("tick",
		zap.Int64("ts", candle.Timestamp),
		zap.String("close", candle.Close.String()),
		zap.String("direction", string(tick.Direction)))
	s.publishLocked(events.Event{Type: events.TypeTick, Tick: &tick})

	return tick
}

// Buy purchases lots shares at the current price.
func (s *Simulator) Buy(lots int) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lots <= 0 {
		return domain.Transaction{}, s.rejectLocked(domain.ErrInvalidQuantity, domain.SideBuy, lots)
	}
	total := s.price.Mul(decimal.NewFromInt(int64(lots)))
	if s.cash.LessThan(total) {
		return domain.Transaction{}, s.rejectLocked(domain.ErrInsufficientFunds, domain.SideBuy, lots)
	}

	tx := domain.NewTransaction(uuid.New().String(), s.clock.Now(), domain.SideBuy, lots, s.price)
	s.cash = s.cash.Sub(tx.Total)
	s.shares += lots
	s.ledger = append(s.ledger, tx)

	s.logger.Info("buy executed",
		zap.String("id", tx.ID),
		zap.Int("lots", lots),
		zap.String("price", tx.UnitPrice.String()),
		zap.String("total", tx.Total.String()))
	s.publishLocked(events.Event{Type: events.TypeTrade, Transaction: &tx})

	return tx, nil
}

// Sell disposes of lots shares at the current price.
func (s *Simulator) Sell(lots int) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lots <= 0 {
		return domain.Transaction{}, s.rejectLocked(domain.ErrInvalidQuantity, domain.SideSell, lots)
	}
	if s.shares < lots {
		return domain.Transaction{}, s.rejectLocked(domain.ErrInsufficientHoldings, domain.SideSell, lots)
	}

	tx := domain.NewTransaction(uuid.New().String(), s.clock.Now(), domain.SideSell, lots, s.price)
	s.cash = s.cash.Add(tx.Total)
	s.shares -= lots
	s.ledger = append(s.ledger, tx)

	s.logger.Info("sell executed",
		zap.String("id", tx.ID),
		zap.Int("lots", lots),
		zap.String("price", tx.UnitPrice.String()),
		zap.String("total", tx.Total.String()))
	s.publishLocked(events.Event{Type: events.TypeTrade, Transaction: &tx})

	return tx, nil
}

// Reset restores the initial state. A running tick schedule keeps ticking.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.logger.Info("simulator reset", zap.String("price", s.price.String()), zap.String("cash", s.cash.String()))
	s.publishLocked(events.Event{Type: events.TypeReset})
}

// PortfolioValue returns cash + shares * price.
func (s *Simulator) PortfolioValue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.PortfolioValue(s.cash, s.shares, s.price)
}

// Price returns the latest price.
func (s *Simulator) Price() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.price
}

// Cash returns the cash balance.
func (s *Simulator) Cash() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cash
}

// Shares returns the number of shares held.
func (s *Simulator) Shares() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shares
}

// Snapshot returns all display values taken atomically.
func (s *Simulator) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Candles returns the candle window, oldest first.
func (s *Simulator) Candles() []domain.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window.slice()
}

// Ledger returns executed transactions, oldest first.
func (s *Simulator) Ledger() []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Transaction, len(s.ledger))
	copy(out, s.ledger)
	return out
}

// WindowSize returns the capacity of the candle window.
func (s *Simulator) WindowSize() int {
	return s.cfg.WindowSize
}

func (s *Simulator) resetLocked() {
	s.price = s.cfg.InitialPrice
	s.cash = s.cfg.InitialCash
	s.shares = 0
	s.window.clear()
	s.ledger = nil
}

func (s *Simulator) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Price:          s.price,
		Cash:           s.cash,
		Shares:         s.shares,
		PortfolioValue: domain.PortfolioValue(s.cash, s.shares, s.price),
		Candles:        s.window.len(),
		Transactions:   len(s.ledger),
	}
}

func (s *Simulator) rejectLocked(reason error, side domain.Side, lots int) error {
	rejection := &domain.OrderRejection{
		Err:    reason,
		Side:   side,
		Lots:   lots,
		Price:  s.price,
		Cash:   s.cash,
		Shares: s.shares,
	}
	s.logger.Warn("order rejected", zap.String("side", side.String()), zap.Int("lots", lots), zap.Error(rejection))
	return rejection
}

// publishLocked attaches the current snapshot and hands the event to the publisher
// before the lock is released, so events leave in the order the state changed.
// Publishers must not block or call back into the simulator.
func (s *Simulator) publishLocked(e events.Event) {
	if s.publisher == nil {
		return
	}
	e.Snapshot = s.snapshotLocked()
	if e.Time.IsZero() {
		e.Time = s.clock.Now()
	}
	s.publisher.Publish(e)
}
