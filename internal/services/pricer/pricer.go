// Package pricer generates the synthetic price series of the paper-trading game.
package pricer

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrader/internal/domain"
)

const (
	// DefaultMaxChange bounds the per-tick move to +/-3%.
	DefaultMaxChange = 0.03
	// DefaultWickSize is the maximum absolute wick length added beyond the candle body.
	DefaultWickSize = 2.0
	// PriceScale is the number of fractional digits kept for generated prices.
	PriceScale = 4
)

// MinPrice floors every generated price.
var MinPrice = decimal.NewFromInt(1)

// RandomSource yields pseudo-random numbers in [0,1).
type RandomSource interface {
	Float64() float64
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// NewRandomSource returns a goroutine-safe math/rand source. Seed 0 picks a time-based seed.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Config tunes the random walk.
type Config struct {
	MaxChange float64
	WickSize  float64
}

// RandomWalk derives each candle from the previous close.
type RandomWalk struct {
	rnd       RandomSource
	clock     Clock
	maxChange decimal.Decimal
	wickSize  decimal.Decimal
}

// NewRandomWalk creates a generator. Nil source or clock fall back to math/rand and the wall clock.
func NewRandomWalk(cfg Config, rnd RandomSource, clock Clock) *RandomWalk {
	if rnd == nil {
		rnd = NewRandomSource(0)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.MaxChange <= 0 {
		cfg.MaxChange = DefaultMaxChange
	}
	if cfg.WickSize < 0 {
		cfg.WickSize = DefaultWickSize
	}
	return &RandomWalk{
		rnd:       rnd,
		clock:     clock,
		maxChange: decimal.NewFromFloat(cfg.MaxChange),
		wickSize:  decimal.NewFromFloat(cfg.WickSize),
	}
}

// Next builds the candle following a close of open. The timestamp is strictly
// greater than prevTimestamp so chart series stay ordered.
//
// Three draws are consumed per candle: the move, the upper wick and the lower wick.
func (w *RandomWalk) Next(open decimal.Decimal, prevTimestamp int64) domain.Candle {
	ts := w.clock.Now().Unix()
	if ts <= prevTimestamp {
		ts = prevTimestamp + 1
	}

	two := decimal.NewFromInt(2)
	pct := two.Mul(w.draw()).Sub(decimal.NewFromInt(1)).Mul(w.maxChange)
	closePrice := open.Mul(decimal.NewFromInt(1).Add(pct)).Round(PriceScale)
	closePrice = decimal.Max(MinPrice, closePrice)

	bodyLow := decimal.Min(open, closePrice)
	high := decimal.Max(open, closePrice).Add(w.draw().Mul(w.wickSize)).RoundCeil(PriceScale)
	low := bodyLow.Sub(w.draw().Mul(w.wickSize)).RoundFloor(PriceScale)
	// an initial price below MinPrice keeps its own body low as the floor
	low = decimal.Max(decimal.Min(MinPrice, bodyLow), low)

	return domain.Candle{
		Timestamp: ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
	}
}

func (w *RandomWalk) draw() decimal.Decimal {
	return decimal.NewFromFloat(w.rnd.Float64())
}
