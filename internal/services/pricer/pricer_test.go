package pricer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource replays fixed draws and repeats the last one.
type sequenceSource struct {
	values []float64
	pos    int
}

func (s *sequenceSource) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	if s.pos >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func TestRandomWalk_Next_Deterministic(t *testing.T) {
	clock := fixedClock{now: time.Unix(1_700_000_000, 0)}
	walk := NewRandomWalk(Config{MaxChange: 0.03, WickSize: 2}, &sequenceSource{values: []float64{0.75, 0.5, 0.25}}, clock)

	candle := walk.Next(decimal.NewFromInt(100), 0)

	assert.Equal(t, int64(1_700_000_000), candle.Timestamp)
	assert.True(t, candle.Open.Equal(decimal.NewFromInt(100)))
	assert.True(t, candle.Close.Equal(decimal.NewFromFloat(101.5)), "close: %s", candle.Close)
	assert.True(t, candle.High.Equal(decimal.NewFromFloat(102.5)), "high: %s", candle.High)
	assert.True(t, candle.Low.Equal(decimal.NewFromFloat(99.5)), "low: %s", candle.Low)
	require.NoError(t, candle.Validate())
}

func TestRandomWalk_Next_DownMove(t *testing.T) {
	clock := fixedClock{now: time.Unix(10, 0)}
	// draw 0 gives the full -3% move and zero-length wicks
	walk := NewRandomWalk(Config{MaxChange: 0.03, WickSize: 2}, &sequenceSource{values: []float64{0}}, clock)

	candle := walk.Next(decimal.NewFromInt(100), 0)

	assert.True(t, candle.Close.Equal(decimal.NewFromInt(97)), "close: %s", candle.Close)
	assert.True(t, candle.High.Equal(decimal.NewFromInt(100)))
	assert.True(t, candle.Low.Equal(decimal.NewFromInt(97)))
}

func TestRandomWalk_Next_FloorsAtMinPrice(t *testing.T) {
	clock := fixedClock{now: time.Unix(10, 0)}
	walk := NewRandomWalk(Config{MaxChange: 0.03, WickSize: 2}, &sequenceSource{values: []float64{0, 0.9, 0.9}}, clock)

	candle := walk.Next(decimal.NewFromFloat(1.01), 0)

	assert.True(t, candle.Close.Equal(MinPrice), "close: %s", candle.Close)
	assert.True(t, candle.Low.Equal(MinPrice), "low: %s", candle.Low)
	require.NoError(t, candle.Validate())
}

func TestRandomWalk_Next_TimestampsIncrease(t *testing.T) {
	clock := fixedClock{now: time.Unix(500, 0)}
	walk := NewRandomWalk(Config{}, NewRandomSource(42), clock)

	first := walk.Next(decimal.NewFromInt(100), 0)
	second := walk.Next(first.Close, first.Timestamp)
	third := walk.Next(second.Close, second.Timestamp)

	assert.Equal(t, int64(500), first.Timestamp)
	assert.Equal(t, int64(501), second.Timestamp)
	assert.Equal(t, int64(502), third.Timestamp)
}

func TestRandomWalk_Next_InvariantsHold(t *testing.T) {
	walk := NewRandomWalk(Config{}, NewRandomSource(7), SystemClock{})
	price := decimal.NewFromInt(100)
	var ts int64
	for i := 0; i < 2000; i++ {
		candle := walk.Next(price, ts)
		require.NoError(t, candle.Validate(), "tick %d", i)
		assert.True(t, candle.Timestamp > ts)
		price, ts = candle.Close, candle.Timestamp
	}
}

func TestNewRandomSource_SeedIsDeterministic(t *testing.T) {
	a := NewRandomSource(99)
	b := NewRandomSource(99)
	for i := 0; i < 10; i++ {
		v := a.Float64()
		assert.Equal(t, v, b.Float64())
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRandomWalk_Next_OpenBelowMinPrice(t *testing.T) {
	clock := fixedClock{now: time.Unix(10, 0)}
	walk := NewRandomWalk(Config{MaxChange: 0.03, WickSize: 2}, &sequenceSource{values: []float64{0.5, 0.5, 0.5}}, clock)

	candle := walk.Next(decimal.NewFromFloat(0.5), 0)

	assert.True(t, candle.Close.Equal(MinPrice), "close: %s", candle.Close)
	assert.True(t, candle.Low.Equal(decimal.NewFromFloat(0.5)), "low: %s", candle.Low)
	require.NoError(t, candle.Validate())
}
