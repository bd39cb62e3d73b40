package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Candle OHLC record for one simulated interval.
type Candle struct {
	// Timestamp epoch seconds.
	Timestamp int64 `json:"time"`
	// Open is the opening price.
	Open decimal.Decimal `json:"open"`
	// High is the highest price.
	High decimal.Decimal `json:"high"`
	// Low is the lowest price.
	Low decimal.Decimal `json:"low"`
	// Close is the closing price.
	Close decimal.Decimal `json:"close"`
}

// Direction reports whether the candle closed at or above its open.
func (c *Candle) Direction() Direction {
	if c.Close.GreaterThanOrEqual(c.Open) {
		return DirectionUp
	}
	return DirectionDown
}

// Validate checks that all prices are positive and the wicks enclose the body.
func (c *Candle) Validate() error {
	prices := []struct {
		name  string
		price decimal.Decimal
	}{{"open", c.Open}, {"high", c.High}, {"low", c.Low}, {"close", c.Close}}
	for _, p := range prices {
		if !p.price.IsPositive() {
			return fmt.Errorf("candle %s must be positive, got %s", p.name, p.price.String())
		}
	}
	if c.Low.GreaterThan(decimal.Min(c.Open, c.Close)) {
		return fmt.Errorf("candle low %s above body min %s", c.Low.String(), decimal.Min(c.Open, c.Close).String())
	}
	if c.High.LessThan(decimal.Max(c.Open, c.Close)) {
		return fmt.Errorf("candle high %s below body max %s", c.High.String(), decimal.Max(c.Open, c.Close).String())
	}
	return nil
}

// Direction of a price move.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// TickEvent carries the candle produced by a tick.
type TickEvent struct {
	Candle    Candle    `json:"candle"`
	Direction Direction `json:"direction"`
}
