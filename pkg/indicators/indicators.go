// Package indicators provides technical analysis indicators (EMA, RSI, ATR) for chart overlays.
package indicators

import (
	"fmt"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/cinar/indicator/v2/volatility"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrader/internal/domain"
)

// PriceData represents OHLC (open, high, low, close) price data.
type PriceData struct {
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// FromCandles converts candles into price data, preserving order.
func FromCandles(candles []domain.Candle) []PriceData {
	out := make([]PriceData, len(candles))
	for i, c := range candles {
		out[i] = PriceData{Open: c.Open, High: c.High, Low: c.Low, Close: c.Close}
	}
	return out
}

// Closes extracts close prices.
func Closes(priceData []PriceData) []decimal.Decimal {
	closes := make([]decimal.Decimal, len(priceData))
	for i, pd := range priceData {
		closes[i] = pd.Close
	}
	return closes
}

// CalculateEMA calculates the Exponential Moving Average for the given period.
func CalculateEMA(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(closes) < period {
		return nil, fmt.Errorf("not enough data points: need %d, got %d", period, len(closes))
	}

	closesFloat := decimalsToFloat64(closes)

	ema := trend.NewEmaWithPeriod[float64](period)
	inputChan := helper.SliceToChan(closesFloat)
	outputChan := ema.Compute(inputChan)
	emaFloat := helper.ChanToSlice(outputChan)

	return float64ToDecimals(emaFloat), nil
}

// CalculateRSI calculates the Relative Strength Index for the given period.
func CalculateRSI(closes []decimal.Decimal, period int) ([]decimal.Decimal, error) {
	if period < 1 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(closes) < period+1 {
		return nil, fmt.Errorf("not enough data points for RSI: need %d, got %d", period+1, len(closes))
	}

	closesFloat := decimalsToFloat64(closes)

	rsi := momentum.NewRsiWithPeriod[float64](period)
	inputChan := helper.SliceToChan(closesFloat)
	outputChan := rsi.Compute(inputChan)
	rsiFloat := helper.ChanToSlice(outputChan)

	return float64ToDecimals(rsiFloat), nil
}

// CalculateATR calculates the Average True Range for the given period.
func CalculateATR(priceData []PriceData, period int) ([]decimal.Decimal, error) {
	if period < 1 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(priceData) < period+1 {
		return nil, fmt.Errorf("not enough data points for ATR: need %d, got %d", period+1, len(priceData))
	}

	highs := make([]float64, len(priceData))
	lows := make([]float64, len(priceData))
	closes := make([]float64, len(priceData))

	for i, pd := range priceData {
		highs[i], _ = pd.High.Float64()
		lows[i], _ = pd.Low.Float64()
		closes[i], _ = pd.Close.Float64()
	}

	atr := volatility.NewAtrWithPeriod[float64](period)
	highChan := helper.SliceToChan(highs)
	lowChan := helper.SliceToChan(lows)
	closeChan := helper.SliceToChan(closes)
	outputChan := atr.Compute(highChan, lowChan, closeChan)
	atrFloat := helper.ChanToSlice(outputChan)

	return float64ToDecimals(atrFloat), nil
}

// Overlay holds the latest indicator values for a candle window.
// A nil field means the window is too short for that indicator.
type Overlay struct {
	Period int              `json:"period"`
	EMA    *decimal.Decimal `json:"ema,omitempty"`
	RSI    *decimal.Decimal `json:"rsi,omitempty"`
	ATR    *decimal.Decimal `json:"atr,omitempty"`
}

// Latest computes the most recent EMA, RSI and ATR values over candles.
func Latest(candles []domain.Candle, period int) (Overlay, error) {
	if period < 1 {
		return Overlay{}, fmt.Errorf("period must be positive, got %d", period)
	}

	priceData := FromCandles(candles)
	closes := Closes(priceData)
	overlay := Overlay{Period: period}

	if ema, err := CalculateEMA(closes, period); err == nil {
		overlay.EMA = last(ema)
	}
	if rsi, err := CalculateRSI(closes, period); err == nil {
		overlay.RSI = last(rsi)
	}
	if atr, err := CalculateATR(priceData, period); err == nil {
		overlay.ATR = last(atr)
	}

	return overlay, nil
}

func last(values []decimal.Decimal) *decimal.Decimal {
	if len(values) == 0 {
		return nil
	}
	v := values[len(values)-1]
	return &v
}

// decimalsToFloat64 converts a slice of decimal.Decimal to []float64.
func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}

// float64ToDecimals converts a slice of float64 to []decimal.Decimal.
// Non-finite values (RSI of a flat series) are skipped since decimal cannot hold them.
func float64ToDecimals(floats []float64) []decimal.Decimal {
	result := make([]decimal.Decimal, 0, len(floats))
	for _, f := range floats {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		result = append(result, decimal.NewFromFloat(f))
	}
	return result
}
