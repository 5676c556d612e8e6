package analysis

import (
	"math"

	"stock-analyzer/models"
)

const (
	SMAPeriod = 20
	EMAPeriod = 20
	RSIPeriod = 14
)

// IndicatorSet holds per-bar indicator values aligned with the source series.
// Positions without enough history hold NaN.
type IndicatorSet struct {
	SMA20 []float64
	EMA20 []float64
	RSI14 []float64
}

// Defined reports whether an indicator value was computable
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ComputeIndicators derives SMA-20, EMA-20 and RSI-14 for every bar of series
func ComputeIndicators(series models.PriceSeries) IndicatorSet {
	closes := series.Closes()
	return IndicatorSet{
		SMA20: SMA(closes, SMAPeriod),
		EMA20: EMA(closes, EMAPeriod),
		RSI14: RSI(closes, RSIPeriod),
	}
}

// Latest returns the indicator values at the final bar
func (s IndicatorSet) Latest() (sma, ema, rsi float64) {
	return last(s.SMA20), last(s.EMA20), last(s.RSI14)
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// SMA computes the simple moving average over a trailing window of period values
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		out[i] = windowMean(values[i-period+1 : i+1])
	}
	return out
}

func windowMean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// EMA computes an exponential moving average seeded with the first value
// (no warm-up adjustment), so every position is defined.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if len(values) == 0 || period <= 0 {
		return out
	}

	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		// close*α + prev*(1-α), arranged so a flat series stays exact
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out
}

// RSI computes the relative strength index using a simple rolling mean of
// gains and losses. The first defined position is index period. When the
// window has no losses the value is 100.
func RSI(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := period; i < len(values); i++ {
		avgGain := windowMean(gains[i-period+1 : i+1])
		avgLoss := windowMean(losses[i-period+1 : i+1])

		if avgLoss == 0 {
			out[i] = 100
			continue
		}

		rs := avgGain / avgLoss
		out[i] = 100 - (100 / (1 + rs))
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
