package models

import (
	"sort"
	"time"
)

// Bar represents one daily OHLCV price bar
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is a chronological run of daily bars for a single symbol
type PriceSeries []Bar

// Closes returns the closing prices in series order
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar and false if the series is empty
func (s PriceSeries) Last() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Tail returns the last n bars, or the whole series when it is shorter
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 {
		return PriceSeries{}
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// Normalize sorts bars by date and drops duplicate trading days.
// When two bars share a date the later one in input order wins.
func Normalize(bars []Bar) PriceSeries {
	if len(bars) == 0 {
		return PriceSeries{}
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make(PriceSeries, 0, len(sorted))
	for _, b := range sorted {
		if n := len(out); n > 0 && sameDay(out[n-1].Date, b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Window names a lookback range understood by the price provider
type Window string

const (
	WindowSixMonths Window = "6mo"
	WindowMax       Window = "max"
)

// Fundamentals is a point-in-time snapshot of quote data; every figure is optional
type Fundamentals struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	TrailingPE    *float64 `json:"trailing_pe,omitempty"`
}

// Float returns a pointer to v, for building optional fields
func Float(v float64) *float64 {
	return &v
}
