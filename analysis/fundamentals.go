package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"stock-analyzer/models"
)

// PE rating bands
const (
	PERatingExcellent = "Excellent"
	PERatingGood      = "Good"
	PERatingPoor      = "Poor"

	peExcellentBelow = 20
	peGoodUpTo       = 35
)

var crore = decimal.NewFromInt(10_000_000)

// Round2 rounds v to two decimal places, half away from zero
func Round2(v float64) float64 {
	if !Defined(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FormatMarketCap renders a market capitalisation in crore rupees, e.g. "₹15.00 Cr"
func FormatMarketCap(marketCap *float64) string {
	if marketCap == nil || !Defined(*marketCap) {
		return models.NotAvailable
	}
	return "₹" + decimal.NewFromFloat(*marketCap).Div(crore).StringFixed(2) + " Cr"
}

// PERating classifies a trailing P/E ratio. Missing or non-positive ratios are N/A.
func PERating(pe *float64) string {
	switch {
	case pe == nil || !Defined(*pe) || *pe <= 0:
		return models.NotAvailable
	case *pe < peExcellentBelow:
		return PERatingExcellent
	case *pe <= peGoodUpTo:
		return PERatingGood
	default:
		return PERatingPoor
	}
}

// FormatPE renders the ratio with its rating, e.g. "18 (Excellent)"
func FormatPE(pe *float64) string {
	value := models.NotAvailable
	if pe != nil && Defined(*pe) {
		value = decimal.NewFromFloat(*pe).Round(2).String()
	}
	return fmt.Sprintf("%s (%s)", value, PERating(pe))
}

// Momentum is the day-over-day percent change of the current price. A missing
// previous close is treated as unchanged.
func Momentum(f models.Fundamentals) *float64 {
	if f.CurrentPrice == nil {
		return nil
	}
	current := *f.CurrentPrice
	previous := current
	if f.PreviousClose != nil {
		previous = *f.PreviousClose
	}
	if previous <= 0 {
		return nil
	}
	return PercentChange(previous, current)
}
