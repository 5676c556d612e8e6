// Package analysis derives indicators, performance windows, fundamentals
// display values and the buy score from fetched market data. Every function
// is pure; missing inputs produce explicit placeholders instead of errors.
package analysis

import "stock-analyzer/models"

// Result bundles everything derived for one analysis request
type Result struct {
	Indicators  IndicatorSet
	Score       Score
	Performance []models.PerformanceEntry
	Momentum    *float64
	MarketCap   string
	PERatio     string
	PERating    string
	Listing     models.ListingInfo
}

// Evaluate runs every derivation over the lookback series, the full listing
// history and the fundamentals snapshot.
func Evaluate(series, history models.PriceSeries, f models.Fundamentals) Result {
	ind := ComputeIndicators(series)

	return Result{
		Indicators:  ind,
		Score:       ScoreFromIndicators(series, ind),
		Performance: Performance(series),
		Momentum:    Momentum(f),
		MarketCap:   FormatMarketCap(f.MarketCap),
		PERatio:     FormatPE(f.TrailingPE),
		PERating:    PERating(f.TrailingPE),
		Listing:     Listing(history, f.CurrentPrice),
	}
}

// ApplyTo copies the derived values onto r
func (res Result) ApplyTo(r *models.Report) {
	r.Momentum = res.Momentum
	r.MarketCap = res.MarketCap
	r.PERatio = res.PERatio
	r.Listing = res.Listing
	r.Performance = res.Performance
	r.Score = res.Score.Value
	r.ScoreComputed = res.Score.Computed
}
