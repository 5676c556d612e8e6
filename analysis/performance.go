package analysis

import "stock-analyzer/models"

// PerformanceWindow is a trailing window of trading days
type PerformanceWindow struct {
	Days  int
	Label string
}

// PerformanceWindows are the windows reported, in display order
var PerformanceWindows = []PerformanceWindow{
	{Days: 21, Label: "1 Month"},
	{Days: 63, Label: "3 Month"},
	{Days: 126, Label: "6 Month"},
}

// Performance computes the percent change of the latest close against the
// close dayCount bars back (counting the latest bar) for every window.
// Windows longer than the series, or with a zero reference close, are
// unavailable.
func Performance(series models.PriceSeries) []models.PerformanceEntry {
	out := make([]models.PerformanceEntry, 0, len(PerformanceWindows))
	for _, w := range PerformanceWindows {
		out = append(out, models.PerformanceEntry{
			Label:   w.Label,
			Days:    w.Days,
			Percent: windowChange(series, w.Days),
		})
	}
	return out
}

func windowChange(series models.PriceSeries, days int) *float64 {
	if days <= 0 || len(series) < days {
		return nil
	}

	latest := series[len(series)-1].Close
	ref := series[len(series)-days].Close
	if ref == 0 || !Defined(ref) || !Defined(latest) {
		return nil
	}

	return PercentChange(ref, latest)
}

// PercentChange returns (to-from)/from*100 rounded to two decimals, or nil
// when from is zero or either value is not finite.
func PercentChange(from, to float64) *float64 {
	if from == 0 || !Defined(from) || !Defined(to) {
		return nil
	}
	v := Round2((to - from) / from * 100)
	return &v
}
