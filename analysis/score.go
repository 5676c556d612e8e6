package analysis

import "stock-analyzer/models"

const (
	// NeutralScore is returned when the indicators cannot be computed
	NeutralScore = 50

	smaWeight   = 40
	emaWeight   = 40
	rsiWeight   = 20
	rsiCeiling  = 70
	maxScore    = 100
	minScoreBar = SMAPeriod
)

// Score is a heuristic buy score in [0, 100]. Computed is false when the
// neutral fallback was used.
type Score struct {
	Value    int  `json:"value"`
	Computed bool `json:"computed"`
}

// RecommendationScore scores the latest bar of series against its own
// SMA-20, EMA-20 and RSI-14.
func RecommendationScore(series models.PriceSeries) Score {
	if len(series) < minScoreBar {
		return Score{Value: NeutralScore}
	}
	return ScoreFromIndicators(series, ComputeIndicators(series))
}

// ScoreFromIndicators scores the latest bar using precomputed indicators
func ScoreFromIndicators(series models.PriceSeries, ind IndicatorSet) Score {
	bar, ok := series.Last()
	if !ok || len(series) < minScoreBar {
		return Score{Value: NeutralScore}
	}

	sma, ema, rsi := ind.Latest()
	if !Defined(sma) || !Defined(ema) || !Defined(bar.Close) {
		return Score{Value: NeutralScore}
	}

	score := 0
	if bar.Close > sma {
		score += smaWeight
	}
	if bar.Close > ema {
		score += emaWeight
	}
	// An undefined RSI never satisfies the overbought check
	if Defined(rsi) && rsi < rsiCeiling {
		score += rsiWeight
	}

	return Score{Value: min(score, maxScore), Computed: true}
}
