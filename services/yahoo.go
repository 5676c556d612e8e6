package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"stock-analyzer/config"
	"stock-analyzer/models"
	"stock-analyzer/observability"
)

const yahooService = "yahoo"

// YahooService fetches daily bars and quote fundamentals from Yahoo Finance
type YahooService struct {
	chartURL   string
	quoteURL   string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryConfig
}

// NewYahooService creates a new YahooService instance
func NewYahooService(cfg config.ProviderConfig) *YahooService {
	burst := int(cfg.RequestsPerSec)
	if burst < 1 {
		burst = 1
	}

	return &YahooService{
		chartURL:   strings.TrimRight(cfg.ChartBaseURL, "/"),
		quoteURL:   cfg.QuoteBaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), burst),
		retry:      DefaultRetryConfig,
	}
}

// yahooChartResponse is the v8 chart envelope
type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooError        `json:"error"`
	} `json:"chart"`
}

type yahooChartResult struct {
	Meta       yahooChartMeta `json:"meta"`
	Timestamp  []int64        `json:"timestamp"`
	Indicators struct {
		Quote []yahooOHLCV `json:"quote"`
	} `json:"indicators"`
}

type yahooChartMeta struct {
	Symbol             string   `json:"symbol"`
	Currency           string   `json:"currency"`
	GMTOffset          int      `json:"gmtoffset"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
	PreviousClose      *float64 `json:"previousClose"`
}

// yahooOHLCV holds parallel arrays; nulls mark sessions without trades
type yahooOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// yahooQuoteResponse is the v7 quote envelope
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteResult `json:"result"`
		Error  *yahooError        `json:"error"`
	} `json:"quoteResponse"`
}

type yahooQuoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	Currency                   string   `json:"currency"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	MarketCap                  *float64 `json:"marketCap"`
	TrailingPE                 *float64 `json:"trailingPE"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooError) err(operation string) error {
	if strings.EqualFold(e.Code, "Not Found") {
		return fmt.Errorf("%s: %w: %s", operation, ErrSymbolNotFound, e.Description)
	}
	return fmt.Errorf("%s: yahoo error %s: %s", operation, e.Code, e.Description)
}

// GetPriceSeries returns daily bars for symbol over window, oldest first
func (s *YahooService) GetPriceSeries(ctx context.Context, symbol string, window models.Window) (models.PriceSeries, error) {
	result, err := s.chart(ctx, symbol, string(window))
	if err != nil {
		return nil, err
	}

	series := parseBars(result)
	if len(series) == 0 {
		return nil, fmt.Errorf("chart %s %s: %w", symbol, window, ErrNoData)
	}
	return series, nil
}

// GetFundamentals returns the quote snapshot for symbol. When the quote
// endpoint fails the chart metadata still supplies price and previous close.
func (s *YahooService) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	q, quoteErr := s.quote(ctx, symbol)
	if quoteErr == nil {
		return &models.Fundamentals{
			Symbol:        symbol,
			Name:          coalesce(q.LongName, q.ShortName),
			Currency:      q.Currency,
			CurrentPrice:  q.RegularMarketPrice,
			PreviousClose: q.RegularMarketPreviousClose,
			MarketCap:     q.MarketCap,
			TrailingPE:    q.TrailingPE,
		}, nil
	}
	if ctx.Err() != nil {
		return nil, quoteErr
	}

	observability.WithSymbol(symbol).Warn("quote unavailable, falling back to chart metadata",
		"error", quoteErr)

	result, err := s.chart(ctx, symbol, "5d")
	if err != nil {
		return nil, errors.Join(quoteErr, err)
	}

	meta := result.Meta
	prev := meta.ChartPreviousClose
	if prev == nil {
		prev = meta.PreviousClose
	}
	return &models.Fundamentals{
		Symbol:        symbol,
		Currency:      meta.Currency,
		CurrentPrice:  meta.RegularMarketPrice,
		PreviousClose: prev,
	}, nil
}

func (s *YahooService) chart(ctx context.Context, symbol, rng string) (*yahooChartResult, error) {
	return WithCircuitBreaker(ctx, BreakerYahoo, func() (*yahooChartResult, error) {
		params := url.Values{}
		params.Set("range", rng)
		params.Set("interval", "1d")
		reqURL := s.chartURL + "/" + url.PathEscape(symbol) + "?" + params.Encode()

		var resp yahooChartResponse
		if err := s.getJSON(ctx, "chart", reqURL, &resp); err != nil {
			// Yahoo reports unknown symbols as 404 with a JSON error body
			if resp.Chart.Error != nil {
				return nil, resp.Chart.Error.err("chart " + symbol)
			}
			return nil, fmt.Errorf("chart %s: %w", symbol, err)
		}
		if resp.Chart.Error != nil {
			return nil, resp.Chart.Error.err("chart " + symbol)
		}
		if len(resp.Chart.Result) == 0 {
			return nil, fmt.Errorf("chart %s: %w", symbol, ErrNoData)
		}
		return &resp.Chart.Result[0], nil
	})
}

func (s *YahooService) quote(ctx context.Context, symbol string) (*yahooQuoteResult, error) {
	if s.quoteURL == "" {
		return nil, fmt.Errorf("quote %s: %w", symbol, ErrNoData)
	}

	return WithCircuitBreaker(ctx, BreakerYahoo, func() (*yahooQuoteResult, error) {
		params := url.Values{}
		params.Set("symbols", symbol)
		reqURL := s.quoteURL + "?" + params.Encode()

		var resp yahooQuoteResponse
		if err := s.getJSON(ctx, "quote", reqURL, &resp); err != nil {
			return nil, fmt.Errorf("quote %s: %w", symbol, err)
		}
		if resp.QuoteResponse.Error != nil {
			return nil, resp.QuoteResponse.Error.err("quote " + symbol)
		}
		for i := range resp.QuoteResponse.Result {
			if strings.EqualFold(resp.QuoteResponse.Result[i].Symbol, symbol) {
				return &resp.QuoteResponse.Result[i], nil
			}
		}
		return nil, fmt.Errorf("quote %s: %w", symbol, ErrSymbolNotFound)
	})
}

// getJSON performs a rate-limited, retried GET and decodes the body into out.
// Error bodies are still decoded so callers can read provider error payloads.
func (s *YahooService) getJSON(ctx context.Context, operation, reqURL string, out any) error {
	metrics := observability.GetMetrics()

	err := WithRetry(ctx, s.retry, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		metrics.RecordExternalAPIRequest(yahooService, operation)
		timer := metrics.NewTimer()
		defer timer.ObserveExternalAPI(yahooService, operation)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_ = json.NewDecoder(resp.Body).Decode(out)
			return statusErr(yahooService, operation, resp)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", operation, err)
		}
		return nil
	})

	if err != nil {
		metrics.RecordExternalAPIError(yahooService, operation, ErrorType(err))
	}
	return err
}

// parseBars converts the parallel chart arrays into a normalized series.
// Sessions with a null close are dropped; missing open/high/low fall back to the close.
func parseBars(r *yahooChartResult) models.PriceSeries {
	if r == nil || len(r.Indicators.Quote) == 0 {
		return models.PriceSeries{}
	}
	q := r.Indicators.Quote[0]
	offset := time.Duration(r.Meta.GMTOffset) * time.Second

	bars := make([]models.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		c := at(q.Close, i)
		if c == nil {
			continue
		}

		local := time.Unix(ts, 0).UTC().Add(offset)
		bar := models.Bar{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:  valueOr(at(q.Open, i), *c),
			High:  valueOr(at(q.High, i), *c),
			Low:   valueOr(at(q.Low, i), *c),
			Close: *c,
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		bars = append(bars, bar)
	}

	return models.Normalize(bars)
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func valueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
