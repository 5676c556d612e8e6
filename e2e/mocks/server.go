// Package mocks provides an HTTP mock of the market data providers used in E2E tests.
package mocks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

const (
	// ChartPath, QuotePath and EquityListPath are where the fake endpoints live.
	ChartPath      = "/v8/finance/chart"
	QuotePath      = "/v7/finance/quote"
	EquityListPath = "/content/equities/EQUITY_L.csv"

	// NSE sessions open at 09:15 IST
	istOffset   = 5*3600 + 30*60
	sessionOpen = 3*time.Hour + 45*time.Minute
)

// MockServer serves configurable chart, quote and symbol list responses.
type MockServer struct {
	mu     sync.RWMutex
	server *httptest.Server

	// Response configurations
	bars    map[string][]Bar
	quotes  map[string]Quote
	equityL []string

	// Error injection: a non-zero status is returned instead of data
	chartStatus int
	quoteStatus int
	listStatus  int

	// Request tracking for assertions
	requestLog []RequestLog
}

// NewMockServer creates a new mock server with default responses.
func NewMockServer() *MockServer {
	m := &MockServer{
		bars:       make(map[string][]Bar),
		quotes:     make(map[string]Quote),
		requestLog: make([]RequestLog, 0),
	}
	m.setDefaults()
	m.server = httptest.NewServer(m)
	return m
}

// URL returns the mock server's base URL.
func (m *MockServer) URL() string {
	return m.server.URL
}

// ChartURL is the base URL for the chart endpoint.
func (m *MockServer) ChartURL() string { return m.server.URL + ChartPath }

// QuoteURL is the quote endpoint.
func (m *MockServer) QuoteURL() string { return m.server.URL + QuotePath }

// EquityListURL is the EQUITY_L.csv endpoint.
func (m *MockServer) EquityListURL() string { return m.server.URL + EquityListPath }

// Close shuts down the mock server.
func (m *MockServer) Close() {
	m.server.Close()
}

// ServeHTTP routes requests to the fake provider handlers.
func (m *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestLog = append(m.requestLog, RequestLog{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
	})
	m.mu.Unlock()

	path := r.URL.Path

	switch {
	case strings.HasPrefix(path, ChartPath+"/"):
		m.handleChart(w, r, strings.TrimPrefix(path, ChartPath+"/"))
	case path == QuotePath:
		m.handleQuote(w, r)
	case path == EquityListPath:
		m.handleEquityList(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GetRequestLog returns all logged requests for assertions.
func (m *MockServer) GetRequestLog() []RequestLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RequestLog{}, m.requestLog...)
}

// ClearRequestLog clears the request log.
func (m *MockServer) ClearRequestLog() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLog = make([]RequestLog, 0)
}

// CountRequests returns how many logged requests hit paths starting with prefix.
func (m *MockServer) CountRequests(prefix string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requestLog {
		if strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

// SetBars configures the daily history served for symbol.
func (m *MockServer) SetBars(symbol string, bars []Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[symbol] = bars
}

// SetQuote configures the quote served for q.Symbol.
func (m *MockServer) SetQuote(q Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.Symbol] = q
}

// RemoveQuote makes the quote endpoint return no result for symbol.
func (m *MockServer) RemoveQuote(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quotes, symbol)
}

// SetEquityList configures the SYMBOL column of EQUITY_L.csv.
func (m *MockServer) SetEquityList(symbols []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equityL = append([]string(nil), symbols...)
}

// SetChartStatus makes the chart endpoint fail with status. Zero restores it.
func (m *MockServer) SetChartStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chartStatus = status
}

// SetQuoteStatus makes the quote endpoint fail with status. Zero restores it.
func (m *MockServer) SetQuoteStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteStatus = status
}

// SetEquityListStatus makes the symbol list fail with status. Zero restores it.
func (m *MockServer) SetEquityListStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listStatus = status
}

func (m *MockServer) setDefaults() {
	m.equityL = []string{"RELIANCE", "TCS", "INFY", "HDFCBANK", "M&M"}

	start := time.Now().UTC().AddDate(0, 0, -150).Truncate(24 * time.Hour)
	for i, sym := range []string{"RELIANCE.NS", "TCS.NS", "INFY.NS"} {
		base := 1000 * float64(i+1)
		bars := GenerateBars(start, 150, base, 0.002)
		m.bars[sym] = bars

		last := bars[len(bars)-1].Close
		prev := bars[len(bars)-2].Close
		m.quotes[sym] = Quote{
			Symbol:                     sym,
			LongName:                   strings.TrimSuffix(sym, ".NS") + " Limited",
			Currency:                   "INR",
			RegularMarketPrice:         &last,
			RegularMarketPreviousClose: &prev,
			MarketCap:                  ptr(base * 1e9),
			TrailingPE:                 ptr(22),
		}
	}
}

func (m *MockServer) handleChart(w http.ResponseWriter, r *http.Request, symbol string) {
	m.mu.RLock()
	status := m.chartStatus
	bars, ok := m.bars[symbol]
	m.mu.RUnlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var resp chartResponse
	if !ok || len(bars) == 0 {
		resp.Chart.Error = &apiError{Code: "Not Found", Description: "No data found, symbol may be delisted"}
		writeJSON(w, http.StatusNotFound, resp)
		return
	}

	bars = inRange(bars, r.URL.Query().Get("range"))
	resp.Chart.Result = []chartResult{buildChart(symbol, bars)}
	writeJSON(w, http.StatusOK, resp)
}

func (m *MockServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	status := m.quoteStatus
	var results []Quote
	for _, sym := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		if q, ok := m.quotes[strings.TrimSpace(sym)]; ok {
			results = append(results, q)
		}
	}
	m.mu.RUnlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	var resp quoteResponse
	resp.QuoteResponse.Result = results
	if resp.QuoteResponse.Result == nil {
		resp.QuoteResponse.Result = []Quote{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (m *MockServer) handleEquityList(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	status := m.listStatus
	list := append([]string(nil), m.equityL...)
	m.mu.RUnlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	fmt.Fprintln(w, "SYMBOL,NAME OF COMPANY, SERIES, DATE OF LISTING, PAID UP VALUE, MARKET LOT, ISIN NUMBER, FACE VALUE")
	for i, sym := range list {
		fmt.Fprintf(w, "%s,%s Ltd,EQ,01-JAN-2000,10,1,INE%09d,10\n", sym, sym, i)
	}
}

// inRange keeps the bars a Yahoo range parameter would return.
func inRange(bars []Bar, rng string) []Bar {
	last := bars[len(bars)-1].Date
	var from time.Time
	switch rng {
	case "5d":
		if len(bars) > 5 {
			return bars[len(bars)-5:]
		}
		return bars
	case "1mo":
		from = last.AddDate(0, -1, 0)
	case "6mo":
		from = last.AddDate(0, -6, 0)
	case "1y":
		from = last.AddDate(-1, 0, 0)
	default:
		return bars
	}
	for i, b := range bars {
		if b.Date.After(from) {
			return bars[i:]
		}
	}
	return bars
}

func buildChart(symbol string, bars []Bar) chartResult {
	var res chartResult
	res.Meta = chartMeta{Symbol: symbol, Currency: "INR", GMTOffset: istOffset}

	q := ohlcv{}
	for _, b := range bars {
		res.Timestamp = append(res.Timestamp, b.Date.Add(sessionOpen).Unix())
		q.Open = append(q.Open, b.Open)
		q.High = append(q.High, b.High)
		q.Low = append(q.Low, b.Low)
		q.Close = append(q.Close, b.Close)
		q.Volume = append(q.Volume, b.Volume)
	}
	res.Indicators.Quote = []ohlcv{q}

	last := bars[len(bars)-1].Close
	res.Meta.RegularMarketPrice = &last
	if len(bars) > 1 {
		prev := bars[len(bars)-2].Close
		res.Meta.ChartPreviousClose = &prev
	}
	return res
}

// GenerateBars builds count consecutive daily bars starting at start, with
// the close compounding by drift each session.
func GenerateBars(start time.Time, count int, base, drift float64) []Bar {
	bars := make([]Bar, count)
	price := base
	for i := range bars {
		bars[i] = Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price * 0.998,
			High:   price * 1.01,
			Low:    price * 0.99,
			Close:  price,
			Volume: 100000 + int64(i)*500,
		}
		price *= 1 + drift
	}
	return bars
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ptr(v float64) *float64 { return &v }
