// Package e2e runs the real provider clients, pipeline and router against an
// in-process stand-in for Yahoo Finance and the NSE archive.
package e2e

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-analyzer/config"
	"stock-analyzer/e2e/mocks"
	"stock-analyzer/internal/api"
	"stock-analyzer/internal/app"
	"stock-analyzer/observability"
	"stock-analyzer/report"
	"stock-analyzer/services"
	"stock-analyzer/symbols"
)

// scenarioTimeout bounds every request a scenario sends
const scenarioTimeout = 2 * time.Minute

// Harness is one fully wired analyzer instance
type Harness struct {
	ctx      context.Context
	upstream *mocks.MockServer
	cfg      *config.Config
	app      *app.App
	router   http.Handler
}

// Start wires a fresh analyzer against a new mock upstream. Everything is
// torn down when the test ends.
func Start(t *testing.T) *Harness {
	t.Helper()

	observability.InitLogger(false)
	observability.InitMetrics()
	// Breaker state must not leak between scenarios
	services.SetGlobalRegistry(services.NewProviderBreakers())

	ctx, cancel := context.WithTimeout(context.Background(), scenarioTimeout)
	upstream := mocks.NewMockServer()
	cfg := scenarioConfig(t, upstream)

	universe := symbols.NewUniverse(services.NewNSESymbolService(cfg.Symbols, cfg.Provider), cfg.Symbols.Fallback)
	a := app.New(cfg, services.NewYahooService(cfg.Provider), universe, report.NewWriter(cfg.Report.OutputDir, cfg.AuthorLabel()))
	a.Startup(ctx)

	t.Cleanup(func() {
		cancel()
		a.Shutdown(context.Background())
		upstream.Close()
	})

	return &Harness{
		ctx:      ctx,
		upstream: upstream,
		cfg:      cfg,
		app:      a,
		router:   api.NewRouter(api.NewHandler(a, cfg), cfg),
	}
}

// scenarioConfig points every provider at upstream and keeps reports in a temp dir
func scenarioConfig(t *testing.T, upstream *mocks.MockServer) *config.Config {
	cfg := config.NewTestConfig()
	cfg.Provider.ChartBaseURL = upstream.ChartURL()
	cfg.Provider.QuoteBaseURL = upstream.QuoteURL()
	cfg.Provider.RequestsPerSec = 1000
	cfg.Provider.TimeoutSeconds = 5
	cfg.Symbols.ListURL = upstream.EquityListURL()
	cfg.Report.OutputDir = t.TempDir()
	cfg.Report.Author = "E2E"
	return cfg
}

func (h *Harness) MockServer() *mocks.MockServer { return h.upstream }
func (h *Harness) App() *app.App { return h.app }
func (h *Harness) Config() *config.Config { return h.cfg }

// DoRequest sends a JSON request through the router
func (h *Harness) DoRequest(method, path, body string) *httptest.ResponseRecorder {
	return h.serve(h.newRequest(method, path, body))
}

// DoHTMXRequest sends the request the way the dashboard does, asking for a fragment
func (h *Harness) DoHTMXRequest(method, path, body string) *httptest.ResponseRecorder {
	req := h.newRequest(method, path, body)
	req.Header.Set("HX-Request", "true")
	return h.serve(req)
}

func (h *Harness) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *Harness) newRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r).WithContext(h.ctx)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
