package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-analyzer/analysis"
	"stock-analyzer/config"
	"stock-analyzer/models"
	"stock-analyzer/observability"
	"stock-analyzer/report"
	"stock-analyzer/services"
	"stock-analyzer/symbols"
)

// NoSymbolWarning is shown when Analyze is triggered without a selection
const NoSymbolWarning = "Please select stock."

var (
	// ErrNoSymbol is returned when no symbol was selected
	ErrNoSymbol = errors.New("no symbol selected")

	// ErrQueueFull is returned when every analysis slot is busy
	ErrQueueFull = errors.New("analysis queue full, too many concurrent requests - try again later")

	// ErrArtifactNotFound is returned for an unknown report id
	ErrArtifactNotFound = errors.New("report not found")
)

// SymbolUniverse is the symbol search surface used by App
type SymbolUniverse interface {
	Search(ctx context.Context, query string, limit int) []string
	Status() symbols.Status
}

// ReportWriter stores a rendered report and returns its path
type ReportWriter interface {
	Write(symbol string, data []byte, at time.Time) (string, error)
}

// Artifact is a report file written by a completed analysis
type Artifact struct {
	ID        uuid.UUID `json:"id"`
	Symbol    string    `json:"symbol"`
	Path      string    `json:"-"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// Analysis is everything produced by one Analyze call
type Analysis struct {
	Report   *models.Report  `json:"report"`
	Document report.Document `json:"document"`
	HTML     string          `json:"html"`
	ChartSVG string          `json:"chart_svg"`
	Artifact Artifact        `json:"artifact"`
}

// HealthStatus summarises upstream availability
type HealthStatus struct {
	Status   string                                   `json:"status"`
	Breakers map[string]services.CircuitBreakerStatus `json:"circuit_breakers"`
	Symbols  symbols.Status                           `json:"symbols"`
}

// App struct holds application dependencies using interfaces for testability
type App struct {
	ctx         context.Context
	cfg         *config.Config
	market      services.MarketDataServiceInterface
	universe    SymbolUniverse
	writer      ReportWriter
	analysisSem chan struct{}
	now         func() time.Time

	mu        sync.RWMutex
	artifacts map[uuid.UUID]Artifact
}

// New creates a new App application struct
func New(cfg *config.Config, market services.MarketDataServiceInterface, universe SymbolUniverse, writer ReportWriter) *App {
	return &App{
		ctx:         context.Background(),
		cfg:         cfg,
		market:      market,
		universe:    universe,
		writer:      writer,
		analysisSem: make(chan struct{}, cfg.Analysis.ConcurrencyLimit),
		now:         time.Now,
		artifacts:   make(map[uuid.UUID]Artifact),
	}
}

// Startup is called when the app starts
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
}

// Shutdown is called when the app is closing
func (a *App) Shutdown(ctx context.Context) {
	observability.Info("application shutting down", "reports", len(a.Artifacts()))
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// SearchSymbols returns the symbols matching query, up to the configured limit
func (a *App) SearchSymbols(ctx context.Context, query string) []string {
	if a.universe == nil {
		return []string{}
	}
	return a.universe.Search(ctx, query, a.cfg.Analysis.SearchLimit)
}

// SearchStocks is the desktop binding for SearchSymbols
func (a *App) SearchStocks(query string) []string {
	return a.SearchSymbols(a.ctx, query)
}

// AnalyzeStock is the desktop binding for Analyze
func (a *App) AnalyzeStock(symbol string) (*Analysis, error) {
	return a.Analyze(a.ctx, symbol)
}

// Analyze fetches market data for symbol, derives the report, renders it
// and writes the PDF artifact. Provider failures degrade to placeholders;
// only rendering and writing the artifact can fail the call.
func (a *App) Analyze(ctx context.Context, symbol string) (*Analysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	if a.market == nil {
		return nil, fmt.Errorf("market data service not initialized")
	}

	select {
	case a.analysisSem <- struct{}{}:
		defer func() { <-a.analysisSem }()
	default:
		return nil, ErrQueueFull
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Analysis.TimeoutSeconds)*time.Second)
	defer cancel()

	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest(symbol)
	timer := metrics.NewTimer()

	result, err := a.analyze(ctx, symbol)
	if err != nil {
		timer.ObserveAnalysis("error")
		observability.WithSymbol(symbol).Error("analysis failed", "error", err)
		return nil, err
	}

	timer.ObserveAnalysis("success")
	observability.WithSymbol(symbol).Info("analysis complete",
		"score", result.Report.Score,
		"score_computed", result.Report.ScoreComputed,
		"artifact", result.Artifact.Filename,
		"duration", timer.Duration())
	return result, nil
}

func (a *App) analyze(ctx context.Context, symbol string) (*Analysis, error) {
	r := models.NewReport(symbol, a.cfg.Report.Author)
	r.CreatedAt = a.now()

	series := a.priceSeries(ctx, symbol, models.Window(a.cfg.Analysis.HistoryRange))
	history := a.priceSeries(ctx, symbol, models.WindowMax)
	f := a.fundamentals(ctx, symbol)

	analysis.Evaluate(series, history, f).ApplyTo(r)
	r.Name = f.Name
	r.CurrentPrice = f.CurrentPrice
	r.Chart = series.Tail(a.cfg.Analysis.ChartBars)
	observability.GetMetrics().RecordScore(r.Score, r.ScoreComputed)

	doc := report.Build(r)

	pdf, err := report.PDF(doc, report.DefaultPDFOptions)
	if err != nil {
		observability.GetMetrics().RecordReportError("render")
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	path, err := a.writer.Write(symbol, pdf, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	artifact := Artifact{
		ID:        r.ID,
		Symbol:    symbol,
		Path:      path,
		Filename:  filepath.Base(path),
		CreatedAt: r.CreatedAt,
	}
	a.mu.Lock()
	a.artifacts[artifact.ID] = artifact
	a.mu.Unlock()

	return &Analysis{
		Report:   r,
		Document: doc,
		HTML:     renderHTML(symbol, doc),
		ChartSVG: report.CandlestickChart(r.Chart, report.DefaultChartConfig()),
		Artifact: artifact,
	}, nil
}

// priceSeries returns the bars for window, or an empty series when the
// provider fails
func (a *App) priceSeries(ctx context.Context, symbol string, window models.Window) models.PriceSeries {
	series, err := a.market.GetPriceSeries(ctx, symbol, window)
	if err != nil {
		degraded(symbol, "price_series_"+string(window), err)
		return models.PriceSeries{}
	}
	return series
}

func (a *App) fundamentals(ctx context.Context, symbol string) models.Fundamentals {
	f, err := a.market.GetFundamentals(ctx, symbol)
	if err != nil || f == nil {
		degraded(symbol, "fundamentals", err)
		return models.Fundamentals{Symbol: symbol}
	}
	return *f
}

func degraded(symbol, step string, err error) {
	kind := services.ErrorType(err)
	if kind == "" {
		kind = "no_data"
	}
	observability.WithSymbol(symbol).Warn("data unavailable, using placeholders",
		"step", step,
		"error_type", kind,
		"error", err)
	observability.GetMetrics().RecordAnalysisError(kind)
}

// renderHTML falls back to preformatted text if markdown conversion fails
func renderHTML(symbol string, doc report.Document) string {
	out, err := report.HTML(doc)
	if err != nil {
		observability.WithSymbol(symbol).Warn("report HTML unavailable", "error", err)
		return "<pre>" + html.EscapeString(doc.PlainText()) + "</pre>"
	}
	return out
}

// Artifact returns the report file registered under id
func (a *App) Artifact(id string) (Artifact, error) {
	parsed, err := ParseUUID(id)
	if err != nil {
		return Artifact{}, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	artifact, ok := a.artifacts[parsed]
	if !ok {
		return Artifact{}, ErrArtifactNotFound
	}
	return artifact, nil
}

// Artifacts returns every report written in this process, newest first
func (a *App) Artifacts() []Artifact {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Artifact, 0, len(a.artifacts))
	for _, art := range a.artifacts {
		out = append(out, art)
	}
	slices.SortFunc(out, func(x, y Artifact) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return out
}

// Health reports breaker states and the symbol universe. Status is
// "degraded" while any breaker is not closed.
func (a *App) Health() HealthStatus {
	breakers := services.GetGlobalRegistry()
	h := HealthStatus{
		Status:   "ok",
		Breakers: breakers.Status(),
	}
	if !breakers.Healthy() {
		h.Status = "degraded"
	}
	if a.universe != nil {
		h.Symbols = a.universe.Status()
	}
	return h
}

// ParseUUID parses a report id
func ParseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID: %w", err)
	}
	return parsed, nil
}

// AnalysisSemCapacity returns the capacity of the analysis semaphore (for testing)
func (a *App) AnalysisSemCapacity() int {
	return cap(a.analysisSem)
}
