package scenarios

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"stock-analyzer/e2e"
	"stock-analyzer/e2e/mocks"
	"stock-analyzer/internal/app"
	"stock-analyzer/models"
	"stock-analyzer/report"
)

// risingThenFlat climbs one rupee a session from 100 to 199, then holds for 30 sessions.
func risingThenFlat() []mocks.Bar {
	start := time.Now().UTC().AddDate(0, 0, -130).Truncate(24 * time.Hour)
	bars := make([]mocks.Bar, 130)
	for i := range bars {
		c := 100 + float64(min(i, 99))
		bars[i] = mocks.Bar{Date: start.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 5000}
	}
	return bars
}

func ptr(v float64) *float64 { return &v }

func seedAcme(m *mocks.MockServer) {
	m.SetBars("ACME.NS", risingThenFlat())
	m.SetQuote(mocks.Quote{
		Symbol:                     "ACME.NS",
		LongName:                   "Acme Industries Limited",
		Currency:                   "INR",
		RegularMarketPrice:         ptr(110),
		RegularMarketPreviousClose: ptr(100),
		MarketCap:                  ptr(2e9),
		TrailingPE:                 ptr(18),
	})
}

func decodeAnalysis(t *testing.T, body []byte) app.Analysis {
	t.Helper()
	var a app.Analysis
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatalf("failed to decode analysis: %v", err)
	}
	return a
}

func TestAnalysisWorkflow_RisingThenFlat(t *testing.T) {
	harness := e2e.Start(t)
	seedAcme(harness.MockServer())

	resp := harness.DoRequest(http.MethodPost, "/api/analyze", `{"symbol":"acme.ns"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	result := decodeAnalysis(t, resp.Body.Bytes())
	r := result.Report

	t.Run("report values", func(t *testing.T) {
		if r.Symbol != "ACME.NS" || r.Name != "Acme Industries Limited" {
			t.Errorf("identity = %q / %q", r.Symbol, r.Name)
		}
		if r.Momentum == nil || *r.Momentum != 10.0 {
			t.Errorf("Momentum = %v, want 10.0", r.Momentum)
		}
		if r.MarketCap != "₹200.00 Cr" {
			t.Errorf("MarketCap = %q, want ₹200.00 Cr", r.MarketCap)
		}
		if !strings.Contains(r.PERatio, "Excellent") {
			t.Errorf("PERatio = %q, want an Excellent rating", r.PERatio)
		}
		if !r.ScoreComputed || r.Score < 0 || r.Score > 100 {
			t.Errorf("Score = %d computed=%v", r.Score, r.ScoreComputed)
		}
		if len(r.Chart) != harness.Config().Analysis.ChartBars {
			t.Errorf("chart bars = %d, want %d", len(r.Chart), harness.Config().Analysis.ChartBars)
		}
		if r.Listing.Price == nil || *r.Listing.Price != 100 {
			t.Errorf("listing price = %v, want the first close", r.Listing.Price)
		}
	})

	t.Run("document sections", func(t *testing.T) {
		want := []string{
			report.AuthorSection("E2E"),
			report.SectionIPO,
			report.SectionFundamentals,
			report.SectionPerformance,
			report.SectionRecommendation,
		}
		if got := result.Document.Headings(); !slices.Equal(got, want) {
			t.Errorf("Headings() = %v, want %v", got, want)
		}
	})

	t.Run("provider requests", func(t *testing.T) {
		var ranges []string
		for _, l := range harness.MockServer().GetRequestLog() {
			if strings.HasPrefix(l.Path, mocks.ChartPath+"/ACME.NS") {
				ranges = append(ranges, l.Query)
			}
		}
		if !slices.ContainsFunc(ranges, func(q string) bool { return strings.Contains(q, "range="+string(models.WindowSixMonths)) }) ||
			!slices.ContainsFunc(ranges, func(q string) bool { return strings.Contains(q, "range="+string(models.WindowMax)) }) {
			t.Errorf("chart ranges requested = %v", ranges)
		}
		if harness.MockServer().CountRequests(mocks.QuotePath) == 0 {
			t.Error("expected a quote request")
		}
	})

	t.Run("artifact written and downloadable", func(t *testing.T) {
		name := result.Artifact.Filename
		if !strings.HasPrefix(name, "ACME.NS - E2E Analysis - ") || !strings.HasSuffix(name, ".pdf") {
			t.Errorf("Filename = %q", name)
		}
		if _, err := os.Stat(filepath.Join(harness.Config().Report.OutputDir, name)); err != nil {
			t.Errorf("artifact missing from output dir: %v", err)
		}

		dl := harness.DoRequest(http.MethodGet, "/api/reports/"+result.Artifact.ID.String(), "")
		if dl.Code != http.StatusOK {
			t.Fatalf("download status = %d", dl.Code)
		}
		if ct := dl.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Content-Type = %q", ct)
		}
		if cd := dl.Header().Get("Content-Disposition"); !strings.Contains(cd, "ACME.NS - E2E Analysis - ") {
			t.Errorf("Content-Disposition = %q", cd)
		}
		if !strings.HasPrefix(dl.Body.String(), "%PDF-") {
			t.Error("download is not a PDF")
		}
	})
}

func TestAnalysisWorkflow_HTMX(t *testing.T) {
	harness := e2e.Start(t)
	seedAcme(harness.MockServer())

	resp := harness.DoHTMXRequest(http.MethodPost, "/api/analyze", `{"symbol":"ACME.NS"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	body := resp.Body.String()
	for _, want := range []string{"Download PDF", "/api/reports/", "₹200.00 Cr", `class="candle"`} {
		if !strings.Contains(body, want) {
			t.Errorf("report view missing %q", want)
		}
	}
}

func TestAnalysisWorkflow_NoSymbolSelected(t *testing.T) {
	harness := e2e.Start(t)

	resp := harness.DoHTMXRequest(http.MethodPost, "/api/analyze", `{"symbol":""}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), app.NoSymbolWarning) {
		t.Errorf("expected the selection warning, got %s", resp.Body.String())
	}
	if n := harness.MockServer().CountRequests(mocks.ChartPath); n != 0 {
		t.Errorf("no provider call expected, got %d", n)
	}
	if len(harness.App().Artifacts()) != 0 {
		t.Error("no report should be written")
	}
}

func TestAnalysisWorkflow_UnknownSymbolDegrades(t *testing.T) {
	harness := e2e.Start(t)

	resp := harness.DoRequest(http.MethodPost, "/api/analyze", `{"symbol":"NOPE.NS"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	r := decodeAnalysis(t, resp.Body.Bytes()).Report
	if r.ScoreComputed || r.Score != 50 {
		t.Errorf("Score = %d computed=%v, want neutral 50", r.Score, r.ScoreComputed)
	}
	if r.MarketCap != models.NotAvailable {
		t.Errorf("MarketCap = %q", r.MarketCap)
	}
	if r.Momentum != nil {
		t.Errorf("Momentum = %v, want unavailable", *r.Momentum)
	}
	if len(harness.App().Artifacts()) != 1 {
		t.Error("a placeholder report should still be written")
	}
}

func TestAnalysisWorkflow_QuoteOutageFallsBackToChart(t *testing.T) {
	harness := e2e.Start(t)
	seedAcme(harness.MockServer())
	harness.MockServer().SetQuoteStatus(http.StatusForbidden)

	resp := harness.DoRequest(http.MethodPost, "/api/analyze", `{"symbol":"ACME.NS"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	r := decodeAnalysis(t, resp.Body.Bytes()).Report
	if r.CurrentPrice == nil || *r.CurrentPrice != 199 {
		t.Errorf("CurrentPrice = %v, want the last chart close", r.CurrentPrice)
	}
	if r.Momentum == nil || *r.Momentum != 0 {
		t.Errorf("Momentum = %v, want 0 on the flat tail", r.Momentum)
	}
	if r.MarketCap != models.NotAvailable {
		t.Errorf("MarketCap = %q, quote data should be unavailable", r.MarketCap)
	}
}

func TestAnalysisWorkflow_InvalidSymbol(t *testing.T) {
	harness := e2e.Start(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty symbol", `{"symbol":""}`, http.StatusBadRequest},
		{"missing symbol", `{}`, http.StatusBadRequest},
		{"invalid characters", `{"symbol":"TCS!"}`, http.StatusBadRequest},
		{"too long", `{"symbol":"ABCDEFGHIJKLMNOPQRSTU"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := harness.DoRequest(http.MethodPost, "/api/analyze", tt.body)
			if resp.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}
