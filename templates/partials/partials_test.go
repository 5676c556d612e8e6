package partials

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"stock-analyzer/internal/app"
)

func TestSymbolOptions(t *testing.T) {
	var buf bytes.Buffer
	if err := SymbolOptions([]string{"M&M.NS", "TCS.NS"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()
	if !strings.HasPrefix(html, `<option value="">Select a stock</option>`) {
		t.Errorf("expected the placeholder option first, got %s", html)
	}
	if !strings.Contains(html, `<option value="M&amp;M.NS">M&amp;M.NS</option>`) {
		t.Errorf("symbol should be escaped, got %s", html)
	}
	if strings.Count(html, "<option") != 3 {
		t.Errorf("expected 3 options, got %s", html)
	}
}

func TestSymbolOptions_Empty(t *testing.T) {
	var buf bytes.Buffer
	_ = SymbolOptions(nil).Render(context.Background(), &buf)
	if !strings.Contains(buf.String(), "No matching stocks") {
		t.Errorf("expected empty notice, got %s", buf.String())
	}
}

func TestReportView(t *testing.T) {
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	a := &app.Analysis{
		HTML:     "<h1>STOCK ANALYSIS REPORT</h1>",
		ChartSVG: "<svg></svg>",
		Artifact: app.Artifact{ID: id, Filename: "TCS.NS - Stock Analyzer Analysis - 19-10-2026 14-05-09.pdf"},
	}

	var buf bytes.Buffer
	if err := ReportView(a).Render(context.Background(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		`href="/api/reports/550e8400-e29b-41d4-a716-446655440000"`,
		"Download PDF",
		"<h1>STOCK ANALYSIS REPORT</h1>",
		"<svg></svg>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("ReportView() missing %q", want)
		}
	}
}
