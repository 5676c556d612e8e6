package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"stock-analyzer/models"
)

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TCS.NS", "TCS.NS"},
		{"M&M.NS", `M\&M.NS`},
		{"a*b_c", `a\*b\_c`},
		{"Date : 1 | Day : 2", `Date : 1 \| Day : 2`},
		{`back\slash`, `back\\slash`},
		{"18 (Excellent)", "18 (Excellent)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := EscapeMarkdown(tt.in); got != tt.want {
				t.Errorf("EscapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(Build(sampleReport()))

	for _, want := range []string{
		"# STOCK ANALYSIS REPORT\n\n",
		"Report Created By : Test Author\n\n",
		"## STOCK REPORT BY TEST AUTHOR\n\n",
		"**Current Price** : ₹110.00\n\n",
		"## IPO DETAILS\n\n",
		"**P/E Ratio** : 18 (Excellent)\n\n",
		"## RECOMMENDATION FOR BUYING\n\n**Overall Score** : 80 %\n\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown() missing %q", want)
		}
	}
}

func TestHTML(t *testing.T) {
	r := sampleReport()
	r.Symbol = "M&M.NS"

	html, err := HTML(Build(r))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"<h1>STOCK ANALYSIS REPORT</h1>",
		"<h2>FUNDAMENTALS</h2>",
		"<strong>Market Cap</strong> : ₹200.00 Cr",
		"<strong>Stock</strong> : M&amp;M.NS",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML() missing %q\n%s", want, html)
		}
	}
}

func TestPDF(t *testing.T) {
	doc := Build(sampleReport())

	out, err := PDF(doc, PDFOptions{Compress: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 16)])
	}

	for _, want := range append(doc.Headings(), "STOCK ANALYSIS REPORT", "Rs.200.00 Cr", "Rs.110.00") {
		if !bytes.Contains(out, []byte(want)) {
			t.Errorf("PDF missing %q", want)
		}
	}
	if bytes.Contains(out, []byte("₹")) {
		t.Error("PDF should not contain the rupee sign")
	}
}

func TestPDF_Compressed(t *testing.T) {
	out, err := PDF(Build(sampleReport()), DefaultPDFOptions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func chartBars() models.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.PriceSeries{
		{Date: start, Open: 100, High: 105, Low: 98, Close: 104, Volume: 1000},
		{Date: start.AddDate(0, 0, 1), Open: 104, High: 106, Low: 99, Close: 100, Volume: 3000},
		{Date: start.AddDate(0, 0, 2), Open: 100, High: 102, Low: 97, Close: 101, Volume: 2000},
	}
}

func TestCandlestickChart(t *testing.T) {
	svg := CandlestickChart(chartBars(), DefaultChartConfig())

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an SVG document: %.60s", svg)
	}
	if got := strings.Count(svg, `class="candle"`); got != 3 {
		t.Errorf("candles = %d, want 3", got)
	}
	if got := strings.Count(svg, `class="volume"`); got != 3 {
		t.Errorf("volume bars = %d, want 3", got)
	}
	if !strings.Contains(svg, bearColor) || !strings.Contains(svg, bullColor) {
		t.Error("expected both rising and falling candles")
	}
	if !strings.Contains(svg, "01 Jan") {
		t.Error("expected a date label")
	}
	if !strings.Contains(svg, "Candlestick Chart") {
		t.Error("expected the chart title")
	}
}

func TestCandlestickChart_Empty(t *testing.T) {
	svg := CandlestickChart(nil, ChartConfig{})
	if !strings.Contains(svg, "No chart data available") {
		t.Errorf("expected placeholder, got %s", svg)
	}
}

func TestCandlestickChart_NoVolume(t *testing.T) {
	bars := chartBars()
	for i := range bars {
		bars[i].Volume = 0
	}

	svg := CandlestickChart(bars, DefaultChartConfig())
	if strings.Contains(svg, `class="volume"`) {
		t.Error("no volume bars expected when volume is zero")
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`M&M <"x">`); got != "M&amp;M &lt;&quot;x&quot;&gt;" {
		t.Errorf("escapeXML() = %q", got)
	}
}
