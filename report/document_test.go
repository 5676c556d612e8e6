package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"stock-analyzer/models"
)

func ptr(v float64) *float64 {
	return &v
}

// sampleReport returns a fully populated report created on a Monday
func sampleReport() *models.Report {
	listed := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	r := models.NewReport("TCS.NS", "Test Author")
	r.CreatedAt = time.Date(2026, 10, 19, 14, 5, 9, 0, time.UTC)
	r.CurrentPrice = ptr(110)
	r.Momentum = ptr(10)
	r.Listing = models.ListingInfo{Date: &listed, Price: ptr(100), Return: ptr(10)}
	r.MarketCap = "₹200.00 Cr"
	r.PERatio = "18 (Excellent)"
	r.Performance = []models.PerformanceEntry{
		{Label: "1 Month", Days: 21, Percent: ptr(9.76)},
		{Label: "3 Month", Days: 63, Percent: ptr(-3.5)},
		{Label: "6 Month", Days: 126},
	}
	r.Score = 80
	r.ScoreComputed = true
	return r
}

func findLine(t *testing.T, doc Document, heading, label string) string {
	t.Helper()
	for _, s := range doc.Sections {
		if s.Heading != heading {
			continue
		}
		for _, l := range s.Lines {
			if l.Label == label {
				return l.Value
			}
		}
	}
	t.Fatalf("no line %q in section %q", label, heading)
	return ""
}

func TestBuild(t *testing.T) {
	doc := Build(sampleReport())

	if doc.Title != "STOCK ANALYSIS REPORT" {
		t.Errorf("Title = %q", doc.Title)
	}

	wantHeader := []string{
		"Report Created By : Test Author",
		"Date : 19-10-2026 | Day : Monday | Time : 14:05:09",
	}
	if strings.Join(doc.Header, "\n") != strings.Join(wantHeader, "\n") {
		t.Errorf("Header = %q, want %q", doc.Header, wantHeader)
	}

	wantHeadings := []string{
		"STOCK REPORT BY TEST AUTHOR",
		"IPO DETAILS",
		"FUNDAMENTALS",
		"PERFORMANCE",
		"RECOMMENDATION FOR BUYING",
	}
	if strings.Join(doc.Headings(), ",") != strings.Join(wantHeadings, ",") {
		t.Errorf("Headings() = %v, want %v", doc.Headings(), wantHeadings)
	}

	tests := []struct {
		heading string
		label   string
		want    string
	}{
		{"STOCK REPORT BY TEST AUTHOR", "Stock", "TCS.NS"},
		{"STOCK REPORT BY TEST AUTHOR", "Current Price", "₹110.00"},
		{"STOCK REPORT BY TEST AUTHOR", "Momentum", "10.0 %"},
		{SectionIPO, "IPO Listing Date", "02-01-2024"},
		{SectionIPO, "IPO Listing Price", "₹100.00"},
		{SectionIPO, "Price Range", "N/A"},
		{SectionIPO, "Issue Size", "N/A"},
		{SectionIPO, "Lot Size", "N/A"},
		{SectionIPO, "Subscription Rate", "N/A"},
		{SectionIPO, "Return Since IPO", "10.0 %"},
		{SectionFundamentals, "Market Cap", "₹200.00 Cr"},
		{SectionFundamentals, "P/E Ratio", "18 (Excellent)"},
		{SectionPerformance, "1 Month", "9.76 %"},
		{SectionPerformance, "3 Month", "-3.5 %"},
		{SectionPerformance, "6 Month", "N/A"},
		{SectionRecommendation, "Overall Score", "80 %"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := findLine(t, doc, tt.heading, tt.label); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestBuild_EmptyReport(t *testing.T) {
	doc := Build(models.NewReport("NEW.NS", "Test Author"))

	for _, label := range []string{"Current Price", "Momentum"} {
		if got := findLine(t, doc, AuthorSection("Test Author"), label); got != models.NotAvailable {
			t.Errorf("%s = %q, want N/A", label, got)
		}
	}
	for _, label := range []string{"IPO Listing Date", "IPO Listing Price", "Return Since IPO"} {
		if got := findLine(t, doc, SectionIPO, label); got != models.NotAvailable {
			t.Errorf("%s = %q, want N/A", label, got)
		}
	}
	if got := findLine(t, doc, SectionRecommendation, "Overall Score"); got != "50 %" {
		t.Errorf("Overall Score = %q, want 50 %%", got)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"integral percent", Percent(ptr(10)), "10.0 %"},
		{"fractional percent", Percent(ptr(9.76)), "9.76 %"},
		{"negative percent", Percent(ptr(-2.5)), "-2.5 %"},
		{"zero percent", Percent(ptr(0)), "0.0 %"},
		{"nil percent", Percent(nil), "N/A"},
		{"NaN percent", Percent(ptr(math.NaN())), "N/A"},
		{"price", Price(ptr(1234.5)), "₹1234.50"},
		{"nil price", Price(nil), "N/A"},
		{"infinite price", Price(ptr(math.Inf(1))), "N/A"},
		{"number", Number(125), "125.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDocument_PlainText(t *testing.T) {
	text := Build(sampleReport()).PlainText()

	for _, want := range []string{
		"STOCK ANALYSIS REPORT\n",
		"Report Created By : Test Author\n",
		"\nFUNDAMENTALS\nMarket Cap : ₹200.00 Cr\nP/E Ratio : 18 (Excellent)\n",
		"Overall Score : 80 %\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("PlainText() missing %q\n%s", want, text)
		}
	}
}
