// Package report turns an analysis report into a printable document: a
// section model, its markdown form, a PDF rendering, an HTML preview and
// a candlestick chart of the most recent sessions.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"stock-analyzer/analysis"
	"stock-analyzer/models"
)

// Title is the document heading
const Title = "STOCK ANALYSIS REPORT"

// Section headings, in document order
const (
	SectionIPO            = "IPO DETAILS"
	SectionFundamentals   = "FUNDAMENTALS"
	SectionPerformance    = "PERFORMANCE"
	SectionRecommendation = "RECOMMENDATION FOR BUYING"
)

const (
	headerDateLayout = "02-01-2006"
	headerTimeLayout = "15:04:05"
	rupee            = "₹"
)

// Line is a single "Label : Value" row
type Line struct {
	Label string
	Value string
}

func (l Line) String() string {
	return l.Label + " : " + l.Value
}

// Section is a titled group of lines
type Section struct {
	Heading string
	Lines   []Line
}

// Document is the layout-independent content of a report
type Document struct {
	Title    string
	Header   []string
	Sections []Section
}

// AuthorSection returns the heading of the first section for author
func AuthorSection(author string) string {
	return "STOCK REPORT BY " + strings.ToUpper(author)
}

// Build lays out r as a document
func Build(r *models.Report) Document {
	created := r.CreatedAt
	return Document{
		Title: Title,
		Header: []string{
			"Report Created By : " + r.Author,
			fmt.Sprintf("Date : %s | Day : %s | Time : %s",
				created.Format(headerDateLayout), created.Weekday(), created.Format(headerTimeLayout)),
		},
		Sections: []Section{
			{
				Heading: AuthorSection(r.Author),
				Lines: []Line{
					{"Stock", r.Symbol},
					{"Current Price", Price(r.CurrentPrice)},
					{"Momentum", Percent(r.Momentum)},
				},
			},
			{
				Heading: SectionIPO,
				Lines: []Line{
					{"IPO Listing Date", listingDate(r.Listing)},
					{"IPO Listing Price", Price(r.Listing.Price)},
					{"Price Range", r.IPO.PriceRange},
					{"Issue Size", r.IPO.IssueSize},
					{"Lot Size", r.IPO.LotSize},
					{"Subscription Rate", r.IPO.SubscriptionRate},
					{"Return Since IPO", Percent(r.Listing.Return)},
				},
			},
			{
				Heading: SectionFundamentals,
				Lines: []Line{
					{"Market Cap", r.MarketCap},
					{"P/E Ratio", r.PERatio},
				},
			},
			{
				Heading: SectionPerformance,
				Lines:   performanceLines(r.Performance),
			},
			{
				Heading: SectionRecommendation,
				Lines: []Line{
					{"Overall Score", fmt.Sprintf("%d %%", r.Score)},
				},
			},
		},
	}
}

func performanceLines(entries []models.PerformanceEntry) []Line {
	lines := make([]Line, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, Line{e.Label, Percent(e.Percent)})
	}
	return lines
}

func listingDate(l models.ListingInfo) string {
	if l.Date == nil {
		return models.NotAvailable
	}
	return l.Date.Format(analysis.ListingDateLayout)
}

// Price formats an optional rupee amount, e.g. "₹110.00"
func Price(v *float64) string {
	if v == nil || !analysis.Defined(*v) {
		return models.NotAvailable
	}
	return rupee + strconv.FormatFloat(*v, 'f', 2, 64)
}

// Percent formats an optional percentage, e.g. "10.0 %"
func Percent(v *float64) string {
	if v == nil || !analysis.Defined(*v) {
		return models.NotAvailable
	}
	return Number(*v) + " %"
}

// Number prints v in its shortest form, always with a fractional part
func Number(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Headings returns the section headings in order
func (d Document) Headings() []string {
	out := make([]string, len(d.Sections))
	for i, s := range d.Sections {
		out[i] = s.Heading
	}
	return out
}

// PlainText renders the document as plain lines, used by the CLI
func (d Document) PlainText() string {
	var sb strings.Builder
	sb.WriteString(d.Title + "\n\n")
	for _, h := range d.Header {
		sb.WriteString(h + "\n")
	}
	for _, s := range d.Sections {
		sb.WriteString("\n" + s.Heading + "\n")
		for _, l := range s.Lines {
			sb.WriteString(l.String() + "\n")
		}
	}
	return sb.String()
}
