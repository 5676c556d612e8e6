package models

import (
	"time"

	"github.com/google/uuid"
)

// NotAvailable is the placeholder shown for any figure that could not be derived
const NotAvailable = "N/A"

// Report is the result of one analysis request. It is built once and not
// mutated after it has been rendered.
type Report struct {
	ID        uuid.UUID `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name,omitempty"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`

	CurrentPrice *float64 `json:"current_price,omitempty"`
	Momentum     *float64 `json:"momentum,omitempty"`

	Listing ListingInfo `json:"listing"`
	IPO     IPODetails  `json:"ipo"`

	MarketCap string `json:"market_cap"`
	PERatio   string `json:"pe_ratio"`

	Performance []PerformanceEntry `json:"performance"`

	Score         int  `json:"score"`
	ScoreComputed bool `json:"score_computed"`

	// Chart holds the most recent bars shown on the candlestick chart
	Chart PriceSeries `json:"chart,omitempty"`
}

// ListingInfo describes the first traded session of a symbol
type ListingInfo struct {
	Date   *time.Time `json:"date,omitempty"`
	Price  *float64   `json:"price,omitempty"`
	Return *float64   `json:"return,omitempty"`
}

// IPODetails holds issue book data. The price provider does not expose it,
// so every field is normally NotAvailable.
type IPODetails struct {
	PriceRange       string `json:"price_range"`
	IssueSize        string `json:"issue_size"`
	LotSize          string `json:"lot_size"`
	SubscriptionRate string `json:"subscription_rate"`
}

// UnavailableIPODetails returns IPO details with every field set to NotAvailable
func UnavailableIPODetails() IPODetails {
	return IPODetails{
		PriceRange:       NotAvailable,
		IssueSize:        NotAvailable,
		LotSize:          NotAvailable,
		SubscriptionRate: NotAvailable,
	}
}

// PerformanceEntry is the percent change over a trailing window of trading days
type PerformanceEntry struct {
	Label   string   `json:"label"`
	Days    int      `json:"days"`
	Percent *float64 `json:"percent,omitempty"`
}

// Available reports whether the window had enough history
func (p PerformanceEntry) Available() bool {
	return p.Percent != nil
}

// NewReport creates an empty report for symbol stamped with the current time
func NewReport(symbol, author string) *Report {
	return &Report{
		ID:        uuid.New(),
		Symbol:    symbol,
		Author:    author,
		CreatedAt: time.Now(),
		MarketCap: NotAvailable,
		PERatio:   NotAvailable,
		IPO:       UnavailableIPODetails(),
		Score:     50,
	}
}
