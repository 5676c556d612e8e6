package services

import (
	"context"

	"stock-analyzer/models"
)

// MarketDataServiceInterface defines the interface for price history and quote data
type MarketDataServiceInterface interface {
	GetPriceSeries(ctx context.Context, symbol string, window models.Window) (models.PriceSeries, error)
	GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)
}

// SymbolListServiceInterface defines the interface for the tradable symbol list
type SymbolListServiceInterface interface {
	ListSymbols(ctx context.Context) ([]string, error)
}

// Compile-time interface verification
var _ MarketDataServiceInterface = (*YahooService)(nil)
var _ SymbolListServiceInterface = (*NSESymbolService)(nil)
