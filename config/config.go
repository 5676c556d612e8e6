package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Market data provider configuration
	Provider ProviderConfig

	// Tradable symbol universe configuration
	Symbols SymbolsConfig

	// Report artifact configuration
	Report ReportConfig

	// Analysis pipeline configuration
	Analysis AnalysisConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Logging configuration
	Log LogConfig
}

// ProviderConfig holds Yahoo Finance configuration
type ProviderConfig struct {
	ChartBaseURL   string
	QuoteBaseURL   string
	UserAgent      string
	TimeoutSeconds int
	RequestsPerSec float64
}

// SymbolsConfig holds NSE symbol list configuration
type SymbolsConfig struct {
	ListURL  string
	Suffix   string
	Fallback []string
}

// ReportConfig holds report artifact configuration
type ReportConfig struct {
	OutputDir string
	Author    string
}

// AnalysisConfig holds analysis pipeline configuration
type AnalysisConfig struct {
	TimeoutSeconds   int
	ConcurrencyLimit int
	HistoryRange     string // lookback window for indicators, e.g. "6mo"
	ChartBars        int    // number of recent bars on the candlestick chart
	SearchLimit      int    // max symbols returned by a search
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	CORSAllowedOrigins string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Production bool
	Level      slog.Level
}

// DefaultFallbackSymbols is used when the NSE symbol list cannot be fetched
var DefaultFallbackSymbols = []string{"RELIANCE.NS", "TCS.NS", "INFY.NS"}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Provider: ProviderConfig{
			ChartBaseURL:   getEnvString("YAHOO_CHART_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			QuoteBaseURL:   getEnvString("YAHOO_QUOTE_BASE_URL", "https://query1.finance.yahoo.com/v7/finance/quote"),
			UserAgent:      getEnvString("PROVIDER_USER_AGENT", "Mozilla/5.0"),
			TimeoutSeconds: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30),
			RequestsPerSec: getEnvFloatUnbounded("PROVIDER_REQUESTS_PER_SEC", 5),
		},
		Symbols: SymbolsConfig{
			ListURL:  getEnvString("NSE_SYMBOLS_URL", "https://archives.nseindia.com/content/equities/EQUITY_L.csv"),
			Suffix:   getEnvString("NSE_SYMBOL_SUFFIX", ".NS"),
			Fallback: getEnvList("NSE_FALLBACK_SYMBOLS", DefaultFallbackSymbols),
		},
		Report: ReportConfig{
			OutputDir: getEnvString("REPORT_OUTPUT_DIR", "Stock_Reports"),
			Author:    getEnvString("REPORT_AUTHOR", "Stock Analyzer"),
		},
		Analysis: AnalysisConfig{
			TimeoutSeconds:   getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 60),
			ConcurrencyLimit: getEnvInt("ANALYSIS_CONCURRENCY_LIMIT", 3),
			HistoryRange:     getEnvString("ANALYSIS_HISTORY_RANGE", "6mo"),
			ChartBars:        getEnvInt("ANALYSIS_CHART_BARS", 15),
			SearchLimit:      getEnvInt("SYMBOL_SEARCH_LIMIT", 20),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("HTTP_PORT", "8080"),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
		Log: LogConfig{
			Production: getEnvBool("LOG_PRODUCTION", false),
			Level:      getEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Provider.ChartBaseURL == "" {
		return fmt.Errorf("YAHOO_CHART_BASE_URL must not be empty")
	}
	if c.Provider.RequestsPerSec <= 0 {
		return fmt.Errorf("PROVIDER_REQUESTS_PER_SEC must be positive, got %.2f", c.Provider.RequestsPerSec)
	}
	if c.Provider.TimeoutSeconds <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive, got %d", c.Provider.TimeoutSeconds)
	}

	if len(c.Symbols.Fallback) == 0 {
		return fmt.Errorf("NSE_FALLBACK_SYMBOLS must contain at least one symbol")
	}

	if strings.TrimSpace(c.Report.OutputDir) == "" {
		return fmt.Errorf("REPORT_OUTPUT_DIR must not be empty")
	}
	if strings.TrimSpace(c.Report.Author) == "" {
		return fmt.Errorf("REPORT_AUTHOR must not be empty")
	}
	if strings.ContainsAny(c.Report.Author, `/\`) {
		return fmt.Errorf("REPORT_AUTHOR must not contain path separators, got %q", c.Report.Author)
	}

	if c.Analysis.TimeoutSeconds <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT_SECONDS must be positive, got %d", c.Analysis.TimeoutSeconds)
	}
	if c.Analysis.ConcurrencyLimit <= 0 {
		return fmt.Errorf("ANALYSIS_CONCURRENCY_LIMIT must be positive, got %d", c.Analysis.ConcurrencyLimit)
	}
	if c.Analysis.ChartBars <= 0 {
		return fmt.Errorf("ANALYSIS_CHART_BARS must be positive, got %d", c.Analysis.ChartBars)
	}
	if c.Analysis.SearchLimit <= 0 {
		return fmt.Errorf("SYMBOL_SEARCH_LIMIT must be positive, got %d", c.Analysis.SearchLimit)
	}
	if c.Analysis.HistoryRange == "" {
		return fmt.Errorf("ANALYSIS_HISTORY_RANGE must not be empty")
	}

	return nil
}

// AuthorLabel returns the label used in report filenames, e.g. "Jane Doe Analysis"
func (c *Config) AuthorLabel() string {
	return c.Report.Author + " Analysis"
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatUnbounded(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList reads a comma-separated list, dropping blank entries
func getEnvList(key string, defaultValue []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return append([]string(nil), defaultValue...)
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}

func getEnvLogLevel(key string, defaultValue slog.Level) slog.Level {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(val)); err != nil {
		return defaultValue
	}
	return level
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			ChartBaseURL:   "https://query1.finance.yahoo.com/v8/finance/chart",
			QuoteBaseURL:   "https://query1.finance.yahoo.com/v7/finance/quote",
			UserAgent:      "Mozilla/5.0",
			TimeoutSeconds: 30,
			RequestsPerSec: 5,
		},
		Symbols: SymbolsConfig{
			ListURL:  "https://archives.nseindia.com/content/equities/EQUITY_L.csv",
			Suffix:   ".NS",
			Fallback: append([]string(nil), DefaultFallbackSymbols...),
		},
		Report: ReportConfig{
			OutputDir: "Stock_Reports",
			Author:    "Stock Analyzer",
		},
		Analysis: AnalysisConfig{
			TimeoutSeconds:   60,
			ConcurrencyLimit: 3,
			HistoryRange:     "6mo",
			ChartBars:        15,
			SearchLimit:      20,
		},
		HTTP: HTTPConfig{
			Port:               "8080",
			CORSAllowedOrigins: "*",
		},
		Log: LogConfig{
			Production: false,
			Level:      slog.LevelInfo,
		},
	}
}
