// Command stock-analyzer runs the dashboard as a plain HTTP server and
// offers the analysis pipeline from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"stock-analyzer/config"
	"stock-analyzer/internal/app"
	"stock-analyzer/observability"
	"stock-analyzer/report"
	"stock-analyzer/services"
	"stock-analyzer/symbols"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "stock-analyzer",
	Short:         "NSE stock analysis dashboard and report generator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	rootCmd.AddCommand(newServeCmd(), newAnalyzeCmd(), newSymbolsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and wires the application
func setup() (*config.Config, *app.App, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	observability.InitLoggerWithLevel(cfg.Log.Production, cfg.Log.Level)
	observability.InitMetrics()

	universe := symbols.NewUniverse(services.NewNSESymbolService(cfg.Symbols, cfg.Provider), cfg.Symbols.Fallback)
	application := app.New(cfg,
		services.NewYahooService(cfg.Provider),
		universe,
		report.NewWriter(cfg.Report.OutputDir, cfg.AuthorLabel()))

	return cfg, application, nil
}
