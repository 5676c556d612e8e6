package main

import (
	"log"
	"os"

	"stock-analyzer/config"
	"stock-analyzer/internal/api"
	"stock-analyzer/internal/app"
	"stock-analyzer/observability"
	"stock-analyzer/report"
	"stock-analyzer/services"
	"stock-analyzer/symbols"

	"github.com/joho/godotenv"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	observability.InitLoggerWithLevel(cfg.Log.Production, cfg.Log.Level)
	observability.InitMetrics()

	yahoo := services.NewYahooService(cfg.Provider)
	universe := symbols.NewUniverse(services.NewNSESymbolService(cfg.Symbols, cfg.Provider), cfg.Symbols.Fallback)
	writer := report.NewWriter(cfg.Report.OutputDir, cfg.AuthorLabel())

	application := app.New(cfg, yahoo, universe, writer)
	router := api.NewRouter(api.NewHandler(application, cfg), cfg)

	// The dashboard is served entirely by the router; there are no static assets
	err = wails.Run(&options.App{
		Title:  "NSE Stock Analyzer",
		Width:  1280,
		Height: 860,
		AssetServer: &assetserver.Options{
			Handler: router,
		},
		BackgroundColour: options.NewRGB(244, 246, 249),
		OnStartup:        application.Startup,
		OnShutdown:       application.Shutdown,
		Bind: []interface{}{
			application,
		},
	})

	if err != nil {
		observability.Error("desktop shell exited", "error", err)
		os.Exit(1)
	}
}
