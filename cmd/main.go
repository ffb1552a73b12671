package main

//
//  @title           reit-tracker API
//  @version         1.0
//  @description     SGX REIT crawler: daily snapshots of price changes, yield, ownership and FFO ratios.
//  @termsOfService  https://github.com/qwlai/reit-tracker
//  @contact.name    API Support
//  @contact.url     https://github.com/qwlai/reit-tracker
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        reits
//  @tag.description Crawled REIT documents
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qwlai/reit-tracker/config"
	_ "github.com/qwlai/reit-tracker/docs" // swagger docs
	"github.com/qwlai/reit-tracker/internal/app"
	"github.com/qwlai/reit-tracker/internal/crawler"
	"github.com/qwlai/reit-tracker/internal/dividends"
	"github.com/qwlai/reit-tracker/internal/keyratios"
	"github.com/qwlai/reit-tracker/internal/logger"
	"github.com/qwlai/reit-tracker/internal/provider/yahoo"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// openStore is an indirection for unit testing; defaults to app.OpenStore.
var openStore = app.OpenStore

// runCrawl performs one crawl of tickers and writes the resulting document
// into the configured store.
func runCrawl(ctx context.Context, cfg config.Config, tickers []string, parallel int) error {
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer cleanup()

	client := yahoo.NewDefault(cfg.Crawler.ProviderURL, cfg.Crawler.HTTPTimeout)
	c := crawler.New(
		client,
		dividends.NewYielder(client),
		keyratios.NewEnricher(client),
		store,
		crawler.Options{MarketSuffix: cfg.Crawler.MarketSuffix, Parallel: parallel},
	)

	_, err = c.Run(ctx, tickers)
	return err
}

// main is the entry point of the reit-tracker application.
//
// Modes (selected via --mode flag):
//   - crawl: Fetches every configured REIT once, writes one document and exits.
//   - api:   Starts the REST API exposing the latest stored document.
//
// Flags:
//   - --mode:     Execution mode ("crawl" or "api"). Default: "crawl".
//   - --tickers:  Comma-separated tickers overriding REIT_TICKERS.
//   - --parallel: Symbols derived concurrently, overriding DERIVE_PARALLEL.
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	config.LoadConfig()
	logger.Init()

	mode := flag.String("mode", "crawl", "Mode: crawl or api")
	tickers := flag.String("tickers", "", "Comma-separated tickers (default from REIT_TICKERS)")
	parallel := flag.Int("parallel", config.AppConfig.Crawler.Parallel, "How many symbols to derive concurrently (1 = sequential)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "crawl":
		list := config.AppConfig.Crawler.Tickers
		if *tickers != "" {
			list = config.ParseTickers(*tickers)
		}
		logger.L().Info().Strs("tickers", list).Int("parallel", *parallel).Msg("running crawl")

		if err := runCrawl(ctx, config.AppConfig, list, *parallel); err != nil {
			logger.L().Fatal().Err(err).Msg("crawl failed")
		}
		logger.L().Info().Msg("crawl completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
