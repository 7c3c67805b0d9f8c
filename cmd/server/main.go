// Package main provides the entry point for the dashboard backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/invest-tracker/internal/api"
	"github.com/yourusername/invest-tracker/internal/backtest"
	"github.com/yourusername/invest-tracker/internal/config"
	"github.com/yourusername/invest-tracker/internal/database"
	"github.com/yourusername/invest-tracker/internal/datasource"
	"github.com/yourusername/invest-tracker/internal/feed"
	"github.com/yourusername/invest-tracker/internal/health"
	"github.com/yourusername/invest-tracker/internal/logger"
	"github.com/yourusername/invest-tracker/internal/metrics"
	"github.com/yourusername/invest-tracker/internal/portfolio"
	"github.com/yourusername/invest-tracker/internal/repository"
	"github.com/yourusername/invest-tracker/internal/rules"
	"github.com/yourusername/invest-tracker/internal/scheduler"
	"github.com/yourusername/invest-tracker/internal/stream"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envFile, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(ctx, *configPath)
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Invest tracker starting")

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.WithError(err).Fatal("Server exited with error")
	}
	appLog.Info("Invest tracker shut down successfully")
}

func loadConfig(ctx context.Context, path string) *config.Config {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.LoadSecrets(ctx, cfg); err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func run(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) error {
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	startingCash := decimal.NewFromFloat(cfg.Portfolio.StartingCash)
	repos, db, err := openRepositories(ctx, cfg, startingCash, appLog)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	factory := datasource.NewFactory(cfg, appLog)
	provider, err := factory.NewSeriesProvider()
	if err != nil {
		return fmt.Errorf("failed to build price provider: %w", err)
	}

	allow := rules.NewAllowList(cfg.Market.Symbols...)
	btCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return fmt.Errorf("invalid backtest config: %w", err)
	}
	engine, err := backtest.NewEngine(btCfg, allow, provider, repos.BacktestResult, appLog)
	if err != nil {
		return fmt.Errorf("failed to create backtest engine: %w", err)
	}

	quotes := feed.NewQuoteSimulator(cfg.Market.SimulationSeed, cfg.Market.QuoteVolatility, openingPrices(ctx, provider, allow, appLog))
	hub := stream.NewHub(cfg.Server.AllowedOrigins, appLog)
	quotes.Subscribe(hub)
	go hub.Run(ctx)

	svc, err := portfolio.NewService(repos.Portfolio, allow, quotes, startingCash, appLog)
	if err != nil {
		return fmt.Errorf("failed to create portfolio service: %w", err)
	}

	sched := scheduler.NewScheduler(appLog)
	if err := sched.ScheduleQuoteTicks(cfg.QuoteInterval(), quotes); err != nil {
		return err
	}
	deps := api.Dependencies{
		Engine:         engine,
		Provider:       provider,
		Portfolio:      svc,
		Quotes:         quotes,
		Results:        repos.BacktestResult,
		Hub:            hub,
		Logger:         appLog,
		MetricsPath:    cfg.Metrics.Path,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if news := factory.NewNewsClient(); news != nil {
		if err := news.Refresh(ctx); err != nil {
			appLog.WithError(err).Warn("Initial news refresh failed")
		}
		if err := sched.ScheduleNewsRefresh(cfg.News.RefreshSchedule, news); err != nil {
			return err
		}
		deps.News = news
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			appLog.WithError(err).Warn("Scheduler stop failed")
		}
	}()

	apiServer, err := api.NewServer(deps)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	checks := map[string]health.Check{}
	if db != nil {
		checks["database"] = health.PingCheck(db)
	}
	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Server.HealthPort,
		Logger:      appLog,
		Checks:      checks,
	})
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      apiServer.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.WithField("port", cfg.Server.HTTPPort).Info("API server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	healthServer.SetReady(true)

	select {
	case <-ctx.Done():
		appLog.Info("Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("API server failed: %w", err)
	}

	healthServer.SetReady(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openRepositories uses Postgres when the database is enabled and in-memory
// storage otherwise
func openRepositories(ctx context.Context, cfg *config.Config, startingCash decimal.Decimal, appLog *logrus.Logger) (*repository.Repositories, *database.DB, error) {
	if !cfg.Database.Enabled {
		appLog.Info("Database disabled; using in-memory storage")
		return repository.NewMemoryRepositories(startingCash), nil, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repos, err := repository.NewRepositories(db, startingCash)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	appLog.Info("Database connection established")
	return repos, db, nil
}

// openingPrices seeds the live quote board with the last close of each series
func openingPrices(ctx context.Context, provider feed.Provider, allow rules.AllowList, appLog *logrus.Logger) map[string]float64 {
	prices := make(map[string]float64, allow.Len())
	for _, symbol := range allow.Symbols() {
		series, err := provider.Series(ctx, symbol)
		if err != nil || series.Len() == 0 {
			appLog.WithField("symbol", symbol).Warn("No series for symbol; it will have no live quote")
			continue
		}
		prices[symbol] = series.Points[series.Len()-1].Close
	}
	return prices
}
