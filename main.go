package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"CryptoModelBot/config"
	"CryptoModelBot/internal/api"
	"CryptoModelBot/internal/handlers"
	"CryptoModelBot/internal/models"
	"CryptoModelBot/internal/operations/backtest"
	"CryptoModelBot/internal/operations/binance"
	"CryptoModelBot/internal/operations/github"
	"CryptoModelBot/internal/repositories"
	"CryptoModelBot/internal/services/evaluation"
	"CryptoModelBot/internal/services/strategy"
	"CryptoModelBot/internal/services/trading"
	"CryptoModelBot/internal/util"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	once := flag.Bool("once", false, "run the pipeline a single time and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := util.NewLogger("info", false)
		bootLogger.Fatal().Err(err).Msg("Failed to load config")
	}

	logger := util.NewLogger(cfg.LogLevel, cfg.LogPretty)
	cfg.Validate(logger)

	// Model store and order history
	var (
		store    repositories.ModelStore
		recorder trading.OrderRecorder
		orders   api.OrderFinder
	)
	if strings.EqualFold(cfg.Storage.Backend, config.StoragePostgres) {
		db := setupDatabase(cfg.Database, logger)
		store = repositories.NewModelRepository(db)
		orderRepo := repositories.NewOrderRepository(db)
		recorder = orderRepo
		orders = orderRepo
	} else {
		fileStore, err := repositories.NewModelFileStore(cfg.Storage.Path, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open model store")
		}
		store = fileStore
	}

	// Exchange and discovery clients
	binanceClient := binance.NewBinanceClient(cfg.Exchange.APIKey, cfg.Exchange.SecretKey, cfg.Exchange.BaseURL, logger)
	crawler := github.NewCrawler(cfg.GitHub.BaseURL, cfg.GitHub.Token, github.SearchOptions{
		Query:   cfg.GitHub.Query,
		PerPage: cfg.GitHub.PerPage,
		Sort:    cfg.GitHub.Sort,
		Order:   cfg.GitHub.Order,
	}, logger)
	trader := trading.NewTrader(binanceClient, recorder, logger)

	// Backtesting and eligibility
	registry := strategy.NewRegistry(cfg.Strategy)
	engine := backtest.NewEngine(logger, cfg.Evaluation.RiskFreeRate)
	evaluator := evaluation.NewEvaluator(engine, cfg.Evaluation.Thresholds, cfg.Evaluation.Workers, logger)

	pipeline := handlers.NewPipelineHandler(crawler, store, binanceClient, trader, evaluator, registry, handlers.PipelineConfig{
		DataSymbol:    cfg.Data.Symbol,
		Interval:      cfg.Data.Interval,
		LookbackYears: cfg.Data.LookbackYears,
		TradeSymbol:   cfg.Exchange.TradeSymbol,
		TradeQuantity: cfg.Exchange.TradeQuantity,
	}, logger)
	scheduler := handlers.NewScheduler(pipeline, cfg.Scheduler.Hour, cfg.Scheduler.Minute, logger)

	// Setup context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		scheduler.RunOnce(ctx)
		return
	}

	server := api.NewServer(cfg.Server.Addr, api.Deps{
		Outcomes:   pipeline,
		Runner:     pipeline,
		Strategies: registry,
		Models:     store,
		Orders:     orders,
	}, logger)
	server.Start()

	logger.Info().
		Int("hour", cfg.Scheduler.Hour).
		Int("minute", cfg.Scheduler.Minute).
		Strs("strategies", registry.List()).
		Msg("Scheduler started")
	scheduler.RunForever(ctx)

	logger.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Status API shutdown failed")
	}
	logger.Info().Msg("Shutdown complete")
}

func setupDatabase(dbConfig config.DatabaseConfig, logger zerolog.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		logger.Fatal().Err(err).Str("host", dbConfig.Host).Msg("Failed to connect to database")
	}

	// Auto migrate database schemas
	if err := db.AutoMigrate(&models.Model{}, &models.Order{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database")
	}

	return db
}
