package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/export"
	gsheets "fintrack/internal/export/google"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// .env is for local development; absent in containers.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	codec, err := auth.NewCodec([]byte(cfg.JWTSecret),
		auth.WithTTLs(cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	if err != nil {
		logger.Error("failed to initialize token codec", "error", err)
		os.Exit(1)
	}

	hasher := auth.NewHasher(cfg.BcryptCost)
	if cfg.BcryptCost < bcrypt.DefaultCost {
		logger.Warn("bcrypt cost below library default", "cost", cfg.BcryptCost)
	}
	sessions := auth.NewSessions(repo, hasher, codec, int64(cfg.MaxConcurrentHashes))

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("audit publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("audit publishing disabled - no AMQP_URL provided")
	}

	var mirror export.Mirror
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheets.New(context.Background(), gsheets.Config{
			SpreadsheetID: cfg.GoogleSpreadsheetID,
			SheetName:     cfg.GoogleSheetName,
		})
		if err != nil {
			logger.Error("failed to initialize sheets mirror", "error", err)
			os.Exit(1)
		}
		mirror = sheetsClient
		logger.Info("sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	accounts := services.NewAccountService(repo, sessions, amqpClient)
	reports := services.NewReportService(repo)
	transactions := services.NewTransactionService(repo, amqpClient, mirror, reports)
	budgets := services.NewBudgetService(repo, amqpClient)

	cacheManager := cache.NewManager()
	cacheManager.Register(reports.CacheCleaner())
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(apphttp.Config{
		Addr:                  ":" + cfg.Port,
		CORSAllowOrigin:       cfg.CORSAllowOrigin,
		AuthRequestsPerMinute: cfg.AuthRateLimit,
	}, accounts, transactions, budgets, reports, auth.NewAuthenticator(codec))

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting fintrack server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
