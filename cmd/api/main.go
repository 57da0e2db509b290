package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sjf12/AACL/internal/adapter/handler"
	"github.com/Sjf12/AACL/internal/adapter/storage"
	"github.com/Sjf12/AACL/internal/core/config"
	"github.com/Sjf12/AACL/internal/core/domain"
	"github.com/Sjf12/AACL/internal/core/grammar"
	"github.com/Sjf12/AACL/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// 3. Load the account seed (once; nothing is written back)
	seed, err := loadAccounts(cfg)
	if err != nil {
		slog.Error("❌ Loading accounts failed", "error", err)
		os.Exit(1)
	}
	accounts, err := storage.NewAccountStore(seed)
	if err != nil {
		slog.Error("❌ Invalid account seed", "error", err)
		os.Exit(1)
	}
	slog.Info("Accounts loaded", "count", len(seed), "total_balance", accounts.TotalBalance())

	// 4. Setup Stores, Services & Handlers
	registry := storage.NewGrammarRegistry()
	ledger := storage.NewLedger()

	var webhooks *worker.WebhookWorker
	validatorOpts := []grammar.Option{}
	if cfg.WebhookURL != "" {
		webhooks = worker.NewWebhookWorker(cfg.WebhookURL, cfg.WebhookSecret)
		validatorOpts = append(validatorOpts, grammar.WithEvents(webhooks))
	}

	issuer := grammar.NewIssuer(accounts, registry)
	validator := grammar.NewValidator(accounts, registry, ledger, validatorOpts...)

	app := handler.NewRouter(
		&handler.GrammarHandler{Issuer: issuer, Validator: validator},
		&handler.AccountHandler{Accounts: accounts, Ledger: ledger},
	)

	// 5. Start background workers and the server
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		worker.RunReaper(ctx, registry, cfg.ReapInterval, time.Now)
		return nil
	})
	if webhooks != nil {
		g.Go(func() error {
			webhooks.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})

	// ==========================================
	// GRACEFUL SHUTDOWN
	// ==========================================

	// Listen for OS signals (Ctrl+C, Docker Stop)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("🛑 Shutting down server...")
	case <-ctx.Done():
		slog.Error("Server stopped unexpectedly")
	}

	// Tell Fiber to stop accepting new requests and finish active ones
	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	cancel()

	if err := g.Wait(); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("👋 Server exited successfully")
}

// loadAccounts prefers Postgres when DATABASE_URL is set, then the
// accounts file, then the built-in defaults.
func loadAccounts(cfg *config.Config) ([]domain.Account, error) {
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := storage.ConnectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()

		slog.Info("✅ Connected to Postgres, reading account seed")
		return storage.LoadAccountsFromDB(ctx, pool)
	}

	accounts, err := storage.LoadAccountsFile(cfg.AccountsFile)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("Accounts file not found, using default users", "path", cfg.AccountsFile)
		return storage.DefaultAccounts(), nil
	}
	return accounts, err
}
