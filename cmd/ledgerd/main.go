package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/staybooked/ledger-core/internal/core/ports/services"
	coreservices "github.com/staybooked/ledger-core/internal/core/services"
	"github.com/staybooked/ledger-core/internal/platform/config"
	"github.com/staybooked/ledger-core/internal/platform/logging"
	"github.com/staybooked/ledger-core/internal/repositories/database/pgsql"
	"github.com/staybooked/ledger-core/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const postingInterval = 30 * time.Second

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg); err != nil {
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := coreservices.NewServiceContainer(repos)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	logger.Info("Ledger engine ready", slog.String("posting_interval", postingInterval.String()))
	runPostingWorker(ctx, logger, container, cfg.SystemUserID)
	logger.Info("Shutting down.")
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection over the pgx stdlib driver.
func runMigrations(logger *slog.Logger, cfg *config.Config) error {
	logger.Info("Running database migrations...")
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(cfg.MigrationsPath, "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", upErr.Error()))
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// runPostingWorker periodically drains approved transactions that have not
// been posted yet. Posting is idempotent, so overlapping runs are harmless.
func runPostingWorker(ctx context.Context, logger *slog.Logger, container *services.ServiceContainer, systemUserID string) {
	ticker := time.NewTicker(postingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := container.Transactions.GetPendingForPosting(ctx)
			if err != nil {
				logger.Error("Failed to list pending transactions", slog.String("error", err.Error()))
				continue
			}
			for _, txn := range pending {
				posted, err := container.Transactions.Post(ctx, txn.TransactionID, systemUserID)
				if err != nil {
					logger.Error("Failed to post transaction",
						slog.String("transaction_id", txn.TransactionID),
						slog.String("error", err.Error()))
					continue
				}
				if posted {
					logger.Info("Posted transaction",
						slog.String("transaction_id", txn.TransactionID),
						slog.String("transaction_number", txn.TransactionNumber))
				}
			}
		}
	}
}
