// Command server runs the PiggyVest HTTP API.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/httpapi"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/notify"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage/postgres"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/config"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/platform/migrations"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format}).
		WithField("component", "server")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores := app.Stores{}
	var db *sql.DB
	if cfg.Database.DSN != "" {
		var err error
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := migrations.Apply(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}

		store := postgres.New(db)
		stores.Users = store
		stores.Savings = store
	} else {
		log.Warn("DATABASE_DSN not set; using in-memory store")
	}

	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		return fmt.Errorf("configure notifier: %w", err)
	}

	application, err := app.New(cfg, stores, notifier, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           httpapi.New(application, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func buildNotifier(cfg *config.Config, log *logger.Logger) (notify.Notifier, error) {
	if cfg.Notifier.Endpoint == "" {
		log.Warn("NOTIFY_ENDPOINT not set; verification codes are logged only")
		return notify.NewLogSender(log), nil
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return notify.NewHTTPSender(client, cfg.Notifier.Endpoint, cfg.Notifier.APIKey, cfg.Notifier.From, cfg.Notifier.To, log)
}
