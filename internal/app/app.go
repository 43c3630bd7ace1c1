// Package app initializes and runs the favorite-address service.
// It configures logging, storage, authentication, geocoding and routing,
// and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/favaddr/internal/auth"
	"github.com/patric-chuzhbe/favaddr/internal/config"
	"github.com/patric-chuzhbe/favaddr/internal/db/memorystorage"
	"github.com/patric-chuzhbe/favaddr/internal/db/sqldb"
	"github.com/patric-chuzhbe/favaddr/internal/db/storage"
	"github.com/patric-chuzhbe/favaddr/internal/geocoder"
	"github.com/patric-chuzhbe/favaddr/internal/ipchecker"
	"github.com/patric-chuzhbe/favaddr/internal/logger"
	"github.com/patric-chuzhbe/favaddr/internal/models"
	"github.com/patric-chuzhbe/favaddr/internal/passwords"
	"github.com/patric-chuzhbe/favaddr/internal/router"
	"github.com/patric-chuzhbe/favaddr/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the configuration, HTTP handler and storage backend
// needed to run the service.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	httpHandler http.Handler
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - wiring the services and the router
func New(configOptions ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(configOptions...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	signingKey, err := app.cfg.SigningKey()
	if err != nil {
		return nil, fmt.Errorf("in internal/app/app.go/New(): error while `app.cfg.SigningKey()` calling: %w", err)
	}

	ipChecker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("in internal/app/app.go/New(): error while `ipchecker.New()` calling: %w", err)
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokens(signingKey, app.cfg.TokenTTL)

	app.httpHandler = router.New(
		service.NewUsers(app.db, passwords.New(app.cfg.BcryptCost), tokens),
		service.NewAddresses(app.db, geocoder.New(app.cfg.GeocoderURL, app.cfg.GeocoderTimeout)),
		service.NewSystem(app.db),
		auth.New(app.db, tokens),
		ipChecker,
		router.WithBasePath(app.cfg.APIBasePath),
		router.WithCORSAllowedOrigins(app.cfg.CORSAllowedOrigins),
	)

	return app, nil
}

// Run starts the HTTP server with graceful shutdown support.
// It listens for system signals and cleans up resources upon termination.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.serve(ctx)
}

func (a *App) serve(ctx context.Context) error {
	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:              a.cfg.RunAddr,
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing storage and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Join(fmt.Errorf("server shutdown error: %w", err), a.db.Close())
		}

		return a.db.Close()

	case err := <-serverErrCh:
		return errors.Join(fmt.Errorf("server error: %w", err), a.db.Close())
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeSQLite
	}

	return models.StorageTypeMemory
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		logger.Log.Infoln("using PostgreSQL storage")
		return sqldb.New(
			context.Background(),
			sqldb.DialectPostgres,
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeSQLite:
		logger.Log.Infoln("using SQLite storage", "file", cfg.DBFileName)
		return sqldb.New(
			context.Background(),
			sqldb.DialectSQLite,
			cfg.DBFileName,
			cfg.DBConnectionTimeout,
		)
	}

	logger.Log.Infoln("using in-memory storage")
	return memorystorage.New()
}
