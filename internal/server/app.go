// Package server wires the entry store, the user service and the gRPC
// endpoint together and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/wellkeeper/internal/dbx"
	"github.com/dmitrijs2005/wellkeeper/internal/logging"
	"github.com/dmitrijs2005/wellkeeper/internal/server/config"
	"github.com/dmitrijs2005/wellkeeper/internal/server/users"
	"github.com/dmitrijs2005/wellkeeper/internal/store"
	"github.com/dmitrijs2005/wellkeeper/internal/store/postgres"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlite"
	"github.com/dmitrijs2005/wellkeeper/internal/store/sqlstore"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	gs "github.com/dmitrijs2005/wellkeeper/internal/server/grpc"
)

// entryStore is what both storage backends provide.
type entryStore interface {
	store.Store
	DB() *sql.DB
	Dialect() sqlstore.Dialect
	Close() error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	store       entryStore
	userService *users.Service
}

func openStore(ctx context.Context, c *config.Config, logger logging.Logger) (entryStore, error) {
	switch c.Driver {
	case config.DriverPostgres:
		return postgres.Open(ctx, c.DatabaseDSN, postgres.Options{
			Pool:   dbx.Pool{MaxOpenConns: 20, MaxIdleConns: 5},
			Logger: logger,
			Retry:  &postgres.Retry{Initial: postgres.DefaultRetry.Initial, Max: c.ListenRetryMax},
		})
	case config.DriverSQLite:
		return sqlite.Open(ctx, c.DatabaseDSN, logger)
	}
	return nil, fmt.Errorf("unknown storage driver %q", c.Driver)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	st, err := openStore(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := users.NewService(users.NewSQLRepository(st.DB(), st.Dialect()), c.SecretKey, c.AccessTokenValidityDuration)

	return &App{config: c, logger: logger, store: st, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.store, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context) {
	if app.config.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting metrics server", "address", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.Driver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "closing store", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
