// Package server initializes and runs the profile sync server.
// It wires storage, the editing-session services and their collaborators,
// handles graceful shutdown, and starts the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lighthouse-crew/profilesync/internal/logging"
	"github.com/lighthouse-crew/profilesync/internal/server/certifications"
	"github.com/lighthouse-crew/profilesync/internal/server/config"
	"github.com/lighthouse-crew/profilesync/internal/server/httpapi"
	"github.com/lighthouse-crew/profilesync/internal/server/identity"
	"github.com/lighthouse-crew/profilesync/internal/server/relay"
	"github.com/lighthouse-crew/profilesync/internal/server/repositories/repomanager"
	"github.com/lighthouse-crew/profilesync/internal/server/sessions"
	"github.com/lighthouse-crew/profilesync/internal/server/statusbus"
	"github.com/lighthouse-crew/profilesync/internal/server/uploads"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *sessions.Service
	uploads  *uploads.Service
	relay    relay.Relay
	bus      statusbus.Publisher
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	resolver := identity.NewResolver(rm.Accounts(db), rm.Profiles(db), logger)
	reconciler := certifications.NewReconciler(db, rm, logger)

	var rel relay.Relay
	if c.RelayBaseURL != "" {
		rel = relay.NewCRMRelay(c.RelayBaseURL, c.RelayToken, c.RelayQueueSize, logger)
	} else {
		rel = relay.NewNoopRelay(logger)
	}

	var bus statusbus.Publisher
	if c.RedisAddr != "" {
		bus, err = statusbus.NewRedisPublisher(c.RedisAddr, c.RedisChannel, logger)
		if err != nil {
			return nil, fmt.Errorf("redis init error: %w", err)
		}
	} else {
		bus = statusbus.NewLogPublisher(logger)
	}

	ss := sessions.NewService(db, rm, resolver, reconciler, rel, bus, c.AutosaveDebounce, logger)
	us := uploads.NewService(c)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		sessions: ss,
		uploads:  us,
		relay:    rel,
		bus:      bus,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.sessions, app.uploads, app.db, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.sessions.CloseAll()
	if err := app.relay.Close(); err != nil {
		app.logger.Error(ctx, "relay close error", "error", err)
	}
	if err := app.bus.Close(); err != nil {
		app.logger.Error(ctx, "status bus close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
