// Package server wires the bridge together: configuration, logging, the
// session store backend, the API client factory, actions and the HTTP
// endpoint, and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authbridge/internal/actions"
	"github.com/dmitrijs2005/authbridge/internal/apiclient"
	"github.com/dmitrijs2005/authbridge/internal/buildinfo"
	"github.com/dmitrijs2005/authbridge/internal/cryptox"
	"github.com/dmitrijs2005/authbridge/internal/logging"
	"github.com/dmitrijs2005/authbridge/internal/server/config"
	"github.com/dmitrijs2005/authbridge/internal/server/httpapi"
	"github.com/dmitrijs2005/authbridge/internal/server/metrics"
	"github.com/dmitrijs2005/authbridge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authbridge/internal/server/sessionstore"
	"github.com/dmitrijs2005/authbridge/internal/session"
	"github.com/gorilla/sessions"
)

const sessionCleanupInterval = 10 * time.Minute

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *httpapi.HTTPServer
	db      *sql.DB
	pgStore *sessionstore.Store
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	factory, err := apiclient.NewFactory(c.APIBaseURL, c.RequestTimeout, buildinfo.UserAgent("authbridge"))
	if err != nil {
		return nil, err
	}

	keys, err := cryptox.DeriveCookieKeys([]byte(c.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("session keys error: %w", err)
	}

	store, err := app.initSessionStore(ctx, keys)
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	manager := session.NewManager(store, c.CookieName,
		session.NewRefresher(factory.Anonymous(), c.RefreshLeeway),
		logger.With("module", "session"),
		session.WithObserver(reg),
		session.WithMaxAge(c.SessionMaxAge),
	)
	acts := actions.New(factory, logger.With("module", "actions"), reg)

	app.server = httpapi.NewHTTPServer(c.EndpointAddr, logger, acts, manager, reg)
	return app, nil
}

func (app *App) initSessionStore(ctx context.Context, keys cryptox.CookieKeys) (sessions.Store, error) {
	opts := session.CookieOptions{MaxAge: app.config.SessionMaxAge, Secure: app.config.CookieSecure}

	if app.config.SessionBackend != config.BackendPostgres {
		return session.NewCookieStore(keys, opts), nil
	}

	db, err := repomanager.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app.db = db
	app.pgStore = sessionstore.New(rm.Sessions(db), keys, opts.Options())
	return app.pgStore, nil
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
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", buildinfo.Version, "session_backend", app.config.SessionBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.pgStore != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.pgStore.Cleanup(ctx, sessionCleanupInterval, app.logger)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
}
