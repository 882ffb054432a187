package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/gymplan/internal/envstruct"
	"github.com/myrjola/gymplan/internal/errors"
	"github.com/myrjola/gymplan/internal/logging"
	"github.com/myrjola/gymplan/internal/sqlite"
	"github.com/myrjola/gymplan/internal/webauthnhandler"
	"github.com/myrjola/gymplan/internal/workout"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"
)

type application struct {
	logger          *slog.Logger
	webAuthnHandler *webauthnhandler.WebAuthnHandler
	sessionManager  *scs.SessionManager
	templateFS      fs.FS
	staticDir       string
	workoutService  *workout.Service
	markdown        goldmark.Markdown
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"GYMPLAN_ADDR" envDefault:"localhost:8081"`
	// FQDN is the fully qualified domain name of the server used for WebAuthn Relying Party configuration.
	FQDN string `env:"GYMPLAN_FQDN" envDefault:"localhost"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"GYMPLAN_SQLITE_URL" envDefault:"./gymplan.sqlite3"`
	// UIPath is the directory holding the templates and static directories. Empty means ui in the module root.
	UIPath string `env:"GYMPLAN_UI_PATH" envDefault:""`
	// SaveTimeout bounds a single background save of a plan.
	SaveTimeout time.Duration `env:"GYMPLAN_SAVE_TIMEOUT" envDefault:"5s"`
	// ShutdownTimeout bounds the graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration `env:"GYMPLAN_SHUTDOWN_TIMEOUT" envDefault:"2s"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	var dirs uiDirs
	if dirs, err = resolveUIDirs(cfg.UIPath); err != nil {
		return errors.Wrap(err, "resolve ui path", slog.String("ui_path", cfg.UIPath))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db)

	var webAuthnHandler *webauthnhandler.WebAuthnHandler
	if webAuthnHandler, err = webauthnhandler.New(cfg.Addr, cfg.FQDN, logger, sessionManager, db); err != nil {
		return errors.Wrap(err, "new webauthn handler")
	}

	app := application{
		logger:          logger,
		webAuthnHandler: webAuthnHandler,
		sessionManager:  sessionManager,
		templateFS:      os.DirFS(dirs.templates),
		staticDir:       dirs.static,
		workoutService:  workout.NewService(db, logger, cfg.SaveTimeout),
		markdown:        newMarkdown(),
	}

	handler := app.routes()

	// The persister outlives the server so that it saves the changes of the last requests before shutting down.
	persisterCtx, stopPersister := context.WithCancel(context.WithoutCancel(ctx))
	defer stopPersister()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stopPersister()
		return app.configureAndStartServer(gctx, cfg.Addr, cfg.ShutdownTimeout, handler)
	})
	g.Go(func() error {
		return app.workoutService.RunPersister(persisterCtx)
	})
	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "serve")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
