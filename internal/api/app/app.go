package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	httpapi "github.com/aussiebroadwan/albumhub/internal/api/http"
	"github.com/aussiebroadwan/albumhub/internal/api/service"
	"github.com/aussiebroadwan/albumhub/internal/api/store"
	"github.com/aussiebroadwan/albumhub/internal/api/store/drivers/sqlite"
	"github.com/aussiebroadwan/albumhub/pkg/cryptox"
	"github.com/aussiebroadwan/albumhub/pkg/httpx"
	"github.com/aussiebroadwan/albumhub/pkg/jwtx"
	"github.com/aussiebroadwan/albumhub/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application owns every long-lived dependency of the API process.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	revocations *service.RevocationList
	limiter     *httpx.RateLimiter

	tokenService        *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New validates cfg and wires the application. Any misconfiguration is
// returned here, before a port is opened.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "albumhub-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.initServices(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (app *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.housekeepingService.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info("api starting", "port", app.cfg.Port, "version", BuildVersion)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("shutdown requested")
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown drains HTTP, stops housekeeping and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices(ctx context.Context) error {
	codec, err := jwtx.NewHS256Codec([]byte(app.cfg.JWTSecret))
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}

	app.revocations = service.NewRevocationList(app.db)
	n, err := app.revocations.Load(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load revoked tokens: %w", err)
	}
	app.logger.Info("revocation list loaded", "entries", n)

	app.tokenService = &service.TokenService{
		Codec:       codec,
		Issuer:      app.cfg.Issuer,
		AccessTTL:   app.cfg.AccessTTL,
		RefreshTTL:  app.cfg.RefreshTTL,
		Revocations: app.revocations,
	}

	users := &service.StoreDirectory{Store: app.db}
	hasher := cryptox.Hasher{}

	app.authService = &service.AuthService{Users: users, Hasher: hasher, Tokens: app.tokenService}
	if err := app.authService.Prepare(); err != nil {
		return fmt.Errorf("failed to prepare login hasher: %w", err)
	}
	app.userService = &service.UserService{Users: users, Hasher: hasher, Tokens: app.tokenService}
	app.bootstrapService = &service.BootstrapService{Store: app.db, Users: users, Hasher: hasher}

	if app.cfg.AdminUsername != "" {
		if _, err := app.bootstrapService.SeedAdmin(ctx, service.AdminSeed{
			Username: app.cfg.AdminUsername,
			Password: app.cfg.AdminPassword,
			Email:    app.cfg.AdminEmail,
		}); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) initHTTP() error {
	limiter, err := httpx.NewRateLimiter(app.cfg.RateLimitCapacity, app.cfg.RateLimitRefillPeriod)
	if err != nil {
		return err
	}
	app.limiter = limiter

	router := httpapi.NewRouter(BuildVersion, app.db, app.limiter, app.logger)
	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.UserService = app.userService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
