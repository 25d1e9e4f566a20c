package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/rksoft/eshop/internal/auth/http"
	"github.com/rksoft/eshop/internal/auth/service"
	"github.com/rksoft/eshop/internal/auth/store"
	"github.com/rksoft/eshop/internal/auth/store/drivers/postgres"
	"github.com/rksoft/eshop/internal/auth/store/drivers/sqlite"
	"github.com/rksoft/eshop/pkg/cryptox"
	"github.com/rksoft/eshop/pkg/httpx"
	"github.com/rksoft/eshop/pkg/jwtx"
	"github.com/rksoft/eshop/pkg/metricsx"
	"github.com/rksoft/eshop/pkg/slogx"
)

// rateLimitPrefix namespaces limiter keys in a shared Redis.
const rateLimitPrefix = "auth"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	redis    *redis.Client // nil when rate limits are kept in memory
	limiters httpx.LimiterFactory
	metrics  *metricsx.Metrics

	// Services
	registrar     *service.Registrar
	authenticator *service.Authenticator
	verifier      *service.TokenVerifier
	roleManager   *service.RoleManager
	userService   *service.UserService
	rolesService  *service.RolesService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: cfg.Version,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metricsx.New(),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := app.initRateLimits(ctx); err != nil {
		app.closeDependencies()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		app.closeDependencies()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run listens on the configured address and serves until ctx is done.
func (app *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", app.cfg.ListenAddr)
	if err != nil {
		app.closeDependencies()
		return fmt.Errorf("listen %s: %w", app.cfg.ListenAddr, err)
	}
	return app.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (app *Application) Serve(ctx context.Context, ln net.Listener) error {
	app.logger.Info("auth service starting",
		"addr", ln.Addr().String(),
		"db_driver", app.cfg.DBDriver,
		"role_admin_required", app.cfg.RoleAdminRequired,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		// ErrServerClosed means Shutdown was called elsewhere and owns cleanup.
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		app.closeDependencies()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
	}

	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.closeDependencies(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeDependencies() error {
	var errs []error
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
		app.redis = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
		app.db = nil
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DBDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DBDSN)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DBPath))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)
	return nil
}

// initRateLimits shares limiter state through Redis when an address is
// configured; otherwise every replica limits on its own.
func (app *Application) initRateLimits(ctx context.Context) error {
	if app.cfg.RedisAddr == "" {
		app.limiters = httpx.MemoryLimiters()
		app.logger.Info("rate limiting in memory")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
	}

	app.redis = client
	app.limiters = httpx.RedisLimiters(client, rateLimitPrefix)
	app.logger.Info("rate limiting via redis", "addr", app.cfg.RedisAddr)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperPath)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	credentials, err := store.NewCredentialAdapter(app.db, cryptox.NewHasher(pepper), store.DefaultPasswordPolicy)
	if err != nil {
		return err
	}
	roles := store.NewRoleAdapter(app.db)

	signer, err := jwtx.NewSignerHS256(app.cfg.JWTKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}

	tokens := service.TokenConfig{
		Issuer:   app.cfg.JWTIssuer,
		Audience: app.cfg.JWTAudience,
		Validity: app.cfg.TokenValidity,
	}
	app.verifier, err = service.NewTokenVerifier(app.cfg.JWTKey, tokens, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.registrar = &service.Registrar{Credentials: credentials, Roles: roles}
	app.authenticator = &service.Authenticator{
		Credentials: credentials,
		Roles:       roles,
		Signer:      signer,
		Config:      tokens,
	}
	app.roleManager = &service.RoleManager{Credentials: credentials, Roles: roles}
	app.userService = &service.UserService{Credentials: credentials, Roles: roles}
	app.rolesService = &service.RolesService{Catalog: roles}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		app.limiters,
		app.metrics,
		app.db,
		httpapi.Options{
			RoleAdminRequired: app.cfg.RoleAdminRequired,
			SwaggerEnabled:    app.cfg.SwaggerEnabled,
			BuildVersion:      app.cfg.Version,
		},
		app.logger,
	)

	// Wire services to router
	router.Registrar = app.registrar
	router.Authenticator = app.authenticator
	router.RoleManager = app.roleManager
	router.UserService = app.userService
	router.RolesService = app.rolesService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
