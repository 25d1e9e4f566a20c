package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rksoft/eshop/internal/auth/domain"
	"github.com/rksoft/eshop/internal/auth/service"
	"github.com/rksoft/eshop/pkg/httpx"
	"github.com/rksoft/eshop/pkg/jwtx"
	"github.com/rksoft/eshop/pkg/metricsx"
	"github.com/rksoft/eshop/pkg/slogx"

	_ "github.com/rksoft/eshop/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options are the switches that change which routes exist or how they are
// guarded.
type Options struct {
	// RoleAdminRequired puts add-role and assign-role behind the Admin role.
	// They are open otherwise.
	RoleAdminRequired bool

	SwaggerEnabled bool
	BuildVersion   string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier  jwtx.Verifier
	limiters  httpx.LimiterFactory
	metrics   *metricsx.Metrics
	db        Pinger
	opts      Options
	startTime time.Time
	logger    *slog.Logger

	Registrar     *service.Registrar
	Authenticator *service.Authenticator
	RoleManager   *service.RoleManager
	UserService   *service.UserService
	RolesService  *service.RolesService
}

// NewRouter wires the shared dependencies. The verifier is wrapped so every
// verification is counted.
func NewRouter(
	verifier jwtx.Verifier,
	limiters httpx.LimiterFactory,
	metrics *metricsx.Metrics,
	db Pinger,
	opts Options,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		verifier:  metrics.InstrumentVerifier(verifier),
		limiters:  limiters,
		metrics:   metrics,
		db:        db,
		opts:      opts,
		startTime: time.Now(),
		logger:    logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerRoles()
	r.registerUsers()
	r.registerSystem()

	if r.opts.SwaggerEnabled {
		r.Mux.Handle("/swagger/", httpSwagger.Handler())
	}
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			eshop Authentication Service API
//	@version		0.1.0
//	@description	Account registration, password login issuing HS256 access tokens with role claims, and role management.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern with per-route metrics ahead of mws.
func (r *Router) handle(pattern, route string, h http.Handler, mws ...httpx.Middleware) {
	mws = append([]httpx.Middleware{r.metrics.Instrument(route)}, mws...)
	r.Mux.Handle(pattern, httpx.Chain(h, mws...))
}

// userOnly admits tokens carrying the User role.
func (r *Router) userOnly() []httpx.Middleware {
	return []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleUser),
	}
}

// adminOnly admits tokens carrying the Admin role.
func (r *Router) adminOnly() []httpx.Middleware {
	return []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(domain.RoleAdmin),
	}
}

func (r *Router) registerAccount() {
	register := &RegisterHandler{Registrar: r.Registrar, Metrics: r.metrics}
	r.handle("POST /api/account/register", "register", register,
		httpx.RateLimitByIP(r.limiters, "register", httpx.ModerateLimit),
	)

	// The IP+username bucket caps guesses against one account; the IP bucket
	// caps one address spraying a password across many accounts.
	login := &LoginHandler{Authenticator: r.Authenticator, Metrics: r.metrics}
	r.handle("POST /api/account/login", "login", login,
		httpx.RateLimitByIP(r.limiters, "login_ip", httpx.ModerateLimit),
		httpx.RateLimitByIPAndJSONField(r.limiters, "login", httpx.StrictLimit, "username"),
	)
}

func (r *Router) registerRoles() {
	h := &RoleAssignHandler{RoleManager: r.RoleManager}

	guard := func(name string) []httpx.Middleware {
		if !r.opts.RoleAdminRequired {
			return []httpx.Middleware{httpx.RateLimitByIP(r.limiters, name, httpx.ModerateLimit)}
		}
		return append(r.adminOnly(), httpx.RateLimitBySubject(r.limiters, name, httpx.ModerateLimit))
	}

	r.handle("POST /api/account/add-role", "add_role", http.HandlerFunc(h.HandleCreate), guard("add_role")...)
	r.handle("POST /api/account/assign-role", "assign_role", http.HandlerFunc(h.HandleAssign), guard("assign_role")...)

	list := &RolesHandler{RolesService: r.RolesService}
	r.handle("GET /api/roles", "list_roles", list,
		append(r.adminOnly(), httpx.RateLimitBySubject(r.limiters, "list_roles", httpx.ModerateLimit))...,
	)
}

func (r *Router) registerUsers() {
	h := &UserInfoHandler{UserService: r.UserService}
	r.handle("GET /api/user", "userinfo", h,
		append(r.userOnly(), httpx.RateLimitBySubject(r.limiters, "userinfo", httpx.LenientLimit))...,
	)
}

func (r *Router) registerSystem() {
	// Probes and scrapes poll often and are not instrumented.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.opts.BuildVersion),
			httpx.RateLimitByIP(r.limiters, "livez", httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.opts.BuildVersion, r.db),
			httpx.RateLimitByIP(r.limiters, "readyz", httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
