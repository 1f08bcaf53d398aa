package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/albumhub/api/docs" // Swagger docs
	"github.com/aussiebroadwan/albumhub/internal/api/domain"
	"github.com/aussiebroadwan/albumhub/internal/api/service"
	"github.com/aussiebroadwan/albumhub/internal/api/store"
	"github.com/aussiebroadwan/albumhub/pkg/httpx"
	"github.com/aussiebroadwan/albumhub/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	limiter      *httpx.RateLimiter

	AuthService  *service.AuthService
	UserService  *service.UserService
	TokenService *service.TokenService
}

// NewRouter builds a router. The limiter is shared by every authenticated
// route so a user's budget is global across the API.
func NewRouter(buildVersion string, st store.Store, limiter *httpx.RateLimiter, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		limiter:      limiter,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Album Hub API
//	@version					0.1.0
//	@description				Authentication and account endpoints of the album catalogue.
//	@description
//	@description				Access and refresh tokens are HS256 JWTs. Authenticated routes are rate limited per user.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/albumhub
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
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

// secured wraps h with authentication, per-user throttling and, when roles
// are given, a role check.
func (r *Router) secured(h http.HandlerFunc, roles ...domain.Role) http.Handler {
	mws := []httpx.Middleware{
		Authenticate(r.TokenService),
		RequireAuthenticated(),
		RateLimitByUser(r.limiter),
	}
	if len(roles) > 0 {
		mws = append(mws, RequireRole(roles...))
	}
	return httpx.Chain(h, mws...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.AuthService, Users: r.UserService}

	// Public: refresh carries its own token in the Authorization header, so
	// it must not go through Authenticate.
	r.Mux.HandleFunc("POST /api/v1/auth/login", h.HandleLogin)
	r.Mux.HandleFunc("POST /api/v1/auth/register", h.HandleRegister)
	r.Mux.HandleFunc("POST /api/v1/auth/refresh", h.HandleRefresh)

	r.Mux.Handle("POST /api/v1/auth/logout", r.secured(h.HandleLogout))
	r.Mux.Handle("GET /api/v1/auth/me", r.secured(h.HandleMe))
}

func (r *Router) registerUsers() {
	me := &AuthHandler{Users: r.UserService}
	h := &UsersHandler{Users: r.UserService}

	r.Mux.Handle("GET /api/v1/usuarios/me", r.secured(me.HandleMe))
	r.Mux.Handle("PUT /api/v1/usuarios/me/senha", r.secured(h.HandleChangePassword))

	r.Mux.Handle("GET /api/v1/usuarios", r.secured(h.HandleList, domain.RoleAdmin))
	r.Mux.Handle("PATCH /api/v1/usuarios/{username}/ativo", r.secured(h.HandleToggleActive, domain.RoleAdmin))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
