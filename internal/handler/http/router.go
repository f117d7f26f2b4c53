package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkocak/librarian/internal/auth"
	"github.com/dkocak/librarian/internal/domain"
	"github.com/dkocak/librarian/internal/service"
	"github.com/dkocak/librarian/pkg/health"
	"github.com/dkocak/librarian/pkg/middleware"
)

// NewRouter creates a chi router with all catalog service routes registered.
//
// The route surface is split into three tiers: public reads and auth
// endpoints, the refresh endpoint gated by the refresh-token middleware, and
// catalog writes gated by the access-token middleware plus a role check.
func NewRouter(
	authService *service.AuthService,
	catalogService *service.CatalogService,
	tokens *auth.TokenManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing("librarian"))
	r.Use(middleware.PrometheusMetrics("librarian"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validators bridging middleware to the internal token manager.
	accessValidator := func(token string) (*middleware.Claims, error) {
		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: claims.UserID, Role: claims.Role}, nil
	}
	refreshValidator := func(token string) (*middleware.Claims, error) {
		claims, err := tokens.ValidateRefreshToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: claims.UserID, Role: claims.Role}, nil
	}

	authHandler := NewAuthHandler(authService, logger)
	bookHandler := NewBookHandler(catalogService, logger)
	authorHandler := NewAuthorHandler(catalogService, logger)
	categoryHandler := NewCategoryHandler(catalogService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.With(ContentTypeJSON).Post("/register", authHandler.Register)
			r.With(ContentTypeJSON).Post("/login", authHandler.Login)

			// Refresh is the only route verified against the refresh secret.
			r.With(middleware.Authenticate(refreshValidator)).Post("/refresh", authHandler.Refresh)
		})

		// Current user profile (access token required)
		r.With(middleware.Authenticate(accessValidator)).Get("/users/me", authHandler.Me)

		// Catalog reads are public.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(60))

			r.Get("/books", bookHandler.List)
			r.Get("/books/{id}", bookHandler.Get)
			r.Get("/authors", authorHandler.List)
			r.Get("/authors/{id}", authorHandler.Get)
			r.Get("/categories", categoryHandler.List)
			r.Get("/categories/{id}", categoryHandler.Get)
		})

		// Catalog writes require an access token and a staff role.
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Authenticate(accessValidator))
			r.Use(middleware.RequireRole(domain.RoleAdmin, domain.RoleLibrarian))

			r.Post("/books", bookHandler.Create)
			r.Put("/books/{id}", bookHandler.Update)
			r.Delete("/books/{id}", bookHandler.Delete)

			r.Post("/authors", authorHandler.Create)
			r.Put("/authors/{id}", authorHandler.Update)
			r.Delete("/authors/{id}", authorHandler.Delete)

			r.Post("/categories", categoryHandler.Create)
			r.Put("/categories/{id}", categoryHandler.Update)
			r.Delete("/categories/{id}", categoryHandler.Delete)
		})
	})

	return r
}
