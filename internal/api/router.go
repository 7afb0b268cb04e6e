package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gatecheck/internal/middleware"
)

// RouterConfig carries the surface-level knobs the router needs.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter wires the middleware stack and routes. Token endpoints are open
// (they carry their own credentials); everything else sits behind bearer
// auth, and /admin additionally requires the admin flag.
func NewRouter(h *Handler, auth *middleware.Authenticator, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", h.Health)

	// Credential exchange: these authenticate via their request body.
	r.Post("/login", h.Login)
	r.Post("/token", h.RefreshAccessToken)
	r.Post("/token/revoke", h.RevokeToken)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware())

		r.Get("/user", h.CurrentUserInfo)
		r.Get("/projects/{authID}/authorize", h.AuthorizeSelf)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/users", h.CreateUser)
			r.Get("/users", h.ListUsers)
			r.Get("/users/{username}", h.GetUserInfo)
			r.Put("/users/{username}", h.UpdateUser)
			r.Delete("/users/{username}", h.DeleteUser)
			r.Post("/users/{username}/groups", h.AddUserToGroups)
			r.Delete("/users/{username}/groups", h.RemoveUserFromGroups)
			r.Post("/users/{username}/access", h.GrantProjectAccess)
			r.Get("/users/{username}/authorize", h.AuthorizeUser)

			r.Post("/groups", h.CreateGroup)
			r.Delete("/groups/{name}", h.DeleteGroup)
			r.Get("/groups/{name}/members", h.ListGroupMembers)
			r.Post("/groups/{name}/projects", h.AddProjectToGroup)

			r.Post("/projects", h.CreateProject)
			r.Get("/projects", h.ListProjects)

			r.Post("/google/certify", h.CertifyServiceAccount)
			r.Post("/google/register", h.RegisterServiceAccount)
			r.Get("/google/projects/{projectID}/service-accounts", h.ListServiceAccounts)
		})
	})

	return r
}

// Health is the liveness probe.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
