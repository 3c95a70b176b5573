package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"studyhub/internal/health"
	"studyhub/internal/http/handler"
	"studyhub/internal/http/middleware"
	"studyhub/internal/http/response"
	"studyhub/internal/service"
)

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	StudyHandler      *handler.StudyHandler
	AttendanceHandler *handler.AttendanceHandler
	TokenVerifier     service.TokenVerifier
	AuthRateLimitRPM  int
	APIRateLimitRPM   int
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	authn := middleware.AuthMiddleware(dep.TokenVerifier)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/auth", func(r chi.Router) {
		r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
		r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
		r.With(authLimiter).Post("/refresh", dep.AuthHandler.Refresh)
		r.With(authLimiter).Post("/logout", dep.AuthHandler.Logout)
		r.With(authLimiter).Get("/google/login", dep.AuthHandler.GoogleLogin)
		r.With(authLimiter).Get("/google/callback", dep.AuthHandler.GoogleCallback)
		r.With(authn, authLimiter).Post("/change-password", dep.AuthHandler.ChangePassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(authn)
		r.Get("/me", dep.UserHandler.Me)
		r.Patch("/me", dep.UserHandler.UpdateMe)
		r.Get("/me/studies", dep.StudyHandler.ListMyStudies)

		r.Route("/studies", func(r chi.Router) {
			r.Post("/", dep.StudyHandler.Create)
			r.Get("/", dep.StudyHandler.List)
			r.Get("/{id}", dep.StudyHandler.Get)
			r.Post("/{id}/join", dep.StudyHandler.Join)
			r.Delete("/{id}/leave", dep.StudyHandler.Leave)
			r.Get("/{id}/members", dep.StudyHandler.ListMembers)
			r.Patch("/{id}/members/{userId}/status", dep.StudyHandler.SetMemberStatus)
			r.Delete("/{id}/members/{userId}", dep.StudyHandler.RemoveMember)
			r.Post("/{id}/sessions", dep.AttendanceHandler.CreateSession)
			r.Get("/{id}/sessions", dep.AttendanceHandler.ListSessions)
			r.Post("/{id}/sessions/{sid}/attendance", dep.AttendanceHandler.Record)
			r.Get("/{id}/sessions/{sid}/attendance", dep.AttendanceHandler.ListRecords)
			r.Get("/{id}/attendance/summary", dep.AttendanceHandler.StudySummary)
			r.Get("/{id}/attendance/summary/me", dep.AttendanceHandler.MySummary)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/users", dep.UserHandler.ListUsers)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
