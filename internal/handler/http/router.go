package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/peoplecore/hrops-backend-go/internal/handler/http/middleware"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	authHandler AuthHandler,
	leaveHandler LeaveHandler,
	env string,
	frontendURL string,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrops-backend"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))
			r.Use(middleware.Identity)

			r.Route("/leave/balances", func(r chi.Router) {
				r.Get("/", leaveHandler.GetBalances)
				r.Post("/set", leaveHandler.SetBalances)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", leaveHandler.ListRequests)
				r.Post("/", leaveHandler.CreateRequest)
				r.Post("/{id}/cancel", leaveHandler.CancelRequest)
				r.Post("/{id}/decision", leaveHandler.DecideRequest)
			})

			r.Route("/absences", func(r chi.Router) {
				r.Get("/", leaveHandler.ListAbsences)
				r.Get("/current", leaveHandler.CurrentAbsences)
			})
		})
	})

	return r
}
