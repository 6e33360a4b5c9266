package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/shift-reconcile/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	// JWTService enables bearer authentication on /api/v1 when set.
	JWTService jwt.Service
}

func NewRouter(
	cfg RouterConfig,
	branchHandler BranchHandler,
	scheduleHandler ScheduleHandler,
	attendanceHandler AttendanceHandler,
	compareHandler CompareHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  cfg.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTService != nil {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(cfg.JWTService.JWTAuth()))
		}

		r.Get("/branches", branchHandler.List)
		r.Get("/personnel", scheduleHandler.ListPersonnel)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", scheduleHandler.List)
			r.Post("/import", scheduleHandler.Import)
			r.Post("/parse", scheduleHandler.Parse)
			r.Put("/remark", scheduleHandler.UpdateRemark)
		})

		r.Route("/attendances", func(r chi.Router) {
			r.Get("/", attendanceHandler.List)
			r.Post("/import", attendanceHandler.Import)
			r.Put("/remark", attendanceHandler.UpdateRemark)
		})

		r.Route("/compare", func(r chi.Router) {
			r.Get("/", compareHandler.Compare)
			r.Post("/corrections", compareHandler.SubmitCorrection)
			r.Post("/confirmations", compareHandler.ConfirmIgnore)
			r.Delete("/confirmations", compareHandler.UnconfirmIgnore)
		})
	})

	return r
}
