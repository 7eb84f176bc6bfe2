package http

import (
	"io"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
	// LogOutput defaults to os.Stdout.
	LogOutput io.Writer
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	authHandler AuthHandler,
	shiftHandler ShiftHandler,
	attendanceHandler AttendanceHandler,
	payrollHandler PayrollHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "shift-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/logout", authHandler.Logout)
				r.Get("/me", authHandler.Me)
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Post("/", shiftHandler.Create)
				r.Get("/", shiftHandler.List)
				r.Get("/{id}", shiftHandler.Get)
				r.Patch("/{id}", shiftHandler.Update)
				r.Delete("/{id}", shiftHandler.Delete)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Get("/me", attendanceHandler.GetMyStatus)
			})

			// Admin only
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/shifts/{id}", func(r chi.Router) {
					r.Patch("/", shiftHandler.AdminUpdate)
					r.Delete("/", shiftHandler.AdminDelete)
					r.Post("/resolve-review", shiftHandler.ResolveReview)
					r.Post("/cancel", shiftHandler.Cancel)
				})

				r.Route("/payroll/settlements", func(r chi.Router) {
					r.Post("/", payrollHandler.Settle)
					r.Get("/", payrollHandler.List)
					r.Post("/bulk", payrollHandler.SettleAll)
					r.Put("/recompute", payrollHandler.Recompute)
					r.Get("/{id}", payrollHandler.Get)
				})

				r.Route("/reports", func(r chi.Router) {
					r.Get("/overview", reportHandler.Overview)
					r.Get("/employees", reportHandler.Employees)
					r.Get("/export", reportHandler.Export)
				})
			})
		})
	})
	return r
}
