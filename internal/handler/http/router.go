package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

type Handlers struct {
	Payroll PayrollHandler
	Loan    LoanHandler
	AdHoc   AdHocHandler
	Tax     TaxHandler
}

func NewRouter(logger *slog.Logger, allowedOrigins []string, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/companies/{companyID}", func(r chi.Router) {
			r.Post("/payroll-runs", h.Payroll.CreateRun)
			r.Get("/employees/{employeeID}/payslips", h.Payroll.ListEmployeePayslips)

			r.Route("/loans", func(r chi.Router) {
				r.Post("/", h.Loan.Create)
				r.Get("/{id}", h.Loan.Get)
				r.Get("/{id}/schedule", h.Loan.GetSchedule)
				r.Patch("/{id}/status", h.Loan.UpdateStatus)
			})

			r.Post("/adhoc-items", h.AdHoc.Create)

			r.Route("/tax-configurations", func(r chi.Router) {
				r.Post("/", h.Tax.CreateConfiguration)
				r.Get("/{financialYear}", h.Tax.GetConfiguration)
			})
		})

		r.Route("/payroll-runs/{runID}", func(r chi.Router) {
			r.Get("/", h.Payroll.GetRun)
			r.Post("/process", h.Payroll.ProcessRun)
			r.Post("/lock", h.Payroll.LockRun)
			r.Get("/events", h.Payroll.StreamRunEvents)
			r.Get("/payslips", h.Payroll.ListRunPayslips)
			r.Post("/employees/{employeeID}/payslip", h.Payroll.GeneratePayslip)
		})

		r.Route("/payslips/{id}", func(r chi.Router) {
			r.Get("/", h.Payroll.GetPayslip)
			r.Patch("/status", h.Payroll.UpdatePayslipStatus)
		})

		r.Route("/adhoc-items/{id}", func(r chi.Router) {
			r.Get("/", h.AdHoc.Get)
			r.Post("/submit", h.AdHoc.Submit)
			r.Post("/approve", h.AdHoc.Approve)
			r.Post("/reject", h.AdHoc.Reject)
			r.Post("/cancel", h.AdHoc.Cancel)
		})
	})
	return r
}
