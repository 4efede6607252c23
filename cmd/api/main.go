package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine/internal/handler/http"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/postgresql"
	adhocService "github.com/cmlabs-hris/payroll-engine/internal/service/adhoc"
	attendanceService "github.com/cmlabs-hris/payroll-engine/internal/service/attendance"
	loanService "github.com/cmlabs-hris/payroll-engine/internal/service/loan"
	payrollService "github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	salaryService "github.com/cmlabs-hris/payroll-engine/internal/service/salary"
	taxService "github.com/cmlabs-hris/payroll-engine/internal/service/tax"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	structureRepo := postgresql.NewSalaryStructureRepository(db)
	taxConfigRepo := postgresql.NewTaxConfigurationRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	adHocRepo := postgresql.NewAdHocItemRepository(db)
	runRepo := postgresql.NewPayrollRunRepository(db)
	payslipRepo := postgresql.NewPayslipRepository(db)
	attendanceRecordRepo := postgresql.NewAttendanceRecordRepository(db)
	transactor := postgresql.NewTransactor(db)

	progressHub := sse.NewHub(256)

	taxSvc := taxService.NewTaxService(taxConfigRepo, cfg.Payroll.TaxCountry)
	loanSvc := loanService.NewLoanService(transactor, loanRepo)
	adHocSvc := adhocService.NewAdHocService(adHocRepo)
	composer := payrollService.NewComposer(
		transactor,
		salaryService.NewResolver(structureRepo),
		taxSvc,
		attendanceService.NewAggregator(attendanceRecordRepo),
		adHocSvc,
		loanSvc,
		payslipRepo,
		cfg.Payroll.PayslipPrefix,
	)
	payrollSvc := payrollService.NewPayrollService(
		runRepo,
		payslipRepo,
		employeeRepo,
		taxSvc,
		composer,
		payrollService.Options{
			Workers:         cfg.Payroll.Workers,
			EmployeeTimeout: cfg.Payroll.EmployeeTimeout,
			FYStartMonth:    cfg.Payroll.FYStartMonth,
			Progress:        progressHub,
		},
	)

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(runRepo, cfg.Payroll.StaleRunAfter, cfg.Payroll.RecoveryInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)

	router := appHTTP.NewRouter(logger, cfg.App.CORSOrigins, appHTTP.Handlers{
		Payroll: appHTTP.NewPayrollHandler(payrollSvc, progressHub),
		Loan:    appHTTP.NewLoanHandler(loanSvc),
		AdHoc:   appHTTP.NewAdHocHandler(adHocSvc),
		Tax:     appHTTP.NewTaxHandler(taxSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	scheduler.Wait()
}
