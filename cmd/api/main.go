package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"

	"github.com/cmlabs-hris/shift-reconcile/internal/config"
	appHTTP "github.com/cmlabs-hris/shift-reconcile/internal/handler/http"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/cron"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/database"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/reconcile"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/shifttable"
	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/storage"
	"github.com/cmlabs-hris/shift-reconcile/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/shift-reconcile/internal/service/attendance"
	branchService "github.com/cmlabs-hris/shift-reconcile/internal/service/branch"
	compareService "github.com/cmlabs-hris/shift-reconcile/internal/service/compare"
	"github.com/cmlabs-hris/shift-reconcile/internal/service/file"
	scheduleService "github.com/cmlabs-hris/shift-reconcile/internal/service/schedule"
)

const (
	appName    = "shift-reconcile"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	level, _ := cfg.LogLevel()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		log.Fatal("Error connecting to database:", err)
	}
	defer db.Close()

	if err := postgresql.EnsureSchema(ctx, db); err != nil {
		log.Fatal("Failed to prepare schema:", err)
	}

	scheduleRepo := postgresql.NewScheduleRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	confirmationRepo := postgresql.NewConfirmationRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	transactor := postgresql.NewTransactor(db)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}
	fileService := file.NewFileService(fileStorage)

	engine := reconcile.NewEngine(reconcile.Options{
		OvertimeThresholdMinutes: cfg.Compare.OvertimeThresholdMinutes,
		PunchPolicy:              cfg.Compare.PunchPolicy,
	})

	scheduleSvc := scheduleService.NewScheduleService(
		transactor,
		scheduleRepo,
		attendanceRepo,
		fileService,
		scheduleService.Config{
			DefaultYearMonth: cfg.Schedule.DefaultYearMonth,
			Sentinels:        shifttable.DefaultSentinels,
			MaxUploadBytes:   cfg.Upload.MaxBytes,
		},
	)
	attendanceSvc := attendanceService.NewAttendanceService(transactor, attendanceRepo, fileService, cfg.Upload.MaxBytes)
	compareSvc := compareService.NewCompareService(
		transactor,
		scheduleRepo,
		attendanceRepo,
		correctionRepo,
		confirmationRepo,
		engine,
	)
	branchSvc := branchService.NewBranchService(branchRepo)

	routerCfg := appHTTP.RouterConfig{
		Logger:         logger,
		LogLevel:       slog.LevelDebug,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
	}
	if cfg.AuthEnabled() {
		routerCfg.JWTService = jwt.NewJWTService(cfg.JWT.Secret)
	} else {
		slog.Warn("JWT_SECRET_KEY is empty, API routes are not authenticated")
	}

	router := appHTTP.NewRouter(
		routerCfg,
		appHTTP.NewBranchHandler(branchSvc),
		appHTTP.NewScheduleHandler(scheduleSvc, cfg.Upload.MaxBytes),
		appHTTP.NewAttendanceHandler(attendanceSvc, cfg.Upload.MaxBytes),
		appHTTP.NewCompareHandler(compareSvc),
	)

	scheduler := cron.NewScheduler()
	cron.NewUploadJobs(fileService, cfg.Upload.Retention).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		opts := engine.Options()
		slog.Info("server running",
			"addr", server.Addr,
			"punch_policy", opts.PunchPolicy,
			"overtime_threshold_minutes", opts.OvertimeThresholdMinutes,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
