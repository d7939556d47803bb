package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-timekeeping/internal/handler/http"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping/internal/pkg/policyfile"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/memory"
	"github.com/cmlabs-hris/hris-timekeeping/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-timekeeping/internal/service/attendance"
	calendarService "github.com/cmlabs-hris/hris-timekeeping/internal/service/calendar"
	leaveService "github.com/cmlabs-hris/hris-timekeeping/internal/service/leave"
	"github.com/go-chi/httplog/v3"
	"github.com/spf13/pflag"
)

// storage bundles the repositories one driver provides.
type storage struct {
	tx         database.Transactor
	locker     database.Locker
	attendance attendance.AttendanceRepository
	leaves     leave.LeaveRecordRepository
	balances   leave.LeaveBalanceRepository
	quotas     leave.QuotaProvider
	employees  employee.EmployeeRepository
	holidays   calendar.HolidayRepository
	close      func()
}

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	migrate := pflag.Bool("migrate", false, "apply pending database migrations on startup")
	policyPath := pflag.String("policy-file", "", "YAML or JSONC file with holidays and default leave quotas (overrides POLICY_FILE)")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	if *policyPath != "" {
		cfg.Storage.PolicyFile = *policyPath
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *migrate, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, migrate bool, logger *slog.Logger) error {
	clk := clock.Real()
	policy := cfg.Policy()

	store, err := openStorage(ctx, cfg, migrate, clk)
	if err != nil {
		return err
	}
	defer store.close()

	if cfg.Storage.PolicyFile != "" {
		pf, err := policyfile.Load(cfg.Storage.PolicyFile)
		if err != nil {
			return fmt.Errorf("load policy file: %w", err)
		}
		store.holidays = pf
		store.quotas = pf
		logger.Info("Policy file loaded", "path", cfg.Storage.PolicyFile)
	}

	classifier := calendarService.NewClassifier(store.holidays, store.employees)
	attendanceSvc := attendanceService.NewAttendanceService(
		store.tx,
		store.locker,
		store.attendance,
		store.employees,
		store.leaves,
		classifier,
		clk,
		policy,
	)
	leaveSvc := leaveService.NewLeaveService(
		store.tx,
		store.locker,
		store.leaves,
		store.balances,
		store.quotas,
		store.attendance,
		store.employees,
		store.holidays,
		classifier,
		clk,
		leaveService.Options{RHHostType: cfg.Leave.RHHostType, Policy: policy},
	)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, policy.Location)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc, clk)
	router := appHTTP.NewRouter(JWTService, store.employees, attendanceHandler, leaveHandler, appHTTP.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	scheduler := cron.NewScheduler(ctx)
	cron.NewAttendanceJobs(attendanceSvc, clk, policy).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", srv.Addr, "storage", cfg.Storage.Driver, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, migrate bool, clk clock.Clock) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if migrate {
			applied, err := db.Migrate(ctx, database.Migrations())
			if err != nil {
				db.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			slog.Info("Migrations applied", "count", applied)
		}
		txManager := postgresql.NewTxManager(db, cfg.Attendance.LockTimeout)
		return &storage{
			tx:         txManager,
			locker:     txManager,
			attendance: postgresql.NewAttendanceRepository(db),
			leaves:     postgresql.NewLeaveRecordRepository(db),
			balances:   postgresql.NewLeaveBalanceRepository(db),
			quotas:     postgresql.NewLeaveQuotaRepository(db),
			employees:  postgresql.NewEmployeeRepository(db),
			holidays:   postgresql.NewHolidayRepository(db),
			close:      db.Close,
		}, nil
	case config.StorageMemory:
		slog.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore(memory.WithNow(clk.Now), memory.WithLockTimeout(cfg.Attendance.LockTimeout))
		year := clk.Now().In(cfg.App.Timezone).Year()
		fixtures.SeedDefaults(store, time.Date(year-1, time.January, 1, 0, 0, 0, 0, time.UTC), year, year+1)
		return &storage{
			tx:         store,
			locker:     store,
			attendance: store.Attendance(),
			leaves:     store.Leaves(),
			balances:   store.Balances(),
			quotas:     store.Quotas(),
			employees:  store.Employees(),
			holidays:   store.Holidays(),
			close:      func() {},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.App.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-timekeeping"),
		slog.String("env", cfg.App.Env),
	)
}
