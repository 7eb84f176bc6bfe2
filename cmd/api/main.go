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

	"github.com/cmlabs-hris/shift-payroll-backend/internal/config"
	appHTTP "github.com/cmlabs-hris/shift-payroll-backend/internal/handler/http"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/clock"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/cron"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/database"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/events"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/pkg/jwt"
	"github.com/cmlabs-hris/shift-payroll-backend/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/attendance"
	payrollService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/payroll"
	reportService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/report"
	workshiftService "github.com/cmlabs-hris/shift-payroll-backend/internal/service/workshift"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	if cfg.App.AutoMigrate {
		if err := postgresql.Migrate(ctx, db); err != nil {
			log.Fatal("Failed to migrate schema: ", err)
		}
		slog.Info("Schema migrated")
	}

	shiftRepo := postgresql.NewWorkShiftRepository(db)
	settlementRepo := postgresql.NewSettlementRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	shopRepo := postgresql.NewShopRepository(db)
	transactor := postgresql.NewTransactor(db)
	clk := clock.New()

	var tokenStore jwt.TokenStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis: ", err)
		}
		tokenStore = jwt.NewRedisTokenStore(rdb)
	} else {
		slog.Warn("REDIS_ADDR not set, token revocations are kept in memory")
		tokenStore = jwt.NewMemoryTokenStore()
	}

	publisher := events.NewNopPublisher()
	if cfg.RabbitMQ.DSN != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			log.Fatal("Failed to connect to rabbitmq: ", err)
		}
		defer conn.Close()
		amqpPublisher, err := events.NewAMQPPublisher(conn, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.PublishTimeout)
		if err != nil {
			log.Fatal("Failed to initialize event publisher: ", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, tokenStore)

	shiftSvc := workshiftService.NewWorkShiftService(shiftRepo, employeeRepo, publisher, clk)
	attendanceSvc := attendanceService.NewAttendanceService(shiftRepo, employeeRepo, cfg.AttendancePolicy(), clk)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		settlementRepo,
		shiftRepo,
		employeeRepo,
		shopRepo,
		cfg.TaxRates(),
		publisher,
		clk,
	)
	reportSvc := reportService.NewReportService(shiftRepo, employeeRepo, settlementRepo, shopRepo, cfg.TaxRates())

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.NewAuthHandler(JWTService),
		appHTTP.NewShiftHandler(shiftSvc),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewReportHandler(reportSvc),
	)

	scheduler := cron.NewScheduler(ctx)
	if cfg.Sweep.Enabled {
		cron.NewShiftJobs(shiftRepo, publisher, clk, cfg.SweepConfig()).RegisterJobs(scheduler)
		scheduler.Start()
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	scheduler.Stop()
}
