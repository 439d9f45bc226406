package app

import (
	"fmt"
	"time"

	"ictloan-backend/internal/adapter/cache"
	"ictloan-backend/internal/adapter/matrix"
	"ictloan-backend/internal/adapter/notify"
	"ictloan-backend/internal/adapter/repository/gormrepo"
	"ictloan-backend/internal/config"
	domainNotification "ictloan-backend/internal/domain/notification"
	"ictloan-backend/internal/infrastructure/broker"
	infraCache "ictloan-backend/internal/infrastructure/cache"
	"ictloan-backend/internal/infrastructure/db"
	"ictloan-backend/internal/usecase/approval"
	"ictloan-backend/internal/usecase/availability"
	"ictloan-backend/internal/usecase/integration"
	"ictloan-backend/internal/usecase/loan"
	"ictloan-backend/internal/usecase/notification"
	"ictloan-backend/pkg/clock"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App holds the connections and usecases shared by the api and the worker.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	DB     *gorm.DB
	RDB    *redis.Client
	NC     *nats.Conn

	Dispatcher   *notification.Dispatcher
	Availability *availability.Usecase
	Approval     *approval.Usecase
	Loans        *loan.Usecase
	Engine       *integration.Engine
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	gdb, err := db.OpenGorm(db.Options{Driver: cfg.DBDriver, DSN: cfg.DSN(), Verbose: cfg.Development()})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a.DB = gdb
	log.Info().Str("driver", cfg.DBDriver).Msg("gorm: connected")
	if cfg.DBAutoMigrate {
		if err := gormrepo.Migrate(gdb); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	rdb, err := infraCache.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open redis: %w", err)
	}
	a.RDB = rdb

	var gw domainNotification.Gateway = notify.NewLogGateway(log)
	if cfg.NATSURL != "" {
		nc, err := broker.OpenNATS(cfg.NATSURL, "ictloan", log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open nats: %w", err)
		}
		a.NC = nc
		gw = notify.NewNATSGateway(nc, cfg.NATSSubjectPrefix, log)
	}

	approvers, err := matrix.Parse(cfg.ApprovalMatrix)
	if err != nil {
		a.Close()
		return nil, err
	}

	clk := clock.Real()
	reads := gormrepo.Repos(gdb)
	tx := gormrepo.NewGormUoW(gdb)

	a.Dispatcher = notification.NewDispatcher(reads.Outbox, gw, clk, log, notification.Options{
		BatchSize:   cfg.OutboxBatchSize,
		MaxAttempts: cfg.OutboxMaxAttempts,
	})
	calendars := cache.NewCalendarCache(rdb, time.Duration(cfg.CalendarCacheTTLSecs)*time.Second)
	a.Availability = availability.NewUsecase(reads.Assets, reads.Loans, calendars, log)
	a.Engine = integration.NewEngine(tx, reads, clk, log, integration.Policy{
		PreventiveLoanThreshold: cfg.PreventiveLoanThreshold,
		MaintenanceInterval:     cfg.MaintenanceInterval(),
	}, a.Availability, a.Dispatcher)
	a.Approval = approval.NewUsecase(tx, reads.Approvals, approvers, clk, log, approval.Config{
		TokenTTL:         cfg.ApprovalTokenTTL(),
		MinApproverGrade: cfg.ApproverMinGrade,
		BaseURL:          cfg.AppBaseURL,
		AdminEmail:       cfg.AdminEmail,
	}, a.Availability, a.Dispatcher)
	a.Loans = loan.NewUsecase(tx, reads, a.Approval, a.Engine, clk, log, a.Availability, a.Dispatcher)
	return a, nil
}

func (a *App) Close() {
	if a.NC != nil {
		_ = a.NC.Drain()
	}
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
