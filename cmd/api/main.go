package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "ictloan-backend/internal/adapter/http"
	"ictloan-backend/internal/adapter/middleware"
	"ictloan-backend/internal/app"
	"ictloan-backend/internal/config"
	"ictloan-backend/internal/infrastructure/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// events left pending by a failed post-commit flush are retried here
	go func() {
		if err := a.Dispatcher.Run(ctx, 15*time.Second); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("outbox dispatcher stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.RequestID(), middleware.RequestLogger(log), echomw.Recover())

	sqlDB, err := a.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("db handle")
	}
	httpadp.RegisterRoutes(e, httpadp.Handlers{
		Health: httpadp.NewHandler(
			httpadp.Check{Name: "db", Probe: sqlDB.PingContext},
			httpadp.Check{Name: "redis", Probe: func(ctx context.Context) error { return a.RDB.Ping(ctx).Err() }},
		),
		Loans:        httpadp.NewLoanHandler(a.Loans),
		Approvals:    httpadp.NewApprovalHandler(a.Approval),
		Availability: httpadp.NewAvailabilityHandler(a.Availability),
		Maintenance:  httpadp.NewMaintenanceHandler(a.Engine),
	},
		middleware.ActorMiddleware(),
		middleware.IdempotencyMiddleware(a.RDB, time.Duration(cfg.IdempTTLSecs)*time.Second, log),
	)

	addr := ":" + cfg.AppPort
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
