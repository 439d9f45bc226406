package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"ictloan-backend/internal/app"
	"ictloan-backend/internal/config"
	"ictloan-backend/internal/infrastructure/logger"
)

func main() {
	interval := pflag.DurationP("interval", "i", 30*time.Second, "outbox drain interval")
	once := pflag.Bool("once", false, "run a single pass and exit")
	preventive := pflag.Bool("preventive", false, "also raise due preventive-maintenance tickets and mark overdue loans")
	pflag.Parse()

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

	if *once {
		pass(ctx, a, log, *preventive)
		return
	}

	log.Info().Dur("interval", *interval).Bool("preventive", *preventive).Msg("worker started")
	t := time.NewTicker(*interval)
	defer t.Stop()
	for {
		pass(ctx, a, log, *preventive)
		select {
		case <-ctx.Done():
			log.Info().Msg("worker stopped")
			return
		case <-t.C:
		}
	}
}

// pass runs the sweeps first so the notifications they queue go out in the
// same drain.
func pass(ctx context.Context, a *app.App, log zerolog.Logger, preventive bool) {
	if preventive {
		if n, err := a.Loans.MarkOverdueSweep(ctx); err != nil {
			log.Error().Err(err).Msg("overdue sweep")
		} else if n > 0 {
			log.Info().Int("loans", n).Msg("marked overdue")
		}
		if n, err := a.Engine.TriggerPreventiveForAll(ctx); err != nil {
			log.Error().Err(err).Msg("preventive sweep")
		} else if n > 0 {
			log.Info().Int("tickets", n).Msg("preventive tickets raised")
		}
	}
	n, err := a.Dispatcher.DrainOnce(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("outbox drain")
		return
	}
	if n > 0 {
		log.Info().Int("sent", n).Msg("notifications delivered")
	}
}
