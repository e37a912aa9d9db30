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

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"votegate/internal/platform/config"
	"votegate/internal/platform/httpserver"
	"votegate/internal/platform/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "votegate: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var addr, envFile, logLevel string
	flagSet := pflag.NewFlagSet("votegate", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "", "listen address (overrides VOTEGATE_ADDR)")
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	srv := httpserver.New(cfg.Server.Addr, a.router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting votegate", "addr", cfg.Server.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return ignoreCanceled(a.otp.StartSweeper(gctx, cfg.OTP.SweepEvery))
	})
	if a.revocations != nil {
		g.Go(func() error {
			return ignoreCanceled(sweepRevocations(gctx, a.revocations, cfg.OTP.SweepEvery, log))
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		a.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// sweepRevocations drops revocation entries whose tokens have expired anyway.
func sweepRevocations(ctx context.Context, trl expiringRevocations, interval time.Duration, log *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := trl.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.ErrorContext(ctx, "revocation sweep failed", "error", err)
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "revocation sweep", "deleted", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
