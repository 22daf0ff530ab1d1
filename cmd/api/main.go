package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/congo-pay/congo_atm/internal/config"
	"github.com/congo-pay/congo_atm/internal/infra"
	"github.com/congo-pay/congo_atm/internal/logging"
	"github.com/congo-pay/congo_atm/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	res, err := infra.Connect(ctx, cfg)
	if err != nil {
		logger.Error("connect backends", "error", err)
		os.Exit(1)
	}
	defer res.Close(logger)

	kv, err := res.Storage(ctx, cfg)
	if err != nil {
		logger.Error("open storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	srv, err := server.New(ctx, cfg, kv, res.Cache, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}
	logger.Info("starting", "app", cfg.AppName, "env", cfg.AppEnv, "addr", cfg.Address(), "storage", cfg.StorageBackend)

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
