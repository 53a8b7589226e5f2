package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/motorid/registry/api"
	"github.com/motorid/registry/config"
	"github.com/motorid/registry/deploy"
	"github.com/motorid/registry/license"
	"github.com/motorid/registry/streams"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Bootstrap the registry if needed and serve the read API",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log, err := cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = log.Sync() }()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r, store, err := openRegistry(cfg, log, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("can't close store", zap.Error(err))
		}
	}()

	dcfg, err := cfg.DeployConfig()
	if err != nil {
		return err
	}
	licensed, _ := cfg.Licensed()
	owner, _ := cfg.Owner()
	breaker := cfg.Collaborators.Breaker

	err = deploy.Deploy(ctx, deploy.Prm{
		Logger:   log,
		Registry: r,
		Admin:    owner,
		Config:   dcfg,
		License: license.NewBreaker(license.NewAllowlist(cfg.Collaborators.LicenseCost, licensed...), license.BreakerPrm{
			MaxFailures: breaker.MaxFailures,
			Timeout:     breaker.Timeout,
			Logger:      log,
		}),
		Streams: streams.NewBreaker(streams.NewMemory(), breaker.MaxFailures, breaker.Timeout, log),
	})
	if err != nil {
		return fmt.Errorf("bootstrap registry: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.API.Address,
		Handler:           api.NewRouter(api.Prm{Registry: r, Gatherer: metrics, Logger: log}),
		ReadHeaderTimeout: cfg.API.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving read API", zap.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", zap.Stringer("signal", sig))
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
