package main

import (
	"context"
	"fmt"
	"os"

	"github.com/motorid/registry/config"
	"github.com/motorid/registry/deploy"
	"github.com/motorid/registry/registry"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "registryd",
		Usage: "Vehicle and device identity registry",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to the service configuration file"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			dumpCommand(),
			restoreCommand(),
			opsCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Command) (config.Config, error) {
	path := c.String("config")
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

// openRegistry opens the configured store and the registry over it with all
// modules deployed. The store must be closed by the caller.
func openRegistry(cfg config.Config, log *zap.Logger, reg prometheus.Registerer) (*registry.Registry, storage.Store, error) {
	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	addr, _ := cfg.RegistryAddress()
	owner, _ := cfg.Owner()
	r, err := registry.New(registry.Prm{
		Store:      store,
		Address:    addr,
		ChainID:    cfg.Registry.ChainID,
		Owner:      owner,
		Logger:     log,
		Registerer: reg,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	for _, m := range deploy.Modules() {
		r.Deploy(m)
	}
	accs, _ := cfg.NeoAccounts()
	for _, acc := range accs {
		addr, err := acc.Address()
		if err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("verifier address: %w", err)
		}
		r.Attach(addr, acc)
		log.Info("signature verifier attached", zap.Stringer("address", addr), zap.Int("keys", len(acc.Keys())))
	}
	return r, store, nil
}
