package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/motorid/registry/deploy"
	"github.com/motorid/registry/dump"
	"github.com/motorid/registry/registry"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Dump registry storage into the directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "testdata", Usage: "dump directory"},
			&cli.StringFlag{Name: "label", Required: true, Usage: "label of the registry environment (e.g. 'staging')"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log, err := cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			dir := c.String("dir")
			err = os.MkdirAll(dir, 0700)
			if err != nil {
				return fmt.Errorf("create root dir: %w", err)
			}

			r, store, err := openRegistry(cfg, log, nil)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			id := dump.ID{Label: c.String("label"), Taken: uint64(time.Now().Unix())}
			err = _dump(ctx, r, store, dir, id)
			if err != nil {
				return err
			}

			log.Info("registry is successfully dumped", zap.String("dir", dir), zap.Stringer("id", id))
			return nil
		},
	}
}

func _dump(ctx context.Context, r *registry.Registry, store storage.Store, dir string, id dump.ID) error {
	infos, err := r.View(ctx, util.Uint160{}, registry.OpModules, nil)
	if err != nil {
		return fmt.Errorf("list modules: %w", err)
	}

	d, err := dump.NewCreator(dir, id)
	if err != nil {
		return fmt.Errorf("init local dumper: %w", err)
	}
	defer d.Close()

	d.AddModules(infos.([]registry.ModuleInfo))

	err = d.WriteStore(store)
	if err != nil {
		return fmt.Errorf("dump storage: %w", err)
	}

	err = d.Flush()
	if err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}

	return nil
}

func restoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore registry storage from the dump",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "testdata", Usage: "dump directory"},
			&cli.StringFlag{Name: "label", Required: true, Usage: "label of the dump"},
			&cli.UintFlag{Name: "taken", Required: true, Usage: "Unix time the dump was taken at"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log, err := cfg.NewLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			id := dump.ID{Label: c.String("label"), Taken: c.Uint("taken")}
			rd, err := dump.Open(c.String("dir"), id)
			if err != nil {
				return fmt.Errorf("open dump: %w", err)
			}

			deployed := make(map[util.Uint160]bool)
			for _, m := range deploy.Modules() {
				deployed[registry.ModuleAddress(m)] = true
			}
			for _, m := range rd.Modules() {
				if m.Name != "Registry" && !deployed[m.Address] {
					log.Warn("dumped module is not available in this build",
						zap.String("name", m.Name), zap.Int("version", m.Version))
				}
			}

			store, err := storage.NewStore(cfg.Storage)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer func() { _ = store.Close() }()

			err = rd.Restore(store)
			if err != nil {
				return err
			}

			log.Info("registry is successfully restored", zap.Stringer("id", id))
			return nil
		},
	}
}
