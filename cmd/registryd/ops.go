package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/motorid/registry/common"
	"github.com/motorid/registry/deploy"
	"github.com/urfave/cli/v3"
)

func opsCommand() *cli.Command {
	return &cli.Command{
		Name:  "ops",
		Usage: "List operations served by registry modules",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "module", Usage: "show operations of the named module only"},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, m := range deploy.Modules() {
				if name := c.String("module"); name != "" && name != m.Name() {
					continue
				}
				for _, method := range m.Methods() {
					mode := "write"
					if method.ReadOnly {
						mode = "read"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Name(), common.VersionString(m.Version()),
						method.Selector(), mode, method.Signature)
				}
			}
			return w.Flush()
		},
	}
}
