// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package configvalidate implements the "config validate" command.
package configvalidate

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/acctportalcmd"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalconfig"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalpath"
)

// NewCommand returns a new config validate command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Validate the configuration file and the catalog it selects",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(_ context.Context, container appext.Container) error {
	config, err := acctportalconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return err
	}
	// A catalog directory is only read at startup, so check it here too.
	if _, err := acctportalcmd.LoadCatalog(config); err != nil {
		return err
	}
	_, err = fmt.Fprintf(container.Stdout(), "%s is valid\n", acctportalpath.ConfigFilePath(container.ConfigDirPath()))
	return err
}
