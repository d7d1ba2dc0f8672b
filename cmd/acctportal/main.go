// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/account"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/catalog"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/config"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/provider"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/serve"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("acctportal"))
}

// newRootCommand creates the root acctportal command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Serve normalized brokerage account holdings and activity",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			serve.NewCommand("serve", builder),
			config.NewCommand("config", builder),
			account.NewCommand("account", builder),
			provider.NewCommand("provider", builder),
			catalog.NewCommand("catalog", builder),
		},
	}
}
