// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package accountrecent implements the "account recent" command.
package accountrecent

import (
	"context"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/acctportalcmd"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalactivity"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalrecent"
	"github.com/bufdev/acctportal/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

const accountsFlagName = "accounts"

// NewCommand returns a new account recent command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Display recent activity merged across accounts",
		Long: `Display recent activity merged across accounts.

Accounts are given as a comma-separated list of account:dealer pairs. For each
account, the most recent transactions settling within the configured window
are displayed, in the order the accounts were given.`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	acctportalcmd.EngineFlags
	// Accounts is the comma-separated list of account:dealer pairs.
	Accounts string
	Format   string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	f.EngineFlags.Bind(flagSet)
	flagSet.StringVar(&f.Accounts, accountsFlagName, "", "The accounts, as account:dealer pairs separated by commas")
	flagSet.StringVar(&f.Format, acctportalcmd.FormatFlagName, "json", "Output format (json, table, csv)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	accountRefs, err := acctportalrecent.ParseAccountRefs(flags.Accounts)
	if err != nil {
		return appcmd.NewInvalidArgumentErrorf("--%s: %v", accountsFlagName, err)
	}
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	language, err := flags.ParseLanguage()
	if err != nil {
		return err
	}
	engine, err := acctportalcmd.NewEngine(container, &flags.EngineFlags)
	if err != nil {
		return err
	}
	aggregator := acctportalrecent.NewAggregator(container.Logger(), engine.Formatter, engine.Provider)
	document, err := aggregator.Get(ctx, accountRefs, language, engine.RecentActivityWindow(), time.Now())
	if err != nil {
		return err
	}
	return cliio.Write(
		container.Stdout(),
		format,
		document,
		cliio.Table{
			Headers: acctportalactivity.TransactionTableHeaders(),
			Rows:    acctportalactivity.TransactionTableRows(document.RecentActivity),
		},
	)
}
