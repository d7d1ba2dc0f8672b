// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package accountholdings implements the "account holdings" command.
package accountholdings

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/acctportalcmd"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalholdings"
	"github.com/bufdev/acctportal/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

// NewCommand returns a new account holdings command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Display an account's holdings grouped by asset class",
		Args:  appcmd.NoArgs,
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
	// Account is the account number.
	Account string
	// Dealer is the dealer code.
	Dealer string
	// Format is the output format (json, table, csv).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	f.EngineFlags.Bind(flagSet)
	flagSet.StringVar(&f.Account, acctportalcmd.AccountFlagName, "", "The account number")
	flagSet.StringVar(&f.Dealer, acctportalcmd.DealerFlagName, "", "The dealer code")
	flagSet.StringVar(&f.Format, acctportalcmd.FormatFlagName, "json", "Output format (json, table, csv)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	if flags.Account == "" || flags.Dealer == "" {
		return appcmd.NewInvalidArgumentErrorf("--%s and --%s are required", acctportalcmd.AccountFlagName, acctportalcmd.DealerFlagName)
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
	document, err := acctportalholdings.NewAssembler(engine.Formatter).Get(ctx, engine.Provider, flags.Dealer, flags.Account, language)
	if err != nil {
		return err
	}
	headers := acctportalholdings.TableHeaders()
	totalsRow := make([]string, len(headers))
	totalsRow[0] = "TOTAL"
	totalsRow[5] = document.AccountHoldings.AccountSummary.MarketValue.String()
	return cliio.Write(
		container.Stdout(),
		format,
		document,
		cliio.Table{
			Headers:   headers,
			Rows:      acctportalholdings.TableRows(document),
			TotalsRow: totalsRow,
		},
	)
}
