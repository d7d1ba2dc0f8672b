// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package accountactivity implements the "account activity" command.
package accountactivity

import (
	"context"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/acctportalcmd"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalactivity"
	"github.com/bufdev/acctportal/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

const (
	firstNavKeyFlagName = "first-nav-key"
	lastNavKeyFlagName  = "last-nav-key"
)

// NewCommand returns a new account activity command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Display a page of an account's transaction history",
		Long: `Display a page of an account's transaction history.

By default the most recent page is displayed. Pass the navigation keys printed
with a previous page to select another page.`,
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
	Account     string
	Dealer      string
	FirstNavKey string
	LastNavKey  string
	Format      string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	f.EngineFlags.Bind(flagSet)
	flagSet.StringVar(&f.Account, acctportalcmd.AccountFlagName, "", "The account number")
	flagSet.StringVar(&f.Dealer, acctportalcmd.DealerFlagName, "", "The dealer code")
	flagSet.StringVar(&f.FirstNavKey, firstNavKeyFlagName, "", "The first navigation key of the page")
	flagSet.StringVar(&f.LastNavKey, lastNavKeyFlagName, "", "The last navigation key of the page")
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
	document, err := acctportalactivity.NewAssembler(engine.Formatter).Get(
		ctx,
		engine.Provider,
		flags.Dealer,
		flags.Account,
		flags.FirstNavKey,
		flags.LastNavKey,
		language,
		time.Now(),
	)
	if err != nil {
		return err
	}
	navigation := document.AccountActivity.HistoryNavigation
	container.Logger().Debug(
		"history page",
		"first_nav_key", navigation.FirstNavKey.String(),
		"last_nav_key", navigation.LastNavKey.String(),
	)
	return cliio.Write(
		container.Stdout(),
		format,
		document,
		cliio.Table{
			Headers: acctportalactivity.TableHeaders(),
			Rows:    acctportalactivity.TableRows(document),
		},
	)
}
