// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package providerrecord implements the "provider record" command.
package providerrecord

import (
	"context"
	"errors"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/acctportalcmd"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalconfig"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalpath"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/pkg/rawrecord"
	"github.com/spf13/pflag"
)

const (
	dirFlagName         = "dir"
	firstNavKeyFlagName = "first-nav-key"
	lastNavKeyFlagName  = "last-nav-key"
)

// NewCommand returns a new provider record command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Record an account's provider responses for replay",
		Long: `Record an account's provider responses for replay.

The positions, history, and client summary responses of the account are fetched
from the live provider and written to the recordings directory. Pass the
directory to --replay-dir on the account commands to serve the recorded
responses instead of calling the provider.`,
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
	Account     string
	Dealer      string
	Dir         string
	FirstNavKey string
	LastNavKey  string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Account, acctportalcmd.AccountFlagName, "", "The account number")
	flagSet.StringVar(&f.Dealer, acctportalcmd.DealerFlagName, "", "The dealer code")
	flagSet.StringVar(&f.Dir, dirFlagName, "", "The recordings directory (defaults to the recordings directory in the data directory)")
	flagSet.StringVar(&f.FirstNavKey, firstNavKeyFlagName, "", "The first navigation key of the history page to record")
	flagSet.StringVar(&f.LastNavKey, lastNavKeyFlagName, "", "The last navigation key of the history page to record")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	if flags.Account == "" || flags.Dealer == "" {
		return appcmd.NewInvalidArgumentErrorf("--%s and --%s are required", acctportalcmd.AccountFlagName, acctportalcmd.DealerFlagName)
	}
	dirPath, err := acctportalpath.ResolveDirPath(flags.Dir, acctportalcmd.DefaultRecordingsDirPath(container))
	if err != nil {
		return err
	}
	config, err := acctportalconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return err
	}
	liveProvider, err := acctportalcmd.NewLiveProvider(container, config, container.Env)
	if err != nil {
		return err
	}
	provider := acctportalprovider.NewRecordingProvider(liveProvider, dirPath)
	session, err := acctportalprovider.OpenSession(ctx, provider, flags.Dealer)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, session.Close())
	}()
	logger := container.Logger()
	positionsResponse, err := session.GetPositions(ctx, flags.Account)
	if err != nil {
		return acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetPositions, err)
	}
	logger.Info("recorded positions", "account", flags.Account)
	if _, err := session.GetHistory(ctx, flags.Account, flags.FirstNavKey, flags.LastNavKey); err != nil {
		return acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetHistory, err)
	}
	logger.Info("recorded history", "account", flags.Account)
	clientID := rawrecord.SearchText(positionsResponse, acctportalformat.FieldClientID)
	if clientID == "" {
		logger.Warn("no client ID in positions response, skipping client summary", "account", flags.Account)
	} else {
		if _, err := session.GetClientSummary(ctx, clientID); err != nil {
			return acctportalprovider.NewUpstreamError(acctportalprovider.OperationGetClientSummary, err)
		}
		logger.Info("recorded client summary", "client_id", clientID)
	}
	_, err = fmt.Fprintln(container.Stdout(), dirPath)
	return err
}
