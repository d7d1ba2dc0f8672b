// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package serve implements the "serve" command.
package serve

import (
	"context"
	"fmt"
	"net"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/acctportalcmd"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalconfig"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalserver"
	"github.com/bufdev/acctportal/internal/standard/xos"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// envFileFlagName is the flag name for the optional dotenv file.
const envFileFlagName = "env-file"

// NewCommand returns a new serve command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Serve the account API",
		Long: `Serve the account API on the configured listen address.

Dealer passwords and API client secrets are read from the environment variables
named in the configuration file. Values in the file given by --env-file take
precedence over the process environment.

The server runs until interrupted, then finishes in-flight requests and exits.`,
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
	// EnvFile is the optional dotenv file.
	EnvFile string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.EnvFile, envFileFlagName, "", "A dotenv file of secrets to read in addition to the environment")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	config, err := acctportalconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return err
	}
	getenv, err := newGetenv(container, flags.EnvFile)
	if err != nil {
		return err
	}
	formatter, err := acctportalcmd.NewFormatter(config)
	if err != nil {
		return err
	}
	provider, err := acctportalcmd.NewLiveProvider(container, config, getenv)
	if err != nil {
		return err
	}
	apiClientSecrets, err := config.APIClientSecrets(getenv)
	if err != nil {
		return err
	}
	logger := container.Logger()
	if len(apiClientSecrets) == 0 {
		logger.Warn("no api clients configured, every api request will be rejected")
	}
	handler := acctportalserver.NewHandler(
		logger,
		formatter,
		provider,
		apiClientSecrets,
		acctportalserver.WithRecentActivityWindow(config.RecentActivityWindow),
	)
	listener, err := net.Listen("tcp", config.ListenAddress)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", config.ListenAddress, err)
	}
	return acctportalserver.Serve(ctx, logger, listener, handler)
}

// newGetenv returns a getenv function that reads the dotenv file first, then
// the container environment. The process environment is never modified.
func newGetenv(container appext.Container, envFile string) (func(string) string, error) {
	if envFile == "" {
		return container.Env, nil
	}
	envFilePath, err := xos.ExpandHome(envFile)
	if err != nil {
		return nil, err
	}
	fileEnv, err := godotenv.Read(envFilePath)
	if err != nil {
		return nil, appcmd.NewInvalidArgumentErrorf("--%s: %v", envFileFlagName, err)
	}
	return func(key string) string {
		if value, ok := fileEnv[key]; ok {
			return value
		}
		return container.Env(key)
	}, nil
}
