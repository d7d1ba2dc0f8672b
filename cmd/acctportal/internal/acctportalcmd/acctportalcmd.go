// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package acctportalcmd provides shared wiring for acctportal commands that
// need the engine (reading config, loading the catalog, constructing providers).
package acctportalcmd

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalconfig"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalformat"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalpath"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalprovider"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalrecent"
	"github.com/bufdev/acctportal/internal/pkg/dataphile"
	"github.com/bufdev/acctportal/internal/standard/xos"
	"github.com/spf13/pflag"
)

const (
	// FormatFlagName is the flag name for the output format.
	FormatFlagName = "format"
	// LanguageFlagName is the flag name for the output language.
	LanguageFlagName = "language"
	// ReplayDirFlagName is the flag name for the recorded responses directory.
	ReplayDirFlagName = "replay-dir"
	// AccountFlagName is the flag name for the account number.
	AccountFlagName = "account"
	// DealerFlagName is the flag name for the dealer code.
	DealerFlagName = "dealer"
)

// Engine is the engine wiring shared by commands.
type Engine struct {
	// Config is the validated configuration. Nil if replaying without a configuration file.
	Config *acctportalconfig.Config
	// Formatter is the formatter over the configured catalog.
	Formatter *acctportalformat.Formatter
	// Provider is the live or replay provider.
	Provider acctportalprovider.Provider
}

// EngineFlags are the flags shared by commands that run the engine.
type EngineFlags struct {
	// Language is the output language.
	Language string
	// ReplayDir is the directory of recorded responses. Empty for the live provider.
	ReplayDir string
}

// Bind registers the flag definitions with the given flag set.
func (f *EngineFlags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Language, LanguageFlagName, string(acctportalcatalog.LanguageEnglish), "The output language (en, fr)")
	flagSet.StringVar(
		&f.ReplayDir,
		ReplayDirFlagName,
		"",
		"Serve provider responses from a directory written by \"acctportal provider record\" instead of the live provider",
	)
}

// ParseLanguage parses the language flag, returning an invalid argument error on failure.
func (f *EngineFlags) ParseLanguage() (acctportalcatalog.Language, error) {
	language, err := acctportalcatalog.ParseLanguage(f.Language)
	if err != nil {
		return "", appcmd.NewInvalidArgumentErrorf("--%s: %v", LanguageFlagName, err)
	}
	return language, nil
}

// NewEngine constructs an Engine from the appext container.
//
// If flags.ReplayDir is set, responses are served from that directory and the
// configuration file is optional. Otherwise the configuration file is
// required and the live provider is used.
func NewEngine(container appext.Container, flags *EngineFlags) (*Engine, error) {
	if flags.ReplayDir != "" {
		replayDirPath, err := xos.ExpandHome(flags.ReplayDir)
		if err != nil {
			return nil, err
		}
		config, err := ReadConfigIfExists(container.ConfigDirPath())
		if err != nil {
			return nil, err
		}
		formatter, err := NewFormatter(config)
		if err != nil {
			return nil, err
		}
		return &Engine{
			Config:    config,
			Formatter: formatter,
			Provider:  acctportalprovider.NewReplayProvider(replayDirPath),
		}, nil
	}
	config, err := acctportalconfig.ReadConfig(container.ConfigDirPath())
	if err != nil {
		return nil, err
	}
	formatter, err := NewFormatter(config)
	if err != nil {
		return nil, err
	}
	provider, err := NewLiveProvider(container, config, container.Env)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Config:    config,
		Formatter: formatter,
		Provider:  provider,
	}, nil
}

// RecentActivityWindow returns the configured recent activity window, or the
// default window if there is no configuration.
func (e *Engine) RecentActivityWindow() acctportalrecent.Window {
	if e.Config == nil {
		return acctportalrecent.DefaultWindow()
	}
	return e.Config.RecentActivityWindow
}

// NewFormatter loads the catalog selected by the config and returns a new Formatter.
//
// If config is nil or has no catalog directory, the built-in catalog is used.
func NewFormatter(config *acctportalconfig.Config) (*acctportalformat.Formatter, error) {
	catalog, err := LoadCatalog(config)
	if err != nil {
		return nil, err
	}
	return acctportalformat.NewFormatter(catalog, time.Local), nil
}

// LoadCatalog loads the catalog selected by the config.
//
// If config is nil or has no catalog directory, the built-in catalog is used.
func LoadCatalog(config *acctportalconfig.Config) (*acctportalcatalog.Catalog, error) {
	if config == nil || config.CatalogDirPath == "" {
		return acctportalcatalog.LoadDefault()
	}
	return acctportalcatalog.LoadDir(config.CatalogDirPath)
}

// NewLiveProvider returns a new Dataphile-backed Provider for the configured
// dealers, resolving passwords with getenv.
func NewLiveProvider(
	container appext.Container,
	config *acctportalconfig.Config,
	getenv func(string) string,
) (acctportalprovider.Provider, error) {
	dealerEndpoints, err := config.DealerEndpoints(getenv)
	if err != nil {
		return nil, err
	}
	return acctportalprovider.NewDataphileProvider(
		container.Logger(),
		dealerEndpoints,
		dataphile.WithBackoffPolicy(config.BackoffPolicy),
	), nil
}

// DefaultRecordingsDirPath returns the default directory for recorded responses.
func DefaultRecordingsDirPath(container appext.Container) string {
	return acctportalpath.RecordingsDirPath(container.DataDirPath())
}

// ReadConfigIfExists reads the configuration file, returning nil if it does not exist.
func ReadConfigIfExists(configDirPath string) (*acctportalconfig.Config, error) {
	if _, err := os.Stat(acctportalpath.ConfigFilePath(configDirPath)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return acctportalconfig.ReadConfig(configDirPath)
}
