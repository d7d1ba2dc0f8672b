// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cataloglist implements the "catalog list" command.
package cataloglist

import (
	"context"
	"strconv"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/acctportalcmd"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalcatalog"
	"github.com/bufdev/acctportal/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

const tableFlagName = "table"

// NewCommand returns a new catalog list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List catalog entries",
		Long: `List catalog entries.

The catalog directory from the configuration file is used if set, otherwise the
built-in catalog is listed. Pass --table to list a single table.`,
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
	Table    string
	Language string
	Format   string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Table, tableFlagName, "", "The table to list (all tables if empty)")
	flagSet.StringVar(&f.Language, acctportalcmd.LanguageFlagName, string(acctportalcatalog.LanguageEnglish), "The language of the text column (en, fr)")
	flagSet.StringVar(&f.Format, acctportalcmd.FormatFlagName, "table", "Output format (table, csv, json)")
}

// entry is the JSON output of a single catalog entry.
type entry struct {
	Table string `json:"table"`
	Key   string `json:"key"`
	Text  string `json:"text"`
	Sort  *int   `json:"sort,omitempty"`
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	tables := acctportalcatalog.AllTables()
	if flags.Table != "" {
		table, err := acctportalcatalog.ParseTable(flags.Table)
		if err != nil {
			return appcmd.NewInvalidArgumentErrorf("--%s: %v", tableFlagName, err)
		}
		tables = []acctportalcatalog.Table{table}
	}
	language, err := acctportalcatalog.ParseLanguage(flags.Language)
	if err != nil {
		return appcmd.NewInvalidArgumentErrorf("--%s: %v", acctportalcmd.LanguageFlagName, err)
	}
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := acctportalcmd.ReadConfigIfExists(container.ConfigDirPath())
	if err != nil {
		return err
	}
	catalog, err := acctportalcmd.LoadCatalog(config)
	if err != nil {
		return err
	}
	var entries []entry
	var rows [][]string
	for _, table := range tables {
		for _, catalogEntry := range catalog.Entries(table) {
			entries = append(entries, entry{
				Table: string(table),
				Key:   catalogEntry.Key(),
				Text:  catalogEntry.Text(language),
				Sort:  catalogEntry.Sort,
			})
			sortRank := ""
			if catalogEntry.Sort != nil {
				sortRank = strconv.Itoa(*catalogEntry.Sort)
			}
			rows = append(rows, []string{string(table), catalogEntry.Key(), catalogEntry.Text(language), sortRank})
		}
	}
	return cliio.Write(
		container.Stdout(),
		format,
		entries,
		cliio.Table{
			Headers: []string{"TABLE", "KEY", "TEXT", "SORT"},
			Rows:    rows,
		},
	)
}
