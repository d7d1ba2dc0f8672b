// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package catalog implements the "catalog" command group.
package catalog

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/catalog/cataloglist"
)

// NewCommand returns a new catalog command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Inspect the localization catalog",
		SubCommands: []*appcmd.Command{
			cataloglist.NewCommand("list", builder),
		},
	}
}
