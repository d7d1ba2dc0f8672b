// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package provider implements the "provider" command group.
package provider

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/provider/providerrecord"
)

// NewCommand returns a new provider command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Work with the upstream provider",
		SubCommands: []*appcmd.Command{
			providerrecord.NewCommand("record", builder),
		},
	}
}
