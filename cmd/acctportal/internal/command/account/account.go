// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package account implements the "account" command group.
package account

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/account/accountactivity"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/account/accountholdings"
	"github.com/bufdev/acctportal/cmd/acctportal/internal/command/account/accountrecent"
)

// NewCommand returns a new account command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Fetch normalized account documents",
		SubCommands: []*appcmd.Command{
			accountholdings.NewCommand("holdings", builder),
			accountactivity.NewCommand("activity", builder),
			accountrecent.NewCommand("recent", builder),
		},
	}
}
