// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package configedit implements the "config edit" command.
package configedit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalconfig"
	"github.com/bufdev/acctportal/internal/acctportal/acctportalpath"
)

// NewCommand returns a new config edit command that opens the configuration file in an editor.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Edit the configuration file in $VISUAL or $EDITOR",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container)
			},
		),
	}
}

func run(ctx context.Context, container appext.Container) error {
	configDirPath := container.ConfigDirPath()
	configFilePath := acctportalpath.ConfigFilePath(configDirPath)
	if _, err := os.Stat(configFilePath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if _, err := acctportalconfig.InitConfig(configDirPath); err != nil {
			return err
		}
		container.Logger().Info("created configuration file", "path", configFilePath)
	}
	editor := getEditor(container)
	if editor == "" {
		return errors.New("neither VISUAL nor EDITOR is set")
	}
	cmd := exec.CommandContext(ctx, editor, configFilePath)
	cmd.Stdin = container.Stdin()
	cmd.Stdout = container.Stdout()
	cmd.Stderr = container.Stderr()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", editor, err)
	}
	if err := acctportalconfig.ValidateConfig(configDirPath); err != nil {
		return fmt.Errorf("%s is invalid, run \"acctportal config edit\" again to fix: %w", configFilePath, err)
	}
	_, err := fmt.Fprintf(container.Stdout(), "%s is valid\n", configFilePath)
	return err
}

func getEditor(container appext.Container) string {
	if visual := container.Env("VISUAL"); visual != "" {
		return visual
	}
	return container.Env("EDITOR")
}
