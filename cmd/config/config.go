// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config contains the CLI command that reports effective configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/TylerBrock/colorjson"
	"github.com/goccy/go-yaml"
	appconfig "github.com/matt-FFFFFF/scripter/internal/config"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	fileArg = "file"
)

// ErrRenderConfig is returned when the configuration cannot be rendered.
var ErrRenderConfig = errors.New("failed to render configuration")

// ConfigCmd prints the effective application configuration: the defaults
// derived from the current process, optionally overlaid with a run file's
// settings when one is given.
var ConfigCmd = &cli.Command{
	Name:  "config",
	Usage: "Show the effective configuration used for executions",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	cfg := appconfig.DefaultAppConfig()

	if src := cmd.StringArg(fileArg); src != "" {
		rf, err := appconfig.LoadRunFile(ctx, afero.NewOsFs(), src)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed to load run file %s: %s", src, err.Error()), 1)
		}

		cfg = rf.ApplyTo(cfg)
	}

	rendered, err := renderConfig(cfg)
	if err != nil {
		return errors.Join(ErrRenderConfig, err)
	}

	fmt.Fprintln(cmd.Writer, string(rendered))

	return nil
}

// renderConfig round-trips the config through YAML so the output uses the
// run file field names.
func renderConfig(cfg appconfig.AppConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	var obj any
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, err
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !term.IsTerminal(int(os.Stdout.Fd()))

	return f.Marshal(obj)
}
