// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show contains the CLI command that pretty-prints a run file.
package show

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/TylerBrock/colorjson"
	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/scripter/internal/config"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	fileArg = "file"
)

var (
	// ErrLoadRunFile is returned when the run file cannot be loaded or parsed.
	ErrLoadRunFile = errors.New("failed to load run file")
	// ErrRenderRunFile is returned when the run file cannot be rendered.
	ErrRenderRunFile = errors.New("failed to render run file")
)

// ShowCmd is the command that loads a run file, validates it and
// pretty-prints the parsed result. Useful for checking what scripter
// will execute before running it.
var ShowCmd = &cli.Command{
	Name:        "show",
	Description: "Load and validate a run file, then pretty-print the parsed scripts.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		src := cmd.StringArg(fileArg)
		if src == "" {
			return cli.Exit("Please specify a run file URL.", 1)
		}

		rf, err := config.LoadRunFile(ctx, afero.NewOsFs(), src)
		if err != nil {
			return errors.Join(ErrLoadRunFile, err)
		}

		rendered, err := renderRunFile(rf)
		if err != nil {
			return errors.Join(ErrRenderRunFile, err)
		}

		fmt.Fprintln(cmd.Writer, string(rendered))

		return nil
	},
}

// renderRunFile round-trips the run file through its YAML representation so
// the output uses the run file field names rather than Go identifiers.
func renderRunFile(rf *config.RunFile) ([]byte, error) {
	data, err := yaml.Marshal(rf)
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
