// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/scripter/cmd/config"
	"github.com/matt-FFFFFF/scripter/cmd/run"
	"github.com/matt-FFFFFF/scripter/cmd/show"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		config.ConfigCmd,
		run.RunCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "scripter",
	Description: `Scripter is a parallel script execution engine.
It runs batches of scripts defined in YAML run files: scripts within a file
execute sequentially while the files themselves run in parallel. Scripts
support retries, placeholder substitution, per-script working directories
and captured output written to per-execution log directories.`,
	Usage:     "scripter run -f myscripts.yaml",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
