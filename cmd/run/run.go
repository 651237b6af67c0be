// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the CLI command that executes run files.
package run

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/scripter/internal/config"
	"github.com/matt-FFFFFF/scripter/internal/ctxlog"
	"github.com/matt-FFFFFF/scripter/internal/execution"
	"github.com/matt-FFFFFF/scripter/internal/tui"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	fileFlag    = "file"
	logsDirFlag = "logs-dir"
	workDirFlag = "work-dir"
	tuiFlag     = "tui"
	headlessFlag = "headless"
	cliExitStr  = ""
)

// RunCmd is the command that executes the scripts defined in one or more
// YAML run files. Each file becomes its own execution; executions run in
// parallel while scripts within each file run sequentially.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Run the scripts defined in one or more YAML run files.
Scripts within a file execute sequentially; the files themselves run in
parallel, each with its own log directory and status tracking.

Run file URLs use Hashicorp's go-getter syntax, which allows for fetching
files from various sources. See https://github.com/hashicorp/go-getter.

By default an interactive progress display is shown when stdout is a
terminal; use --headless to force plain summary output.
`,
	Arguments: []cli.Argument{},
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Specify the URL of the YAML run file to execute. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources. " +
				"Specify multiple times to run multiple files in parallel.",
			OnlyOnce: false,
		},
		&cli.StringFlag{
			Name:      logsDirFlag,
			Usage:     "Override the root directory for execution log output.",
			TakesFile: true,
			Value:     "",
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      workDirFlag,
			Usage:     "Override the default working directory for spawned scripts.",
			TakesFile: true,
			Value:     "",
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Run with the interactive terminal display even when stdout is not detected as a terminal.",
			Value:       false,
			DefaultText: "false",
			TakesFile:   false,
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        headlessFlag,
			Usage:       "Disable the interactive display and print a plain summary when all executions finish.",
			Value:       false,
			DefaultText: "false",
			TakesFile:   false,
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	sources := cmd.StringSlice(fileFlag)
	if len(sources) == 0 {
		logger.Error("Please specify at least one run file using the --file or -f flag.")
		return cli.Exit(cliExitStr, 1)
	}

	fs := afero.NewOsFs()

	baseCfg := config.DefaultAppConfig()
	if dir := cmd.String(logsDirFlag); dir != "" {
		baseCfg.Paths.LogsDir = dir
	}

	if dir := cmd.String(workDirFlag); dir != "" {
		baseCfg.Paths.WorkDir = dir
	}

	manager := execution.NewManager(fs)

	for i, src := range sources {
		if src == "" {
			logger.Error(fmt.Sprintf("The run file URL at index %d is empty. Please provide a valid URL.", i))
			return cli.Exit(cliExitStr, 1)
		}

		rf, err := config.LoadRunFile(ctx, fs, src)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to load run file %s: %s", src, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		cfg := rf.ApplyTo(baseCfg)

		name := rf.Name
		if name == "" {
			name = executionNameFromSource(src)
		}

		manager.StartNewExecution(cfg, name, rf.Scripts)
	}

	var execErr error

	switch interactive(cmd) {
	case true:
		logger.Debug("Starting interactive display")

		buf := new(bytes.Buffer)
		// The display owns the terminal; buffered log lines are replayed after it exits.
		tuiCtx := ctxlog.NewForTUI(ctx, buf)

		execErr = tui.Run(tuiCtx, manager, baseCfg)

		buf.WriteTo(cmd.Writer) //nolint:errcheck

		// The quit key requests stops but does not wait; drain the remainder
		// so workers are joined and the summary reflects final statuses.
		if err := tui.RunHeadless(ctx, manager, baseCfg, cmd.Writer); execErr == nil {
			execErr = err
		}
	default:
		execErr = tui.RunHeadless(ctx, manager, baseCfg, cmd.Writer)
	}

	if execErr != nil {
		logger.Error(fmt.Sprintf("Execution error: %s", execErr.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if manager.HasAnyExecutionFailed() {
		return cli.Exit("Some scripts failed. See the log directories for details.", 1)
	}

	return nil
}

// interactive decides whether to show the terminal display: forced on by
// --tui, forced off by --headless, otherwise on when stdout is a terminal.
func interactive(cmd *cli.Command) bool {
	if cmd.Bool(headlessFlag) {
		return false
	}

	if cmd.Bool(tuiFlag) {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}

// executionNameFromSource derives a display name from a run file URL when
// the file itself does not declare one.
func executionNameFromSource(src string) string {
	name := filepath.Base(strings.TrimSuffix(src, "/"))
	ext := filepath.Ext(name)

	return strings.TrimSuffix(name, ext)
}
