// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config defines the script definitions and path configuration that
// the execution engine consumes, and loads them from YAML run files.
//
// Configuration is always passed by value into the engine's entry points.
// Mutating a loaded configuration after submitting scripts has no effect on
// batches that are already running.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrUnknownPathKind is returned when a path kind is not one of the known values.
	ErrUnknownPathKind = errors.New("unknown path kind")
	// ErrScriptNameEmpty is returned when a script has no name.
	ErrScriptNameEmpty = errors.New("script name must not be empty")
	// ErrScriptCommandEmpty is returned when a script has no command path.
	ErrScriptCommandEmpty = errors.New("script command must not be empty")
)

// PathKind says what a relative path is resolved against.
type PathKind string

const (
	// PathKindWorkingDir resolves the path against the configured working directory.
	PathKindWorkingDir PathKind = "working-dir"
	// PathKindExecutableDir resolves the path against the folder containing the
	// scripter executable, so portable script bundles keep working when the
	// app is moved.
	PathKindExecutableDir PathKind = "executable-dir"
)

// Validate checks that the kind is a known value. An empty kind is treated as
// PathKindWorkingDir by Normalize and is allowed here.
func (k PathKind) Validate() error {
	switch k {
	case PathKindWorkingDir, PathKindExecutableDir, "":
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownPathKind, k)
}

// Path is a filesystem path plus the base it is resolved against.
type Path struct {
	Path string   `yaml:"path"`
	Kind PathKind `yaml:"kind,omitempty"`
}

// Resolve returns the absolute-usable form of the path given the path
// configuration snapshot.
func (p Path) Resolve(paths Paths) string {
	if p.Kind == PathKindExecutableDir {
		return filepath.Join(paths.ExeDir, p.Path)
	}

	return p.Path
}

// Placeholder is a named token that is substituted into a script's argument
// string before the command line is built.
type Placeholder struct {
	Token string `yaml:"token"`
	Name  string `yaml:"name,omitempty"`
	Value string `yaml:"value"`
}

// ScriptDefinition describes one external script or command. Definitions are
// immutable once handed to the execution engine; the engine clones them into
// its own queue.
type ScriptDefinition struct {
	// Name is the display name, also used to derive the per-script log file name.
	Name string `yaml:"name"`
	// Command is the executable or script path to run.
	Command Path `yaml:"command"`
	// WorkingDirectory is the directory the process is started in.
	WorkingDirectory Path `yaml:"working_directory,omitempty"`
	// Arguments is a single argument string, with optional placeholder tokens.
	Arguments string `yaml:"arguments,omitempty"`
	// Placeholders are substituted into Arguments before execution.
	Placeholders []Placeholder `yaml:"placeholders,omitempty"`
	// RetryCount is how many times a failed run is retried before the script
	// is reported as failed.
	RetryCount int `yaml:"retry_count,omitempty"`
	// IgnorePreviousFailures runs the script even when an earlier script in
	// the same execution failed or was skipped.
	IgnorePreviousFailures bool `yaml:"ignore_previous_failures,omitempty"`
	// Executor is the argv prefix the command line is handed to, e.g.
	// ["sh", "-c"]. Empty means the platform default shell.
	Executor []string `yaml:"executor,omitempty"`
	// IgnoreOutput disables stdout/stderr capture for this script.
	IgnoreOutput bool `yaml:"ignore_output,omitempty"`
}

// Validate checks the definition for configuration errors that would make it
// unrunnable.
func (s *ScriptDefinition) Validate() error {
	if s.Name == "" {
		return ErrScriptNameEmpty
	}

	if s.Command.Path == "" {
		return fmt.Errorf("%w: script %q", ErrScriptCommandEmpty, s.Name)
	}

	if err := s.Command.Kind.Validate(); err != nil {
		return fmt.Errorf("script %q command: %w", s.Name, err)
	}

	if err := s.WorkingDirectory.Kind.Validate(); err != nil {
		return fmt.Errorf("script %q working directory: %w", s.Name, err)
	}

	return nil
}

// Clone returns a deep copy of the definition.
func (s *ScriptDefinition) Clone() ScriptDefinition {
	out := *s

	if s.Placeholders != nil {
		out.Placeholders = make([]Placeholder, len(s.Placeholders))
		copy(out.Placeholders, s.Placeholders)
	}

	if s.Executor != nil {
		out.Executor = make([]string, len(s.Executor))
		copy(out.Executor, s.Executor)
	}

	return out
}

// CloneScripts deep-copies a slice of definitions.
func CloneScripts(scripts []ScriptDefinition) []ScriptDefinition {
	out := make([]ScriptDefinition, 0, len(scripts))
	for i := range scripts {
		out = append(out, scripts[i].Clone())
	}

	return out
}

// Paths is the path configuration snapshot handed to the engine.
type Paths struct {
	// LogsDir is the root under which each execution creates its log directory.
	LogsDir string `yaml:"logs_dir,omitempty"`
	// WorkDir is the default working directory for spawned processes.
	WorkDir string `yaml:"work_dir,omitempty"`
	// ExeDir is the folder containing the scripter executable.
	ExeDir string `yaml:"-"`
}

// AppConfig is the read-only configuration passed into every engine entry
// point. It is never ambient global state.
type AppConfig struct {
	Paths   Paths             `yaml:"paths,omitempty"`
	EnvVars map[string]string `yaml:"env,omitempty"`
}

// Getwd and Executable are indirections over the os package so tests can
// stub process-derived paths.
var (
	Getwd      = os.Getwd
	Executable = os.Executable
)

// DefaultAppConfig builds an AppConfig with paths derived from the current
// process: logs under the working directory, executable folder from argv[0].
func DefaultAppConfig() AppConfig {
	wd, _ := Getwd()

	exe, err := Executable()

	exeDir := wd
	if err == nil {
		exeDir = filepath.Dir(exe)
	}

	return AppConfig{
		Paths: Paths{
			LogsDir: filepath.Join(wd, "scripter-logs"),
			WorkDir: wd,
			ExeDir:  exeDir,
		},
	}
}
