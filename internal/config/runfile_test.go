// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRunFile = `
name: nightly build
logs_dir: /var/log/scripter
env:
  TARGET: all
scripts:
  - name: build
    command:
      path: ./build.sh
    arguments: "--target %TARGET%"
    placeholders:
      - token: "%TARGET%"
        value: all
    retry_count: 2
  - name: deploy
    command:
      path: deploy.cmd
      kind: executable-dir
    ignore_previous_failures: true
    executor: [bash, -c]
    ignore_output: true
`

func TestParseRunFile(t *testing.T) {
	rf, err := ParseRunFile([]byte(validRunFile))
	require.NoError(t, err)

	assert.Equal(t, "nightly build", rf.Name)
	assert.Equal(t, "/var/log/scripter", rf.LogsDir)
	assert.Equal(t, map[string]string{"TARGET": "all"}, rf.Env)
	require.Len(t, rf.Scripts, 2)

	build := rf.Scripts[0]
	assert.Equal(t, "build", build.Name)
	assert.Equal(t, "./build.sh", build.Command.Path)
	assert.Equal(t, 2, build.RetryCount)
	assert.False(t, build.IgnorePreviousFailures)
	require.Len(t, build.Placeholders, 1)
	assert.Equal(t, "%TARGET%", build.Placeholders[0].Token)

	deploy := rf.Scripts[1]
	assert.Equal(t, PathKindExecutableDir, deploy.Command.Kind)
	assert.Equal(t, []string{"bash", "-c"}, deploy.Executor)
	assert.True(t, deploy.IgnoreOutput)
}

func TestParseRunFileInvalidYaml(t *testing.T) {
	_, err := ParseRunFile([]byte("scripts: ["))
	assert.ErrorIs(t, err, ErrInvalidYaml)
}

func TestParseRunFileNoScripts(t *testing.T) {
	_, err := ParseRunFile([]byte("name: empty"))
	assert.ErrorIs(t, err, ErrNoScripts)
}

func TestParseRunFileRejectsUnnamedScript(t *testing.T) {
	_, err := ParseRunFile([]byte("scripts:\n  - command: {path: x}\n"))
	assert.ErrorIs(t, err, ErrScriptNameEmpty)
}

func TestParseRunFileRejectsMissingCommand(t *testing.T) {
	_, err := ParseRunFile([]byte("scripts:\n  - name: x\n"))
	assert.ErrorIs(t, err, ErrScriptCommandEmpty)
}

func TestParseRunFileRejectsUnknownPathKind(t *testing.T) {
	_, err := ParseRunFile([]byte("scripts:\n  - name: x\n    command: {path: y, kind: nope}\n"))
	assert.ErrorIs(t, err, ErrUnknownPathKind)
}

func TestLoadRunFileFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/run.yaml", []byte(validRunFile), 0o644))

	rf, err := LoadRunFile(context.Background(), fs, "/run.yaml")
	require.NoError(t, err)
	assert.Len(t, rf.Scripts, 2)
}

func TestLoadRunFileEmptySource(t *testing.T) {
	_, err := LoadRunFile(context.Background(), afero.NewMemMapFs(), "")
	assert.ErrorIs(t, err, ErrGetRunFile)
}

func TestApplyToOverridesConfig(t *testing.T) {
	rf := &RunFile{
		LogsDir: "/tmp/logs",
		Env:     map[string]string{"A": "1"},
	}

	cfg := rf.ApplyTo(AppConfig{
		Paths:   Paths{LogsDir: "/default", WorkDir: "/wd", ExeDir: "/exe"},
		EnvVars: map[string]string{"B": "2"},
	})

	assert.Equal(t, "/tmp/logs", cfg.Paths.LogsDir)
	assert.Equal(t, "/wd", cfg.Paths.WorkDir)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, cfg.EnvVars)
}

func TestCloneScriptsIsDeep(t *testing.T) {
	orig := []ScriptDefinition{{
		Name:         "a",
		Command:      Path{Path: "x"},
		Placeholders: []Placeholder{{Token: "%T%", Value: "v"}},
		Executor:     []string{"sh", "-c"},
	}}

	cloned := CloneScripts(orig)
	cloned[0].Placeholders[0].Value = "changed"
	cloned[0].Executor[0] = "zsh"

	assert.Equal(t, "v", orig[0].Placeholders[0].Value)
	assert.Equal(t, "sh", orig[0].Executor[0])
}

func TestPathResolve(t *testing.T) {
	paths := Paths{ExeDir: "/opt/scripter"}

	assert.Equal(t, "/opt/scripter/tool.sh", Path{Path: "tool.sh", Kind: PathKindExecutableDir}.Resolve(paths))
	assert.Equal(t, "./tool.sh", Path{Path: "./tool.sh"}.Resolve(paths))
}

func TestSplitFileNameFromGetterURL(t *testing.T) {
	dir, file := splitFileNameFromGetterURL("git::https://example.com/repo//configs/run.yaml?ref=main")
	assert.Equal(t, "git::https://example.com/repo//configs?ref=main", dir)
	assert.Equal(t, "run.yaml", file)

	dir, file = splitFileNameFromGetterURL("https://example.com/repo//run.yaml")
	assert.Equal(t, "https://example.com/repo", dir)
	assert.Equal(t, "run.yaml", file)

	dir, file = splitFileNameFromGetterURL("no-separator.yaml")
	assert.Empty(t, dir)
	assert.Empty(t, file)
}
