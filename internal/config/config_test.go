// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"path/filepath"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
)

func TestDefaultAppConfigDerivesPathsFromProcess(t *testing.T) {
	stubs := gostub.Stub(&Getwd, func() (string, error) {
		return "/work", nil
	})
	stubs.Stub(&Executable, func() (string, error) {
		return "/opt/scripter/scripter", nil
	})
	defer stubs.Reset()

	cfg := DefaultAppConfig()

	assert.Equal(t, "/work", cfg.Paths.WorkDir)
	assert.Equal(t, "/opt/scripter", cfg.Paths.ExeDir)
	assert.Equal(t, filepath.Join("/work", "scripter-logs"), cfg.Paths.LogsDir)
}

func TestDefaultAppConfigFallsBackToWorkDirForExeDir(t *testing.T) {
	stubs := gostub.Stub(&Getwd, func() (string, error) {
		return "/work", nil
	})
	stubs.Stub(&Executable, func() (string, error) {
		return "", assert.AnError
	})
	defer stubs.Reset()

	cfg := DefaultAppConfig()

	assert.Equal(t, "/work", cfg.Paths.ExeDir)
}
