// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package config

// DefaultExecutor returns the platform default shell invocation used when a
// script does not define a custom executor.
func DefaultExecutor() []string {
	return []string{"sh", "-c"}
}
