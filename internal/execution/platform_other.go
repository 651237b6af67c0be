// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package execution

import "os/exec"

// hideWindow is a no-op outside Windows.
func hideWindow(_ *exec.Cmd) {}

// escapePath is a no-op outside Windows; POSIX shells receive the path as
// part of a single argument.
func escapePath(path string) string {
	return path
}
