// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package execution

import (
	"os/exec"
	"strings"
	"syscall"
)

const createNoWindow = 0x08000000

// hideWindow prevents the child process from opening a console window.
func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNoWindow}
}

// escapePath backslash-normalizes the path and caret-escapes cmd.exe
// metacharacters so the path survives being passed through `cmd /C`.
func escapePath(path string) string {
	var sb strings.Builder

	sb.Grow(len(path) + 9)

	for _, c := range path {
		switch c {
		case ' ', '&', '(', ')', ',', ';', '=', '^', '[', ']':
			sb.WriteByte('^')
		}

		if c == '/' {
			sb.WriteByte('\\')
		} else {
			sb.WriteRune(c)
		}
	}

	return sb.String()
}
