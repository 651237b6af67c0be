// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package scripter provides the version and commit information for the Scripter application.
package scripter

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "none"
)
