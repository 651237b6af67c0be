// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const (
	logDirTimeFormat  = "20060102-150405"
	maxScriptFileName = 30
)

// executionLogDirectory returns the per-execution log directory under the
// logs root, named from the execution start time plus the process id so
// concurrent app instances never collide.
func executionLogDirectory(logsRoot string, startTime time.Time) string {
	return filepath.Join(logsRoot, fmt.Sprintf("%s-%d", startTime.Format(logDirTimeFormat), os.Getpid()))
}

// scriptOutputPath returns the output file for one attempt of one script:
// `{globalIdx+1}_{sanitized-name}_output.log` for the first attempt and
// `..._output_retry{N}.log` for retries. The name part keeps only
// alphanumeric characters (the rest become '-') and is truncated to 30.
func scriptOutputPath(logDirectory, scriptName string, globalIdx, retryCount int) string {
	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return '-'
	}, scriptName)

	if runes := []rune(sanitized); len(runes) > maxScriptFileName {
		sanitized = string(runes[:maxScriptFileName])
	}

	if retryCount == 0 {
		return filepath.Join(logDirectory, fmt.Sprintf("%d_%s_output.log", globalIdx+1, sanitized))
	}

	return filepath.Join(logDirectory, fmt.Sprintf("%d_%s_output_retry%d.log", globalIdx+1, sanitized, retryCount))
}
