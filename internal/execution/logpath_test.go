// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecutionLogDirectory(t *testing.T) {
	startTime := time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local)

	got := executionLogDirectory(filepath.Join("logs", "root"), startTime)

	want := filepath.Join("logs", "root", fmt.Sprintf("20250314-150926-%d", os.Getpid()))
	assert.Equal(t, want, got)
}

func TestScriptOutputPath(t *testing.T) {
	tests := []struct {
		name       string
		scriptName string
		globalIdx  int
		retryCount int
		expected   string
	}{
		{
			name:       "first_attempt",
			scriptName: "build",
			globalIdx:  0,
			retryCount: 0,
			expected:   "1_build_output.log",
		},
		{
			name:       "retry_suffix",
			scriptName: "build",
			globalIdx:  0,
			retryCount: 2,
			expected:   "1_build_output_retry2.log",
		},
		{
			name:       "non_alphanumeric_become_dashes",
			scriptName: "My Script: #1!",
			globalIdx:  4,
			retryCount: 0,
			expected:   "5_My-Script---1-_output.log",
		},
		{
			name:       "unicode_letters_kept",
			scriptName: "déploiement",
			globalIdx:  1,
			retryCount: 0,
			expected:   "2_déploiement_output.log",
		},
		{
			name:       "long_name_truncated_to_thirty",
			scriptName: strings.Repeat("a", 40),
			globalIdx:  0,
			retryCount: 0,
			expected:   "1_" + strings.Repeat("a", 30) + "_output.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scriptOutputPath("dir", tt.scriptName, tt.globalIdx, tt.retryCount)
			assert.Equal(t, filepath.Join("dir", tt.expected), got)
		})
	}
}
