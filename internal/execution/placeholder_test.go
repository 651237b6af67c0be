// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matt-FFFFFF/scripter/internal/config"
)

func TestReplacePlaceholders(t *testing.T) {
	tests := []struct {
		name         string
		arguments    string
		placeholders []config.Placeholder
		expected     string
	}{
		{
			name:      "no_placeholders",
			arguments: "build --release",
			expected:  "build --release",
		},
		{
			name:      "token_not_found",
			arguments: "build --release",
			placeholders: []config.Placeholder{
				{Token: "%target%", Value: "x86"},
			},
			expected: "build --release",
		},
		{
			name:      "single_token",
			arguments: "build --target %target%",
			placeholders: []config.Placeholder{
				{Token: "%target%", Value: "x86"},
			},
			expected: "build --target x86",
		},
		{
			name:      "repeated_token_all_occurrences",
			arguments: "%v %v %v",
			placeholders: []config.Placeholder{
				{Token: "%v", Value: "1"},
			},
			expected: "1 1 1",
		},
		{
			name:      "multiple_tokens",
			arguments: "deploy %env% --region %region%",
			placeholders: []config.Placeholder{
				{Token: "%env%", Value: "prod"},
				{Token: "%region%", Value: "eu-west-1"},
			},
			expected: "deploy prod --region eu-west-1",
		},
		{
			name:      "longer_token_wins_at_same_offset",
			arguments: "%AB",
			placeholders: []config.Placeholder{
				{Token: "%A", Value: "X"},
				{Token: "%AB", Value: "Y"},
			},
			expected: "Y",
		},
		{
			name:      "overlap_keeps_earlier_match",
			arguments: "%A%B",
			placeholders: []config.Placeholder{
				{Token: "A%B", Value: "2"},
				{Token: "%A", Value: "1"},
			},
			expected: "1%B",
		},
		{
			name:      "replacement_is_not_substituted_again",
			arguments: "%A %B",
			placeholders: []config.Placeholder{
				{Token: "%A", Value: "%B"},
				{Token: "%B", Value: "2"},
			},
			expected: "%B 2",
		},
		{
			name:      "empty_token_is_ignored",
			arguments: "unchanged",
			placeholders: []config.Placeholder{
				{Token: "", Value: "boom"},
			},
			expected: "unchanged",
		},
		{
			name:      "empty_value_removes_token",
			arguments: "a %gone% b",
			placeholders: []config.Placeholder{
				{Token: "%gone%", Value: ""},
			},
			expected: "a  b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := replacePlaceholders(tt.arguments, tt.placeholders)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCommandLineFor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("path escaping differs on windows")
	}

	paths := config.Paths{ExeDir: "/opt/scripter"}

	t.Run("no_arguments", func(t *testing.T) {
		script := &config.ScriptDefinition{
			Name:    "plain",
			Command: config.Path{Path: "/bin/true"},
		}

		assert.Equal(t, "/bin/true", commandLineFor(script, paths))
	})

	t.Run("arguments_with_placeholders", func(t *testing.T) {
		script := &config.ScriptDefinition{
			Name:      "build",
			Command:   config.Path{Path: "make"},
			Arguments: "-j %jobs%",
			Placeholders: []config.Placeholder{
				{Token: "%jobs%", Value: "4"},
			},
		}

		assert.Equal(t, "make -j 4", commandLineFor(script, paths))
	})

	t.Run("executable_dir_relative_command", func(t *testing.T) {
		script := &config.ScriptDefinition{
			Name: "bundled",
			Command: config.Path{
				Path: "tools/run.sh",
				Kind: config.PathKindExecutableDir,
			},
		}

		assert.Equal(t, "/opt/scripter/tools/run.sh", commandLineFor(script, paths))
	})
}
