// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"sort"
	"strings"

	"github.com/matt-FFFFFF/scripter/internal/config"
)

type placeholderOccurrence struct {
	start       int
	end         int
	replacement string
}

// replacePlaceholders substitutes every placeholder token found in the
// argument string. Occurrences are located by literal substring search across
// the whole string, overlapping occurrences are pruned keeping the
// earlier-starting one (longer token wins a tie at the same offset), and the
// survivors are substituted back-to-front so earlier offsets stay valid.
// A token is never substituted into another placeholder's replacement value.
func replacePlaceholders(arguments string, placeholders []config.Placeholder) string {
	if len(placeholders) == 0 {
		return arguments
	}

	var occurrences []placeholderOccurrence

	for _, p := range placeholders {
		if p.Token == "" {
			continue
		}

		next := 0

		for {
			i := strings.Index(arguments[next:], p.Token)
			if i < 0 {
				break
			}

			start := next + i
			end := start + len(p.Token)
			next = end

			occurrences = append(occurrences, placeholderOccurrence{
				start:       start,
				end:         end,
				replacement: p.Value,
			})
		}
	}

	if len(occurrences) == 0 {
		return arguments
	}

	// earlier start wins; the longer token wins at equal starts
	sort.Slice(occurrences, func(i, j int) bool {
		if occurrences[i].start != occurrences[j].start {
			return occurrences[i].start < occurrences[j].start
		}

		return occurrences[i].end > occurrences[j].end
	})

	kept := occurrences[:1]

	for _, occ := range occurrences[1:] {
		if occ.start < kept[len(kept)-1].end {
			continue
		}

		kept = append(kept, occ)
	}

	// substitute back-to-front so earlier offsets stay valid
	out := arguments
	for i := len(kept) - 1; i >= 0; i-- {
		out = out[:kept[i].start] + kept[i].replacement + out[kept[i].end:]
	}

	return out
}

// commandLineFor builds the single combined command-line string handed to the
// executor: the platform-escaped resolved script path, followed by the
// placeholder-substituted arguments.
func commandLineFor(script *config.ScriptDefinition, paths config.Paths) string {
	path := escapePath(script.Command.Resolve(paths))

	if script.Arguments == "" {
		return path
	}

	return path + " " + replacePlaceholders(script.Arguments, script.Placeholders)
}
