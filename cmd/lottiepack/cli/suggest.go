// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance is the largest edit distance still offered as a
// suggestion. It catches transpositions, dropped characters and extra
// characters.
const maxSuggestDistance = 3

// suggestCommand picks the subcommand name closest to unknown.
func suggestCommand(unknown string, commands []*Command) string {
	names := make([]string, len(commands))
	for i, command := range commands {
		names[i] = command.Name
	}
	return closest(unknown, names)
}

// suggestFlag finds the first flag in args that flagSet does not
// define and returns the nearest defined one, with its dash prefix.
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	defined := flagNames(flagSet)
	flagSet.VisitAll(func(f *pflag.Flag) {
		if f.Shorthand != "" {
			defined = append(defined, f.Shorthand)
		}
	})

	for _, arg := range args {
		if arg == "--" {
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if index := strings.IndexByte(name, '='); index >= 0 {
			name = name[:index]
		}
		if slices.Contains(defined, name) {
			continue
		}

		// Only the first unrecognized flag is considered.
		best := closest(name, defined)
		switch {
		case best == "":
			return ""
		case len(best) == 1:
			return "-" + best
		default:
			return "--" + best
		}
	}

	return ""
}

// closest returns the candidate nearest to input within
// maxSuggestDistance, or "". Ties go to the earlier candidate.
func closest(input string, candidates []string) string {
	bestName := ""
	bestDistance := maxSuggestDistance + 1
	for _, candidate := range candidates {
		if distance := levenshtein(input, candidate); distance < bestDistance {
			bestDistance = distance
			bestName = candidate
		}
	}
	return bestName
}

// levenshtein is the edit distance between a and b in runes, keeping
// two rows of the dynamic programming table.
func levenshtein(a, b string) int {
	source, target := []rune(a), []rune(b)
	above := make([]int, len(target)+1)
	row := make([]int, len(target)+1)
	for column := range above {
		above[column] = column
	}
	for line, sourceRune := range source {
		row[0] = line + 1
		for column, targetRune := range target {
			substitution := above[column]
			if sourceRune != targetRune {
				substitution++
			}
			row[column+1] = min(substitution, above[column+1]+1, row[column]+1)
		}
		above, row = row, above
	}
	return above[len(target)]
}
