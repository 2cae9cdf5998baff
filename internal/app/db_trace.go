package app

import (
	"regexp"
	"strings"
)

const (
	maxTracedQueryLength  = 512
	maxTracedPlaceholders = 4
)

var (
	queryWhitespaceRegex  = regexp.MustCompile(`\s+`)
	placeholderListRegex  = regexp.MustCompile(`\(\s*\$\d+(?:\s*,\s*\$\d+)+\s*\)`)
	placeholderIndexRegex = regexp.MustCompile(`\$\d+`)
)

// formatDBQueryForTrace keeps span statements short: whitespace collapses,
// long placeholder lists from bulk inserts shrink to their bounds.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderListRegex.ReplaceAllStringFunc(normalized, collapsePlaceholders)
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

func collapsePlaceholders(list string) string {
	params := placeholderIndexRegex.FindAllString(list, -1)
	if len(params) <= maxTracedPlaceholders {
		return list
	}
	return "(" + params[0] + " .. " + params[len(params)-1] + ")"
}
