// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strconv"
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-docpipe/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-docpipe) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-docpipe") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForUnknownDirective lists the kinds a callout may use.
func ForUnknownDirective(kinds []string) string {
	if len(kinds) == 0 {
		return ""
	}
	return format("known kinds: " + strings.Join(kinds, ", ") + "; add more under directives.kinds")
}

// ForUnbalancedDirective reminds how callouts are closed.
func ForUnbalancedDirective() string {
	return format("close every :::kind line with a ::: line of its own")
}

// ForNestingTooDeep points at the depth setting.
func ForNestingTooDeep(maxDepth int) string {
	if maxDepth <= 0 {
		return format("raise directives.maxDepth or flatten the callouts")
	}
	return format("callouts nest at most " + strconv.Itoa(maxDepth) + " levels; raise directives.maxDepth or flatten them")
}

// ForMalformedFrontMatter describes the expected front matter shape.
func ForMalformedFrontMatter() string {
	return format("front matter is a YAML mapping between two --- lines at the top of the file")
}

// ForDuplicateRoute explains how two files can claim one URL.
func ForDuplicateRoute() string {
	return format("a.md and a/index.md both serve /a; rename one or add it to routes.ignore")
}

// ForUnknownLanguage lists a few of the languages the highlighter knows.
func ForUnknownLanguage(available []string) string {
	if len(available) == 0 {
		return ""
	}
	const shown = 10
	list := available
	suffix := ""
	if len(list) > shown {
		list = list[:shown]
		suffix = ", ... (run 'docpipe doctor' for the full list)"
	}
	return format("available: " + strings.Join(list, ", ") + suffix)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
