package pipeline

import (
	"regexp"
	"sort"
	"strings"
)

const byteOrderMark = "\uFEFF"

var (
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// A fence opener at the start of a line, up to three spaces of indent.
	fenceOpener = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")

	// Prose followed by a fence opener with a language on the same line,
	// e.g. "See ```js".
	trailingFence = regexp.MustCompile("^(.*[^\\s`])[ \\t]+(`{3,}|~{3,})([\\w+#.-][^`]*)$")
)

// Preprocessor rewrites raw source before any other pass sees it. The
// returned LineMap translates line numbers of the rewritten text back to
// the input.
type Preprocessor interface {
	Preprocess(content string) (string, LineMap)
}

// LineMap lists, ascending, the 1-based lines of preprocessed text that
// have no line of their own in the input. A nil map is the identity.
type LineMap []int

// Original returns the input line of preprocessed line n. An inserted line
// maps to the input line it was split from.
func (m LineMap) Original(n int) int {
	return n - sort.SearchInts(m, n+1)
}

// SourcePreprocessor normalizes line endings, drops a leading byte order
// mark and moves fence openers that trail prose onto their own line.
type SourcePreprocessor struct{}

func (SourcePreprocessor) Preprocess(content string) (string, LineMap) {
	content = strings.TrimPrefix(content, byteOrderMark)
	content = normalizeLineEndings(content)
	return splitTrailingFences(content)
}

func normalizeLineEndings(content string) string {
	if !strings.Contains(content, "\r") {
		return content
	}
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// splitTrailingFences breaks "text ```lang" into two lines when a matching
// closing fence follows, so the code becomes a real fenced block. Lines
// inside an open fence are left alone.
func splitTrailingFences(content string) (string, LineMap) {
	if !strings.Contains(content, "```") && !strings.Contains(content, "~~~") {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	open := ""
	var inserted LineMap

	for i, line := range lines {
		if open != "" {
			out = append(out, line)
			if isClosingFence(line, open) {
				open = ""
			}
			continue
		}
		if m := fenceOpener.FindStringSubmatch(line); m != nil {
			out = append(out, line)
			open = m[1]
			continue
		}
		if m := trailingFence.FindStringSubmatch(line); m != nil && hasClosingFence(lines[i+1:], m[2]) {
			out = append(out, m[1], m[2]+m[3])
			inserted = append(inserted, len(out))
			open = m[2]
			continue
		}
		out = append(out, line)
	}

	if len(inserted) == 0 {
		return content, nil
	}
	return strings.Join(out, "\n"), inserted
}

// isClosingFence reports whether line closes a fence opened with marker:
// same character, at least as long, nothing but spaces after it.
func isClosingFence(line, marker string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " \t")
	if len(trimmed) < len(marker) {
		return false
	}
	return strings.Trim(trimmed, marker[:1]) == ""
}

func hasClosingFence(lines []string, marker string) bool {
	for _, line := range lines {
		if isClosingFence(line, marker) {
			return true
		}
	}
	return false
}
