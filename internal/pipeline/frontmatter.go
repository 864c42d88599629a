package pipeline

import (
	"fmt"
	"strings"

	"github.com/alnah/go-docpipe/internal/yamlutil"
)

const frontMatterDelimiter = "---"

// FrontMatterExtractor splits a metadata block off the top of a document.
type FrontMatterExtractor interface {
	Extract(content string) (map[string]any, string, error)
}

// YAMLFrontMatter reads a YAML mapping fenced by "---" lines. The opening
// delimiter must be the very first line. The returned body is always a
// suffix of content.
type YAMLFrontMatter struct{}

func (YAMLFrontMatter) Extract(content string) (map[string]any, string, error) {
	first, rest, found := strings.Cut(content, "\n")
	if !isDelimiter(first) {
		return map[string]any{}, content, nil
	}
	if !found {
		return nil, "", fmt.Errorf("%w: missing closing %q", ErrMalformedFrontMatter, frontMatterDelimiter)
	}

	block, body, ok := cutAtDelimiter(rest)
	if !ok {
		return nil, "", fmt.Errorf("%w: missing closing %q", ErrMalformedFrontMatter, frontMatterDelimiter)
	}

	meta, err := yamlutil.DecodeMapping([]byte(block))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrMalformedFrontMatter, err)
	}
	return meta, dropBlankLine(body), nil
}

// cutAtDelimiter returns the text before the first delimiter line and the
// text after it.
func cutAtDelimiter(s string) (before, after string, ok bool) {
	offset := 0
	for offset <= len(s) {
		line, _, found := strings.Cut(s[offset:], "\n")
		if isDelimiter(line) {
			end := offset + len(line)
			if found {
				end++
			}
			return s[:offset], s[end:], true
		}
		if !found {
			break
		}
		offset += len(line) + 1
	}
	return "", "", false
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t") == frontMatterDelimiter
}

// dropBlankLine removes one whitespace-only line from the start of body.
func dropBlankLine(body string) string {
	line, rest, found := strings.Cut(body, "\n")
	if found && strings.TrimSpace(line) == "" {
		return rest
	}
	return body
}
