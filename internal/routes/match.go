package routes

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher tests slash-separated relative paths against glob patterns.
// Patterns use doublestar syntax: "*" stays within a segment and "**"
// matches any number of segments including none.
type Matcher struct {
	patterns []string
}

// NewMatcher validates patterns. Blank patterns are skipped.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.Trim(strings.TrimSpace(p), "/")
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Match reports whether rel matches any pattern.
func (m *Matcher) Match(rel string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	rel = strings.Trim(rel, "/")
	for _, p := range m.patterns {
		if doublestar.MatchUnvalidated(p, rel) {
			return true
		}
	}
	return false
}
