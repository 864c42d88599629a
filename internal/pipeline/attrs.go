package pipeline

import (
	"strings"
	"unicode"
)

// attribute is one key or key=value token of a marker or fence meta string.
// Bare tokens have an empty Value and Bare set.
type attribute struct {
	Key   string
	Value string
	Bare  bool
}

// tokenizeAttributes splits s into attributes. Values may be double or
// single quoted; a backslash escapes the quote character inside them. An
// unterminated quote runs to the end of the input.
func tokenizeAttributes(s string) []attribute {
	var attrs []attribute
	r := []rune(s)
	i := 0
	for i < len(r) {
		for i < len(r) && (unicode.IsSpace(r[i]) || r[i] == ',') {
			i++
		}
		if i >= len(r) {
			break
		}

		start := i
		for i < len(r) && !unicode.IsSpace(r[i]) && r[i] != '=' {
			i++
		}
		key := string(r[start:i])

		if i >= len(r) || r[i] != '=' {
			attrs = append(attrs, attribute{Key: key, Bare: true})
			continue
		}
		i++ // '='

		var value string
		value, i = readValue(r, i)
		attrs = append(attrs, attribute{Key: key, Value: value})
	}
	return attrs
}

func readValue(r []rune, i int) (string, int) {
	if i >= len(r) {
		return "", i
	}
	quote := r[i]
	if quote != '"' && quote != '\'' {
		start := i
		for i < len(r) && !unicode.IsSpace(r[i]) {
			i++
		}
		return string(r[start:i]), i
	}

	var b strings.Builder
	i++
	for i < len(r) {
		c := r[i]
		if c == '\\' && i+1 < len(r) && (r[i+1] == quote || r[i+1] == '\\') {
			b.WriteRune(r[i+1])
			i += 2
			continue
		}
		if c == quote {
			i++
			break
		}
		b.WriteRune(c)
		i++
	}
	return b.String(), i
}
