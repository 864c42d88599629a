package hints

import (
	"strings"
	"testing"
)

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	t.Run("suggests user config path", func(t *testing.T) {
		t.Parallel()

		hint := ForConfigNotFound([]string{"site.yaml", "site.yml", "/home/u/.config/go-docpipe/site.yaml"})
		if !strings.HasPrefix(hint, "\n  hint: ") {
			t.Errorf("hint = %q, want hint prefix", hint)
		}
		if !strings.Contains(hint, "--config") {
			t.Error("expected --config suggestion")
		}
		if !strings.Contains(hint, "or create /home/u/.config/go-docpipe/site.yaml") {
			t.Errorf("expected user path suggestion, got %q", hint)
		}
	})

	t.Run("no user path", func(t *testing.T) {
		t.Parallel()

		hint := ForConfigNotFound([]string{"site.yaml"})
		if strings.Contains(hint, "or create") {
			t.Errorf("unexpected create suggestion: %q", hint)
		}
	})
}

func TestForUnknownDirective(t *testing.T) {
	t.Parallel()

	if got := ForUnknownDirective(nil); got != "" {
		t.Errorf("empty kinds hint = %q, want empty", got)
	}
	hint := ForUnknownDirective([]string{"note", "tip"})
	if !strings.Contains(hint, "note, tip") || !strings.Contains(hint, "directives.kinds") {
		t.Errorf("hint = %q", hint)
	}
}

func TestForNestingTooDeep(t *testing.T) {
	t.Parallel()

	if hint := ForNestingTooDeep(8); !strings.Contains(hint, "8 levels") {
		t.Errorf("hint = %q, want depth", hint)
	}
	if hint := ForNestingTooDeep(0); !strings.Contains(hint, "directives.maxDepth") {
		t.Errorf("hint = %q", hint)
	}
}

func TestForUnknownLanguage(t *testing.T) {
	t.Parallel()

	if got := ForUnknownLanguage(nil); got != "" {
		t.Errorf("hint = %q, want empty", got)
	}

	short := ForUnknownLanguage([]string{"go", "rust"})
	if !strings.Contains(short, "go, rust") || strings.Contains(short, "...") {
		t.Errorf("short hint = %q", short)
	}

	many := make([]string, 15)
	for i := range many {
		many[i] = "lang" + string(rune('a'+i))
	}
	long := ForUnknownLanguage(many)
	if !strings.Contains(long, "langj, ...") || strings.Contains(long, "langk") {
		t.Errorf("long hint = %q, want first ten then ellipsis", long)
	}
}

func TestStaticHints(t *testing.T) {
	t.Parallel()

	for name, hint := range map[string]string{
		"output":      ForOutputDirectory(),
		"unbalanced":  ForUnbalancedDirective(),
		"frontmatter": ForMalformedFrontMatter(),
		"duplicate":   ForDuplicateRoute(),
	} {
		if !strings.HasPrefix(hint, "\n  hint: ") || len(hint) < 15 {
			t.Errorf("%s hint = %q", name, hint)
		}
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	if got := format(""); got != "" {
		t.Errorf("format(\"\") = %q, want empty", got)
	}
	if got := format("x"); got != "\n  hint: x" {
		t.Errorf("format(x) = %q", got)
	}
}
