package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the concurrent writes of pipeline
// workers logging to stderr.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestEnv returns an Environment whose process environment is vars.
func newTestEnv(vars map[string]string) (*Environment, *syncBuffer, *syncBuffer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdout: stdout,
		Stderr: stderr,
		LookupEnv: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
	}
	return env, stdout, stderr
}

// writeTree creates files below root from a path -> content map.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// siteFiles is a small content root with one nested guide.
var siteFiles = map[string]string{
	"index.md": "---\ntitle: Home\n---\n# Welcome\n\nSee [install](guide/install.md).\n",
	"guide/install.md": "# Install\n\n:::note Before you start\nYou need Go.\n:::\n\n" +
		"```go filename=\"main.go\" {1}\npackage main\n```\n",
	".drafts/wip.md": "# Not published\n",
	"assets/logo.txt": "not a document\n",
}
