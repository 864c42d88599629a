package pipeline_test

import (
	"errors"
	"testing"

	"github.com/alnah/go-docpipe/internal/pipeline"
	"github.com/alnah/go-docpipe/internal/yamlutil"
)

// ---------------------------------------------------------------------------
// TestYAMLFrontMatter - Metadata block extraction
// ---------------------------------------------------------------------------

func TestYAMLFrontMatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantMeta map[string]any
		wantBody string
		wantErr  error
	}{
		{
			name:     "block and body",
			input:    "---\ntitle: Hi\n---\n# Hi\n",
			wantMeta: map[string]any{"title": "Hi"},
			wantBody: "# Hi\n",
		},
		{
			name:     "one blank line after block is removed",
			input:    "---\ntitle: Hi\n---\n\nBody",
			wantMeta: map[string]any{"title": "Hi"},
			wantBody: "Body",
		},
		{
			name:     "only one blank line is removed",
			input:    "---\ntitle: Hi\n---\n\n\nBody",
			wantMeta: map[string]any{"title": "Hi"},
			wantBody: "\nBody",
		},
		{
			name:     "no front matter",
			input:    "# Hi\n",
			wantMeta: map[string]any{},
			wantBody: "# Hi\n",
		},
		{
			name:     "opener not at offset zero",
			input:    "\n---\ntitle: Hi\n---\n",
			wantMeta: map[string]any{},
			wantBody: "\n---\ntitle: Hi\n---\n",
		},
		{
			name:     "empty block",
			input:    "---\n---\nBody",
			wantMeta: map[string]any{},
			wantBody: "Body",
		},
		{
			name:     "closing delimiter at end of input",
			input:    "---\ndraft: true\n---",
			wantMeta: map[string]any{"draft": true},
			wantBody: "",
		},
		{
			name:     "empty input",
			input:    "",
			wantMeta: map[string]any{},
			wantBody: "",
		},
		{
			name:    "missing closing delimiter",
			input:   "---\ntitle: Hi\n# Hi\n",
			wantErr: pipeline.ErrMalformedFrontMatter,
		},
		{
			name:    "lone delimiter",
			input:   "---",
			wantErr: pipeline.ErrMalformedFrontMatter,
		},
		{
			name:    "sequence instead of mapping",
			input:   "---\n- a\n- b\n---\nBody",
			wantErr: yamlutil.ErrNotMapping,
		},
		{
			name:    "invalid YAML",
			input:   "---\ntitle: [unclosed\n---\n",
			wantErr: pipeline.ErrMalformedFrontMatter,
		},
	}

	var fm pipeline.YAMLFrontMatter
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			meta, body, err := fm.Extract(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if !errors.Is(err, pipeline.ErrMalformedFrontMatter) {
					t.Errorf("error %v does not wrap ErrMalformedFrontMatter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if len(meta) != len(tt.wantMeta) {
				t.Fatalf("meta = %v, want %v", meta, tt.wantMeta)
			}
			for k, want := range tt.wantMeta {
				if meta[k] != want {
					t.Errorf("meta[%q] = %v, want %v", k, meta[k], want)
				}
			}
		})
	}
}
