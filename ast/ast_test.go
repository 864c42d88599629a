package ast_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/alnah/go-docpipe/ast"
)

func sampleTree() *ast.Node {
	heading := &ast.Node{Kind: ast.KindHeading, Level: 1, Children: []*ast.Node{
		ast.NewText("Hello "),
		{Kind: ast.KindInlineCode, Value: "world"},
	}}
	para := &ast.Node{Kind: ast.KindParagraph, Children: []*ast.Node{
		ast.NewText("line one"),
		{Kind: ast.KindLineBreak},
		ast.NewText("line two"),
	}}
	return &ast.Node{Kind: ast.KindDocument, Children: []*ast.Node{heading, para}}
}

// ---------------------------------------------------------------------------
// TestWalk - Document-order traversal with skip and stop control
// ---------------------------------------------------------------------------

func TestWalk(t *testing.T) {
	t.Parallel()

	t.Run("visits in document order", func(t *testing.T) {
		t.Parallel()

		var kinds []ast.Kind
		err := ast.Walk(sampleTree(), func(n *ast.Node) (ast.WalkStatus, error) {
			kinds = append(kinds, n.Kind)
			return ast.WalkContinue, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []ast.Kind{
			ast.KindDocument,
			ast.KindHeading, ast.KindText, ast.KindInlineCode,
			ast.KindParagraph, ast.KindText, ast.KindLineBreak, ast.KindText,
		}
		if len(kinds) != len(want) {
			t.Fatalf("visited %d nodes, want %d: %v", len(kinds), len(want), kinds)
		}
		for i := range want {
			if kinds[i] != want[i] {
				t.Errorf("kinds[%d] = %v, want %v", i, kinds[i], want[i])
			}
		}
	})

	t.Run("skip children", func(t *testing.T) {
		t.Parallel()

		visited := 0
		_ = ast.Walk(sampleTree(), func(n *ast.Node) (ast.WalkStatus, error) {
			visited++
			if n.Kind == ast.KindHeading || n.Kind == ast.KindParagraph {
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		})
		if visited != 3 {
			t.Errorf("visited = %d, want 3", visited)
		}
	})

	t.Run("stop", func(t *testing.T) {
		t.Parallel()

		visited := 0
		_ = ast.Walk(sampleTree(), func(n *ast.Node) (ast.WalkStatus, error) {
			visited++
			if n.Kind == ast.KindHeading {
				return ast.WalkStop, nil
			}
			return ast.WalkContinue, nil
		})
		if visited != 2 {
			t.Errorf("visited = %d, want 2", visited)
		}
	})

	t.Run("error propagates", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("boom")
		err := ast.Walk(sampleTree(), func(n *ast.Node) (ast.WalkStatus, error) {
			if n.Kind == ast.KindInlineCode {
				return ast.WalkStop, sentinel
			}
			return ast.WalkContinue, nil
		})
		if !errors.Is(err, sentinel) {
			t.Errorf("err = %v, want %v", err, sentinel)
		}
	})

	t.Run("nil root", func(t *testing.T) {
		t.Parallel()

		if err := ast.Walk(nil, nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestTextContent - Literal text extraction
// ---------------------------------------------------------------------------

func TestTextContent(t *testing.T) {
	t.Parallel()

	tree := sampleTree()
	if got := ast.TextContent(tree.Children[0]); got != "Hello world" {
		t.Errorf("heading text = %q, want %q", got, "Hello world")
	}
	if got := ast.TextContent(tree.Children[1]); got != "line one line two" {
		t.Errorf("paragraph text = %q, want %q", got, "line one line two")
	}
}

// ---------------------------------------------------------------------------
// TestClone - Deep copy independence
// ---------------------------------------------------------------------------

func TestClone(t *testing.T) {
	t.Parallel()

	orig := &ast.Node{
		Kind:           ast.KindCodeFence,
		Value:          "x\n",
		Tokens:         []ast.Token{{Text: "x\n"}},
		Meta:           map[string]string{"filename": "a.go"},
		HighlightLines: []int{1},
		Children:       []*ast.Node{ast.NewText("child")},
	}
	orig.SetAttr("id", "one")

	c := orig.Clone()
	c.Attrs["id"] = "two"
	c.Meta["filename"] = "b.go"
	c.Tokens[0].Text = "y\n"
	c.HighlightLines[0] = 9
	c.Children[0].Value = "changed"

	if orig.Attrs["id"] != "one" {
		t.Error("clone shares Attrs with original")
	}
	if orig.Meta["filename"] != "a.go" {
		t.Error("clone shares Meta with original")
	}
	if orig.Tokens[0].Text != "x\n" {
		t.Error("clone shares Tokens with original")
	}
	if orig.HighlightLines[0] != 1 {
		t.Error("clone shares HighlightLines with original")
	}
	if orig.Children[0].Value != "child" {
		t.Error("clone shares children with original")
	}

	t.Run("deep tree", func(t *testing.T) {
		t.Parallel()

		const depth = 100000
		root := &ast.Node{Kind: ast.KindBlockquote}
		leaf := root
		for range depth {
			next := &ast.Node{Kind: ast.KindBlockquote}
			leaf.Children = []*ast.Node{next}
			leaf = next
		}
		leaf.Children = []*ast.Node{ast.NewText("bottom")}

		c := root.Clone()
		n := c
		for range depth {
			if n == nil || len(n.Children) != 1 {
				t.Fatal("clone lost a level")
			}
			n = n.Children[0]
		}
		if n.Children[0].Value != "bottom" || n.Children[0] == leaf.Children[0] {
			t.Error("deepest node not copied")
		}
	})
}

// ---------------------------------------------------------------------------
// TestKindJSON - Kinds serialize as stable names
// ---------------------------------------------------------------------------

func TestKindJSON(t *testing.T) {
	t.Parallel()

	n := &ast.Node{Kind: ast.KindCodeFence, Lang: "go"}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"kind":"codeFence","lang":"go"}`; string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}

	var k ast.Kind
	if err := json.Unmarshal([]byte(`"directive"`), &k); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if k != ast.KindDirective {
		t.Errorf("kind = %v, want %v", k, ast.KindDirective)
	}

	if err := json.Unmarshal([]byte(`"bogus"`), &k); err == nil {
		t.Error("expected error for unknown kind name")
	}
}

func TestCount(t *testing.T) {
	t.Parallel()

	if got := ast.Count(sampleTree(), ast.KindText); got != 3 {
		t.Errorf("Count(text) = %d, want 3", got)
	}
}
