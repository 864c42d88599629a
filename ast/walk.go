package ast

import "strings"

// WalkStatus tells Walk how to continue after visiting a node.
type WalkStatus int

const (
	// WalkContinue descends into the node's children.
	WalkContinue WalkStatus = iota
	// WalkSkipChildren continues with the next sibling.
	WalkSkipChildren
	// WalkStop ends the walk.
	WalkStop
)

// Walker is called for every visited node.
type Walker func(n *Node) (WalkStatus, error)

// Walk visits the subtree rooted at root in document order (pre-order).
// It uses an explicit stack so deeply nested input cannot exhaust the call
// stack. The first error returned by fn stops the walk and is returned.
func Walk(root *Node, fn Walker) error {
	if root == nil {
		return nil
	}
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		status, err := fn(n)
		if err != nil {
			return err
		}
		switch status {
		case WalkStop:
			return nil
		case WalkSkipChildren:
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
	return nil
}

// Inspect visits every node of kind in document order.
func Inspect(root *Node, kind Kind, fn func(n *Node)) {
	_ = Walk(root, func(n *Node) (WalkStatus, error) {
		if n.Kind == kind {
			fn(n)
		}
		return WalkContinue, nil
	})
}

// TextContent returns the concatenated literal text below n.
// Line breaks contribute a single space.
func TextContent(n *Node) string {
	var b strings.Builder
	_ = Walk(n, func(c *Node) (WalkStatus, error) {
		switch c.Kind {
		case KindText, KindInlineCode:
			b.WriteString(c.Value)
		case KindLineBreak:
			b.WriteByte(' ')
		}
		return WalkContinue, nil
	})
	return b.String()
}

// Count returns the number of nodes of kind below and including root.
func Count(root *Node, kind Kind) int {
	count := 0
	Inspect(root, kind, func(*Node) { count++ })
	return count
}
