// Package routes maps a folder of Markdown documents onto URL paths.
//
// The convention follows folder routing: the URL is the file's path relative
// to the content root without its extension, "index" collapses into its
// folder and a "$name" segment becomes the ":name" parameter.
package routes

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions lists the document extensions that produce routes.
var Extensions = []string{".md", ".mdx", ".markdown"}

// DefaultIgnore skips dotfiles and dot directories.
var DefaultIgnore = []string{"**/.*"}

var (
	ErrNotDirectory   = errors.New("content root is not a directory")
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)

// Route is one discovered document.
type Route struct {
	File    string // path on disk
	Rel     string // slash-separated path relative to the content root
	URLPath string
}

// IsDocument reports whether name has a document extension.
func IsDocument(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Path returns the URL path for a slash-separated relative document path.
func Path(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	segments := strings.Split(rel, "/")
	if last := len(segments) - 1; segments[last] == "index" {
		segments = segments[:last]
	}
	for i, s := range segments {
		if strings.HasPrefix(s, "$") && len(s) > 1 {
			segments[i] = ":" + s[1:]
		}
	}
	return "/" + strings.Join(segments, "/")
}

// Discover walks root and returns its routes sorted by relative path.
// Paths matching any ignore pattern are skipped; a matching directory is
// not descended into.
func Discover(root string, ignore []string) ([]Route, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	matcher, err := NewMatcher(ignore)
	if err != nil {
		return nil, err
	}

	var found []Route
	byURL := make(map[string]string)
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if matcher.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsDocument(rel) {
			return nil
		}

		url := Path(rel)
		if prev, dup := byURL[url]; dup {
			return fmt.Errorf("%w: %s and %s both map to %s", ErrDuplicateRoute, prev, rel, url)
		}
		byURL[url] = rel
		found = append(found, Route{File: p, Rel: rel, URLPath: url})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Rel < found[j].Rel })
	return found, nil
}
