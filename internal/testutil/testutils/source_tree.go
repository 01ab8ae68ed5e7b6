// Package helpers holds test fixtures shared across packages: Go source trees written
// to a temporary directory, and checks on the files a run leaves behind in them.
package helpers

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// SourceTree builds a directory of Go packages for loader and CLI tests.
type SourceTree struct {
	t     *testing.T
	root  string
	files map[string]string
}

// NewSourceTree starts an empty tree.
func NewSourceTree(t *testing.T) *SourceTree {
	return &SourceTree{t: t, files: map[string]string{}}
}

// WithFile adds a file at a slash-separated path relative to the tree root.
func (st *SourceTree) WithFile(relativePath, content string) *SourceTree {
	st.files[relativePath] = content
	return st
}

// WithFiles adds several files at once.
func (st *SourceTree) WithFiles(files map[string]string) *SourceTree {
	for path, content := range files {
		st.WithFile(path, content)
	}
	return st
}

// Write creates the tree under a fresh temporary directory and returns its path.
func (st *SourceTree) Write() string {
	st.t.Helper()
	root := st.t.TempDir()
	st.WriteTo(root)
	return root
}

// WriteTo creates the tree under root. Later assertions resolve paths against root.
func (st *SourceTree) WriteTo(root string) {
	st.t.Helper()
	st.root = root
	paths := make([]string, 0, len(st.files))
	for p := range st.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			st.t.Fatalf("create directory for %s: %v", p, err)
		}
		if err := os.WriteFile(full, []byte(st.files[p]), 0o600); err != nil {
			st.t.Fatalf("write %s: %v", p, err)
		}
	}
}

// AssertFileExists fails the test unless the file exists under the tree root. The
// file need not be one the tree wrote.
func (st *SourceTree) AssertFileExists(relativePath string) *SourceTree {
	st.t.Helper()
	if _, err := os.Stat(st.path(relativePath)); err != nil {
		st.t.Errorf("expected %s to exist: %v", relativePath, err)
	}
	return st
}

// AssertFileContains fails the test unless the file under the tree root contains
// expected.
func (st *SourceTree) AssertFileContains(relativePath, expected string) *SourceTree {
	st.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(st.path(relativePath))
	if err != nil {
		st.t.Errorf("read %s: %v", relativePath, err)
		return st
	}
	if !strings.Contains(string(content), expected) {
		st.t.Errorf("expected %s to contain %q\nactual content:\n%s", relativePath, expected, content)
	}
	return st
}

func (st *SourceTree) path(relativePath string) string {
	if st.root == "" {
		st.t.Fatalf("source tree not written yet")
	}
	return filepath.Join(st.root, filepath.FromSlash(relativePath))
}
