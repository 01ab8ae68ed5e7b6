// Package goloader builds documentation trees from Go source code.
//
// A dotted path such as "internal.store.Cache.Get" is resolved against each search
// path in turn: the longest prefix of segments that names a directory holding Go
// packages is the package, and any remaining segments select a top-level declaration
// and then one of its members. A directory that only holds sub-packages becomes a
// package node with no declarations of its own.
//
// Files are selected the way the go command selects them for the current GOOS and
// GOARCH: build constraints and platform suffixes are honoured and test files are
// left out.
package goloader

import (
	"context"
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
	"git.home.luguber.info/inful/docharvest/internal/logfields"
	"git.home.luguber.info/inful/docharvest/internal/observability"
	"git.home.luguber.info/inful/docharvest/internal/util/sets"
)

// Loader resolves dotted paths to documentation trees. It holds no per-request state
// and can be reused.
type Loader struct{}

// New returns a Loader.
func New() *Loader {
	return &Loader{}
}

// Load resolves path using the options in opts. Problems that still allow a tree to be
// returned are reported as messages; invalid options or an empty path are errors.
func (l *Loader) Load(ctx context.Context, opts docobj.Options, path string) (*docobj.Object, []string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, errors.LoadError("empty object path").Build()
	}
	options, err := DecodeOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	filters, err := compileFilters(options.Filters)
	if err != nil {
		return nil, nil, err
	}

	segments := strings.Split(path, ".")
	root, dir, depth := locate(options.SearchPaths, segments)
	if dir == "" {
		return docobj.New(path, docobj.CategoryUnknown),
			[]string{fmt.Sprintf("No package named '%s'", segments[0])}, nil
	}

	pkgPath := strings.Join(segments[:depth], ".")
	observability.DebugContext(ctx, "Resolved package",
		logfields.Path(path),
		logfields.File(dir))

	ld := &load{
		ctx:      ctx,
		root:     root,
		filters:  filters,
		source:   options.includeSource(),
		messages: []string{},
	}
	members := segments[depth:]
	pkg, err := ld.pkg(dir, pkgPath, len(members) == 0)
	if err != nil {
		return nil, nil, err
	}

	target := pkg
	resolved := pkgPath
	for _, name := range members {
		next := findChild(target, name)
		if next == nil {
			ld.messages = append(ld.messages, fmt.Sprintf("'%s' has no member '%s'", resolved, name))
			return docobj.New(path, docobj.CategoryUnknown), ld.messages, nil
		}
		target = next
		resolved = next.Path
	}

	ld.prune(target)
	return target, ld.messages, nil
}

// locate finds the package directory for the longest possible prefix of segments.
// It returns the search root it was found under, the directory and the number of
// segments consumed; dir is empty when no prefix names a package.
func locate(searchPaths []string, segments []string) (root, dir string, depth int) {
	for n := len(segments); n > 0; n-- {
		rel := filepath.Join(segments[:n]...)
		for _, sp := range searchPaths {
			candidate := filepath.Join(sp, rel)
			if hasPackages(candidate) {
				return sp, candidate, n
			}
		}
	}
	return "", "", 0
}

// hasGoFiles reports whether dir contains at least one buildable non-test Go file.
func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && isSourceFile(dir, e.Name()) {
			return true
		}
	}
	return false
}

// hasPackages reports whether dir, or any directory below it that is not skipped, holds
// Go files.
func hasPackages(dir string) bool {
	if hasGoFiles(dir) {
		return true
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() && !skipDir(e.Name()) && hasPackages(filepath.Join(dir, e.Name())) {
			return true
		}
	}
	return false
}

// isSourceFile reports whether name is a non-test Go file the build would include
// for the current platform. A file whose header cannot be read is included so that
// parsing reports the problem.
func isSourceFile(dir, name string) bool {
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}
	ok, err := build.Default.MatchFile(dir, name)
	return ok || err != nil
}

var skippedDirs = sets.New("testdata", "vendor")

func skipDir(name string) bool {
	return skippedDirs.Has(name) || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func findChild(obj *docobj.Object, name string) *docobj.Object {
	for _, c := range obj.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// prune drops descendants of obj whose names the filters reject. obj itself is kept.
func (ld *load) prune(obj *docobj.Object) {
	if len(ld.filters) == 0 {
		return
	}
	kept := obj.Children[:0]
	for _, c := range obj.Children {
		if !ld.filters.keep(c.Name) {
			observability.DebugContext(ld.ctx, "Filtered out", logfields.Path(c.Path))
			continue
		}
		ld.prune(c)
		kept = append(kept, c)
	}
	obj.Children = kept
}
