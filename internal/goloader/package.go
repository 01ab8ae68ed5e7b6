package goloader

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
	"git.home.luguber.info/inful/docharvest/internal/logfields"
	"git.home.luguber.info/inful/docharvest/internal/observability"
)

// load carries the state of one Load call.
type load struct {
	ctx      context.Context
	root     string
	filters  filterSet
	source   bool
	messages []string
}

func (ld *load) report(format string, args ...any) {
	ld.messages = append(ld.messages, fmt.Sprintf(format, args...))
}

// sourceFile is one parsed file of a package.
type sourceFile struct {
	path string
	rel  string
	src  []byte
	fset *token.FileSet
	ast  *ast.File
}

// pkg loads the package in dir as the object at path. Sub-packages are loaded too when
// recurse is set.
func (ld *load) pkg(dir, path string, recurse bool) (*docobj.Object, error) {
	if err := ld.ctx.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "load cancelled").
			WithContext("path", path).
			Build()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryLoad, "read package directory").
			WithContext("path", path).
			WithContext("dir", dir).
			Build()
	}

	fset := token.NewFileSet()
	var files []*sourceFile
	pkgName := ""
	for _, e := range entries {
		if e.IsDir() || !isSourceFile(dir, e.Name()) {
			continue
		}
		f := ld.parseFile(fset, filepath.Join(dir, e.Name()), path)
		if f == nil {
			continue
		}
		if pkgName == "" {
			pkgName = f.ast.Name.Name
		} else if f.ast.Name.Name != pkgName {
			ld.report("Couldn't load '%s' for '%s': found package %s, expected %s",
				f.rel, path, f.ast.Name.Name, pkgName)
			continue
		}
		files = append(files, f)
	}

	obj := docobj.New(path, docobj.CategoryPackage)
	b := &builder{ld: ld, pkgPath: path, types: map[string]*docobj.Object{}}
	b.packageDoc(obj, files)
	for _, f := range files {
		b.file(obj, f)
	}
	b.attachMethods()

	observability.DebugContext(ld.ctx, "Loaded package",
		logfields.Path(path),
		logfields.Objects(len(obj.Children)))

	if !recurse {
		return obj, nil
	}
	for _, e := range entries {
		if !e.IsDir() || skipDir(e.Name()) {
			continue
		}
		sub := filepath.Join(dir, e.Name())
		if !hasPackages(sub) {
			continue
		}
		child, err := ld.pkg(sub, path+"."+e.Name(), true)
		if err != nil {
			return nil, err
		}
		obj.AddChild(child)
	}
	return obj, nil
}

func (ld *load) parseFile(fset *token.FileSet, path, pkgPath string) *sourceFile {
	rel, err := filepath.Rel(ld.root, path)
	if err != nil {
		rel = path
	}
	src, err := os.ReadFile(path)
	if err != nil {
		ld.report("Couldn't read source for '%s': %v", pkgPath, err)
		return nil
	}
	f, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		ld.report("Couldn't parse source for '%s': %v", pkgPath, err)
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &sourceFile{path: abs, rel: filepath.ToSlash(rel), src: src, fset: fset, ast: f}
}
