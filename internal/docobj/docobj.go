// Package docobj defines the documentation tree produced by loaders and consumed by the
// collection pipeline, plus the open option map passed to loaders.
package docobj

import "strings"

// Category classifies a documented object.
type Category string

const (
	CategoryPackage  Category = "package"
	CategoryType     Category = "type"
	CategoryFunction Category = "function"
	CategoryMethod   Category = "method"
	CategoryField    Category = "field"
	CategoryConstant Category = "constant"
	CategoryVariable Category = "variable"
	// CategoryUnknown marks a stub for a path that could not be resolved.
	CategoryUnknown Category = "unknown"
)

// Source is the declaration text of an object and the line it starts on.
type Source struct {
	Code      string
	LineStart int
}

// Object is one node of a documentation tree.
//
// DocstringErrors is always meaningful: an empty slice means the doc comment parsed
// cleanly (or there was none). Children are in declaration order.
type Object struct {
	Name             string
	Path             string
	Category         Category
	FilePath         string
	RelativeFilePath string
	Line             int
	Docstring        string
	Sections         []Section
	DocstringErrors  []string
	Signature        string
	Type             string
	Properties       []string
	Source           *Source
	Children         []*Object
}

// New creates an object whose Name is the last segment of path.
func New(path string, category Category) *Object {
	return &Object{
		Name:            LastSegment(path),
		Path:            path,
		Category:        category,
		DocstringErrors: []string{},
		Properties:      []string{},
		Children:        []*Object{},
	}
}

// AddChild appends a child object.
func (o *Object) AddChild(child *Object) {
	o.Children = append(o.Children, child)
}

// HasProperty reports whether the object carries the given property.
func (o *Object) HasProperty(p string) bool {
	for _, prop := range o.Properties {
		if prop == p {
			return true
		}
	}
	return false
}

// ParentPath returns the dotted path without its last segment.
func (o *Object) ParentPath() string {
	if i := strings.LastIndexByte(o.Path, '.'); i >= 0 {
		return o.Path[:i]
	}
	return ""
}

// Walk visits o and its descendants depth-first, pre-order.
func (o *Object) Walk(fn func(*Object)) {
	if o == nil {
		return
	}
	fn(o)
	for _, child := range o.Children {
		child.Walk(fn)
	}
}

// LastSegment returns the part of a dotted path after the final dot.
func LastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}
