// Package serialize flattens documentation trees into JSON-safe maps.
package serialize

import (
	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/util/sets"
)

// groups maps a child category to the key listing the paths of such children.
var groups = map[docobj.Category]string{
	docobj.CategoryPackage:  "packages",
	docobj.CategoryType:     "types",
	docobj.CategoryFunction: "functions",
	docobj.CategoryMethod:   "methods",
	docobj.CategoryField:    "fields",
	docobj.CategoryConstant: "constants",
	docobj.CategoryVariable: "variables",
}

// Serializer turns a documentation tree into nested maps, slices and scalars only.
type Serializer struct{}

// New returns a Serializer.
func New() *Serializer {
	return &Serializer{}
}

// Serialize converts obj and all of its descendants. A nil object yields an empty map.
func (s *Serializer) Serialize(obj *docobj.Object) map[string]any {
	if obj == nil {
		return map[string]any{}
	}
	out, _ := s.object(obj)
	return out
}

// object returns the map for obj and whether obj or any descendant has documentation.
func (s *Serializer) object(obj *docobj.Object) (map[string]any, bool) {
	out := map[string]any{
		"name":               obj.Name,
		"path":               obj.Path,
		"parent_path":        obj.ParentPath(),
		"category":           string(obj.Category),
		"file_path":          obj.FilePath,
		"relative_file_path": obj.RelativeFilePath,
		"lineno":             obj.Line,
		"properties":         sets.Sorted(sets.New(obj.Properties...)),
		"docstring":          obj.Docstring,
		"docstring_sections": sections(obj.Sections),
	}

	switch obj.Category {
	case docobj.CategoryFunction, docobj.CategoryMethod, docobj.CategoryType:
		out["signature"] = obj.Signature
	case docobj.CategoryField, docobj.CategoryConstant, docobj.CategoryVariable:
		out["type"] = obj.Type
	}
	if obj.Source != nil {
		out["source"] = map[string]any{
			"code":       obj.Source.Code,
			"line_start": obj.Source.LineStart,
		}
	}

	for _, key := range groups {
		out[key] = []string{}
	}
	children := make([]any, 0, len(obj.Children))
	hasContents := obj.Docstring != ""
	for _, child := range obj.Children {
		m, childContents := s.object(child)
		children = append(children, m)
		hasContents = hasContents || childContents
		if key, ok := groups[child.Category]; ok {
			out[key] = append(out[key].([]string), child.Path)
		}
	}
	out["children"] = children
	out["has_contents"] = hasContents
	return out, hasContents
}

func sections(secs []docobj.Section) []any {
	out := make([]any, 0, len(secs))
	for _, sec := range secs {
		out = append(out, map[string]any{
			"type":  string(sec.Kind),
			"value": sectionValue(sec),
		})
	}
	return out
}

func sectionValue(sec docobj.Section) any {
	switch sec.Kind {
	case docobj.SectionParameters, docobj.SectionErrors:
		items := make([]any, 0, len(sec.Items))
		for _, it := range sec.Items {
			items = append(items, map[string]any{
				"name":        it.Name,
				"annotation":  it.Annotation,
				"description": it.Description,
			})
		}
		return items
	case docobj.SectionReturn:
		return map[string]any{
			"annotation":  sec.Annotation,
			"description": sec.Text,
		}
	default:
		return sec.Text
	}
}
