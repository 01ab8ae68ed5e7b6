package goloader

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/docstring"
)

// Object properties.
const (
	PropExported        = "exported"
	PropUnexported      = "unexported"
	PropStruct          = "struct"
	PropInterface       = "interface"
	PropAlias           = "alias"
	PropGeneric         = "generic"
	PropPointerReceiver = "pointer-receiver"
	PropAbstract        = "abstract"
	PropVariadic        = "variadic"
	PropEmbedded        = "embedded"
	PropConstraint      = "constraint"
)

// builder turns the declarations of one package into child objects.
type builder struct {
	ld      *load
	pkgPath string
	types   map[string]*docobj.Object
	methods []pendingMethod
}

// pendingMethod waits for its receiver type, which may be declared in a later file.
type pendingMethod struct {
	recv string
	obj  *docobj.Object
}

func (b *builder) packageDoc(pkg *docobj.Object, files []*sourceFile) {
	if len(files) == 0 {
		return
	}
	f := files[0]
	for _, candidate := range files {
		if candidate.ast.Doc != nil {
			f = candidate
			break
		}
	}
	pkg.FilePath = f.path
	pkg.RelativeFilePath = f.rel
	pkg.Line = f.fset.Position(f.ast.Package).Line
	b.document(pkg, f.ast.Doc, docstring.Signature{})
}

func (b *builder) file(pkg *docobj.Object, f *sourceFile) {
	for _, decl := range f.ast.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			b.genDecl(pkg, f, d)
		case *ast.FuncDecl:
			b.funcDecl(pkg, f, d)
		}
	}
}

func (b *builder) genDecl(pkg *docobj.Object, f *sourceFile, d *ast.GenDecl) {
	single := len(d.Specs) == 1
	for _, spec := range d.Specs {
		// A lone spec is documented and sourced through its declaration.
		var node ast.Node = spec
		var doc *ast.CommentGroup
		if single {
			node, doc = d, d.Doc
		}

		switch s := spec.(type) {
		case *ast.ValueSpec:
			category := docobj.CategoryVariable
			if d.Tok == token.CONST {
				category = docobj.CategoryConstant
			}
			if s.Doc != nil {
				doc = s.Doc
			} else if doc == nil {
				doc = s.Comment
			}
			for _, name := range s.Names {
				if name.Name == "_" {
					continue
				}
				obj := b.object(f, b.pkgPath+"."+name.Name, category, name, node, doc, docstring.Signature{})
				if s.Type != nil {
					obj.Type = b.print(f, s.Type)
				}
				pkg.AddChild(obj)
			}

		case *ast.TypeSpec:
			if s.Doc != nil {
				doc = s.Doc
			}
			pkg.AddChild(b.typeSpec(f, s, node, doc))
		}
	}
}

func (b *builder) typeSpec(f *sourceFile, s *ast.TypeSpec, node ast.Node, doc *ast.CommentGroup) *docobj.Object {
	path := b.pkgPath + "." + s.Name.Name
	obj := b.object(f, path, docobj.CategoryType, s.Name, node, doc, docstring.Signature{})
	obj.Signature = b.typeSignature(f, s)
	if s.Assign.IsValid() {
		obj.Properties = append(obj.Properties, PropAlias)
	}
	if s.TypeParams != nil {
		obj.Properties = append(obj.Properties, PropGeneric)
	}

	switch t := s.Type.(type) {
	case *ast.StructType:
		obj.Properties = append(obj.Properties, PropStruct)
		for _, field := range t.Fields.List {
			b.fields(obj, f, field)
		}
	case *ast.InterfaceType:
		obj.Properties = append(obj.Properties, PropInterface)
		var terms []string
		for _, field := range t.Methods.List {
			ft, ok := field.Type.(*ast.FuncType)
			if !ok || len(field.Names) == 0 {
				if isTypeName(field.Type) {
					b.fields(obj, f, field)
				} else {
					// Union and approximation terms only constrain the type set.
					terms = append(terms, b.print(f, field.Type))
				}
				continue
			}
			name := field.Names[0]
			m := b.object(f, path+"."+name.Name, docobj.CategoryMethod, name, field, fieldDoc(field), b.callable(f, ft))
			m.Signature = b.print(f, &ast.FuncDecl{Name: name, Type: ft})
			m.Properties = append(m.Properties, PropAbstract)
			obj.AddChild(m)
		}
		if len(terms) > 0 {
			obj.Signature += " { " + strings.Join(terms, "; ") + " }"
			obj.Properties = append(obj.Properties, PropConstraint)
		}
	}

	b.types[s.Name.Name] = obj
	return obj
}

// fields adds one struct field entry, which may declare several names, or an
// embedded type.
func (b *builder) fields(parent *docobj.Object, f *sourceFile, field *ast.Field) {
	typ := b.print(f, field.Type)
	if len(field.Names) == 0 {
		name := embeddedName(field.Type)
		obj := b.object(f, parent.Path+"."+name, docobj.CategoryField, nil, field, fieldDoc(field), docstring.Signature{})
		obj.Line = f.fset.Position(field.Pos()).Line
		obj.Type = typ
		obj.Properties = append(obj.Properties, PropEmbedded)
		parent.AddChild(obj)
		return
	}
	for _, name := range field.Names {
		obj := b.object(f, parent.Path+"."+name.Name, docobj.CategoryField, name, field, fieldDoc(field), docstring.Signature{})
		obj.Type = typ
		parent.AddChild(obj)
	}
}

func (b *builder) funcDecl(pkg *docobj.Object, f *sourceFile, d *ast.FuncDecl) {
	sig := b.callable(f, d.Type)
	header := &ast.FuncDecl{Recv: d.Recv, Name: d.Name, Type: d.Type}

	if d.Recv == nil || len(d.Recv.List) == 0 {
		obj := b.object(f, b.pkgPath+"."+d.Name.Name, docobj.CategoryFunction, d.Name, d, d.Doc, sig)
		obj.Signature = b.print(f, header)
		if isVariadic(d.Type) {
			obj.Properties = append(obj.Properties, PropVariadic)
		}
		if d.Type.TypeParams != nil {
			obj.Properties = append(obj.Properties, PropGeneric)
		}
		pkg.AddChild(obj)
		return
	}

	recv, pointer := receiverName(d.Recv.List[0].Type)
	obj := b.object(f, b.pkgPath+"."+recv+"."+d.Name.Name, docobj.CategoryMethod, d.Name, d, d.Doc, sig)
	obj.Signature = b.print(f, header)
	if pointer {
		obj.Properties = append(obj.Properties, PropPointerReceiver)
	}
	if isVariadic(d.Type) {
		obj.Properties = append(obj.Properties, PropVariadic)
	}
	b.methods = append(b.methods, pendingMethod{recv: recv, obj: obj})
}

// attachMethods moves collected methods under their receiver types, after the
// fields, in declaration order.
func (b *builder) attachMethods() {
	for _, m := range b.methods {
		t, ok := b.types[m.recv]
		if !ok {
			b.ld.report("Couldn't find receiver type '%s' for method '%s'", m.recv, m.obj.Name)
			continue
		}
		t.AddChild(m.obj)
	}
	b.methods = nil
}

// object creates a child object with the attributes every declaration shares. ident
// may be nil for embedded fields.
func (b *builder) object(f *sourceFile, path string, category docobj.Category, ident *ast.Ident, node ast.Node, doc *ast.CommentGroup, sig docstring.Signature) *docobj.Object {
	obj := docobj.New(path, category)
	obj.FilePath = f.path
	obj.RelativeFilePath = f.rel
	if ident != nil {
		obj.Line = f.fset.Position(ident.Pos()).Line
	}
	if token.IsExported(obj.Name) {
		obj.Properties = append(obj.Properties, PropExported)
	} else {
		obj.Properties = append(obj.Properties, PropUnexported)
	}
	if b.ld.source {
		start, end := f.fset.Position(node.Pos()), f.fset.Position(node.End())
		obj.Source = &docobj.Source{
			Code:      string(f.src[start.Offset:end.Offset]),
			LineStart: start.Line,
		}
	}
	b.document(obj, doc, sig)
	return obj
}

func (b *builder) document(obj *docobj.Object, doc *ast.CommentGroup, sig docstring.Signature) {
	if doc == nil {
		return
	}
	obj.Docstring = strings.TrimRight(doc.Text(), "\n")
	sections, errs := docstring.Parse(obj.Docstring, sig)
	obj.Sections = sections
	obj.DocstringErrors = append(obj.DocstringErrors, errs...)
}

// callable describes a function type for doc comment checks.
func (b *builder) callable(f *sourceFile, ft *ast.FuncType) docstring.Signature {
	sig := docstring.Signature{Callable: true}
	if ft.Params != nil {
		for _, field := range ft.Params.List {
			typ := b.print(f, field.Type)
			for _, name := range field.Names {
				sig.Params = append(sig.Params, docstring.Param{Name: name.Name, Type: typ})
			}
		}
	}
	sig.Results = b.results(f, ft.Results)
	return sig
}

func (b *builder) results(f *sourceFile, list *ast.FieldList) string {
	if list == nil || len(list.List) == 0 {
		return ""
	}
	if len(list.List) == 1 && len(list.List[0].Names) == 0 {
		return b.print(f, list.List[0].Type)
	}
	parts := make([]string, 0, len(list.List))
	for _, field := range list.List {
		typ := b.print(f, field.Type)
		if len(field.Names) == 0 {
			parts = append(parts, typ)
			continue
		}
		names := make([]string, len(field.Names))
		for i, n := range field.Names {
			names[i] = n.Name
		}
		parts = append(parts, strings.Join(names, ", ")+" "+typ)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (b *builder) typeSignature(f *sourceFile, s *ast.TypeSpec) string {
	var sb strings.Builder
	sb.WriteString("type ")
	sb.WriteString(s.Name.Name)
	if s.TypeParams != nil && len(s.TypeParams.List) > 0 {
		params := make([]string, 0, len(s.TypeParams.List))
		for _, field := range s.TypeParams.List {
			names := make([]string, len(field.Names))
			for i, n := range field.Names {
				names[i] = n.Name
			}
			params = append(params, strings.Join(names, ", ")+" "+b.print(f, field.Type))
		}
		sb.WriteString("[" + strings.Join(params, ", ") + "]")
	}
	if s.Assign.IsValid() {
		sb.WriteString(" =")
	}
	sb.WriteByte(' ')
	switch s.Type.(type) {
	case *ast.StructType:
		sb.WriteString("struct")
	case *ast.InterfaceType:
		sb.WriteString("interface")
	default:
		sb.WriteString(b.print(f, s.Type))
	}
	return sb.String()
}

func (b *builder) print(f *sourceFile, node any) string {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, f.fset, node); err != nil {
		return ""
	}
	return buf.String()
}

func fieldDoc(field *ast.Field) *ast.CommentGroup {
	if field.Doc != nil {
		return field.Doc
	}
	return field.Comment
}

func isVariadic(ft *ast.FuncType) bool {
	if ft.Params == nil || len(ft.Params.List) == 0 {
		return false
	}
	_, ok := ft.Params.List[len(ft.Params.List)-1].Type.(*ast.Ellipsis)
	return ok
}

// receiverName returns the base type name of a method receiver and whether it is a
// pointer.
func receiverName(expr ast.Expr) (string, bool) {
	pointer := false
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch t := expr.(type) {
	case *ast.IndexExpr:
		expr = t.X
	case *ast.IndexListExpr:
		expr = t.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, pointer
	}
	return "", pointer
}

// isTypeName reports whether expr names a type, possibly instantiated, rather than
// being a type-set term such as ~int or A | B.
func isTypeName(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr:
		return true
	case *ast.IndexExpr:
		return isTypeName(t.X)
	case *ast.IndexListExpr:
		return isTypeName(t.X)
	}
	return false
}

// embeddedName is the field name an embedded type gets: its unqualified type name.
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return "?"
}
