// Package docstring splits Go doc comments into structured sections.
//
// A doc comment is read as markdown. Headings ("# Parameters") and paragraphs whose
// first line is a known title followed by a colon ("Parameters:") open a structured
// section; the lines that follow, plus any list, indented code block or indented
// paragraph directly after, form its body. Everything else is kept as markdown.
package docstring

import (
	"fmt"
	"regexp"
	"strings"

	gmast "github.com/yuin/goldmark/ast"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
)

// Param is one named parameter of a callable signature.
type Param struct {
	Name string
	Type string
}

// Signature describes the object a doc comment belongs to. Parameter and return
// checks only run when Callable is set.
type Signature struct {
	Callable bool
	Params   []Param
	// Results is the printed result list, empty when the callable returns nothing.
	Results string
}

func (s Signature) param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

var titles = map[string]docobj.SectionKind{
	"args":       docobj.SectionParameters,
	"arguments":  docobj.SectionParameters,
	"params":     docobj.SectionParameters,
	"parameters": docobj.SectionParameters,
	"return":     docobj.SectionReturn,
	"returns":    docobj.SectionReturn,
	"raises":     docobj.SectionErrors,
	"errors":     docobj.SectionErrors,
	"exceptions": docobj.SectionErrors,
	"example":    docobj.SectionExamples,
	"examples":   docobj.SectionExamples,
}

var displayTitles = map[docobj.SectionKind]string{
	docobj.SectionParameters: "Parameters",
	docobj.SectionReturn:     "Returns",
	docobj.SectionErrors:     "Errors",
	docobj.SectionExamples:   "Examples",
}

var (
	listMarker    = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)
	annotatedName = regexp.MustCompile(`^(\S+)\s*\((.+)\)$`)
)

// Parse splits text into sections and returns the problems found along the way.
// Both results are non-nil.
func Parse(text string, sig Signature) ([]docobj.Section, []string) {
	p := &parser{sig: sig, sections: []docobj.Section{}, errors: []string{}}
	if strings.TrimSpace(text) == "" {
		return p.sections, p.errors
	}

	src := []byte(text)
	blocks := splitBlocks(src)
	var markdown []string
	flush := func() {
		if len(markdown) == 0 {
			return
		}
		p.sections = append(p.sections, docobj.Section{
			Kind: docobj.SectionMarkdown,
			Text: strings.Join(markdown, "\n\n"),
		})
		markdown = nil
	}

	for i := 0; i < len(blocks); i++ {
		title, kind, rest, ok := sectionTitle(src, blocks[i])
		if !ok {
			if chunk := trimBlank(blocks[i].raw); chunk != "" {
				markdown = append(markdown, chunk)
			}
			continue
		}
		flush()

		var chunks [][]string
		if len(rest) > 0 {
			chunks = append(chunks, rest)
		}
		for i+1 < len(blocks) && isBody(blocks[i+1]) {
			i++
			chunks = append(chunks, bodyChunks(src, blocks[i])...)
		}
		p.section(title, kind, chunks)
	}
	flush()
	return p.sections, p.errors
}

type parser struct {
	sig      Signature
	sections []docobj.Section
	errors   []string
}

func (p *parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *parser) section(title string, kind docobj.SectionKind, chunks [][]string) {
	switch kind {
	case docobj.SectionParameters:
		items := p.items(chunks)
		if len(items) == 0 {
			p.errorf("Empty '%s' section", displayTitles[kind])
			return
		}
		for i := range items {
			sp, found := p.sig.param(items[i].Name)
			if p.sig.Callable && !found {
				p.errorf("Parameter '%s' does not appear in the function signature", items[i].Name)
			}
			if items[i].Annotation == "" {
				items[i].Annotation = sp.Type
			}
		}
		p.sections = append(p.sections, docobj.Section{Kind: kind, Title: title, Items: items})

	case docobj.SectionErrors:
		items := p.items(chunks)
		if len(items) == 0 {
			p.errorf("Empty '%s' section", displayTitles[kind])
			return
		}
		p.sections = append(p.sections, docobj.Section{Kind: kind, Title: title, Items: items})

	case docobj.SectionReturn, docobj.SectionExamples:
		body := joinChunks(chunks)
		if body == "" {
			p.errorf("Empty '%s' section", displayTitles[kind])
			return
		}
		sec := docobj.Section{Kind: kind, Title: title, Text: body}
		if kind == docobj.SectionReturn {
			if p.sig.Callable && p.sig.Results == "" {
				p.errorf("No return value in the signature, but a 'Returns' section is documented")
			}
			sec.Annotation = p.sig.Results
		}
		p.sections = append(p.sections, sec)
	}
}

// items reads "name: description" entries. Within one chunk, lines indented deeper
// than the chunk's first line continue the previous entry.
func (p *parser) items(chunks [][]string) []docobj.Item {
	items := []docobj.Item{}
	for _, chunk := range chunks {
		base := -1
		current := -1
		for _, line := range chunk {
			if strings.TrimSpace(line) == "" {
				continue
			}
			depth := indentWidth(line)
			if base < 0 {
				base = depth
			}
			if depth > base {
				if current >= 0 {
					items[current].Description = strings.TrimSpace(items[current].Description + " " + strings.TrimSpace(line))
				}
				continue
			}

			current = -1
			name, desc, ok := strings.Cut(strings.TrimSpace(line), ":")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				p.errorf("Failed to get 'name: description' pair from '%s'", strings.TrimSpace(line))
				continue
			}
			item := docobj.Item{Name: name, Description: strings.TrimSpace(desc)}
			if m := annotatedName.FindStringSubmatch(name); m != nil {
				item.Name, item.Annotation = m[1], strings.TrimSpace(m[2])
			}
			items = append(items, item)
			current = len(items) - 1
		}
	}
	return items
}

// sectionTitle reports whether b opens a structured section. For a title paragraph,
// rest holds the paragraph lines after the title line.
func sectionTitle(src []byte, b block) (title string, kind docobj.SectionKind, rest []string, ok bool) {
	switch n := b.node.(type) {
	case *gmast.Heading:
		if n.Lines().Len() == 0 {
			return "", "", nil, false
		}
		seg := n.Lines().At(0)
		title = strings.TrimSuffix(strings.TrimSpace(string(seg.Value(src))), ":")
		kind, ok = titles[strings.ToLower(strings.TrimSpace(title))]
		if !ok {
			return "", "", nil, false
		}
		return strings.TrimSpace(title), kind, nil, true

	case *gmast.Paragraph:
		lines := b.lines()
		if len(lines) == 0 {
			return "", "", nil, false
		}
		first := strings.TrimSpace(lines[0])
		if !strings.HasSuffix(first, ":") {
			return "", "", nil, false
		}
		title = strings.TrimSpace(strings.TrimSuffix(first, ":"))
		kind, ok = titles[strings.ToLower(title)]
		if !ok {
			return "", "", nil, false
		}
		return title, kind, lines[1:], true
	}
	return "", "", nil, false
}

// isBody reports whether b continues the body of a preceding section title.
func isBody(b block) bool {
	switch b.node.(type) {
	case *gmast.List, *gmast.CodeBlock:
		return true
	case *gmast.Paragraph:
		return b.raw != "" && (b.raw[0] == ' ' || b.raw[0] == '\t')
	}
	return false
}

// bodyChunks returns the lines of a body block, one chunk per list item.
func bodyChunks(src []byte, b block) [][]string {
	if _, ok := b.node.(*gmast.List); !ok {
		return [][]string{b.lines()}
	}
	var chunks [][]string
	for _, item := range childBlocks(src, b) {
		lines := item.lines()
		if len(lines) == 0 {
			continue
		}
		lines[0] = listMarker.ReplaceAllString(lines[0], "")
		chunks = append(chunks, lines)
	}
	return chunks
}

func joinChunks(chunks [][]string) string {
	var all []string
	for i, chunk := range chunks {
		if i > 0 {
			all = append(all, "")
		}
		all = append(all, chunk...)
	}
	return strings.TrimSpace(dedent(all))
}

// dedent removes the indentation shared by all non-blank lines.
func dedent(lines []string) string {
	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		prefix := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if common < 0 || len(prefix) < common {
			common = len(prefix)
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out[i] = strings.TrimRight(l[common:], " \t\r")
	}
	return strings.Join(out, "\n")
}

func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

// trimBlank drops leading blank lines and trailing whitespace, keeping the
// indentation of the first line.
func trimBlank(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	for {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 || strings.TrimSpace(s[:nl]) != "" {
			return s
		}
		s = s[nl+1:]
	}
}
