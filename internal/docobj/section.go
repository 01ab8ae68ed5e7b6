package docobj

// SectionKind is the type of a parsed doc comment section.
type SectionKind string

const (
	SectionMarkdown   SectionKind = "markdown"
	SectionParameters SectionKind = "parameters"
	SectionReturn     SectionKind = "return"
	SectionErrors     SectionKind = "errors"
	SectionExamples   SectionKind = "examples"
)

// Item is one "name: description" entry of a structured section.
type Item struct {
	Name        string
	Annotation  string
	Description string
}

// Section is one block of a parsed doc comment. Text holds markdown, example and
// return text; Items holds parameter and error entries.
type Section struct {
	Kind       SectionKind
	Title      string
	Text       string
	Annotation string
	Items      []Item
}
