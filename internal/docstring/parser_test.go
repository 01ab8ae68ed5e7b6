package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
)

var addSig = Signature{
	Callable: true,
	Params:   []Param{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}},
	Results:  "int",
}

func TestParse_Empty(t *testing.T) {
	sections, errs := Parse("   \n", addSig)
	require.NotNil(t, sections)
	require.NotNil(t, errs)
	assert.Empty(t, sections)
	assert.Empty(t, errs)
}

func TestParse_MarkdownOnly(t *testing.T) {
	sections, errs := Parse("Add sums two numbers.\n\nIt never overflows.\n", addSig)
	assert.Empty(t, errs)
	require.Len(t, sections, 1)
	assert.Equal(t, docobj.SectionMarkdown, sections[0].Kind)
	assert.Equal(t, "Add sums two numbers.\n\nIt never overflows.", sections[0].Text)
}

func TestParse_TitleParagraph(t *testing.T) {
	text := "Add sums two numbers.\n\nParameters:\n\ta: the first operand\n\tb: the second operand\n\t  spanning two lines\n\nReturns:\n\tthe sum\n"
	sections, errs := Parse(text, addSig)
	assert.Empty(t, errs)
	require.Len(t, sections, 3)

	assert.Equal(t, docobj.SectionMarkdown, sections[0].Kind)

	params := sections[1]
	assert.Equal(t, docobj.SectionParameters, params.Kind)
	assert.Equal(t, "Parameters", params.Title)
	require.Len(t, params.Items, 2)
	assert.Equal(t, docobj.Item{Name: "a", Annotation: "int", Description: "the first operand"}, params.Items[0])
	assert.Equal(t, "the second operand spanning two lines", params.Items[1].Description)

	ret := sections[2]
	assert.Equal(t, docobj.SectionReturn, ret.Kind)
	assert.Equal(t, "the sum", ret.Text)
	assert.Equal(t, "int", ret.Annotation)
}

func TestParse_IndentedCodeBlockBody(t *testing.T) {
	text := "Args:\n\n\ta: first\n\tb: second\n"
	sections, errs := Parse(text, addSig)
	assert.Empty(t, errs)
	require.Len(t, sections, 1)
	assert.Equal(t, docobj.SectionParameters, sections[0].Kind)
	require.Len(t, sections[0].Items, 2)
	assert.Equal(t, "b", sections[0].Items[1].Name)
}

func TestParse_HeadingAndList(t *testing.T) {
	text := "# Parameters\n\n- a: first\n- b (uint): second\n  continued\n\n# Errors\n\n- ErrOverflow: when the sum does not fit\n"
	sections, errs := Parse(text, addSig)
	assert.Empty(t, errs)
	require.Len(t, sections, 2)

	require.Len(t, sections[0].Items, 2)
	assert.Equal(t, "b", sections[0].Items[1].Name)
	assert.Equal(t, "uint", sections[0].Items[1].Annotation)
	assert.Equal(t, "second continued", sections[0].Items[1].Description)

	assert.Equal(t, docobj.SectionErrors, sections[1].Kind)
	require.Len(t, sections[1].Items, 1)
	assert.Equal(t, "ErrOverflow", sections[1].Items[0].Name)
}

func TestParse_Examples(t *testing.T) {
	text := "Example:\n\n\tn := Add(1, 2)\n\tfmt.Println(n)\n"
	sections, errs := Parse(text, addSig)
	assert.Empty(t, errs)
	require.Len(t, sections, 1)
	assert.Equal(t, docobj.SectionExamples, sections[0].Kind)
	assert.Equal(t, "n := Add(1, 2)\nfmt.Println(n)", sections[0].Text)
}

func TestParse_UnknownTitleStaysMarkdown(t *testing.T) {
	sections, errs := Parse("Note:\n\tnothing special\n", addSig)
	assert.Empty(t, errs)
	require.Len(t, sections, 1)
	assert.Equal(t, docobj.SectionMarkdown, sections[0].Kind)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		sig  Signature
		want []string
	}{
		{
			name: "empty parameters",
			text: "Parameters:\n\nDone.\n",
			sig:  addSig,
			want: []string{"Empty 'Parameters' section"},
		},
		{
			name: "missing colon",
			text: "Parameters:\n\ta the first\n",
			sig:  addSig,
			want: []string{"Failed to get 'name: description' pair from 'a the first'", "Empty 'Parameters' section"},
		},
		{
			name: "unknown parameter",
			text: "Parameters:\n\tc: not there\n",
			sig:  addSig,
			want: []string{"Parameter 'c' does not appear in the function signature"},
		},
		{
			name: "returns without results",
			text: "Returns:\n\tnothing useful\n",
			sig:  Signature{Callable: true},
			want: []string{"No return value in the signature, but a 'Returns' section is documented"},
		},
		{
			name: "non-callables skip signature checks",
			text: "Parameters:\n\tc: a field\n\nReturns:\n\tsomething\n",
			sig:  Signature{},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Parse(tt.text, tt.sig)
			assert.Equal(t, tt.want, errs)
		})
	}
}
