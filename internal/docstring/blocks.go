package docstring

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// block is one top-level markdown block with the raw source it spans.
type block struct {
	node       gmast.Node
	start, end int
	raw        string
}

// lines returns the raw lines of the block with trailing blank lines dropped.
func (b block) lines() []string {
	trimmed := strings.TrimRight(b.raw, " \t\r\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// splitBlocks parses src with goldmark and slices it into top-level blocks. Goldmark
// only records content segments, so each block is taken to run from the start of its
// first line up to the start of the next block. Blocks with no recorded position
// (thematic breaks, empty headings) end up inside their predecessor.
func splitBlocks(src []byte) []block {
	root := goldmark.New().Parser().Parse(text.NewReader(src))
	return slice(src, root, 0, len(src))
}

// childBlocks slices the children of a container block, such as the items of a list.
func childBlocks(src []byte, parent block) []block {
	return slice(src, parent.node, parent.start, parent.end)
}

func slice(src []byte, parent gmast.Node, from, to int) []block {
	var out []block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		off := blockStart(src, n)
		if off < from || off > to {
			continue
		}
		if len(out) > 0 {
			prev := &out[len(out)-1]
			prev.end = off
			prev.raw = string(src[prev.start:off])
		}
		out = append(out, block{node: n, start: off, end: to, raw: string(src[off:to])})
	}
	return out
}

// blockStart returns the offset of the beginning of the line a block starts on, or -1.
func blockStart(src []byte, n gmast.Node) int {
	if fenced, ok := n.(*gmast.FencedCodeBlock); ok {
		if fenced.Info != nil {
			return lineStart(src, fenced.Info.Segment.Start)
		}
		if fenced.Lines().Len() == 0 {
			return -1
		}
		first := lineStart(src, fenced.Lines().At(0).Start)
		if first == 0 {
			return 0
		}
		// The opening fence is the line before the first content line.
		return lineStart(src, first-1)
	}
	if n.Type() == gmast.TypeBlock && n.Lines().Len() > 0 {
		return lineStart(src, n.Lines().At(0).Start)
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() != gmast.TypeBlock {
			continue
		}
		if off := blockStart(src, c); off >= 0 {
			return off
		}
	}
	return -1
}

func lineStart(src []byte, off int) int {
	if off > len(src) {
		off = len(src)
	}
	for off > 0 && src[off-1] != '\n' {
		off--
	}
	return off
}
