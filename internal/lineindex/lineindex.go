// Package lineindex converts between byte offsets (what the parser and
// analyzer operate on throughout) and LSP line/character positions (what
// the wire protocol speaks), precomputing line-start offsets once per
// document the way a line_index utility in the retrieval pack's analyzer does.
package lineindex

import "github.com/gnlang/gnls/internal/protocol"

// Index maps byte offsets to Positions and back for one document's text.
type Index struct {
	text        string
	lineStarts  []int // byte offset of the first byte of each line
}

// New builds an Index over text. Lines are split on '\n'; a trailing '\r'
// is left as part of the line content, matching how the lexer treats it as
// ordinary whitespace rather than a line terminator of its own.
func New(text string) *Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, lineStarts: starts}
}

// Position converts a byte offset to a Position. UTF-16 character counting
// within a line only diverges from byte counting for non-ASCII text; GN
// source is overwhelmingly ASCII; Character here is a rune count within
// the line, which matches UTF-16 code units for everything outside the
// astral planes.
func (idx *Index) Position(offset int) protocol.Position {
	line := idx.lineFor(offset)
	lineStart := idx.lineStarts[line]
	char := 0
	for i := lineStart; i < offset && i < len(idx.text); {
		r := idx.text[i]
		if r < 0x80 || r >= 0xC0 {
			char++
		}
		i++
	}
	return protocol.Position{Line: line, Character: char}
}

func (idx *Index) lineFor(offset int) int {
	lo, hi := 0, len(idx.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if idx.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Offset converts a Position back to a byte offset, clamped to the text's
// bounds.
func (idx *Index) Offset(pos protocol.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(idx.lineStarts) {
		return len(idx.text)
	}
	lineStart := idx.lineStarts[pos.Line]
	lineEnd := len(idx.text)
	if pos.Line+1 < len(idx.lineStarts) {
		lineEnd = idx.lineStarts[pos.Line+1]
	}
	offset := lineStart
	remaining := pos.Character
	for offset < lineEnd && remaining > 0 {
		b := idx.text[offset]
		offset++
		for offset < lineEnd && (idx.text[offset]&0xC0) == 0x80 {
			offset++
		}
		_ = b
		remaining--
	}
	if offset > lineEnd {
		offset = lineEnd
	}
	return offset
}
