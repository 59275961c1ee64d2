// Package search finds literal, case-insensitive occurrences of a query
// in a document and tracks a current-match cursor with wraparound
// navigation. The query is never interpreted as a pattern; there is no
// regexp anywhere in the pipeline.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kk-code-lab/rview/internal/document"
	"github.com/kk-code-lab/rview/internal/window"
)

// Match is one occurrence of a query in a document's text.
type Match struct {
	// Offset is the byte index into Document.Text.
	Offset int
	Length int
	// Text is the matched slice of the original text, preserving its
	// case.
	Text string
}

// Find returns every match of query in the document, ordered by offset,
// non-overlapping. Empty queries match nothing.
func Find(doc *document.Document, query string) []Match {
	return findIn(doc.Text, 0, query, nil)
}

// FindChunked runs the same search independently per chunk, adding each
// chunk's base offset to its local matches; the result is identical to
// Find on the whole text. Chunk boundaries fall on line starts, so only
// a query containing a line terminator could straddle a boundary; those
// queries scan the whole text instead.
func FindChunked(doc *document.Document, state *window.State, query string) []Match {
	if state == nil || !state.Active() {
		return Find(doc, query)
	}
	if strings.ContainsAny(query, "\n\r") {
		return Find(doc, query)
	}
	var matches []Match
	for i := 0; i < state.ChunkCount(); i++ {
		c := state.Chunk(i)
		base := doc.LineStart(c.StartLine)
		segment := doc.Text[base:doc.LineStart(c.EndLine)]
		matches = findIn(segment, base, query, matches)
	}
	return matches
}

// findIn appends matches of query in text to out, offset by base.
// Case-insensitive matching takes a byte-index fast path when folding
// preserves lengths, and falls back to a rune-folding walk otherwise.
func findIn(text string, base int, query string, out []Match) []Match {
	if query == "" || text == "" {
		return out
	}

	lower := strings.ToLower(text)
	needle := strings.ToLower(query)
	if len(lower) == len(text) && len(needle) == len(query) {
		from := 0
		for {
			idx := strings.Index(lower[from:], needle)
			if idx == -1 {
				return out
			}
			start := from + idx
			end := start + len(needle)
			out = append(out, Match{
				Offset: base + start,
				Length: len(needle),
				Text:   text[start:end],
			})
			from = end
		}
	}

	for i := 0; i < len(text); {
		if end, ok := matchesFoldedAt(text, i, needle); ok {
			out = append(out, Match{
				Offset: base + i,
				Length: end - i,
				Text:   text[i:end],
			})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		if size <= 0 {
			size = 1
		}
		i += size
	}
	return out
}

// matchesFoldedAt reports whether the case-folded needle matches text at
// byte position start, returning the end of the matched region.
func matchesFoldedAt(text string, start int, needleLower string) (int, bool) {
	i := start
	for _, nr := range needleLower {
		if i >= len(text) {
			return 0, false
		}
		hr, size := utf8.DecodeRuneInString(text[i:])
		if size <= 0 {
			return 0, false
		}
		if unicode.ToLower(hr) != nr {
			return 0, false
		}
		i += size
	}
	return i, true
}
