// Package textutil measures and prepares document text for terminal
// rendering: tab expansion, display width, truncation, and control
// character sanitization.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const DefaultTabWidth = 8

// ExpandTabs replaces tab characters with spaces respecting terminal
// column width.
func ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}

	var builder strings.Builder
	column := 0
	for _, ru := range text {
		if ru == '\t' {
			spaces := tabWidth - (column % tabWidth)
			for i := 0; i < spaces; i++ {
				builder.WriteByte(' ')
			}
			column += spaces
			continue
		}
		builder.WriteRune(ru)
		width := runewidth.RuneWidth(ru)
		if width < 1 {
			width = 1
		}
		column += width
	}
	return builder.String()
}

// DisplayWidth reports the printable width of text, measuring whole
// grapheme clusters so emoji sequences and wide Hangul count correctly.
func DisplayWidth(text string) int {
	width := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		width += clusterWidth(g.Str())
	}
	return width
}

// TruncateToWidth cuts text at a display-width budget on a grapheme
// cluster boundary, appending tail (already counted against the budget)
// when anything was cut.
func TruncateToWidth(text string, budget int, tail string) string {
	if budget <= 0 {
		return ""
	}
	if DisplayWidth(text) <= budget {
		return text
	}
	keep := budget - DisplayWidth(tail)
	if keep < 0 {
		keep = 0
	}

	var builder strings.Builder
	used := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := clusterWidth(g.Str())
		if used+w > keep {
			break
		}
		builder.WriteString(g.Str())
		used += w
	}
	builder.WriteString(tail)
	return builder.String()
}

func clusterWidth(cluster string) int {
	// uniseg accounts for emoji presentation (VS16, ZWJ sequences,
	// regional indicators); runewidth alone undercounts those.
	w := uniseg.StringWidth(cluster)
	if w <= 0 {
		w = 1
	}
	return w
}
