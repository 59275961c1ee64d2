package search

import "strings"

// Highlight wraps each match in markOn/markOff markers. Insertions run
// in descending offset order so markers for one match never shift the
// offsets of matches not yet processed. The input is never mutated;
// clearing highlights is simply re-rendering the original text.
func Highlight(text string, matches []Match, markOn, markOff string) string {
	if len(matches) == 0 {
		return text
	}

	out := text
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m.Offset < 0 || m.Offset+m.Length > len(out) {
			continue
		}
		end := m.Offset + m.Length
		var b strings.Builder
		b.Grow(len(out) + len(markOn) + len(markOff))
		b.WriteString(out[:m.Offset])
		b.WriteString(markOn)
		b.WriteString(out[m.Offset:end])
		b.WriteString(markOff)
		b.WriteString(out[end:])
		out = b.String()
	}
	return out
}
