// Package viewer draws one session onto a tcell screen: a header bar,
// the document body in the session's active mode, and a status line
// that doubles as the search prompt.
package viewer

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kk-code-lab/rview/internal/search"
	"github.com/kk-code-lab/rview/internal/session"
	"github.com/kk-code-lab/rview/internal/textutil"
)

// Theme groups the styles the renderer draws with.
type Theme struct {
	Header       tcell.Style
	Text         tcell.Style
	Status       tcell.Style
	Prompt       tcell.Style
	Match        tcell.Style
	CurrentMatch tcell.Style
}

// DefaultTheme works on both light and dark terminals.
func DefaultTheme() Theme {
	return Theme{
		Header:       tcell.StyleDefault.Reverse(true).Bold(true),
		Text:         tcell.StyleDefault,
		Status:       tcell.StyleDefault.Reverse(true),
		Prompt:       tcell.StyleDefault.Bold(true),
		Match:        tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow),
		CurrentMatch: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorOrange),
	}
}

// Frame is the per-draw UI state the application layers on top of the
// session: the live search prompt and a transient status message.
type Frame struct {
	Prompting bool
	Prompt    string
	Message   string
}

// Renderer draws frames. It holds no document state of its own.
type Renderer struct {
	screen tcell.Screen
	theme  Theme
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen, theme: DefaultTheme()}
}

// Render draws the whole screen for the session's current state.
func (r *Renderer) Render(s *session.Session, f Frame) {
	r.screen.Clear()
	w, h := r.screen.Size()
	if w < 1 || h < 3 {
		r.screen.Show()
		return
	}

	r.drawHeader(s, w)

	body := h - 2
	if s.Document() == nil {
		r.drawText(0, 1, w, "no document open", r.theme.Text)
	} else if s.View().Mode == session.ModePage {
		r.drawPage(s, w, body)
	} else {
		r.drawScroll(s, w, body)
	}

	if f.Prompting {
		r.drawPrompt(f, w, h-1)
	} else {
		r.drawStatus(s, f, w, h-1)
	}

	r.screen.Show()
}

func (r *Renderer) drawHeader(s *session.Session, w int) {
	name := s.Meta().Name
	if name == "" {
		name = "(untitled)"
	}
	title := textutil.TruncateToWidth(" rview  "+textutil.SanitizeTerminalText(name), w, "…")
	x := r.drawText(0, 0, w, title, r.theme.Header)
	for ; x < w; x++ {
		r.screen.SetContent(x, 0, ' ', nil, r.theme.Header)
	}
}

func (r *Renderer) drawScroll(s *session.Session, w, body int) {
	doc := s.Document()
	top := s.View().ScrollLine
	for row := 0; row < body; row++ {
		line := top + row
		if line >= doc.LineCount() {
			break
		}
		r.drawLine(s, line, s.Window().Line(line), 1+row, w)
	}
}

func (r *Renderer) drawPage(s *session.Session, w, body int) {
	page, err := s.Paginator().Page(s.View().CurrentPage)
	if err != nil {
		return
	}
	if page.IsCover {
		r.drawCover(s, w, body)
		return
	}
	firstLine := (page.Number - 1) * s.Paginator().LinesPerPage()
	for row, text := range page.Lines {
		if row >= body {
			break
		}
		r.drawLine(s, firstLine+row, text, 1+row, w)
	}
}

func (r *Renderer) drawCover(s *session.Session, w, body int) {
	name := textutil.SanitizeTerminalText(s.Meta().Name)
	name = textutil.TruncateToWidth(name, w, "…")
	y := body / 2
	x := (w - textutil.DisplayWidth(name)) / 2
	if x < 0 {
		x = 0
	}
	r.drawText(x, 1+y, w-x, name, r.theme.Text.Bold(true))
}

// drawLine draws one document line with tab expansion and match
// highlighting. Lines without matches expand and sanitize up front;
// highlighted lines track byte positions through the raw text so match
// offsets stay aligned after tabs expand.
func (r *Renderer) drawLine(s *session.Session, line int, text string, y, w int) {
	spans := r.matchSpans(s, line, len(text))
	if len(spans) == 0 {
		expanded := textutil.ExpandTabs(textutil.SanitizeTerminalText(text), textutil.DefaultTabWidth)
		r.drawText(0, y, w, expanded, r.theme.Text)
		return
	}
	x := 0
	byteIdx := 0
	for _, ru := range text {
		if x >= w {
			break
		}
		style := r.styleAt(spans, byteIdx)
		if ru == '\t' {
			next := (x/textutil.DefaultTabWidth + 1) * textutil.DefaultTabWidth
			for ; x < next && x < w; x++ {
				r.screen.SetContent(x, y, ' ', nil, style)
			}
			byteIdx++
			continue
		}
		if ru < 0x20 || ru == 0x7f || textutil.IsFormattingRune(ru) {
			ru = '?'
		}
		rw := runewidth.RuneWidth(ru)
		if rw < 1 {
			rw = 1
		}
		if x+rw > w {
			break
		}
		r.screen.SetContent(x, y, ru, nil, style)
		x += rw
		byteIdx += len(string(ru))
	}
}

type span struct {
	start, end int
	current    bool
}

// matchSpans returns the match ranges that fall on the given line, as
// offsets relative to the line start.
func (r *Renderer) matchSpans(s *session.Session, line, lineLen int) []span {
	matches := s.Matches()
	if len(matches) == 0 {
		return nil
	}
	lineStart := s.Document().LineStart(line)
	lineEnd := lineStart + lineLen
	first := sort.Search(len(matches), func(i int) bool {
		return matches[i].Offset+matches[i].Length > lineStart
	})
	var current search.Match
	hasCurrent := false
	if m, ok := s.Cursor().Current(); ok {
		current, hasCurrent = m, true
	}
	var out []span
	for _, m := range matches[first:] {
		if m.Offset >= lineEnd {
			break
		}
		sp := span{start: m.Offset - lineStart, end: m.Offset + m.Length - lineStart}
		if sp.start < 0 {
			sp.start = 0
		}
		if sp.end > lineLen {
			sp.end = lineLen
		}
		sp.current = hasCurrent && m.Offset == current.Offset
		out = append(out, sp)
	}
	return out
}

func (r *Renderer) styleAt(spans []span, byteIdx int) tcell.Style {
	for _, sp := range spans {
		if byteIdx >= sp.start && byteIdx < sp.end {
			if sp.current {
				return r.theme.CurrentMatch
			}
			return r.theme.Match
		}
	}
	return r.theme.Text
}

func (r *Renderer) drawStatus(s *session.Session, f Frame, w, y int) {
	left := "no document"
	if doc := s.Document(); doc != nil {
		v := s.View()
		if v.Mode == session.ModePage {
			left = fmt.Sprintf(" %s  page %d/%d", doc.Encoding, v.CurrentPage, s.Paginator().TotalPages())
		} else {
			left = fmt.Sprintf(" %s  ln %d/%d", doc.Encoding, v.ScrollLine+1, doc.LineCount())
		}
		if q := s.Query(); q != "" {
			if c := s.Cursor(); c.Len() > 0 {
				left += fmt.Sprintf("  [%d/%d] %q", c.Index()+1, c.Len(), q)
			} else {
				left += fmt.Sprintf("  [0/0] %q", q)
			}
		}
	}
	if f.Message != "" {
		left += "  " + f.Message
	}

	const hint = "m:mode /:find n/N:match e:enc q:quit "
	left = textutil.TruncateToWidth(textutil.SanitizeTerminalText(left), w, "…")
	x := r.drawText(0, y, w, left, r.theme.Status)
	for ; x < w; x++ {
		r.screen.SetContent(x, y, ' ', nil, r.theme.Status)
	}
	if hw := textutil.DisplayWidth(hint); w-hw > textutil.DisplayWidth(left)+1 {
		r.drawText(w-hw, y, hw, hint, r.theme.Status)
	}
}

func (r *Renderer) drawPrompt(f Frame, w, y int) {
	for x := 0; x < w; x++ {
		r.screen.SetContent(x, y, ' ', nil, r.theme.Prompt)
	}
	text := "/" + textutil.SanitizeTerminalText(f.Prompt)
	text = textutil.TruncateToWidth(text, w-1, "…")
	x := r.drawText(0, y, w-1, text, r.theme.Prompt)
	if x < w {
		r.screen.SetContent(x, y, ' ', nil, r.theme.Prompt.Reverse(true))
	}
}

func (r *Renderer) drawText(x, y, maxWidth int, text string, style tcell.Style) int {
	limit := x + maxWidth
	for _, ru := range text {
		rw := runewidth.RuneWidth(ru)
		if rw < 1 {
			rw = 1
		}
		if x+rw > limit {
			break
		}
		r.screen.SetContent(x, y, ru, nil, style)
		x += rw
	}
	return x
}
