// Package session coordinates one open document across the two
// presentation modes. A Session is an explicit context object handed to
// callers; nothing here is a singleton, so multiple documents mean
// multiple sessions.
//
// The model is single-threaded cooperative: no locks, and the only
// suspension points are context checks during decode. A generation
// counter makes stale decode completions discardable instead of letting
// them clobber a newer document.
package session

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/kk-code-lab/rview/internal/document"
	"github.com/kk-code-lab/rview/internal/encdetect"
	"github.com/kk-code-lab/rview/internal/host"
	"github.com/kk-code-lab/rview/internal/paginate"
	"github.com/kk-code-lab/rview/internal/position"
	"github.com/kk-code-lab/rview/internal/search"
	"github.com/kk-code-lab/rview/internal/window"
)

// Mode selects the active presentation model.
type Mode int

const (
	ModeScroll Mode = iota
	ModePage
)

func (m Mode) String() string {
	if m == ModePage {
		return "page"
	}
	return "scroll"
}

// ErrSuperseded reports that a newer Open replaced this one while its
// decode was still in flight; the stale result was discarded.
var ErrSuperseded = errors.New("open superseded by a newer document")

// ErrNoDocument reports an operation that needs an open document.
var ErrNoDocument = errors.New("no document open")

// ViewState is the cross-mode position record, updated on every mode
// switch so either mode can restore its place.
type ViewState struct {
	Mode        Mode
	ScrollLine  int
	CurrentPage int
}

// Options carries every engine knob; nothing is global.
type Options struct {
	Window             window.Options
	Paginate           paginate.Options
	LargeFileThreshold int
	Logger             zerolog.Logger
}

// Session owns the Document, ViewState, presentation structures, and
// search state for one open file.
type Session struct {
	opts Options
	log  zerolog.Logger

	gen  uint64
	meta host.Meta
	data []byte
	doc  *document.Document
	view ViewState

	win   *window.State
	pages *paginate.Paginator

	query   string
	matches []search.Match
	cursor  *search.Cursor
}

// New returns an empty session. Open must succeed before any view or
// search operation is meaningful.
func New(opts Options) *Session {
	return &Session{opts: opts, log: opts.Logger, cursor: search.NewCursor(nil)}
}

// Open detects, decodes, and indexes the file, then builds the active
// presentation mode. On failure the previously open document, if any,
// is left untouched. A stale completion (another Open ran during this
// one's decode) is discarded with ErrSuperseded.
func (s *Session) Open(ctx context.Context, file host.File) error {
	s.gen++
	gen := s.gen

	doc, err := document.Decode(ctx, file.Data, document.DecodeOptions{
		LargeFileThreshold: s.opts.LargeFileThreshold,
		Yield:              s.yield,
	})
	if err != nil {
		s.log.Warn().Str("file", file.Meta.Name).Err(err).Msg("decode failed")
		return err
	}
	if s.gen != gen {
		s.log.Debug().Str("file", file.Meta.Name).Msg("stale decode discarded")
		return ErrSuperseded
	}

	s.data = file.Data
	s.install(file.Meta, doc)
	s.log.Info().
		Str("file", file.Meta.Name).
		Stringer("encoding", doc.Encoding).
		Int("lines", doc.LineCount()).
		Bool("virtualized", s.win.Active()).
		Msg("document opened")
	return nil
}

// ChangeEncoding re-decodes the open document's bytes under an explicit
// encoding. All prior matches and the cursor are invalidated; a failed
// decode leaves the current document displayed.
func (s *Session) ChangeEncoding(ctx context.Context, enc encdetect.Encoding) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	s.gen++
	gen := s.gen

	doc, err := document.Decode(ctx, s.data, document.DecodeOptions{
		Encoding:           &enc,
		LargeFileThreshold: s.opts.LargeFileThreshold,
		Yield:              s.yield,
	})
	if err != nil {
		s.log.Warn().Stringer("encoding", enc).Err(err).Msg("re-decode failed, keeping current document")
		return err
	}
	if s.gen != gen {
		return ErrSuperseded
	}

	meta := s.meta
	view := s.view
	s.install(meta, doc)
	// Re-decoding should not lose the reader's place.
	s.view = view
	s.clampView()
	s.syncMode()
	s.log.Info().Stringer("encoding", enc).Msg("document re-decoded")
	return nil
}

// install replaces the session's document and rebuilds both derived
// structures from scratch. Search state never survives a new document.
func (s *Session) install(meta host.Meta, doc *document.Document) {
	s.meta = meta
	s.doc = doc
	s.view = ViewState{Mode: s.view.Mode, CurrentPage: 1}
	s.win = window.Build(doc, s.opts.Window)
	s.pages = paginate.New(doc, s.opts.Paginate)
	s.view.CurrentPage = s.pages.MinPage()
	s.query = ""
	s.matches = nil
	s.cursor = search.NewCursor(nil)
	s.syncMode()
}

func (s *Session) yield(ctx context.Context) error {
	return ctx.Err()
}

// Document returns the open document, nil before the first Open.
func (s *Session) Document() *document.Document { return s.doc }

// Meta returns the open file's metadata.
func (s *Session) Meta() host.Meta { return s.meta }

// View returns the cross-mode position record.
func (s *Session) View() ViewState { return s.view }

// Window returns the scroll-mode state.
func (s *Session) Window() *window.State { return s.win }

// Paginator returns the page-mode state.
func (s *Session) Paginator() *paginate.Paginator { return s.pages }

func (s *Session) translator() position.Translator {
	lpp := s.opts.Paginate.LinesPerPage
	if lpp <= 0 {
		lpp = paginate.DefaultLinesPerPage
	}
	return position.Translator{
		LinesPerPage: lpp,
		LineHeight:   s.win.Options().LineHeight,
	}
}

// SetMode switches presentation mode, translating the current position
// across and settling the old mode before the new one materializes.
func (s *Session) SetMode(mode Mode) {
	if s.doc == nil || mode == s.view.Mode {
		return
	}
	t := s.translator()
	switch mode {
	case ModePage:
		s.view.CurrentPage = t.LineToPage(s.view.ScrollLine)
		s.win.EvictAll()
	case ModeScroll:
		s.view.ScrollLine = t.PageToFirstLine(s.view.CurrentPage)
	}
	s.view.Mode = mode
	s.syncMode()
	s.log.Debug().
		Stringer("mode", mode).
		Int("line", s.view.ScrollLine).
		Int("page", s.view.CurrentPage).
		Msg("mode switch")
}

// syncMode materializes what the active mode needs at the current
// position.
func (s *Session) syncMode() {
	switch s.view.Mode {
	case ModeScroll:
		s.win.Scroll(s.view.ScrollLine * s.win.Options().LineHeight)
	case ModePage:
		_, _ = s.pages.Go(s.view.CurrentPage)
		s.view.CurrentPage = s.pages.Current()
	}
}

// ScrollTo positions scroll mode at the given top line.
func (s *Session) ScrollTo(line int) {
	if s.doc == nil {
		return
	}
	if line < 0 {
		line = 0
	}
	if last := s.doc.LineCount() - 1; line > last {
		line = last
	}
	s.view.ScrollLine = line
	if s.view.Mode == ModeScroll {
		s.syncMode()
	}
}

// ScrollBy moves scroll mode by a line delta.
func (s *Session) ScrollBy(delta int) {
	s.ScrollTo(s.view.ScrollLine + delta)
}

// GoToPage positions page mode, clamping like the paginator does.
func (s *Session) GoToPage(n int) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	page, err := s.pages.Go(n)
	if err != nil {
		return err
	}
	s.view.CurrentPage = page.Number
	return nil
}

// NextPage and PreviousPage clamp at the document's boundaries.
func (s *Session) NextPage() {
	if s.doc == nil {
		return
	}
	s.view.CurrentPage = s.pages.Next().Number
}

func (s *Session) PreviousPage() {
	if s.doc == nil {
		return
	}
	s.view.CurrentPage = s.pages.Previous().Number
}

func (s *Session) clampView() {
	if s.doc == nil {
		return
	}
	if last := s.doc.LineCount() - 1; s.view.ScrollLine > last {
		s.view.ScrollLine = last
	}
	if s.view.ScrollLine < 0 {
		s.view.ScrollLine = 0
	}
	if s.view.CurrentPage > s.pages.MaxPage() {
		s.view.CurrentPage = s.pages.MaxPage()
	}
	if s.view.CurrentPage < s.pages.MinPage() {
		s.view.CurrentPage = s.pages.MinPage()
	}
}

// Search runs a literal case-insensitive search and resets the cursor.
// It returns the match count.
func (s *Session) Search(query string) int {
	if s.doc == nil {
		return 0
	}
	s.query = query
	if s.win.Active() {
		s.matches = search.FindChunked(s.doc, s.win, query)
	} else {
		s.matches = search.Find(s.doc, query)
	}
	s.cursor = search.NewCursor(s.matches)
	s.log.Debug().Str("query", query).Int("matches", len(s.matches)).Msg("search")
	return len(s.matches)
}

// Query returns the active search query.
func (s *Session) Query() string { return s.query }

// Matches returns the active match sequence.
func (s *Session) Matches() []search.Match { return s.matches }

// Cursor returns the match cursor.
func (s *Session) Cursor() *search.Cursor { return s.cursor }

// NextMatch advances the cursor with wraparound and brings the match
// into view in the active mode.
func (s *Session) NextMatch() (search.Match, bool) {
	m, ok := s.cursor.Next()
	if ok {
		s.reveal(m)
	}
	return m, ok
}

// RevealCurrent brings the match under the cursor into view without
// moving it. Useful right after Search, which positions the cursor on
// the first match.
func (s *Session) RevealCurrent() (search.Match, bool) {
	m, ok := s.cursor.Current()
	if ok {
		s.reveal(m)
	}
	return m, ok
}

// PreviousMatch steps the cursor back with wraparound and brings the
// match into view.
func (s *Session) PreviousMatch() (search.Match, bool) {
	m, ok := s.cursor.Previous()
	if ok {
		s.reveal(m)
	}
	return m, ok
}

func (s *Session) reveal(m search.Match) {
	line := s.doc.LineAt(m.Offset)
	switch s.view.Mode {
	case ModeScroll:
		s.ScrollTo(line)
	case ModePage:
		_ = s.GoToPage(s.translator().LineToPage(line))
	}
}
