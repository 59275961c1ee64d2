// Package paginate partitions a document's lines into fixed-size pages,
// optionally preceded by a synthetic cover page for double-page spread
// layouts. Pages are materialized on demand and hold no state beyond
// their line slice.
package paginate

import (
	"errors"

	"github.com/kk-code-lab/rview/internal/document"
)

const DefaultLinesPerPage = 30

// ErrPageOutOfRange reports a malformed page request. Ordinary
// navigation clamps instead; only negative requests fail.
var ErrPageOutOfRange = errors.New("page out of range")

// Options configures a Paginator.
type Options struct {
	LinesPerPage int
	// IncludeCover prepends a content-free page 0.
	IncludeCover bool
}

// Page is a contiguous run of document lines, or the synthetic cover.
type Page struct {
	Number  int
	Lines   []string
	IsCover bool
}

// Paginator maps 1-based page numbers (0 reserved for the cover) onto
// line ranges of one document.
type Paginator struct {
	doc          *document.Document
	linesPerPage int
	cover        bool
	current      int
}

// New builds a paginator positioned on its first page.
func New(doc *document.Document, opts Options) *Paginator {
	lpp := opts.LinesPerPage
	if lpp <= 0 {
		lpp = DefaultLinesPerPage
	}
	p := &Paginator{doc: doc, linesPerPage: lpp, cover: opts.IncludeCover}
	p.current = p.MinPage()
	return p
}

// LinesPerPage returns the configured page height in lines.
func (p *Paginator) LinesPerPage() int { return p.linesPerPage }

// HasCover reports whether a synthetic page 0 precedes page 1.
func (p *Paginator) HasCover() bool { return p.cover }

// ContentPages is the number of non-cover pages.
func (p *Paginator) ContentPages() int {
	return (p.doc.LineCount() + p.linesPerPage - 1) / p.linesPerPage
}

// TotalPages counts every page, cover included.
func (p *Paginator) TotalPages() int {
	total := p.ContentPages()
	if p.cover {
		total++
	}
	return total
}

// MinPage is the lowest valid page number: 0 with a cover, else 1.
func (p *Paginator) MinPage() int {
	if p.cover {
		return 0
	}
	return 1
}

// Current returns the current page number.
func (p *Paginator) Current() int { return p.current }

// Page materializes page n. Negative numbers fail with
// ErrPageOutOfRange; anything else clamps into [MinPage, MaxPage].
func (p *Paginator) Page(n int) (Page, error) {
	if n < 0 {
		return Page{}, ErrPageOutOfRange
	}
	n = p.clamp(n)
	if p.cover && n == 0 {
		return Page{Number: 0, IsCover: true}, nil
	}
	start := (n - 1) * p.linesPerPage
	end := start + p.linesPerPage
	return Page{Number: n, Lines: p.doc.Lines(start, end)}, nil
}

// Go moves to page n with the same clamping as Page and returns the
// materialized page.
func (p *Paginator) Go(n int) (Page, error) {
	page, err := p.Page(n)
	if err != nil {
		return Page{}, err
	}
	p.current = page.Number
	return page, nil
}

// Next advances one page, clamping at the last page.
func (p *Paginator) Next() Page {
	page, _ := p.Go(p.clamp(p.current + 1))
	return page
}

// Previous steps back one page, clamping at the first page.
func (p *Paginator) Previous() Page {
	n := p.current - 1
	if n < p.MinPage() {
		n = p.MinPage()
	}
	page, _ := p.Go(n)
	return page
}

// clamp bounds a page number to [MinPage, MaxPage].
func (p *Paginator) clamp(n int) int {
	if n < p.MinPage() {
		return p.MinPage()
	}
	if max := p.MaxPage(); n > max {
		return max
	}
	return n
}

// MaxPage is the highest valid page number. Content pages are numbered
// 1..ContentPages whether or not a cover occupies page 0.
func (p *Paginator) MaxPage() int {
	return p.ContentPages()
}
