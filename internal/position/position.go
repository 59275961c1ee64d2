// Package position converts between a scroll-mode line position and a
// page-mode page number. It is used only at mode-switch time; both
// directions are approximate because true rendered line height is
// layout-dependent, and drift within one page is accepted.
package position

// Translator holds the geometry shared by both presentation modes.
// It never fails; every input maps to a best-effort answer.
//
// Content pages are numbered from 1 whether or not a cover page
// exists; the cover, page 0, maps to line 0 like any pre-content page.
type Translator struct {
	LinesPerPage int
	LineHeight   int
}

// LineToPage maps a scroll-mode line to its content page number.
func (t Translator) LineToPage(line int) int {
	if line < 0 {
		line = 0
	}
	lpp := t.LinesPerPage
	if lpp <= 0 {
		lpp = 1
	}
	return line/lpp + 1
}

// PageToFirstLine maps a page number to the first line it covers. The
// cover page (and anything below the first content page) maps to line 0.
func (t Translator) PageToFirstLine(page int) int {
	lpp := t.LinesPerPage
	if lpp <= 0 {
		lpp = 1
	}
	line := (page - 1) * lpp
	if line < 0 {
		return 0
	}
	return line
}

// ScrollLine estimates the line currently at the top of a scroll
// container. With virtualization active, scrollTop is in line-height
// units; otherwise it is proportional to the full extent.
func (t Translator) ScrollLine(scrollTop, scrollExtent, totalLines int, virtualized bool) int {
	if scrollTop < 0 {
		scrollTop = 0
	}
	var line int
	if virtualized {
		height := t.LineHeight
		if height <= 0 {
			height = 1
		}
		line = scrollTop / height
	} else {
		if scrollExtent <= 0 {
			return 0
		}
		line = scrollTop * totalLines / scrollExtent
	}
	if totalLines > 0 && line >= totalLines {
		line = totalLines - 1
	}
	return line
}
