// Package window partitions a document's lines into fixed-size chunks
// and materializes only the sliding subset a viewport needs. Chunk
// extents use an estimated per-line height, so all geometry here is
// approximate and callers must tolerate bounded drift.
package window

import "github.com/kk-code-lab/rview/internal/document"

const (
	DefaultChunkSize      = 1000
	DefaultVisibleChunks  = 3
	DefaultLineHeight     = 20
	DefaultThresholdChars = 100_000
	DefaultThresholdLines = 1_000
)

// Options configures chunk geometry and the activation policy.
type Options struct {
	// ChunkSize is the number of lines per chunk.
	ChunkSize int
	// VisibleChunks is how many chunks steady-state scrolling keeps
	// materialized: the chunks overlapping the viewport plus look-ahead
	// up to this count.
	VisibleChunks int
	// LineHeight is the estimated vertical extent of one line, in
	// whatever unit the presentation layer scrolls by.
	LineHeight int
	// ThresholdChars and ThresholdLines gate virtualization: below both,
	// the whole document stays materialized as a single block.
	ThresholdChars int
	ThresholdLines int
	// ViewportHeight is the visible extent, in LineHeight units, used by
	// Scroll to derive the line range.
	ViewportHeight int
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.VisibleChunks <= 0 {
		o.VisibleChunks = DefaultVisibleChunks
	}
	if o.LineHeight <= 0 {
		o.LineHeight = DefaultLineHeight
	}
	if o.ThresholdChars <= 0 {
		o.ThresholdChars = DefaultThresholdChars
	}
	if o.ThresholdLines <= 0 {
		o.ThresholdLines = DefaultThresholdLines
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = o.LineHeight * 40
	}
	return o
}

// Chunk is a contiguous, disjoint run of lines. Its materialized view is
// the slice of line strings; an unrendered chunk holds none.
type Chunk struct {
	Index     int
	StartLine int
	EndLine   int // exclusive

	rendered bool
	lines    []string
}

// Rendered reports whether the chunk's view is materialized.
func (c *Chunk) Rendered() bool { return c.rendered }

// Lines returns the materialized view, nil when evicted.
func (c *Chunk) Lines() []string { return c.lines }

// LineCount is the number of lines the chunk covers.
func (c *Chunk) LineCount() int { return c.EndLine - c.StartLine }

// State is the virtual scroll engine for one document.
type State struct {
	doc    *document.Document
	opts   Options
	chunks []Chunk
	active bool
}

// Build partitions the document. Virtualization activates only past the
// character or line thresholds; small documents get a single chunk that
// is materialized immediately and never evicted.
func Build(doc *document.Document, opts Options) *State {
	opts = opts.withDefaults()
	s := &State{doc: doc, opts: opts}

	total := doc.LineCount()
	s.active = len(doc.Text) > opts.ThresholdChars || total > opts.ThresholdLines

	if !s.active {
		s.chunks = []Chunk{{Index: 0, StartLine: 0, EndLine: total}}
		s.materialize(0)
		return s
	}

	count := (total + opts.ChunkSize - 1) / opts.ChunkSize
	if count < 1 {
		count = 1
	}
	s.chunks = make([]Chunk, count)
	for i := range s.chunks {
		start := i * opts.ChunkSize
		end := start + opts.ChunkSize
		if end > total {
			end = total
		}
		s.chunks[i] = Chunk{Index: i, StartLine: start, EndLine: end}
	}
	return s
}

// Active reports whether virtualization is in effect.
func (s *State) Active() bool { return s.active }

// Options returns the effective options after defaulting.
func (s *State) Options() Options { return s.opts }

// ChunkCount returns the number of chunks in the partition.
func (s *State) ChunkCount() int { return len(s.chunks) }

// Chunk returns chunk i, or nil when out of range.
func (s *State) Chunk(i int) *Chunk {
	if i < 0 || i >= len(s.chunks) {
		return nil
	}
	return &s.chunks[i]
}

// TotalExtent is the estimated scrollable extent of the whole document.
func (s *State) TotalExtent() int {
	return s.doc.LineCount() * s.opts.LineHeight
}

// ChunkExtent is the estimated vertical extent of chunk i.
func (s *State) ChunkExtent(i int) int {
	c := s.Chunk(i)
	if c == nil {
		return 0
	}
	return c.LineCount() * s.opts.LineHeight
}

// VisibleLines derives the inclusive line range covered by the viewport
// at the given scroll offset.
func (s *State) VisibleLines(scrollOffset int) (start, end int) {
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	start = scrollOffset / s.opts.LineHeight
	span := s.opts.ViewportHeight/s.opts.LineHeight + 1
	end = start + span
	last := s.doc.LineCount() - 1
	if start > last {
		start = last
	}
	if end > last {
		end = last
	}
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return start, end
}

// ChunkRange returns the inclusive chunk indexes overlapping the line
// range [startLine, endLine].
func (s *State) ChunkRange(startLine, endLine int) (int, int) {
	if len(s.chunks) == 0 {
		return 0, 0
	}
	if !s.active {
		return 0, 0
	}
	first := startLine / s.opts.ChunkSize
	last := endLine / s.opts.ChunkSize
	if first < 0 {
		first = 0
	}
	if last >= len(s.chunks) {
		last = len(s.chunks) - 1
	}
	if last < first {
		last = first
	}
	return first, last
}

// Scroll updates the rendered set for a new scroll offset: chunks
// overlapping the visible range are materialized together with
// look-ahead chunks up to VisibleChunks in total, and everything
// outside is evicted. Inactive states are a no-op; the single block
// stays rendered.
func (s *State) Scroll(offset int) (startLine, endLine int) {
	startLine, endLine = s.VisibleLines(offset)
	if !s.active {
		return startLine, endLine
	}
	first, last := s.ChunkRange(startLine, endLine)
	for last-first+1 < s.opts.VisibleChunks && last < len(s.chunks)-1 {
		last++
	}
	s.EvictOutside(first, last)
	for i := first; i <= last; i++ {
		s.materialize(i)
	}
	return startLine, endLine
}

// RenderRange materializes every chunk overlapping [startLine, endLine].
// Re-rendering an already rendered chunk is a no-op.
func (s *State) RenderRange(startLine, endLine int) {
	first, last := s.ChunkRange(startLine, endLine)
	for i := first; i <= last; i++ {
		s.materialize(i)
	}
}

// EvictOutside discards the views of rendered chunks outside
// [startChunk, endChunk]. Re-evicting is a no-op. The single block of an
// inactive state is never evicted.
func (s *State) EvictOutside(startChunk, endChunk int) {
	if !s.active {
		return
	}
	for i := range s.chunks {
		if i >= startChunk && i <= endChunk {
			continue
		}
		c := &s.chunks[i]
		if c.rendered {
			c.rendered = false
			c.lines = nil
		}
	}
}

// EvictAll discards every materialized view, used when a presentation
// mode settles before handing over.
func (s *State) EvictAll() {
	if !s.active {
		return
	}
	s.EvictOutside(-1, -2)
}

// RenderedChunks lists the indexes of currently materialized chunks.
func (s *State) RenderedChunks() []int {
	var out []int
	for i := range s.chunks {
		if s.chunks[i].rendered {
			out = append(out, i)
		}
	}
	return out
}

// Line returns line i from its covering chunk, materializing it on
// demand.
func (s *State) Line(i int) string {
	if i < 0 || i >= s.doc.LineCount() {
		return ""
	}
	idx := 0
	if s.active {
		idx = i / s.opts.ChunkSize
	}
	s.materialize(idx)
	c := &s.chunks[idx]
	return c.lines[i-c.StartLine]
}

func (s *State) materialize(i int) {
	if i < 0 || i >= len(s.chunks) {
		return
	}
	c := &s.chunks[i]
	if c.rendered {
		return
	}
	c.lines = s.doc.Lines(c.StartLine, c.EndLine)
	c.rendered = true
}
