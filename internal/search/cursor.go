package search

// Cursor walks a match sequence with wraparound. An empty sequence has
// no position and navigation is a no-op.
type Cursor struct {
	matches []Match
	index   int
}

// NewCursor positions on the first match, or on none when the sequence
// is empty.
func NewCursor(matches []Match) *Cursor {
	c := &Cursor{matches: matches, index: -1}
	if len(matches) > 0 {
		c.index = 0
	}
	return c
}

// Len is the number of matches.
func (c *Cursor) Len() int { return len(c.matches) }

// Index is the current position, -1 when there is none.
func (c *Cursor) Index() int { return c.index }

// Current returns the match under the cursor.
func (c *Cursor) Current() (Match, bool) {
	if c.index < 0 || c.index >= len(c.matches) {
		return Match{}, false
	}
	return c.matches[c.index], true
}

// Next advances with wraparound and returns the new current match.
func (c *Cursor) Next() (Match, bool) {
	if len(c.matches) == 0 {
		return Match{}, false
	}
	c.index = (c.index + 1) % len(c.matches)
	return c.matches[c.index], true
}

// Previous steps back with wraparound and returns the new current match.
func (c *Cursor) Previous() (Match, bool) {
	if len(c.matches) == 0 {
		return Match{}, false
	}
	if c.index <= 0 {
		c.index = len(c.matches) - 1
	} else {
		c.index--
	}
	return c.matches[c.index], true
}
