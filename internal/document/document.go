// Package document decodes raw file bytes into indexed, line-addressable
// text. A Document is immutable once built: changing the encoding means
// decoding a replacement, never mutating in place.
package document

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"

	"github.com/kk-code-lab/rview/internal/encdetect"
)

const (
	// DefaultLargeFileThreshold is the byte size above which input is
	// decoded as UTF-8 in slices regardless of detection.
	DefaultLargeFileThreshold = 50 << 20

	decodeSliceSize  = 1 << 20
	yieldEverySlices = 10
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeOptions configures a single Decode call.
type DecodeOptions struct {
	// Encoding overrides detection when non-nil.
	Encoding *encdetect.Encoding
	// LargeFileThreshold defaults to DefaultLargeFileThreshold; inputs
	// above it take the sliced UTF-8 path.
	LargeFileThreshold int
	// Yield, when set, is invoked periodically during a large-file
	// decode so a foreground loop is never starved.
	Yield func(ctx context.Context) error
}

// DecodeError reports a codec-level failure for a specific encoding.
// Recover by retrying with a different explicit encoding.
type DecodeError struct {
	Encoding encdetect.Encoding
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode as %s: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Document owns decoded text and its derived line index.
type Document struct {
	Text     string
	Encoding encdetect.Encoding
	ByteSize int

	// lineOffsets holds the byte offset of each line start plus a
	// len(Text) sentinel. lineOffsets[0] == 0 and values never decrease.
	lineOffsets []int
}

// Decode turns raw bytes into an indexed Document. The line index is
// fully built before Decode returns; callers never observe a partially
// indexed Document.
func Decode(ctx context.Context, data []byte, opts DecodeOptions) (*Document, error) {
	threshold := opts.LargeFileThreshold
	if threshold <= 0 {
		threshold = DefaultLargeFileThreshold
	}

	if len(data) > threshold {
		// Very large inputs skip detection and decode as UTF-8 in
		// slices. Large non-UTF-8 files misrender; see the design notes.
		text, err := decodeLargeUTF8(ctx, data, opts.Yield)
		if err != nil {
			return nil, err
		}
		return newDocument(text, encdetect.UTF8, len(data)), nil
	}

	enc := encdetect.Detect(encdetect.Sample(data))
	if opts.Encoding != nil {
		enc = *opts.Encoding
	}

	text, err := decodeAll(data, enc)
	if err != nil {
		return nil, err
	}
	return newDocument(text, enc, len(data)), nil
}

func newDocument(text string, enc encdetect.Encoding, byteSize int) *Document {
	doc := &Document{
		Text:     text,
		Encoding: enc,
		ByteSize: byteSize,
	}
	doc.lineOffsets = buildLineOffsets(text)
	return doc
}

func decodeAll(data []byte, enc encdetect.Encoding) (string, error) {
	switch enc {
	case encdetect.UTF8:
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	case encdetect.UTF16LE:
		return decodeWith(data, enc, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
	case encdetect.UTF16BE:
		return decodeWith(data, enc, unicode.UTF16(unicode.BigEndian, unicode.UseBOM))
	case encdetect.EUCKR, encdetect.CP949:
		// x/text's EUC-KR table is the Windows-949 superset, so both
		// labels share one codec.
		return decodeWith(data, enc, korean.EUCKR)
	case encdetect.ISO8859_1:
		return decodeWith(data, enc, charmap.ISO8859_1)
	default:
		return "", &DecodeError{Encoding: enc, Err: fmt.Errorf("unsupported encoding")}
	}
}

func decodeWith(data []byte, enc encdetect.Encoding, codec encoding.Encoding) (string, error) {
	out, err := codec.NewDecoder().Bytes(data)
	if err != nil {
		return "", &DecodeError{Encoding: enc, Err: err}
	}
	return string(out), nil
}

// decodeLargeUTF8 assembles the text in fixed slices, checking for
// cancellation and yielding every few slices.
func decodeLargeUTF8(ctx context.Context, data []byte, yield func(context.Context) error) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var builder strings.Builder
	builder.Grow(len(data))

	slices := 0
	for start := 0; start < len(data); start += decodeSliceSize {
		end := start + decodeSliceSize
		if end > len(data) {
			end = len(data)
		}
		builder.Write(data[start:end])

		slices++
		if slices%yieldEverySlices == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			if yield != nil {
				if err := yield(ctx); err != nil {
					return "", err
				}
			}
		}
	}
	return builder.String(), nil
}

func buildLineOffsets(text string) []int {
	offsets := make([]int, 1, 16)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return append(offsets, len(text))
}

// LineCount reports the number of lines, at least 1 (an empty document
// has one empty line).
func (d *Document) LineCount() int {
	return len(d.lineOffsets) - 1
}

// Line returns line i without its terminator. Out-of-range indexes
// return the empty string.
func (d *Document) Line(i int) string {
	if i < 0 || i >= d.LineCount() {
		return ""
	}
	line := d.Text[d.lineOffsets[i]:d.lineOffsets[i+1]]
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Lines returns lines [start, end) without terminators, clamped to the
// document.
func (d *Document) Lines(start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > d.LineCount() {
		end = d.LineCount()
	}
	if start >= end {
		return nil
	}
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, d.Line(i))
	}
	return out
}

// LineStart returns the byte offset of line i's first character,
// clamped to [0, len(Text)].
func (d *Document) LineStart(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(d.lineOffsets) {
		return len(d.Text)
	}
	return d.lineOffsets[i]
}

// LineAt returns the index of the line containing the byte offset.
func (d *Document) LineAt(offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(d.Text) {
		return d.LineCount() - 1
	}
	// First line start strictly beyond offset, minus one.
	idx := sort.SearchInts(d.lineOffsets, offset+1) - 1
	if idx < 0 {
		return 0
	}
	if idx >= d.LineCount() {
		return d.LineCount() - 1
	}
	return idx
}

// Slice returns the raw text covering lines [start, end), terminators
// included.
func (d *Document) Slice(start, end int) string {
	return d.Text[d.LineStart(start):d.LineStart(end)]
}
