package document

import (
	"context"
	"errors"
	"testing"

	"github.com/kk-code-lab/rview/internal/encdetect"
)

func decodeString(t *testing.T, data []byte, opts DecodeOptions) *Document {
	t.Helper()
	doc, err := Decode(context.Background(), data, opts)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return doc
}

func TestDecodeDetectsUTF8(t *testing.T) {
	doc := decodeString(t, []byte("hello\nworld\n"), DecodeOptions{})
	if doc.Encoding != encdetect.UTF8 {
		t.Fatalf("encoding = %s, want UTF-8", doc.Encoding)
	}
	if doc.Text != "hello\nworld\n" {
		t.Fatalf("text = %q", doc.Text)
	}
	if doc.ByteSize != 12 {
		t.Fatalf("byteSize = %d", doc.ByteSize)
	}
}

func TestDecodeStripsUTF8BOM(t *testing.T) {
	doc := decodeString(t, []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, DecodeOptions{})
	if doc.Text != "hi" {
		t.Fatalf("text = %q, want BOM stripped", doc.Text)
	}
}

func TestDecodeUTF16LE(t *testing.T) {
	// BOM + "ok"
	data := []byte{0xFF, 0xFE, 'o', 0x00, 'k', 0x00}
	doc := decodeString(t, data, DecodeOptions{})
	if doc.Encoding != encdetect.UTF16LE {
		t.Fatalf("encoding = %s, want UTF-16LE", doc.Encoding)
	}
	if doc.Text != "ok" {
		t.Fatalf("text = %q", doc.Text)
	}
}

func TestDecodeEUCKR(t *testing.T) {
	// 가나 in EUC-KR.
	data := []byte{0xB0, 0xA1, 0xB3, 0xAA}
	doc := decodeString(t, data, DecodeOptions{})
	if doc.Encoding != encdetect.EUCKR {
		t.Fatalf("encoding = %s, want EUC-KR", doc.Encoding)
	}
	if doc.Text != "가나" {
		t.Fatalf("text = %q, want 가나", doc.Text)
	}
}

func TestDecodeEncodingOverride(t *testing.T) {
	enc := encdetect.ISO8859_1
	doc := decodeString(t, []byte{'a', 0xE9}, DecodeOptions{Encoding: &enc})
	if doc.Text != "aé" {
		t.Fatalf("text = %q, want aé", doc.Text)
	}
	if doc.Encoding != encdetect.ISO8859_1 {
		t.Fatalf("encoding = %s", doc.Encoding)
	}
}

func TestLineIndex(t *testing.T) {
	doc := decodeString(t, []byte("one\ntwo\r\n\nfour"), DecodeOptions{})
	if got := doc.LineCount(); got != 4 {
		t.Fatalf("lineCount = %d, want 4", got)
	}
	want := []string{"one", "two", "", "four"}
	for i, w := range want {
		if got := doc.Line(i); got != w {
			t.Fatalf("line %d = %q, want %q", i, got, w)
		}
	}
	if doc.Line(-1) != "" || doc.Line(99) != "" {
		t.Fatal("out-of-range lines should be empty")
	}
}

func TestLineIndexInvariants(t *testing.T) {
	texts := []string{"", "a", "a\n", "\n\n\n", "x\ny\nz", "trailing\n"}
	for _, text := range texts {
		doc := decodeString(t, []byte(text), DecodeOptions{})
		offsets := doc.lineOffsets
		if offsets[0] != 0 {
			t.Fatalf("%q: first offset = %d", text, offsets[0])
		}
		if offsets[len(offsets)-1] != len(text) {
			t.Fatalf("%q: sentinel = %d, want %d", text, offsets[len(offsets)-1], len(text))
		}
		for i := 1; i < len(offsets); i++ {
			if offsets[i] < offsets[i-1] {
				t.Fatalf("%q: offsets decrease at %d", text, i)
			}
		}
	}
}

func TestLineAt(t *testing.T) {
	doc := decodeString(t, []byte("ab\ncd\nef"), DecodeOptions{})
	cases := []struct{ offset, line int }{
		{0, 0}, {1, 0}, {2, 0}, {3, 1}, {5, 1}, {6, 2}, {7, 2}, {100, 2}, {-1, 0},
	}
	for _, tc := range cases {
		if got := doc.LineAt(tc.offset); got != tc.line {
			t.Fatalf("LineAt(%d) = %d, want %d", tc.offset, got, tc.line)
		}
	}
}

func TestEmptyDocumentHasOneLine(t *testing.T) {
	doc := decodeString(t, nil, DecodeOptions{})
	if doc.LineCount() != 1 {
		t.Fatalf("lineCount = %d, want 1", doc.LineCount())
	}
	if doc.Line(0) != "" {
		t.Fatalf("line 0 = %q", doc.Line(0))
	}
}

func TestLargeFileForcedUTF8(t *testing.T) {
	// Legacy bytes above the threshold still decode as UTF-8.
	data := append([]byte("big "), 0xB0, 0xA1)
	yields := 0
	doc := decodeString(t, data, DecodeOptions{
		LargeFileThreshold: 2,
		Yield: func(context.Context) error {
			yields++
			return nil
		},
	})
	if doc.Encoding != encdetect.UTF8 {
		t.Fatalf("encoding = %s, want forced UTF-8", doc.Encoding)
	}
	// A 6-byte input is a single slice, so no yield fires.
	if yields != 0 {
		t.Fatalf("yields = %d", yields)
	}
}

func TestLargeFileDecodeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Force enough slices that the cancellation check runs.
	data := make([]byte, decodeSliceSize*yieldEverySlices+1)
	_, err := Decode(ctx, data, DecodeOptions{LargeFileThreshold: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSliceCoversLines(t *testing.T) {
	doc := decodeString(t, []byte("a\nbb\nccc\n"), DecodeOptions{})
	if got := doc.Slice(1, 3); got != "bb\nccc\n" {
		t.Fatalf("Slice(1,3) = %q", got)
	}
	if got := doc.Slice(0, doc.LineCount()); got != doc.Text {
		t.Fatalf("full slice = %q", got)
	}
}
