// Package encdetect classifies byte buffers into text encodings.
//
// Detection is a pure heuristic over a small sample prefix: a BOM check,
// an ASCII fast path, and a scoring pass that weighs EUC-KR Hangul byte
// pairs against structurally valid UTF-8 sequences. Ambiguous high-bit
// input falls back to EUC-KR, the common case for legacy Korean text
// without any self-describing prefix.
package encdetect

// Encoding identifies a supported text encoding.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
	EUCKR
	CP949
	ISO8859_1
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "UTF-8"
	case UTF16LE:
		return "UTF-16LE"
	case UTF16BE:
		return "UTF-16BE"
	case EUCKR:
		return "EUC-KR"
	case CP949:
		return "CP949"
	case ISO8859_1:
		return "ISO-8859-1"
	default:
		return "unknown"
	}
}

// Parse maps an encoding name (as printed by String) back to its label.
func Parse(name string) (Encoding, bool) {
	switch name {
	case "UTF-8", "utf-8", "utf8":
		return UTF8, true
	case "UTF-16LE", "utf-16le":
		return UTF16LE, true
	case "UTF-16BE", "utf-16be":
		return UTF16BE, true
	case "EUC-KR", "euc-kr", "euckr":
		return EUCKR, true
	case "CP949", "cp949":
		return CP949, true
	case "ISO-8859-1", "iso-8859-1", "latin1":
		return ISO8859_1, true
	default:
		return UTF8, false
	}
}

// SampleSize is the number of leading bytes Detect inspects.
const SampleSize = 1024

// Sample clamps a buffer to the detection prefix without copying.
func Sample(data []byte) []byte {
	if len(data) > SampleSize {
		return data[:SampleSize]
	}
	return data
}

// Detect classifies a byte sample into an encoding label. It never
// fails: undecodable or truncated samples still resolve to a label.
// Only UTF8, UTF16LE, UTF16BE, and EUCKR are ever returned; CP949 and
// ISO8859_1 exist for explicit overrides.
func Detect(sample []byte) Encoding {
	sample = Sample(sample)

	if enc, ok := detectBOM(sample); ok {
		return enc
	}

	ascii := true
	for _, b := range sample {
		if b > 0x7F {
			ascii = false
			break
		}
	}
	if ascii {
		return UTF8
	}

	var (
		eucKRScore  int
		utf8Score   int
		validUTF8   int
		invalidUTF8 int
	)

	for i := 0; i < len(sample); {
		b := sample[i]
		if b < 0x80 {
			i++
			continue
		}

		pairScored := false
		if i+1 < len(sample) {
			second := sample[i+1]
			if second >= 0xA1 && second <= 0xFE {
				switch {
				case b >= 0xB0 && b <= 0xC8:
					eucKRScore += 2
					pairScored = true
				case b >= 0xA1 && b <= 0xAC:
					eucKRScore++
					pairScored = true
				}
			}
		}

		if b >= 0xC0 {
			consumed, cp, ok := scanUTF8Sequence(sample, i)
			if ok {
				validUTF8++
				switch {
				case consumed == 3 && cp >= 0xAC00 && cp <= 0xD7AF:
					utf8Score += 3
				case cp >= 0x80:
					utf8Score++
				}
			} else {
				invalidUTF8++
			}
			i += consumed
			continue
		}

		if pairScored {
			i += 2
		} else {
			i++
		}
	}

	switch {
	case validUTF8 > 0 && invalidUTF8 == 0 && utf8Score > 0:
		return UTF8
	case eucKRScore > utf8Score && eucKRScore > 0:
		return EUCKR
	case utf8Score > 0:
		return UTF8
	default:
		// High-bit bytes with no conclusive score: legacy Korean default.
		return EUCKR
	}
}

func detectBOM(sample []byte) (Encoding, bool) {
	if len(sample) >= 3 && sample[0] == 0xEF && sample[1] == 0xBB && sample[2] == 0xBF {
		return UTF8, true
	}
	if len(sample) >= 2 {
		switch {
		case sample[0] == 0xFE && sample[1] == 0xFF:
			return UTF16BE, true
		case sample[0] == 0xFF && sample[1] == 0xFE:
			return UTF16LE, true
		}
	}
	return UTF8, false
}

// scanUTF8Sequence validates the multi-byte sequence starting at i, where
// sample[i] >= 0xC0. It returns the number of bytes consumed (at least 1),
// the decoded code point for well-formed sequences, and whether the
// sequence was well-formed.
func scanUTF8Sequence(sample []byte, i int) (consumed int, cp rune, ok bool) {
	b := sample[i]
	var size int
	switch {
	case b >= 0xC0 && b <= 0xDF:
		size = 2
		cp = rune(b & 0x1F)
	case b >= 0xE0 && b <= 0xEF:
		size = 3
		cp = rune(b & 0x0F)
	case b >= 0xF0 && b <= 0xF7:
		size = 4
		cp = rune(b & 0x07)
	default:
		return 1, 0, false
	}
	if i+size > len(sample) {
		return 1, 0, false
	}
	for j := 1; j < size; j++ {
		c := sample[i+j]
		if c&0xC0 != 0x80 {
			return 1, 0, false
		}
		cp = cp<<6 | rune(c&0x3F)
	}
	return size, cp, true
}
