package midi

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

type TextEncoding int

const (
	// ANSI is any single byte code page where bytes above 127 are extended characters.
	ANSI TextEncoding = iota
	ShiftJIS
)

func (e TextEncoding) String() string {
	switch e {
	case ShiftJIS:
		return "Shift-JIS"
	default:
		return "ANSI"
	}
}

var (
	tagPrefix = []byte("{@")
	tagLatin  = []byte("{@LATIN}")
	tagJP     = []byte("{@JP}")
)

// ClassifyText counts codepoints in text and the number of bytes the same
// text would take as UTF-8, without transcoding it.
func ClassifyText(text []byte, enc TextEncoding) (codepoints, utf8Bytes int) {
	if enc == ShiftJIS {
		for i := 0; i < len(text); i++ {
			switch text[i] >> 5 {
			case 5, 6: // half-width katakana
				codepoints++
				utf8Bytes += 3
			case 4, 7: // lead byte, the trail byte is skipped
				codepoints++
				utf8Bytes += 3
				i++
			default:
				codepoints++
				utf8Bytes++
			}
		}
		return codepoints, utf8Bytes
	}

	codepoints = len(text)
	for _, b := range text {
		if b > 127 {
			utf8Bytes += 2
		} else {
			utf8Bytes++
		}
	}
	return codepoints, utf8Bytes
}

// encodingTag inspects the start of a text event payload for a {@LATIN} or
// {@JP} tag. tagged reports whether the payload starts with "{@" at all; ok
// is false when the tag was not recognized.
func encodingTag(payload []byte) (enc TextEncoding, tagged, ok bool) {
	if !bytes.HasPrefix(payload, tagPrefix) {
		return ANSI, false, false
	}

	switch {
	case hasPrefixFold(payload, tagLatin):
		return ANSI, true, true
	case hasPrefixFold(payload, tagJP):
		return ShiftJIS, true, true
	}
	return ANSI, true, false
}

func hasPrefixFold(b, prefix []byte) bool {
	return len(b) >= len(prefix) && bytes.EqualFold(b[:len(prefix)], prefix)
}

// DisplayText converts text to a UTF-8 string for diagnostics. Bytes that do
// not decode are replaced rather than reported.
func DisplayText(text []byte, enc TextEncoding) string {
	var dec *encoding.Decoder
	if enc == ShiftJIS {
		dec = japanese.ShiftJIS.NewDecoder()
	} else {
		dec = charmap.Windows1252.NewDecoder()
	}

	s, err := dec.Bytes(text)
	if err != nil {
		return string(bytes.ToValidUTF8(text, []byte("\uFFFD")))
	}
	return string(s)
}
