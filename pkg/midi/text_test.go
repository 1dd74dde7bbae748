package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyText(t *testing.T) {
	tests := []struct {
		name       string
		text       []byte
		enc        TextEncoding
		codepoints int
		utf8Bytes  int
	}{
		{"empty", nil, ANSI, 0, 0},
		{"ascii", []byte("Hi"), ANSI, 2, 2},
		{"latin1", []byte{'a', 'b', 0xE9, 'c', 0xFC}, ANSI, 5, 7},
		{"sjis pair and ascii", []byte{0x82, 0x60, 0x41}, ShiftJIS, 2, 4},
		{"sjis half-width katakana", []byte{0xB1, 0xDD}, ShiftJIS, 2, 6},
		{"sjis lead byte 0xE0", []byte{0xE0, 0x40, 'x'}, ShiftJIS, 2, 4},
		{"sjis dangling lead byte", []byte{'a', 0x93}, ShiftJIS, 2, 4},
		{"sjis ascii", []byte("abc"), ShiftJIS, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codepoints, utf8Bytes := ClassifyText(tt.text, tt.enc)
			assert.Equal(t, tt.codepoints, codepoints)
			assert.Equal(t, tt.utf8Bytes, utf8Bytes)
		})
	}
}

func TestEncodingTag(t *testing.T) {
	tests := []struct {
		in     string
		enc    TextEncoding
		tagged bool
		ok     bool
	}{
		{"{@JP}", ShiftJIS, true, true},
		{"{@jp}song", ShiftJIS, true, true},
		{"{@LATIN}", ANSI, true, true},
		{"{@Latin}title", ANSI, true, true},
		{"{@KR}", ANSI, true, false},
		{"{@", ANSI, true, false},
		{"{JP}", ANSI, false, false},
		{"", ANSI, false, false},
	}

	for _, tt := range tests {
		enc, tagged, ok := encodingTag([]byte(tt.in))
		assert.Equal(t, tt.tagged, tagged, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.enc, enc, tt.in)
		}
	}
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "café", DisplayText([]byte{'c', 'a', 'f', 0xE9}, ANSI))
	assert.Equal(t, "Ａ", DisplayText([]byte{0x82, 0x60}, ShiftJIS))
	assert.Equal(t, "ｱ", DisplayText([]byte{0xB1}, ShiftJIS))
}
