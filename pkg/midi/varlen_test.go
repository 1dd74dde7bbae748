package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendVarLen(buf []byte, x uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(x & 0x7F)
	for x >>= 7; x > 0; x >>= 7 {
		i--
		tmp[i] = byte(x&0x7F) | 0x80
	}
	return append(buf, tmp[i:]...)
}

func groups(x uint32) int {
	n := 1
	for x >>= 7; x > 0; x >>= 7 {
		n++
	}
	return n
}

func TestDecodeVarLen(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint32
		n    int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x40}, 0x40, 1},
		{[]byte{0x7F}, 0x7F, 1},
		{[]byte{0x81, 0x00}, 0x80, 2},
		{[]byte{0xC0, 0x00}, 0x2000, 2},
		{[]byte{0xFF, 0x7F}, 0x3FFF, 2},
		{[]byte{0x81, 0x80, 0x00}, 0x4000, 3},
		{[]byte{0xFF, 0xFF, 0xFF, 0x7F}, 0x0FFFFFFF, 4},
		{[]byte{0x81, 0x00, 0x55}, 0x80, 2},
	}

	for _, tt := range tests {
		x, n, err := DecodeVarLen(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, x, "% x", tt.in)
		assert.Equal(t, tt.n, n, "% x", tt.in)
	}
}

func TestVarLenRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, 0x0FFFFFFF}
	for x := uint32(0); x < 1<<28; x += 104729 {
		values = append(values, x)
	}

	for _, x := range values {
		buf := appendVarLen(nil, x)
		require.Len(t, buf, groups(x))
		for i, b := range buf {
			if i == len(buf)-1 {
				assert.Zero(t, b&0x80, "last byte of %#x", x)
			} else {
				assert.NotZero(t, b&0x80, "byte %d of %#x", i, x)
			}
		}

		got, n, err := DecodeVarLen(buf)
		require.NoError(t, err)
		assert.Equal(t, x, got)
		assert.Equal(t, len(buf), n)
	}
}

func TestDecodeVarLenTruncated(t *testing.T) {
	for _, in := range [][]byte{nil, {0x80}, {0xFF, 0xFF, 0xFF}} {
		_, _, err := DecodeVarLen(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTruncated), "% x: %v", in, err)
	}
}

func TestDecodeVarLenOverflow(t *testing.T) {
	_, _, err := DecodeVarLen([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedStream), err)

	// 35 bits of leading zeros still fit
	x, n, err := DecodeVarLen([]byte{0x80, 0x80, 0x80, 0x80, 0x81, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint32(0x80), x)
	assert.Equal(t, 6, n)
}
