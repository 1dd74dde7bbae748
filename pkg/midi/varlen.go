package midi

import "fmt"

// DecodeVarLen decodes a variable-length quantity from the start of buf and
// returns the value and the number of bytes it occupied.
func DecodeVarLen(buf []byte) (uint32, int, error) {
	c := newCursor(buf)
	x, err := decodeVarLen(c)
	if err != nil {
		return 0, 0, err
	}
	return x, c.pos, nil
}

func decodeVarLen(c *cursor) (x uint32, err error) {
	start := c.pos

	for {
		var b byte
		if b, err = c.readByte(); err != nil {
			return 0, err
		}

		if x>>25 != 0 {
			return 0, fmt.Errorf("%w - variable length quantity at offset %d overflows 32 bits", ErrMalformedStream, start)
		}

		x = x<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return x, nil
		}
	}
}
