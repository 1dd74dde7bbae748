package midi

import "fmt"

// cursor is a read position over a byte buffer that never reads past its end.
type cursor struct {
	buf []byte
	pos int
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) done() bool {
	return c.pos >= len(c.buf)
}

// peek returns the next byte without consuming it.
func (c *cursor) peek() (byte, error) {
	if c.done() {
		return 0, fmt.Errorf("%w - need 1 byte at offset %d", ErrTruncated, c.pos)
	}
	return c.buf[c.pos], nil
}

func (c *cursor) readByte() (byte, error) {
	b, err := c.peek()
	if err != nil {
		return 0, err
	}
	c.pos++
	return b, nil
}

// next returns the following n bytes as a sub-slice of the buffer.
func (c *cursor) next(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, fmt.Errorf("%w - need %d bytes at offset %d, have %d", ErrTruncated, n, c.pos, c.remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	_, err := c.next(n)
	return err
}

func (c *cursor) varLen() (uint32, error) {
	return decodeVarLen(c)
}
