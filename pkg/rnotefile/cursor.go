package rnotefile

import (
	"encoding/binary"
	"fmt"
)

// byteCursor walks a byte buffer front to back. All multi-byte reads are
// little-endian; this is the container's wire contract.
type byteCursor struct {
	data []byte
	pos  int
}

func newByteCursor(data []byte) *byteCursor {
	return &byteCursor{data: data}
}

// take returns the next n bytes and advances the cursor.
func (c *byteCursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrMalformedStructure, n, c.pos, len(c.data)-c.pos)
	}
	out := c.data[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *byteCursor) takeU16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *byteCursor) takeU32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *byteCursor) takeU64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// rest returns everything after the current position without advancing.
func (c *byteCursor) rest() []byte {
	return c.data[c.pos:]
}
