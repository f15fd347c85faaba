// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"bytes"
	"encoding/binary"
	"math"
)

// cursor is an advancing read head over a byte buffer. It never seeks
// backward; every decoder in this package consumes the buffer strictly
// left to right, mirroring the single-pass assembly contract in spec.md §5.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// offset reports the cursor's current byte position, used to annotate
// errors with "the offending offset" per spec.md §6/§7.
func (c *cursor) offset() int {
	return c.pos
}

func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

func (c *cursor) need(n int) error {
	if n < 0 || c.remaining() < n {
		return wrapAt(ErrUnexpectedEOF, c.pos)
	}
	return nil
}

func (c *cursor) readU8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) readU16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) readU32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) readU64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.data[c.pos:])
	c.pos += 8
	return v, nil
}

// readF64 reads an IEEE-754 double, used by the BlendModeAndOpacity TLV
// record and Color rendition bodies.
func (c *cursor) readF64() (float64, error) {
	bits, err := c.readU64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// readFixedBytes reads exactly n bytes and returns a copy, so the returned
// slice stays valid independent of the source buffer's lifetime.
func (c *cursor) readFixedBytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.data[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

// readPaddedString reads exactly width bytes and yields the substring up
// to the first NUL; the remainder (including the NUL) is consumed and
// discarded, per spec.md §4.1.
func (c *cursor) readPaddedString(width int) (string, error) {
	if err := c.need(width); err != nil {
		return "", err
	}
	slot := c.data[c.pos : c.pos+width]
	c.pos += width
	if n := bytes.IndexByte(slot, 0); n >= 0 {
		return string(slot[:n]), nil
	}
	return string(slot), nil
}
