// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"encoding/binary"
	"math"
)

// bufBuilder accumulates little-endian bytes for hand-built fixture
// buffers, mirroring the wire layouts this package's decoders expect.
type bufBuilder struct {
	buf []byte
}

func newBufBuilder() *bufBuilder { return &bufBuilder{} }

func (b *bufBuilder) u8(v uint8) *bufBuilder {
	b.buf = append(b.buf, v)
	return b
}

func (b *bufBuilder) u16(v uint16) *bufBuilder {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *bufBuilder) u32(v uint32) *bufBuilder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *bufBuilder) u64(v uint64) *bufBuilder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *bufBuilder) f64(v float64) *bufBuilder {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *bufBuilder) bytes(raw []byte) *bufBuilder {
	b.buf = append(b.buf, raw...)
	return b
}

// padded writes s NUL-padded to exactly width bytes.
func (b *bufBuilder) padded(s string, width int) *bufBuilder {
	slot := make([]byte, width)
	copy(slot, s)
	b.buf = append(b.buf, slot...)
	return b
}

func (b *bufBuilder) bytesOf() []byte { return b.buf }
