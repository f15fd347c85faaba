// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeyFormatRoundTrips(t *testing.T) {
	data := newBufBuilder().
		u32(magicKeyFormat).
		u32(0). // version
		u32(2). // count
		u32(uint32(AttributeIdiom)).
		u32(uint32(AttributeIdentifier)).
		bytesOf()
	c := newCursor(data)

	kf, err := decodeKeyFormat(c)
	require.NoError(t, err)
	assert.Equal(t, KeyFormat{AttributeIdiom, AttributeIdentifier}, kf)
}

func TestDecodeKeyFormatRejectsBadMagic(t *testing.T) {
	data := newBufBuilder().u32(0).bytesOf()
	c := newCursor(data)

	_, err := decodeKeyFormat(c)
	require.Error(t, err)
	var mm *MagicMismatchError
	require.ErrorAs(t, err, &mm)
}

func TestDecodeKeyFormatRejectsEmpty(t *testing.T) {
	data := newBufBuilder().u32(magicKeyFormat).u32(0).u32(0).bytesOf()
	c := newCursor(data)

	_, err := decodeKeyFormat(c)
	require.Error(t, err)
	var inv *InvariantViolationError
	require.ErrorAs(t, err, &inv)
}

func TestDecodeKeyFormatRejectsDuplicateKind(t *testing.T) {
	data := newBufBuilder().
		u32(magicKeyFormat).
		u32(0).
		u32(2).
		u32(uint32(AttributeIdiom)).
		u32(uint32(AttributeIdiom)).
		bytesOf()
	c := newCursor(data)

	_, err := decodeKeyFormat(c)
	require.Error(t, err)
	var inv *InvariantViolationError
	require.ErrorAs(t, err, &inv)
}

func TestDecodeKeyFormatRejectsOutOfRangeCode(t *testing.T) {
	data := newBufBuilder().
		u32(magicKeyFormat).
		u32(0).
		u32(1).
		u32(uint32(attributeKindCount) + 5).
		bytesOf()
	c := newCursor(data)

	_, err := decodeKeyFormat(c)
	require.Error(t, err)
	var nv *NoVariantMatchError
	require.ErrorAs(t, err, &nv)
}

func TestDecodeRenditionKeyFormatRoundTrips(t *testing.T) {
	data := newBufBuilder().
		u32(magicKeyFormat).
		u32(0). // version
		u32(1). // one token
		u16(0). // hotspot x
		u16(0). // hotspot y
		u16(1). // one attribute
		u16(uint16(AttributeIdiom)).
		u16(2). // value
		bytesOf()
	c := newCursor(data)

	err := decodeRenditionKeyFormat(c)
	require.NoError(t, err)
	assert.Equal(t, len(data), c.offset())
}
