// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFacetTableRoundTrips(t *testing.T) {
	name := "MyText"
	data := newBufBuilder().
		u32(1). // count
		u16(uint16(len(name))).
		bytes([]byte(name)).
		u16(2). // key length
		u16(1).
		u16(37430).
		bytesOf()
	c := newCursor(data)

	entries, err := decodeFacetTable(c, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "MyText", entries[0].Name)
	assert.Equal(t, []uint16{1, 37430}, entries[0].RawKey)
}

func TestDecodeFacetTableRejectsArityMismatch(t *testing.T) {
	data := newBufBuilder().
		u32(1).
		u16(0).
		u16(3). // declares 3 but catalog key-format length is 2
		u16(1).
		u16(2).
		u16(3).
		bytesOf()
	c := newCursor(data)

	_, err := decodeFacetTable(c, 2)
	require.Error(t, err)
	var arity *KeyArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 2, arity.Expected)
	assert.Equal(t, 3, arity.Found)
}
