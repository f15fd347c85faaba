// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyOrder is the shared key-format used across the hand-built fixture
// catalog: Idiom, State, Value, Identifier, Scale, matching the attributes
// the "MyText"/"Timac@3x.png" seed scenarios project.
var keyOrder = []AttributeKind{AttributeIdiom, AttributeState, AttributeValue, AttributeIdentifier, AttributeScale}

func buildMinimalCatalog(digestPattern []byte) []byte {
	id := uuid.New()

	b := newBufBuilder()
	// (a) header
	b.u32(magicCarHeader).
		u32(498). // CoreUIVersion
		u32(15).  // StorageVersion
		u32(1539543253).
		u32(1). // rendition_count
		padded("", 128).
		padded("", 256).
		bytes(id[:]).
		u32(0).
		u32(2). // SchemaVersion
		u32(0).
		u32(0)

	// (c) key-format: "tmfk", version, count, N attribute kind codes
	b.u32(magicKeyFormat).u32(0).u32(uint32(len(keyOrder)))
	for _, kind := range keyOrder {
		b.u32(uint32(kind))
	}

	// (d) facet table: one facet "MyText" with key [universal, normal, off, 37430, 1x]
	facetName := "MyText"
	b.u32(1).
		u16(uint16(len(facetName))).
		bytes([]byte(facetName)).
		u16(uint16(len(keyOrder))).
		u16(uint16(IdiomUniversal)).
		u16(0).
		u16(0).
		u16(37430).
		u16(uint16(ScaleX1))

	// rendition-key-format ("tmfk" again), zero tokens
	b.u32(magicKeyFormat).u32(0).u32(0)

	// (e) rendition table: one entry, same raw key as the facet
	body := newBufBuilder().
		u32(uint32(renditionBodyTagRawData)).
		u32(14).
		bytes([]byte("aaaaaaaaaaaaaa")).
		bytesOf()

	b.u16(uint16(len(keyOrder))).
		u16(uint16(IdiomUniversal)).
		u16(0).
		u16(0).
		u16(37430).
		u16(uint16(ScaleX1))

	b.u32(magicCSIHeader).
		u32(1). // version
		u32(0). // rendition flags
		u32(0). // width
		u32(0). // height
		u32(uint32(ScaleX1)).
		u32(uint32(PixelFormatNone)).
		u32(uint32(ColorSpaceSRGB)).
		u32(0).                  // mod time
		u16(uint16(LayoutData)). // layout
		u16(0).                  // reserved
		padded("MyText", 128).
		u32(0). // TLVLength
		u32(0). // Unknown
		u32(0). // Zero
		u32(uint32(len(body))).
		bytes(body)

	// (f) digest table
	b.u32(1).
		u16(uint16(len(keyOrder))).
		u16(uint16(IdiomUniversal)).
		u16(0).
		u16(0).
		u16(37430).
		u16(uint16(ScaleX1)).
		bytes(digestPattern)

	return b.bytesOf()
}

func sequentialDigest() []byte {
	d := make([]byte, digestSize)
	for i := range d {
		d[i] = byte(i)
	}
	return d
}

func TestParseMinimalCatalogEndToEnd(t *testing.T) {
	data := buildMinimalCatalog(sequentialDigest())

	cat, err := Parse(data, nil)
	require.NoError(t, err)
	require.Len(t, cat.Assets, 1)
	assert.Equal(t, uint32(498), cat.Header.CoreUIVersion)
	assert.Equal(t, uint32(2), cat.Header.SchemaVersion)
	assert.Empty(t, cat.Anomalies)

	asset := cat.Assets[0]
	assert.Equal(t, "MyText", asset.Name)
	assert.True(t, asset.Digest.present)

	raw, err := json.Marshal(asset.projectJSON())
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "Data", decoded["AssetType"])
	assert.Equal(t, "uncompressed", decoded["Compression"])
	assert.Equal(t, float64(14), decoded["Data Length"])
	assert.Equal(t, "universal", decoded["Idiom"])
	assert.Equal(t, "MyText", decoded["Name"])
	assert.Equal(t, float64(37430), decoded["NameIdentifier"])
	assert.Equal(t, float64(1), decoded["Scale"])
	assert.Equal(t, "000102030405060708090A0B0C0D0E0F101112131415161718191A1B1C1D1E1F", decoded["SHA1Digest"])
	assert.Equal(t, float64(206), decoded["SizeOnDisk"])
	assert.Equal(t, "Normal", decoded["State"])
	assert.Equal(t, "UTI-Unknown", decoded["UTI"])
	assert.Equal(t, "Off", decoded["Value"])
}

func TestDecodeKeyFormatMatchesExpectedOrder(t *testing.T) {
	data := buildMinimalCatalog(sequentialDigest())
	cat, err := Parse(data, nil)
	require.NoError(t, err)

	if diff := cmp.Diff(keyOrder, []AttributeKind(cat.KeyFormat)); diff != "" {
		t.Errorf("key format mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMinimalCatalogWithoutDigestTableYieldsEmptyDigest(t *testing.T) {
	data := buildMinimalCatalog(sequentialDigest())
	// Drop everything from the digest table's count field onward.
	withoutDigests := data[:len(data)-(4+2+2*len(keyOrder)+digestSize)]

	cat, err := Parse(withoutDigests, nil)
	require.NoError(t, err)
	require.Len(t, cat.Assets, 1)
	assert.False(t, cat.Assets[0].Digest.present)
	assert.Equal(t, "", hexDigest(cat.Assets[0].Digest.digest, cat.Assets[0].Digest.present))
}

func TestParseUnknownTLVTagIsPreservedAsAnomalyNotError(t *testing.T) {
	data := buildMinimalCatalog(sequentialDigest())

	// Splice a synthetic TLV record (tag 0xDEADBEEF) into the rendition's
	// TLV sidecar: rebuild with TLVLength > 0.
	tlv := newBufBuilder().u32(0xDEADBEEF).u32(4).bytes([]byte{1, 2, 3, 4}).bytesOf()
	patched := patchCSITLV(tlv)

	cat, err := Parse(patched, nil)
	require.NoError(t, err)
	require.Len(t, cat.Assets, 1)
	require.Len(t, cat.Assets[0].CSI.Properties, 1)
	assert.True(t, cat.Assets[0].CSI.Properties[0].IsUnknown())
	assert.Equal(t, []byte{1, 2, 3, 4}, cat.Assets[0].CSI.Properties[0].Unknown)
	require.Len(t, cat.Anomalies, 1)
	assert.Contains(t, cat.Anomalies[0], AnoUnknownTLVTag)
}

func TestParseUnknownTLVTagRejectedUnderStrictMode(t *testing.T) {
	data := buildMinimalCatalog(sequentialDigest())
	tlv := newBufBuilder().u32(0xDEADBEEF).u32(4).bytes([]byte{1, 2, 3, 4}).bytesOf()
	patched := patchCSITLV(tlv)

	_, err := Parse(patched, &Options{StrictUnknownAttributes: true})
	require.Error(t, err)
	var inv *InvariantViolationError
	require.ErrorAs(t, err, &inv)
}

// patchCSITLV rebuilds the fixture catalog produced by buildMinimalCatalog
// with a non-empty TLV sidecar of tlv bytes spliced into the CSI header,
// bumping BitmapList.TLVLength accordingly. It reconstructs from scratch
// rather than splicing raw bytes, since every downstream length field
// (RenditionLength's absolute position, digest-table layout) must stay
// consistent.
func patchCSITLV(tlv []byte) []byte {
	id := uuid.New()
	b := newBufBuilder()
	b.u32(magicCarHeader).
		u32(498).
		u32(15).
		u32(1539543253).
		u32(1).
		padded("", 128).
		padded("", 256).
		bytes(id[:]).
		u32(0).
		u32(2).
		u32(0).
		u32(0)

	b.u32(magicKeyFormat).u32(0).u32(uint32(len(keyOrder)))
	for _, kind := range keyOrder {
		b.u32(uint32(kind))
	}

	facetName := "MyText"
	b.u32(1).
		u16(uint16(len(facetName))).
		bytes([]byte(facetName)).
		u16(uint16(len(keyOrder))).
		u16(uint16(IdiomUniversal)).
		u16(0).
		u16(0).
		u16(37430).
		u16(uint16(ScaleX1))

	b.u32(magicKeyFormat).u32(0).u32(0)

	body := newBufBuilder().
		u32(uint32(renditionBodyTagRawData)).
		u32(14).
		bytes([]byte("aaaaaaaaaaaaaa")).
		bytesOf()

	b.u16(uint16(len(keyOrder))).
		u16(uint16(IdiomUniversal)).
		u16(0).
		u16(0).
		u16(37430).
		u16(uint16(ScaleX1))

	b.u32(magicCSIHeader).
		u32(1).
		u32(0).
		u32(0).
		u32(0).
		u32(uint32(ScaleX1)).
		u32(uint32(PixelFormatNone)).
		u32(uint32(ColorSpaceSRGB)).
		u32(0).
		u16(uint16(LayoutData)).
		u16(0).
		padded("MyText", 128).
		u32(uint32(len(tlv))).
		u32(0).
		u32(0).
		u32(uint32(len(body))).
		bytes(tlv).
		bytes(body)

	b.u32(1).
		u16(uint16(len(keyOrder))).
		u16(uint16(IdiomUniversal)).
		u16(0).
		u16(0).
		u16(37430).
		u16(uint16(ScaleX1)).
		bytes(sequentialDigest())

	return b.bytesOf()
}

func TestParseTruncatedMidCSIHeaderYieldsUnexpectedEOF(t *testing.T) {
	data := buildMinimalCatalog(sequentialDigest())
	// Drop the whole (48-byte) digest table and the tail 12 bytes of the
	// 22-byte rendition body, landing the cut inside decodeCSIHeader's
	// trailing body read rather than at the very end of the buffer.
	const digestTableBytes = 4 + 2 + 2*5 + digestSize
	truncated := data[:len(data)-(digestTableBytes+12)]

	_, err := Parse(truncated, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedEOF))
}

func TestParseRejectsBadHeaderMagic(t *testing.T) {
	data := buildMinimalCatalog(sequentialDigest())
	data[0] ^= 0xFF

	_, err := Parse(data, nil)
	require.Error(t, err)
	var mm *MagicMismatchError
	require.ErrorAs(t, err, &mm)
}

func FuzzParse(f *testing.F) {
	f.Add(buildMinimalCatalog(sequentialDigest()))
	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Parse panicked: %v", r)
			}
		}()
		_, _ = Parse(data, nil)
	})
}
