// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// renditionBodyTag is the internal discriminator carried at the front of a
// rendition payload. Unlike every other tagged structure in this format,
// the CSI header does not itself carry the selecting tag for its body
// (spec.md §3: "The selecting tag is present in the payload itself, not in
// the CSI header") — it is this leading word.
type renditionBodyTag uint32

const (
	renditionBodyTagRawData           renditionBodyTag = 1
	renditionBodyTagColor             renditionBodyTag = 2
	renditionBodyTagTheme             renditionBodyTag = 9
	renditionBodyTagMultisizeImageSet renditionBodyTag = 14
)

// CompressionType is the closed set of rendition payload compression
// schemes a Theme body may declare.
type CompressionType uint32

const (
	CompressionUncompressed CompressionType = 0
	CompressionRLE          CompressionType = 1
	CompressionZip          CompressionType = 2
	CompressionLZVN         CompressionType = 3
	CompressionLZFSE        CompressionType = 4
	CompressionJPEGLZFSE    CompressionType = 5
	CompressionBlurred      CompressionType = 6
	CompressionPaletteImg   CompressionType = 7
	CompressionASTC         CompressionType = 8
	CompressionPVRTC        CompressionType = 9
)

func (c CompressionType) String() string {
	switch c {
	case CompressionUncompressed:
		return "uncompressed"
	case CompressionRLE:
		return "rle"
	case CompressionZip:
		return "zip"
	case CompressionLZVN:
		return "lzvn"
	case CompressionLZFSE:
		return "lzfse"
	case CompressionJPEGLZFSE:
		return "jpeg-lzfse"
	case CompressionBlurred:
		return "blurred"
	case CompressionPaletteImg:
		return "palette-img"
	case CompressionASTC:
		return "astc"
	case CompressionPVRTC:
		return "pvrtc"
	default:
		return "unknown"
	}
}

// RenditionBody is the tagged union of per-kind rendition payloads
// (spec.md §3). Exactly one of RawData, Color, Theme, MultisizeImage is
// non-nil unless Unknown is set.
type RenditionBody struct {
	RawData       *RawDataBody
	Color         *ColorBody
	Theme         *ThemeBody
	MultisizeImage *MultisizeImageSetBody
	Unknown       []byte
}

// RawDataBody is an opaque byte payload carried verbatim (spec.md §3:
// "RawData { length, bytes }").
type RawDataBody struct {
	Length uint32
	Bytes  []byte
}

// ColorBody is a flat-color rendition: a fixed component count and that
// many IEEE-754 components (spec.md §3).
type ColorBody struct {
	ComponentCount uint32
	Components     []float64
}

// ThemeBody is a compressed image payload (spec.md §3: "Theme {
// compression_type, payload }").
type ThemeBody struct {
	CompressionType CompressionType
	Payload         []byte
}

// Decompress returns the theme payload's decompressed bytes when the
// declared compression scheme is one this reader understands (zlib-style
// Zip only); for every other scheme the raw payload is returned unchanged,
// since this reader's job is structural decoding, not full codec support.
func (t ThemeBody) Decompress() ([]byte, error) {
	if t.CompressionType != CompressionZip {
		return t.Payload, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(t.Payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// MultisizeImageSetEntry is one sized member of a MultisizeImageSet body.
type MultisizeImageSetEntry struct {
	Width, Height uint32
	Bytes         []byte
}

// MultisizeImageSetBody carries a sequence of per-size image entries
// (spec.md §3: "MultisizeImageSet { entries }").
type MultisizeImageSetBody struct {
	Entries []MultisizeImageSetEntry
}

// decodeRenditionBody dispatches on the leading tag word of a rendition
// payload into the closed RenditionBody union (C4, spec.md §3/§4.4). An
// unrecognized tag is not a parse error: it decodes to the Unknown
// variant holding the entire undecoded payload, including its own tag
// word, matching the TLV decoder's forward-compatibility policy.
func decodeRenditionBody(data []byte) (RenditionBody, error) {
	c := newCursor(data)
	if c.remaining() < 4 {
		return RenditionBody{Unknown: append([]byte(nil), data...)}, nil
	}
	rawTag, err := c.readU32()
	if err != nil {
		return RenditionBody{}, err
	}

	switch renditionBodyTag(rawTag) {
	case renditionBodyTagRawData:
		length, err := c.readU32()
		if err != nil {
			return RenditionBody{}, err
		}
		raw, err := c.readFixedBytes(int(length))
		if err != nil {
			return RenditionBody{}, err
		}
		return RenditionBody{RawData: &RawDataBody{Length: length, Bytes: raw}}, nil

	case renditionBodyTagColor:
		count, err := c.readU32()
		if err != nil {
			return RenditionBody{}, err
		}
		components := make([]float64, count)
		for i := range components {
			if components[i], err = c.readF64(); err != nil {
				return RenditionBody{}, err
			}
		}
		return RenditionBody{Color: &ColorBody{ComponentCount: count, Components: components}}, nil

	case renditionBodyTagTheme:
		rawCompression, err := c.readU32()
		if err != nil {
			return RenditionBody{}, err
		}
		payloadLen, err := c.readU32()
		if err != nil {
			return RenditionBody{}, err
		}
		payload, err := c.readFixedBytes(int(payloadLen))
		if err != nil {
			return RenditionBody{}, err
		}
		return RenditionBody{Theme: &ThemeBody{CompressionType: CompressionType(rawCompression), Payload: payload}}, nil

	case renditionBodyTagMultisizeImageSet:
		count, err := c.readU32()
		if err != nil {
			return RenditionBody{}, err
		}
		entries := make([]MultisizeImageSetEntry, count)
		for i := range entries {
			width, err := c.readU32()
			if err != nil {
				return RenditionBody{}, err
			}
			height, err := c.readU32()
			if err != nil {
				return RenditionBody{}, err
			}
			n, err := c.readU32()
			if err != nil {
				return RenditionBody{}, err
			}
			entryBytes, err := c.readFixedBytes(int(n))
			if err != nil {
				return RenditionBody{}, err
			}
			entries[i] = MultisizeImageSetEntry{Width: width, Height: height, Bytes: entryBytes}
		}
		return RenditionBody{MultisizeImage: &MultisizeImageSetBody{Entries: entries}}, nil

	default:
		return RenditionBody{Unknown: append([]byte(nil), data...)}, nil
	}
}

// Idiom is the closed set of device form factors a rendition key's Idiom
// attribute may name.
type Idiom uint16

const (
	IdiomUniversal Idiom = 0
	IdiomPhone     Idiom = 1
	IdiomPad       Idiom = 2
	IdiomTV        Idiom = 3
	IdiomCar       Idiom = 4
	IdiomWatch     Idiom = 5
	IdiomMarketing Idiom = 6
	IdiomMac       Idiom = 7
)

var idiomNames = map[Idiom]string{
	IdiomUniversal: "universal",
	IdiomPhone:     "phone",
	IdiomPad:       "pad",
	IdiomTV:        "tv",
	IdiomCar:       "car",
	IdiomWatch:     "watch",
	IdiomMarketing: "marketing",
	IdiomMac:       "mac",
}

// idiomFromRaw maps a raw Idiom attribute value, returning ok=false for
// codes outside the known set — per spec.md §4.8 ("if value decodes to a
// known idiom enumeration variant, emit it"), an unknown idiom code is
// simply omitted from the projection rather than being a parse error.
func idiomFromRaw(raw uint16) (Idiom, bool) {
	idiom := Idiom(raw)
	_, ok := idiomNames[idiom]
	return idiom, ok
}

func (i Idiom) String() string {
	if name, ok := idiomNames[i]; ok {
		return name
	}
	return "unknown"
}
