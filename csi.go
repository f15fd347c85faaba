// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// Scale is the per-rendition display-scale factor, carried on the wire as
// a raw integer (spec.md §3: "0/100/200/300 meaning 1×/1×/2×/3×").
type Scale uint32

const (
	ScaleNone Scale = 0
	ScaleX1   Scale = 100
	ScaleX2   Scale = 200
	ScaleX3   Scale = 300
)

// Factor returns the projected scale multiplier used in the JSON view
// (spec.md §4.8): both None and X1 project as 1.
func (s Scale) Factor() uint32 {
	switch s {
	case ScaleX2:
		return 2
	case ScaleX3:
		return 3
	default:
		return 1
	}
}

func (s Scale) String() string {
	switch s {
	case ScaleX1:
		return "1x"
	case ScaleX2:
		return "2x"
	case ScaleX3:
		return "3x"
	default:
		return "None"
	}
}

// PixelFormat is the closed set of pixel encodings a CSI header declares
// (spec.md §3).
type PixelFormat uint32

const (
	PixelFormatNone PixelFormat = 0x00000000
	PixelFormatARGB PixelFormat = 0x41524742
	PixelFormatData PixelFormat = 0x44415441
	PixelFormatGray PixelFormat = 0x47413820
	PixelFormatJPEG PixelFormat = 0x4A504547
)

// String renders the pixel-format tag the way §4.8's "Encoding" projection
// field expects it.
func (p PixelFormat) String() string {
	switch p {
	case PixelFormatARGB:
		return "ARGB"
	case PixelFormatData:
		return "Data"
	case PixelFormatGray:
		return "Gray"
	case PixelFormatJPEG:
		return "JPEG"
	default:
		return "None"
	}
}

func pixelFormatFromRaw(raw uint32, offset int) (PixelFormat, error) {
	switch PixelFormat(raw) {
	case PixelFormatNone, PixelFormatARGB, PixelFormatData, PixelFormatGray, PixelFormatJPEG:
		return PixelFormat(raw), nil
	default:
		return 0, &NoVariantMatchError{Kind: "PixelFormat", Raw: raw, Offset: offset}
	}
}

// ColorSpace is the closed set of color-space identifiers a CSI header may
// declare.
type ColorSpace uint32

const (
	ColorSpaceSRGB                ColorSpace = 0
	ColorSpaceGrayGamma22         ColorSpace = 1
	ColorSpaceDisplayP3           ColorSpace = 2
	ColorSpaceExtendedRangeSRGB   ColorSpace = 3
	ColorSpaceExtendedLinearSRGB  ColorSpace = 4
	ColorSpaceExtendedGray        ColorSpace = 5
	ColorSpaceUnknown             ColorSpace = 14
)

func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceSRGB:
		return "srgb"
	case ColorSpaceGrayGamma22:
		return "gray gamma 22"
	case ColorSpaceDisplayP3:
		return "p3"
	case ColorSpaceExtendedRangeSRGB:
		return "extended srgb"
	case ColorSpaceExtendedLinearSRGB:
		return "extended linear srgb"
	case ColorSpaceExtendedGray:
		return "extended gray"
	default:
		return "unknown"
	}
}

func colorSpaceFromRaw(raw uint32) ColorSpace {
	switch ColorSpace(raw) {
	case ColorSpaceSRGB, ColorSpaceGrayGamma22, ColorSpaceDisplayP3,
		ColorSpaceExtendedRangeSRGB, ColorSpaceExtendedLinearSRGB, ColorSpaceExtendedGray:
		return ColorSpace(raw)
	default:
		return ColorSpaceUnknown
	}
}

// Layout is the closed set of rendition layout kinds carried in a CSI
// metadata sub-record (spec.md §3).
type Layout uint16

const (
	LayoutTextEffect         Layout = 0x007
	LayoutVector             Layout = 0x009
	LayoutImage              Layout = 0x00C
	LayoutData               Layout = 0x3E8
	LayoutExternalLink       Layout = 0x3E9
	LayoutLayerStack         Layout = 0x3EA
	LayoutInternalReference  Layout = 0x3EB
	LayoutPackedImage        Layout = 0x3EC
	LayoutNameList           Layout = 0x3ED
	LayoutUnknownAddObject   Layout = 0x3EE
	LayoutTexture            Layout = 0x3EF
	LayoutTextureImage       Layout = 0x3F0
	LayoutColor              Layout = 0x3F1
	LayoutMultisizeImage     Layout = 0x3F2
	LayoutLayerReference     Layout = 0x3F4
	LayoutContentRendition   Layout = 0x3F5
	LayoutRecognitionObject  Layout = 0x3F6
)

var layoutNames = map[Layout]string{
	LayoutTextEffect:        "TextEffect",
	LayoutVector:            "Vector",
	LayoutImage:             "Image",
	LayoutData:              "Data",
	LayoutExternalLink:      "ExternalLink",
	LayoutLayerStack:        "LayerStack",
	LayoutInternalReference: "InternalReference",
	LayoutPackedImage:       "PackedImage",
	LayoutNameList:          "NameList",
	LayoutUnknownAddObject:  "UnknownAddObject",
	LayoutTexture:           "Texture",
	LayoutTextureImage:      "TextureImage",
	LayoutColor:             "Color",
	LayoutMultisizeImage:    "MultisizeImage",
	LayoutLayerReference:    "LayerReference",
	LayoutContentRendition:  "ContentRendition",
	LayoutRecognitionObject: "RecognitionObject",
}

func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return "Unknown"
}

func layoutFromRaw(raw uint16, offset int) (Layout, error) {
	if _, ok := layoutNames[Layout(raw)]; !ok {
		return 0, &NoVariantMatchError{Kind: "Layout", Raw: uint32(raw), Offset: offset}
	}
	return Layout(raw), nil
}

// CSIMetadata is the CSI header's metadata sub-record: a modification
// time, a layout tag, and a padded display name (spec.md §3).
type CSIMetadata struct {
	ModTime uint32
	Layout  Layout
	Name    string
}

func decodeCSIMetadata(c *cursor) (CSIMetadata, error) {
	var m CSIMetadata
	var err error
	if m.ModTime, err = c.readU32(); err != nil {
		return CSIMetadata{}, err
	}
	layoutOffset := c.offset()
	rawLayout, err := c.readU16()
	if err != nil {
		return CSIMetadata{}, err
	}
	if m.Layout, err = layoutFromRaw(rawLayout, layoutOffset); err != nil {
		return CSIMetadata{}, err
	}
	if _, err := c.readU16(); err != nil { // reserved/zero
		return CSIMetadata{}, err
	}
	if m.Name, err = c.readPaddedString(128); err != nil {
		return CSIMetadata{}, err
	}
	return m, nil
}

// CSIBitmapList declares the byte lengths of the TLV stream and the
// rendition payload that follow a CSI header (spec.md §3).
type CSIBitmapList struct {
	TLVLength        uint32
	Unknown          uint32
	Zero             uint32
	RenditionLength  uint32
}

func decodeCSIBitmapList(c *cursor) (CSIBitmapList, error) {
	var b CSIBitmapList
	var err error
	if b.TLVLength, err = c.readU32(); err != nil {
		return CSIBitmapList{}, err
	}
	if b.Unknown, err = c.readU32(); err != nil {
		return CSIBitmapList{}, err
	}
	if b.Zero, err = c.readU32(); err != nil {
		return CSIBitmapList{}, err
	}
	if b.RenditionLength, err = c.readU32(); err != nil {
		return CSIBitmapList{}, err
	}
	return b, nil
}

// CSIHeader describes one asset's rendition record in full (spec.md §3,
// §4.4). It owns everything between the "CTSI" magic and the end of the
// rendition body: flags, geometry, metadata, the TLV property stream, and
// the decoded rendition body itself.
type CSIHeader struct {
	Version        uint32
	RenditionFlags RenditionFlags
	Width          uint32
	Height         uint32
	ScaleFactor    Scale
	PixelFormat    PixelFormat
	ColorSpace     ColorSpace
	Metadata       CSIMetadata
	BitmapList     CSIBitmapList
	Properties     []TLVRecord
	Body           RenditionBody
}

// decodeCSIHeader parses one complete rendition record off c, including its
// TLV sidecar stream and rendition body (C4, spec.md §4.4).
func decodeCSIHeader(c *cursor) (CSIHeader, error) {
	magicOffset := c.offset()
	magic, err := c.readU32()
	if err != nil {
		return CSIHeader{}, err
	}
	if magic != magicCSIHeader {
		return CSIHeader{}, &MagicMismatchError{Expected: magicCSIHeader, Found: magic, Offset: magicOffset}
	}

	var h CSIHeader
	if h.Version, err = c.readU32(); err != nil {
		return CSIHeader{}, err
	}
	rawFlags, err := c.readU32()
	if err != nil {
		return CSIHeader{}, err
	}
	h.RenditionFlags = RenditionFlags(rawFlags)
	if h.Width, err = c.readU32(); err != nil {
		return CSIHeader{}, err
	}
	if h.Height, err = c.readU32(); err != nil {
		return CSIHeader{}, err
	}
	rawScale, err := c.readU32()
	if err != nil {
		return CSIHeader{}, err
	}
	h.ScaleFactor = Scale(rawScale)
	pixelFormatOffset := c.offset()
	rawPixelFormat, err := c.readU32()
	if err != nil {
		return CSIHeader{}, err
	}
	if h.PixelFormat, err = pixelFormatFromRaw(rawPixelFormat, pixelFormatOffset); err != nil {
		return CSIHeader{}, err
	}
	rawColorSpace, err := c.readU32()
	if err != nil {
		return CSIHeader{}, err
	}
	h.ColorSpace = colorSpaceFromRaw(rawColorSpace)
	if h.Metadata, err = decodeCSIMetadata(c); err != nil {
		return CSIHeader{}, err
	}
	if h.BitmapList, err = decodeCSIBitmapList(c); err != nil {
		return CSIHeader{}, err
	}

	tlvBytes, err := c.readFixedBytes(int(h.BitmapList.TLVLength))
	if err != nil {
		return CSIHeader{}, err
	}
	if h.Properties, err = decodeTLVStream(tlvBytes, len(tlvBytes)); err != nil {
		return CSIHeader{}, err
	}

	bodyBytes, err := c.readFixedBytes(int(h.BitmapList.RenditionLength))
	if err != nil {
		return CSIHeader{}, err
	}
	if h.Body, err = decodeRenditionBody(bodyBytes); err != nil {
		return CSIHeader{}, err
	}

	return h, nil
}
