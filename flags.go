// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// RenditionFlags unpacks the 32-bit rendition-flags word carried by every
// CSI header (spec.md §3). It never sign-extends any field — all of the
// named subfields are unsigned shift/mask views over the same word, the
// same way saferwall-pe's IsBitSet reads a PE characteristics word.
type RenditionFlags uint32

const (
	flagIsHeaderFlaggedFPO            = 0
	flagIsExcludedFromContrastFilter  = 1
	flagIsVectorBased                 = 2
	flagIsOpaque                      = 3
	flagBitmapEncodingShift           = 4
	flagBitmapEncodingMask            = 0xF
	flagOptOutOfThinning              = 8
	flagIsFlippable                   = 9
	flagIsTintable                    = 10
	flagPreservedVectorRepresentation = 11
)

func isBitSet(word uint32, pos int) bool {
	return (word>>uint(pos))&1 != 0
}

func (f RenditionFlags) IsHeaderFlaggedFPO() bool { return isBitSet(uint32(f), flagIsHeaderFlaggedFPO) }
func (f RenditionFlags) IsExcludedFromContrastFilter() bool {
	return isBitSet(uint32(f), flagIsExcludedFromContrastFilter)
}
func (f RenditionFlags) IsVectorBased() bool { return isBitSet(uint32(f), flagIsVectorBased) }
func (f RenditionFlags) IsOpaque() bool      { return isBitSet(uint32(f), flagIsOpaque) }
func (f RenditionFlags) BitmapEncoding() uint32 {
	return (uint32(f) >> flagBitmapEncodingShift) & flagBitmapEncodingMask
}
func (f RenditionFlags) OptOutOfThinning() bool { return isBitSet(uint32(f), flagOptOutOfThinning) }
func (f RenditionFlags) IsFlippable() bool      { return isBitSet(uint32(f), flagIsFlippable) }
func (f RenditionFlags) IsTintable() bool       { return isBitSet(uint32(f), flagIsTintable) }
func (f RenditionFlags) PreservedVectorRepresentation() bool {
	return isBitSet(uint32(f), flagPreservedVectorRepresentation)
}

// TemplateRenderingMode decodes this word's 3-bit template-rendering-mode
// subfield (spec.md §4.3).
func (f RenditionFlags) TemplateRenderingMode() TemplateRenderingMode {
	return templateRenderingModeFromBits(uint8(uint32(f) >> flagTemplateRenderingModeShift))
}

const flagTemplateRenderingModeShift = 12

// TemplateRenderingMode is the enumeration over the 3-bit subfield spec.md
// §4.3 describes sitting in the reserved remainder of the rendition-flags
// word (bits 12-14, immediately after bitmap_encoding).
type TemplateRenderingMode uint8

const (
	TemplateRenderingModeNone TemplateRenderingMode = iota
	TemplateRenderingModeAutomatic
	TemplateRenderingModeOriginal
	TemplateRenderingModeTemplate
)

func (m TemplateRenderingMode) String() string {
	switch m {
	case TemplateRenderingModeAutomatic:
		return "automatic"
	case TemplateRenderingModeOriginal:
		return "original"
	case TemplateRenderingModeTemplate:
		return "template"
	default:
		return ""
	}
}

// templateRenderingModeFromBits decodes the 3-bit subfield; unrecognized
// codes yield TemplateRenderingModeNone rather than an error, per spec.md
// §4.3 ("unrecognized codes yield None").
func templateRenderingModeFromBits(bits uint8) TemplateRenderingMode {
	switch bits & 0x7 {
	case 1:
		return TemplateRenderingModeAutomatic
	case 2:
		return TemplateRenderingModeOriginal
	case 3:
		return TemplateRenderingModeTemplate
	default:
		return TemplateRenderingModeNone
	}
}
