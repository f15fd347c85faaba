// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// AttributeKind is one of the 26 closed variants a rendition-key slot or a
// facet key-token entry may carry, per spec.md §3.
type AttributeKind uint32

// The attribute kinds, in the catalog's own declared order.
const (
	AttributeLook AttributeKind = iota
	AttributeElement
	AttributePart
	AttributeSize
	AttributeDirection
	AttributePlaceHolder
	AttributeValue
	AttributeAppearance
	AttributeDimension1
	AttributeDimension2
	AttributeState
	AttributeLayer
	AttributeScale
	AttributeUnknown13
	AttributePresentationState
	AttributeIdiom
	AttributeSubtype
	AttributeIdentifier
	AttributePreviousValue
	AttributePreviousState
	AttributeSizeClassHorizontal
	AttributeSizeClassVertical
	AttributeMemoryClass
	AttributeGraphicsClass
	AttributeDisplayGamut
	AttributeDeploymentTarget

	attributeKindCount
)

var attributeKindNames = [attributeKindCount]string{
	AttributeLook:                "Look",
	AttributeElement:             "Element",
	AttributePart:                "Part",
	AttributeSize:                "Size",
	AttributeDirection:           "Direction",
	AttributePlaceHolder:         "PlaceHolder",
	AttributeValue:               "Value",
	AttributeAppearance:          "Appearance",
	AttributeDimension1:          "Dimension1",
	AttributeDimension2:          "Dimension2",
	AttributeState:               "State",
	AttributeLayer:               "Layer",
	AttributeScale:               "Scale",
	AttributeUnknown13:           "Unknown13",
	AttributePresentationState:   "PresentationState",
	AttributeIdiom:               "Idiom",
	AttributeSubtype:             "Subtype",
	AttributeIdentifier:          "Identifier",
	AttributePreviousValue:       "PreviousValue",
	AttributePreviousState:       "PreviousState",
	AttributeSizeClassHorizontal: "SizeClassHorizontal",
	AttributeSizeClassVertical:   "SizeClassVertical",
	AttributeMemoryClass:         "MemoryClass",
	AttributeGraphicsClass:       "GraphicsClass",
	AttributeDisplayGamut:        "DisplayGamut",
	AttributeDeploymentTarget:    "DeploymentTarget",
}

// attributeKindFromRaw maps a raw code read off the wire to an AttributeKind,
// rejecting anything outside the closed 26-variant set (spec.md §3: "Codes
// outside this range are a parse error").
func attributeKindFromRaw(raw uint32, offset int) (AttributeKind, error) {
	if raw >= uint32(attributeKindCount) {
		return 0, &NoVariantMatchError{Kind: "AttributeKind", Raw: raw, Offset: offset}
	}
	return AttributeKind(raw), nil
}

// String returns the bare variant name, e.g. "Idiom".
func (k AttributeKind) String() string {
	if k >= attributeKindCount {
		return "Unknown"
	}
	return attributeKindNames[k]
}

// ThemeName renders the attribute kind the way the catalog's own key-format
// header names it, e.g. "kCRThemeIdiomName" (spec.md §4.8).
func (k AttributeKind) ThemeName() string {
	return "kCRTheme" + k.String() + "Name"
}

// KeyFormat is the ordered sequence of attribute kinds declaring the
// meaning of each slot in a rendition key tuple (spec.md §3).
type KeyFormat []AttributeKind

// Join performs the C5 positional join: it zips key (a raw tuple of k
// 16-bit values, one per key-format slot) against the key-format
// declaration, in order. A length mismatch is a KeyArityError and must be
// caught at parse time, never deferred to use (spec.md §4.5).
func (kf KeyFormat) Join(key []uint16) ([]AttributePair, error) {
	if len(key) != len(kf) {
		return nil, &KeyArityError{Expected: len(kf), Found: len(key)}
	}
	pairs := make([]AttributePair, len(kf))
	for i, kind := range kf {
		pairs[i] = AttributePair{Kind: kind, Value: key[i]}
	}
	return pairs, nil
}

// AttributePair is one (attribute kind, raw value) pair produced by
// KeyFormat.Join.
type AttributePair struct {
	Kind  AttributeKind
	Value uint16
}

// identifierValue returns the Identifier attribute's value from pairs, if
// present. Every facet's key token has exactly one (spec.md §3 invariant);
// a rendition key may have zero or one.
func identifierValue(pairs []AttributePair) (uint16, bool) {
	for _, p := range pairs {
		if p.Kind == AttributeIdentifier {
			return p.Value, true
		}
	}
	return 0, false
}
