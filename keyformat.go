// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// decodeKeyFormat parses a "tmfk"-magic KeyFormat block: a version word, a
// count, and that many 32-bit attribute-kind codes (spec.md §3/§6). This is
// the rendition key-format declaration that governs how every rendition
// key in the catalog is interpreted (C5).
func decodeKeyFormat(c *cursor) (KeyFormat, error) {
	magicOffset := c.offset()
	magic, err := c.readU32()
	if err != nil {
		return nil, err
	}
	if magic != magicKeyFormat {
		return nil, &MagicMismatchError{Expected: magicKeyFormat, Found: magic, Offset: magicOffset}
	}
	if _, err := c.readU32(); err != nil { // version, unexercised
		return nil, err
	}
	count, err := c.readU32()
	if err != nil {
		return nil, err
	}

	kf := make(KeyFormat, 0, count)
	for i := uint32(0); i < count; i++ {
		kindOffset := c.offset()
		raw, err := c.readU32()
		if err != nil {
			return nil, err
		}
		kind, err := attributeKindFromRaw(raw, kindOffset)
		if err != nil {
			return nil, err
		}
		kf = append(kf, kind)
	}
	if err := validateKeyFormat(kf); err != nil {
		return nil, err
	}
	return kf, nil
}

// validateKeyFormat enforces the §3 invariant that key_format is non-empty
// and contains each attribute kind at most once.
func validateKeyFormat(kf KeyFormat) error {
	if len(kf) == 0 {
		return &InvariantViolationError{Message: "key-format is empty"}
	}
	seen := make(map[AttributeKind]bool, len(kf))
	for _, k := range kf {
		if seen[k] {
			return &InvariantViolationError{Message: "key-format repeats attribute kind " + k.String()}
		}
		seen[k] = true
	}
	return nil
}

// renditionKeyToken is one entry in the rendition-key-format table: a
// cursor hotspot (unused by this spec) plus an ordered set of named
// attributes — kept to mirror the wire layout but not otherwise consumed,
// since the facet-level KeyFormat block above already declares the slot
// semantics every rendition key shares (spec.md §3).
type renditionKeyToken struct {
	attributes []AttributePair
}

// decodeRenditionKeyFormat parses the second "tmfk"-magic block in the
// stream (spec.md §6: "rendition-key-format table (also tagged \"tmfk\")").
// Its per-token attribute list is read and discarded beyond validation: the
// catalog's single authoritative KeyFormat (decoded by decodeKeyFormat)
// is what every rendition key is actually joined against.
func decodeRenditionKeyFormat(c *cursor) error {
	magicOffset := c.offset()
	magic, err := c.readU32()
	if err != nil {
		return err
	}
	if magic != magicKeyFormat {
		return &MagicMismatchError{Expected: magicKeyFormat, Found: magic, Offset: magicOffset}
	}
	if _, err := c.readU32(); err != nil { // version
		return err
	}
	count, err := c.readU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if _, err := c.readU16(); err != nil { // cursor hotspot x
			return err
		}
		if _, err := c.readU16(); err != nil { // cursor hotspot y
			return err
		}
		nAttrs, err := c.readU16()
		if err != nil {
			return err
		}
		for j := uint16(0); j < nAttrs; j++ {
			kindOffset := c.offset()
			rawKind, err := c.readU16()
			if err != nil {
				return err
			}
			kind, err := attributeKindFromRaw(uint32(rawKind), kindOffset)
			if err != nil {
				return err
			}
			value, err := c.readU16()
			if err != nil {
				return err
			}
			_ = AttributePair{Kind: kind, Value: value}
		}
	}
	return nil
}
