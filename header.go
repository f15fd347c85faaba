// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"github.com/google/uuid"
)

// magicCarHeader is the literal 4-byte tag "RATC" a CarHeader begins with,
// read as a little-endian u32 (spec.md §6: magic "RATC"/equivalent).
const magicCarHeader uint32 = 0x43544152

// magicCSIHeader is the literal tag "CTSI" every CSIHeader begins with.
const magicCSIHeader uint32 = 0x49535443

// magicKeyFormat is the literal tag "tmfk" both the facet key-format and
// the rendition-key-format blocks begin with.
const magicKeyFormat uint32 = 0x6b666d74

// Header is the catalog-wide descriptive record (spec.md §3).
type Header struct {
	CoreUIVersion    uint32
	StorageVersion   uint32
	StorageTimestamp uint32
	RenditionCount   uint32
	MainVersion      string
	AssetStorageVer  string
	UUID             uuid.UUID
	AssociatedCheck  uint32
	SchemaVersion    uint32
	ColorSpaceID     uint32
	KeySemantics     uint32
}

// ExtendedMetadata carries the thinning/deployment/authoring-tool fields
// that ride alongside the header in a separate fixed-layout record
// (spec.md §3).
type ExtendedMetadata struct {
	ThinningArguments         string
	DeploymentPlatform        string
	DeploymentPlatformVersion string
	AuthoringTool             string
}

// decodeHeader parses a CarHeader off the front of c (spec.md §4.4/§6).
func decodeHeader(c *cursor) (Header, error) {
	magicOffset := c.offset()
	magic, err := c.readU32()
	if err != nil {
		return Header{}, err
	}
	if magic != magicCarHeader {
		return Header{}, &MagicMismatchError{Expected: magicCarHeader, Found: magic, Offset: magicOffset}
	}

	var h Header
	if h.CoreUIVersion, err = c.readU32(); err != nil {
		return Header{}, err
	}
	if h.StorageVersion, err = c.readU32(); err != nil {
		return Header{}, err
	}
	if h.StorageTimestamp, err = c.readU32(); err != nil {
		return Header{}, err
	}
	if h.RenditionCount, err = c.readU32(); err != nil {
		return Header{}, err
	}
	if h.MainVersion, err = c.readPaddedString(128); err != nil {
		return Header{}, err
	}
	if h.AssetStorageVer, err = c.readPaddedString(256); err != nil {
		return Header{}, err
	}
	rawUUID, err := c.readFixedBytes(16)
	if err != nil {
		return Header{}, err
	}
	h.UUID, err = uuid.FromBytes(rawUUID)
	if err != nil {
		return Header{}, &InvariantViolationError{Message: "header UUID: " + err.Error()}
	}
	if h.AssociatedCheck, err = c.readU32(); err != nil {
		return Header{}, err
	}
	if h.SchemaVersion, err = c.readU32(); err != nil {
		return Header{}, err
	}
	if h.ColorSpaceID, err = c.readU32(); err != nil {
		return Header{}, err
	}
	if h.KeySemantics, err = c.readU32(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// decodeExtendedMetadata parses a CarExtendedMetadata record. Callers
// treat it as optional: the catalog assembler only invokes this when the
// next word in the stream is not the key-format magic "tmfk" (C7 step
// (b), spec.md §4.7).
func decodeExtendedMetadata(c *cursor) (ExtendedMetadata, error) {
	// The extended-metadata magic is carried but (per the original
	// implementation this format was distilled from) never verified
	// against a literal — only the header and CSI magics are.
	if _, err := c.readU32(); err != nil {
		return ExtendedMetadata{}, err
	}

	var m ExtendedMetadata
	var err error
	if m.ThinningArguments, err = c.readPaddedString(256); err != nil {
		return ExtendedMetadata{}, err
	}
	if m.DeploymentPlatformVersion, err = c.readPaddedString(256); err != nil {
		return ExtendedMetadata{}, err
	}
	if m.DeploymentPlatform, err = c.readPaddedString(256); err != nil {
		return ExtendedMetadata{}, err
	}
	if m.AuthoringTool, err = c.readPaddedString(256); err != nil {
		return ExtendedMetadata{}, err
	}
	return m, nil
}
