// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// dumpToolVersion is a hard-coded version stamp carried in every header
// projection, matching the upstream tool this dumper stands in for
// (spec.md §4.8).
const dumpToolVersion = 804.3

// orderedObject is a JSON object that marshals its entries in a fixed,
// explicit order rather than Go map iteration order. Every field set on
// it is sorted by key once, when finish is called, then frozen. The sort
// is alphabetical ignoring case ("Scale" before "SHA1Digest"), with a
// byte-wise comparison breaking ties: spec.md §8's seed scenarios list
// every projected field alphabetically,
// and §5 requires two runs over the same bytes to produce byte-identical
// JSON, so key order must be a pure function of the key set, not of
// insertion order.
//
// No library in the example pack offers an order-preserving JSON map;
// this mirrors the original implementation's manual
// serializer.serialize_map()/serialize_entry() calls, just sorted before
// being written instead of written in field-declaration order.
type orderedObject struct {
	keys   []string
	values []any
}

func newOrderedObject() *orderedObject {
	return &orderedObject{}
}

func (o *orderedObject) set(key string, value any) *orderedObject {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
	return o
}

// finish sorts the accumulated entries alphabetically by key, ignoring
// case, and returns o for chaining.
func (o *orderedObject) finish() *orderedObject {
	idx := make([]int, len(o.keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		a, b := o.keys[idx[i]], o.keys[idx[j]]
		if la, lb := strings.ToLower(a), strings.ToLower(b); la != lb {
			return la < lb
		}
		return a < b
	})

	sortedKeys := make([]string, len(idx))
	sortedValues := make([]any, len(idx))
	for i, j := range idx {
		sortedKeys[i] = o.keys[j]
		sortedValues[i] = o.values[j]
	}
	o.keys, o.values = sortedKeys, sortedValues
	return o
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// HeaderJSON returns the fixed-shape header view (spec.md §4.8).
func (cat *AssetCatalog) HeaderJSON() *orderedObject {
	keyFormatNames := make([]string, len(cat.KeyFormat))
	for i, kind := range cat.KeyFormat {
		keyFormatNames[i] = kind.ThemeName()
	}

	o := newOrderedObject().
		set("AssetStorageVersion", cat.Header.AssetStorageVer).
		set("Authoring Tool", cat.ExtendedMetadata.AuthoringTool).
		set("CoreUIVersion", cat.Header.CoreUIVersion).
		set("DumpToolVersion", dumpToolVersion).
		set("Key Format", keyFormatNames).
		set("MainVersion", cat.Header.MainVersion).
		set("Platform", cat.ExtendedMetadata.DeploymentPlatform).
		set("PlatformVersion", cat.ExtendedMetadata.DeploymentPlatformVersion).
		set("SchemaVersion", cat.Header.SchemaVersion).
		set("StorageVersion", cat.Header.StorageVersion).
		set("Timestamp", cat.Header.StorageTimestamp)

	if len(cat.Appearances) > 0 {
		o.set("Appearances", cat.Appearances)
	}

	return o.finish()
}

// AssetsJSON returns the per-kind asset view for every rendition, in
// catalog order (spec.md §4.8).
func (cat *AssetCatalog) AssetsJSON() []*orderedObject {
	out := make([]*orderedObject, len(cat.Assets))
	for i, asset := range cat.Assets {
		out[i] = asset.projectJSON()
	}
	return out
}

// sizeOnDisk implements §4.8's fixed formula: the 184-byte fixed portion
// of a CSI header plus its variable-length TLV and rendition sections.
func sizeOnDisk(h CSIHeader) uint32 {
	const csiHeaderFixedSize = 184
	return csiHeaderFixedSize + h.BitmapList.TLVLength + h.BitmapList.RenditionLength
}

// colorModelFor implements the Image ColorModel derivation the distillation
// names but leaves as a closed table: every gray color space projects as
// "Gray", everything else (including the unknown fallback) as "RGB".
func colorModelFor(cs ColorSpace) string {
	switch cs {
	case ColorSpaceGrayGamma22, ColorSpaceExtendedGray:
		return "Gray"
	default:
		return "RGB"
	}
}

func (a Asset) layout() Layout {
	return a.CSI.Metadata.Layout
}

func (a Asset) assetType() (string, bool) {
	switch a.layout() {
	case LayoutColor:
		return "Color", true
	case LayoutData:
		return "Data", true
	case LayoutImage:
		return "Image", true
	default:
		return "???", false
	}
}

// projectJSON builds one asset's full per-kind JSON view: the shared
// fields, the per-kind additional fields, and the key-projection
// attributes, per spec.md §4.8. Insertion order doesn't matter here —
// orderedObject.finish sorts the accumulated entries by key.
func (a Asset) projectJSON() *orderedObject {
	o := newOrderedObject()

	if assetType, ok := a.assetType(); ok {
		o.set("AssetType", assetType)
	}

	switch a.layout() {
	case LayoutColor:
		if a.CSI.Body.Color != nil {
			o.set("Color components", a.CSI.Body.Color.Components)
		}
		o.set("Colorspace", ColorSpaceSRGB.String())

	case LayoutData:
		o.set("Compression", CompressionUncompressed.String())
		if a.CSI.Body.RawData != nil {
			o.set("Data Length", a.CSI.Body.RawData.Length)
		}
		if uti, ok := firstUTI(a.CSI.Properties); ok {
			o.set("UTI", uti)
		} else {
			o.set("UTI", "UTI-Unknown")
		}

	case LayoutImage:
		o.set("BitsPerComponent", uint32(8))
		o.set("ColorModel", colorModelFor(a.CSI.ColorSpace))
		o.set("Colorspace", a.CSI.ColorSpace.String())
		if a.CSI.Body.Theme != nil {
			o.set("Compression", a.CSI.Body.Theme.CompressionType.String())
		}
		o.set("Encoding", a.CSI.PixelFormat.String())
		o.set("Opaque", a.imageOpaque())

		width, height := a.imageDimensions()
		o.set("PixelHeight", height)
		o.set("PixelWidth", width)
		o.set("RenditionName", a.CSI.Metadata.Name)
		o.set("Template Mode", a.CSI.RenditionFlags.TemplateRenderingMode().String())
	}

	if a.Name != "" {
		o.set("Name", a.Name)
	}

	o.set("Scale", a.CSI.ScaleFactor.Factor())
	o.set("SHA1Digest", hexDigest(a.Digest.digest, a.Digest.present))
	o.set("SizeOnDisk", sizeOnDisk(a.CSI))

	a.projectKeyAttributes(o)

	return o.finish()
}

// imageOpaque implements the §4.8 opaque rule: prefer an explicit
// BlendModeAndOpacity TLV record, falling back to the rendition-flags bit.
func (a Asset) imageOpaque() bool {
	if rec, ok := blendModeAndOpacity(a.CSI.Properties); ok {
		return rec.Opacity == 1.0
	}
	return a.CSI.RenditionFlags.IsOpaque()
}

// imageDimensions implements §4.8's substitution rule: a zero CSI-level
// dimension is replaced by the corresponding Slices TLV dimension.
func (a Asset) imageDimensions() (width, height uint32) {
	width, height = a.CSI.Width, a.CSI.Height
	if width == 0 || height == 0 {
		if slices, ok := firstSlices(a.CSI.Properties); ok {
			if width == 0 {
				width = slices.SliceWidth
			}
			if height == 0 {
				height = slices.SliceHeight
			}
		}
	}
	return width, height
}

// projectKeyAttributes implements the §4.8 key-projection shared
// subroutine over a.Key. Identifier is projected as "NameIdentifier"
// rather than through its attribute display name, matching the seed
// scenarios in spec.md §8 (the field is otherwise undocumented in the
// shared-fields list of §4.8, so its name is inferred from the examples).
func (a Asset) projectKeyAttributes(o *orderedObject) {
	for _, pair := range a.Key {
		switch pair.Kind {
		case AttributePart, AttributeElement, AttributeScale:
			continue

		case AttributeIdentifier:
			if pair.Value > 0 {
				o.set("NameIdentifier", pair.Value)
			}

		case AttributeIdiom:
			if idiom, ok := idiomFromRaw(pair.Value); ok {
				o.set("Idiom", idiom.String())
			}

		case AttributeState:
			if pair.Value == 0 {
				o.set("State", "Normal")
			} else {
				o.set("State", "???")
			}

		case AttributeValue:
			if pair.Value == 0 {
				o.set("Value", "Off")
			} else {
				o.set("Value", "On")
			}

		default:
			if pair.Value > 0 {
				o.set(pair.Kind.String(), pair.Value)
			}
		}
	}
}
