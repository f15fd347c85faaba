// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/sirupsen/logrus"
)

// renditionTableEntry is one row of the rendition table: a raw key
// followed by its CSI record (spec.md §4.7 step (e)).
type renditionTableEntry struct {
	RawKey []uint16
	CSI    CSIHeader
}

// Asset is one fully resolved rendition, carrying everything the JSON
// projector (C8) needs: the decoded CSI record, its joined key attributes,
// the facet name it resolves to (if any), and its stored digest.
type Asset struct {
	Key    []AttributePair
	CSI    CSIHeader
	Name   string
	Digest digestLookup
}

// AssetCatalog is the fully assembled, immutable result of parsing a car
// file (spec.md §3: "A catalog is created by parsing a finite byte
// buffer; it is immutable thereafter").
type AssetCatalog struct {
	Header           Header
	ExtendedMetadata ExtendedMetadata
	KeyFormat        KeyFormat
	Assets           []Asset
	Anomalies        []string

	// Appearances maps each distinct raw Appearance attribute value found
	// across the facet table to the facet name it was observed on. Nil
	// when no facet carries an Appearance attribute (spec.md §4.8:
	// "optional mapping, omitted if absent").
	Appearances map[uint16]string
}

// Options configures Parse/Open. A nil Options pointer is equivalent to
// the zero value.
type Options struct {
	// StrictUnknownAttributes rejects a catalog that contains any
	// Unknown TLV record or Unknown rendition body instead of preserving
	// it, for callers that want forward-compatible unknowns treated as
	// a hard failure rather than silently accepted.
	StrictUnknownAttributes bool

	// Logger receives structural anomalies encountered during parsing.
	// A nil Logger discards them (diagnostics remain available via
	// AssetCatalog.Anomalies regardless).
	Logger *logrus.Logger
}

func (o *Options) logger() *logrus.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return nil
}

// Open memory-maps the car file at name and parses it (spec.md §6's
// "out of scope" file-opening collaborator, wired through mmap-go the way
// the teacher's File.New does for PE images).
func Open(name string, opts *Options) (*AssetCatalog, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer data.Unmap()

	return Parse(data, opts)
}

// Parse builds an AssetCatalog from a complete, pre-materialized byte
// buffer (spec.md §6: "parse(bytes) → AssetCatalog | ParseError"). It is a
// pure function of its input: no shared state survives between calls, so
// independent callers may invoke it concurrently (spec.md §5).
func Parse(data []byte, opts *Options) (*AssetCatalog, error) {
	c := newCursor(data)
	cat := &AssetCatalog{}

	// (a) catalog header
	header, err := decodeHeader(c)
	if err != nil {
		return nil, err
	}
	cat.Header = header

	// (b) extended metadata, if present
	if c.remaining() >= 4 {
		// Peek at the next word through a separate cursor so c itself
		// never moves backward.
		magic, err := newCursor(c.data[c.pos:]).readU32()
		if err != nil {
			return nil, err
		}
		if magic != magicKeyFormat {
			meta, err := decodeExtendedMetadata(c)
			if err != nil {
				return nil, err
			}
			cat.ExtendedMetadata = meta
		}
	}

	// (c) key-format declaration
	keyFormat, err := decodeKeyFormat(c)
	if err != nil {
		return nil, err
	}
	cat.KeyFormat = keyFormat

	// (d) facet table
	facets, err := decodeFacetTable(c, len(keyFormat))
	if err != nil {
		return nil, err
	}

	// rendition-key-format table (also tagged "tmfk")
	if err := decodeRenditionKeyFormat(c); err != nil {
		return nil, err
	}

	// (e) rendition table: each entry is a raw key followed by a CSI
	// record, bounded by the header's declared rendition_count.
	renditions := make([]renditionTableEntry, 0, header.RenditionCount)
	for i := uint32(0); i < header.RenditionCount; i++ {
		n, err := c.readU16()
		if err != nil {
			return nil, err
		}
		if int(n) != len(keyFormat) {
			return nil, &KeyArityError{Expected: len(keyFormat), Found: int(n)}
		}
		rawKey := make([]uint16, n)
		for j := range rawKey {
			if rawKey[j], err = c.readU16(); err != nil {
				return nil, err
			}
		}
		csi, err := decodeCSIHeader(c)
		if err != nil {
			return nil, err
		}
		renditions = append(renditions, renditionTableEntry{RawKey: rawKey, CSI: csi})
	}

	// (f) digest table (optional): present only if bytes remain.
	var digests []DigestEntry
	if c.remaining() > 0 {
		digests, err = decodeDigestTable(c, len(keyFormat))
		if err != nil {
			return nil, err
		}
	}

	xr, err := buildCrossReferences(facets, keyFormat, renditions, digests)
	if err != nil {
		return nil, err
	}

	assets := make([]Asset, 0, len(renditions))
	var anomalies []string
	for _, r := range renditions {
		pairs, err := keyFormat.Join(r.RawKey)
		if err != nil {
			return nil, err
		}
		name, _ := xr.facetName(pairs)
		asset := Asset{
			Key:    pairs,
			CSI:    r.CSI,
			Name:   name,
			Digest: xr.digestFor(r.RawKey),
		}
		if msg, anomalous := anomalyForRendition(r.CSI); anomalous {
			if opts.StrictUnknown() {
				return nil, &InvariantViolationError{Message: msg + " (rejected under StrictUnknownAttributes)"}
			}
			anomalies = append(anomalies, msg)
			if logger := opts.logger(); logger != nil {
				logger.Warn(msg)
			}
		}
		assets = append(assets, asset)
	}
	cat.Assets = assets
	cat.Anomalies = anomalies
	cat.Appearances = appearancesByFacet(facets, keyFormat)

	return cat, nil
}

// appearancesByFacet implements the Appearances header field the original
// assetutil derives from theme_store.store.appearences(): the distinct
// Appearance attribute values observed across the facet table, each mapped
// to the facet name it was found on. Returns nil, not an empty map, when no
// facet carries an Appearance attribute, so the JSON projector can omit the
// field entirely rather than emit "{}".
func appearancesByFacet(facets []FacetEntry, keyFormat KeyFormat) map[uint16]string {
	var out map[uint16]string
	for _, f := range facets {
		pairs, err := keyFormat.Join(f.RawKey)
		if err != nil {
			continue
		}
		for _, p := range pairs {
			if p.Kind != AttributeAppearance {
				continue
			}
			if out == nil {
				out = make(map[uint16]string)
			}
			out[p.Value] = f.Name
		}
	}
	return out
}

// StrictUnknown reports whether opts demands rejecting unknown TLV records
// and rendition bodies rather than preserving them. A nil Options never
// rejects.
func (o *Options) StrictUnknown() bool {
	return o != nil && o.StrictUnknownAttributes
}
