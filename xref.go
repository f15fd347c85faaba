// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// crossReferences holds the three lookup tables C6 builds once during
// assembly (spec.md §4.6). None of them are retained as back-pointers on
// the records themselves; the assembler discards this structure once C7
// finishes building the final AssetCatalog (spec.md §3: "Temporary maps
// (C6) are built during assembly and discarded after C7 finishes").
type crossReferences struct {
	identifierToFacetName map[uint16]string
	keyToDigest           map[string]digestLookup
	keyToCSI              map[string]*CSIHeader
}

type digestLookup struct {
	digest  [digestSize]byte
	present bool
}

// renditionKeyString canonicalizes a raw rendition key into a map key.
// Raw keys are short uint16 tuples that all share the key-format's
// length, so concatenating each value's two little-endian bytes is
// collision-free and avoids needing a comparable array type sized to an
// arbitrary key-format length.
func renditionKeyString(rawKey []uint16) string {
	buf := make([]byte, 0, len(rawKey)*2)
	for _, v := range rawKey {
		buf = append(buf, byte(v), byte(v>>8))
	}
	return string(buf)
}

// buildCrossReferences implements C6's three mappings: name-identifier to
// facet name (failing on identifier collisions per spec.md §4.6 rule 1),
// rendition key to digest (missing entries recorded as absent, not
// substituted with a zero digest, so hexDigest can emit the empty string
// per rule 2), and rendition key to CSI header (rule 3).
func buildCrossReferences(facets []FacetEntry, keyFormat KeyFormat, renditions []renditionTableEntry, digests []DigestEntry) (*crossReferences, error) {
	xr := &crossReferences{
		identifierToFacetName: make(map[uint16]string, len(facets)),
		keyToDigest:           make(map[string]digestLookup, len(digests)),
		keyToCSI:              make(map[string]*CSIHeader, len(renditions)),
	}

	for _, f := range facets {
		pairs, err := keyFormat.Join(f.RawKey)
		if err != nil {
			return nil, err
		}
		id, ok := identifierValue(pairs)
		if !ok {
			return nil, &InvariantViolationError{Message: "facet " + f.Name + " has no Identifier attribute"}
		}
		if existing, dup := xr.identifierToFacetName[id]; dup && existing != f.Name {
			return nil, &DuplicateIdentifierError{Value: id}
		}
		xr.identifierToFacetName[id] = f.Name
	}

	for _, d := range digests {
		xr.keyToDigest[renditionKeyString(d.RawKey)] = digestLookup{digest: d.Digest, present: true}
	}

	for i := range renditions {
		r := &renditions[i]
		xr.keyToCSI[renditionKeyString(r.RawKey)] = &r.CSI
	}

	return xr, nil
}

// facetName resolves a rendition key's Identifier attribute (if any) to a
// facet name, returning ok=false when unresolved — the join "may be
// empty" per spec.md §3's invariant list.
func (xr *crossReferences) facetName(pairs []AttributePair) (string, bool) {
	id, ok := identifierValue(pairs)
	if !ok {
		return "", false
	}
	name, ok := xr.identifierToFacetName[id]
	return name, ok
}

func (xr *crossReferences) digestFor(rawKey []uint16) digestLookup {
	return xr.keyToDigest[renditionKeyString(rawKey)]
}
