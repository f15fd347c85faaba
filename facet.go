// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// FacetEntry is one row of the facet table: a human-readable name paired
// with its raw key token (spec.md §3: "a mapping from a facet name... to a
// key token, itself an ordered sequence of (attribute kind, 16-bit value)
// pairs").
type FacetEntry struct {
	Name   string
	RawKey []uint16
}

// decodeFacetTable reads the facet table (C4/C7 step (d)): a count,
// followed by that many (name, raw-key) entries. keyLen is the declared
// key-format length every raw key must match — checked eagerly so a
// malformed entry is caught at parse time, not when later joined against
// the key-format (spec.md §4.5).
func decodeFacetTable(c *cursor, keyLen int) ([]FacetEntry, error) {
	count, err := c.readU32()
	if err != nil {
		return nil, err
	}
	entries := make([]FacetEntry, count)
	for i := range entries {
		nameLen, err := c.readU16()
		if err != nil {
			return nil, err
		}
		nameBytes, err := c.readFixedBytes(int(nameLen))
		if err != nil {
			return nil, err
		}
		n, err := c.readU16()
		if err != nil {
			return nil, err
		}
		if int(n) != keyLen {
			return nil, &KeyArityError{Expected: keyLen, Found: int(n)}
		}
		rawKey := make([]uint16, n)
		for j := range rawKey {
			if rawKey[j], err = c.readU16(); err != nil {
				return nil, err
			}
		}
		entries[i] = FacetEntry{Name: string(nameBytes), RawKey: rawKey}
	}
	return entries, nil
}
