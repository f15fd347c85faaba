// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// digestSize is the byte length of one stored digest (spec.md §9: "the
// field historically carries a SHA-256"; SHA-256 is 32 bytes regardless of
// the field's misleading "SHA1Digest" name).
const digestSize = sha256.Size

// DigestEntry is one row of the optional digest table: a raw rendition key
// paired with the SHA-256 digest of that rendition's payload (spec.md
// §3/§4.6).
type DigestEntry struct {
	RawKey []uint16
	Digest [digestSize]byte
}

// decodeDigestTable reads the trailing, optional digest table (C7 step
// (f)). A catalog with no trailing bytes after the rendition table has no
// digest table at all — callers only invoke this when bytes remain.
func decodeDigestTable(c *cursor, keyLen int) ([]DigestEntry, error) {
	count, err := c.readU32()
	if err != nil {
		return nil, err
	}
	entries := make([]DigestEntry, count)
	for i := range entries {
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
		raw, err := c.readFixedBytes(digestSize)
		if err != nil {
			return nil, err
		}
		var digest [digestSize]byte
		copy(digest[:], raw)
		entries[i] = DigestEntry{RawKey: rawKey, Digest: digest}
	}
	return entries, nil
}

// computeDigest hashes a rendition payload the same way the digest table's
// stored entries were produced, should a caller want to verify one.
func computeDigest(payload []byte) [digestSize]byte {
	return sha256.Sum256(payload)
}

// hexDigest renders a digest the way §4.8's SHA1Digest field expects:
// uppercase hex, or the empty string for a missing digest (spec.md §4.6
// rule 2).
func hexDigest(digest [digestSize]byte, present bool) string {
	if !present {
		return ""
	}
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}
