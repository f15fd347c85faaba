// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// TLVTag identifies the type of a decoded TLV property record.
type TLVTag uint32

// Recognized TLV tags. The concrete numeric values are this format's own
// wire constants; any tag not in this set decodes to a record whose Unknown
// field holds the value bytes (see IsUnknown) rather than failing the parse (spec.md §4.2: "Unknown tags MUST produce Unknown").
const (
	TLVTagSlices              TLVTag = 0x00
	TLVTagBlendModeAndOpacity TLVTag = 0x01
	TLVTagUTI                 TLVTag = 0x02
)

// TLVRecord is one decoded property from a CSI header's TLV sidecar
// stream (spec.md §3, §4.2).
type TLVRecord struct {
	Tag TLVTag

	// Populated when Tag == TLVTagSlices.
	SliceWidth, SliceHeight uint32

	// Populated when Tag == TLVTagBlendModeAndOpacity.
	BlendMode uint32
	Opacity   float64

	// Populated when Tag == TLVTagUTI.
	UTI string

	// Populated when the tag isn't one of the above: Unknown holds the
	// undecoded value bytes, with Tag preserving the original 32-bit tag
	// as read off the wire.
	Unknown []byte
}

// IsUnknown reports whether this record fell through to the catch-all
// variant.
func (r TLVRecord) IsUnknown() bool {
	switch r.Tag {
	case TLVTagSlices, TLVTagBlendModeAndOpacity, TLVTagUTI:
		return false
	default:
		return true
	}
}

// decodeTLVStream parses a concatenated Type/Length/Value stream of
// declared length l into an ordered sequence of TLVRecord values (C2,
// spec.md §4.2). It mirrors saferwall-pe's doParseResourceDirectory loop:
// advance a cursor over a length-bounded sequence of variable-length
// entries, tolerating unrecognized entries instead of failing on them.
func decodeTLVStream(data []byte, l int) ([]TLVRecord, error) {
	if l > len(data) {
		return nil, &TLVTruncatedError{Offset: len(data)}
	}
	c := newCursor(data[:l])
	var records []TLVRecord
	for c.remaining() >= 8 {
		tagOffset := c.offset()
		rawTag, err := c.readU32()
		if err != nil {
			return nil, err
		}
		n, err := c.readU32()
		if err != nil {
			return nil, err
		}
		if c.remaining() < int(n) {
			return nil, &TLVTruncatedError{Offset: tagOffset}
		}
		value, err := c.readFixedBytes(int(n))
		if err != nil {
			return nil, err
		}
		rec, err := decodeTLVRecord(TLVTag(rawTag), value)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if c.remaining() != 0 {
		return nil, &InvariantViolationError{Message: "TLV stream left unconsumed trailing bytes"}
	}
	return records, nil
}

func decodeTLVRecord(tag TLVTag, value []byte) (TLVRecord, error) {
	switch tag {
	case TLVTagSlices:
		vc := newCursor(value)
		width, err := vc.readU32()
		if err != nil {
			return TLVRecord{}, err
		}
		height, err := vc.readU32()
		if err != nil {
			return TLVRecord{}, err
		}
		return TLVRecord{Tag: TLVTagSlices, SliceWidth: width, SliceHeight: height}, nil

	case TLVTagBlendModeAndOpacity:
		vc := newCursor(value)
		blendMode, err := vc.readU32()
		if err != nil {
			return TLVRecord{}, err
		}
		opacity, err := vc.readF64()
		if err != nil {
			return TLVRecord{}, err
		}
		return TLVRecord{Tag: TLVTagBlendModeAndOpacity, BlendMode: blendMode, Opacity: opacity}, nil

	case TLVTagUTI:
		vc := newCursor(value)
		n, err := vc.readU32()
		if err != nil {
			return TLVRecord{}, err
		}
		raw, err := vc.readFixedBytes(int(n))
		if err != nil {
			return TLVRecord{}, err
		}
		return TLVRecord{Tag: TLVTagUTI, UTI: trimNulString(raw)}, nil

	default:
		return TLVRecord{Tag: tag, Unknown: append([]byte(nil), value...)}, nil
	}
}

func trimNulString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// firstSlices returns the first TLVTagSlices record, if present.
func firstSlices(records []TLVRecord) (TLVRecord, bool) {
	for _, r := range records {
		if r.Tag == TLVTagSlices {
			return r, true
		}
	}
	return TLVRecord{}, false
}

// blendModeAndOpacity returns the first TLVTagBlendModeAndOpacity record,
// if present.
func blendModeAndOpacity(records []TLVRecord) (TLVRecord, bool) {
	for _, r := range records {
		if r.Tag == TLVTagBlendModeAndOpacity {
			return r, true
		}
	}
	return TLVRecord{}, false
}

// firstUTI returns the first TLVTagUTI record's string, if present.
func firstUTI(records []TLVRecord) (string, bool) {
	for _, r := range records {
		if r.Tag == TLVTagUTI {
			return r.UTI, true
		}
	}
	return "", false
}
