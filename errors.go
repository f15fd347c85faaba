// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when the cursor cannot advance by the
// requested width because the buffer has been exhausted.
var ErrUnexpectedEOF = errors.New("car: unexpected end of buffer")

// MagicMismatchError is returned when a fixed-layout record's magic tag
// does not match the literal the format declares for it.
type MagicMismatchError struct {
	Expected uint32
	Found    uint32
	Offset   int
}

func (e *MagicMismatchError) Error() string {
	return fmt.Sprintf("car: magic mismatch at offset %d: expected %#08x, found %#08x",
		e.Offset, e.Expected, e.Found)
}

// NoVariantMatchError is returned when an enumerated field holds a value
// outside the closed set of variants the format defines for it.
type NoVariantMatchError struct {
	Kind   string
	Raw    uint32
	Offset int
}

func (e *NoVariantMatchError) Error() string {
	return fmt.Sprintf("car: %s at offset %d has no matching variant for raw value %#x",
		e.Kind, e.Offset, e.Raw)
}

// TLVTruncatedError is returned when a TLV record claims more bytes for its
// value than remain in the stream.
type TLVTruncatedError struct {
	Offset int
}

func (e *TLVTruncatedError) Error() string {
	return fmt.Sprintf("car: TLV record truncated at offset %d", e.Offset)
}

// KeyArityError is returned when a rendition key's length disagrees with
// the catalog's key-format declaration.
type KeyArityError struct {
	Expected int
	Found    int
}

func (e *KeyArityError) Error() string {
	return fmt.Sprintf("car: key arity mismatch: key-format declares %d slots, key has %d",
		e.Expected, e.Found)
}

// DuplicateIdentifierError is returned when two facets share the same
// Identifier attribute value.
type DuplicateIdentifierError struct {
	Value uint16
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("car: duplicate facet identifier %d", e.Value)
}

// InvariantViolationError is a catch-all for the §3 data-model invariants
// failing during catalog assembly.
type InvariantViolationError struct {
	Message string
}

func (e *InvariantViolationError) Error() string {
	return "car: invariant violation: " + e.Message
}

// wrapAt wraps err with the offset it occurred at, for errors that aren't
// already offset-carrying (ErrUnexpectedEOF and generic I/O failures).
func wrapAt(err error, offset int) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("at offset %d: %w", offset, err)
}
