// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package car

// Anomalies recorded during catalog assembly. These never abort a parse —
// only the errors in errors.go do — they accumulate on AssetCatalog so a
// caller can inspect what the format's forward-compatibility allowances
// let through (spec.md §7: "Unknown TLV tags and unknown rendition-body
// kinds are NOT errors").
const (
	// AnoUnknownTLVTag is reported when a rendition's TLV stream contains
	// a tag outside the recognized set.
	AnoUnknownTLVTag = "rendition carries an unrecognized TLV tag"

	// AnoUnknownRenditionBody is reported when a rendition's body tag is
	// outside the recognized set.
	AnoUnknownRenditionBody = "rendition carries an unrecognized body kind"
)

// anomalyForRendition names which anomaly (if any) applies to h, along
// with the offending rendition's display name for the message.
func anomalyForRendition(h CSIHeader) (string, bool) {
	if h.Body.Unknown != nil {
		return h.Metadata.Name + ": " + AnoUnknownRenditionBody, true
	}
	for _, r := range h.Properties {
		if r.IsUnknown() {
			return h.Metadata.Name + ": " + AnoUnknownTLVTag, true
		}
	}
	return "", false
}
