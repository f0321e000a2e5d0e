// Copyright 2026 The Buildstamp Authors
// SPDX-License-Identifier: Apache-2.0

package section

// Fields is a set of field values destined for (or decoded from) a
// section buffer. The zero value is the empty set. Fields is a plain
// value type: copy it freely, compare it with ==.
//
// Values must be valid UTF-8. The decoder drops any stored value that
// is not, so a set containing invalid UTF-8 does not survive a
// round trip.
type Fields struct {
	values  [FieldCount]string
	present [FieldCount]bool
}

// Set records a value for the field. Setting the empty string clears
// the field instead: the section layout cannot distinguish a present
// empty value from an absent one, and collapsing the two here keeps
// encode/decode round trips exact.
func (s *Fields) Set(f Field, value string) {
	if f >= FieldCount {
		return
	}
	s.values[f] = value
	s.present[f] = value != ""
}

// Clear removes the field from the set.
func (s *Fields) Clear(f Field) {
	if f >= FieldCount {
		return
	}
	s.values[f] = ""
	s.present[f] = false
}

// Get returns the field's value and whether it is present.
func (s Fields) Get(f Field) (string, bool) {
	if f >= FieldCount {
		return "", false
	}
	return s.values[f], s.present[f]
}

// Count returns the number of present fields.
func (s Fields) Count() int {
	n := 0
	for _, p := range s.present {
		if p {
			n++
		}
	}
	return n
}

// Map returns the present fields keyed by canonical name. Useful for
// serialization; mutating the result does not affect the set.
func (s Fields) Map() map[string]string {
	m := make(map[string]string, s.Count())
	for f := Field(0); f < FieldCount; f++ {
		if s.present[f] {
			m[fieldNames[f]] = s.values[f]
		}
	}
	return m
}
