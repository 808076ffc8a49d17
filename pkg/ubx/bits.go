// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"fmt"
	"strings"
)

// ExtractBits returns the width-bit sub-field of b starting at bit start.
// Bit 0 is the least significant bit.
func ExtractBits(b byte, start, width uint) uint8 {
	if width == 0 || start > 7 {
		return 0
	}
	if start+width > 8 {
		width = 8 - start
	}
	mask := uint16(1)<<width - 1
	return uint8((uint16(b) >> start) & mask)
}

// Bit reports whether bit n of b is set
func Bit(b byte, n uint) bool {
	return ExtractBits(b, n, 1) == 1
}

// BitString renders the low width bits of v most-significant first, e.g.
// BitString(1, 2) == "01".
func BitString(v uint8, width uint) string {
	var sb strings.Builder
	sb.Grow(int(width))
	for i := int(width) - 1; i >= 0; i-- {
		if (v>>uint(i))&1 == 1 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// EnumEntry maps one bit pattern to its symbolic name
type EnumEntry struct {
	Pattern     uint8
	Name        string
	Description string
}

// Enum describes a multi-bit field inside one byte and its known patterns.
// Patterns missing from Entries are reserved and decode without a name.
type Enum struct {
	Start   uint
	Width   uint
	Entries []EnumEntry
}

// EnumField is a decoded multi-bit field. Name and Description are empty
// when the pattern is not in the field's table.
type EnumField struct {
	Bits        string `json:"bits"`
	Value       uint8  `json:"value"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Lookup finds the entry for pattern
func (e Enum) Lookup(pattern uint8) (EnumEntry, bool) {
	for _, entry := range e.Entries {
		if entry.Pattern == pattern {
			return entry, true
		}
	}
	return EnumEntry{}, false
}

// Decode extracts the field from b and resolves its name
func (e Enum) Decode(b byte) EnumField {
	v := ExtractBits(b, e.Start, e.Width)
	field := EnumField{
		Bits:  BitString(v, e.Width),
		Value: v,
	}
	if entry, ok := e.Lookup(v); ok {
		field.Name = entry.Name
		field.Description = entry.Description
	}
	return field
}

// Known reports whether the pattern has a mapped meaning
func (f EnumField) Known() bool {
	return f.Name != ""
}

// String returns the symbolic name, or "unspecified (0bxx)" for unmapped patterns
func (f EnumField) String() string {
	if f.Known() {
		return f.Name
	}
	return fmt.Sprintf("unspecified (0b%s)", f.Bits)
}

// Enumerations shared by several messages

var fixTypeEnum = Enum{Start: 0, Width: 8, Entries: []EnumEntry{
	{0x00, "no-fix", "no fix"},
	{0x01, "dead-reckoning", "dead reckoning only"},
	{0x02, "2d-fix", "2D-fix"},
	{0x03, "3d-fix", "3D-fix"},
	{0x04, "gps+dead-reckoning", "GPS + dead reckoning combined"},
	{0x05, "time-only", "Time only fix"},
}}

// carrSoln has no entry for "11"
var carrSolnEntries = []EnumEntry{
	{0, "none", "no carrier phase range solution"},
	{1, "float", "carrier phase range solution with floating ambiguities"},
	{2, "fix", "carrier phase range solution with fixed ambiguities"},
}

var qualityIndEnum = Enum{Start: 0, Width: 3, Entries: []EnumEntry{
	{0, "no-signal", "no signal"},
	{1, "searching", "searching signal"},
	{2, "acquired", "signal acquired"},
	{3, "unusable", "signal detected but unusable"},
	{4, "code-locked", "code locked and time synchronized"},
	{5, "code-carrier-locked", "code and carrier locked and time synchronized"},
	{6, "code-carrier-locked", "code and carrier locked and time synchronized"},
	{7, "code-carrier-locked", "code and carrier locked and time synchronized"},
}}

// health has no entry for "11"
var healthEntries = []EnumEntry{
	{0, "unknown", "unknown"},
	{1, "healthy", "healthy"},
	{2, "unhealthy", "unhealthy"},
}
