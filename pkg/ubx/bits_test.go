// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractBits(t *testing.T) {
	tests := []struct {
		name  string
		b     byte
		start uint
		width uint
		want  uint8
	}{
		{"lowest bit set", 0b0000_0001, 0, 1, 1},
		{"lowest bit clear", 0b1111_1110, 0, 1, 0},
		{"two bits at 6", 0b1000_0000, 6, 2, 0b10},
		{"three bits at 2", 0b0001_0100, 2, 3, 0b101},
		{"full byte", 0xA5, 0, 8, 0xA5},
		{"width clamped", 0b1100_0000, 6, 4, 0b11},
		{"zero width", 0xFF, 0, 0, 0},
		{"start past end", 0xFF, 8, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractBits(tt.b, tt.start, tt.width))
		})
	}
}

func TestBit(t *testing.T) {
	require.True(t, Bit(0x80, 7))
	require.False(t, Bit(0x80, 6))
	require.True(t, Bit(0x01, 0))
}

func TestBitString(t *testing.T) {
	require.Equal(t, "01", BitString(1, 2))
	require.Equal(t, "10", BitString(2, 2))
	require.Equal(t, "101", BitString(5, 3))
	require.Equal(t, "00000011", BitString(3, 8))
	require.Equal(t, "", BitString(1, 0))
}

func TestEnumDecode_Mapped(t *testing.T) {
	e := Enum{Start: 6, Width: 2, Entries: carrSolnEntries}

	f := e.Decode(0b1000_0000)
	require.Equal(t, "10", f.Bits)
	require.Equal(t, uint8(2), f.Value)
	require.Equal(t, "fix", f.Name)
	require.True(t, f.Known())
	require.Equal(t, "fix", f.String())
}

func TestEnumDecode_UnmappedPatternLeftUnspecified(t *testing.T) {
	e := Enum{Start: 6, Width: 2, Entries: carrSolnEntries}

	f := e.Decode(0b1100_0000)
	require.Equal(t, "11", f.Bits)
	require.Equal(t, uint8(3), f.Value)
	require.Empty(t, f.Name)
	require.Empty(t, f.Description)
	require.False(t, f.Known())
	require.Equal(t, "unspecified (0b11)", f.String())
}

func TestEnumLookup_OrderedFirstMatch(t *testing.T) {
	e := Enum{Start: 0, Width: 1, Entries: []EnumEntry{
		{1, "first", ""},
		{1, "second", ""},
	}}
	entry, ok := e.Lookup(1)
	require.True(t, ok)
	require.Equal(t, "first", entry.Name)

	_, ok = e.Lookup(0)
	require.False(t, ok)
}

func TestEnumDecode_IgnoresNeighbouringBits(t *testing.T) {
	// spoofDetState lives in bits 3-4; every other bit set must not leak in
	f := statusSpoofDetEnum.Decode(0b1110_0111)
	require.Equal(t, "00", f.Bits)
	require.Equal(t, "unknown", f.Name)
}
