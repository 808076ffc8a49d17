// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// ============================================================
// MON-VER
// ============================================================

func TestDecodeMonVer_NoExtensions(t *testing.T) {
	payload := newPayload(40).
		str(0, "ROM CORE 3.01 (107888)").
		str(30, "00080000")

	m, err := DecodeMonVer(payload, testContext)
	require.NoError(t, err)
	require.Equal(t, TypeMonVer, m.MessageType())
	require.Equal(t, "ROM CORE 3.01 (107888)", m.Data.SwVersion)
	require.Equal(t, "00080000", m.Data.HwVersion)
	require.NotNil(t, m.Data.Extensions)
	require.Empty(t, m.Data.Extensions)

	_, ok := TimeOfWeek(m)
	require.False(t, ok)
}

func TestDecodeMonVer_OneExtension(t *testing.T) {
	payload := newPayload(70).
		str(0, "EXT CORE 1.00 (61ce84)").
		str(30, "00190000").
		str(40, "PROTVER=18.00")

	m, err := DecodeMonVer(payload, testContext)
	require.NoError(t, err)
	require.Equal(t, []string{"PROTVER=18.00"}, m.Data.Extensions)

	v, ok := m.Data.Extension("PROTVER")
	require.True(t, ok)
	require.Equal(t, "18.00", v)

	_, ok = m.Data.Extension("FWVER")
	require.False(t, ok)
}

func TestDecodeMonVer_PartialExtension(t *testing.T) {
	payload := newPayload(45).str(40, "FWVER")

	m, err := DecodeMonVer(payload, testContext)
	require.NoError(t, err)
	require.Equal(t, []string{"FWVER"}, m.Data.Extensions)
}

func TestDecodeMonVer_KeepsInteriorNul(t *testing.T) {
	payload := newPayload(40).str(0, "A\x00B")

	m, err := DecodeMonVer(payload, testContext)
	require.NoError(t, err)
	require.Equal(t, "A\x00B", m.Data.SwVersion)
}

func TestDecodeMonVer_TooShort(t *testing.T) {
	_, err := DecodeMonVer(newPayload(39), testContext)
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "hwVersion", de.Field)
	require.Equal(t, 30, de.Offset)
	require.Equal(t, 40, de.Need)
}

// ============================================================
// MON-RF
// ============================================================

func TestDecodeMonRF(t *testing.T) {
	payload := newPayload(4+24).
		u1(0, 0).
		u1(1, 1).
		u1(4, 0).
		u1(5, 0x02).
		u1(6, 0x02).
		u1(7, 0x03).
		u4(8, 0).
		u2(16, 90).
		u2(18, 5000).
		u1(20, 20).
		i1(21, -3).
		u1(22, 120).
		i1(23, 4).
		u1(24, 130)

	m, err := DecodeMonRF(payload, testContext)
	require.NoError(t, err)
	require.Equal(t, TypeMonRF, m.MessageType())
	require.Len(t, m.Data.Blocks, 1)

	b := m.Data.Blocks[0]
	require.Equal(t, "warning", b.JammingState.Name)
	require.Equal(t, "ok", b.AntStatus.Name)
	require.Equal(t, uint8(3), b.AntPower.Value)
	require.False(t, b.AntPower.Known())
	require.Equal(t, uint16(90), b.NoisePerMS)
	require.Equal(t, uint16(5000), b.AgcCnt)
	require.Equal(t, uint8(20), b.JamInd)
	require.Equal(t, int8(-3), b.OfsI)
	require.Equal(t, uint8(120), b.MagI)
	require.Equal(t, int8(4), b.OfsQ)
	require.Equal(t, uint8(130), b.MagQ)
}

func TestDecodeMonRF_OtherVersionSkipsBlocks(t *testing.T) {
	m, err := DecodeMonRF(newPayload(4).u1(0, 1).u1(1, 2), testContext)
	require.NoError(t, err)
	require.Equal(t, uint8(1), m.Data.Version)
	require.Equal(t, uint8(2), m.Data.NBlocks)
	require.NotNil(t, m.Data.Blocks)
	require.Empty(t, m.Data.Blocks)
}

func TestDecodeMonRF_BlocksExceedPayload(t *testing.T) {
	_, err := DecodeMonRF(newPayload(28).u1(1, 2), testContext)
	require.ErrorIs(t, err, ErrShortPayload)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "blocks[2]", de.Field)
	require.Equal(t, 4, de.Offset)
	require.Equal(t, 52, de.Need)
	require.Equal(t, 28, de.Have)
}
