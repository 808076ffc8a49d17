// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatistics_Update(t *testing.T) {
	s := NewStatistics()

	eoe := NewFrame(ClassNAV, IDNavEOE, newPayload(4))
	s.Update(eoe, decodeFrame(t, eoe), nil, nil)

	short := NewFrame(ClassNAV, IDNavPVT, newPayload(10))
	_, err := DecodeNavPVT(short.Payload, testContext)
	s.Update(short, nil, err, ValidateDecodeError(err))

	s.Update(NewFrame(0x7F, 0x01, nil), nil, nil, nil)

	rf := NewFrame(ClassMON, IDMonRF, newPayload(4).u1(0, 2))
	m := decodeFrame(t, rf)
	s.Update(rf, m, nil, ValidateMessage(rf, m))

	s.RecordFrameError(&FrameError{Err: ErrChecksum})
	s.RecordFrameError(&FrameError{Err: ErrFrameTooLarge})
	s.RecordSkipped(7)
	s.RecordSkipped(0)

	snap := s.Snapshot()
	require.Equal(t, uint64(6), snap.TotalFrames)
	require.Equal(t, uint64(1), snap.ValidFrames)
	require.Equal(t, uint64(1), snap.UnknownFrames)
	require.Equal(t, uint64(1), snap.DecodeErrors)
	require.Equal(t, uint64(1), snap.ChecksumErrors)
	require.Equal(t, uint64(1), snap.FramingErrors)
	require.Equal(t, uint64(2), snap.Anomalous)
	require.Equal(t, uint64(7), snap.SkippedBytes)
	require.Equal(t, uint64(1), snap.ByType["NAV-EOE"])
	require.Equal(t, uint64(1), snap.ByType["NAV-PVT"])
	require.Equal(t, uint64(1), snap.ByType["MON-RF"])
	require.Equal(t, uint64(1), snap.Anomalies["short_payload"])
	require.Equal(t, uint64(1), snap.Anomalies["unknown_version"])
}

func TestStatistics_String(t *testing.T) {
	s := NewStatistics()
	eoe := NewFrame(ClassNAV, IDNavEOE, newPayload(4))
	s.Update(eoe, decodeFrame(t, eoe), nil, nil)
	s.RecordFrameError(&FrameError{Err: ErrChecksum})

	out := s.String()
	require.True(t, strings.HasPrefix(out, "=== Statistics"))
	require.Contains(t, out, "Total Frames:           2")
	require.Contains(t, out, "Checksum Errors:")
	require.Contains(t, out, "NAV-EOE:")
	require.NotContains(t, out, "Decode Errors:")
}

func TestStatistics_Reset(t *testing.T) {
	s := NewStatistics()
	s.RecordFrameError(&FrameError{Err: ErrChecksum})
	s.Reset()

	snap := s.Snapshot()
	require.Zero(t, snap.TotalFrames)
	require.Zero(t, snap.ChecksumErrors)
	require.Empty(t, snap.ByType)
}
