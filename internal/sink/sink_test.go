// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sink

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var received = time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

func pvtRecord(fix bool) *ubx.Record {
	m := &ubx.NavPVT{
		Envelope: ubx.Envelope{Type: ubx.TypeNavPVT, ITOW: 302400000, Timestamp: received},
		Data: ubx.NavPVTData{
			ITOW:   302400000,
			Lat:    47.3977419,
			Lon:    8.5455938,
			Height: 500000,
			HAcc:   1200,
			NumSV:  14,
		},
	}
	if fix {
		m.Data.FixType = ubx.EnumField{Bits: "00000011", Value: 3, Name: "3d-fix"}
		m.Data.Flags.GNSSFixOK = true
	}
	return &ubx.Record{Type: ubx.TypeNavPVT, Class: ubx.ClassNAV, ID: ubx.IDNavPVT, Received: received, Message: m}
}

func verRecord() *ubx.Record {
	m := &ubx.MonVer{Type: ubx.TypeMonVer, Data: ubx.MonVerData{SwVersion: "ROM SPG 5.10", HwVersion: "000A0000", Extensions: []string{}}}
	return &ubx.Record{Type: ubx.TypeMonVer, Class: ubx.ClassMON, ID: ubx.IDMonVer, Received: received, Message: m}
}

// ============================================================
// JSONL / CBOR
// ============================================================

func TestJSONL(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONL(&buf)
	require.NoError(t, s.Write(pvtRecord(true)))
	require.NoError(t, s.Write(verRecord()))
	require.NoError(t, s.Close())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, ubx.TypeNavPVT, first["type"])
	msg := first["message"].(map[string]any)
	assert.Equal(t, float64(302400000), msg["iTOW"])
}

func TestCBORSequence(t *testing.T) {
	var buf bytes.Buffer
	s := NewCBOR(&buf)
	require.NoError(t, s.Write(pvtRecord(true)))
	require.NoError(t, s.Write(verRecord()))
	require.NoError(t, s.Close())

	dec := ubx.NewRecordDecoder(buf.Bytes())
	var types []string
	for {
		rec, ok, err := dec.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		types = append(types, rec.Type)
	}
	assert.Equal(t, []string{ubx.TypeNavPVT, ubx.TypeMonVer}, types)
}

func TestOpenJSONLAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")

	for i := 0; i < 2; i++ {
		s, err := OpenJSONL(path)
		require.NoError(t, err)
		require.NoError(t, s.Write(verRecord()))
		require.NoError(t, s.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count(data, []byte("\n")))
}

// ============================================================
// SQLite
// ============================================================

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "ubx.db"))
	require.NoError(t, err)
	defer s.Close()

	fix, err := s.LatestFix()
	require.NoError(t, err)
	assert.Nil(t, fix)

	require.NoError(t, s.Write(pvtRecord(true)))
	require.NoError(t, s.Write(pvtRecord(false)))
	require.NoError(t, s.Write(verRecord()))

	n, err := s.Count("")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Count(ubx.TypeNavPVT)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	fix, err = s.LatestFix()
	require.NoError(t, err)
	require.NotNil(t, fix)
	assert.Equal(t, ubx.TypeNavPVT, fix.Type)
	assert.Equal(t, uint32(302400000), fix.ITOW)
	assert.InDelta(t, 47.3977419, fix.Lat, 1e-9)
	assert.InDelta(t, 8.5455938, fix.Lon, 1e-9)
	assert.Equal(t, "3d-fix", fix.FixType)
	assert.Equal(t, 14, fix.NumSV)
	assert.True(t, fix.Received.Equal(received))
}

func TestSQLiteHighPrecisionFix(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "ubx.db"))
	require.NoError(t, err)
	defer s.Close()

	m := &ubx.NavHPPosLLH{
		Envelope: ubx.Envelope{Type: ubx.TypeNavHPPosLLH, ITOW: 1000},
		Data: ubx.NavHPPosLLHData{
			ITOW:   1000,
			Lat:    ubx.Nanodegrees(473977419_05),
			Lon:    ubx.Nanodegrees(85455938_00),
			Height: ubx.Decimillimeters(5_000_005),
			HAcc:   ubx.Decimillimeters(141),
		},
	}
	rec := &ubx.Record{Type: ubx.TypeNavHPPosLLH, Class: ubx.ClassNAV, ID: ubx.IDNavHPPosLLH, Received: received, Message: m}
	require.NoError(t, s.Write(rec))

	fix, err := s.LatestFix()
	require.NoError(t, err)
	require.NotNil(t, fix)
	assert.InDelta(t, 47.397741905, fix.Lat, 1e-12)
	assert.InDelta(t, 500000.5, fix.HeightMM, 1e-9)
	assert.InDelta(t, 14.1, fix.HAccMM, 1e-9)
	assert.Empty(t, fix.FixType)
}

// ============================================================
// NATS
// ============================================================

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestNATSSubjects(t *testing.T) {
	pub := &fakePublisher{}
	s := &NATS{pub: pub, subject: "ubx"}

	require.NoError(t, s.Write(pvtRecord(true)))
	require.NoError(t, s.Write(verRecord()))
	require.NoError(t, s.Close())

	assert.Equal(t, []string{"ubx.NAV-PVT", "ubx.MON-VER"}, pub.subjects)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(pub.payloads[1], &rec))
	assert.Equal(t, "MON-VER", rec["type"])
}

func TestNATSPublishError(t *testing.T) {
	s := &NATS{pub: &fakePublisher{err: errors.New("no responders")}, subject: "ubx"}
	err := s.Write(verRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish MON-VER")
}

// ============================================================
// Multi
// ============================================================

type failingSink struct{ closed bool }

func (f *failingSink) Write(*ubx.Record) error { return errors.New("disk full") }
func (f *failingSink) Close() error            { f.closed = true; return nil }

func TestMultiContinuesPastFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	pub := &fakePublisher{}
	bad := &failingSink{}

	m := NewMulti(log, bad)
	m.Add(&NATS{pub: pub, subject: "gnss"})
	require.Equal(t, 2, m.Len())

	err := m.Write(verRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"gnss.MON-VER"}, pub.subjects)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, ubx.TypeMonVer, hook.LastEntry().Data["type"])

	require.NoError(t, m.Close())
	assert.True(t, bad.closed)
}
