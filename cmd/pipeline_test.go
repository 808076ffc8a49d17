// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Thermoquad/sextant/internal/config"
	"github.com/Thermoquad/sextant/internal/sink"
	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	records []*ubx.Record
}

func (m *memorySink) Write(rec *ubx.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memorySink) Close() error { return nil }

func frame(t *testing.T, class, id uint8, payload []byte) []byte {
	t.Helper()
	data, err := ubx.EncodeFrame(class, id, payload)
	require.NoError(t, err)
	return data
}

// testStream is NMEA noise, NAV-EOE, a corrupt frame, an unknown frame,
// a short NAV-PVT and a second NAV-EOE
func testStream(t *testing.T) []byte {
	eoe := frame(t, ubx.ClassNAV, ubx.IDNavEOE, []byte{0xE8, 0x03, 0x00, 0x00})
	corrupt := append([]byte(nil), eoe...)
	corrupt[len(corrupt)-1] ^= 0xFF

	var stream []byte
	stream = append(stream, "$GPGGA,,,,*66\r\n"...)
	stream = append(stream, eoe...)
	stream = append(stream, corrupt...)
	stream = append(stream, frame(t, ubx.ClassMON, 0x09, make([]byte, 60))...) // MON-HW
	stream = append(stream, frame(t, ubx.ClassNAV, ubx.IDNavPVT, make([]byte, 50))...)
	stream = append(stream, eoe...)
	return stream
}

func newTestPipeline(t *testing.T, out *memorySink) (*pipeline, *ubx.Statistics) {
	t.Helper()
	cfg = config.Default()
	logger, _ := test.NewNullLogger()
	stats := ubx.NewStatistics()
	var s sink.Sink
	if out != nil {
		s = out
	}
	pl, err := newPipeline(stats, s, logger)
	require.NoError(t, err)
	return pl, stats
}

func TestPipelineRun(t *testing.T) {
	out := &memorySink{}
	pl, stats := newTestPipeline(t, out)

	var syncs []syncEvent
	pl.onSync = func(ev syncEvent) { syncs = append(syncs, ev) }

	var events []frameEvent
	err := pl.run(context.Background(), io.NopCloser(bytes.NewReader(testStream(t))), func(ev frameEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	require.Len(t, syncs, 1)
	assert.Equal(t, len("$GPGGA,,,,*66\r\n"), syncs[0].skipped)

	require.Len(t, events, 5)
	assert.Equal(t, ubx.TypeNavEOE, events[0].msg.MessageType())
	assert.ErrorIs(t, events[1].frameErr, ubx.ErrChecksum)
	require.NotNil(t, events[2].unknown)
	assert.Equal(t, "MON-HW", events[2].unknown.Name)
	assert.ErrorIs(t, events[3].decodeErr, ubx.ErrShortPayload)
	require.Len(t, events[3].validation, 1)
	assert.Equal(t, ubx.AnomalyShortPayload, events[3].validation[0].Type)
	assert.Equal(t, ubx.TypeNavEOE, events[4].msg.MessageType())

	// only decoded messages are archived
	require.Len(t, out.records, 2)
	assert.Equal(t, ubx.TypeNavEOE, out.records[0].Type)

	snap := stats.Snapshot()
	assert.Equal(t, uint64(5), snap.TotalFrames)
	assert.Equal(t, uint64(2), snap.ValidFrames)
	assert.Equal(t, uint64(1), snap.ChecksumErrors)
	assert.Equal(t, uint64(1), snap.UnknownFrames)
	assert.Equal(t, uint64(1), snap.DecodeErrors)
}

func TestPipelineSkippedBytes(t *testing.T) {
	eoe := frame(t, ubx.ClassNAV, ubx.IDNavEOE, []byte{0xE8, 0x03, 0x00, 0x00})
	corrupt := append([]byte(nil), eoe...)
	corrupt[len(corrupt)-1] ^= 0xFF

	tests := []struct {
		name    string
		stream  [][]byte
		sync    int
		skipped uint64
		errors  int
	}{
		{
			name:    "corrupt frame before sync",
			stream:  [][]byte{[]byte("xx"), corrupt, eoe},
			sync:    2 + len(corrupt),
			skipped: uint64(2 + len(corrupt)),
		},
		{
			name:    "lone sync char",
			stream:  [][]byte{{ubx.SyncChar1, 0x00, 0x01}, eoe},
			sync:    3,
			skipped: 3,
		},
		{
			name:    "noise between frames",
			stream:  [][]byte{eoe, []byte("abcd"), eoe},
			skipped: 4,
		},
		{
			name:    "corrupt frame after sync",
			stream:  [][]byte{eoe, []byte("ab"), corrupt, eoe},
			skipped: 2,
			errors:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, stats := newTestPipeline(t, nil)
			var syncs []syncEvent
			pl.onSync = func(ev syncEvent) { syncs = append(syncs, ev) }

			frameErrors := 0
			err := pl.run(context.Background(), io.NopCloser(bytes.NewReader(bytes.Join(tt.stream, nil))), func(ev frameEvent) {
				if ev.frameErr != nil {
					frameErrors++
				}
			})
			require.NoError(t, err)

			require.Len(t, syncs, 1)
			assert.Equal(t, tt.sync, syncs[0].skipped)
			assert.Equal(t, tt.skipped, stats.Snapshot().SkippedBytes)
			assert.Equal(t, tt.errors, frameErrors)
		})
	}
}

func TestPipelineCancel(t *testing.T) {
	pl, _ := newTestPipeline(t, nil)
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- pl.run(ctx, r, func(frameEvent) {})
	}()

	cancel()
	assert.NoError(t, <-done)
}

func TestPipelineExtraTables(t *testing.T) {
	pl, _ := newTestPipeline(t, nil)
	cfg.Tables = map[string][]int{"ACME-STATUS": {0xF1, 0x01}}
	pl, err := newPipeline(nil, nil, pl.log)
	require.NoError(t, err)

	ev := pl.process(ubx.NewFrame(0xF1, 0x01, []byte{1, 2, 3}))
	require.NotNil(t, ev.unknown)
	assert.Equal(t, "ACME-STATUS", ev.unknown.Name)
}

func TestFileConnection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.ubx")
	require.NoError(t, os.WriteFile(path, testStream(t), 0o644))

	conn, err := OpenFileConnection(path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte{0})
	assert.ErrorIs(t, err, ErrReadOnly)

	pl, stats := newTestPipeline(t, nil)
	require.NoError(t, pl.run(context.Background(), conn, func(frameEvent) {}))
	assert.Equal(t, uint64(5), stats.Snapshot().TotalFrames)
}

func TestWebSocketConnection(t *testing.T) {
	stream := testStream(t)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		// frames split across messages, with a text message in between
		_ = c.WriteMessage(websocket.BinaryMessage, stream[:20])
		_ = c.WriteMessage(websocket.TextMessage, []byte("hello"))
		_ = c.WriteMessage(websocket.BinaryMessage, stream[20:])
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	cc := config.Default().Connection
	cc.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := OpenWebSocketConnection(cc, "")
	require.NoError(t, err)
	defer conn.Close()

	pl, stats := newTestPipeline(t, nil)
	require.NoError(t, pl.run(context.Background(), conn, func(frameEvent) {}))
	assert.Equal(t, uint64(2), stats.Snapshot().ValidFrames)

	_, err = conn.Read(make([]byte, 8))
	assert.True(t, errors.Is(err, ErrConnectionClosed))
}

func TestWebSocketConnectionShortReads(t *testing.T) {
	payload := []byte("0123456789")
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.WriteMessage(websocket.BinaryMessage, payload)
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer srv.Close()

	cc := config.Default().Connection
	cc.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := OpenWebSocketConnection(cc, "")
	require.NoError(t, err)
	defer conn.Close()

	var got []byte
	buf := make([]byte, 4)
	for _, want := range []int{4, 4, 2} {
		n, err := conn.Read(buf)
		require.NoError(t, err)
		require.Equal(t, want, n)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, payload, got)

	// the failure is sticky
	_, err = conn.Read(buf)
	require.ErrorIs(t, err, ErrConnectionClosed)
	_, err = conn.Read(buf)
	require.ErrorIs(t, err, ErrConnectionClosed)
}

func TestGetPasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "hunter2")
	pw, err := GetPassword()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestDecodeOne(t *testing.T) {
	cfg = config.Default()
	d, err := newDispatcher()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, decodeOne(&buf, d, "B5 62 01 61 04 00 E8 03 00 00 51 70"))
	assert.Contains(t, buf.String(), "NAV-EOE (0x01 0x61) len=4")
	assert.Contains(t, buf.String(), "iTOW: 1000 ms")

	err = decodeOne(&buf, d, "B5 62 01 61 04 00 E8 03 00 00 51 71")
	assert.ErrorIs(t, err, ubx.ErrChecksum)

	decodeMessage = "nav-eoe"
	defer func() { decodeMessage = "" }()
	buf.Reset()
	require.NoError(t, decodeOne(&buf, d, "e8030000"))
	assert.Contains(t, buf.String(), "iTOW: 1000 ms")
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		ms   uint64
		want string
	}{
		{0, "0 seconds"},
		{1000, "1 second"},
		{61000, "1 minute and 1 second"},
		{2*24*3600*1000 + 3*3600*1000 + 4*60*1000, "2 days, 3 hours and 4 minutes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUptime(tt.ms))
	}
}
