// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sextant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_EmptyPathDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, DefaultBaud, cfg.Connection.Baud)
	require.Equal(t, DefaultTimeout, cfg.Connection.Timeout)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "text", cfg.Log.Format)
	require.Equal(t, "ubx", cfg.Record.NATSSubject)
	require.Equal(t, ":8080", cfg.Web.Listen)
}

func TestLoad_File(t *testing.T) {
	path := writeTempConfig(t, `
connection:
  port: /dev/ttyACM0
  baud: 38400
  timeout: 2s
log:
  level: debug
  format: json
record:
  jsonl: out.jsonl
  sqlite: out.db
  nats_url: nats://127.0.0.1:4222
web:
  listen: 127.0.0.1:9000
tables:
  RXM-PMREQ: [2, 65]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM0", cfg.Connection.Port)
	require.Equal(t, 38400, cfg.Connection.Baud)
	require.Equal(t, 2*time.Second, cfg.Connection.Timeout)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "out.jsonl", cfg.Record.JSONL)
	require.Equal(t, "out.db", cfg.Record.SQLite)
	require.Equal(t, "ubx", cfg.Record.NATSSubject)
	require.Equal(t, "127.0.0.1:9000", cfg.Web.Listen)
	require.Equal(t, map[string][2]uint8{"RXM-PMREQ": {2, 0x41}}, cfg.MessageKeys())

	log := cfg.Logger()
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, isJSON := log.Formatter.(*logrus.JSONFormatter)
	require.True(t, isJSON)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{"bad level", "log:\n  level: loud\n", "log.level: not a valid logrus Level: \"loud\""},
		{"bad format", "log:\n  format: xml\n", "log.format must be text or json"},
		{"negative baud", "connection:\n  baud: -1\n", "connection.baud must be > 0"},
		{"two sources", "connection:\n  port: /dev/ttyUSB0\n  file: capture.ubx\n",
			"connection.port, connection.url and connection.file are mutually exclusive"},
		{"short key", "tables:\n  X: [1]\n", "tables.X must be [class, id]"},
		{"wide key", "tables:\n  X: [1, 300]\n", "tables.X: 300 is not a byte value"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.contents))
			require.EqualError(t, err, tc.want)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeTempConfig(t, "connection: [\n"))
	require.Error(t, err)
}
