// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sink

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"

	_ "modernc.org/sqlite"
)

// Fix is one stored position solution
type Fix struct {
	Received time.Time
	Type     string
	ITOW     uint32
	Lat      float64
	Lon      float64
	HeightMM float64
	HAccMM   float64
	FixType  string
	NumSV    int
}

// SQLite stores every record in a messages table and position solutions in
// a fixes table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates a database at path
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		received TEXT NOT NULL,
		type TEXT NOT NULL,
		class INTEGER NOT NULL,
		msg_id INTEGER NOT NULL,
		itow INTEGER,
		json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_type ON messages(type);
	CREATE INDEX IF NOT EXISTS idx_messages_received ON messages(received);

	CREATE TABLE IF NOT EXISTS fixes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		received TEXT NOT NULL,
		type TEXT NOT NULL,
		itow INTEGER NOT NULL,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		height_mm REAL NOT NULL,
		h_acc_mm REAL NOT NULL,
		fix_type TEXT,
		num_sv INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_fixes_itow ON fixes(itow);
	`
	_, err := db.Exec(schema)
	return err
}

// Close implements Sink
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Write implements Sink
func (s *SQLite) Write(rec *ubx.Record) error {
	body, err := json.Marshal(rec.Message)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", rec.Type, err)
	}

	var itow sql.NullInt64
	if v, ok := ubx.TimeOfWeek(rec.Message); ok {
		itow = sql.NullInt64{Int64: int64(v), Valid: true}
	}

	received := rec.Received.UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(
		`INSERT INTO messages (received, type, class, msg_id, itow, json) VALUES (?, ?, ?, ?, ?, ?)`,
		received, rec.Type, rec.Class, rec.ID, itow, string(body))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	fix, ok := fixFromMessage(rec.Message)
	if !ok {
		return nil
	}
	_, err = s.db.Exec(
		`INSERT INTO fixes (received, type, itow, lat, lon, height_mm, h_acc_mm, fix_type, num_sv)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		received, rec.Type, fix.ITOW, fix.Lat, fix.Lon, fix.HeightMM, fix.HAccMM, fix.FixType, fix.NumSV)
	if err != nil {
		return fmt.Errorf("insert fix: %w", err)
	}
	return nil
}

// fixFromMessage extracts a usable position from NAV-PVT or NAV-HPPOSLLH
func fixFromMessage(m ubx.Message) (Fix, bool) {
	switch msg := m.(type) {
	case *ubx.NavPVT:
		if !msg.Data.HasFix() {
			return Fix{}, false
		}
		d := msg.Data
		return Fix{
			ITOW:     d.ITOW,
			Lat:      d.Lat,
			Lon:      d.Lon,
			HeightMM: float64(d.Height),
			HAccMM:   float64(d.HAcc),
			FixType:  d.FixType.Name,
			NumSV:    int(d.NumSV),
		}, true
	case *ubx.NavHPPosLLH:
		if msg.Data.Flags.InvalidLlh {
			return Fix{}, false
		}
		d := msg.Data
		return Fix{
			ITOW:     d.ITOW,
			Lat:      d.Lat.Degrees(),
			Lon:      d.Lon.Degrees(),
			HeightMM: d.Height.Millimeters(),
			HAccMM:   d.HAcc.Millimeters(),
		}, true
	}
	return Fix{}, false
}

// Count returns the number of stored messages of a type; "" counts all
func (s *SQLite) Count(typ string) (int, error) {
	var n int
	var err error
	if typ == "" {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE type = ?`, typ).Scan(&n)
	}
	return n, err
}

// LatestFix returns the most recently stored fix
func (s *SQLite) LatestFix() (*Fix, error) {
	var f Fix
	var received string
	var fixType sql.NullString
	var numSV sql.NullInt64
	err := s.db.QueryRow(`
		SELECT received, type, itow, lat, lon, height_mm, h_acc_mm, fix_type, num_sv
		FROM fixes ORDER BY id DESC LIMIT 1`).
		Scan(&received, &f.Type, &f.ITOW, &f.Lat, &f.Lon, &f.HeightMM, &f.HAccMM, &fixType, &numSV)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Received, _ = time.Parse(time.RFC3339Nano, received)
	f.FixType = fixType.String
	f.NumSV = int(numSV.Int64)
	return &f, nil
}
