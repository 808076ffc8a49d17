// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"encoding/json"
	"math/big"
	"time"
)

// Message is a decoded UBX record. The concrete type is one of *NavStatus,
// *NavPosLLH, *NavVelNED, *NavSat, *NavSig, *NavPVT, *NavHPPosLLH,
// *NavRelPosNED, *NavEOE, *MonVer or *MonRF.
type Message interface {
	MessageType() string
}

// Envelope carries the fields common to all navigation messages
type Envelope struct {
	Type      string    `json:"type"`
	ITOW      uint32    `json:"iTOW"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageType returns the message type tag
func (e Envelope) MessageType() string {
	return e.Type
}

// TimeOfWeek returns the receiver time of week in milliseconds
func (e Envelope) TimeOfWeek() uint32 {
	return e.ITOW
}

func newEnvelope(typ string, itow uint32, tb Timebase) Envelope {
	return Envelope{Type: typ, ITOW: itow, Timestamp: tb.Timestamp(itow)}
}

// TimeOfWeek returns the iTOW of a navigation message
func TimeOfWeek(m Message) (uint32, bool) {
	if t, ok := m.(interface{ TimeOfWeek() uint32 }); ok {
		return t.TimeOfWeek(), true
	}
	return 0, false
}

// DecodeContext carries the read-only collaborators of a decode call.
// The zero value uses the system clock and the default tables.
type DecodeContext struct {
	Timebase Timebase
	Tables   *Tables
}

func (dc DecodeContext) tables() *Tables {
	if dc.Tables == nil {
		return defaultTables
	}
	return dc.Tables
}

// Nanodegrees is an angle in units of 1e-9 degree, the resolution of the
// high-precision position messages.
type Nanodegrees int64

// Degrees returns the angle in degrees
func (n Nanodegrees) Degrees() float64 {
	return float64(n) / 1e9
}

// Rat returns the exact angle in degrees
func (n Nanodegrees) Rat() *big.Rat {
	return big.NewRat(int64(n), 1_000_000_000)
}

// MarshalJSON renders the value in degrees
func (n Nanodegrees) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Degrees())
}

// Decimillimeters is a length in units of 0.1 mm
type Decimillimeters int64

// Millimeters returns the length in millimeters
func (d Decimillimeters) Millimeters() float64 {
	return float64(d) / 10
}

// Rat returns the exact length in millimeters
func (d Decimillimeters) Rat() *big.Rat {
	return big.NewRat(int64(d), 10)
}

// MarshalJSON renders the value in millimeters
func (d Decimillimeters) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Millimeters())
}

// mergeDegrees combines a 1e-7 degree coarse part with a 1e-9 degree residual
func mergeDegrees(coarse int32, residual int8) Nanodegrees {
	return Nanodegrees(int64(coarse)*100 + int64(residual))
}

// mergeMillimeters combines a 1 mm coarse part with a 0.1 mm residual
func mergeMillimeters(coarse int32, residual int8) Decimillimeters {
	return Decimillimeters(int64(coarse)*10 + int64(residual))
}

// mergeCentimeters combines a 1 cm coarse part with a 0.1 mm residual
func mergeCentimeters(coarse int32, residual int8) Decimillimeters {
	return Decimillimeters(int64(coarse)*100 + int64(residual))
}

// scale converts a raw fixed-point integer
func scale(raw int64, factor float64) float64 {
	return float64(raw) * factor
}
