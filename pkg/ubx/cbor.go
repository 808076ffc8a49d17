// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Record is the archived form of a decoded message: the message plus the
// frame identity it was decoded from.
type Record struct {
	Type     string    `cbor:"type" json:"type"`
	Class    uint8     `cbor:"class" json:"class"`
	ID       uint8     `cbor:"id" json:"id"`
	Received time.Time `cbor:"received" json:"received"`
	Message  Message   `cbor:"message" json:"message"`
}

// NewRecord builds a record for a decoded frame
func NewRecord(f *Frame, m Message) *Record {
	return &Record{
		Type:     m.MessageType(),
		Class:    f.Class,
		ID:       f.ID,
		Received: f.Received,
		Message:  m,
	}
}

type rawRecord struct {
	Type     string          `cbor:"type"`
	Class    uint8           `cbor:"class"`
	ID       uint8           `cbor:"id"`
	Received time.Time       `cbor:"received"`
	Message  cbor.RawMessage `cbor:"message"`
}

var (
	recordEncMode cbor.EncMode
	recordDecMode cbor.DecMode
)

func init() {
	var err error
	recordEncMode, err = cbor.EncOptions{
		Time:    cbor.TimeRFC3339Nano,
		TimeTag: cbor.EncTagRequired,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	recordDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// newMessage returns an empty message of the named type
func newMessage(typ string) (Message, bool) {
	switch typ {
	case TypeNavStatus:
		return &NavStatus{}, true
	case TypeNavPosLLH:
		return &NavPosLLH{}, true
	case TypeNavVelNED:
		return &NavVelNED{}, true
	case TypeNavSat:
		return &NavSat{}, true
	case TypeNavSig:
		return &NavSig{}, true
	case TypeNavPVT:
		return &NavPVT{}, true
	case TypeNavHPPosLLH:
		return &NavHPPosLLH{}, true
	case TypeNavRelPosNED:
		return &NavRelPosNED{}, true
	case TypeNavEOE:
		return &NavEOE{}, true
	case TypeMonVer:
		return &MonVer{}, true
	case TypeMonRF:
		return &MonRF{}, true
	}
	return nil, false
}

// MarshalRecordCBOR encodes a record as a single CBOR data item
func MarshalRecordCBOR(r *Record) ([]byte, error) {
	data, err := recordEncMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR record: %w", err)
	}
	return data, nil
}

// UnmarshalRecordCBOR decodes a record produced by MarshalRecordCBOR
func UnmarshalRecordCBOR(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty CBOR record")
	}

	var raw rawRecord
	if err := recordDecMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR record: %w", err)
	}

	m, ok := newMessage(raw.Type)
	if !ok {
		return nil, fmt.Errorf("unknown record type %q", raw.Type)
	}
	if err := recordDecMode.Unmarshal(raw.Message, m); err != nil {
		return nil, fmt.Errorf("failed to decode %s message: %w", raw.Type, err)
	}

	return &Record{
		Type:     raw.Type,
		Class:    raw.Class,
		ID:       raw.ID,
		Received: raw.Received,
		Message:  m,
	}, nil
}

// NewRecordDecoder returns a streaming decoder for a CBOR sequence of records
func NewRecordDecoder(data []byte) *RecordDecoder {
	return &RecordDecoder{rest: data}
}

// RecordDecoder reads consecutive records from a CBOR sequence
type RecordDecoder struct {
	rest []byte
}

// Next returns the next record; ok is false once the input is exhausted
func (d *RecordDecoder) Next() (r *Record, ok bool, err error) {
	if len(d.rest) == 0 {
		return nil, false, nil
	}
	var raw cbor.RawMessage
	rest, err := recordDecMode.UnmarshalFirst(d.rest, &raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to split CBOR sequence: %w", err)
	}
	d.rest = rest
	r, err = UnmarshalRecordCBOR(raw)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}
