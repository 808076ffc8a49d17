// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
)

// EncodeFrame creates a complete wire-formatted UBX frame: sync chars,
// class, id, little-endian length, payload and checksum.
func EncodeFrame(class, id uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("payload too large: %d bytes (max %d)", len(payload), MaxPayloadSize)
	}

	buf := make([]byte, 0, HeaderSize+len(payload)+ChecksumSize)
	buf = append(buf, SyncChar1, SyncChar2, class, id)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(payload)))
	buf = append(buf, payload...)

	// Checksum covers everything after the sync chars
	ckA, ckB := Checksum(buf[2:])
	return append(buf, ckA, ckB), nil
}

// Encode encodes a Frame to wire format
func (f *Frame) Encode() ([]byte, error) {
	return EncodeFrame(f.Class, f.ID, f.Payload)
}

// ParseFrame parses exactly one complete wire frame.
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) < HeaderSize+ChecksumSize {
		return nil, fmt.Errorf("frame too short: %d bytes (min %d)", len(data), HeaderSize+ChecksumSize)
	}
	framer := NewFramer()
	for i, b := range data {
		frame, err := framer.DecodeByte(b)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			if i != len(data)-1 {
				return nil, fmt.Errorf("%d trailing bytes after frame", len(data)-1-i)
			}
			return frame, nil
		}
	}
	return nil, fmt.Errorf("incomplete frame: %d bytes", len(data))
}

// DecodeHex parses a hex string, ignoring whitespace and common separators.
func DecodeHex(raw string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '|', '_', ':', '-', ',':
			return -1
		}
		return r
	}, raw)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex string has odd length %d", len(clean))
	}
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}
