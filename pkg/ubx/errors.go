// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks
var (
	ErrShortPayload  = errors.New("payload too short")
	ErrChecksum      = errors.New("checksum mismatch")
	ErrFrameTooLarge = errors.New("frame length exceeds limit")
)

// DecodeError reports a payload that is too short for the field a decoder
// needed to read. It is scoped to a single frame; the stream can continue.
type DecodeError struct {
	Type   string // message type, e.g. "NAV-PVT"
	Field  string // first field that could not be read
	Offset int    // byte offset of that field
	Need   int    // payload bytes required
	Have   int    // payload bytes available
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: payload too short for %s at offset %d: need %d bytes, have %d",
		e.Type, e.Field, e.Offset, e.Need, e.Have)
}

// Unwrap allows errors.Is(err, ErrShortPayload)
func (e *DecodeError) Unwrap() error {
	return ErrShortPayload
}

// FrameError reports a framing failure: bad checksum or oversize length.
type FrameError struct {
	Class    uint8
	ID       uint8
	Length   int
	Expected uint16 // checksum computed over the frame
	Received uint16 // checksum carried by the frame
	Err      error
}

// Error implements the error interface
func (e *FrameError) Error() string {
	switch {
	case errors.Is(e.Err, ErrChecksum):
		return fmt.Sprintf("checksum mismatch for %s (0x%02X 0x%02X): expected 0x%04X, got 0x%04X",
			MessageName(e.Class, e.ID), e.Class, e.ID, e.Expected, e.Received)
	case errors.Is(e.Err, ErrFrameTooLarge):
		return fmt.Sprintf("invalid length for %s (0x%02X 0x%02X): %d (max %d)",
			MessageName(e.Class, e.ID), e.Class, e.ID, e.Length, MaxPayloadSize)
	default:
		return fmt.Sprintf("frame error for 0x%02X 0x%02X: %v", e.Class, e.ID, e.Err)
	}
}

// Unwrap returns the underlying sentinel
func (e *FrameError) Unwrap() error {
	return e.Err
}
