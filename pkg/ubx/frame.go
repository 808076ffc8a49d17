// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import "time"

// Frame is one checksum-verified UBX message as produced by the Framer.
// Decoders borrow the payload read-only for the duration of a decode call.
type Frame struct {
	Class   uint8
	ID      uint8
	Payload []byte

	// Received is the time the final checksum byte was accepted.
	Received time.Time
}

// NewFrame creates a frame with the given fields
func NewFrame(class, id uint8, payload []byte) *Frame {
	return &Frame{
		Class:    class,
		ID:       id,
		Payload:  payload,
		Received: time.Now(),
	}
}

// Key returns the frame's class/id lookup key
func (f *Frame) Key() MessageKey {
	return Key(f.Class, f.ID)
}

// Name returns the registry name of the frame type, or "UNKNOWN"
func (f *Frame) Name() string {
	return MessageName(f.Class, f.ID)
}

// Length returns the payload length
func (f *Frame) Length() int {
	return len(f.Payload)
}
