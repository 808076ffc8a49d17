// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"bufio"
	"io"
	"time"
)

// Framer implements the UBX frame decoder state machine. It consumes raw
// receiver bytes one at a time and emits checksum-verified frames.
type Framer struct {
	state     int
	class     uint8
	id        uint8
	length    int
	payload   []byte
	ck        checksumState
	ckA       uint8
	rawBuffer []byte // Accumulate raw bytes including sync chars
}

// NewFramer creates a new UBX framer
func NewFramer() *Framer {
	return &Framer{
		state:     stateSync1,
		rawBuffer: make([]byte, 0, 256),
	}
}

// Reset resets the framer state to waiting for a sync character
func (f *Framer) Reset() {
	f.state = stateSync1
	f.class = 0
	f.id = 0
	f.length = 0
	f.payload = nil
	f.ck.reset()
	f.rawBuffer = f.rawBuffer[:0]
}

// GetRawBytes returns the accumulated raw bytes of the frame in progress
func (f *Framer) GetRawBytes() []byte {
	return f.rawBuffer
}

// Synced reports whether the framer is inside a frame
func (f *Framer) Synced() bool {
	return f.state != stateSync1
}

// DecodeByte processes a single byte through the framer state machine.
// Returns a completed frame, or nil if the frame is incomplete.
// Returns a *FrameError if the length is invalid or the checksum fails.
func (f *Framer) DecodeByte(b byte) (*Frame, error) {
	f.rawBuffer = append(f.rawBuffer, b)

	switch f.state {
	case stateSync1:
		if b == SyncChar1 {
			f.rawBuffer = append(f.rawBuffer[:0], b)
			f.state = stateSync2
		} else {
			f.rawBuffer = f.rawBuffer[:0]
		}
		return nil, nil

	case stateSync2:
		switch b {
		case SyncChar2:
			f.ck.reset()
			f.state = stateClass
		case SyncChar1:
			// Stay in sync2: a repeated 0xB5 may start the real frame
			f.rawBuffer = append(f.rawBuffer[:0], b)
		default:
			f.Reset()
		}
		return nil, nil

	case stateClass:
		f.class = b
		f.ck.add(b)
		f.state = stateID
		return nil, nil

	case stateID:
		f.id = b
		f.ck.add(b)
		f.state = stateLength1
		return nil, nil

	case stateLength1:
		f.length = int(b)
		f.ck.add(b)
		f.state = stateLength2
		return nil, nil

	case stateLength2:
		f.length |= int(b) << 8
		f.ck.add(b)
		if f.length > MaxPayloadSize {
			err := &FrameError{Class: f.class, ID: f.id, Length: f.length, Err: ErrFrameTooLarge}
			f.Reset()
			return nil, err
		}
		f.payload = make([]byte, 0, f.length)
		if f.length == 0 {
			f.state = stateChecksumA
		} else {
			f.state = statePayload
		}
		return nil, nil

	case statePayload:
		f.payload = append(f.payload, b)
		f.ck.add(b)
		if len(f.payload) >= f.length {
			f.state = stateChecksumA
		}
		return nil, nil

	case stateChecksumA:
		f.ckA = b
		f.state = stateChecksumB
		return nil, nil

	case stateChecksumB:
		received := uint16(f.ckA)<<8 | uint16(b)
		expected := uint16(f.ck.a)<<8 | uint16(f.ck.b)
		if received != expected {
			err := &FrameError{
				Class:    f.class,
				ID:       f.id,
				Length:   f.length,
				Expected: expected,
				Received: received,
				Err:      ErrChecksum,
			}
			f.Reset()
			return nil, err
		}
		frame := &Frame{
			Class:    f.class,
			ID:       f.id,
			Payload:  f.payload,
			Received: time.Now(),
		}
		f.Reset()
		return frame, nil

	default:
		f.Reset()
		return nil, nil
	}
}

// Reader pulls frames out of a byte stream.
type Reader struct {
	r      *bufio.Reader
	framer *Framer

	// Skipped counts bytes discarded while hunting for a sync pair
	Skipped int
}

// NewReader wraps r in a frame reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:      bufio.NewReaderSize(r, 4096),
		framer: NewFramer(),
	}
}

// ReadFrame returns the next complete frame. A *FrameError is returned for a
// corrupt frame; the reader stays usable and the next call resumes scanning.
// io.EOF is returned once the underlying reader is exhausted.
func (r *Reader) ReadFrame() (*Frame, error) {
	for {
		b, err := r.r.ReadByte()
		if err != nil {
			return nil, err
		}
		wasSynced := r.framer.Synced()
		frame, ferr := r.framer.DecodeByte(b)
		if ferr != nil {
			return nil, ferr
		}
		if frame != nil {
			return frame, nil
		}
		if !wasSynced && !r.framer.Synced() {
			r.Skipped++
		}
	}
}
