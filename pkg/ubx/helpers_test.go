// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"encoding/binary"
	"time"
)

// ============================================================
// Payload Test Helpers
// ============================================================

// testClock pins timestamps to GPS week 2296 (2024-01-07)
var testClock = FixedClock(time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC))

var testContext = DecodeContext{Timebase: NewTimebase(testClock)}

// payloadBuilder writes little-endian fields into a zeroed buffer
type payloadBuilder []byte

func newPayload(n int) payloadBuilder {
	return make(payloadBuilder, n)
}

func (p payloadBuilder) u1(off int, v uint8) payloadBuilder {
	p[off] = v
	return p
}

func (p payloadBuilder) i1(off int, v int8) payloadBuilder {
	p[off] = byte(v)
	return p
}

func (p payloadBuilder) u2(off int, v uint16) payloadBuilder {
	binary.LittleEndian.PutUint16(p[off:], v)
	return p
}

func (p payloadBuilder) i2(off int, v int16) payloadBuilder {
	return p.u2(off, uint16(v))
}

func (p payloadBuilder) u4(off int, v uint32) payloadBuilder {
	binary.LittleEndian.PutUint32(p[off:], v)
	return p
}

func (p payloadBuilder) i4(off int, v int32) payloadBuilder {
	return p.u4(off, uint32(v))
}

func (p payloadBuilder) str(off int, s string) payloadBuilder {
	copy(p[off:], s)
	return p
}

// mustEncode builds a wire frame or panics
func mustEncode(class, id uint8, payload []byte) []byte {
	data, err := EncodeFrame(class, id, payload)
	if err != nil {
		panic(err)
	}
	return data
}
