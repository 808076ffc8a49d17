// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"encoding/binary"
	"fmt"
)

// fieldReader performs bounds-checked little-endian reads on a payload. The
// first out-of-range read records a *DecodeError naming the field; later
// reads return zero and keep the first error.
type fieldReader struct {
	typ string
	buf []byte
	err *DecodeError
}

func newFieldReader(typ string, buf []byte) *fieldReader {
	return &fieldReader{typ: typ, buf: buf}
}

// check reports whether size bytes at off are readable
func (r *fieldReader) check(field string, off, size int) bool {
	return r.checkCount(field, -1, off, size)
}

// checkCount is check for a counted section; count >= 0 is appended to the
// field name of the error, which is only formatted on failure.
func (r *fieldReader) checkCount(field string, count, off, size int) bool {
	if r.err != nil {
		return false
	}
	if off < 0 || size < 0 || off+size > len(r.buf) {
		if count >= 0 {
			field = fmt.Sprintf("%s[%d]", field, count)
		}
		r.err = &DecodeError{
			Type:   r.typ,
			Field:  field,
			Offset: off,
			Need:   off + size,
			Have:   len(r.buf),
		}
		return false
	}
	return true
}

// need asserts that a count-bounded section fits in the payload
func (r *fieldReader) need(field string, off, count, stride int) bool {
	return r.checkCount(field, count, off, count*stride)
}

// Err returns the first bounds violation, or nil
func (r *fieldReader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *fieldReader) u1(field string, off int) uint8 {
	if !r.check(field, off, 1) {
		return 0
	}
	return r.buf[off]
}

func (r *fieldReader) i1(field string, off int) int8 {
	return int8(r.u1(field, off))
}

func (r *fieldReader) u2(field string, off int) uint16 {
	if !r.check(field, off, 2) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.buf[off:])
}

func (r *fieldReader) i2(field string, off int) int16 {
	return int16(r.u2(field, off))
}

func (r *fieldReader) u4(field string, off int) uint32 {
	if !r.check(field, off, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[off:])
}

func (r *fieldReader) i4(field string, off int) int32 {
	return int32(r.u4(field, off))
}

// bytes returns up to n bytes at off, clamped to the payload end
func (r *fieldReader) bytes(field string, off, n int) []byte {
	if !r.check(field, off, 0) {
		return nil
	}
	end := off + n
	if end > len(r.buf) {
		end = len(r.buf)
	}
	return r.buf[off:end]
}
