// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

// Checksum computes the 8-bit Fletcher checksum used by UBX over class, id,
// length and payload bytes.
func Checksum(data []byte) (ckA, ckB uint8) {
	for _, b := range data {
		ckA += b
		ckB += ckA
	}
	return ckA, ckB
}

// checksumState accumulates a Fletcher checksum byte by byte
type checksumState struct {
	a, b uint8
}

func (c *checksumState) add(v byte) {
	c.a += v
	c.b += c.a
}

func (c *checksumState) reset() {
	c.a, c.b = 0, 0
}
