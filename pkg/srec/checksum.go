// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

// checksum is the running 8-bit sum of the bytes of the record being composed.
type checksum struct {
	sum uint8
}

func (c *checksum) add(b byte) {
	c.sum += b
}

// complement returns the one's complement of the sum and clears it.
func (c *checksum) complement() byte {
	v := c.sum ^ 0xFF
	c.sum = 0
	return v
}

// Checksum computes the S-Record checksum of the given record fields
// (byte count, address and payload).
func Checksum(fields []byte) byte {
	var c checksum
	for _, b := range fields {
		c.add(b)
	}
	return c.complement()
}
