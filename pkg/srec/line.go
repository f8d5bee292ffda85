// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

// lineBuffer collects the data bytes of one contiguous address run.
type lineBuffer struct {
	address uint16
	count   int
	data    [MaxLine]byte
}

// append stores b. The caller flushes before the buffer overflows.
func (l *lineBuffer) append(b byte) {
	l.data[l.count] = b
	l.count++
}

func (l *lineBuffer) full() bool {
	return l.count == MaxLine
}

func (l *lineBuffer) empty() bool {
	return l.count == 0
}

// next returns the address the next appended byte will occupy.
func (l *lineBuffer) next() uint16 {
	return l.address + uint16(l.count)
}

// wrapsNext reports whether the next byte would fall past 0xFFFF.
func (l *lineBuffer) wrapsNext() bool {
	return int(l.address)+l.count > 0xFFFF
}

func (l *lineBuffer) payload() []byte {
	return l.data[:l.count]
}

func (l *lineBuffer) reset(address uint16) {
	l.address = address
	l.count = 0
}
