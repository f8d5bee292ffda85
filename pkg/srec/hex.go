// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

// hexFormatter renders fields as uppercase hex into a record buffer and
// feeds every rendered byte into the checksum.
type hexFormatter struct {
	sum *checksum
	buf []byte
}

func (f *hexFormatter) byte(v byte) {
	f.buf = append(f.buf, hexDigits[v>>4], hexDigits[v&0x0F])
	f.sum.add(v)
}

// word emits the high byte first, as S-Record fields are big-endian.
func (f *hexFormatter) word(v uint16) {
	f.byte(byte(v >> 8))
	f.byte(byte(v))
}

func (f *hexFormatter) tag(t RecordType) {
	f.buf = append(f.buf, 'S', byte(t))
}
