// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

import "fmt"

// recordEmitter composes complete records and writes them to the sink,
// one line per record.
type recordEmitter struct {
	sink LineSink
	sum  checksum
	buf  [maxRecordLen]byte
}

func (r *recordEmitter) emitHeader() error {
	return r.write(RecordHeader, HeaderRecord)
}

func (r *recordEmitter) emitData(address uint16, payload []byte) error {
	return r.emit(RecordData, address, payload)
}

// emitCount writes the S5 record. Its 16-bit field holds the number of
// data records, not an address.
func (r *recordEmitter) emitCount(lines uint16) error {
	return r.emit(RecordCount, lines, nil)
}

func (r *recordEmitter) emitEntry(address uint16) error {
	return r.emit(RecordEntry, address, nil)
}

func (r *recordEmitter) emit(t RecordType, field uint16, payload []byte) error {
	r.sum = checksum{}
	f := hexFormatter{sum: &r.sum, buf: r.buf[:0]}

	f.tag(t)
	f.byte(byte(len(payload) + addressSize + 1))
	f.word(field)
	for _, b := range payload {
		f.byte(b)
	}

	// The checksum byte itself is not part of the sum.
	cs := r.sum.complement()
	f.buf = append(f.buf, hexDigits[cs>>4], hexDigits[cs&0x0F])

	return r.write(t, string(f.buf))
}

func (r *recordEmitter) write(t RecordType, line string) error {
	if err := r.sink.WriteLine(line); err != nil {
		return fmt.Errorf("srec: write %s record: %w", t, err)
	}
	return nil
}
