// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package srec streams 8-bit data with 16-bit addresses out as Motorola
// S-Records.
//
// Only the S0 (header), S1 (data), S5 (count) and S9 (entry) record types
// are produced. Each record is handed to a LineSink as soon as it is
// complete; the encoder itself never holds more than one line of data.
package srec

// Line geometry
const (
	MaxLine     = 32 // data bytes per S1 record
	addressSize = 2
	// type tag + count + address + payload + checksum, as hex text
	maxRecordLen = 2 + 2 + addressSize*2 + MaxLine*2 + 2
)

// HeaderRecord is the fixed S0 record emitted before the first data record.
// Its payload is the ASCII text "HDR".
const HeaderRecord = "S00600004844521B"

const hexDigits = "0123456789ABCDEF"

// RecordType identifies an S-Record by the digit following the leading 'S'.
type RecordType byte

// Supported record types
const (
	RecordHeader RecordType = '0'
	RecordData   RecordType = '1'
	RecordCount  RecordType = '5'
	RecordEntry  RecordType = '9'
)

// String returns a human-readable name for the record type.
func (t RecordType) String() string {
	switch t {
	case RecordHeader:
		return "HEADER"
	case RecordData:
		return "DATA"
	case RecordCount:
		return "COUNT"
	case RecordEntry:
		return "ENTRY"
	default:
		return "UNKNOWN"
	}
}
