// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"testing"
)

// ============================================================
// Test Helpers
// ============================================================

// recordingSink collects every line written to it.
type recordingSink struct {
	lines []string
}

func (s *recordingSink) WriteLine(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

type parsedRecord struct {
	typ     RecordType
	count   byte
	field   uint16
	payload []byte
}

// parseRecord decodes one emitted line and checks its byte count and checksum.
func parseRecord(t *testing.T, line string) parsedRecord {
	t.Helper()
	if len(line) < 10 || line[0] != 'S' {
		t.Fatalf("malformed record %q", line)
	}
	if strings.ToUpper(line) != line {
		t.Fatalf("record %q is not uppercase", line)
	}
	raw, err := hex.DecodeString(line[2:])
	if err != nil {
		t.Fatalf("record %q is not hex: %v", line, err)
	}
	if int(raw[0]) != len(raw)-1 {
		t.Fatalf("record %q: byte count 0x%02X, want 0x%02X", line, raw[0], len(raw)-1)
	}
	var total byte
	for _, b := range raw {
		total += b
	}
	if total != 0xFF {
		t.Fatalf("record %q: fields plus checksum sum to 0x%02X, want 0xFF", line, total)
	}
	return parsedRecord{
		typ:     RecordType(line[1]),
		count:   raw[0],
		field:   uint16(raw[1])<<8 | uint16(raw[2]),
		payload: raw[3 : len(raw)-1],
	}
}

func expectLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d lines %q, want %d lines %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

// ============================================================
// Checksum Tests
// ============================================================

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		fields   []byte
		expected byte
	}{
		{"empty count record", []byte{0x03, 0x00, 0x00}, 0xFC},
		{"header HDR", []byte{0x06, 0x00, 0x00, 0x48, 0x44, 0x52}, 0x1B},
		{"wraps modulo 256", []byte{0xFF, 0xFF, 0x02}, 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.fields); got != tt.expected {
				t.Errorf("Checksum(%X) = 0x%02X, want 0x%02X", tt.fields, got, tt.expected)
			}
		})
	}
}

func TestChecksum_ComplementResets(t *testing.T) {
	var c checksum
	c.add(0x10)
	c.add(0x20)
	if got := c.complement(); got != 0xCF {
		t.Errorf("complement = 0x%02X, want 0xCF", got)
	}
	if got := c.complement(); got != 0xFF {
		t.Errorf("complement after reset = 0x%02X, want 0xFF", got)
	}
}

func TestHeaderRecord_IsValid(t *testing.T) {
	rec := parseRecord(t, HeaderRecord)
	if rec.typ != RecordHeader {
		t.Errorf("type = %v, want %v", rec.typ, RecordHeader)
	}
	if string(rec.payload) != "HDR" {
		t.Errorf("payload = %q, want %q", rec.payload, "HDR")
	}
}

// ============================================================
// Formatter Tests
// ============================================================

func TestHexFormatter_PaddingAndChecksum(t *testing.T) {
	var sum checksum
	f := hexFormatter{sum: &sum}

	f.byte(0x0A)
	f.word(0x00FF)
	f.word(0xBEEF)

	if got := string(f.buf); got != "0A00FFBEEF" {
		t.Errorf("formatted = %q, want %q", got, "0A00FFBEEF")
	}
	// 0x0A + 0x00 + 0xFF + 0xBE + 0xEF = 0x2B6
	if sum.sum != 0xB6 {
		t.Errorf("sum = 0x%02X, want 0xB6", sum.sum)
	}
}

// ============================================================
// Encoder Tests
// ============================================================

func TestEncoder_MinimalSession(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	if err := enc.Finish(0); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	expectLines(t, sink.lines, []string{"S5030000FC", "S9030000FC"})
	if enc.Stats().State != StateFinished {
		t.Errorf("state = %v, want %v", enc.Stats().State, StateFinished)
	}
}

func TestEncoder_EndToEnd(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	if err := enc.SetAddress(0x0000); err != nil {
		t.Fatalf("SetAddress failed: %v", err)
	}
	for _, b := range []byte{0x48, 0x49} {
		if err := enc.AppendByte(b); err != nil {
			t.Fatalf("AppendByte failed: %v", err)
		}
	}
	if err := enc.Finish(0x0000); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	expectLines(t, sink.lines, []string{
		HeaderRecord,
		"S1050000484969",
		"S5030001FB",
		"S9030000FC",
	})
}

func TestEncoder_FullLineFlushesImmediately(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	if err := enc.SetAddress(0x1000); err != nil {
		t.Fatalf("SetAddress failed: %v", err)
	}
	if _, err := enc.Write(make([]byte, MaxLine-1)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if len(sink.lines) != 0 {
		t.Fatalf("expected no output before the line is full, got %q", sink.lines)
	}

	if err := enc.AppendByte(0x00); err != nil {
		t.Fatalf("AppendByte failed: %v", err)
	}

	want := "S1231000" + strings.Repeat("00", MaxLine) + "CC"
	expectLines(t, sink.lines, []string{HeaderRecord, want})

	stats := enc.Stats()
	if stats.Pending != 0 {
		t.Errorf("pending = %d, want 0", stats.Pending)
	}
	if stats.Address != 0x1020 {
		t.Errorf("next address = 0x%04X, want 0x1020", stats.Address)
	}
}

func TestEncoder_Discontinuity(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	enc.SetAddress(0x0010)
	enc.Write([]byte{0x01, 0x02})
	if err := enc.SetAddress(0x0020); err != nil {
		t.Fatalf("SetAddress failed: %v", err)
	}

	// The short run at 0x0010 is closed before the new address applies.
	expectLines(t, sink.lines, []string{HeaderRecord, "S10500100102E7"})

	enc.AppendByte(0x03)
	if err := enc.Finish(0x0010); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	expectLines(t, sink.lines, []string{
		HeaderRecord,
		"S10500100102E7",
		"S104002003D8",
		"S5030002FA",
		"S9030010EC",
	})
}

func TestEncoder_SetAddressContinuation(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	enc.SetAddress(0x0100)
	enc.Write([]byte{0xAA, 0xBB})
	if err := enc.SetAddress(0x0102); err != nil {
		t.Fatalf("SetAddress failed: %v", err)
	}
	enc.AppendByte(0xCC)

	if len(sink.lines) != 0 {
		t.Fatalf("continuation must not flush, got %q", sink.lines)
	}

	enc.Finish(0)
	rec := parseRecord(t, sink.lines[1])
	if rec.field != 0x0100 || !bytes.Equal(rec.payload, []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("data record = 0x%04X %X, want 0x0100 AABBCC", rec.field, rec.payload)
	}
}

func TestEncoder_SetAddressWithoutPendingData(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	enc.SetAddress(0x2000)
	enc.SetAddress(0x3000)
	enc.AppendByte(0x7E)
	enc.Finish(0)

	expectLines(t, sink.lines, []string{
		HeaderRecord,
		"S10430007E4D",
		"S5030001FB",
		"S9030000FC",
	})
}

func TestEncoder_NeverCrossesAddressWrap(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	enc.SetAddress(0xFFFE)
	if _, err := enc.Write([]byte{0xAA, 0xBB, 0xCC}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	enc.Finish(0)

	expectLines(t, sink.lines, []string{
		HeaderRecord,
		"S105FFFEAABB98",
		"S1040000CC2F",
		"S5030002FA",
		"S9030000FC",
	})
}

func TestEncoder_HeaderOncePerSession(t *testing.T) {
	sink := &recordingSink{}
	enc := NewEncoder(sink)

	enc.Write(make([]byte, MaxLine*3+5))
	enc.Finish(0)

	headers := 0
	for i, line := range sink.lines {
		if line == HeaderRecord {
			headers++
			if i != 0 {
				t.Errorf("header at line %d, want line 0", i)
			}
		}
	}
	if headers != 1 {
		t.Errorf("got %d header records, want 1", headers)
	}
}

func TestEncoder_Reset(t *testing.T) {
	run := func(enc *Encoder) {
		enc.SetAddress(0x4000)
		enc.Write([]byte("reset replays identically"))
		enc.SetAddress(0x5000)
		enc.Write(bytes.Repeat([]byte{0x5A}, 40))
		enc.Finish(0x4000)
	}

	fresh := &recordingSink{}
	run(NewEncoder(fresh))

	reused := &recordingSink{}
	enc := NewEncoder(reused)
	run(enc)
	reused.lines = nil
	enc.Reset()

	stats := enc.Stats()
	if stats.State != StateReady || stats.DataRecords != 0 || stats.Bytes != 0 || stats.Address != 0 {
		t.Fatalf("stats after Reset = %+v", stats)
	}

	run(enc)
	expectLines(t, reused.lines, fresh.lines)
}

func TestEncoder_ZeroValueNeedsSink(t *testing.T) {
	var enc Encoder

	if err := enc.AppendByte(0x01); !errors.Is(err, ErrNoSink) {
		t.Errorf("AppendByte without sink: got %v, want ErrNoSink", err)
	}
	if err := enc.SetAddress(0x10); !errors.Is(err, ErrNoSink) {
		t.Errorf("SetAddress without sink: got %v, want ErrNoSink", err)
	}
	if err := enc.Finish(0); !errors.Is(err, ErrNoSink) {
		t.Errorf("Finish without sink: got %v, want ErrNoSink", err)
	}

	sink := &recordingSink{}
	enc.Attach(sink)
	if err := enc.Finish(0); err != nil {
		t.Fatalf("Finish after Attach failed: %v", err)
	}
	expectLines(t, sink.lines, []string{"S5030000FC", "S9030000FC"})
}

func TestEncoder_UseAfterFinish(t *testing.T) {
	enc := NewEncoder(&recordingSink{})
	enc.Finish(0)

	if err := enc.AppendByte(0x01); !errors.Is(err, ErrFinished) {
		t.Errorf("AppendByte: got %v, want ErrFinished", err)
	}
	if err := enc.SetAddress(0x10); !errors.Is(err, ErrFinished) {
		t.Errorf("SetAddress: got %v, want ErrFinished", err)
	}
	if err := enc.Finish(0); !errors.Is(err, ErrFinished) {
		t.Errorf("Finish: got %v, want ErrFinished", err)
	}
	if n, err := enc.Write([]byte{1, 2, 3}); n != 0 || !errors.Is(err, ErrFinished) {
		t.Errorf("Write: got (%d, %v), want (0, ErrFinished)", n, err)
	}
}

func TestEncoder_SinkFailure(t *testing.T) {
	errBoom := errors.New("boom")
	failing := true
	var lines []string
	sink := LineSinkFunc(func(line string) error {
		if failing {
			return errBoom
		}
		lines = append(lines, line)
		return nil
	})

	enc := NewEncoder(sink)
	n, err := enc.Write(make([]byte, MaxLine+4))
	if !errors.Is(err, errBoom) {
		t.Fatalf("Write: got %v, want wrapped sink error", err)
	}
	if n != MaxLine-1 {
		t.Errorf("Write accepted %d bytes, want %d", n, MaxLine-1)
	}
	if enc.Stats().State != StateFailed {
		t.Errorf("state = %v, want %v", enc.Stats().State, StateFailed)
	}
	if err := enc.AppendByte(0x00); !errors.Is(err, ErrFailed) {
		t.Errorf("AppendByte after failure: got %v, want ErrFailed", err)
	}
	if err := enc.Finish(0); !errors.Is(err, ErrFailed) {
		t.Errorf("Finish after failure: got %v, want ErrFailed", err)
	}

	failing = false
	enc.Reset()
	if err := enc.Finish(0); err != nil {
		t.Fatalf("Finish after Reset failed: %v", err)
	}
	expectLines(t, lines, []string{"S5030000FC", "S9030000FC"})
}

func TestEncoder_TrailerFailure(t *testing.T) {
	errBoom := errors.New("boom")
	sink := LineSinkFunc(func(line string) error {
		if line[1] == byte(RecordEntry) {
			return errBoom
		}
		return nil
	})

	enc := NewEncoder(sink)
	err := enc.Finish(0)
	if !errors.Is(err, errBoom) {
		t.Fatalf("Finish: got %v, want wrapped sink error", err)
	}
	if !strings.Contains(err.Error(), "ENTRY") {
		t.Errorf("error %q should name the record type", err)
	}
	if enc.Stats().State != StateFailed {
		t.Errorf("state = %v, want %v", enc.Stats().State, StateFailed)
	}
}

// ============================================================
// Sink Tests
// ============================================================

func TestWriterSink_Terminators(t *testing.T) {
	tests := []struct {
		name       string
		terminator string
		expected   string
	}{
		{"lf", LF, "S5030000FC\nS9030000FC\n"},
		{"crlf", CRLF, "S5030000FC\r\nS9030000FC\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			enc := NewEncoder(NewWriterSinkWithTerminator(&buf, tt.terminator))
			if err := enc.Finish(0); err != nil {
				t.Fatalf("Finish failed: %v", err)
			}
			if buf.String() != tt.expected {
				t.Errorf("output = %q, want %q", buf.String(), tt.expected)
			}
		})
	}
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) {
	return len(p) - 1, nil
}

func TestWriterSink_ShortWrite(t *testing.T) {
	err := NewWriterSink(shortWriter{}).WriteLine(HeaderRecord)
	if !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("got %v, want io.ErrShortWrite", err)
	}
}

func TestParseLineEnding(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", LF, false},
		{"lf", LF, false},
		{"CRLF", CRLF, false},
		{"cr", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLineEnding(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLineEnding(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLineEnding(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestRecordType_String(t *testing.T) {
	if RecordData.String() != "DATA" || RecordType('7').String() != "UNKNOWN" {
		t.Errorf("unexpected names: %s %s", RecordData, RecordType('7'))
	}
}
