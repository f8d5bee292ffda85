// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

import (
	"fmt"
	"io"
)

// LineSink accepts complete S-Record lines, without terminator.
type LineSink interface {
	WriteLine(line string) error
}

// LineSinkFunc adapts a function to the LineSink interface.
type LineSinkFunc func(line string) error

// WriteLine calls f(line).
func (f LineSinkFunc) WriteLine(line string) error {
	return f(line)
}

// Line terminators
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// WriterSink writes each line followed by a terminator to an io.Writer.
// It never closes the underlying writer.
type WriterSink struct {
	w          io.Writer
	terminator string
}

// NewWriterSink creates a sink terminating lines with LF.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, terminator: LF}
}

// NewWriterSinkWithTerminator creates a sink with a custom line terminator.
func NewWriterSinkWithTerminator(w io.Writer, terminator string) *WriterSink {
	return &WriterSink{w: w, terminator: terminator}
}

// WriteLine writes the line and its terminator in a single Write call.
func (s *WriterSink) WriteLine(line string) error {
	n, err := io.WriteString(s.w, line+s.terminator)
	if err != nil {
		return err
	}
	if n != len(line)+len(s.terminator) {
		return io.ErrShortWrite
	}
	return nil
}

// ParseLineEnding maps a line ending name ("lf", "crlf") to its terminator.
func ParseLineEnding(name string) (string, error) {
	switch name {
	case "", "lf", "LF":
		return LF, nil
	case "crlf", "CRLF":
		return CRLF, nil
	default:
		return "", fmt.Errorf("unknown line ending %q (use lf or crlf)", name)
	}
}
