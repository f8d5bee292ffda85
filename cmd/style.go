// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/srecdump/pkg/srec"
)

// Record field styles
var (
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	addressStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	payloadStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	checksumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// recordFields splits an S-Record line into tag, byte count, address,
// payload and checksum. ok is false if the line is too short to be a
// 16-bit address record.
func recordFields(line string) (tag, count, address, payload, checksum string, ok bool) {
	// S + type + count(2) + address(4) + checksum(2)
	if len(line) < 10 || line[0] != 'S' {
		return "", "", "", "", "", false
	}
	return line[0:2], line[2:4], line[4:8], line[8 : len(line)-2], line[len(line)-2:], true
}

// renderRecord colours each field of an S-Record line
func renderRecord(line string) string {
	tag, count, address, payload, checksum, ok := recordFields(line)
	if !ok {
		return line
	}

	var s strings.Builder
	s.WriteString(tagStyle.Render(tag))
	s.WriteString(countStyle.Render(count))
	s.WriteString(addressStyle.Render(address))
	if payload != "" {
		s.WriteString(payloadStyle.Render(payload))
	}
	s.WriteString(checksumStyle.Render(checksum))
	return s.String()
}

// styledSink prints coloured records to a terminal
func styledSink(w io.Writer, terminator string) srec.LineSink {
	plain := srec.NewWriterSinkWithTerminator(w, terminator)
	return srec.LineSinkFunc(func(line string) error {
		return plain.WriteLine(renderRecord(line))
	})
}
