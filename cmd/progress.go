// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/Thermoquad/srecdump/pkg/srec"
)

// Progress tracks dump progress and throughput
type Progress struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	Total      int64 // expected data bytes, 0 when unknown
	Bytes      uint64
	Records    uint16
	Segments   uint64
	Address    uint16
	LastRecord string

	// Rates (calculated)
	ByteRate   float64 // bytes/sec
	RecordRate float64 // records/sec
}

// NewProgress creates a progress tracker expecting total bytes
func NewProgress(total int64) *Progress {
	now := time.Now()
	return &Progress{
		StartTime:      now,
		LastUpdateTime: now,
		Total:          total,
	}
}

// Update records an encoder snapshot taken after a segment
func (p *Progress) Update(stats srec.Stats) {
	p.Segments++
	p.Bytes = stats.Bytes
	p.Records = stats.DataRecords
	p.Address = stats.Address
	p.LastUpdateTime = time.Now()
}

// Complete records the encoder state after Finish
func (p *Progress) Complete(stats srec.Stats) {
	p.Bytes = stats.Bytes
	p.Records = stats.DataRecords
	p.Address = stats.Address
	p.LastUpdateTime = time.Now()
}

// Record remembers the most recent record line
func (p *Progress) Record(line string) {
	p.LastRecord = line
}

// CalculateRates calculates byte and record rates
func (p *Progress) CalculateRates() {
	elapsed := p.LastUpdateTime.Sub(p.StartTime).Seconds()
	if elapsed > 0 {
		p.ByteRate = float64(p.Bytes) / elapsed
		p.RecordRate = float64(p.Records) / elapsed
	}
}

// Fraction returns completion in [0, 1], or -1 when the total is unknown
func (p *Progress) Fraction() float64 {
	if p.Total <= 0 {
		return -1
	}
	f := float64(p.Bytes) / float64(p.Total)
	if f > 1 {
		f = 1
	}
	return f
}

// String returns a formatted progress summary
func (p *Progress) String() string {
	p.CalculateRates()

	elapsed := p.LastUpdateTime.Sub(p.StartTime)

	result := fmt.Sprintf("=== Dump (%.1f seconds) ===\n", elapsed.Seconds())
	if p.Total > 0 {
		result += fmt.Sprintf("Data Bytes:   %8d of %d (%.1f%%)\n", p.Bytes, p.Total, p.Fraction()*100)
	} else {
		result += fmt.Sprintf("Data Bytes:   %8d\n", p.Bytes)
	}
	result += fmt.Sprintf("S1 Records:   %8d\n", p.Records)
	result += fmt.Sprintf("Segments:     %8d\n", p.Segments)
	result += fmt.Sprintf("Byte Rate:    %8.1f bytes/sec\n", p.ByteRate)
	result += fmt.Sprintf("Record Rate:  %8.1f records/sec\n", p.RecordRate)
	if p.LastRecord != "" {
		result += fmt.Sprintf("Last Record:  %s\n", p.LastRecord)
	}
	result += "===========================\n"

	return result
}
