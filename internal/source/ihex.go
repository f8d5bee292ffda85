// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/marcinbor85/gohex"
)

// IntelHexSource replays the data segments of an Intel HEX file.
type IntelHexSource struct {
	segments []gohex.DataSegment
	index    int
	pos      int
	start    uint32
	hasStart bool
}

// ParseIntelHex reads a whole Intel HEX file. All data and the start
// address must fit in 16 bits.
func ParseIntelHex(r io.Reader) (*IntelHexSource, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("parse intel hex: %w", err)
	}

	segments := mem.GetDataSegments()
	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Address < segments[j].Address
	})
	for _, seg := range segments {
		if !fits(uint64(seg.Address), int64(len(seg.Data))) {
			return nil, fmt.Errorf("segment at 0x%X (%d bytes): %w", seg.Address, len(seg.Data), ErrAddressRange)
		}
	}

	src := &IntelHexSource{segments: segments}
	if start, ok := mem.GetStartAddress(); ok {
		if start >= addressSpace {
			return nil, fmt.Errorf("start address 0x%X: %w", start, ErrAddressRange)
		}
		src.start = start
		src.hasStart = true
	}
	return src, nil
}

// OpenIntelHex parses the Intel HEX file at path.
func OpenIntelHex(path string) (*IntelHexSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseIntelHex(f)
}

// Next returns the next chunk of the current segment.
func (s *IntelHexSource) Next(ctx context.Context) (Segment, error) {
	for s.index < len(s.segments) {
		seg := s.segments[s.index]
		if s.pos >= len(seg.Data) {
			s.index++
			s.pos = 0
			continue
		}

		end := s.pos + chunkSize
		if end > len(seg.Data) {
			end = len(seg.Data)
		}
		out := Segment{
			Address: uint16(seg.Address) + uint16(s.pos),
			Data:    seg.Data[s.pos:end],
		}
		s.pos = end
		return out, nil
	}
	return Segment{}, io.EOF
}

// Entry returns the start address record of the file, if it had one.
func (s *IntelHexSource) Entry() (uint16, bool) {
	return uint16(s.start), s.hasStart
}

// Size returns the number of data bytes in the file.
func (s *IntelHexSource) Size() int64 {
	var total int64
	for _, seg := range s.segments {
		total += int64(len(seg.Data))
	}
	return total
}

// Close is a no-op; the file is fully read by ParseIntelHex.
func (s *IntelHexSource) Close() error {
	return nil
}
