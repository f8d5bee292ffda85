// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Region copies Length bytes at file Offset to S-Record Address.
type Region struct {
	Offset  int64
	Length  int64
	Address uint16
}

// StrideRegions selects count windows of length bytes, step bytes apart,
// starting at offset, and packs them back to back from address. This is
// how a small ROM image is cut out of a larger memory image.
func StrideRegions(offset, step int64, count int, length int64, address uint16) []Region {
	regions := make([]Region, 0, count)
	for i := 0; i < count; i++ {
		regions = append(regions, Region{
			Offset:  offset + int64(i)*step,
			Length:  length,
			Address: address + uint16(int64(i)*length),
		})
	}
	return regions
}

// FileSource reads regions of a binary image.
type FileSource struct {
	r       io.ReaderAt
	closer  io.Closer
	regions []Region
	index   int
	pos     int64
	buf     []byte
}

// NewFileSource reads the given regions from r.
func NewFileSource(r io.ReaderAt, regions []Region) (*FileSource, error) {
	for i, reg := range regions {
		if reg.Offset < 0 || reg.Length <= 0 {
			return nil, fmt.Errorf("region %d: invalid offset %d or length %d", i, reg.Offset, reg.Length)
		}
		if !fits(uint64(reg.Address), reg.Length) {
			return nil, fmt.Errorf("region %d at 0x%04X+0x%X: %w", i, reg.Address, reg.Length, ErrAddressRange)
		}
	}
	return &FileSource{
		r:       r,
		regions: regions,
		buf:     make([]byte, chunkSize),
	}, nil
}

// OpenFile opens a binary image. With no regions, the part of the file
// from offset onward (all of it when length is zero) is placed at address.
func OpenFile(path string, regions []Region, address uint16, offset, length int64) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if len(regions) == 0 {
		if offset < 0 || length < 0 {
			f.Close()
			return nil, fmt.Errorf("invalid offset %d or length %d", offset, length)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		if offset > info.Size() {
			f.Close()
			return nil, fmt.Errorf("offset %d beyond end of %s (%d bytes)", offset, path, info.Size())
		}
		if length == 0 {
			length = info.Size() - offset
		}
		if length > 0 {
			regions = []Region{{Offset: offset, Length: length, Address: address}}
		}
	}

	src, err := NewFileSource(f, regions)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// Next returns the next chunk of the current region.
func (s *FileSource) Next(ctx context.Context) (Segment, error) {
	for s.index < len(s.regions) {
		reg := s.regions[s.index]
		remaining := reg.Length - s.pos
		if remaining <= 0 {
			s.index++
			s.pos = 0
			continue
		}

		buf := s.buf
		if remaining < int64(len(buf)) {
			buf = buf[:remaining]
		}
		n, err := s.r.ReadAt(buf, reg.Offset+s.pos)
		if n < len(buf) {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Segment{}, fmt.Errorf("region %d: read at offset %d: %w", s.index, reg.Offset+s.pos, err)
		}

		seg := Segment{Address: reg.Address + uint16(s.pos), Data: buf}
		s.pos += int64(n)
		return seg, nil
	}
	return Segment{}, io.EOF
}

// Size returns the total number of bytes selected by the regions.
func (s *FileSource) Size() int64 {
	var total int64
	for _, reg := range s.regions {
		total += reg.Length
	}
	return total
}

// Close closes the underlying file, if the source opened it.
func (s *FileSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
