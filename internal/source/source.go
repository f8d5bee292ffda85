// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package source supplies addressed bytes to an S-Record encoder.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Thermoquad/srecdump/pkg/srec"
)

// chunkSize bounds the bytes handed out per segment.
const chunkSize = 4096

const addressSpace = 0x10000

// ErrAddressRange is returned when input data does not fit the 16-bit
// address space.
var ErrAddressRange = errors.New("data outside 16-bit address space")

// Segment is a run of bytes starting at Address. Data is only valid until
// the next call to Next.
type Segment struct {
	Address uint16
	Data    []byte
}

// Source yields segments in output order and returns io.EOF when done.
type Source interface {
	Next(ctx context.Context) (Segment, error)
	Close() error
}

// Sizer is implemented by sources that know their total byte count.
type Sizer interface {
	Size() int64
}

// Entrier is implemented by sources that carry their own entry address.
type Entrier interface {
	Entry() (uint16, bool)
}

// Observer is called after every segment handed to the encoder.
type Observer func(seg Segment, stats srec.Stats)

// Pump drives enc from src until the source is exhausted. It does not
// call Finish. It returns the number of bytes written to the encoder.
func Pump(ctx context.Context, src Source, enc *srec.Encoder, observe Observer) (int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		seg, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("read source: %w", err)
		}

		if err := enc.SetAddress(seg.Address); err != nil {
			return total, err
		}
		n, err := enc.Write(seg.Data)
		total += int64(n)
		if err != nil {
			return total, err
		}

		if observe != nil {
			observe(seg, enc.Stats())
		}
	}
}

// fits reports whether length bytes starting at address stay inside the
// 16-bit address space.
func fits(address uint64, length int64) bool {
	return length >= 0 && address+uint64(length) <= addressSpace
}
