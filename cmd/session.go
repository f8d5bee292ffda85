// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Thermoquad/srecdump/internal/source"
	"github.com/Thermoquad/srecdump/pkg/srec"
)

// job is one dump: a source, where its records go, and the S9 entry address
type job struct {
	title    string
	src      source.Source
	output   outputOptions
	entry    uint16
	entrySet bool // entry given explicitly, overrides the source's own
}

// entryAddress picks the S9 address: explicit, from the source, or 0
func (j job) entryAddress() uint16 {
	if j.entrySet {
		return j.entry
	}
	if e, ok := j.src.(source.Entrier); ok {
		if addr, ok := e.Entry(); ok {
			return addr
		}
	}
	return 0
}

// expectedBytes returns the source size, or 0 when unknown
func (j job) expectedBytes() int64 {
	if s, ok := j.src.(source.Sizer); ok {
		return s.Size()
	}
	return 0
}

// runJob runs a dump with plain or TUI progress and closes the source
func runJob(ctx context.Context, j job) error {
	defer j.src.Close()

	if useTUI {
		if j.output.toStdout() {
			return errors.New("--tui needs an output other than stdout (use --out, --port, --url or --s3)")
		}
		return runTUI(ctx, j)
	}

	out, err := openOutput(ctx, j.output)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			log.Printf("closing %s: %v", out.info, err)
		}
	}()

	if !j.output.toStdout() {
		fmt.Fprintf(os.Stderr, "Dumping %s to %s\n", j.title, out.info)
	}

	progress := NewProgress(j.expectedBytes())
	observe := func(_ source.Segment, stats srec.Stats) {
		progress.Update(stats)
	}
	final, err := encode(ctx, j, out, observe, progress.Record)
	if err != nil {
		return err
	}

	progress.Complete(final)
	fmt.Fprint(os.Stderr, progress.String())
	return nil
}

// encode pumps the source through a fresh encoder into out, writes the
// trailer and commits the output. onRecord, if set, sees every line after
// it was written. The returned stats include the trailer flush.
func encode(ctx context.Context, j job, out *output, observe source.Observer, onRecord func(string)) (srec.Stats, error) {
	sink := out.sink
	if onRecord != nil {
		sink = srec.LineSinkFunc(func(line string) error {
			if err := out.sink.WriteLine(line); err != nil {
				return err
			}
			onRecord(line)
			return nil
		})
	}

	enc := srec.NewEncoder(sink)
	if _, err := source.Pump(ctx, j.src, enc, observe); err != nil {
		return enc.Stats(), fmt.Errorf("dump %s: %w", j.title, err)
	}
	if err := enc.Finish(j.entryAddress()); err != nil {
		return enc.Stats(), fmt.Errorf("dump %s: %w", j.title, err)
	}
	if err := out.Commit(ctx); err != nil {
		return enc.Stats(), err
	}
	return enc.Stats(), nil
}
