// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package srec

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 500
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 500
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func randomBytes(rng *rand.Rand, n int) []byte {
	data := make([]byte, n)
	rng.Read(data)
	return data
}

// ============================================================
// Contiguous Run Properties
// ============================================================

func TestFuzz_ContiguousRunChunking(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		length := rng.Intn(MaxLine * 20)
		base := uint16(rng.Intn(0x10000 - length))
		data := randomBytes(rng, length)

		sink := &recordingSink{}
		enc := NewEncoder(sink)
		if err := enc.SetAddress(base); err != nil {
			t.Fatalf("round %d: SetAddress failed: %v", round, err)
		}
		for _, b := range data {
			if err := enc.AppendByte(b); err != nil {
				t.Fatalf("round %d: AppendByte failed: %v", round, err)
			}
		}
		if err := enc.Finish(base); err != nil {
			t.Fatalf("round %d: Finish failed: %v", round, err)
		}

		lines := sink.lines
		wantRecords := (length + MaxLine - 1) / MaxLine
		wantLines := wantRecords + 2
		if wantRecords > 0 {
			wantLines++
		}
		if len(lines) != wantLines {
			t.Fatalf("round %d (len=%d): got %d lines, want %d", round, length, len(lines), wantLines)
		}

		if wantRecords > 0 {
			if lines[0] != HeaderRecord {
				t.Fatalf("round %d: first line %q, want header", round, lines[0])
			}
			lines = lines[1:]
		}

		var payload []byte
		for i := 0; i < wantRecords; i++ {
			rec := parseRecord(t, lines[i])
			if rec.typ != RecordData {
				t.Fatalf("round %d: record %d type %v, want DATA", round, i, rec.typ)
			}
			wantLen := MaxLine
			if i == wantRecords-1 && length%MaxLine != 0 {
				wantLen = length % MaxLine
			}
			if len(rec.payload) != wantLen {
				t.Fatalf("round %d: record %d has %d bytes, want %d", round, i, len(rec.payload), wantLen)
			}
			if int(rec.count) != wantLen+3 {
				t.Fatalf("round %d: record %d byte count %d, want %d", round, i, rec.count, wantLen+3)
			}
			if want := base + uint16(len(payload)); rec.field != want {
				t.Fatalf("round %d: record %d address 0x%04X, want 0x%04X", round, i, rec.field, want)
			}
			payload = append(payload, rec.payload...)
		}
		if !bytes.Equal(payload, data) {
			t.Fatalf("round %d: concatenated payload differs from input", round)
		}

		count := parseRecord(t, lines[wantRecords])
		if count.typ != RecordCount || int(count.field) != wantRecords {
			t.Fatalf("round %d: count record %+v, want %d records", round, count, wantRecords)
		}
		entry := parseRecord(t, lines[wantRecords+1])
		if entry.typ != RecordEntry || entry.field != base {
			t.Fatalf("round %d: entry record %+v, want 0x%04X", round, entry, base)
		}
	}
}

// ============================================================
// Scattered Address Properties
// ============================================================

func TestFuzz_ScatteredWrites(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for round := 0; round < rounds; round++ {
		sink := &recordingSink{}
		enc := NewEncoder(sink)

		// Reference memory image built alongside the encoder.
		image := make(map[uint16]byte)
		written := make(map[uint16]bool)

		segments := rng.Intn(8)
		for s := 0; s < segments; s++ {
			address := uint16(rng.Intn(0x10000))
			data := randomBytes(rng, rng.Intn(MaxLine*3))
			if err := enc.SetAddress(address); err != nil {
				t.Fatalf("round %d: SetAddress failed: %v", round, err)
			}
			if _, err := enc.Write(data); err != nil {
				t.Fatalf("round %d: Write failed: %v", round, err)
			}
			for i, b := range data {
				a := address + uint16(i)
				image[a] = b
				written[a] = true
			}
		}
		if err := enc.Finish(0); err != nil {
			t.Fatalf("round %d: Finish failed: %v", round, err)
		}

		headers, dataRecords := 0, 0
		seenData := false
		replay := make(map[uint16]byte)
		for i, line := range sink.lines {
			rec := parseRecord(t, line)
			switch rec.typ {
			case RecordHeader:
				headers++
				if seenData {
					t.Fatalf("round %d: header after data at line %d", round, i)
				}
			case RecordData:
				seenData = true
				dataRecords++
				if len(rec.payload) == 0 || len(rec.payload) > MaxLine {
					t.Fatalf("round %d: data record with %d bytes", round, len(rec.payload))
				}
				if int(rec.field)+len(rec.payload) > 0x10000 {
					t.Fatalf("round %d: record at 0x%04X crosses the address wrap", round, rec.field)
				}
				for j, b := range rec.payload {
					replay[rec.field+uint16(j)] = b
				}
			case RecordCount:
				if int(rec.field) != dataRecords {
					t.Fatalf("round %d: count %d, want %d", round, rec.field, dataRecords)
				}
			}
		}

		if seenData && headers != 1 {
			t.Fatalf("round %d: %d headers with data present", round, headers)
		}
		if !seenData && headers != 0 {
			t.Fatalf("round %d: header written without data", round)
		}
		// Later writes to the same address win in both the image and the replay.
		for a := range written {
			if replay[a] != image[a] {
				t.Fatalf("round %d: address 0x%04X replays 0x%02X, want 0x%02X", round, a, replay[a], image[a])
			}
		}
	}
}
