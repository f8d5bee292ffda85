// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"fmt"
	"strings"
)

const addressSpace = 0x10000

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("empty profile")
	}
	if err := validateOutput(&cfg.Output); err != nil {
		return err
	}
	return validateSource(&cfg.Source)
}

func validateOutput(o *OutputConfig) error {
	// ------------------------------------------------------------
	// DESTINATION (AT MOST ONE)
	// ------------------------------------------------------------

	var set []string
	if o.File != "" {
		set = append(set, "file")
	}
	if o.Port != "" {
		set = append(set, "port")
	}
	if o.URL != "" {
		set = append(set, "url")
	}
	if o.S3 != "" {
		set = append(set, "s3")
	}
	if len(set) > 1 {
		return fmt.Errorf("output: only one destination allowed, got %s", strings.Join(set, ", "))
	}

	if o.Baud < 0 {
		return fmt.Errorf("output: baud must be positive, got %d", o.Baud)
	}
	if o.S3 != "" && !strings.HasPrefix(o.S3, "s3://") {
		return fmt.Errorf("output: s3 destination must look like s3://bucket/key, got %q", o.S3)
	}

	switch o.LineEnding {
	case "", "lf", "crlf":
	default:
		return fmt.Errorf("output: line_ending must be lf or crlf, got %q", o.LineEnding)
	}

	return nil
}

func validateSource(s *SourceConfig) error {
	switch s.Kind {
	case SourceFile:
		return validateFileSource(s)

	case SourceIntelHex:
		if s.Path == "" {
			return fmt.Errorf("source: ihex requires path")
		}
		if len(s.Regions) > 0 || s.Stride != nil {
			return fmt.Errorf("source: regions and stride apply to binary files only")
		}
		return nil

	case SourceModbus:
		return validateModbus(&s.Modbus)

	case "":
		return fmt.Errorf("source: kind is required (file, ihex or modbus)")

	default:
		return fmt.Errorf("source: unknown kind %q", s.Kind)
	}
}

func validateFileSource(s *SourceConfig) error {
	type span struct {
		start int
		end   int // exclusive
		name  string
	}

	if s.Path == "" {
		return fmt.Errorf("source: file requires path")
	}

	var spans []span

	// ------------------------------------------------------------
	// STRIDE GEOMETRY
	// ------------------------------------------------------------

	if st := s.Stride; st != nil {
		if st.Count <= 0 || st.Length <= 0 {
			return fmt.Errorf("source: stride count and length must be positive")
		}
		if st.Step < st.Length {
			return fmt.Errorf("source: stride step %d is smaller than length %d", st.Step, st.Length)
		}
		if st.Offset < 0 {
			return fmt.Errorf("source: stride offset must not be negative")
		}
		end := int64(st.Address) + int64(st.Count)*st.Length
		if end > addressSpace {
			return fmt.Errorf("source: stride output ends at 0x%X, beyond 16-bit address space", end)
		}
		spans = append(spans, span{start: int(st.Address), end: int(end), name: "stride"})
	}

	// ------------------------------------------------------------
	// REGION GEOMETRY (OUTPUT ADDRESSES MUST NOT OVERLAP)
	// ------------------------------------------------------------

	for i, r := range s.Regions {
		if r.Offset < 0 {
			return fmt.Errorf("source: region %d: offset must not be negative", i)
		}
		if r.Length <= 0 {
			return fmt.Errorf("source: region %d: length must be positive", i)
		}

		start := int(r.Offset)
		if r.Address != nil {
			start = int(*r.Address)
		} else if r.Offset >= addressSpace {
			return fmt.Errorf("source: region %d: offset 0x%X needs an explicit address", i, r.Offset)
		}
		end := start + int(r.Length)
		if end > addressSpace {
			return fmt.Errorf("source: region %d: output ends at 0x%X, beyond 16-bit address space", i, end)
		}

		name := fmt.Sprintf("region %d", i)
		for _, prev := range spans {
			// overlap check (half-open)
			if start < prev.end && prev.start < end {
				return fmt.Errorf(
					"source: %s (0x%04X-0x%04X) overlaps %s (0x%04X-0x%04X)",
					name, start, end-1, prev.name, prev.start, prev.end-1,
				)
			}
		}
		spans = append(spans, span{start: start, end: end, name: name})
	}

	return nil
}

func validateModbus(m *ModbusConfig) error {
	if (m.Endpoint == "") == (m.RTU == "") {
		return fmt.Errorf("source: modbus requires exactly one of endpoint or rtu")
	}
	if m.Quantity == 0 {
		return fmt.Errorf("source: modbus quantity must be positive")
	}
	if int(m.Start)+int(m.Quantity) > addressSpace {
		return fmt.Errorf("source: modbus registers %d+%d exceed the register space", m.Start, m.Quantity)
	}
	if end := int(m.Address) + 2*int(m.Quantity); end > addressSpace {
		return fmt.Errorf("source: modbus output ends at 0x%X, beyond 16-bit address space", end)
	}
	if m.TimeoutMs < 0 || m.Baud < 0 {
		return fmt.Errorf("source: modbus timeout and baud must not be negative")
	}
	return nil
}
