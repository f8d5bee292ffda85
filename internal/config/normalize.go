// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import "github.com/Thermoquad/srecdump/internal/source"

// Defaults applied by Normalize
const (
	DefaultBaud          = 115200
	DefaultModbusBaud    = 9600
	DefaultModbusTimeout = 1000 // ms
	DefaultLineEnding    = "lf"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Output.Baud == 0 {
		cfg.Output.Baud = DefaultBaud
	}
	if cfg.Output.LineEnding == "" {
		cfg.Output.LineEnding = DefaultLineEnding
	}

	// ------------------------------------------------------------
	// FILE REGIONS: expand stride, resolve implicit addresses
	// ------------------------------------------------------------

	src := &cfg.Source
	if st := src.Stride; st != nil {
		windows := source.StrideRegions(st.Offset, st.Step, st.Count, st.Length, st.Address)
		expanded := make([]RegionConfig, 0, len(windows)+len(src.Regions))
		for _, w := range windows {
			addr := w.Address
			expanded = append(expanded, RegionConfig{
				Offset:  w.Offset,
				Length:  w.Length,
				Address: &addr,
			})
		}
		// explicit regions follow the stride windows
		src.Regions = append(expanded, src.Regions...)
		src.Stride = nil
	}

	for i := range src.Regions {
		r := &src.Regions[i]
		if r.Address == nil {
			addr := uint16(r.Offset)
			r.Address = &addr
		}
	}

	// ------------------------------------------------------------
	// MODBUS TRANSPORT DEFAULTS
	// ------------------------------------------------------------

	if src.Kind == SourceModbus {
		if src.Modbus.TimeoutMs == 0 {
			src.Modbus.TimeoutMs = DefaultModbusTimeout
		}
		if src.Modbus.RTU != "" && src.Modbus.Baud == 0 {
			src.Modbus.Baud = DefaultModbusBaud
		}
		if src.Modbus.UnitID == 0 {
			src.Modbus.UnitID = 1
		}
	}
}
