// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thermoquad/srecdump/internal/config"
	"github.com/Thermoquad/srecdump/internal/source"
)

var runCmd = &cobra.Command{
	Use:   "run <profile.yaml>",
	Short: "Run a dump described by a YAML profile",
	Long: `Load a YAML dump profile and run it.

A profile names one source (file, ihex or modbus), at most one output and an
optional entry address. Output flags given on the command line override the
profile's output section.

Example profile (cut a 4 KiB ROM out of a 64 KiB memory image: the first
256 bytes of pages 0-14, then the last 256 bytes of page 15):

  source:
    kind: file
    path: memory.bin
    stride:
      offset: 0x0000
      step: 0x1000
      count: 15
      length: 0x100
      address: 0x0000
    regions:
      - offset: 0xFF00
        length: 0x100
        address: 0x0F00
  output:
    file: rom.s19
  entry: 0x0000`,
	Args: cobra.ExactArgs(1),
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfile(args[0])
	if err != nil {
		return err
	}

	src, title, err := sourceFromConfig(cfg.Source)
	if err != nil {
		return err
	}

	j := job{
		title:  title,
		src:    src,
		output: outputFromConfig(cfg.Output, outputFromFlags()),
	}
	if cfg.Entry != nil {
		j.entry = *cfg.Entry
		j.entrySet = true
	}
	return runJob(cmd.Context(), j)
}

// loadProfile loads, validates and normalizes a profile
func loadProfile(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// sourceFromConfig opens the source a normalized profile describes
func sourceFromConfig(sc config.SourceConfig) (source.Source, string, error) {
	switch sc.Kind {
	case config.SourceFile:
		regions := make([]source.Region, 0, len(sc.Regions))
		for _, r := range sc.Regions {
			regions = append(regions, source.Region{
				Offset:  r.Offset,
				Length:  r.Length,
				Address: *r.Address,
			})
		}
		src, err := source.OpenFile(sc.Path, regions, sc.Address, 0, 0)
		if err != nil {
			return nil, "", err
		}
		return src, filepath.Base(sc.Path), nil

	case config.SourceIntelHex:
		src, err := source.OpenIntelHex(sc.Path)
		if err != nil {
			return nil, "", err
		}
		return src, filepath.Base(sc.Path), nil

	case config.SourceModbus:
		mc := source.ModbusConfig{
			Endpoint: sc.Modbus.Endpoint,
			RTU:      sc.Modbus.RTU,
			Baud:     sc.Modbus.Baud,
			UnitID:   sc.Modbus.UnitID,
			Timeout:  time.Duration(sc.Modbus.TimeoutMs) * time.Millisecond,
			Start:    sc.Modbus.Start,
			Quantity: sc.Modbus.Quantity,
			Address:  sc.Modbus.Address,
		}
		src, err := source.DialModbus(mc)
		if err != nil {
			return nil, "", err
		}
		return src, modbusTitle(mc), nil
	}

	return nil, "", fmt.Errorf("unknown source kind %q", sc.Kind)
}
