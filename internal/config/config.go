// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is one dump profile: where the bytes come from, where the
// S-Records go, and the entry address written to the S9 record.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Source SourceConfig `yaml:"source"`
	Entry  *uint16      `yaml:"entry"`
}

// ---- OUTPUT ----

// OutputConfig selects at most one destination. With none set the
// records go to stdout.
type OutputConfig struct {
	File string `yaml:"file"`

	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`

	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`

	S3 string `yaml:"s3"` // s3://bucket/key

	LineEnding string `yaml:"line_ending"` // lf | crlf
}

// ---- SOURCE ----

// Source kinds
const (
	SourceFile     = "file"
	SourceIntelHex = "ihex"
	SourceModbus   = "modbus"
)

type SourceConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`

	// Binary images only. Without regions or stride the whole file is
	// dumped starting at Address. Regions given with a stride are dumped
	// after the stride windows.
	Address uint16         `yaml:"address"`
	Regions []RegionConfig `yaml:"regions"`
	Stride  *StrideConfig  `yaml:"stride"`

	Modbus ModbusConfig `yaml:"modbus"`
}

// RegionConfig copies Length bytes at file Offset to S-Record Address.
// A missing Address means Address = Offset.
type RegionConfig struct {
	Offset  int64   `yaml:"offset"`
	Length  int64   `yaml:"length"`
	Address *uint16 `yaml:"address"`
}

// StrideConfig selects Count windows of Length bytes, Step bytes apart,
// starting at Offset, and packs them back to back from Address.
type StrideConfig struct {
	Offset  int64  `yaml:"offset"`
	Step    int64  `yaml:"step"`
	Count   int    `yaml:"count"`
	Length  int64  `yaml:"length"`
	Address uint16 `yaml:"address"`
}

// ---- MODBUS ----

type ModbusConfig struct {
	Endpoint string `yaml:"endpoint"` // host:port for Modbus TCP
	RTU      string `yaml:"rtu"`      // serial device for Modbus RTU
	Baud     int    `yaml:"baud"`

	UnitID    uint8 `yaml:"unit_id"`
	TimeoutMs int   `yaml:"timeout_ms"`

	Start    uint16 `yaml:"start"`    // first holding register
	Quantity uint16 `yaml:"quantity"` // registers to read
	Address  uint16 `yaml:"address"`  // S-Record address of the first register
}

// Load reads and decodes a YAML profile. Unknown keys are rejected.
// The result still has to go through Validate and Normalize.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML profile from memory.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &cfg, nil
}
