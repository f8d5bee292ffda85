// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/modbus"
)

// Modbus allows at most 125 registers per read request.
const maxRegistersPerRead = 125

// registerReader is the subset of modbus.Client used here.
type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// ModbusConfig describes the register window to dump.
type ModbusConfig struct {
	Endpoint string // host:port for Modbus TCP
	RTU      string // serial device for Modbus RTU
	Baud     int

	UnitID  uint8
	Timeout time.Duration

	Start    uint16 // first holding register
	Quantity uint16 // registers to read
	Address  uint16 // S-Record address of the first register
}

// ModbusSource dumps holding registers, two big-endian bytes per register.
type ModbusSource struct {
	client   registerReader
	closer   io.Closer
	start    uint16
	quantity uint16
	address  uint16
	done     uint16
}

func newModbusSource(client registerReader, cfg ModbusConfig) (*ModbusSource, error) {
	if cfg.Quantity == 0 {
		return nil, errors.New("modbus source: quantity required")
	}
	if !fits(uint64(cfg.Address), 2*int64(cfg.Quantity)) {
		return nil, fmt.Errorf("modbus source: %d registers at 0x%04X: %w", cfg.Quantity, cfg.Address, ErrAddressRange)
	}
	if int(cfg.Start)+int(cfg.Quantity) > addressSpace {
		return nil, fmt.Errorf("modbus source: registers %d+%d exceed the register space", cfg.Start, cfg.Quantity)
	}
	return &ModbusSource{
		client:   client,
		start:    cfg.Start,
		quantity: cfg.Quantity,
		address:  cfg.Address,
	}, nil
}

// DialModbus connects over TCP when Endpoint is set, otherwise over RTU.
func DialModbus(cfg ModbusConfig) (*ModbusSource, error) {
	if cfg.Endpoint != "" {
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("modbus connect %s: %w", cfg.Endpoint, err)
		}
		return attach(modbus.NewClient(h), h, cfg)
	}

	if cfg.RTU == "" {
		return nil, errors.New("modbus source: endpoint or rtu device required")
	}
	h := modbus.NewRTUClientHandler(cfg.RTU)
	h.BaudRate = cfg.Baud
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID
	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus connect %s: %w", cfg.RTU, err)
	}
	return attach(modbus.NewClient(h), h, cfg)
}

func attach(client registerReader, closer io.Closer, cfg ModbusConfig) (*ModbusSource, error) {
	src, err := newModbusSource(client, cfg)
	if err != nil {
		closer.Close()
		return nil, err
	}
	src.closer = closer
	return src, nil
}

// Next reads the next block of registers.
func (s *ModbusSource) Next(ctx context.Context) (Segment, error) {
	if s.done >= s.quantity {
		return Segment{}, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return Segment{}, err
	}

	n := s.quantity - s.done
	if n > maxRegistersPerRead {
		n = maxRegistersPerRead
	}
	reg := s.start + s.done

	data, err := s.client.ReadHoldingRegisters(reg, n)
	if err != nil {
		return Segment{}, fmt.Errorf("read holding registers %d+%d: %w", reg, n, err)
	}
	if len(data) != 2*int(n) {
		return Segment{}, fmt.Errorf("read holding registers %d+%d: got %d bytes, want %d", reg, n, len(data), 2*n)
	}

	seg := Segment{Address: s.address + 2*s.done, Data: data}
	s.done += n
	return seg, nil
}

// Size returns the number of bytes the register window produces.
func (s *ModbusSource) Size() int64 {
	return 2 * int64(s.quantity)
}

// Close closes the Modbus connection.
func (s *ModbusSource) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
