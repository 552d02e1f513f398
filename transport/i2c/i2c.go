// go-smartbin
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-smartbin.
//
// go-smartbin is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-smartbin is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-smartbin; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package i2c provides the I2C register bus for MFRC522-compatible readers
package i2c

import (
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/internal/register"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddress is the reader's 7-bit I2C address with its address
	// pins strapped low.
	DefaultAddress = 0x28

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz
)

// Transport implements smartbin.Bus over I2C. A register read is a single
// combined transaction: the address byte is written, then one byte is read.
// A register write sends the address followed by the value.
type Transport struct {
	dev     *i2c.Dev
	closer  i2c.BusCloser
	busName string
}

// New opens the named I2C bus ("" selects the first one) and returns a
// transport for the reader at addr.
func New(busName string, addr uint16) (*Transport, error) {
	// Initialize host
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", busName, err)
	}

	// Ignore error, continue with default speed
	_ = bus.SetSpeed(maxClockFreq)

	t := NewFromBus(bus, addr)
	t.closer = bus
	t.busName = bus.String()
	return t, nil
}

// NewFromBus wraps an already opened bus. Close does not close bus.
func NewFromBus(bus i2c.Bus, addr uint16) *Transport {
	return &Transport{
		dev:     &i2c.Dev{Addr: addr, Bus: bus},
		busName: bus.String(),
	}
}

// ReadRegister implements smartbin.Bus
func (t *Transport) ReadRegister(addr byte) (byte, error) {
	var r [1]byte
	if err := t.dev.Tx([]byte{addr}, r[:]); err != nil {
		return 0, fmt.Errorf("i2c %s: read register 0x%02X: %w", t.busName, addr, err)
	}
	return r[0], nil
}

// WriteRegister implements smartbin.Bus
func (t *Transport) WriteRegister(addr, val byte) error {
	if err := t.dev.Tx([]byte{addr, val}, nil); err != nil {
		return fmt.Errorf("i2c %s: write register 0x%02X: %w", t.busName, addr, err)
	}
	return nil
}

// Close closes the bus if New opened it
func (t *Transport) Close() error {
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	if err != nil {
		return fmt.Errorf("failed to close I2C bus: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() smartbin.BusType {
	return smartbin.BusI2C
}

// String returns the bus and device address, e.g. "I2C1@0x28"
func (t *Transport) String() string {
	return fmt.Sprintf("%s@0x%02X", t.busName, t.dev.Addr)
}

// ErrNotReader is returned by Probe when the version register holds an
// unknown value.
var ErrNotReader = errors.New("device is not an MFRC522-compatible reader")

// Probe reads the version register and checks it against the known reader
// versions.
func (t *Transport) Probe() (byte, error) {
	v, err := t.ReadRegister(register.Version)
	if err != nil {
		return 0, err
	}
	if !register.KnownVersion(v) {
		return v, fmt.Errorf("%w: version 0x%02X", ErrNotReader, v)
	}
	return v, nil
}

var _ smartbin.Bus = (*Transport)(nil)
