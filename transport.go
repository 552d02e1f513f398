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

package smartbin

// Bus is the register-level capability the transceiver drives. Reads and
// writes are synchronous and unqueued; implementations are not required to
// be safe for concurrent use.
type Bus interface {
	// ReadRegister returns the value of the register at addr
	ReadRegister(addr byte) (byte, error)

	// WriteRegister stores val into the register at addr
	WriteRegister(addr, val byte) error

	// Close releases the underlying bus
	Close() error

	// Type returns the bus type
	Type() BusType
}

// BusType identifies the physical link to the reader
type BusType string

const (
	// BusI2C represents an I2C connection.
	BusI2C BusType = "i2c"
	// BusUART represents the reader's UART register protocol.
	BusUART BusType = "uart"
	// BusMock represents a simulated bus for testing
	BusMock BusType = "mock"
)

// setBits performs a read-modify-write setting mask in the register.
func setBits(bus Bus, addr, mask byte) error {
	val, err := bus.ReadRegister(addr)
	if err != nil {
		return err
	}
	return bus.WriteRegister(addr, val|mask)
}

// clearBits performs a read-modify-write clearing mask in the register.
func clearBits(bus Bus, addr, mask byte) error {
	val, err := bus.ReadRegister(addr)
	if err != nil {
		return err
	}
	return bus.WriteRegister(addr, val&^mask)
}
