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

// Package uart provides the UART register bus for MFRC522-compatible readers.
//
// The reader's UART interface is a byte protocol without framing: a read
// sends the address with the MSB set and receives one byte; a write sends
// the address and the value and receives the address back as an
// acknowledgement.
package uart

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-smartbin"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the reader's UART speed after power-on.
	DefaultBaudRate = 9600
	// DefaultTimeout bounds the wait for each response byte.
	DefaultTimeout = 50 * time.Millisecond

	readFlag    = 0x80
	addressMask = 0x3F
)

var (
	// ErrTimeout is returned when the reader does not answer in time.
	ErrTimeout = errors.New("uart: no response from reader")
	// ErrBadEcho is returned when a write is acknowledged with the wrong
	// address.
	ErrBadEcho = errors.New("uart: unexpected write acknowledgement")
)

// Port is the subset of serial.Port the transport uses. The read timeout
// must already be applied; a timed-out Read returns 0 bytes and no error.
type Port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

// Transport implements smartbin.Bus over the reader's UART interface
type Transport struct {
	port     Port
	portName string
}

// New opens portName at baud and returns a transport. A zero baud selects
// DefaultBaudRate.
func New(portName string, baud int) (*Transport, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(portName, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(DefaultTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	return NewFromPort(port, portName), nil
}

// NewFromPort wraps an open port. The transport takes ownership of port.
func NewFromPort(port Port, portName string) *Transport {
	return &Transport{port: port, portName: portName}
}

// ReadRegister implements smartbin.Bus
func (t *Transport) ReadRegister(addr byte) (byte, error) {
	if err := t.send(readFlag | addr&addressMask); err != nil {
		return 0, fmt.Errorf("read register 0x%02X: %w", addr, err)
	}
	val, err := t.receive()
	if err != nil {
		return 0, fmt.Errorf("read register 0x%02X: %w", addr, err)
	}
	return val, nil
}

// WriteRegister implements smartbin.Bus
func (t *Transport) WriteRegister(addr, val byte) error {
	addr &= addressMask
	if err := t.send(addr, val); err != nil {
		return fmt.Errorf("write register 0x%02X: %w", addr, err)
	}
	echo, err := t.receive()
	if err != nil {
		return fmt.Errorf("write register 0x%02X: %w", addr, err)
	}
	if echo != addr {
		return fmt.Errorf("write register 0x%02X: %w: got 0x%02X", addr, ErrBadEcho, echo)
	}
	return nil
}

func (t *Transport) send(b ...byte) error {
	// Drop stale bytes left by an earlier timed-out exchange.
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	n, err := t.port.Write(b)
	if err != nil {
		return fmt.Errorf("write to %s: %w", t.portName, err)
	}
	if n != len(b) {
		return fmt.Errorf("short write to %s: %d of %d bytes", t.portName, n, len(b))
	}
	return nil
}

func (t *Transport) receive() (byte, error) {
	var buf [1]byte
	n, err := t.port.Read(buf[:])
	if err != nil {
		return 0, fmt.Errorf("read from %s: %w", t.portName, err)
	}
	if n == 0 {
		return 0, ErrTimeout
	}
	return buf[0], nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() smartbin.BusType {
	return smartbin.BusUART
}

// PortName returns the serial device path
func (t *Transport) PortName() string {
	return t.portName
}

var _ smartbin.Bus = (*Transport)(nil)
