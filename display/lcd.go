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

package display

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// DefaultLCDAddress is the I2C address of the JHD1802 controller.
const DefaultLCDAddress = 0x3E

// Control bytes prefixed to every transfer.
const (
	controlCommand = 0x80
	controlData    = 0x40
)

// HD44780-compatible instructions.
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x04
	entryIncrement = 0x02
	cmdDisplayCtl  = 0x08
	displayOn      = 0x04
	cmdFunctionSet = 0x20
	functionTwoRow = 0x08
	cmdSetDDRAM    = 0x80
	rowOffset      = 0x40
)

// LCD drives a JHD1802 16x2 character display over I2C.
type LCD struct {
	dev   *i2c.Dev
	sleep func(time.Duration)
	shown Lines
	valid bool
}

// NewLCD creates a display on bus at addr. Init must be called before use.
func NewLCD(bus i2c.Bus, addr uint16) *LCD {
	return &LCD{dev: &i2c.Dev{Addr: addr, Bus: bus}, sleep: time.Sleep}
}

// Init runs the power-on sequence: two-row mode, display on, cleared,
// left-to-right entry.
func (l *LCD) Init() error {
	l.sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := l.command(cmdFunctionSet | functionTwoRow); err != nil {
			return fmt.Errorf("lcd init: %w", err)
		}
		l.sleep(5 * time.Millisecond)
	}
	if err := l.command(cmdDisplayCtl | displayOn); err != nil {
		return fmt.Errorf("lcd init: %w", err)
	}
	if err := l.Clear(); err != nil {
		return err
	}
	if err := l.command(cmdEntryMode | entryIncrement); err != nil {
		return fmt.Errorf("lcd init: %w", err)
	}
	return nil
}

// Clear blanks the display and homes the cursor.
func (l *LCD) Clear() error {
	if err := l.command(cmdClear); err != nil {
		return fmt.Errorf("lcd clear: %w", err)
	}
	l.sleep(2 * time.Millisecond)
	l.valid = false
	return nil
}

// SetCursor moves the cursor to row, col.
func (l *LCD) SetCursor(row, col int) error {
	addr := byte(col)
	if row > 0 {
		addr |= rowOffset
	}
	return l.command(cmdSetDDRAM | addr)
}

// Write prints s at the cursor.
func (l *LCD) Write(s string) error {
	for i := 0; i < len(s); i++ {
		if err := l.dev.Tx([]byte{controlData, s[i]}, nil); err != nil {
			return fmt.Errorf("lcd write: %w", err)
		}
	}
	return nil
}

// Show writes both rows. Rows identical to what is already on the display
// are skipped.
func (l *LCD) Show(lines Lines) error {
	for row, text := range lines {
		if l.valid && l.shown[row] == text {
			continue
		}
		if err := l.SetCursor(row, 0); err != nil {
			l.valid = false
			return fmt.Errorf("lcd cursor: %w", err)
		}
		if err := l.Write(text); err != nil {
			l.valid = false
			return err
		}
		l.shown[row] = text
	}
	l.valid = true
	return nil
}

func (l *LCD) command(cmd byte) error {
	return l.dev.Tx([]byte{controlCommand, cmd}, nil)
}
