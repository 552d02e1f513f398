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

// Package sensor reads the bin's GPIO inputs: the deposit button and the
// single-pin ultrasonic ranger above the waste surface.
package sensor

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when a named GPIO pin does not exist.
var ErrPinNotFound = errors.New("gpio pin not found")

// Button reads a push button wired to a GPIO input. Active-high buttons get
// a pull-down, active-low buttons a pull-up.
type Button struct {
	pin       gpio.PinIO
	activeLow bool
}

// NewButton configures pin as an input for the button.
func NewButton(pin gpio.PinIO, activeLow bool) (*Button, error) {
	pull := gpio.PullDown
	if activeLow {
		pull = gpio.PullUp
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button pin %s: %w", pin, err)
	}
	return &Button{pin: pin, activeLow: activeLow}, nil
}

// OpenButton looks the pin up by name, e.g. "GPIO5", and configures it.
func OpenButton(name string, activeLow bool) (*Button, error) {
	pin, err := openPin(name)
	if err != nil {
		return nil, err
	}
	return NewButton(pin, activeLow)
}

// Read reports whether the button is held. The raw level is returned with
// no debouncing.
func (b *Button) Read() bool {
	return (b.pin.Read() == gpio.High) != b.activeLow
}

func openPin(name string) (gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %s", ErrPinNotFound, name)
	}
	return pin, nil
}
