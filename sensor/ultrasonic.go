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

package sensor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/gpio"
)

const (
	// DefaultEchoTimeout bounds each wait for an echo edge. Sound covers
	// well over the sensor's 4 m range in this time.
	DefaultEchoTimeout = 50 * time.Millisecond

	triggerPulse = 10 * time.Microsecond
	// Round trip time per centimetre of distance is about 58 µs.
	microsecondsPerCM = 29.0
)

var (
	// ErrNoEcho is returned when the echo pulse does not start or end in
	// time.
	ErrNoEcho = errors.New("ultrasonic: no echo")
	// ErrUnexpectedEdge is returned when the first edge after the trigger
	// is falling.
	ErrUnexpectedEdge = errors.New("ultrasonic: echo started with a falling edge")
)

// Ultrasonic drives a single-pin ultrasonic ranger (Grove style): the same
// pin carries the trigger pulse out and the echo pulse back.
type Ultrasonic struct {
	pin     gpio.PinIO
	clock   clockwork.Clock
	timeout time.Duration
	mu      sync.Mutex
}

// NewUltrasonic creates a ranger on pin. A nil clock uses the real clock.
func NewUltrasonic(pin gpio.PinIO, clock clockwork.Clock) *Ultrasonic {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Ultrasonic{pin: pin, clock: clock, timeout: DefaultEchoTimeout}
}

// OpenUltrasonic looks the pin up by name, e.g. "GPIO16".
func OpenUltrasonic(name string) (*Ultrasonic, error) {
	pin, err := openPin(name)
	if err != nil {
		return nil, err
	}
	return NewUltrasonic(pin, nil), nil
}

// SetTimeout changes the per-edge echo timeout.
func (u *Ultrasonic) SetTimeout(timeout time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.timeout = timeout
}

// Measure triggers a ping and returns the distance in centimetres.
func (u *Ultrasonic) Measure() (float64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.trigger(); err != nil {
		return 0, err
	}
	if err := u.pin.In(gpio.Float, gpio.BothEdges); err != nil {
		return 0, fmt.Errorf("ultrasonic: listen on %s: %w", u.pin, err)
	}

	if !u.pin.WaitForEdge(u.timeout) {
		return 0, fmt.Errorf("%w: pulse did not start within %s", ErrNoEcho, u.timeout)
	}
	if u.pin.Read() != gpio.High {
		return 0, ErrUnexpectedEdge
	}
	start := u.clock.Now()

	if !u.pin.WaitForEdge(u.timeout) {
		return 0, fmt.Errorf("%w: pulse did not end within %s", ErrNoEcho, u.timeout)
	}
	return PulseToCM(u.clock.Since(start)), nil
}

func (u *Ultrasonic) trigger() error {
	if err := u.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("ultrasonic: trigger on %s: %w", u.pin, err)
	}
	u.clock.Sleep(triggerPulse)
	if err := u.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("ultrasonic: trigger on %s: %w", u.pin, err)
	}
	return nil
}

// PulseToCM converts an echo pulse width to a one-way distance.
func PulseToCM(pulse time.Duration) float64 {
	us := float64(pulse) / float64(time.Microsecond)
	return us / microsecondsPerCM / 2
}
