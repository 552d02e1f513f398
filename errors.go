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

import (
	"errors"
	"fmt"
)

// Error taxonomy.
var (
	// ErrHardwareFault is returned when the reader cannot be brought up.
	ErrHardwareFault = errors.New("hardware fault")
	// ErrFrameError marks a malformed or rejected response from the card.
	ErrFrameError = errors.New("frame error")
	// ErrConfig marks an invalid calibration or configuration value.
	ErrConfig = errors.New("invalid configuration")

	// ErrExchangeTimeout is returned when the poll cap runs out before the
	// reader raises a completion interrupt.
	ErrExchangeTimeout = errors.New("exchange timed out")
	// ErrNoCard means no card answered the request.
	ErrNoCard = errors.New("no card in field")
)

// HardwareError describes a failed reader bring-up step.
type HardwareError struct {
	Err error
	Op  string
}

func (e *HardwareError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, ErrHardwareFault)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrHardwareFault, e.Err)
}

// Unwrap allows errors.Is to match both ErrHardwareFault and the cause.
func (e *HardwareError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrHardwareFault}
	}
	return []error{ErrHardwareFault, e.Err}
}

// NewHardwareError wraps err as a hardware fault raised by op.
func NewHardwareError(op string, err error) *HardwareError {
	return &HardwareError{Op: op, Err: err}
}

// FrameError reports a response that failed validation. Bits holds the
// error register value when the reader flagged the frame, or zero when the
// frame was rejected by length or checksum.
type FrameError struct {
	Op     string
	Reason string
	Bits   byte
}

func (e *FrameError) Error() string {
	if e.Bits != 0 {
		return fmt.Sprintf("%s: %v: %s (error register 0x%02X)", e.Op, ErrFrameError, e.Reason, e.Bits)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrFrameError, e.Reason)
}

func (*FrameError) Unwrap() error {
	return ErrFrameError
}

// NewFrameError creates a frame error without register bits.
func NewFrameError(op, reason string) *FrameError {
	return &FrameError{Op: op, Reason: reason}
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Value  any
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrConfig, e.Field, e.Value, e.Reason)
}

func (*ConfigError) Unwrap() error {
	return ErrConfig
}

// NewConfigError creates a configuration error for field.
func NewConfigError(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

// IsFatal reports whether err should abort startup. Frame errors and
// timeouts are part of normal operation and never fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrHardwareFault) || errors.Is(err, ErrConfig)
}
