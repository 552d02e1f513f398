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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHardwareError(t *testing.T) {
	t.Parallel()

	cause := errors.New("i2c nack")
	err := NewHardwareError("enable antenna", cause)

	assert.ErrorIs(t, err, ErrHardwareFault)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "enable antenna: hardware fault: i2c nack", err.Error())

	bare := NewHardwareError("probe", nil)
	assert.ErrorIs(t, bare, ErrHardwareFault)
	assert.Equal(t, "probe: hardware fault", bare.Error())
}

func TestFrameError(t *testing.T) {
	t.Parallel()

	err := NewFrameError("anticollision", "bcc mismatch")
	assert.ErrorIs(t, err, ErrFrameError)
	assert.Equal(t, "anticollision: frame error: bcc mismatch", err.Error())

	flagged := &FrameError{Op: "exchange", Reason: "parity error", Bits: 0x02}
	assert.Contains(t, flagged.Error(), "0x02")
}

func TestConfigError(t *testing.T) {
	t.Parallel()

	err := NewConfigError("empty_distance_cm", -1.0, "must be a positive number")
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "empty_distance_cm=-1")
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "Nil", err: nil, want: false},
		{name: "Hardware", err: NewHardwareError("reset", nil), want: true},
		{name: "WrappedHardware", err: fmt.Errorf("startup: %w", NewHardwareError("reset", nil)), want: true},
		{name: "Config", err: NewConfigError("x", 1, "bad"), want: true},
		{name: "Frame", err: NewFrameError("exchange", "crc"), want: false},
		{name: "Timeout", err: ErrExchangeTimeout, want: false},
		{name: "NoCard", err: ErrNoCard, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}
