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

package dwell

import (
	"time"

	"github.com/ZaparooProject/go-smartbin"
)

const (
	// DefaultDwellTime is how long a card must be held before a deposit is
	// confirmed, and the spacing of repeated confirmations.
	DefaultDwellTime = 5 * time.Second
	// DefaultLossTimeout is how long a session survives without a
	// successful card read.
	DefaultLossTimeout = 1500 * time.Millisecond
)

// Config holds the engine timing.
type Config struct {
	DwellTime   time.Duration
	LossTimeout time.Duration
}

// DefaultConfig returns the standard 5 s dwell with a 1.5 s loss timeout.
func DefaultConfig() Config {
	return Config{
		DwellTime:   DefaultDwellTime,
		LossTimeout: DefaultLossTimeout,
	}
}

// Validate checks that both durations are positive.
func (c Config) Validate() error {
	if c.DwellTime <= 0 {
		return smartbin.NewConfigError("dwell_time", c.DwellTime, "must be positive")
	}
	if c.LossTimeout <= 0 {
		return smartbin.NewConfigError("loss_timeout", c.LossTimeout, "must be positive")
	}
	return nil
}
