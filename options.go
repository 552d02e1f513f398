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
	"time"
)

// Option is a functional option for configuring a Transceiver
type Option func(*Transceiver) error

// WithPollLimit sets how many times Exchange polls the interrupt register
// before giving up.
func WithPollLimit(limit int) Option {
	return func(t *Transceiver) error {
		if limit <= 0 {
			return NewConfigError("poll_limit", limit, "must be positive")
		}
		t.pollLimit = limit
		return nil
	}
}

// WithPollInterval sets the pause between interrupt register polls.
func WithPollInterval(interval time.Duration) Option {
	return func(t *Transceiver) error {
		if interval < 0 {
			return NewConfigError("poll_interval", interval, "must not be negative")
		}
		t.pollInterval = interval
		return nil
	}
}

// WithResetDelay sets how long Init waits after the soft reset.
func WithResetDelay(delay time.Duration) Option {
	return func(t *Transceiver) error {
		if delay < 0 {
			return NewConfigError("reset_delay", delay, "must not be negative")
		}
		t.resetDelay = delay
		return nil
	}
}

// WithSleep replaces the function used for all pauses. Tests use it to run
// the exchange without wall-clock delays.
func WithSleep(sleep func(time.Duration)) Option {
	return func(t *Transceiver) error {
		if sleep == nil {
			return NewConfigError("sleep", nil, "must not be nil")
		}
		t.sleep = sleep
		return nil
	}
}
