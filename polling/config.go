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

package polling

import (
	"time"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/dwell"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	// DefaultTickPeriod is the pause between control loop ticks.
	DefaultTickPeriod = 200 * time.Millisecond
	// DefaultStoreRetries is how many extra attempts a deposit write gets.
	DefaultStoreRetries = 2
	// DefaultStoreRetryDelay is the pause between deposit write attempts.
	DefaultStoreRetryDelay = 50 * time.Millisecond
)

// Config contains configuration options for the control loop
type Config struct {
	// Clock drives tick timestamps and the inter-tick sleep. Nil uses the
	// real clock.
	Clock clockwork.Clock
	// Logger receives loop diagnostics. Nil disables logging.
	Logger *zap.Logger
	// Dwell holds the confirmation timing.
	Dwell dwell.Config
	// TickPeriod is the fixed sleep between ticks.
	TickPeriod time.Duration
	// KgPerPercent converts a fill delta into an estimated mass.
	KgPerPercent float64
	// StoreRetries bounds the extra attempts at recording a deposit.
	StoreRetries int
	// StoreRetryDelay is the pause between those attempts.
	StoreRetryDelay time.Duration
}

// DefaultConfig returns the default loop configuration
func DefaultConfig() *Config {
	return &Config{
		Clock:           clockwork.NewRealClock(),
		Logger:          zap.NewNop(),
		Dwell:           dwell.DefaultConfig(),
		TickPeriod:      DefaultTickPeriod,
		KgPerPercent:    smartbin.DefaultKgPerPercent,
		StoreRetries:    DefaultStoreRetries,
		StoreRetryDelay: DefaultStoreRetryDelay,
	}
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.TickPeriod <= 0 {
		return smartbin.NewConfigError("tick_period", c.TickPeriod, "must be positive")
	}
	if c.KgPerPercent < 0 {
		return smartbin.NewConfigError("kg_per_percent", c.KgPerPercent, "must not be negative")
	}
	if c.StoreRetries < 0 {
		return smartbin.NewConfigError("store_retries", c.StoreRetries, "must not be negative")
	}
	if c.StoreRetryDelay < 0 {
		return smartbin.NewConfigError("store_retry_delay", c.StoreRetryDelay, "must not be negative")
	}
	return c.Dwell.Validate()
}

// withDefaults fills unset collaborators.
func (c *Config) withDefaults() *Config {
	out := *c
	if out.Clock == nil {
		out.Clock = clockwork.NewRealClock()
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return &out
}
