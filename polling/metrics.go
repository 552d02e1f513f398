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
	"sync/atomic"
	"time"
)

// Metrics is a snapshot of the loop's operational counters
type Metrics struct {
	Ticks           int64         // Total number of ticks run
	CardReads       int64         // Ticks with the button held and a card read
	MissedReads     int64         // Ticks with the button held and no card read
	RangeErrors     int64         // Failed distance measurements
	Deposits        int64         // Deposits recorded in the store
	StoreFailures   int64         // Deposits dropped after all retries
	PresentErrors   int64         // Presenter failures
	LastTickLatency time.Duration // Duration of the last tick
}

// counters are updated by the loop goroutine and read from anywhere.
type counters struct {
	ticks           atomic.Int64
	cardReads       atomic.Int64
	missedReads     atomic.Int64
	rangeErrors     atomic.Int64
	deposits        atomic.Int64
	storeFailures   atomic.Int64
	presentErrors   atomic.Int64
	lastTickLatency atomic.Int64 // in nanoseconds
}

func (c *counters) snapshot() Metrics {
	return Metrics{
		Ticks:           c.ticks.Load(),
		CardReads:       c.cardReads.Load(),
		MissedReads:     c.missedReads.Load(),
		RangeErrors:     c.rangeErrors.Load(),
		Deposits:        c.deposits.Load(),
		StoreFailures:   c.storeFailures.Load(),
		PresentErrors:   c.presentErrors.Load(),
		LastTickLatency: time.Duration(c.lastTickLatency.Load()),
	}
}
