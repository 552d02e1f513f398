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

// Session is the state of one card being presented. It exists only while
// the button is held and the card has been read within the loss timeout.
type Session struct {
	StartTime    time.Time // start of the current dwell, moved on re-arm
	LastRead     time.Time // last tick the card was actually read
	BaselineFill int
	UID          smartbin.CardUID
}

// Remaining returns the dwell time left at now. Zero or less means the
// deposit is due.
func (s *Session) Remaining(cfg Config, now time.Time) time.Duration {
	return cfg.DwellTime - now.Sub(s.StartTime)
}

// Loss returns how long the card has gone unread at now.
func (s *Session) Loss(now time.Time) time.Duration {
	return now.Sub(s.LastRead)
}

// Input is one tick's worth of readings.
type Input struct {
	Now         time.Time
	Fill        int
	UID         smartbin.CardUID // valid only when CardPresent
	ButtonHeld  bool
	CardPresent bool
}
