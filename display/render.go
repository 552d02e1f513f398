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

// Package display turns engine events into text for the bin's 16x2
// character LCD and drives the LCD itself.
package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/dwell"
)

// Columns is the width of each display line.
const Columns = 16

// Lines is the content of the two display rows.
type Lines [2]string

// NewLines pads or truncates both rows to the display width. Characters
// outside printable ASCII are replaced with '?'.
func NewLines(top, bottom string) Lines {
	return Lines{fit(top), fit(bottom)}
}

func fit(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == Columns {
			break
		}
		if r < 0x20 || r > 0x7E {
			r = '?'
		}
		b.WriteRune(r)
	}
	return b.String() + strings.Repeat(" ", Columns-b.Len())
}

// Fixed screens.
var (
	ReadyLines   = NewLines("System ready", "Press button")
	StoppedLines = NewLines("System", "stopped")
)

// Renderer formats events. Names resolves the display name for a card;
// nil falls back to the default "User-XXXX" name.
type Renderer struct {
	Names     func(uid smartbin.CardUID) string
	DwellTime time.Duration
}

// Render returns the screen for ev.
func (r *Renderer) Render(ev dwell.Event) Lines {
	switch ev.Kind {
	case dwell.EventIdle:
		if ev.Status == dwell.StatusWaitingForCard {
			return NewLines("Button pressed", fmt.Sprintf("Level: %d%%", ev.Fill))
		}
		return ReadyLines
	case dwell.EventCardDetected:
		return NewLines("Hello "+r.name(ev.UID), fmt.Sprintf("Hold it %ds", int(r.dwellTime().Seconds())))
	case dwell.EventDwellProgress:
		return NewLines(
			fmt.Sprintf("Confirm: %ds", int(ev.Remaining.Seconds())),
			fmt.Sprintf("Level %d%% (%+d%%)", ev.Fill, ev.Delta))
	case dwell.EventDepositConfirmed:
		return NewLines("Registered!", r.name(ev.UID))
	case dwell.EventCardRemoved:
		if ev.Reason == dwell.ReasonTimeout {
			return NewLines("Card removed", "Not confirmed")
		}
		return NewLines("Cancelled", "Not confirmed")
	default:
		return NewLines(ev.Kind.String(), "")
	}
}

func (r *Renderer) name(uid smartbin.CardUID) string {
	if r.Names != nil {
		if name := r.Names(uid); name != "" {
			return name
		}
	}
	return smartbin.DefaultUserName(uid)
}

func (r *Renderer) dwellTime() time.Duration {
	if r.DwellTime <= 0 {
		return dwell.DefaultDwellTime
	}
	return r.DwellTime
}
