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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-smartbin"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	// EventIdle reports that no session is active. Status tells why.
	EventIdle EventKind = iota
	// EventCardDetected starts a new session.
	EventCardDetected
	// EventDwellProgress reports the time left and the fill delta so far.
	EventDwellProgress
	// EventDepositConfirmed credits Delta to the card. The session re-arms.
	EventDepositConfirmed
	// EventCardRemoved ends a session. Reason tells why.
	EventCardRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventIdle:
		return "Idle"
	case EventCardDetected:
		return "CardDetected"
	case EventDwellProgress:
		return "DwellProgress"
	case EventDepositConfirmed:
		return "DepositConfirmed"
	case EventCardRemoved:
		return "CardRemoved"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Status distinguishes the two idle situations.
type Status int

const (
	// StatusReady means the button is released.
	StatusReady Status = iota
	// StatusWaitingForCard means the button is held but no card is read.
	StatusWaitingForCard
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusWaitingForCard:
		return "waiting for card"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// RemovalReason tells why a session ended.
type RemovalReason int

const (
	ReasonButtonReleased RemovalReason = iota
	ReasonTimeout
)

func (r RemovalReason) String() string {
	switch r {
	case ReasonButtonReleased:
		return "button released"
	case ReasonTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("RemovalReason(%d)", int(r))
	}
}

// Event is a single output of the engine. Only the fields relevant to Kind
// are set.
type Event struct {
	At        time.Time
	Remaining time.Duration // DwellProgress
	Kind      EventKind
	Status    Status        // Idle
	Reason    RemovalReason // CardRemoved
	Delta     int           // DwellProgress, DepositConfirmed
	Fill      int           // current fill, all kinds but CardRemoved
	UID       smartbin.CardUID
}

func (e Event) String() string {
	switch e.Kind {
	case EventIdle:
		return fmt.Sprintf("Idle(%s)", e.Status)
	case EventCardDetected:
		return fmt.Sprintf("CardDetected(%s)", e.UID)
	case EventDwellProgress:
		return fmt.Sprintf("DwellProgress(%s, remaining=%s, delta=%d)", e.UID, e.Remaining, e.Delta)
	case EventDepositConfirmed:
		return fmt.Sprintf("DepositConfirmed(%s, delta=%d, fill=%d)", e.UID, e.Delta, e.Fill)
	case EventCardRemoved:
		return fmt.Sprintf("CardRemoved(%s, %s)", e.UID, e.Reason)
	default:
		return e.Kind.String()
	}
}
