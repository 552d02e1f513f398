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

// Package dwell implements the deposit confirmation state machine. A card
// must stay on the reader for the dwell time while the button is held; each
// completed dwell confirms a deposit worth the fill change since the session
// started, then the session re-arms for the next one.
//
// Step is a pure function of its inputs and the clock value they carry, so
// the engine runs without hardware or timers in tests.
package dwell

// Step advances session by one tick and returns the new session (nil when
// idle) with the events to present. The session passed in is not modified.
func Step(cfg Config, session *Session, in Input) (*Session, []Event) {
	if !in.ButtonHeld {
		var events []Event
		if session != nil {
			events = append(events, Event{
				Kind:   EventCardRemoved,
				UID:    session.UID,
				Reason: ReasonButtonReleased,
				At:     in.Now,
			})
		}
		return nil, append(events, Event{Kind: EventIdle, Status: StatusReady, Fill: in.Fill, At: in.Now})
	}

	if in.CardPresent {
		if session == nil || session.UID != in.UID {
			next := &Session{
				UID:          in.UID,
				StartTime:    in.Now,
				BaselineFill: in.Fill,
				LastRead:     in.Now,
			}
			events := []Event{{Kind: EventCardDetected, UID: in.UID, Fill: in.Fill, At: in.Now}}
			return next, append(events, evaluate(cfg, next, in))
		}

		next := *session
		next.LastRead = in.Now
		return &next, []Event{evaluate(cfg, &next, in)}
	}

	if session == nil {
		return nil, []Event{{Kind: EventIdle, Status: StatusWaitingForCard, Fill: in.Fill, At: in.Now}}
	}

	if session.Loss(in.Now) > cfg.LossTimeout {
		return nil, []Event{{
			Kind:   EventCardRemoved,
			UID:    session.UID,
			Reason: ReasonTimeout,
			At:     in.Now,
		}}
	}

	// Missed read inside the grace period: carry on against the existing
	// baseline and leave LastRead alone.
	next := *session
	return &next, []Event{evaluate(cfg, &next, in)}
}

// evaluate reports progress or confirms the deposit, re-arming s.
func evaluate(cfg Config, s *Session, in Input) Event {
	delta := in.Fill - s.BaselineFill
	remaining := s.Remaining(cfg, in.Now)
	if remaining > 0 {
		return Event{
			Kind:      EventDwellProgress,
			UID:       s.UID,
			Remaining: remaining,
			Delta:     delta,
			Fill:      in.Fill,
			At:        in.Now,
		}
	}

	s.BaselineFill = in.Fill
	s.StartTime = in.Now
	return Event{
		Kind:  EventDepositConfirmed,
		UID:   s.UID,
		Delta: delta,
		Fill:  in.Fill,
		At:    in.Now,
	}
}

// Engine owns the single active session. It is not safe for concurrent use;
// the control loop is its only caller.
type Engine struct {
	session *Session
	cfg     Config
}

// NewEngine validates cfg and returns an idle engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Tick feeds one tick of readings to the engine.
func (e *Engine) Tick(in Input) []Event {
	var events []Event
	e.session, events = Step(e.cfg, e.session, in)
	return events
}

// Session returns a copy of the active session, if any.
func (e *Engine) Session() (Session, bool) {
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// Reset discards the active session without emitting anything.
func (e *Engine) Reset() {
	e.session = nil
}

// Config returns the engine timing.
func (e *Engine) Config() Config {
	return e.cfg
}
