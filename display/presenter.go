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

package display

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ZaparooProject/go-smartbin/dwell"
	"go.uber.org/zap"
)

// Screen is a two-row text output.
type Screen interface {
	Show(lines Lines) error
	Clear() error
}

// Presenter renders engine events onto a screen. It satisfies the control
// loop's presenter contract.
type Presenter struct {
	screen   Screen
	renderer *Renderer
}

// NewPresenter creates a presenter. A nil renderer uses the defaults.
func NewPresenter(screen Screen, renderer *Renderer) *Presenter {
	if renderer == nil {
		renderer = &Renderer{}
	}
	return &Presenter{screen: screen, renderer: renderer}
}

// Present shows ev.
func (p *Presenter) Present(ev dwell.Event) error {
	return p.screen.Show(p.renderer.Render(ev))
}

// Ready shows the idle screen.
func (p *Presenter) Ready() error {
	return p.screen.Show(ReadyLines)
}

// Clear blanks the screen and leaves the stopped message on it.
func (p *Presenter) Clear() error {
	if err := p.screen.Clear(); err != nil {
		return fmt.Errorf("clear screen: %w", err)
	}
	return p.screen.Show(StoppedLines)
}

// LogScreen writes screen changes to a logger. It stands in for the LCD
// when none is fitted.
type LogScreen struct {
	logger *zap.Logger
	last   Lines
	mu     sync.Mutex
}

// NewLogScreen creates a screen that logs to logger at info level.
func NewLogScreen(logger *zap.Logger) *LogScreen {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogScreen{logger: logger}
}

// Show logs lines if they differ from the previous screen.
func (s *LogScreen) Show(lines Lines) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lines == s.last {
		return nil
	}
	s.last = lines
	s.logger.Info("display",
		zap.String("top", strings.TrimRight(lines[0], " ")),
		zap.String("bottom", strings.TrimRight(lines[1], " ")))
	return nil
}

// Clear forgets the previous screen.
func (s *LogScreen) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = Lines{}
	return nil
}
