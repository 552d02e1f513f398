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
	"context"
	"io"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/dwell"
)

// ButtonInput reports the raw button level. Debouncing, if any, is done by
// the implementation.
type ButtonInput interface {
	Read() bool
}

// RangeSensor measures the distance from the lid to the waste surface.
type RangeSensor interface {
	Measure() (float64, error)
}

// CardReader identifies the card in the field. Every failure reads as no
// card. *smartbin.Transceiver implements it.
type CardReader interface {
	ReadUID() (smartbin.CardUID, bool)
}

// Presenter shows engine events to the user.
type Presenter interface {
	Present(ev dwell.Event) error
	Clear() error
}

// DepositStore durably records confirmed deposits.
type DepositStore interface {
	RecordDeposit(ctx context.Context, rec smartbin.DepositRecord) error
}

// Components are the collaborators sampled and driven by the loop. Button,
// Ranger, Reader and Fill are required.
type Components struct {
	Button    ButtonInput
	Ranger    RangeSensor
	Reader    CardReader
	Fill      smartbin.FillPolicy
	Presenter Presenter
	Store     DepositStore
	// Closers are closed in reverse order on shutdown.
	Closers []io.Closer
}

func (c Components) validate() error {
	switch {
	case c.Button == nil:
		return smartbin.NewConfigError("button", nil, "must not be nil")
	case c.Ranger == nil:
		return smartbin.NewConfigError("ranger", nil, "must not be nil")
	case c.Reader == nil:
		return smartbin.NewConfigError("reader", nil, "must not be nil")
	case c.Fill == nil:
		return smartbin.NewConfigError("fill_policy", nil, "must not be nil")
	}
	return nil
}
