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
	"math"
)

// FillPolicy maps a ranging distance to a fill percentage in [0,100]. Larger
// distances never map to a higher fill.
type FillPolicy interface {
	Percentage(distanceCM float64) int
}

// LinearFill maps distance linearly: 0 cm is full, EmptyDistanceCM is empty.
type LinearFill struct {
	EmptyDistanceCM float64
}

// NewLinearFill validates the empty distance and returns the policy.
func NewLinearFill(emptyDistanceCM float64) (*LinearFill, error) {
	if err := validateEmptyDistance(emptyDistanceCM); err != nil {
		return nil, err
	}
	return &LinearFill{EmptyDistanceCM: emptyDistanceCM}, nil
}

// Percentage returns clamp(0, 100, round(100 - d/empty*100)).
func (f *LinearFill) Percentage(distanceCM float64) int {
	return clampPercent(math.Round(linearPercent(distanceCM, f.EmptyDistanceCM)))
}

// SteppedFill quantises the linear mapping down to Steps equal bands, so
// the reported level only moves once the surface crosses a band edge.
type SteppedFill struct {
	EmptyDistanceCM float64
	Steps           int
}

// NewSteppedFill validates the configuration and returns the policy.
func NewSteppedFill(emptyDistanceCM float64, steps int) (*SteppedFill, error) {
	if err := validateEmptyDistance(emptyDistanceCM); err != nil {
		return nil, err
	}
	if steps < 1 || steps > 100 {
		return nil, NewConfigError("fill_steps", steps, "must be between 1 and 100")
	}
	return &SteppedFill{EmptyDistanceCM: emptyDistanceCM, Steps: steps}, nil
}

// Percentage returns the fill rounded down to the nearest band.
func (f *SteppedFill) Percentage(distanceCM float64) int {
	p := clampPercent(math.Round(linearPercent(distanceCM, f.EmptyDistanceCM)))
	band := 100.0 / float64(f.Steps)
	return clampPercent(math.Floor(float64(p)/band) * band)
}

// FillPolicyByName builds a policy from its configuration name.
func FillPolicyByName(name string, emptyDistanceCM float64, steps int) (FillPolicy, error) {
	switch name {
	case "", "linear":
		return NewLinearFill(emptyDistanceCM)
	case "stepped":
		return NewSteppedFill(emptyDistanceCM, steps)
	default:
		return nil, NewConfigError("fill_policy", name, "must be linear or stepped")
	}
}

func validateEmptyDistance(d float64) error {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return NewConfigError("empty_distance_cm", d, "must be a positive number")
	}
	return nil
}

func linearPercent(distanceCM, emptyDistanceCM float64) float64 {
	if math.IsNaN(distanceCM) {
		return 0
	}
	return 100 - distanceCM/emptyDistanceCM*100
}

func clampPercent(p float64) int {
	switch {
	case p <= 0:
		return 0
	case p >= 100:
		return 100
	default:
		return int(p)
	}
}
