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

// DefaultKgPerPercent is the mass estimate for one percent of bin volume.
const DefaultKgPerPercent = 0.05

// DepositRecord is a confirmed deposit handed to storage.
type DepositRecord struct {
	Timestamp     time.Time
	UID           CardUID
	EstimatedMass float64 // kg, negative when the level dropped
	Delta         int     // fill change in percentage points, may be negative
	ResultingFill int
}

// NewDepositRecord builds a record for uid, estimating the mass from delta.
func NewDepositRecord(uid CardUID, delta, resultingFill int, kgPerPercent float64, at time.Time) DepositRecord {
	return DepositRecord{
		UID:           uid,
		Delta:         delta,
		EstimatedMass: EstimateMass(delta, kgPerPercent),
		ResultingFill: resultingFill,
		Timestamp:     at,
	}
}

// EstimateMass converts a fill delta into kilograms.
func EstimateMass(delta int, kgPerPercent float64) float64 {
	return float64(delta) * kgPerPercent
}
