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

package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ZaparooProject/go-smartbin/recycling"
	"go.uber.org/zap"
)

// ReplacePoints swaps the stored recycling points for points and returns
// how many are stored.
func (l *Ledger) ReplacePoints(ctx context.Context, points []recycling.Point) (int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("replace points: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM recycling_points"); err != nil {
		return 0, fmt.Errorf("clear points: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO recycling_points (name, address, locality, lat, lon) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare point insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range points {
		lat := sql.NullFloat64{Float64: p.Location.Lat, Valid: p.HasLocation}
		lon := sql.NullFloat64{Float64: p.Location.Lon, Valid: p.HasLocation}
		if _, err := stmt.ExecContext(ctx, p.Name, p.Address, p.Locality, lat, lon); err != nil {
			return 0, fmt.Errorf("insert point %q: %w", p.Name, err)
		}
	}

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM recycling_points").Scan(&total); err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("replace points: %w", err)
	}
	l.logger.Info("recycling points stored", zap.Int("count", total))
	return total, nil
}

// Points returns the stored recycling points in insertion order.
func (l *Ledger) Points(ctx context.Context) ([]recycling.Point, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT name, address, locality, lat, lon FROM recycling_points ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []recycling.Point
	for rows.Next() {
		var (
			p        recycling.Point
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&p.Name, &p.Address, &p.Locality, &lat, &lon); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		if lat.Valid && lon.Valid {
			p.Location = recycling.Location{Lat: lat.Float64, Lon: lon.Float64}
			p.HasLocation = true
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
