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

// Package ledger persists users, confirmed deposits, per-user totals and
// recycling points in a SQLite database.
package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// ErrUnknownUser is returned when a card has never been registered.
var ErrUnknownUser = errors.New("unknown user")

// DefaultHistoryLimit is the number of deposits History returns when no
// limit is given.
const DefaultHistoryLimit = 10

// User is a registered card holder.
type User struct {
	RegisteredAt time.Time
	Name         string
	UID          smartbin.CardUID
}

// UserStats are the running totals for one card.
type UserStats struct {
	UpdatedAt time.Time
	Name      string
	Deposits  int
	TotalKg   float64
	UID       smartbin.CardUID
}

// Deposit is a stored deposit joined with its owner's name.
type Deposit struct {
	At            time.Time
	Name          string
	ID            int64
	Kg            float64
	Delta         int
	ResultingFill int
	UID           smartbin.CardUID
}

// Counts are the row counts of the main tables.
type Counts struct {
	Users    int
	Deposits int
	Stats    int
}

// Empty reports whether nothing has been recorded yet.
func (c Counts) Empty() bool {
	return c.Users == 0 && c.Deposits == 0
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithClock sets the clock used for registration and update timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// Ledger is a handle to the deposit database. It is safe for concurrent
// use.
type Ledger struct {
	db     *sql.DB
	logger *zap.Logger
	clock  clockwork.Clock
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, opts ...Option) (*Ledger, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	// SQLite allows one writer; a single connection keeps transactions serial.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, logger: zap.NewNop(), clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.logger.Debug("ledger opened", zap.String("path", path))
	return l, nil
}

func (l *Ledger) migrate() error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("apply ledger schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RegisterUser adds a card holder. It returns false if the card is already
// registered, in which case the existing name is kept.
func (l *Ledger) RegisterUser(ctx context.Context, uid smartbin.CardUID, name string) (bool, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("register user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added, err := l.ensureUser(ctx, tx, uid, name)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("register user: %w", err)
	}
	if added {
		l.logger.Info("user registered", zap.Stringer("uid", uid), zap.String("name", name))
	}
	return added, nil
}

func (l *Ledger) ensureUser(ctx context.Context, tx *sql.Tx, uid smartbin.CardUID, name string) (bool, error) {
	now := l.clock.Now().UnixMilli()
	res, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO users (uid, name, registered_at) VALUES (?, ?, ?)",
		uid.String(), name, now)
	if err != nil {
		return false, fmt.Errorf("insert user %s: %w", uid, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert user %s: %w", uid, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO user_stats (uid, total_deposits, total_kg, updated_at) VALUES (?, 0, 0, ?)",
		uid.String(), now); err != nil {
		return false, fmt.Errorf("insert stats %s: %w", uid, err)
	}
	return n > 0, nil
}

// RecordDeposit stores a confirmed deposit and adds it to the card's
// totals. Unknown cards are registered under their default name first.
// Everything happens in one transaction.
func (l *Ledger) RecordDeposit(ctx context.Context, rec smartbin.DepositRecord) error {
	at := rec.Timestamp
	if at.IsZero() {
		at = l.clock.Now()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record deposit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	added, err := l.ensureUser(ctx, tx, rec.UID, smartbin.DefaultUserName(rec.UID))
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO deposits (uid, delta, kg, resulting_fill, deposited_at) VALUES (?, ?, ?, ?, ?)",
		rec.UID.String(), rec.Delta, rec.EstimatedMass, rec.ResultingFill, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE user_stats SET total_deposits = total_deposits + 1, total_kg = total_kg + ?, updated_at = ? WHERE uid = ?",
		rec.EstimatedMass, at.UnixMilli(), rec.UID.String()); err != nil {
		return fmt.Errorf("update stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record deposit: %w", err)
	}

	if added {
		l.logger.Info("user registered", zap.Stringer("uid", rec.UID),
			zap.String("name", smartbin.DefaultUserName(rec.UID)))
	}
	l.logger.Info("deposit stored",
		zap.Int64("id", id),
		zap.Stringer("uid", rec.UID),
		zap.Int("delta", rec.Delta),
		zap.Float64("kg", rec.EstimatedMass))
	return nil
}

// UserName returns the registered name of uid.
func (l *Ledger) UserName(ctx context.Context, uid smartbin.CardUID) (string, error) {
	var name string
	err := l.db.QueryRowContext(ctx, "SELECT name FROM users WHERE uid = ?", uid.String()).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, uid)
	}
	if err != nil {
		return "", fmt.Errorf("lookup user %s: %w", uid, err)
	}
	return name, nil
}

// Users returns every registered card holder in registration order.
func (l *Ledger) Users(ctx context.Context) ([]User, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT uid, name, registered_at FROM users ORDER BY registered_at, uid")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []User
	for rows.Next() {
		var (
			u   User
			uid string
			ms  int64
		)
		if err := rows.Scan(&uid, &u.Name, &ms); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if u.UID, err = smartbin.ParseCardUID(uid); err != nil {
			return nil, err
		}
		u.RegisteredAt = time.UnixMilli(ms)
		users = append(users, u)
	}
	return users, rows.Err()
}

// Stats returns the totals of every user, heaviest depositor first.
func (l *Ledger) Stats(ctx context.Context) ([]UserStats, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT u.uid, u.name, s.total_deposits, s.total_kg, s.updated_at
		FROM users u
		JOIN user_stats s ON s.uid = u.uid
		ORDER BY s.total_kg DESC, u.uid`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []UserStats
	for rows.Next() {
		var (
			s   UserStats
			uid string
			ms  int64
		)
		if err := rows.Scan(&uid, &s.Name, &s.Deposits, &s.TotalKg, &ms); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		if s.UID, err = smartbin.ParseCardUID(uid); err != nil {
			return nil, err
		}
		s.UpdatedAt = time.UnixMilli(ms)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// History returns the most recent deposits, newest first. A zero uid
// returns deposits of every card. A limit of zero or less uses
// DefaultHistoryLimit.
func (l *Ledger) History(ctx context.Context, uid smartbin.CardUID, limit int) ([]Deposit, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT d.id, d.uid, u.name, d.delta, d.kg, d.resulting_fill, d.deposited_at
		FROM deposits d
		JOIN users u ON u.uid = d.uid`
	args := []any{}
	if !uid.IsZero() {
		query += " WHERE d.uid = ?"
		args = append(args, uid.String())
	}
	query += " ORDER BY d.deposited_at DESC, d.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var deposits []Deposit
	for rows.Next() {
		var (
			d   Deposit
			hex string
			ms  int64
		)
		if err := rows.Scan(&d.ID, &hex, &d.Name, &d.Delta, &d.Kg, &d.ResultingFill, &ms); err != nil {
			return nil, fmt.Errorf("scan deposit: %w", err)
		}
		if d.UID, err = smartbin.ParseCardUID(hex); err != nil {
			return nil, err
		}
		d.At = time.UnixMilli(ms)
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// Counts returns the row counts used by the integrity report.
func (l *Ledger) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := l.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM deposits),
			(SELECT COUNT(*) FROM user_stats)`).Scan(&c.Users, &c.Deposits, &c.Stats)
	if err != nil {
		return c, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}
