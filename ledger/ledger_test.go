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
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/recycling"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	epoch = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cardA = smartbin.CardUID{0xAA, 0xBB, 0xCC, 0xDD}
	cardB = smartbin.CardUID{0x01, 0x02, 0x03, 0x04}
)

func openTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smartbin.db")
	l, err := Open(path, WithClock(clockwork.NewFakeClockAt(epoch)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, path
}

func deposit(uid smartbin.CardUID, delta, fill int, offset time.Duration) smartbin.DepositRecord {
	return smartbin.NewDepositRecord(uid, delta, fill, smartbin.DefaultKgPerPercent, epoch.Add(offset))
}

func TestOpen_Empty(t *testing.T) {
	t.Parallel()

	l, _ := openTestLedger(t)
	c, err := l.Counts(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Equal(t, Counts{}, c)
}

func TestRegisterUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := openTestLedger(t)

	added, err := l.RegisterUser(ctx, cardA, "Alice")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = l.RegisterUser(ctx, cardA, "Mallory")
	require.NoError(t, err)
	assert.False(t, added)

	name, err := l.UserName(ctx, cardA)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)

	_, err = l.UserName(ctx, cardB)
	require.ErrorIs(t, err, ErrUnknownUser)

	users, err := l.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, cardA, users[0].UID)
	assert.True(t, users[0].RegisteredAt.Equal(epoch))

	c, err := l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 1, Stats: 1}, c)
}

func TestRecordDeposit_RegistersUnknownCard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := openTestLedger(t)

	require.NoError(t, l.RecordDeposit(ctx, deposit(cardA, 15, 35, time.Minute)))

	name, err := l.UserName(ctx, cardA)
	require.NoError(t, err)
	assert.Equal(t, "User-CCDD", name)

	stats, err := l.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Deposits)
	assert.InDelta(t, 0.75, stats[0].TotalKg, 1e-9)
	assert.True(t, stats[0].UpdatedAt.Equal(epoch.Add(time.Minute)))
}

func TestRecordDeposit_KeepsRegisteredName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := openTestLedger(t)

	_, err := l.RegisterUser(ctx, cardA, "Alice")
	require.NoError(t, err)
	require.NoError(t, l.RecordDeposit(ctx, deposit(cardA, 10, 30, 0)))

	name, err := l.UserName(ctx, cardA)
	require.NoError(t, err)
	assert.Equal(t, "Alice", name)
}

func TestRecordDeposit_ZeroTimestampUsesClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := openTestLedger(t)

	rec := deposit(cardA, 4, 24, 0)
	rec.Timestamp = time.Time{}
	require.NoError(t, l.RecordDeposit(ctx, rec))

	history, err := l.History(ctx, cardA, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].At.Equal(epoch))
}

func TestStats_OrderedByMass(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := openTestLedger(t)

	require.NoError(t, l.RecordDeposit(ctx, deposit(cardA, 4, 24, time.Minute)))
	require.NoError(t, l.RecordDeposit(ctx, deposit(cardB, 10, 34, 2*time.Minute)))
	require.NoError(t, l.RecordDeposit(ctx, deposit(cardA, 2, 36, 3*time.Minute)))
	// A negative delta reduces the running total.
	require.NoError(t, l.RecordDeposit(ctx, deposit(cardB, -2, 34, 4*time.Minute)))

	stats, err := l.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, cardB, stats[0].UID)
	assert.Equal(t, 2, stats[0].Deposits)
	assert.InDelta(t, 0.4, stats[0].TotalKg, 1e-9)

	assert.Equal(t, cardA, stats[1].UID)
	assert.Equal(t, 2, stats[1].Deposits)
	assert.InDelta(t, 0.3, stats[1].TotalKg, 1e-9)

	c, err := l.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 2, Deposits: 4, Stats: 2}, c)
}

func TestHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := openTestLedger(t)

	_, err := l.RegisterUser(ctx, cardB, "Bob")
	require.NoError(t, err)
	for i := 1; i <= 12; i++ {
		uid := cardA
		if i%3 == 0 {
			uid = cardB
		}
		require.NoError(t, l.RecordDeposit(ctx, deposit(uid, i, 20+i, time.Duration(i)*time.Minute)))
	}

	all, err := l.History(ctx, smartbin.CardUID{}, 0)
	require.NoError(t, err)
	require.Len(t, all, DefaultHistoryLimit)
	assert.Equal(t, 12, all[0].Delta)
	assert.Equal(t, 3, all[len(all)-1].Delta)

	bob, err := l.History(ctx, cardB, 3)
	require.NoError(t, err)

	want := []Deposit{
		{ID: 12, UID: cardB, Name: "Bob", Delta: 12, Kg: 0.6, ResultingFill: 32, At: epoch.Add(12 * time.Minute)},
		{ID: 9, UID: cardB, Name: "Bob", Delta: 9, Kg: 0.45, ResultingFill: 29, At: epoch.Add(9 * time.Minute)},
		{ID: 6, UID: cardB, Name: "Bob", Delta: 6, Kg: 0.3, ResultingFill: 26, At: epoch.Add(6 * time.Minute)},
	}
	approx := cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 1e-9 && d > -1e-9
	})
	if diff := cmp.Diff(want, bob, approx); diff != "" {
		t.Errorf("History(cardB) mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_Persists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, path := openTestLedger(t)
	require.NoError(t, l.RecordDeposit(ctx, deposit(cardA, 15, 35, 0)))
	require.NoError(t, l.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	c, err := reopened.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 1, Deposits: 1, Stats: 1}, c)
}

func TestLedger_Closed(t *testing.T) {
	t.Parallel()

	l, _ := openTestLedger(t)
	require.NoError(t, l.Close())
	require.Error(t, l.RecordDeposit(context.Background(), deposit(cardA, 1, 1, 0)))
}

func TestPoints(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l, _ := openTestLedger(t)

	points, err := l.Points(ctx)
	require.NoError(t, err)
	assert.Empty(t, points)

	first := []recycling.Point{
		{Name: "Old", Location: recycling.Location{Lat: 1, Lon: 2}, HasLocation: true},
	}
	n, err := l.ReplacePoints(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	second := []recycling.Point{
		{Name: "Near", Address: "CALLE CERCA 2", Locality: "MADRID",
			Location: recycling.Location{Lat: 40.42, Lon: -3.70}, HasLocation: true},
		{Name: "Unlocated", Locality: "MADRID"},
	}
	n, err = l.ReplacePoints(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	points, err = l.Points(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, points)
}
