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

package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	t.Parallel()
	calls := 0
	got, err := WithRetry(Config{MaxRetries: 3}, func() (int, bool, error) {
		calls++
		return 42, false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_SingleRetry(t *testing.T) {
	t.Parallel()
	calls := 0
	onRetry := 0
	got, err := WithRetry(Config{
		MaxRetries: 1,
		OnRetry: func() error {
			onRetry++
			return nil
		},
	}, func() (string, bool, error) {
		calls++
		if calls == 1 {
			return "", true, nil
		}
		return "ok", false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, onRetry)
}

func TestWithRetry_Exhausted(t *testing.T) {
	t.Parallel()
	calls := 0
	var slept []time.Duration
	_, err := WithRetry(Config{
		MaxRetries:  2,
		RetryDelay:  5 * time.Millisecond,
		Description: "antenna",
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}, func() (int, bool, error) {
		calls++
		return 0, true, nil
	})
	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "antenna")
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{5 * time.Millisecond, 5 * time.Millisecond}, slept)
}

func TestWithRetry_PermanentErrorStops(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	calls := 0
	_, err := WithRetry(Config{MaxRetries: 5}, func() (int, bool, error) {
		calls++
		return 0, false, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_OnRetryErrorStops(t *testing.T) {
	t.Parallel()
	boom := errors.New("rewrite failed")
	_, err := WithRetry(Config{
		MaxRetries: 3,
		OnRetry:    func() error { return boom },
	}, func() (int, bool, error) {
		return 0, true, nil
	})
	require.ErrorIs(t, err, boom)
}

func TestPoll_StopsAtCap(t *testing.T) {
	t.Parallel()
	calls := 0
	sleeps := 0
	_, err := Poll(2000, time.Millisecond, func(time.Duration) { sleeps++ }, func() (byte, bool, error) {
		calls++
		return 0, true, nil
	})
	require.ErrorIs(t, err, ErrPollLimit)
	assert.Equal(t, 2000, calls)
	assert.Equal(t, 2000, sleeps)
}

func TestPoll_ReturnsWhenDone(t *testing.T) {
	t.Parallel()
	calls := 0
	got, err := Poll(10, 0, nil, func() (byte, bool, error) {
		calls++
		if calls < 4 {
			return 0, true, nil
		}
		return 0x30, false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, byte(0x30), got)
	assert.Equal(t, 4, calls)
}

func TestPoll_ZeroIterations(t *testing.T) {
	t.Parallel()
	_, err := Poll(0, 0, nil, func() (int, bool, error) {
		t.Fatal("operation must not run")
		return 0, false, nil
	})
	require.ErrorIs(t, err, ErrPollLimit)
}
