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

// Package retry provides the bounded retry and polling helpers shared by the
// transceiver and the control loop.
package retry

import (
	"errors"
	"fmt"
	"time"
)

// Operation represents a function that can be retried
// Returns: data, shouldRetry, error
// - data: the result if successful
// - shouldRetry: true if the operation should be retried
// - error: any permanent error that should stop retries
type Operation[T any] func() (T, bool, error)

var (
	// ErrRetriesExhausted is returned by WithRetry when every attempt asked
	// for another try.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrPollLimit is returned by Poll when the iteration cap is reached.
	ErrPollLimit = errors.New("poll limit reached")
)

// Config configures retry behavior
type Config struct {
	OnRetry     func() error
	Sleep       func(time.Duration)
	Description string
	MaxRetries  int
	RetryDelay  time.Duration
}

// WithRetry executes an operation once plus up to MaxRetries more times.
func WithRetry[T any](config Config, operation Operation[T]) (T, error) {
	var zero T

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}

		if !shouldRetry {
			return result, nil
		}

		if attempt >= config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(); err != nil {
				return zero, err
			}
		}

		if config.RetryDelay > 0 {
			sleep(config.Sleep, config.RetryDelay)
		}
	}

	if config.Description != "" {
		return zero, fmt.Errorf("%s: %w", config.Description, ErrRetriesExhausted)
	}
	return zero, ErrRetriesExhausted
}

// Poll runs operation until it stops asking for a retry, at most
// maxIterations times, sleeping interval between attempts. The bound is an
// iteration count, not a deadline, so the worst case is fixed by the caller.
func Poll[T any](maxIterations int, interval time.Duration, sleepFn func(time.Duration), operation Operation[T]) (T, error) {
	var zero T

	for i := 0; i < maxIterations; i++ {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}

		if !shouldRetry {
			return result, nil
		}

		if interval > 0 {
			sleep(sleepFn, interval)
		}
	}

	return zero, ErrPollLimit
}

func sleep(fn func(time.Duration), d time.Duration) {
	if fn != nil {
		fn(d)
		return
	}
	time.Sleep(d)
}
