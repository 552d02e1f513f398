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

// Package polling runs the bin's control loop: once per tick it samples the
// button, the ranging sensor and the card reader, advances the dwell engine
// and hands the resulting events to the presenter and the deposit store.
package polling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/dwell"
	"github.com/ZaparooProject/go-smartbin/internal/retry"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Run when the loop is already active.
var ErrAlreadyRunning = errors.New("monitor is already running")

// Monitor owns the engine, its session and every collaborator. Step and Run
// must not be called concurrently; Metrics and Fill are safe from any
// goroutine.
type Monitor struct {
	components   Components
	config       *Config
	logger       *zap.Logger
	engine       *dwell.Engine
	metrics      counters
	lastFill     atomic.Int64
	shutdownOnce sync.Once
	shutdownErr  error
	running      atomic.Bool
}

// NewMonitor validates the components and configuration and returns an idle
// monitor.
func NewMonitor(components Components, config *Config) (*Monitor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := components.validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	engine, err := dwell.NewEngine(config.Dwell)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		components: components,
		config:     config,
		logger:     config.Logger.Named("polling"),
		engine:     engine,
	}, nil
}

// Metrics returns current operational metrics
func (m *Monitor) Metrics() Metrics {
	return m.metrics.snapshot()
}

// Fill returns the most recent fill percentage.
func (m *Monitor) Fill() int {
	return int(m.lastFill.Load())
}

// Session returns the active dwell session, if any.
func (m *Monitor) Session() (dwell.Session, bool) {
	return m.engine.Session()
}

// Step runs one tick and returns the events it produced. No error escapes a
// tick: sensor, reader, presenter and store failures are logged and counted.
// A confirmed deposit is written to the store, with bounded retries, before
// Step returns.
func (m *Monitor) Step(ctx context.Context) []dwell.Event {
	start := m.config.Clock.Now()

	in := dwell.Input{
		Now:        start,
		ButtonHeld: m.components.Button.Read(),
		Fill:       m.measureFill(),
	}
	if in.ButtonHeld {
		in.UID, in.CardPresent = m.components.Reader.ReadUID()
		if in.CardPresent {
			m.metrics.cardReads.Add(1)
		} else {
			m.metrics.missedReads.Add(1)
		}
	}

	events := m.engine.Tick(in)
	for _, ev := range events {
		if ev.Kind == dwell.EventDepositConfirmed {
			m.recordDeposit(ctx, ev)
		}
		m.present(ev)
	}

	m.metrics.ticks.Add(1)
	m.metrics.lastTickLatency.Store(int64(m.config.Clock.Since(start)))
	return events
}

// measureFill samples the ranger. A failed measurement keeps the previous
// fill so a flaky sensor never cancels or skews a session.
func (m *Monitor) measureFill() int {
	distance, err := m.components.Ranger.Measure()
	if err != nil {
		m.metrics.rangeErrors.Add(1)
		m.logger.Debug("range measurement failed, keeping last fill",
			zap.Error(err), zap.Int64("fill", m.lastFill.Load()))
		return int(m.lastFill.Load())
	}
	fill := m.components.Fill.Percentage(distance)
	m.lastFill.Store(int64(fill))
	return fill
}

func (m *Monitor) recordDeposit(ctx context.Context, ev dwell.Event) {
	rec := smartbin.NewDepositRecord(ev.UID, ev.Delta, ev.Fill, m.config.KgPerPercent, ev.At)
	m.logger.Info("deposit confirmed",
		zap.Stringer("uid", ev.UID),
		zap.Int("delta", rec.Delta),
		zap.Int("fill", rec.ResultingFill),
		zap.Float64("kg", rec.EstimatedMass))

	if m.components.Store == nil {
		return
	}

	var lastErr error
	_, err := retry.WithRetry(retry.Config{
		Description: "record deposit",
		MaxRetries:  m.config.StoreRetries,
		RetryDelay:  m.config.StoreRetryDelay,
		Sleep:       m.config.Clock.Sleep,
	}, func() (struct{}, bool, error) {
		if err := m.components.Store.RecordDeposit(ctx, rec); err != nil {
			lastErr = err
			m.logger.Warn("deposit write failed", zap.Stringer("uid", ev.UID), zap.Error(err))
			return struct{}{}, true, nil
		}
		return struct{}{}, false, nil
	})
	if err != nil {
		m.metrics.storeFailures.Add(1)
		m.logger.Error("deposit lost",
			zap.Stringer("uid", ev.UID),
			zap.Int("delta", rec.Delta),
			zap.Error(errors.Join(err, lastErr)))
		return
	}
	m.metrics.deposits.Add(1)
}

func (m *Monitor) present(ev dwell.Event) {
	if ev.Kind != dwell.EventDwellProgress && ev.Kind != dwell.EventIdle {
		m.logger.Info("event", zap.Stringer("event", ev))
	}
	if m.components.Presenter == nil {
		return
	}
	if err := m.components.Presenter.Present(ev); err != nil {
		m.metrics.presentErrors.Add(1)
		m.logger.Debug("present failed", zap.Stringer("event", ev), zap.Error(err))
	}
}

// Run ticks until ctx is cancelled, sleeping the tick period between ticks.
// Cancellation is only observed between ticks: a tick in progress completes,
// including its store write. Run then calls Shutdown and returns its error.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)

	m.logger.Info("control loop started", zap.Duration("tick", m.config.TickPeriod))
	tickCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("control loop stopping", zap.Int64("ticks", m.metrics.ticks.Load()))
			return m.Shutdown()
		default:
		}

		m.Step(tickCtx)

		select {
		case <-ctx.Done():
		case <-m.config.Clock.After(m.config.TickPeriod):
		}
	}
}

// IsRunning returns whether Run is active
func (m *Monitor) IsRunning() bool {
	return m.running.Load()
}

// Shutdown clears the presenter and closes the registered closers in
// reverse order. It runs once; later calls return the first result.
func (m *Monitor) Shutdown() error {
	m.shutdownOnce.Do(func() {
		m.engine.Reset()

		var errs []error
		if m.components.Presenter != nil {
			if err := m.components.Presenter.Clear(); err != nil {
				errs = append(errs, fmt.Errorf("clear presenter: %w", err))
			}
		}
		for i := len(m.components.Closers) - 1; i >= 0; i-- {
			if err := m.components.Closers[i].Close(); err != nil {
				errs = append(errs, fmt.Errorf("close: %w", err))
			}
		}
		m.shutdownErr = errors.Join(errs...)
	})
	return m.shutdownErr
}
