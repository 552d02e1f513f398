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

package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/display"
	"github.com/ZaparooProject/go-smartbin/ledger"
	"github.com/ZaparooProject/go-smartbin/polling"
	"github.com/ZaparooProject/go-smartbin/recycling"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reportDeposits is how many recent deposits the shutdown report lists.
const reportDeposits = 5

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the deposit controller until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.OutOrStdout())
		},
	}
}

func (a *app) run(ctx context.Context, out io.Writer) error {
	l, err := a.openLedger()
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Close(); err != nil {
			a.logger.Warn("close ledger", zap.Error(err))
		}
	}()

	a.logNearestPoint(ctx, l)

	hw, err := openHardware(a.cfg, a.logger)
	if err != nil {
		return err
	}

	m, presenter, err := a.newMonitor(hw, l)
	if err != nil {
		_ = hw.close()
		return err
	}
	if err := presenter.Ready(); err != nil {
		a.logger.Warn("show ready screen", zap.Error(err))
	}
	a.logger.Info("system ready, hold the button and present a card")

	runErr := m.Run(ctx)

	metrics := m.Metrics()
	a.logger.Info("control loop stopped",
		zap.Int64("ticks", metrics.Ticks),
		zap.Int64("deposits", metrics.Deposits),
		zap.Int64("store_failures", metrics.StoreFailures),
		zap.Int64("range_errors", metrics.RangeErrors))

	// The run context is cancelled by now.
	a.report(context.Background(), out, l)
	return runErr
}

func (a *app) newMonitor(hw *hardware, l *ledger.Ledger) (*polling.Monitor, *display.Presenter, error) {
	policy, err := a.cfg.FillPolicy()
	if err != nil {
		return nil, nil, err
	}

	renderer := &display.Renderer{
		DwellTime: a.cfg.Timing.DwellTime.Duration,
		Names: func(uid smartbin.CardUID) string {
			name, err := l.UserName(context.Background(), uid)
			if err != nil {
				return ""
			}
			return name
		},
	}
	presenter := display.NewPresenter(hw.screen, renderer)

	pc := polling.DefaultConfig()
	pc.Logger = a.logger.Named("monitor")
	pc.Dwell = a.cfg.Dwell()
	pc.TickPeriod = a.cfg.Timing.TickPeriod.Duration
	pc.KgPerPercent = a.cfg.Calibration.KgPerPercent

	m, err := polling.NewMonitor(polling.Components{
		Button:    hw.button,
		Ranger:    hw.ranger,
		Reader:    hw.reader,
		Fill:      policy,
		Presenter: presenter,
		Store:     l,
		Closers:   hw.closers,
	}, pc)
	if err != nil {
		return nil, nil, err
	}
	return m, presenter, nil
}

func (a *app) logNearestPoint(ctx context.Context, l *ledger.Ledger) {
	points, err := l.Points(ctx)
	if err != nil {
		a.logger.Warn("load recycling points", zap.Error(err))
		return
	}
	best, ok := recycling.Nearest(a.location(), points)
	if !ok {
		a.logger.Info("no recycling points stored, import a feed with 'smartbin points import'")
		return
	}
	a.logger.Info("nearest recycling point",
		zap.String("name", best.Name),
		zap.String("address", best.Address),
		zap.String("locality", best.Locality),
		zap.Float64("distance_km", best.DistanceKM))
}

// report prints the per-user totals and the latest deposits, then logs the
// table counts.
func (a *app) report(ctx context.Context, out io.Writer, l *ledger.Ledger) {
	stats, err := l.Stats(ctx)
	if err != nil {
		a.logger.Warn("load stats", zap.Error(err))
	} else {
		writeStats(out, stats)
	}

	history, err := l.History(ctx, smartbin.CardUID{}, reportDeposits)
	if err != nil {
		a.logger.Warn("load history", zap.Error(err))
	} else {
		writeHistory(out, history)
	}

	counts, err := l.Counts(ctx)
	if err != nil {
		a.logger.Warn("count ledger rows", zap.Error(err))
		return
	}
	a.logger.Info("ledger check",
		zap.Int("users", counts.Users),
		zap.Int("deposits", counts.Deposits),
		zap.Int("stats", counts.Stats),
		zap.Bool("empty", counts.Empty()))
}
