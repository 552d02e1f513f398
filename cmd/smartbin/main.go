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

// Command smartbin runs the smart waste bin deposit controller and queries
// its deposit ledger.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/config"
	"github.com/ZaparooProject/go-smartbin/ledger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app carries the state shared by every subcommand.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "smartbin",
		Short:         "Smart waste bin deposit controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newRunCmd(a),
		newStatsCmd(a),
		newHistoryCmd(a),
		newPointsCmd(a),
		newDetectCmd(a),
	)
	return root
}

func (a *app) setup() error {
	zc := zap.NewProductionConfig()
	if a.debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	smartbin.SetLogger(logger)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) openLedger() (*ledger.Ledger, error) {
	return ledger.Open(a.cfg.Storage.DBPath, ledger.WithLogger(a.logger.Named("ledger")))
}

// withLedger opens the ledger for the duration of fn.
func (a *app) withLedger(ctx context.Context, fn func(context.Context, *ledger.Ledger) error) error {
	l, err := a.openLedger()
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Close(); err != nil {
			a.logger.Warn("close ledger", zap.Error(err))
		}
	}()
	return fn(ctx, l)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
