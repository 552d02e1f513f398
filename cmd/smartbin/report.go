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
	"fmt"
	"io"
	"strconv"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/ledger"
	"github.com/ZaparooProject/go-smartbin/recycling"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func writeStats(w io.Writer, stats []ledger.UserStats) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("User statistics"))
	if len(stats) == 0 {
		_, _ = fmt.Fprintln(w, "No deposits recorded yet")
		return
	}
	t := newTable("Name", "Card", "Deposits", "Total kg")
	for _, s := range stats {
		t.Row(s.Name, s.UID.String(), strconv.Itoa(s.Deposits), fmt.Sprintf("%.2f", s.TotalKg))
	}
	_, _ = fmt.Fprintln(w, t.String())
}

func writeHistory(w io.Writer, deposits []ledger.Deposit) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Recent deposits"))
	if len(deposits) == 0 {
		_, _ = fmt.Fprintln(w, "No deposits recorded yet")
		return
	}
	t := newTable("Time", "Name", "Deposited", "kg", "Level")
	for _, d := range deposits {
		t.Row(
			d.At.Local().Format(timeLayout),
			d.Name,
			fmt.Sprintf("%+d%%", d.Delta),
			fmt.Sprintf("%.2f", d.Kg),
			fmt.Sprintf("%d%%", d.ResultingFill),
		)
	}
	_, _ = fmt.Fprintln(w, t.String())
}

func writePoints(w io.Writer, points []recycling.Candidate) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Nearest recycling points"))
	if len(points) == 0 {
		_, _ = fmt.Fprintln(w, "No recycling points with coordinates stored")
		return
	}
	t := newTable("Name", "Address", "Locality", "Distance")
	for _, p := range points {
		t.Row(p.Name, p.Address, p.Locality, fmt.Sprintf("%.2f km", p.DistanceKM))
	}
	_, _ = fmt.Fprintln(w, t.String())
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-user deposit totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(ctx context.Context, l *ledger.Ledger) error {
				stats, err := l.Stats(ctx)
				if err != nil {
					return err
				}
				writeStats(cmd.OutOrStdout(), stats)
				return nil
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		uidFlag string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent deposits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var uid smartbin.CardUID
			if uidFlag != "" {
				var err error
				if uid, err = smartbin.ParseCardUID(uidFlag); err != nil {
					return err
				}
			}
			return a.withLedger(cmd.Context(), func(ctx context.Context, l *ledger.Ledger) error {
				deposits, err := l.History(ctx, uid, limit)
				if err != nil {
					return err
				}
				writeHistory(cmd.OutOrStdout(), deposits)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&uidFlag, "uid", "", "only show deposits of this card (hex UID)")
	cmd.Flags().IntVarP(&limit, "limit", "n", ledger.DefaultHistoryLimit, "maximum number of deposits")
	return cmd
}

func newPointsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Manage recycling points",
	}

	importCmd := &cobra.Command{
		Use:   "import <feed.json>",
		Short: "Replace the stored recycling points with a JSON-LD feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := recycling.LoadFeed(args[0])
			if err != nil {
				return err
			}
			return a.withLedger(cmd.Context(), func(ctx context.Context, l *ledger.Ledger) error {
				n, err := l.ReplacePoints(ctx, points)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored %d recycling points\n", n)
				return nil
			})
		},
	}

	var limit int
	nearestCmd := &cobra.Command{
		Use:   "nearest",
		Short: "List stored recycling points by distance from the bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withLedger(cmd.Context(), func(ctx context.Context, l *ledger.Ledger) error {
				points, err := l.Points(ctx)
				if err != nil {
					return err
				}
				writePoints(cmd.OutOrStdout(), recycling.ByDistance(a.location(), points, limit))
				return nil
			})
		},
	}
	nearestCmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of points")

	cmd.AddCommand(importCmd, nearestCmd)
	return cmd
}

func (a *app) location() recycling.Location {
	return recycling.Location{Lat: a.cfg.Location.Latitude, Lon: a.cfg.Location.Longitude}
}
