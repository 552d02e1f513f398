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
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-smartbin/detection"
	_ "github.com/ZaparooProject/go-smartbin/detection/i2c"
	_ "github.com/ZaparooProject/go-smartbin/detection/uart"
	"github.com/spf13/cobra"
)

func newDetectCmd(*app) *cobra.Command {
	opts := detection.DefaultOptions()
	var passive bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Look for card readers on the I2C buses and serial ports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passive {
				opts.Mode = detection.Passive
			}
			devices, err := detection.DetectAll(cmd.Context(), opts)
			if err != nil {
				return err
			}
			writeDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}
	cmd.Flags().BoolVar(&passive, "passive", false, "list candidates without talking to them")
	cmd.Flags().StringSliceVar(&opts.IgnorePaths, "ignore", nil, "device paths to skip")
	cmd.Flags().StringSliceVar(&opts.Blocklist, "block", opts.Blocklist, "USB VID:PID pairs never to open")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "detection time limit")
	return cmd
}

func writeDevices(w io.Writer, devices []detection.DeviceInfo) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Detected readers"))
	t := newTable("Transport", "Path", "Name", "Confidence")
	for _, d := range devices {
		t.Row(d.Transport, d.Path, d.Name, d.Confidence.String())
	}
	_, _ = fmt.Fprintln(w, t.String())
}
