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

// Package i2c detects readers on Linux I2C buses. Importing it registers
// the detector with the detection package.
package i2c

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ZaparooProject/go-smartbin/detection"
	"github.com/ZaparooProject/go-smartbin/transport/i2c"
)

// CandidateAddresses are the addresses an MFRC522 can be strapped to. The
// factory default comes first.
var CandidateAddresses = []uint16{0x28, 0x29, 0x2A, 0x2B, 0x2C, 0x2D, 0x2E, 0x2F}

type detector struct{}

// New returns the I2C detector.
func New() detection.Detector {
	return &detector{}
}

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string {
	return string(i2cTransport)
}

func (*detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if runtime.GOOS != "linux" {
		return nil, detection.ErrUnsupportedPlatform
	}
	return detectLinux(ctx, opts)
}

const i2cTransport = "i2c"

func devicePath(busPath string, addr uint16) string {
	return fmt.Sprintf("%s:0x%02X", busPath, addr)
}

// passiveDevice reports the factory address of a bus without touching it.
func passiveDevice(busPath string) detection.DeviceInfo {
	return detection.DeviceInfo{
		Transport:  i2cTransport,
		Path:       devicePath(busPath, i2c.DefaultAddress),
		Name:       fmt.Sprintf("possible reader on %s", busPath),
		Confidence: detection.Low,
		Metadata: map[string]string{
			"bus":     busPath,
			"address": fmt.Sprintf("0x%02X", i2c.DefaultAddress),
		},
	}
}

// probe reads the version register of the device at addr.
func probe(busPath string, addr uint16) (detection.DeviceInfo, bool) {
	t, err := i2c.New(busPath, addr)
	if err != nil {
		return detection.DeviceInfo{}, false
	}
	defer func() { _ = t.Close() }()

	version, err := t.Probe()
	if err != nil {
		return detection.DeviceInfo{}, false
	}
	return detection.DeviceInfo{
		Transport:  i2cTransport,
		Path:       devicePath(busPath, addr),
		Name:       fmt.Sprintf("MFRC522 reader on %s", busPath),
		Confidence: detection.High,
		Metadata: map[string]string{
			"bus":     busPath,
			"address": fmt.Sprintf("0x%02X", addr),
			"version": fmt.Sprintf("0x%02X", version),
		},
	}, true
}
