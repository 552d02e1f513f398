//go:build linux

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

package i2c

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ZaparooProject/go-smartbin/detection"
	"golang.org/x/sys/unix"
)

// Linux i2c-dev ioctls.
const (
	ioctlSlave = 0x0703
	ioctlFuncs = 0x0705
	funcI2C    = 0x00000001
)

func detectLinux(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	buses, err := findBuses()
	if err != nil {
		return nil, err
	}
	if len(buses) == 0 {
		return nil, detection.ErrNoDevicesFound
	}

	var devices []detection.DeviceInfo
	for _, bus := range buses {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if opts.Mode == detection.Passive {
			d := passiveDevice(bus)
			if !detection.IsPathIgnored(d.Path, opts.IgnorePaths) {
				devices = append(devices, d)
			}
			continue
		}

		for _, addr := range respondingAddresses(bus, CandidateAddresses) {
			if detection.IsPathIgnored(devicePath(bus, addr), opts.IgnorePaths) {
				continue
			}
			if d, ok := probe(bus, addr); ok {
				devices = append(devices, d)
			}
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// findBuses returns the /dev/i2c-* adapters that support plain I2C
// transfers.
func findBuses() ([]string, error) {
	matches, err := filepath.Glob("/dev/i2c-*")
	if err != nil {
		return nil, fmt.Errorf("scan i2c buses: %w", err)
	}
	sort.Strings(matches)

	buses := make([]string, 0, len(matches))
	for _, path := range matches {
		fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
		if err != nil {
			continue
		}
		funcs, err := unix.IoctlGetUint32(fd, ioctlFuncs)
		_ = unix.Close(fd)
		if err != nil || funcs&funcI2C == 0 {
			continue
		}
		buses = append(buses, path)
	}
	return buses, nil
}

// respondingAddresses returns the addresses that acknowledge a one byte
// read.
func respondingAddresses(busPath string, addrs []uint16) []uint16 {
	fd, err := unix.Open(busPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil
	}
	defer func() { _ = unix.Close(fd) }()

	var found []uint16
	buf := make([]byte, 1)
	for _, addr := range addrs {
		if err := unix.IoctlSetInt(fd, ioctlSlave, int(addr)); err != nil {
			continue
		}
		if _, err := unix.Read(fd, buf); err == nil {
			found = append(found, addr)
		}
	}
	return found
}
