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

// Package uart detects readers behind serial adapters. Importing it
// registers the detector with the detection package.
package uart

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/go-smartbin/detection"
	"github.com/ZaparooProject/go-smartbin/internal/register"
	"github.com/ZaparooProject/go-smartbin/transport/uart"
	"go.bug.st/serial/enumerator"
)

const uartTransport = "uart"

// versionReader reads the version register over an opened port.
type versionReader func(portName string) (byte, error)

type detector struct {
	list  func() ([]*enumerator.PortDetails, error)
	probe versionReader
}

// New returns the serial port detector.
func New() detection.Detector {
	return &detector{list: enumerator.GetDetailedPortsList, probe: readVersion}
}

func init() {
	detection.RegisterDetector(New())
}

func (*detector) Transport() string {
	return uartTransport
}

func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	ports, err := d.list()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
			continue
		}
		vidpid := detection.FormatVIDPID(port.VID, port.PID)
		if port.IsUSB && detection.IsBlocked(vidpid, opts.Blocklist) {
			continue
		}

		info := describe(port, vidpid)
		if opts.Mode == detection.Active {
			version, err := d.probe(port.Name)
			if err != nil || !register.KnownVersion(version) {
				continue
			}
			info.Confidence = detection.High
			info.Metadata["version"] = fmt.Sprintf("0x%02X", version)
		}
		devices = append(devices, info)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func describe(port *enumerator.PortDetails, vidpid string) detection.DeviceInfo {
	info := detection.DeviceInfo{
		Transport:  uartTransport,
		Path:       port.Name,
		Name:       port.Name,
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}
	if port.IsUSB {
		info.Confidence = detection.Medium
		info.Metadata["vid_pid"] = vidpid
		if port.SerialNumber != "" {
			info.Metadata["serial_number"] = port.SerialNumber
		}
		if port.Product != "" {
			info.Name = fmt.Sprintf("%s (%s)", port.Product, port.Name)
		}
	}
	return info
}

func readVersion(portName string) (byte, error) {
	t, err := uart.New(portName, uart.DefaultBaudRate)
	if err != nil {
		return 0, err
	}
	defer func() { _ = t.Close() }()
	return t.ReadRegister(register.Version)
}
