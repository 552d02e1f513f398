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

// Package detection finds card readers attached to the host. Transport
// specific detectors register themselves from their own packages; import
// them for side effects.
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoDevicesFound is returned when no reader was found.
	ErrNoDevicesFound = errors.New("no devices found")
	// ErrUnsupportedPlatform is returned by detectors that cannot run on
	// this operating system.
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	// ErrDetectionTimeout is returned when the context ended mid-scan.
	ErrDetectionTimeout = errors.New("detection timed out")
)

// Mode controls how intrusive detection is.
type Mode int

const (
	// Passive only enumerates candidates and never talks to them.
	Passive Mode = iota
	// Active reads the version register of each candidate.
	Active
)

// Confidence is how sure a detector is that a device is a reader.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// DeviceInfo describes a detected device.
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

// Options configures detection.
type Options struct {
	// IgnorePaths are device paths that are never reported or probed.
	IgnorePaths []string
	// Blocklist holds USB VID:PID pairs that are never probed.
	Blocklist []string
	Timeout   time.Duration
	Mode      Mode
}

// DefaultOptions returns active detection with a five second budget.
func DefaultOptions() *Options {
	return &Options{
		Mode:      Active,
		Timeout:   5 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// Detector finds devices on one transport.
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.Mutex
	registry   []Detector
)

// RegisterDetector adds d to the detectors used by DetectAll.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, d)
}

// Detectors returns the registered detectors.
func Detectors() []Detector {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]Detector, len(registry))
	copy(out, registry)
	return out
}

// DetectAll runs every registered detector concurrently and returns the
// devices found, most confident first.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	return detectWith(ctx, Detectors(), opts)
}

func detectWith(ctx context.Context, detectors []Detector, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	results := make([][]DeviceInfo, len(detectors))
	var g errgroup.Group
	for i, d := range detectors {
		i, d := i, d
		g.Go(func() error {
			found, err := d.Detect(ctx, opts)
			results[i] = found
			if err == nil || errors.Is(err, ErrNoDevicesFound) || errors.Is(err, ErrUnsupportedPlatform) {
				return nil
			}
			return fmt.Errorf("%s detection: %w", d.Transport(), err)
		})
	}
	err := g.Wait()

	var devices []DeviceInfo
	for _, r := range results {
		devices = append(devices, r...)
	}
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})

	if len(devices) == 0 {
		if err != nil {
			return nil, err
		}
		return nil, ErrNoDevicesFound
	}
	return devices, nil
}
