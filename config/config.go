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

// Package config loads the bin's TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/display"
	"github.com/ZaparooProject/go-smartbin/dwell"
	"github.com/ZaparooProject/go-smartbin/polling"
	"github.com/ZaparooProject/go-smartbin/transport/i2c"
	"github.com/ZaparooProject/go-smartbin/transport/uart"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "smartbin.toml"

// Reader transports.
const (
	TransportI2C  = "i2c"
	TransportUART = "uart"
)

// Duration is a time.Duration written as a string such as "1.5s".
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Hardware selects the buses and pins the peripherals are wired to.
type Hardware struct {
	Transport       string `toml:"transport"`
	I2CBus          string `toml:"i2c_bus"`
	UARTPort        string `toml:"uart_port"`
	ButtonPin       string `toml:"button_pin"`
	RangerPin       string `toml:"ranger_pin"`
	LCDBus          string `toml:"lcd_bus"`
	UARTBaud        int    `toml:"uart_baud"`
	I2CAddress      uint16 `toml:"i2c_address"`
	LCDAddress      uint16 `toml:"lcd_address"`
	ButtonActiveLow bool   `toml:"button_active_low"`
	LCDEnabled      bool   `toml:"lcd_enabled"`
}

// Calibration maps ranging distances to fill levels and mass.
type Calibration struct {
	FillPolicy      string  `toml:"fill_policy"`
	EmptyDistanceCM float64 `toml:"empty_distance_cm"`
	KgPerPercent    float64 `toml:"kg_per_percent"`
	FillSteps       int     `toml:"fill_steps"`
}

// Timing holds the confirmation and loop timings.
type Timing struct {
	DwellTime   Duration `toml:"dwell_time"`
	LossTimeout Duration `toml:"loss_timeout"`
	TickPeriod  Duration `toml:"tick_period"`
}

// Storage locates the deposit database.
type Storage struct {
	DBPath string `toml:"db_path"`
}

// Location is where the bin stands, used to rank recycling points.
type Location struct {
	Latitude  float64 `toml:"latitude"`
	Longitude float64 `toml:"longitude"`
}

// Config is the complete configuration file.
type Config struct {
	Hardware    Hardware    `toml:"hardware"`
	Calibration Calibration `toml:"calibration"`
	Storage     Storage     `toml:"storage"`
	Timing      Timing      `toml:"timing"`
	Location    Location    `toml:"location"`
}

// Default returns the configuration of the reference build: reader on
// I2C-1, button on GPIO5, ranger on GPIO18 and a 12 cm deep bin in central
// Madrid.
func Default() *Config {
	return &Config{
		Hardware: Hardware{
			Transport:  TransportI2C,
			I2CBus:     "",
			I2CAddress: i2c.DefaultAddress,
			UARTPort:   "/dev/ttyUSB0",
			UARTBaud:   uart.DefaultBaudRate,
			ButtonPin:  "GPIO5",
			RangerPin:  "GPIO18",
			LCDEnabled: true,
			LCDAddress: display.DefaultLCDAddress,
		},
		Calibration: Calibration{
			EmptyDistanceCM: 12,
			FillPolicy:      "linear",
			FillSteps:       10,
			KgPerPercent:    smartbin.DefaultKgPerPercent,
		},
		Timing: Timing{
			DwellTime:   Duration{dwell.DefaultDwellTime},
			LossTimeout: Duration{dwell.DefaultLossTimeout},
			TickPeriod:  Duration{polling.DefaultTickPeriod},
		},
		Storage: Storage{
			DBPath: "smartbin.db",
		},
		Location: Location{
			Latitude:  40.4168,
			Longitude: -3.7038,
		},
	}
}

// Load reads the configuration at path. Keys missing from the file keep
// their defaults. If the file does not exist it is created with the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := Write(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, smartbin.NewConfigError(undecoded[0].String(), nil, "unknown key")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Write saves cfg to path, creating parent directories as needed.
func Write(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	f, err := os.Create(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("create config %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return f.Close()
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	switch c.Hardware.Transport {
	case TransportI2C:
		if c.Hardware.I2CAddress == 0 || c.Hardware.I2CAddress > 0x7F {
			return smartbin.NewConfigError("i2c_address", c.Hardware.I2CAddress, "must be a 7-bit address")
		}
	case TransportUART:
		if c.Hardware.UARTPort == "" {
			return smartbin.NewConfigError("uart_port", c.Hardware.UARTPort, "must be set")
		}
		if c.Hardware.UARTBaud <= 0 {
			return smartbin.NewConfigError("uart_baud", c.Hardware.UARTBaud, "must be positive")
		}
	default:
		return smartbin.NewConfigError("transport", c.Hardware.Transport, "must be i2c or uart")
	}
	if c.Hardware.ButtonPin == "" {
		return smartbin.NewConfigError("button_pin", c.Hardware.ButtonPin, "must be set")
	}
	if c.Hardware.RangerPin == "" {
		return smartbin.NewConfigError("ranger_pin", c.Hardware.RangerPin, "must be set")
	}
	if c.Hardware.LCDEnabled && (c.Hardware.LCDAddress == 0 || c.Hardware.LCDAddress > 0x7F) {
		return smartbin.NewConfigError("lcd_address", c.Hardware.LCDAddress, "must be a 7-bit address")
	}

	if _, err := c.FillPolicy(); err != nil {
		return err
	}
	if k := c.Calibration.KgPerPercent; math.IsNaN(k) || math.IsInf(k, 0) || k < 0 {
		return smartbin.NewConfigError("kg_per_percent", k, "must be a non-negative number")
	}

	if err := c.Dwell().Validate(); err != nil {
		return err
	}
	if c.Timing.TickPeriod.Duration <= 0 {
		return smartbin.NewConfigError("tick_period", c.Timing.TickPeriod, "must be positive")
	}
	if c.Timing.TickPeriod.Duration >= c.Timing.LossTimeout.Duration {
		return smartbin.NewConfigError("tick_period", c.Timing.TickPeriod, "must be shorter than loss_timeout")
	}

	if c.Storage.DBPath == "" {
		return smartbin.NewConfigError("db_path", c.Storage.DBPath, "must be set")
	}
	if lat := c.Location.Latitude; lat < -90 || lat > 90 {
		return smartbin.NewConfigError("latitude", lat, "must be within [-90, 90]")
	}
	if lon := c.Location.Longitude; lon < -180 || lon > 180 {
		return smartbin.NewConfigError("longitude", lon, "must be within [-180, 180]")
	}
	return nil
}

// FillPolicy builds the configured fill policy.
func (c *Config) FillPolicy() (smartbin.FillPolicy, error) {
	return smartbin.FillPolicyByName(c.Calibration.FillPolicy, c.Calibration.EmptyDistanceCM, c.Calibration.FillSteps)
}

// Dwell returns the confirmation engine timings.
func (c *Config) Dwell() dwell.Config {
	return dwell.Config{
		DwellTime:   c.Timing.DwellTime.Duration,
		LossTimeout: c.Timing.LossTimeout.Duration,
	}
}
