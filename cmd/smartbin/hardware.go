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
	"errors"
	"fmt"
	"io"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/ZaparooProject/go-smartbin/config"
	"github.com/ZaparooProject/go-smartbin/display"
	"github.com/ZaparooProject/go-smartbin/sensor"
	"github.com/ZaparooProject/go-smartbin/transport/i2c"
	"github.com/ZaparooProject/go-smartbin/transport/uart"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// hardware is the set of opened peripherals. closers are ordered so that
// closing them in reverse releases the most recently opened first.
type hardware struct {
	reader  *smartbin.Transceiver
	button  *sensor.Button
	ranger  *sensor.Ultrasonic
	screen  display.Screen
	closers []io.Closer
}

func (h *hardware) close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		errs = append(errs, h.closers[i].Close())
	}
	return errors.Join(errs...)
}

func openBus(hw config.Hardware) (smartbin.Bus, error) {
	if hw.Transport == config.TransportUART {
		t, err := uart.New(hw.UARTPort, hw.UARTBaud)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	t, err := i2c.New(hw.I2CBus, hw.I2CAddress)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// openHardware opens and initialises every peripheral. A reader that fails
// to initialise is fatal; a missing LCD falls back to logging the screen.
func openHardware(cfg *config.Config, logger *zap.Logger) (*hardware, error) {
	if _, err := host.Init(); err != nil {
		return nil, smartbin.NewHardwareError("host init", err)
	}

	h := &hardware{}
	fail := func(err error) (*hardware, error) {
		_ = h.close()
		return nil, err
	}

	bus, err := openBus(cfg.Hardware)
	if err != nil {
		return fail(smartbin.NewHardwareError("open reader bus", err))
	}
	reader, err := smartbin.NewTransceiver(bus)
	if err != nil {
		_ = bus.Close()
		return fail(err)
	}
	h.reader = reader
	h.closers = append(h.closers, reader)

	if err := reader.Init(); err != nil {
		return fail(err)
	}
	if v, err := reader.Version(); err == nil {
		logger.Info("card reader ready", zap.String("bus", string(bus.Type())), zap.String("version", fmt.Sprintf("0x%02X", v)))
	}

	if h.button, err = sensor.OpenButton(cfg.Hardware.ButtonPin, cfg.Hardware.ButtonActiveLow); err != nil {
		return fail(smartbin.NewHardwareError("open button", err))
	}
	if h.ranger, err = sensor.OpenUltrasonic(cfg.Hardware.RangerPin); err != nil {
		return fail(smartbin.NewHardwareError("open ranger", err))
	}

	h.screen = display.NewLogScreen(logger.Named("display"))
	if cfg.Hardware.LCDEnabled {
		if err := h.openLCD(cfg.Hardware); err != nil {
			logger.Warn("lcd unavailable, logging screen instead", zap.Error(err))
		}
	}
	return h, nil
}

func (h *hardware) openLCD(hw config.Hardware) error {
	bus, err := i2creg.Open(hw.LCDBus)
	if err != nil {
		return fmt.Errorf("open lcd bus: %w", err)
	}
	lcd := display.NewLCD(bus, hw.LCDAddress)
	if err := lcd.Init(); err != nil {
		_ = bus.Close()
		return err
	}
	h.screen = lcd
	h.closers = append(h.closers, bus)
	return nil
}
