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

/*
Package smartbin implements the deposit controller of a smart waste bin.

A user identifies with an RFID card while holding the bin's button. The
controller reads the card through an MFRC522-compatible reader core, samples
the fill level with an ultrasonic ranger and confirms a deposit once the card
has been held continuously for the dwell time. Each confirmed deposit is
credited to the card with the change in fill level since the session began.

The root package holds the reader protocol and the shared data types:

  - Transceiver drives the reader over a register Bus (I2C or UART) and runs
    the request/anticollision sequence with a bounded interrupt poll.
  - FillPolicy maps a ranging distance to a fill percentage. LinearFill and
    SteppedFill are provided.
  - CardUID and DepositRecord are the values passed to storage.

Subpackages:

  - dwell: the pure session state machine that turns per-tick readings into
    events.
  - polling: the control loop that samples the hardware once per tick.
  - transport/i2c, transport/uart: Bus implementations.
  - sensor: button and ultrasonic ranger on GPIO.
  - display: event rendering and the character LCD.
  - ledger: SQLite deposit history and per-card totals.
  - recycling: recycling point feed and nearest point lookup.
  - config: TOML configuration.

Basic usage:

	bus, err := i2c.New("", i2c.DefaultAddress)
	if err != nil {
		log.Fatal(err)
	}
	reader, err := smartbin.NewTransceiver(bus)
	if err != nil {
		log.Fatal(err)
	}
	if err := reader.Init(); err != nil {
		log.Fatal(err) // hardware fault, not retried
	}

	if uid, ok := reader.ReadUID(); ok {
		fmt.Println("card", uid)
	}

Errors: Init and configuration failures wrap ErrHardwareFault and ErrConfig
and are the only fatal errors (see IsFatal). Every failure while reading a
card is reported as "no card" by ReadUID; DetectCard returns the detail.
*/
package smartbin
