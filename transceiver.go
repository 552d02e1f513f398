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

package smartbin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ZaparooProject/go-smartbin/internal/frame"
	"github.com/ZaparooProject/go-smartbin/internal/register"
	"github.com/ZaparooProject/go-smartbin/internal/retry"
)

const (
	// DefaultPollLimit caps the interrupt polling inside Exchange.
	DefaultPollLimit = 2000
	// DefaultPollInterval is the pause between interrupt polls.
	DefaultPollInterval = time.Millisecond
	// DefaultResetDelay is the settle time after a soft reset.
	DefaultResetDelay = 50 * time.Millisecond
)

// Transceiver drives an MFRC522-compatible reader core through raw
// register reads and writes. It identifies a single card per call and never
// blocks longer than the poll limit allows.
//
// A Transceiver is not safe for concurrent use; the control loop owns it.
type Transceiver struct {
	bus          Bus
	sleep        func(time.Duration)
	pollLimit    int
	pollInterval time.Duration
	resetDelay   time.Duration
	initialized  bool
}

// NewTransceiver creates a transceiver on bus. Init must be called before
// reading cards.
func NewTransceiver(bus Bus, opts ...Option) (*Transceiver, error) {
	if bus == nil {
		return nil, NewConfigError("bus", nil, "must not be nil")
	}

	t := &Transceiver{
		bus:          bus,
		sleep:        time.Sleep,
		pollLimit:    DefaultPollLimit,
		pollInterval: DefaultPollInterval,
		resetDelay:   DefaultResetDelay,
	}

	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Bus returns the underlying register bus
func (t *Transceiver) Bus() Bus {
	return t.bus
}

// IsInitialized reports whether Init completed successfully
func (t *Transceiver) IsInitialized() bool {
	return t.initialized
}

// Init soft-resets the reader, programs its timer, modulation and mode
// registers and switches the antenna on. Antenna enable is retried once;
// any failure is a hardware fault.
func (t *Transceiver) Init() error {
	t.initialized = false

	if err := t.bus.WriteRegister(register.Command, register.CmdSoftReset); err != nil {
		return NewHardwareError("soft reset", err)
	}
	t.sleep(t.resetDelay)

	setup := []struct {
		reg byte
		val byte
	}{
		{register.TMode, register.TModeInit},
		{register.TPrescaler, register.TPrescalerInit},
		{register.TReloadLow, register.TReloadLowInit},
		{register.TReloadHigh, register.TReloadHighInit},
		{register.TxASK, register.TxASKInit},
		{register.Mode, register.ModeInit},
	}
	for _, s := range setup {
		if err := t.bus.WriteRegister(s.reg, s.val); err != nil {
			return NewHardwareError(fmt.Sprintf("configure register 0x%02X", s.reg), err)
		}
	}

	if err := t.enableAntenna(); err != nil {
		return err
	}

	t.initialized = true
	if version, err := t.Version(); err == nil {
		debugf("reader initialized on %s bus, version 0x%02X", t.bus.Type(), version)
	}
	return nil
}

func (t *Transceiver) enableAntenna() error {
	val, err := t.bus.ReadRegister(register.TxControl)
	if err != nil {
		return NewHardwareError("read antenna state", err)
	}
	if val&register.AntennaOn == register.AntennaOn {
		return nil
	}

	attempt := 0
	_, err = retry.WithRetry(retry.Config{
		Description: "antenna enable",
		MaxRetries:  1,
		Sleep:       t.sleep,
	}, func() (struct{}, bool, error) {
		attempt++
		if attempt > 1 {
			debugln("antenna still off, retrying enable")
		}
		if err := t.bus.WriteRegister(register.TxControl, val|register.AntennaOn); err != nil {
			return struct{}{}, false, err
		}
		val, err = t.bus.ReadRegister(register.TxControl)
		if err != nil {
			return struct{}{}, false, err
		}
		return struct{}{}, val&register.AntennaOn != register.AntennaOn, nil
	})
	if err != nil {
		return NewHardwareError("enable antenna", err)
	}
	return nil
}

// Version returns the chip version register.
func (t *Transceiver) Version() (byte, error) {
	v, err := t.bus.ReadRegister(register.Version)
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return v, nil
}

// Exchange sends tx to the card and returns at most 16 received bytes. The
// interrupt register is polled a fixed number of times; running out of polls
// returns ErrExchangeTimeout. Errors flagged by the reader are returned as
// *FrameError.
func (t *Transceiver) Exchange(tx []byte) ([]byte, error) {
	if err := t.load(tx); err != nil {
		return nil, err
	}

	irq, pollErr := retry.Poll(t.pollLimit, t.pollInterval, t.sleep, func() (byte, bool, error) {
		n, err := t.bus.ReadRegister(register.ComIrq)
		if err != nil {
			return 0, false, err
		}
		return n, n&register.IrqDoneMask == 0, nil
	})

	// StartSend is cleared even after a failed poll so the next exchange
	// starts from a stopped transmitter.
	stopErr := clearBits(t.bus, register.BitFraming, register.StartSend)

	if pollErr != nil {
		if errors.Is(pollErr, retry.ErrPollLimit) {
			return nil, ErrExchangeTimeout
		}
		return nil, fmt.Errorf("exchange: poll interrupts: %w", pollErr)
	}
	if stopErr != nil {
		return nil, fmt.Errorf("exchange: stop transmit: %w", stopErr)
	}

	errBits, err := t.bus.ReadRegister(register.Error)
	if err != nil {
		return nil, fmt.Errorf("exchange: read error register: %w", err)
	}
	if errBits&register.ErrFrameMask != 0 {
		return nil, &FrameError{
			Op:     "exchange",
			Reason: describeErrorBits(errBits),
			Bits:   errBits & register.ErrFrameMask,
		}
	}

	if irq&register.IrqRx == 0 {
		return nil, ErrNoCard
	}

	level, err := t.bus.ReadRegister(register.FIFOLevel)
	if err != nil {
		return nil, fmt.Errorf("exchange: read fifo level: %w", err)
	}

	n := min(int(level&^register.FlushBuffer), frame.MaxResponseLength)
	resp := make([]byte, n)
	for i := range resp {
		if resp[i], err = t.bus.ReadRegister(register.FIFOData); err != nil {
			return nil, fmt.Errorf("exchange: read fifo: %w", err)
		}
	}
	return resp, nil
}

// load prepares the reader for a transceive and starts transmission of tx.
func (t *Transceiver) load(tx []byte) error {
	if err := t.bus.WriteRegister(register.ComIEn, register.IrqEnableAll); err != nil {
		return fmt.Errorf("exchange: enable interrupts: %w", err)
	}
	if err := clearBits(t.bus, register.ComIrq, register.IrqSet1); err != nil {
		return fmt.Errorf("exchange: clear interrupts: %w", err)
	}
	if err := setBits(t.bus, register.FIFOLevel, register.FlushBuffer); err != nil {
		return fmt.Errorf("exchange: flush fifo: %w", err)
	}
	if err := t.bus.WriteRegister(register.Command, register.CmdIdle); err != nil {
		return fmt.Errorf("exchange: idle: %w", err)
	}
	for _, b := range tx {
		if err := t.bus.WriteRegister(register.FIFOData, b); err != nil {
			return fmt.Errorf("exchange: write fifo: %w", err)
		}
	}
	if err := t.bus.WriteRegister(register.Command, register.CmdTransceive); err != nil {
		return fmt.Errorf("exchange: transceive: %w", err)
	}
	if err := setBits(t.bus, register.BitFraming, register.StartSend); err != nil {
		return fmt.Errorf("exchange: start send: %w", err)
	}
	return nil
}

// DetectCard runs the request and cascade level 1 anticollision sequence
// and returns the UID of the card in the field, or the reason none was read.
func (t *Transceiver) DetectCard() (CardUID, error) {
	if err := t.bus.WriteRegister(register.BitFraming, frame.ShortFrameBit); err != nil {
		return CardUID{}, fmt.Errorf("request: set framing: %w", err)
	}
	atqa, err := t.Exchange(frame.RequestFrame)
	if err != nil {
		return CardUID{}, err
	}
	if len(atqa) == 0 {
		return CardUID{}, ErrNoCard
	}

	if err := t.bus.WriteRegister(register.BitFraming, frame.FullFrameBits); err != nil {
		return CardUID{}, fmt.Errorf("anticollision: set framing: %w", err)
	}
	resp, err := t.Exchange(frame.AnticollisionFrame)
	if err != nil {
		return CardUID{}, err
	}
	return UIDFromFrame(resp)
}

// ReadUID returns the UID of the card in the field. Every failure, from bus
// errors to checksum mismatches, reads as "no card".
func (t *Transceiver) ReadUID() (CardUID, bool) {
	uid, err := t.DetectCard()
	if err != nil {
		if !errors.Is(err, ErrNoCard) {
			debugf("read uid: %v", err)
		}
		return CardUID{}, false
	}
	return uid, true
}

// Close closes the underlying bus
func (t *Transceiver) Close() error {
	if err := t.bus.Close(); err != nil {
		return fmt.Errorf("failed to close bus: %w", err)
	}
	return nil
}

func describeErrorBits(bits byte) string {
	names := []struct {
		name string
		bit  byte
	}{
		{"buffer overflow", register.ErrBufferOvfl},
		{"collision", register.ErrColl},
		{"crc", register.ErrCRC},
		{"parity", register.ErrParity},
		{"protocol", register.ErrProtocol},
	}
	var parts []string
	for _, n := range names {
		if bits&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ", ") + " error"
}
