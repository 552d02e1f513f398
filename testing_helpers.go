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
	"sync"

	"github.com/ZaparooProject/go-smartbin/internal/frame"
	"github.com/ZaparooProject/go-smartbin/internal/register"
)

// ErrMockBus is returned by MockBus for injected failures.
var ErrMockBus = errors.New("mock bus failure")

// MockBus simulates the register file of an MFRC522-compatible reader with
// a single scripted card in its field. It implements Bus and is meant for
// tests in this module.
type MockBus struct {
	ReadErrors  map[byte]error
	WriteErrors map[byte]error
	anticoll    []byte
	atqa        []byte
	fifoIn      []byte
	fifoOut     []byte
	writes      []RegisterWrite
	regs        [64]byte
	errorBits   byte
	dropNext    int
	irqReads    int
	exchanges   int
	mu          sync.Mutex
	// AntennaStuck makes writes to TxControl leave the antenna bits clear.
	AntennaStuck bool
	// NeverComplete keeps the interrupt register at zero so every exchange
	// runs into the poll limit.
	NeverComplete bool
	closed        bool
}

// RegisterWrite records a single register write.
type RegisterWrite struct {
	Addr byte
	Val  byte
}

// NewMockBus creates a mock reader with no card in the field.
func NewMockBus() *MockBus {
	m := &MockBus{
		ReadErrors:  make(map[byte]error),
		WriteErrors: make(map[byte]error),
		atqa:        []byte{0x04, 0x00},
	}
	m.regs[register.Version] = 0x92
	m.regs[register.TxControl] = 0x80
	return m
}

// SetCard places a card answering anticollision with resp, which may be
// malformed on purpose.
func (m *MockBus) SetCard(resp []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anticoll = append([]byte(nil), resp...)
}

// SetCardUID places a card with a well-formed anticollision answer for uid.
func (m *MockBus) SetCardUID(uid CardUID) {
	resp := append(uid[:], frame.CalculateBCC(uid[:]))
	m.SetCard(resp)
}

// RemoveCard empties the field.
func (m *MockBus) RemoveCard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anticoll = nil
}

// SetErrorBits makes every completed exchange report bits in the error
// register.
func (m *MockBus) SetErrorBits(bits byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorBits = bits
}

// DropNext makes the next n requests go unanswered even with a card present.
func (m *MockBus) DropNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropNext = n
}

// Register returns the current value of a register.
func (m *MockBus) Register(addr byte) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[addr&0x3F]
}

// SetRegister overrides a register value.
func (m *MockBus) SetRegister(addr, val byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[addr&0x3F] = val
}

// Writes returns every register write performed so far.
func (m *MockBus) Writes() []RegisterWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RegisterWrite(nil), m.writes...)
}

// WritesTo returns the values written to addr, in order.
func (m *MockBus) WritesTo(addr byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var vals []byte
	for _, w := range m.writes {
		if w.Addr == addr {
			vals = append(vals, w.Val)
		}
	}
	return vals
}

// IrqReads returns how many times the interrupt register was polled.
func (m *MockBus) IrqReads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.irqReads
}

// Exchanges returns how many transceive operations were started.
func (m *MockBus) Exchanges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchanges
}

// ReadRegister implements Bus.
func (m *MockBus) ReadRegister(addr byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrMockBus
	}
	if err := m.ReadErrors[addr]; err != nil {
		return 0, err
	}

	switch addr {
	case register.ComIrq:
		m.irqReads++
	case register.FIFOData:
		if len(m.fifoOut) == 0 {
			return 0, nil
		}
		b := m.fifoOut[0]
		m.fifoOut = m.fifoOut[1:]
		return b, nil
	case register.FIFOLevel:
		return byte(len(m.fifoOut)), nil
	}
	return m.regs[addr&0x3F], nil
}

// WriteRegister implements Bus.
func (m *MockBus) WriteRegister(addr, val byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrMockBus
	}
	if err := m.WriteErrors[addr]; err != nil {
		return err
	}
	m.writes = append(m.writes, RegisterWrite{Addr: addr, Val: val})

	switch addr {
	case register.Command:
		m.regs[addr] = val
		if val == register.CmdSoftReset {
			m.reset()
		}
	case register.ComIrq:
		// Set1 selects whether the marked bits are set or cleared.
		if val&register.IrqSet1 != 0 {
			m.regs[addr] |= val &^ register.IrqSet1
		} else {
			m.regs[addr] &^= val
		}
	case register.FIFOLevel:
		if val&register.FlushBuffer != 0 {
			m.fifoIn = nil
			m.fifoOut = nil
		}
	case register.FIFOData:
		m.fifoIn = append(m.fifoIn, val)
	case register.TxControl:
		if m.AntennaStuck {
			val &^= register.AntennaOn
		}
		m.regs[addr] = val
	case register.BitFraming:
		starting := val&register.StartSend != 0 && m.regs[addr]&register.StartSend == 0
		m.regs[addr] = val
		if starting && m.regs[register.Command] == register.CmdTransceive {
			m.transceive()
		}
	default:
		m.regs[addr&0x3F] = val
	}
	return nil
}

// transceive answers the FIFO contents the way a card in the field would.
func (m *MockBus) transceive() {
	m.exchanges++
	tx := m.fifoIn
	m.fifoIn = nil
	m.regs[register.Error] = 0

	if m.NeverComplete {
		return
	}

	var resp []byte
	switch {
	case m.anticoll == nil:
	case len(tx) == 1 && tx[0] == frame.ReqA &&
		m.regs[register.BitFraming]&0x07 == frame.ShortFrameBit:
		if m.dropNext > 0 {
			m.dropNext--
			break
		}
		resp = m.atqa
	case len(tx) == 2 && tx[0] == frame.SelCascade1 && tx[1] == frame.AnticollNVB:
		resp = m.anticoll
	}

	if resp == nil {
		m.regs[register.ComIrq] |= register.IrqTimer
		return
	}
	m.fifoOut = append([]byte(nil), resp...)
	m.regs[register.ComIrq] |= register.IrqRx | register.IrqIdle
	m.regs[register.Error] = m.errorBits
}

func (m *MockBus) reset() {
	version := m.regs[register.Version]
	m.regs = [64]byte{}
	m.regs[register.Version] = version
	m.regs[register.TxControl] = 0x80
	m.fifoIn = nil
	m.fifoOut = nil
}

// Close implements Bus.
func (m *MockBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type implements Bus.
func (*MockBus) Type() BusType {
	return BusMock
}

var _ Bus = (*MockBus)(nil)
