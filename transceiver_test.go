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
	"testing"
	"time"

	"github.com/ZaparooProject/go-smartbin/internal/register"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(time.Duration) {}

// newTestTransceiver creates an initialized transceiver over a fresh mock bus
func newTestTransceiver(t *testing.T) (*Transceiver, *MockBus) {
	t.Helper()
	bus := NewMockBus()
	tr, err := NewTransceiver(bus, WithSleep(noSleep))
	require.NoError(t, err)
	require.NoError(t, tr.Init())
	return tr, bus
}

func TestNewTransceiver(t *testing.T) {
	t.Parallel()

	t.Run("NilBus", func(t *testing.T) {
		t.Parallel()
		_, err := NewTransceiver(nil)
		require.ErrorIs(t, err, ErrConfig)
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Parallel()
		tr, err := NewTransceiver(NewMockBus())
		require.NoError(t, err)
		assert.Equal(t, DefaultPollLimit, tr.pollLimit)
		assert.Equal(t, DefaultPollInterval, tr.pollInterval)
		assert.Equal(t, DefaultResetDelay, tr.resetDelay)
		assert.False(t, tr.IsInitialized())
	})

	t.Run("InvalidOption", func(t *testing.T) {
		t.Parallel()
		_, err := NewTransceiver(NewMockBus(), WithPollLimit(0))
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "poll_limit", cfgErr.Field)
	})
}

func TestTransceiver_Init(t *testing.T) {
	t.Parallel()

	t.Run("ProgramsRegisters", func(t *testing.T) {
		t.Parallel()
		bus := NewMockBus()
		var slept []time.Duration
		tr, err := NewTransceiver(bus, WithSleep(func(d time.Duration) { slept = append(slept, d) }))
		require.NoError(t, err)

		require.NoError(t, tr.Init())
		assert.True(t, tr.IsInitialized())

		writes := bus.Writes()
		require.NotEmpty(t, writes)
		assert.Equal(t, RegisterWrite{Addr: register.Command, Val: register.CmdSoftReset}, writes[0])
		assert.Equal(t, []time.Duration{DefaultResetDelay}, slept)
		assert.Equal(t, byte(register.TModeInit), bus.Register(register.TMode))
		assert.Equal(t, byte(register.TPrescalerInit), bus.Register(register.TPrescaler))
		assert.Equal(t, byte(register.TReloadLowInit), bus.Register(register.TReloadLow))
		assert.Equal(t, byte(register.TReloadHighInit), bus.Register(register.TReloadHigh))
		assert.Equal(t, byte(register.TxASKInit), bus.Register(register.TxASK))
		assert.Equal(t, byte(register.ModeInit), bus.Register(register.Mode))
		assert.Equal(t, byte(register.AntennaOn), bus.Register(register.TxControl)&register.AntennaOn)
		assert.Len(t, bus.WritesTo(register.TxControl), 1)
	})

	t.Run("AntennaAlreadyOn", func(t *testing.T) {
		t.Parallel()
		bus := NewMockBus()
		tr, err := NewTransceiver(bus, WithSleep(noSleep), WithResetDelay(0))
		require.NoError(t, err)
		require.NoError(t, tr.Init())
		bus.SetRegister(register.TxControl, 0x83)
		require.NoError(t, tr.enableAntenna())
		assert.Len(t, bus.WritesTo(register.TxControl), 1)
	})

	t.Run("AntennaStuckRetriesOnceThenFaults", func(t *testing.T) {
		t.Parallel()
		bus := NewMockBus()
		bus.AntennaStuck = true
		tr, err := NewTransceiver(bus, WithSleep(noSleep))
		require.NoError(t, err)

		err = tr.Init()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrHardwareFault)
		assert.True(t, IsFatal(err))
		assert.False(t, tr.IsInitialized())
		assert.Len(t, bus.WritesTo(register.TxControl), 2)
	})

	t.Run("BusUnreachable", func(t *testing.T) {
		t.Parallel()
		bus := NewMockBus()
		bus.WriteErrors[register.Command] = ErrMockBus
		tr, err := NewTransceiver(bus, WithSleep(noSleep))
		require.NoError(t, err)

		err = tr.Init()
		require.ErrorIs(t, err, ErrHardwareFault)
		assert.ErrorIs(t, err, ErrMockBus)
		var hwErr *HardwareError
		require.ErrorAs(t, err, &hwErr)
		assert.Equal(t, "soft reset", hwErr.Op)
	})

	t.Run("AntennaReadFails", func(t *testing.T) {
		t.Parallel()
		bus := NewMockBus()
		bus.ReadErrors[register.TxControl] = ErrMockBus
		tr, err := NewTransceiver(bus, WithSleep(noSleep))
		require.NoError(t, err)
		require.ErrorIs(t, tr.Init(), ErrHardwareFault)
	})
}

func TestTransceiver_Version(t *testing.T) {
	t.Parallel()
	tr, bus := newTestTransceiver(t)
	bus.SetRegister(register.Version, 0x15)
	v, err := tr.Version()
	require.NoError(t, err)
	assert.Equal(t, byte(0x15), v)
}

func TestTransceiver_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("RequestAnswered", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCardUID(CardUID{0xAA, 0xBB, 0xCC, 0xDD})
		require.NoError(t, bus.WriteRegister(register.BitFraming, 0x07))

		resp, err := tr.Exchange([]byte{0x26})
		require.NoError(t, err)
		assert.Equal(t, []byte{0x04, 0x00}, resp)
		assert.Zero(t, bus.Register(register.BitFraming)&register.StartSend, "StartSend must be cleared")
	})

	t.Run("NoCard", func(t *testing.T) {
		t.Parallel()
		tr, _ := newTestTransceiver(t)
		_, err := tr.Exchange([]byte{0x26})
		require.ErrorIs(t, err, ErrNoCard)
	})

	t.Run("ErrorRegisterRejects", func(t *testing.T) {
		t.Parallel()
		for _, bits := range []byte{register.ErrCRC, register.ErrParity, register.ErrProtocol, register.ErrColl, register.ErrBufferOvfl} {
			tr, bus := newTestTransceiver(t)
			bus.SetCardUID(CardUID{1, 2, 3, 4})
			bus.SetErrorBits(bits)
			require.NoError(t, bus.WriteRegister(register.BitFraming, 0x00))

			_, err := tr.Exchange([]byte{0x93, 0x20})
			var frameErr *FrameError
			require.ErrorAs(t, err, &frameErr, "bits 0x%02X", bits)
			assert.Equal(t, bits, frameErr.Bits)
			assert.ErrorIs(t, err, ErrFrameError)
			assert.False(t, IsFatal(err))
		}
	})

	t.Run("IgnoresUnrelatedErrorBits", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCardUID(CardUID{1, 2, 3, 4})
		bus.SetErrorBits(0x40) // temperature warning, not a frame error
		require.NoError(t, bus.WriteRegister(register.BitFraming, 0x00))

		resp, err := tr.Exchange([]byte{0x93, 0x20})
		require.NoError(t, err)
		assert.Len(t, resp, 5)
	})

	t.Run("TruncatesTo16Bytes", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		long := make([]byte, 24)
		for i := range long {
			long[i] = byte(i)
		}
		bus.SetCard(long)
		require.NoError(t, bus.WriteRegister(register.BitFraming, 0x00))

		resp, err := tr.Exchange([]byte{0x93, 0x20})
		require.NoError(t, err)
		assert.Equal(t, long[:16], resp)
	})

	t.Run("BoundedPolling", func(t *testing.T) {
		t.Parallel()
		bus := NewMockBus()
		sleeps := 0
		tr, err := NewTransceiver(bus, WithSleep(func(time.Duration) { sleeps++ }))
		require.NoError(t, err)
		require.NoError(t, tr.Init())
		bus.NeverComplete = true
		sleeps = 0
		before := bus.IrqReads()

		start := time.Now()
		_, err = tr.Exchange([]byte{0x26})
		require.ErrorIs(t, err, ErrExchangeTimeout)
		assert.Less(t, time.Since(start), time.Second)

		// One read clears pending interrupts, the rest are polls.
		assert.Equal(t, DefaultPollLimit+1, bus.IrqReads()-before)
		assert.Equal(t, DefaultPollLimit, sleeps)
		assert.Zero(t, bus.Register(register.BitFraming)&register.StartSend)
	})

	t.Run("CustomPollLimit", func(t *testing.T) {
		t.Parallel()
		bus := NewMockBus()
		tr, err := NewTransceiver(bus, WithSleep(noSleep), WithPollLimit(10), WithPollInterval(0))
		require.NoError(t, err)
		require.NoError(t, tr.Init())
		bus.NeverComplete = true
		before := bus.IrqReads()

		_, err = tr.Exchange([]byte{0x26})
		require.ErrorIs(t, err, ErrExchangeTimeout)
		assert.Equal(t, 11, bus.IrqReads()-before)
	})

	t.Run("BusErrorDuringPoll", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.ReadErrors[register.Error] = ErrMockBus
		bus.SetCardUID(CardUID{1, 2, 3, 4})
		require.NoError(t, bus.WriteRegister(register.BitFraming, 0x07))

		_, err := tr.Exchange([]byte{0x26})
		require.ErrorIs(t, err, ErrMockBus)
		assert.False(t, IsFatal(err))
	})
}

func TestTransceiver_ReadUID(t *testing.T) {
	t.Parallel()

	t.Run("ValidCard", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		want := CardUID{0xAA, 0xBB, 0xCC, 0xDD}
		bus.SetCardUID(want)

		uid, ok := tr.ReadUID()
		require.True(t, ok)
		assert.Equal(t, want, uid)
		assert.Equal(t, "AABBCCDD", uid.String())
		assert.Equal(t, 2, bus.Exchanges())
	})

	t.Run("SequenceFraming", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCardUID(CardUID{0xDE, 0xAD, 0xBE, 0xEF})
		before := len(bus.WritesTo(register.BitFraming))

		_, ok := tr.ReadUID()
		require.True(t, ok)

		framing := bus.WritesTo(register.BitFraming)[before:]
		// request: 7 bits, start, stop; anticollision: whole bytes, start, stop
		assert.Equal(t, []byte{0x07, 0x87, 0x07, 0x00, 0x80, 0x00}, framing)
		fifo := bus.WritesTo(register.FIFOData)
		assert.Equal(t, []byte{0x26, 0x93, 0x20}, fifo[len(fifo)-3:])
	})

	t.Run("NoCard", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		_, ok := tr.ReadUID()
		assert.False(t, ok)
		assert.Equal(t, 1, bus.Exchanges(), "anticollision must not run without an answer to the request")
	})

	t.Run("ShortResponse", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCard([]byte{0x12, 0x34, 0x56, 0x78})
		_, ok := tr.ReadUID()
		assert.False(t, ok)

		_, err := tr.DetectCard()
		assert.ErrorIs(t, err, ErrFrameError)
	})

	t.Run("LongResponse", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCard([]byte{0x12, 0x34, 0x56, 0x78, 0x08, 0x00})
		_, ok := tr.ReadUID()
		assert.False(t, ok)
	})

	t.Run("ReaderFlaggedError", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCardUID(CardUID{1, 2, 3, 4})
		bus.SetErrorBits(register.ErrParity)
		_, ok := tr.ReadUID()
		assert.False(t, ok)
	})

	t.Run("BusFailureIsNoCard", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCardUID(CardUID{1, 2, 3, 4})
		bus.ReadErrors[register.FIFOData] = ErrMockBus
		_, ok := tr.ReadUID()
		assert.False(t, ok)
	})

	t.Run("DroppedRequestRecovers", func(t *testing.T) {
		t.Parallel()
		tr, bus := newTestTransceiver(t)
		bus.SetCardUID(CardUID{1, 2, 3, 4})
		bus.DropNext(1)

		_, ok := tr.ReadUID()
		assert.False(t, ok)
		uid, ok := tr.ReadUID()
		require.True(t, ok)
		assert.Equal(t, CardUID{1, 2, 3, 4}, uid)
	})
}

func TestTransceiver_ReadUID_BCCBitFlips(t *testing.T) {
	t.Parallel()
	uid := CardUID{0xAA, 0xBB, 0xCC, 0xDD}
	base := append(uid[:], 0x00)

	for bit := 0; bit < 8; bit++ {
		resp := append([]byte(nil), base...)
		resp[4] ^= 1 << bit

		tr, bus := newTestTransceiver(t)
		bus.SetCard(resp)
		_, ok := tr.ReadUID()
		assert.False(t, ok, "bit %d flipped in BCC", bit)

		_, err := tr.DetectCard()
		assert.True(t, errors.Is(err, ErrFrameError), "bit %d: %v", bit, err)
	}
}

func TestTransceiver_Close(t *testing.T) {
	t.Parallel()
	tr, bus := newTestTransceiver(t)
	require.NoError(t, tr.Close())
	_, err := bus.ReadRegister(register.Version)
	assert.ErrorIs(t, err, ErrMockBus)
}
