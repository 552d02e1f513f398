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
	"testing"
	"time"

	"github.com/ZaparooProject/go-smartbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestTransport_ReadRegister(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0x37}, R: []byte{0x92}},
		},
		DontPanic: true,
	}
	tr := NewFromBus(bus, DefaultAddress)

	v, err := tr.ReadRegister(0x37)
	require.NoError(t, err)
	assert.Equal(t, byte(0x92), v)
	require.NoError(t, bus.Close())
}

func TestTransport_WriteRegister(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: DefaultAddress, W: []byte{0x01, 0x0F}},
			{Addr: DefaultAddress, W: []byte{0x2A, 0x8D}},
		},
		DontPanic: true,
	}
	tr := NewFromBus(bus, DefaultAddress)

	require.NoError(t, tr.WriteRegister(0x01, 0x0F))
	require.NoError(t, tr.WriteRegister(0x2A, 0x8D))
	require.NoError(t, bus.Close())
}

func TestTransport_Errors(t *testing.T) {
	t.Parallel()

	// An empty playback fails every transaction.
	bus := &i2ctest.Playback{DontPanic: true}
	tr := NewFromBus(bus, DefaultAddress)

	_, err := tr.ReadRegister(0x04)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read register 0x04")

	err = tr.WriteRegister(0x0A, 0x80)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write register 0x0A")
}

func TestTransport_WrongAddress(t *testing.T) {
	t.Parallel()

	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: 0x29, W: []byte{0x37}, R: []byte{0x92}}},
		DontPanic: true,
	}
	tr := NewFromBus(bus, DefaultAddress)
	_, err := tr.ReadRegister(0x37)
	require.Error(t, err)
}

func TestTransport_Probe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version byte
		wantErr bool
	}{
		{name: "MFRC522v2", version: 0x92},
		{name: "WS1850S", version: 0x15},
		{name: "Unknown", version: 0x00, wantErr: true},
		{name: "Floating", version: 0xFF, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bus := &i2ctest.Playback{
				Ops:       []i2ctest.IO{{Addr: DefaultAddress, W: []byte{0x37}, R: []byte{tt.version}}},
				DontPanic: true,
			}
			v, err := NewFromBus(bus, DefaultAddress).Probe()
			assert.Equal(t, tt.version, v)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNotReader)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTransport_DrivesTransceiver(t *testing.T) {
	t.Parallel()

	// Soft reset, timer and mode setup, then the antenna read-modify-write
	// and the version read logged after a successful init.
	ops := []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{0x01, 0x0F}},
		{Addr: DefaultAddress, W: []byte{0x2A, 0x8D}},
		{Addr: DefaultAddress, W: []byte{0x2B, 0x3E}},
		{Addr: DefaultAddress, W: []byte{0x2D, 30}},
		{Addr: DefaultAddress, W: []byte{0x2C, 0x00}},
		{Addr: DefaultAddress, W: []byte{0x15, 0x40}},
		{Addr: DefaultAddress, W: []byte{0x11, 0x3D}},
		{Addr: DefaultAddress, W: []byte{0x14}, R: []byte{0x80}},
		{Addr: DefaultAddress, W: []byte{0x14, 0x83}},
		{Addr: DefaultAddress, W: []byte{0x14}, R: []byte{0x83}},
		{Addr: DefaultAddress, W: []byte{0x37}, R: []byte{0x92}},
	}
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}

	reader, err := smartbin.NewTransceiver(NewFromBus(bus, DefaultAddress),
		smartbin.WithSleep(func(time.Duration) {}))
	require.NoError(t, err)
	require.NoError(t, reader.Init())
	require.NoError(t, bus.Close())
	assert.Equal(t, smartbin.BusI2C, reader.Bus().Type())
}

func TestTransport_CloseBorrowedBus(t *testing.T) {
	t.Parallel()
	bus := &i2ctest.Playback{DontPanic: true}
	tr := NewFromBus(bus, DefaultAddress)
	require.NoError(t, tr.Close())
	assert.Equal(t, "playback@0x28", tr.String())
}
