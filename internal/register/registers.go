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

// Package register holds the register map of the MFRC522-compatible reader
// core (WS1850S, RC522) used by the transceiver.
package register

// Register addresses
const (
	Command     = 0x01
	ComIEn      = 0x02
	ComIrq      = 0x04
	Error       = 0x06
	FIFOData    = 0x09
	FIFOLevel   = 0x0A
	BitFraming  = 0x0D
	Mode        = 0x11
	TxControl   = 0x14
	TxASK       = 0x15
	TMode       = 0x2A
	TPrescaler  = 0x2B
	TReloadHigh = 0x2C
	TReloadLow  = 0x2D
	Version     = 0x37
)

// Commands written to the Command register
const (
	CmdIdle       = 0x00
	CmdTransceive = 0x0C
	CmdSoftReset  = 0x0F
)

// Bits and masks
const (
	// ComIEn: enable every interrupt source and invert the IRQ pin.
	IrqEnableAll = 0xF7

	// ComIrq
	IrqSet1     = 0x80
	IrqRx       = 0x20
	IrqIdle     = 0x10
	IrqTimer    = 0x01
	IrqDoneMask = IrqRx | IrqIdle | IrqTimer

	// FIFOLevel
	FlushBuffer = 0x80

	// BitFraming
	StartSend = 0x80

	// Error
	ErrBufferOvfl = 0x10
	ErrColl       = 0x08
	ErrCRC        = 0x04
	ErrParity     = 0x02
	ErrProtocol   = 0x01
	ErrFrameMask  = ErrBufferOvfl | ErrColl | ErrCRC | ErrParity | ErrProtocol

	// TxControl: Tx1RFEn | Tx2RFEn
	AntennaOn = 0x03
)

// Init values programmed after a soft reset: timer auto-start with a
// ~25 ms timeout, 100% ASK modulation and CRC preset 0x6363.
const (
	TModeInit       = 0x8D
	TPrescalerInit  = 0x3E
	TReloadLowInit  = 30
	TReloadHighInit = 0
	TxASKInit       = 0x40
	ModeInit        = 0x3D
)

// KnownVersion reports whether v is a Version register value of a supported
// reader core: MFRC522 v1/v2, common clones and the WS1850S.
func KnownVersion(v byte) bool {
	switch v {
	case 0x88, 0x90, 0x91, 0x92, 0x12, 0x15, 0xB2:
		return true
	default:
		return false
	}
}
