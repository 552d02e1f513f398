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

// Package frame provides ISO 14443-A frame constants and checks for the
// short request/anticollision exchange.
package frame

// Request and anticollision commands
const (
	ReqA          = 0x26 // REQA, sent as a 7-bit short frame
	SelCascade1   = 0x93 // SEL code for cascade level 1
	AnticollNVB   = 0x20 // NVB for a full anticollision (2 bytes sent, no UID bits)
	ShortFrameBit = 0x07 // TxLastBits value for a 7-bit frame
	FullFrameBits = 0x00 // TxLastBits value for whole bytes
)

// Response sizes
const (
	UIDLength          = 4 // Single-size UID bytes in cascade level 1
	AnticollRespLength = 5 // UID bytes plus BCC
	MaxResponseLength  = 16
)

// RequestFrame and AnticollisionFrame are the payloads written to the FIFO.
var (
	RequestFrame       = []byte{ReqA}
	AnticollisionFrame = []byte{SelCascade1, AnticollNVB}
)
