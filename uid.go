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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-smartbin/internal/frame"
)

// CardUID is the 4-byte single-size identifier of a card. Two UIDs are the
// same card iff they are equal.
type CardUID [4]byte

// String returns the UID as upper-case hex, e.g. "AABBCCDD".
func (u CardUID) String() string {
	return strings.ToUpper(hex.EncodeToString(u[:]))
}

// ShortID returns the last four hex digits, used for default user names.
func (u CardUID) ShortID() string {
	s := u.String()
	return s[len(s)-4:]
}

// IsZero reports whether the UID is all zeros.
func (u CardUID) IsZero() bool {
	return u == CardUID{}
}

// ParseCardUID parses an 8-digit hex string.
func ParseCardUID(s string) (CardUID, error) {
	var uid CardUID
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return uid, fmt.Errorf("invalid card uid %q: %w", s, err)
	}
	if len(b) != len(uid) {
		return uid, fmt.Errorf("invalid card uid %q: want %d bytes, got %d", s, len(uid), len(b))
	}
	copy(uid[:], b)
	return uid, nil
}

// UIDFromFrame extracts the UID from a cascade level 1 anticollision
// response. The response must be exactly five bytes and the last byte must
// be the XOR of the first four.
func UIDFromFrame(resp []byte) (CardUID, error) {
	var uid CardUID
	if len(resp) != frame.AnticollRespLength {
		return uid, NewFrameError("anticollision",
			fmt.Sprintf("expected %d bytes, got %d", frame.AnticollRespLength, len(resp)))
	}
	if !frame.ValidateAnticollision(resp) {
		return uid, NewFrameError("anticollision",
			fmt.Sprintf("bcc mismatch: got 0x%02X, want 0x%02X", resp[4], frame.CalculateBCC(resp[:4])))
	}
	copy(uid[:], resp[:frame.UIDLength])
	return uid, nil
}

// DefaultUserName is the name given to a card the first time it deposits.
func DefaultUserName(uid CardUID) string {
	return "User-" + uid.ShortID()
}
