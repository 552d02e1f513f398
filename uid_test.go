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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardUID_String(t *testing.T) {
	t.Parallel()

	uid := CardUID{0xAA, 0xBB, 0xCC, 0xDD}
	assert.Equal(t, "AABBCCDD", uid.String())
	assert.Equal(t, "CCDD", uid.ShortID())
	assert.Equal(t, "User-CCDD", DefaultUserName(uid))
	assert.False(t, uid.IsZero())
	assert.True(t, CardUID{}.IsZero())
}

func TestParseCardUID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    CardUID
		wantErr bool
	}{
		{name: "Upper", input: "AABBCCDD", want: CardUID{0xAA, 0xBB, 0xCC, 0xDD}},
		{name: "Lower", input: "0a1b2c3d", want: CardUID{0x0A, 0x1B, 0x2C, 0x3D}},
		{name: "Whitespace", input: " 01020304\n", want: CardUID{1, 2, 3, 4}},
		{name: "TooShort", input: "AABBCC", wantErr: true},
		{name: "TooLong", input: "AABBCCDDEE", wantErr: true},
		{name: "NotHex", input: "ZZBBCCDD", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCardUID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) CardUID {
	t.Helper()
	uid, err := ParseCardUID(s)
	require.NoError(t, err)
	return uid
}

func TestUIDFromFrame(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    []byte
		want    CardUID
		wantErr bool
	}{
		{name: "Valid", resp: []byte{0xAA, 0xBB, 0xCC, 0xDD, 0x00}, want: CardUID{0xAA, 0xBB, 0xCC, 0xDD}},
		{name: "ValidNonZeroBCC", resp: []byte{0x01, 0x02, 0x03, 0x04, 0x04}, want: CardUID{1, 2, 3, 4}},
		{name: "BadBCC", resp: []byte{0x01, 0x02, 0x03, 0x04, 0x05}, wantErr: true},
		{name: "Empty", resp: nil, wantErr: true},
		{name: "FourBytes", resp: []byte{0x01, 0x02, 0x03, 0x04}, wantErr: true},
		{name: "SixBytes", resp: []byte{0x01, 0x02, 0x03, 0x04, 0x04, 0x00}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := UIDFromFrame(tt.resp)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrFrameError)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
