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

package frame

import "testing"

func TestCalculateBCC(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		want byte
	}{
		{
			name: "empty data",
			data: []byte{},
			want: 0,
		},
		{
			name: "single byte",
			data: []byte{0x42},
			want: 0x42,
		},
		{
			name: "cancelling bytes",
			data: []byte{0x5A, 0x5A},
			want: 0x00,
		},
		{
			name: "uid bytes",
			data: []byte{0xAA, 0xBB, 0xCC, 0xDD},
			want: 0x00,
		},
		{
			name: "real card uid",
			data: []byte{0xDE, 0xAD, 0xBE, 0xEF},
			want: 0x22,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CalculateBCC(tt.data); got != tt.want {
				t.Errorf("CalculateBCC() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestValidateAnticollision(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		resp []byte
		want bool
	}{
		{
			name: "valid response",
			resp: []byte{0x12, 0x34, 0x56, 0x78, 0x08},
			want: true,
		},
		{
			name: "bad bcc",
			resp: []byte{0x12, 0x34, 0x56, 0x78, 0x09},
			want: false,
		},
		{
			name: "too short",
			resp: []byte{0x12, 0x34, 0x56, 0x78},
			want: false,
		},
		{
			name: "too long",
			resp: []byte{0x12, 0x34, 0x56, 0x78, 0x08, 0x00},
			want: false,
		},
		{
			name: "nil",
			resp: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ValidateAnticollision(tt.resp); got != tt.want {
				t.Errorf("ValidateAnticollision(%X) = %v, want %v", tt.resp, got, tt.want)
			}
		})
	}
}

func TestValidateAnticollision_AnyBCCBitFlipRejects(t *testing.T) {
	t.Parallel()
	valid := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0x00}
	if !ValidateAnticollision(valid) {
		t.Fatal("expected base response to validate")
	}
	for bit := 0; bit < 8; bit++ {
		resp := append([]byte(nil), valid...)
		resp[UIDLength] ^= 1 << bit
		if ValidateAnticollision(resp) {
			t.Errorf("bit %d flip in BCC still validated", bit)
		}
	}
}
