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

package detection

import (
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns USB adapters that must never be probed. It is
// empty until an adapter is found to misbehave when opened.
func DefaultBlocklist() []string {
	return []string{}
}

// IsBlocked reports whether the VID:PID pair is on the blocklist. Entries
// may use any format ParseVIDPID understands.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = ParseVIDPID(vidpid)
	if vidpid == "" {
		return false
	}
	for _, blocked := range blocklist {
		if ParseVIDPID(blocked) == vidpid {
			return true
		}
	}
	return false
}

// FormatVIDPID joins a vendor and product id into the canonical
// "VVVV:PPPP" form. It returns "" if either is missing.
func FormatVIDPID(vid, pid string) string {
	vid, pid = strings.ToUpper(strings.TrimSpace(vid)), strings.ToUpper(strings.TrimSpace(pid))
	if !isHex(vid) || !isHex(pid) {
		return ""
	}
	return vid + ":" + pid
}

// ParseVIDPID normalises "VID:1A86 PID:7523", "vendor=1a86 product=7523"
// and "1a86:7523" to "1A86:7523". It returns "" when nothing matches.
func ParseVIDPID(descriptor string) string {
	d := strings.ToUpper(strings.TrimSpace(descriptor))

	vid := valueAfter(d, "VID:", "VID=", "VENDOR=")
	pid := valueAfter(d, "PID:", "PID=", "PRODUCT=")
	if vid != "" && pid != "" {
		return vid + ":" + pid
	}

	if parts := strings.Split(d, ":"); len(parts) == 2 {
		return FormatVIDPID(parts[0], parts[1])
	}
	return ""
}

func valueAfter(s string, keys ...string) string {
	for _, key := range keys {
		if idx := strings.Index(s, key); idx >= 0 {
			return leadingHex(s[idx+len(key):])
		}
	}
	return ""
}

func leadingHex(s string) string {
	end := 0
	for end < len(s) && isHexDigit(rune(s[end])) {
		end++
	}
	return s[:end]
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'F') || (r >= 'a' && r <= 'f')
}

// IsPathIgnored reports whether devicePath matches one of ignorePaths.
// Paths are cleaned and compared case-insensitively.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}
	device := normalizedPath(devicePath)
	for _, p := range ignorePaths {
		if p != "" && normalizedPath(p) == device {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
