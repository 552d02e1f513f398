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

// Package recycling loads public recycling point feeds and ranks the points
// by distance from the bin.
package recycling

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// EarthRadiusKM is the mean Earth radius used for great-circle distances.
const EarthRadiusKM = 6371.0

// DefaultPointName is used for feed entries without a title.
const DefaultPointName = "Recycling point"

// ErrEmptyFeed is returned when a feed carries no points.
var ErrEmptyFeed = errors.New("recycling feed has no points")

// Location is a WGS84 coordinate in degrees.
type Location struct {
	Lat float64
	Lon float64
}

// Point is a recycling drop-off site. Points without coordinates are kept
// but never ranked.
type Point struct {
	Name        string
	Address     string
	Locality    string
	Location    Location
	HasLocation bool
}

// Candidate is a point with its distance from a reference location.
type Candidate struct {
	Point
	DistanceKM float64
}

// Distance returns the haversine distance between a and b in kilometres.
func Distance(a, b Location) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ByDistance returns up to limit located points ordered nearest first.
// A limit of zero or less returns all of them.
func ByDistance(from Location, points []Point, limit int) []Candidate {
	out := make([]Candidate, 0, len(points))
	for _, p := range points {
		if !p.HasLocation {
			continue
		}
		out = append(out, Candidate{Point: p, DistanceKM: Distance(from, p.Location)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Nearest returns the closest located point. ok is false when none of the
// points has coordinates.
func Nearest(from Location, points []Point) (Candidate, bool) {
	ranked := ByDistance(from, points, 1)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}

type feed struct {
	Graph []feedEntry `json:"@graph"`
}

type feedEntry struct {
	Title   string `json:"title"`
	Address *struct {
		Street   string `json:"street-address"`
		Locality string `json:"locality"`
	} `json:"address"`
	Location *struct {
		Latitude  coordinate `json:"latitude"`
		Longitude coordinate `json:"longitude"`
	} `json:"location"`
}

// coordinate accepts numbers and numeric strings. Anything else decodes as
// missing.
type coordinate struct {
	value float64
	ok    bool
}

func (c *coordinate) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		c.value, c.ok = x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		c.value, c.ok = f, err == nil
	default:
		c.ok = false
	}
	return nil
}

// ParseFeed decodes a JSON-LD feed whose points live under "@graph".
func ParseFeed(r io.Reader) ([]Point, error) {
	var f feed
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode recycling feed: %w", err)
	}
	if len(f.Graph) == 0 {
		return nil, ErrEmptyFeed
	}

	points := make([]Point, 0, len(f.Graph))
	for _, e := range f.Graph {
		p := Point{Name: strings.TrimSpace(e.Title)}
		if p.Name == "" {
			p.Name = DefaultPointName
		}
		if e.Address != nil {
			p.Address = e.Address.Street
			p.Locality = e.Address.Locality
		}
		if e.Location != nil && e.Location.Latitude.ok && e.Location.Longitude.ok {
			p.Location = Location{Lat: e.Location.Latitude.value, Lon: e.Location.Longitude.value}
			p.HasLocation = true
		}
		points = append(points, p)
	}
	return points, nil
}

// LoadFeed reads a feed from a file.
func LoadFeed(path string) ([]Point, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open recycling feed: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseFeed(f)
}
