/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the axis-aligned geometry shared by the snapping engine
// and its hosts. All values are world-space float64 canvas units.
package geom

import "math"

// Point is a 2D point or offset.
type Point struct{ X, Y float64 }

// Add returns p translated by o.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns p minus o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Size is a width/height pair.
type Size struct{ Width, Height float64 }

// Box is an axis-aligned rectangle given by its min and max corners.
// Invariant: X <= X2 and Y <= Y2.
type Box struct {
	X, Y   float64
	X2, Y2 float64
}

// B builds a Box from two corners, swapping them when needed.
func B(x, y, x2, y2 float64) Box {
	if x2 < x {
		x, x2 = x2, x
	}
	if y2 < y {
		y, y2 = y2, y
	}
	return Box{X: x, Y: y, X2: x2, Y2: y2}
}

// BoxAt returns the box with top-left corner p and size s.
func BoxAt(p Point, s Size) Box { return B(p.X, p.Y, p.X+s.Width, p.Y+s.Height) }

func (b Box) Width() float64  { return b.X2 - b.X }
func (b Box) Height() float64 { return b.Y2 - b.Y }
func (b Box) Min() Point      { return Point{b.X, b.Y} }
func (b Box) Max() Point      { return Point{b.X2, b.Y2} }
func (b Box) Center() Point   { return Point{(b.X + b.X2) / 2, (b.Y + b.Y2) / 2} }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Finite reports whether every coordinate is a finite number.
func (b Box) Finite() bool {
	return finite(b.X) && finite(b.Y) && finite(b.X2) && finite(b.Y2)
}

// Intersects reports whether the two boxes share any point, edges included.
func (b Box) Intersects(o Box) bool {
	return b.X <= o.X2 && o.X <= b.X2 && b.Y <= o.Y2 && o.Y <= b.Y2
}

// Overlaps reports whether the boxes overlap with positive area.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X2 && o.X < b.X2 && b.Y < o.Y2 && o.Y < b.Y2
}

// Gap returns the Euclidean edge-to-edge distance between the boxes,
// 0 when they touch or overlap.
func Gap(a, b Box) float64 {
	dx := max(0, max(a.X-b.X2, b.X-a.X2))
	dy := max(0, max(a.Y-b.Y2, b.Y-a.Y2))
	return math.Hypot(dx, dy)
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
