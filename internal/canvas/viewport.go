/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"

	"canvassnap/internal/geom"
)

// Viewport is the visible screen area and its pan/zoom transform:
// screen = world*Zoom + Pan.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	PanX   float64 `json:"panX"`
	PanY   float64 `json:"panY"`
	Zoom   float64 `json:"zoom"`
}

// WorldBox returns the visible world-space rectangle. ok is false when the
// viewport is collapsed or carries non-finite values.
func (v Viewport) WorldBox() (geom.Box, bool) {
	for _, f := range []float64{v.Width, v.Height, v.PanX, v.PanY, v.Zoom} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return geom.Box{}, false
		}
	}
	if v.Zoom <= 0 || v.Width <= 0 || v.Height <= 0 {
		return geom.Box{}, false
	}
	x := -v.PanX / v.Zoom
	y := -v.PanY / v.Zoom
	return geom.B(x, y, x+v.Width/v.Zoom, y+v.Height/v.Zoom), true
}

// ToWorld converts a screen point to world coordinates.
func (v Viewport) ToWorld(p geom.Point) geom.Point {
	z := v.Zoom
	if z <= 0 {
		z = 1
	}
	return geom.Point{X: (p.X - v.PanX) / z, Y: (p.Y - v.PanY) / z}
}

// ToScreen converts a world point to screen coordinates.
func (v Viewport) ToScreen(p geom.Point) geom.Point {
	z := v.Zoom
	if z <= 0 {
		z = 1
	}
	return geom.Point{X: p.X*z + v.PanX, Y: p.Y*z + v.PanY}
}
