/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
)

// Orientation of a guide line. A Horizontal line sits at a y coordinate, a
// Vertical line at an x coordinate.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Anchor names.
const (
	AnchorLeft    = "left"
	AnchorRight   = "right"
	AnchorCenterX = "centerX"
	AnchorTop     = "top"
	AnchorBottom  = "bottom"
	AnchorCenterY = "centerY"
)

// Anchor extracts one coordinate from a box.
type Anchor struct {
	Name        string
	Orientation Orientation
	// Center anchors are drawn dashed, edge anchors solid.
	Center bool
	// Color is the default overlay color of lines built from this anchor.
	Color   canvas.Color
	resolve func(geom.Box) float64
}

// Resolve returns the anchor's coordinate on b.
func (a Anchor) Resolve(b geom.Box) float64 { return a.resolve(b) }

var (
	edgeColor   = canvas.Color{R: 236, G: 72, B: 153, A: 255}
	centerColor = canvas.Color{R: 59, G: 130, B: 246, A: 255}
)

var registry = [...]Anchor{
	{Name: AnchorLeft, Orientation: Vertical, Color: edgeColor, resolve: func(b geom.Box) float64 { return b.X }},
	{Name: AnchorRight, Orientation: Vertical, Color: edgeColor, resolve: func(b geom.Box) float64 { return b.X2 }},
	{Name: AnchorCenterX, Orientation: Vertical, Center: true, Color: centerColor, resolve: func(b geom.Box) float64 { return (b.X + b.X2) / 2 }},
	{Name: AnchorTop, Orientation: Horizontal, Color: edgeColor, resolve: func(b geom.Box) float64 { return b.Y }},
	{Name: AnchorBottom, Orientation: Horizontal, Color: edgeColor, resolve: func(b geom.Box) float64 { return b.Y2 }},
	{Name: AnchorCenterY, Orientation: Horizontal, Center: true, Color: centerColor, resolve: func(b geom.Box) float64 { return (b.Y + b.Y2) / 2 }},
}

// Anchors returns the six anchors in registry order.
func Anchors() []Anchor {
	out := make([]Anchor, len(registry))
	copy(out, registry[:])
	return out
}

// AnchorByName looks up an anchor.
func AnchorByName(name string) (Anchor, bool) {
	for _, a := range registry {
		if a.Name == name {
			return a, true
		}
	}
	return Anchor{}, false
}

func anchorsNamed(names ...string) []Anchor {
	out := make([]Anchor, 0, len(names))
	for _, n := range names {
		if a, ok := AnchorByName(n); ok {
			out = append(out, a)
		}
	}
	return out
}

// opposite returns the edge that faces the named edge across a gap; centers
// have none.
func opposite(name string) string {
	switch name {
	case AnchorLeft:
		return AnchorRight
	case AnchorRight:
		return AnchorLeft
	case AnchorTop:
		return AnchorBottom
	case AnchorBottom:
		return AnchorTop
	}
	return ""
}
