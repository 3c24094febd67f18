/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a snapshot of the board with the matched guide lines
// to PNG or PDF, in screen coordinates of the viewport.
package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
	"canvassnap/internal/snap"
)

// Item is one object box in canvas coordinates.
type Item struct {
	ID    string
	Box   geom.Box
	Color canvas.Color
}

// Overlay is what gets rendered: the objects, the guides and the viewport
// that maps them to the output surface.
type Overlay struct {
	Viewport canvas.Viewport
	Items    []Item
	Guides   []snap.DisplayGuide
	// Active is highlighted.
	Active string
}

// AbsoluteBoxer is implemented by canvas.Board.
type AbsoluteBoxer interface {
	Objects() []canvas.Object
	AbsoluteBox(id string) (geom.Box, bool)
	Viewport() canvas.Viewport
}

// Capture builds an overlay from the current state of a host.
func Capture(h AbsoluteBoxer, guides []snap.DisplayGuide, active string) Overlay {
	ov := Overlay{Viewport: h.Viewport(), Guides: guides, Active: active}
	for _, o := range h.Objects() {
		box, ok := h.AbsoluteBox(o.ID)
		if !ok {
			box = o.LocalBox()
		}
		ov.Items = append(ov.Items, Item{ID: o.ID, Box: box, Color: o.Color})
	}
	return ov
}

// Options controls colors and decorations of both exporters.
// Zero values pick the defaults.
type Options struct {
	Background   canvas.Color
	ObjectStroke canvas.Color
	ActiveStroke canvas.Color
	// Labels draws object ids and guide anchor names.
	Labels bool
	// Dash is the on/off pattern of center guides in output units.
	Dash [2]float64
}

func (o Options) withDefaults() Options {
	if o.Background.IsZero() {
		o.Background = canvas.Color{R: 255, G: 255, B: 255, A: 255}
	}
	if o.ObjectStroke.IsZero() {
		o.ObjectStroke = canvas.Color{R: 60, G: 60, B: 60, A: 255}
	}
	if o.ActiveStroke.IsZero() {
		o.ActiveStroke = canvas.Color{R: 16, G: 185, B: 129, A: 255}
	}
	if o.Dash[0] <= 0 || o.Dash[1] <= 0 {
		o.Dash = [2]float64{6, 4}
	}
	return o
}

// size returns the output surface in whole pixels or points.
func (ov Overlay) size() (int, int, error) {
	if _, ok := ov.Viewport.WorldBox(); !ok {
		return 0, 0, fmt.Errorf("export: degenerate viewport %+v", ov.Viewport)
	}
	return int(math.Ceil(ov.Viewport.Width)), int(math.Ceil(ov.Viewport.Height)), nil
}

// screenBox maps a canvas box into output coordinates.
func (ov Overlay) screenBox(b geom.Box) geom.Box {
	p := ov.Viewport.ToScreen(b.Min())
	q := ov.Viewport.ToScreen(b.Max())
	return geom.B(p.X, p.Y, q.X, q.Y)
}

// screenGuide returns the output coordinate of a guide line.
func (ov Overlay) screenGuide(g snap.DisplayGuide) float64 {
	if g.Orientation == snap.Vertical {
		return ov.Viewport.ToScreen(geom.Point{X: g.Position}).X
	}
	return ov.Viewport.ToScreen(geom.Point{Y: g.Position}).Y
}

func (ov Overlay) stroke(it Item, opt Options) canvas.Color {
	switch {
	case it.ID == ov.Active && ov.Active != "":
		return opt.ActiveStroke
	case !it.Color.IsZero():
		return it.Color
	}
	return opt.ObjectStroke
}

func guideLabel(g snap.DisplayGuide) string {
	return fmt.Sprintf("%s %s=%s", g.Anchor, axisName(g.Orientation), formatCoord(g.Position))
}

func axisName(o snap.Orientation) string {
	if o == snap.Vertical {
		return "x"
	}
	return "y"
}

func formatCoord(v float64) string { return fmt.Sprintf("%g", geom.FloatRound(v, 2)) }

func toRGBA(c canvas.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}
