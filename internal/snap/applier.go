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

// applyMatches rewrites res.Change so the matched anchors land on their lines.
// A match that would collapse or invert the box is dropped.
func applyMatches(res *Resolution, t Target, proposed geom.Box) {
	if !res.Snapped() {
		return
	}
	switch c := res.Change.(type) {
	case canvas.PositionOnly:
		res.Change = applyDrag(c, res, t, proposed)
	case canvas.DimensionOnly:
		res.Change = applyResizeBottomRight(c, res, t)
	case canvas.PositionAndDimension:
		res.Change = applyResizeTopLeft(c, res, t)
	}
}

// applyDrag shifts the position in absolute space, then re-expresses it in the
// object's parent frame.
func applyDrag(c canvas.PositionOnly, res *Resolution, t Target, proposed geom.Box) canvas.Change {
	abs := toAbsolute(geom.Point{X: c.X, Y: c.Y}, t.ParentOffset)
	if m := res.Vertical; m != nil {
		abs.X += m.Line.Position - m.Anchor.Resolve(proposed)
	}
	if m := res.Horizontal; m != nil {
		abs.Y += m.Line.Position - m.Anchor.Resolve(proposed)
	}
	rel := toRelative(abs, t.ParentOffset)
	c.X, c.Y = rel.X, rel.Y
	return c
}

// applyResizeBottomRight grows the size so the moving edge lands on the line
// while the top-left corner stays where it is.
func applyResizeBottomRight(c canvas.DimensionOnly, res *Resolution, t Target) canvas.Change {
	cur := t.currentBox()
	if m := res.Vertical; m != nil {
		if w := m.Line.Position - cur.X; w > 0 {
			c.Width = canvas.Float(w)
		} else {
			res.Vertical = nil
		}
	}
	if m := res.Horizontal; m != nil {
		if h := m.Line.Position - cur.Y; h > 0 {
			c.Height = canvas.Float(h)
		} else {
			res.Horizontal = nil
		}
	}
	return c
}

// applyResizeTopLeft moves the top-left corner onto the line and adjusts the
// size so the bottom-right corner keeps its pre-resize absolute position.
func applyResizeTopLeft(c canvas.PositionAndDimension, res *Resolution, t Target) canvas.Change {
	cur := t.currentBox()
	abs := toAbsolute(geom.Point{X: c.X, Y: c.Y}, t.ParentOffset)
	if m := res.Vertical; m != nil {
		if w := (cur.X + cur.Width()) - m.Line.Position; w > 0 {
			abs.X = m.Line.Position
			c.Width = canvas.Float(w)
		} else {
			res.Vertical = nil
		}
	}
	if m := res.Horizontal; m != nil {
		if h := (cur.Y + cur.Height()) - m.Line.Position; h > 0 {
			abs.Y = m.Line.Position
			c.Height = canvas.Float(h)
		} else {
			res.Horizontal = nil
		}
	}
	rel := toRelative(abs, t.ParentOffset)
	c.X, c.Y = rel.X, rel.Y
	return c
}
