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

// AbsoluteGeometry is implemented by hosts that can compose an object's
// position through its parent chain. Without it the engine falls back to
// local geometry.
type AbsoluteGeometry interface {
	AbsolutePosition(id string) (geom.Point, bool)
}

// toAbsolute maps a parent-relative point to canvas coordinates.
func toAbsolute(local, parentOffset geom.Point) geom.Point { return local.Add(parentOffset) }

// toRelative maps a canvas point back into the parent's frame.
func toRelative(abs, parentOffset geom.Point) geom.Point { return abs.Sub(parentOffset) }

// parentOffset returns the absolute position of o's parent. ok is false when o
// has a parent that cannot be resolved; the zero offset is returned then.
func parentOffset(o canvas.Object, geo AbsoluteGeometry) (geom.Point, bool) {
	if o.ParentID == "" {
		return geom.Point{}, true
	}
	if geo == nil {
		return geom.Point{}, false
	}
	p, ok := geo.AbsolutePosition(o.ParentID)
	if !ok {
		return geom.Point{}, false
	}
	return p, true
}

// absoluteBox returns o's box in canvas coordinates given its parent offset.
func absoluteBox(o canvas.Object, off geom.Point) geom.Box {
	return geom.BoxAt(toAbsolute(o.Position, off), o.Dimensions())
}
