/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas describes the host side of the snapping engine: the objects a
// canvas owns, the pending changes its interaction layer proposes, and the
// viewport. Board is a small reference host used by the CLI, the desktop
// canvas and the tests.
package canvas

import "canvassnap/internal/geom"

// Object is one item on the canvas. Position is relative to the parent when
// ParentID is set, absolute otherwise.
type Object struct {
	ID       string     `json:"id"`
	ParentID string     `json:"parentId,omitempty"`
	Position geom.Point `json:"position"`
	// Size is the live size; nil while the host has not measured it yet.
	Size     *geom.Size `json:"size,omitempty"`
	Measured geom.Size  `json:"measured"`
	Color    Color      `json:"color,omitempty"`
}

// Dimensions returns the live size, falling back to the measured one.
func (o Object) Dimensions() geom.Size {
	if o.Size != nil {
		return *o.Size
	}
	return o.Measured
}

// LocalBox is the object's box in its own (parent-relative) frame.
func (o Object) LocalBox() geom.Box { return geom.BoxAt(o.Position, o.Dimensions()) }

// Clone returns a copy that shares no memory with o.
func (o Object) Clone() Object {
	if o.Size != nil {
		s := *o.Size
		o.Size = &s
	}
	return o
}

// Color is an 8-bit RGBA color used for rendering hints.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// IsZero reports whether no color was set.
func (c Color) IsZero() bool { return c == Color{} }
