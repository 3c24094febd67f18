/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"slices"

	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
)

// GuideLine is a candidate alignment line: one anchor of one object.
// It holds a snapshot of the owner's box and refers to the owner by id only.
type GuideLine struct {
	Orientation Orientation
	Position    float64
	Source      geom.Box
	OwnerID     string
	// Ancestors is the owner's parent chain, nearest first.
	Ancestors []string
	Anchor    string
	Color     canvas.Color
}

// Key identifies the line across calls within one index generation.
func (g GuideLine) Key() string { return g.OwnerID + "/" + g.Anchor }

// belongsTo reports whether the line comes from the object or one of its descendants.
func (g GuideLine) belongsTo(id string) bool {
	return g.OwnerID == id || slices.Contains(g.Ancestors, id)
}

// BuildStats summarises one guide-line build.
type BuildStats struct {
	Objects int
	Lines   int
	// Degraded counts objects whose parent could not be resolved and that were
	// indexed with their local box.
	Degraded int
}

// BuildGuideLines returns one line per (object, anchor) pair, in object order.
// geo may be nil; nested objects then use their local boxes.
func BuildGuideLines(objs []canvas.Object, geo AbsoluteGeometry) ([]GuideLine, BuildStats) {
	stats := BuildStats{Objects: len(objs)}
	parents := make(map[string]string, len(objs))
	for _, o := range objs {
		parents[o.ID] = o.ParentID
	}
	anchors := Anchors()
	lines := make([]GuideLine, 0, len(objs)*len(anchors))
	for _, o := range objs {
		off, ok := parentOffset(o, geo)
		if !ok {
			stats.Degraded++
		}
		box := absoluteBox(o, off)
		chain := ancestors(o.ID, parents)
		for _, a := range anchors {
			lines = append(lines, GuideLine{
				Orientation: a.Orientation,
				Position:    a.Resolve(box),
				Source:      box,
				OwnerID:     o.ID,
				Ancestors:   chain,
				Anchor:      a.Name,
				Color:       a.Color,
			})
		}
	}
	stats.Lines = len(lines)
	return lines, stats
}

func ancestors(id string, parents map[string]string) []string {
	var chain []string
	seen := map[string]bool{id: true}
	for p := parents[id]; p != "" && !seen[p]; p = parents[p] {
		seen[p] = true
		chain = append(chain, p)
	}
	return chain
}
