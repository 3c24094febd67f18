/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"cmp"
	"math"
	"slices"
	"sort"

	"canvassnap/internal/geom"
)

// Index holds guide lines sorted by coordinate, one sequence per orientation.
// It is immutable once built; a rebuild replaces it wholesale.
type Index struct {
	vertical   []GuideLine // by x
	horizontal []GuideLine // by y
}

// NewIndex sorts lines into the two sequences. Ties are ordered by owner and
// anchor so searches are deterministic.
func NewIndex(lines []GuideLine) *Index {
	ix := &Index{}
	for _, l := range lines {
		if l.Orientation == Vertical {
			ix.vertical = append(ix.vertical, l)
		} else {
			ix.horizontal = append(ix.horizontal, l)
		}
	}
	byPosition := func(a, b GuideLine) int {
		return cmp.Or(cmp.Compare(a.Position, b.Position), cmp.Compare(a.OwnerID, b.OwnerID), cmp.Compare(a.Anchor, b.Anchor))
	}
	slices.SortStableFunc(ix.vertical, byPosition)
	slices.SortStableFunc(ix.horizontal, byPosition)
	return ix
}

// Len returns the number of indexed lines.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.vertical) + len(ix.horizontal)
}

// Lines returns a copy of the sorted sequence for o.
func (ix *Index) Lines(o Orientation) []GuideLine {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.sequence(o))
}

func (ix *Index) sequence(o Orientation) []GuideLine {
	if o == Vertical {
		return ix.vertical
	}
	return ix.horizontal
}

// Query describes one nearest-line lookup.
type Query struct {
	Orientation Orientation
	// Target is the moving anchor's coordinate.
	Target float64
	// ActiveID is the object being manipulated; its lines and its
	// descendants' lines never match.
	ActiveID string
	// ActiveBox is the object's in-progress absolute box.
	ActiveBox geom.Box
	// Viewport is the visible world rectangle; off-screen sources are ignored.
	Viewport geom.Box
	Radius   float64
	Buffer   float64
	// Prefer is the key of the line matched last time for this orientation.
	Prefer string
}

// Candidate is a line inside the radius with its ranking distances.
type Candidate struct {
	Line GuideLine
	// LineDist is |line - target|.
	LineDist float64
	// NodeDist is 0 when the line's source box overlaps the active box,
	// otherwise the edge-to-edge gap between them.
	NodeDist float64
}

// Search is the standalone single-anchor query: it returns the best line for
// q, if any lies within the radius. The resolver ranks hits of several anchors
// at once with the same rule through rank.
func (ix *Index) Search(q Query) (Candidate, bool) {
	cands := ix.Within(q)
	if len(cands) == 0 {
		return Candidate{}, false
	}
	return cands[rank(cands, q.Prefer, q.Buffer)], true
}

// Within returns every candidate for q in coordinate order.
func (ix *Index) Within(q Query) []Candidate {
	var out []Candidate
	ix.scan(q, func(c Candidate) { out = append(out, c) })
	return out
}

func (ix *Index) scan(q Query, visit func(Candidate)) {
	if ix == nil || q.Radius < 0 || math.IsNaN(q.Target) {
		return
	}
	seq := ix.sequence(q.Orientation)
	vpMin, vpMax := q.Viewport.Y, q.Viewport.Y2
	if q.Orientation == Vertical {
		vpMin, vpMax = q.Viewport.X, q.Viewport.X2
	}
	lo := max(vpMin, q.Target-q.Radius)
	hi := min(vpMax, q.Target+q.Radius)
	start := sort.Search(len(seq), func(i int) bool { return seq[i].Position >= lo })
	for i := start; i < len(seq); i++ {
		l := seq[i]
		if l.Position > hi {
			break
		}
		if q.ActiveID != "" && l.belongsTo(q.ActiveID) {
			continue
		}
		if !l.Source.Intersects(q.Viewport) {
			continue
		}
		lineDist := math.Abs(l.Position - q.Target)
		if lineDist > q.Radius {
			continue
		}
		nodeDist := 0.0
		if !l.Source.Overlaps(q.ActiveBox) {
			nodeDist = geom.Gap(l.Source, q.ActiveBox)
		}
		visit(Candidate{Line: l, LineDist: lineDist, NodeDist: nodeDist})
	}
}

// rank returns the index of the winning candidate. Only candidates within
// buffer of the nearest line compete; among them the preferred line wins
// outright, then the nearer source object, then the nearer line. Exact ties
// keep the earlier candidate, so the result does not depend on how the
// candidates around the nearest one are ordered.
func rank(cands []Candidate, prefer string, buffer float64) int {
	nearest := 0
	for i, c := range cands {
		if c.LineDist < cands[nearest].LineDist {
			nearest = i
		}
	}
	limit := cands[nearest].LineDist + buffer
	best := -1
	for i, c := range cands {
		if c.LineDist > limit {
			continue
		}
		if best < 0 || outranks(c, cands[best], prefer) {
			best = i
		}
	}
	return best
}

func outranks(a, b Candidate, prefer string) bool {
	if prefer != "" {
		ap, bp := a.Line.Key() == prefer, b.Line.Key() == prefer
		if ap != bp {
			return ap
		}
	}
	if a.NodeDist != b.NodeDist {
		return a.NodeDist < b.NodeDist
	}
	return a.LineDist < b.LineDist
}
