/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"fmt"

	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
)

// Gesture is the interaction a change batch was recognised as.
type Gesture int

const (
	GestureNone Gesture = iota
	GestureDrag
	GestureResizeBottomRight
	GestureResizeTopLeft
)

func (g Gesture) String() string {
	switch g {
	case GestureDrag:
		return "drag"
	case GestureResizeBottomRight:
		return "resize-bottom-right"
	case GestureResizeTopLeft:
		return "resize-top-left"
	}
	return "none"
}

// anchors returns the anchors a gesture can snap with: every anchor for a drag,
// only the moving edges for a resize.
func (g Gesture) anchors() []Anchor {
	switch g {
	case GestureDrag:
		return Anchors()
	case GestureResizeBottomRight:
		return anchorsNamed(AnchorRight, AnchorBottom)
	case GestureResizeTopLeft:
		return anchorsNamed(AnchorLeft, AnchorTop)
	}
	return nil
}

// Match is the winning line for one orientation.
type Match struct {
	Candidate
	// Anchor is the moving object's anchor that matched.
	Anchor Anchor
	// EdgeToEdge is set when the moving edge faces the line's edge
	// (bottom onto top, right onto left).
	EdgeToEdge bool
}

// Resolution is the outcome of resolving one batch.
type Resolution struct {
	Gesture Gesture
	// Change is the rewritten change; equal to the input when nothing snapped.
	Change     canvas.Change
	Horizontal *Match
	Vertical   *Match
}

// Snapped reports whether at least one axis matched.
func (r Resolution) Snapped() bool { return r.Horizontal != nil || r.Vertical != nil }

// Target is the object a batch refers to, with the absolute position of its parent.
type Target struct {
	Object       canvas.Object
	ParentOffset geom.Point
}

func (t Target) currentBox() geom.Box { return absoluteBox(t.Object, t.ParentOffset) }

// Resolver finds the matches for one change against an index.
type Resolver struct {
	index *Index
	opts  Options
}

// NewResolver creates a resolver over ix.
func NewResolver(ix *Index, opts Options) *Resolver {
	return &Resolver{index: ix, opts: opts.normalized()}
}

// classify recognises the gesture behind a batch. Only a single entry of one of
// the three change shapes is accepted.
func classify(batch canvas.Batch) (canvas.Change, Gesture, error) {
	if len(batch) != 1 {
		return nil, GestureNone, fmt.Errorf("%w: %d entries", ErrMalformedChangeBatch, len(batch))
	}
	switch c := batch[0].(type) {
	case canvas.PositionOnly:
		return c, GestureDrag, nil
	case canvas.DimensionOnly:
		return c, GestureResizeBottomRight, nil
	case canvas.PositionAndDimension:
		return c, GestureResizeTopLeft, nil
	case nil:
		return nil, GestureNone, fmt.Errorf("%w: nil entry", ErrMalformedChangeBatch)
	default:
		return nil, GestureNone, fmt.Errorf("%w: unsupported change %T", ErrMalformedChangeBatch, c)
	}
}

// proposedBox merges the change onto the object's current absolute geometry.
func proposedBox(change canvas.Change, t Target) geom.Box {
	cur := t.currentBox()
	size := geom.Size{Width: cur.Width(), Height: cur.Height()}
	switch c := change.(type) {
	case canvas.PositionOnly:
		return geom.BoxAt(toAbsolute(geom.Point{X: c.X, Y: c.Y}, t.ParentOffset), size)
	case canvas.DimensionOnly:
		return geom.BoxAt(cur.Min(), withDims(size, c.Width, c.Height))
	case canvas.PositionAndDimension:
		return geom.BoxAt(toAbsolute(geom.Point{X: c.X, Y: c.Y}, t.ParentOffset), withDims(size, c.Width, c.Height))
	}
	return cur
}

func withDims(s geom.Size, w, h *float64) geom.Size {
	if w != nil {
		s.Width = *w
	}
	if h != nil {
		s.Height = *h
	}
	return s
}

// Resolve finds the matches for a single-entry batch and rewrites the change.
// viewport is the visible world rectangle. Errors mean the batch must be passed
// through unmodified.
func (r *Resolver) Resolve(batch canvas.Batch, t Target, s *Session, viewport geom.Box) (Resolution, error) {
	change, gesture, err := classify(batch)
	if err != nil {
		return Resolution{Change: firstOrNil(batch)}, err
	}
	res := Resolution{Gesture: gesture, Change: change}
	if change.ObjectID() != t.Object.ID {
		return res, fmt.Errorf("%w: change for %q, target %q", ErrMissingGeometry, change.ObjectID(), t.Object.ID)
	}
	if viewport.Empty() || !viewport.Finite() {
		return res, ErrDegenerateViewport
	}
	if t.currentBox().Empty() {
		return res, fmt.Errorf("%w: %q", ErrDegenerateObject, t.Object.ID)
	}
	proposed := proposedBox(change, t)
	if proposed.Empty() || !proposed.Finite() {
		return res, fmt.Errorf("%w: %q proposed box", ErrDegenerateObject, t.Object.ID)
	}

	var hits [2][]Match
	for _, a := range gesture.anchors() {
		cands := r.index.Within(Query{
			Orientation: a.Orientation,
			Target:      a.Resolve(proposed),
			ActiveID:    t.Object.ID,
			ActiveBox:   proposed,
			Viewport:    viewport,
			Radius:      r.opts.Radius,
			Buffer:      r.opts.HysteresisBuffer,
		})
		for _, c := range cands {
			hits[a.Orientation] = append(hits[a.Orientation], Match{
				Candidate:  c,
				Anchor:     a,
				EdgeToEdge: opposite(a.Name) != "" && opposite(a.Name) == c.Line.Anchor,
			})
		}
	}
	res.Horizontal = r.pick(hits[Horizontal], s.Last(Horizontal))
	res.Vertical = r.pick(hits[Vertical], s.Last(Vertical))

	applyMatches(&res, t, proposed)

	s.remember(Horizontal, matchKey(res.Horizontal))
	s.remember(Vertical, matchKey(res.Vertical))
	return res, nil
}

// pick chooses one winner among all in-radius hits of an orientation. An
// edge-to-edge pairing within the edge-preference window of the nearest hit
// replaces it; the hysteresis ranking then runs among the survivors only.
func (r *Resolver) pick(hits []Match, prefer string) *Match {
	if len(hits) == 0 {
		return nil
	}
	nearest := 0
	for i, h := range hits {
		if h.LineDist < hits[nearest].LineDist {
			nearest = i
		}
	}
	survivors := hits
	if r.opts.EdgePreference > 0 {
		window := hits[nearest].LineDist + r.opts.EdgePreference
		var edge []Match
		for _, h := range hits {
			if h.EdgeToEdge && h.LineDist <= window {
				edge = append(edge, h)
			}
		}
		if len(edge) > 0 {
			survivors = edge
		}
	}
	cands := make([]Candidate, len(survivors))
	for i, h := range survivors {
		cands[i] = h.Candidate
	}
	best := survivors[rank(cands, prefer, r.opts.HysteresisBuffer)]
	return &best
}

func matchKey(m *Match) string {
	if m == nil {
		return ""
	}
	return m.Line.Key()
}

func firstOrNil(batch canvas.Batch) canvas.Change {
	if len(batch) == 0 {
		return nil
	}
	return batch[0]
}
