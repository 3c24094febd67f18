/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui hosts the interactive board. The pointer handling lives in Editor,
// which needs no display; the Fyne widget in the fyne build only forwards
// events to it and draws the result.
package ui

import (
	"log/slog"
	"math"

	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
	applog "canvassnap/internal/log"
	"canvassnap/internal/snap"
)

// Handle names the part of an object the pointer grabbed.
type Handle int

const (
	HandleNone Handle = iota
	HandleBody
	HandleBottomRight
	HandleTopLeft
)

func (h Handle) String() string {
	switch h {
	case HandleBody:
		return "body"
	case HandleBottomRight:
		return "bottom-right"
	case HandleTopLeft:
		return "top-left"
	}
	return "none"
}

// HandleSize is the side of a corner handle in screen units.
const HandleSize = 8

// minExtent keeps resized objects from collapsing.
const minExtent = 1

// Pick returns the top-most object under the world point p and the handle hit.
// Corner handles win over the body so small objects stay resizable.
func Pick(b *canvas.Board, vp canvas.Viewport, p geom.Point) (string, Handle) {
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	tol := HandleSize / 2 / zoom
	objs := b.Objects()
	for i := len(objs) - 1; i >= 0; i-- {
		box, ok := b.AbsoluteBox(objs[i].ID)
		if !ok || box.Empty() {
			continue
		}
		switch {
		case near(p, box.Max(), tol):
			return objs[i].ID, HandleBottomRight
		case near(p, box.Min(), tol):
			return objs[i].ID, HandleTopLeft
		case p.X >= box.X && p.X <= box.X2 && p.Y >= box.Y && p.Y <= box.Y2:
			return objs[i].ID, HandleBody
		}
	}
	return "", HandleNone
}

func near(p, q geom.Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Drag is one pointer gesture from grab to release. Positions are in the
// object's own frame; deltas are the same in every frame since parents only
// translate.
type Drag struct {
	ID     string
	Handle Handle
	start  geom.Point
	orig   canvas.Object
}

// State is the controller state matching the grabbed handle.
func (d Drag) State() snap.State {
	if d.Handle == HandleBody {
		return snap.Dragging
	}
	return snap.Resizing
}

// Propose returns the change for the pointer at world point p.
func (d Drag) Propose(p geom.Point) canvas.Change {
	dx, dy := p.X-d.start.X, p.Y-d.start.Y
	pos := d.orig.Position
	size := d.orig.Dimensions()
	switch d.Handle {
	case HandleBottomRight:
		return canvas.DimensionOnly{
			ID:     d.ID,
			Width:  canvas.Float(math.Max(minExtent, size.Width+dx)),
			Height: canvas.Float(math.Max(minExtent, size.Height+dy)),
		}
	case HandleTopLeft:
		w := math.Max(minExtent, size.Width-dx)
		h := math.Max(minExtent, size.Height-dy)
		return canvas.PositionAndDimension{
			ID:     d.ID,
			X:      pos.X + size.Width - w,
			Y:      pos.Y + size.Height - h,
			Width:  canvas.Float(w),
			Height: canvas.Float(h),
		}
	}
	return canvas.PositionOnly{ID: d.ID, X: pos.X + dx, Y: pos.Y + dy}
}

// Editor turns pointer input into snapped board updates.
type Editor struct {
	board    *canvas.Board
	ctrl     *snap.Controller
	drag     *Drag
	selected string
	log      *slog.Logger
}

func NewEditor(b *canvas.Board, opts snap.Options) *Editor {
	return &Editor{board: b, ctrl: snap.NewController(b, opts), log: applog.WithComponent("editor")}
}

func (e *Editor) Board() *canvas.Board          { return e.board }
func (e *Editor) Controller() *snap.Controller  { return e.ctrl }
func (e *Editor) Selected() string              { return e.selected }
func (e *Editor) Dragging() bool                { return e.drag != nil }
func (e *Editor) Guides() []snap.DisplayGuide   { return e.ctrl.DisplayGuides() }
func (e *Editor) Diagnostics() snap.Diagnostics { return e.ctrl.Diagnostics() }
func (e *Editor) Select(id string)              { e.selected = id }

// Press grabs whatever lies under the screen point. It reports false when
// nothing was hit, which the caller treats as a pan.
func (e *Editor) Press(screen geom.Point) bool {
	if e.drag != nil {
		e.Cancel()
	}
	vp := e.board.Viewport()
	p := vp.ToWorld(screen)
	id, h := Pick(e.board, vp, p)
	if h == HandleNone {
		e.selected = ""
		return false
	}
	o, ok := e.board.Object(id)
	if !ok {
		return false
	}
	e.drag = &Drag{ID: id, Handle: h, start: p, orig: o}
	e.selected = id
	e.board.BeginGesture(id)
	e.ctrl.BeginGesture(id, e.drag.State())
	e.log.Debug("grab", slog.String("id", id), slog.String("handle", h.String()))
	return true
}

// Move proposes the change for the pointer, lets the controller snap it and
// applies the result. It returns what was applied.
func (e *Editor) Move(screen geom.Point) canvas.Batch {
	if e.drag == nil {
		return nil
	}
	p := e.board.Viewport().ToWorld(screen)
	batch := e.ctrl.Resolve(canvas.Batch{e.drag.Propose(p)})
	e.board.Apply(batch)
	return batch
}

// Release commits the gesture to the undo history and rebuilds the guides.
func (e *Editor) Release() {
	if e.drag == nil {
		return
	}
	e.board.CommitGesture(e.drag.ID)
	e.drag = nil
	e.ctrl.EndGesture()
}

// Cancel restores the geometry from before the grab.
func (e *Editor) Cancel() {
	if e.drag == nil {
		return
	}
	e.board.CancelGesture(e.drag.ID)
	e.drag = nil
	e.ctrl.CancelGesture()
}

// Pan shifts the viewport by a screen-space delta.
func (e *Editor) Pan(dx, dy float64) {
	vp := e.board.Viewport()
	vp.PanX += dx
	vp.PanY += dy
	e.board.SetViewport(vp)
}

// Zoom scales the viewport by factor around the screen point.
func (e *Editor) Zoom(factor float64, at geom.Point) {
	vp := e.board.Viewport()
	z := math.Min(8, math.Max(0.1, vp.Zoom*factor))
	if z == vp.Zoom || vp.Zoom <= 0 {
		return
	}
	w := vp.ToWorld(at)
	vp.Zoom = z
	vp.PanX = at.X - w.X*z
	vp.PanY = at.Y - w.Y*z
	e.board.SetViewport(vp)
}

// Resize sets the viewport to the widget size.
func (e *Editor) Resize(w, h float64) {
	vp := e.board.Viewport()
	vp.Width, vp.Height = w, h
	e.board.SetViewport(vp)
}

// Undo reverts the last gesture on the selected object.
func (e *Editor) Undo() bool { return e.history(e.board.Undo) }

// Redo re-applies the last undone gesture on the selected object.
func (e *Editor) Redo() bool { return e.history(e.board.Redo) }

func (e *Editor) history(op func(string) bool) bool {
	if e.drag != nil || e.selected == "" {
		return false
	}
	if !op(e.selected) {
		return false
	}
	e.ctrl.Rebuild()
	return true
}

// Reload swaps the board contents, e.g. after the scene file changed on disk.
func (e *Editor) Reload(objs []canvas.Object) {
	e.Cancel()
	e.board.Replace(objs)
	if _, ok := e.board.Object(e.selected); !ok {
		e.selected = ""
	}
	e.ctrl.Rebuild()
}

// sameObjects reports whether two object lists carry the same geometry, so a
// reload caused by our own save can be skipped.
func sameObjects(a, b []canvas.Object) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.ParentID != y.ParentID || x.Position != y.Position ||
			x.Dimensions() != y.Dimensions() || x.Color != y.Color {
			return false
		}
	}
	return true
}

// demoObjects is the board shown when no scene is opened.
func demoObjects() []canvas.Object {
	size := func(w, h float64) *geom.Size { return &geom.Size{Width: w, Height: h} }
	return []canvas.Object{
		{ID: "A", Position: geom.Point{X: 80, Y: 80}, Size: size(200, 100), Color: canvas.Color{R: 236, G: 72, B: 153, A: 255}},
		{ID: "B", Position: geom.Point{X: 380, Y: 125}, Size: size(220, 400), Color: canvas.Color{R: 59, G: 130, B: 246, A: 255}},
		{ID: "group", Position: geom.Point{X: 700, Y: 80}, Size: size(300, 240), Color: canvas.Color{R: 229, G: 231, B: 235, A: 255}},
		{ID: "child", ParentID: "group", Position: geom.Point{X: 20, Y: 20}, Size: size(120, 80), Color: canvas.Color{R: 16, G: 185, B: 129, A: 255}},
	}
}
