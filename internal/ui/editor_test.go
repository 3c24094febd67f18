/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
	"canvassnap/internal/snap"
)

func rect(id string, x, y, w, h float64) canvas.Object {
	return canvas.Object{ID: id, Position: geom.Point{X: x, Y: y}, Size: &geom.Size{Width: w, Height: h}}
}

func newTestEditor() *Editor {
	b := canvas.NewBoard(
		rect("a", 100, 100, 80, 40),
		rect("b", 300, 300, 80, 40),
		rect("c", 400, 500, 50, 50),
	)
	return NewEditor(b, snap.DefaultOptions())
}

func pos(t *testing.T, e *Editor, id string) geom.Box {
	t.Helper()
	box, ok := e.Board().AbsoluteBox(id)
	if !ok {
		t.Fatalf("object %q missing", id)
	}
	return box
}

func TestPick_HandlesWinOverBody(t *testing.T) {
	e := newTestEditor()
	vp := e.Board().Viewport()
	cases := []struct {
		p    geom.Point
		id   string
		want Handle
	}{
		{geom.Point{X: 310, Y: 310}, "b", HandleBody},
		{geom.Point{X: 381, Y: 339}, "b", HandleBottomRight},
		{geom.Point{X: 298, Y: 302}, "b", HandleTopLeft},
		{geom.Point{X: 10, Y: 10}, "", HandleNone},
	}
	for _, c := range cases {
		id, h := Pick(e.Board(), vp, c.p)
		if id != c.id || h != c.want {
			t.Fatalf("Pick(%v) = %q %s, want %q %s", c.p, id, h, c.id, c.want)
		}
	}
}

func TestPick_TopMostWins(t *testing.T) {
	b := canvas.NewBoard(rect("under", 0, 0, 100, 100), rect("over", 20, 20, 50, 50))
	id, h := Pick(b, b.Viewport(), geom.Point{X: 40, Y: 40})
	if id != "over" || h != HandleBody {
		t.Fatalf("got %q %s", id, h)
	}
}

func TestDrag_Propose(t *testing.T) {
	o := rect("x", 10, 20, 100, 50)
	start := geom.Point{X: 0, Y: 0}
	move := Drag{ID: "x", Handle: HandleBody, start: start, orig: o}
	if got := move.Propose(geom.Point{X: 5, Y: -5}); got != (canvas.PositionOnly{ID: "x", X: 15, Y: 15}) {
		t.Fatalf("move = %v", got)
	}
	br := Drag{ID: "x", Handle: HandleBottomRight, start: start, orig: o}
	d, ok := br.Propose(geom.Point{X: 10, Y: -100}).(canvas.DimensionOnly)
	if !ok || *d.Width != 110 || *d.Height != minExtent {
		t.Fatalf("bottom-right = %v", d)
	}
	tl := Drag{ID: "x", Handle: HandleTopLeft, start: start, orig: o}
	pd, ok := tl.Propose(geom.Point{X: 10, Y: 5}).(canvas.PositionAndDimension)
	if !ok || pd.X != 20 || pd.Y != 25 || *pd.Width != 90 || *pd.Height != 45 {
		t.Fatalf("top-left = %v", pd)
	}
	if br.State() != snap.Resizing || move.State() != snap.Dragging {
		t.Fatalf("states = %s %s", br.State(), move.State())
	}
}

func TestEditor_DragSnapsAndShowsGuide(t *testing.T) {
	e := newTestEditor()
	if !e.Press(geom.Point{X: 310, Y: 310}) {
		t.Fatalf("press should grab b")
	}
	if e.Controller().State() != snap.Dragging {
		t.Fatalf("state = %s", e.Controller().State())
	}
	e.Move(geom.Point{X: 193, Y: 310})
	if got := pos(t, e, "b"); got.X != 180 || got.Y != 300 {
		t.Fatalf("b = %+v, want snapped to x=180", got)
	}
	guides := e.Guides()
	if len(guides) != 1 || guides[0].Orientation != snap.Vertical || guides[0].Position != 180 || guides[0].OwnerID != "a" {
		t.Fatalf("guides = %+v", guides)
	}
	e.Release()
	if e.Dragging() || len(e.Guides()) != 0 {
		t.Fatalf("release should end the gesture and clear guides")
	}
	if e.Selected() != "b" {
		t.Fatalf("selection = %q", e.Selected())
	}
}

func TestEditor_UndoRedo(t *testing.T) {
	e := newTestEditor()
	e.Press(geom.Point{X: 310, Y: 310})
	e.Move(geom.Point{X: 193, Y: 310})
	e.Release()
	if !e.Undo() {
		t.Fatalf("undo failed")
	}
	if got := pos(t, e, "b"); got.X != 300 {
		t.Fatalf("after undo x = %v", got.X)
	}
	if !e.Redo() {
		t.Fatalf("redo failed")
	}
	if got := pos(t, e, "b"); got.X != 180 {
		t.Fatalf("after redo x = %v", got.X)
	}
}

func TestEditor_ResizeSnapsRightEdge(t *testing.T) {
	e := newTestEditor()
	if !e.Press(geom.Point{X: 380, Y: 340}) {
		t.Fatalf("press should grab the handle")
	}
	if e.Controller().State() != snap.Resizing {
		t.Fatalf("state = %s", e.Controller().State())
	}
	e.Move(geom.Point{X: 397, Y: 340})
	if got := pos(t, e, "b"); got.Width() != 100 || got.Height() != 40 || got.X != 300 {
		t.Fatalf("b = %+v, want width 100", got)
	}
	e.Release()
}

func TestEditor_CancelRestores(t *testing.T) {
	e := newTestEditor()
	e.Press(geom.Point{X: 310, Y: 310})
	e.Move(geom.Point{X: 250, Y: 250})
	e.Cancel()
	if got := pos(t, e, "b"); got.X != 300 || got.Y != 300 {
		t.Fatalf("cancel did not restore: %+v", got)
	}
	if e.Controller().State() != snap.Idle || e.Undo() {
		t.Fatalf("cancelled gesture must not reach the history")
	}
}

func TestEditor_PressOnEmptySpace(t *testing.T) {
	e := newTestEditor()
	e.Select("a")
	if e.Press(geom.Point{X: 5, Y: 5}) {
		t.Fatalf("press on empty space should not grab")
	}
	if e.Selected() != "" || e.Move(geom.Point{X: 50, Y: 50}) != nil {
		t.Fatalf("nothing should be selected or moved")
	}
}

func TestEditor_PanAndZoom(t *testing.T) {
	e := newTestEditor()
	e.Pan(10, -5)
	vp := e.Board().Viewport()
	if vp.PanX != 10 || vp.PanY != -5 {
		t.Fatalf("pan = %+v", vp)
	}
	e.Zoom(2, geom.Point{X: 10, Y: -5})
	vp = e.Board().Viewport()
	if vp.Zoom != 2 || vp.PanX != 10 || vp.PanY != -5 {
		t.Fatalf("zoom around the origin should keep the pan: %+v", vp)
	}
	// World (100,100) now sits at screen (210,195).
	if !e.Press(geom.Point{X: 212, Y: 197}) || e.Selected() != "a" {
		t.Fatalf("press should map through the viewport, selected %q", e.Selected())
	}
	e.Cancel()
	e.Resize(640, 480)
	if vp = e.Board().Viewport(); vp.Width != 640 || vp.Height != 480 {
		t.Fatalf("resize = %+v", vp)
	}
}

func TestEditor_ReloadDropsStaleSelection(t *testing.T) {
	e := newTestEditor()
	e.Select("b")
	e.Reload([]canvas.Object{rect("a", 0, 0, 10, 10)})
	if e.Selected() != "" {
		t.Fatalf("selection should be cleared, got %q", e.Selected())
	}
	if d := e.Diagnostics(); d.Lines != 6 {
		t.Fatalf("lines after reload = %d, want 6", d.Lines)
	}
}

func TestSameObjects(t *testing.T) {
	a := demoObjects()
	b := demoObjects()
	if !sameObjects(a, b) {
		t.Fatalf("identical lists should match")
	}
	b[1].Position.X++
	if sameObjects(a, b) {
		t.Fatalf("moved object should not match")
	}
	if sameObjects(a, a[:2]) {
		t.Fatalf("different lengths should not match")
	}
}

func TestDemoObjectsAreNested(t *testing.T) {
	b := canvas.NewBoard(demoObjects()...)
	box, ok := b.AbsoluteBox("child")
	if !ok || box.X != 720 || box.Y != 100 {
		t.Fatalf("child box = %+v %v", box, ok)
	}
}
