/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"testing"

	"canvassnap/internal/geom"
)

func obj(id, parent string, x, y, w, h float64) Object {
	return Object{ID: id, ParentID: parent, Position: geom.Point{X: x, Y: y}, Size: &geom.Size{Width: w, Height: h}}
}

func TestBoardAbsolutePositionThroughParents(t *testing.T) {
	b := NewBoard(
		obj("group", "", 100, 50, 400, 400),
		obj("inner", "group", 20, 10, 200, 200),
		obj("leaf", "inner", 5, 5, 10, 10),
	)
	p, ok := b.AbsolutePosition("leaf")
	if !ok || p.X != 125 || p.Y != 65 {
		t.Fatalf("AbsolutePosition(leaf) = %+v, %v", p, ok)
	}
	box, ok := b.AbsoluteBox("inner")
	if !ok || box != geom.B(120, 60, 320, 260) {
		t.Fatalf("AbsoluteBox(inner) = %+v, %v", box, ok)
	}
	if _, ok := b.AbsolutePosition("missing"); ok {
		t.Fatalf("unknown id should not resolve")
	}
}

func TestBoardAbsolutePositionCycle(t *testing.T) {
	b := NewBoard(obj("a", "b", 0, 0, 1, 1), obj("b", "a", 0, 0, 1, 1))
	if _, ok := b.AbsolutePosition("a"); ok {
		t.Fatalf("cyclic parent chain must not resolve")
	}
}

func TestBoardAddGeneratesID(t *testing.T) {
	b := NewBoard()
	id := b.Add(Object{Measured: geom.Size{Width: 10, Height: 10}})
	if id == "" {
		t.Fatalf("expected generated id")
	}
	o, ok := b.Object(id)
	if !ok || o.Dimensions().Width != 10 {
		t.Fatalf("object not stored: %+v %v", o, ok)
	}
}

func TestBoardRemoveCascades(t *testing.T) {
	b := NewBoard(obj("g", "", 0, 0, 10, 10), obj("c1", "g", 0, 0, 1, 1), obj("c2", "c1", 0, 0, 1, 1), obj("x", "", 0, 0, 1, 1))
	if n := b.Remove("g"); n != 3 {
		t.Fatalf("Remove removed %d objects, want 3", n)
	}
	objs := b.Objects()
	if len(objs) != 1 || objs[0].ID != "x" {
		t.Fatalf("unexpected remaining objects: %+v", objs)
	}
	if _, ok := b.Object("x"); !ok {
		t.Fatalf("index not rebuilt after remove")
	}
}

func TestBoardApplyShapes(t *testing.T) {
	b := NewBoard(obj("a", "", 0, 0, 100, 50))
	n := b.Apply(Batch{
		PositionOnly{ID: "a", X: 10, Y: 20},
		DimensionOnly{ID: "a", Height: Float(80)},
		PositionOnly{ID: "missing", X: 1, Y: 1},
	})
	if n != 2 {
		t.Fatalf("applied %d, want 2", n)
	}
	o, _ := b.Object("a")
	if o.Position.X != 10 || o.Position.Y != 20 || o.Dimensions().Width != 100 || o.Dimensions().Height != 80 {
		t.Fatalf("unexpected object after apply: %+v size=%+v", o, o.Dimensions())
	}
	b.Apply(Batch{PositionAndDimension{ID: "a", X: 0, Y: 0, Width: Float(110), Height: Float(100)}})
	o, _ = b.Object("a")
	if o.Position.X != 0 || o.Dimensions() != (geom.Size{Width: 110, Height: 100}) {
		t.Fatalf("unexpected object after corner resize: %+v size=%+v", o, o.Dimensions())
	}
}

func TestBoardObjectsAreCopies(t *testing.T) {
	b := NewBoard(obj("a", "", 0, 0, 10, 10))
	objs := b.Objects()
	objs[0].Size.Width = 999
	o, _ := b.Object("a")
	if o.Dimensions().Width != 10 {
		t.Fatalf("caller mutated board state through returned slice")
	}
}

func TestBoardGestureCancelAndUndo(t *testing.T) {
	b := NewBoard(obj("a", "", 0, 0, 10, 10))

	b.BeginGesture("a")
	b.Apply(Batch{PositionOnly{ID: "a", X: 50, Y: 50}})
	if !b.CancelGesture("a") {
		t.Fatalf("cancel should restore")
	}
	if o, _ := b.Object("a"); o.Position.X != 0 {
		t.Fatalf("cancel did not restore position: %+v", o.Position)
	}

	b.BeginGesture("a")
	b.Apply(Batch{PositionOnly{ID: "a", X: 30, Y: 0}})
	if !b.CommitGesture("a") {
		t.Fatalf("commit failed")
	}
	if b.CancelGesture("a") {
		t.Fatalf("cancel after commit should be a no-op")
	}
	if !b.Undo("a") {
		t.Fatalf("undo failed")
	}
	if o, _ := b.Object("a"); o.Position.X != 0 {
		t.Fatalf("undo did not revert: %+v", o.Position)
	}
	if !b.Redo("a") {
		t.Fatalf("redo failed")
	}
	if o, _ := b.Object("a"); o.Position.X != 30 {
		t.Fatalf("redo did not re-apply: %+v", o.Position)
	}
}

func TestBoardBackToBackGesturesUndoSeparately(t *testing.T) {
	b := NewBoard(obj("a", "", 0, 0, 10, 10))
	for _, x := range []float64{30, 60} {
		b.BeginGesture("a")
		b.Apply(Batch{PositionOnly{ID: "a", X: x, Y: 0}})
		if !b.CommitGesture("a") {
			t.Fatalf("commit to x=%v failed", x)
		}
	}
	for _, want := range []float64{30, 0} {
		if !b.Undo("a") {
			t.Fatalf("undo to x=%v failed", want)
		}
		if o, _ := b.Object("a"); o.Position.X != want {
			t.Fatalf("undo landed at x=%v, want %v", o.Position.X, want)
		}
	}
	if b.Undo("a") {
		t.Fatalf("history should hold exactly two steps")
	}
}
