/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"testing"

	"canvassnap/internal/canvas"
)

type recordingReporter struct{ reasons []string }

func (r *recordingReporter) ReportFallback(reason string) { r.reasons = append(r.reasons, reason) }

// localHost exposes a board without absolute geometry.
type localHost struct{ b *canvas.Board }

func (h localHost) Objects() []canvas.Object               { return h.b.Objects() }
func (h localHost) Object(id string) (canvas.Object, bool) { return h.b.Object(id) }
func (h localHost) Viewport() canvas.Viewport              { return h.b.Viewport() }

func TestControllerScenarioAndGuides(t *testing.T) {
	b := scenarioBoard()
	c := NewController(b, DefaultOptions())
	if c.State() != Idle || c.Diagnostics().Rebuilds != 1 || c.Diagnostics().Lines != 12 {
		t.Fatalf("unexpected initial state %v %+v", c.State(), c.Diagnostics())
	}

	c.BeginGesture("A", Dragging)
	out := c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}})
	if len(out) != 1 || out[0] != canvas.Change(canvas.PositionOnly{ID: "A", X: 180, Y: 300}) {
		t.Fatalf("expected snapped batch, got %v", out)
	}
	h, v := c.Guides()
	if h != nil || v == nil || v.Position != 380 || v.OwnerID != "B" {
		t.Fatalf("unexpected guides h=%+v v=%+v", h, v)
	}
	dg := c.DisplayGuides()
	if len(dg) != 1 || dg[0].Orientation != Vertical || dg[0].Dashed {
		t.Fatalf("unexpected display guides %+v", dg)
	}

	b.Apply(out)
	c.EndGesture()
	if h, v := c.Guides(); h != nil || v != nil {
		t.Fatalf("guides should clear on gesture end")
	}
	if c.State() != Idle || c.Diagnostics().Rebuilds != 2 {
		t.Fatalf("gesture end should rebuild: %+v", c.Diagnostics())
	}
	if d := c.Diagnostics(); d.Resolves != 1 || d.Snapped != 1 || d.Fallbacks() != 0 {
		t.Fatalf("unexpected counters %+v", d)
	}
}

func TestControllerRebuildSeesMovedObject(t *testing.T) {
	b := scenarioBoard()
	c := NewController(b, DefaultOptions())
	b.Apply(canvas.Batch{canvas.PositionOnly{ID: "B", X: 700, Y: 125}})
	c.BeginGesture("A", Dragging)
	in := canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}}
	// stale index still knows B at 380
	if out := c.Resolve(in); out[0].(canvas.PositionOnly).X != 180 {
		t.Fatalf("stale index should still snap to the old position, got %v", out)
	}
	c.Rebuild()
	if out := c.Resolve(in); out[0].(canvas.PositionOnly).X != 183 {
		t.Fatalf("after rebuild B is out of reach, got %v", out)
	}
}

func TestControllerGuidesOnlyWhileActive(t *testing.T) {
	c := NewController(scenarioBoard(), DefaultOptions())
	out := c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}})
	if out[0].(canvas.PositionOnly).X != 180 {
		t.Fatalf("idle resolve should still snap, got %v", out)
	}
	if len(c.DisplayGuides()) != 0 {
		t.Fatalf("no guides expected while idle")
	}

	c.BeginGesture("B", Dragging)
	c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}})
	if len(c.DisplayGuides()) != 0 {
		t.Fatalf("no guides expected for a change on another object")
	}

	c.BeginGesture("A", Dragging)
	c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}})
	if len(c.DisplayGuides()) != 1 {
		t.Fatalf("expected one guide during the gesture")
	}
	c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "A", X: 150, Y: 300}})
	if len(c.DisplayGuides()) != 0 {
		t.Fatalf("guides should clear when nothing matches")
	}
	c.CancelGesture()
	if c.State() != Idle || c.ActiveObject() != "" || c.Diagnostics().Rebuilds != 1 {
		t.Fatalf("cancel should go idle without rebuild: %v %+v", c.State(), c.Diagnostics())
	}
}

func TestControllerFallbacksPassThrough(t *testing.T) {
	b := scenarioBoard()
	c := NewController(b, DefaultOptions())
	rep := &recordingReporter{}
	c.SetReporter(rep)
	c.BeginGesture("A", Resizing)

	three := canvas.Batch{
		canvas.PositionOnly{ID: "A", X: 183, Y: 300},
		canvas.DimensionOnly{ID: "A", Width: canvas.Float(10)},
		canvas.PositionAndDimension{ID: "A", X: 1, Y: 1},
	}
	if out := c.Resolve(three); len(out) != 3 || &out[0] != &three[0] {
		t.Fatalf("malformed batch must be returned unmodified, got %v", out)
	}

	missing := canvas.Batch{canvas.PositionOnly{ID: "nope", X: 1, Y: 1}}
	if out := c.Resolve(missing); out[0] != missing[0] {
		t.Fatalf("unknown object must pass through, got %v", out)
	}

	b.SetViewport(canvas.Viewport{Width: 800, Height: 600, Zoom: 0})
	drag := canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}}
	if out := c.Resolve(drag); out[0] != drag[0] {
		t.Fatalf("degenerate viewport must pass through, got %v", out)
	}

	d := c.Diagnostics()
	if d.MalformedBatch != 1 || d.MissingGeometry != 1 || d.DegenerateViewport != 1 || d.Fallbacks() != 3 {
		t.Fatalf("unexpected counters %+v", d)
	}
	want := []string{ReasonMalformedBatch, ReasonMissingGeometry, ReasonDegenerateViewport}
	if len(rep.reasons) != len(want) {
		t.Fatalf("reported %v", rep.reasons)
	}
	for i := range want {
		if rep.reasons[i] != want[i] {
			t.Fatalf("reason %d = %q, want %q", i, rep.reasons[i], want[i])
		}
	}
}

func TestControllerViewportCulling(t *testing.T) {
	b := canvas.NewBoard(rect("A", "", 0, 0, 50, 50), rect("O", "", 500, 0, 50, 50))
	b.SetViewport(canvas.Viewport{Width: 200, Height: 200, Zoom: 1})
	c := NewController(b, DefaultOptions())
	c.BeginGesture("A", Dragging)
	in := canvas.Batch{canvas.PositionOnly{ID: "A", X: 448, Y: 100}}
	if out := c.Resolve(in); out[0] != in[0] {
		t.Fatalf("off-screen object must not attract, got %v", out)
	}
	b.SetViewport(canvas.Viewport{Width: 1000, Height: 200, Zoom: 1})
	if out := c.Resolve(in); out[0].(canvas.PositionOnly).X != 450 {
		t.Fatalf("visible object should attract, got %v", out)
	}
}

func TestControllerDegradedHost(t *testing.T) {
	b := canvas.NewBoard(
		rect("G", "", 100, 50, 500, 500),
		rect("C", "G", 10, 10, 40, 40),
		rect("T", "", 300, 400, 50, 50),
	)
	c := NewController(localHost{b}, DefaultOptions())
	if c.Diagnostics().DegradedObjects != 1 {
		t.Fatalf("expected one degraded object, got %+v", c.Diagnostics())
	}
	c.BeginGesture("C", Dragging)
	out := c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "C", X: 298, Y: 200}})
	if out[0].(canvas.PositionOnly).X != 300 {
		t.Fatalf("local geometry should snap to T's left edge, got %v", out)
	}
}

func TestControllerSessionResetsPerGesture(t *testing.T) {
	c := NewController(scenarioBoard(), DefaultOptions())
	c.BeginGesture("A", Dragging)
	c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}})
	if c.session.Last(Vertical) != "B/left" {
		t.Fatalf("session should remember B/left, has %q", c.session.Last(Vertical))
	}
	c.BeginGesture("A", Dragging)
	if c.session.Last(Vertical) != "" {
		t.Fatalf("new gesture should start with an empty session")
	}
	c.Resolve(canvas.Batch{canvas.PositionOnly{ID: "A", X: 183, Y: 300}})
	c.Rebuild()
	if c.session.Last(Vertical) != "" {
		t.Fatalf("rebuild should drop hysteresis memory")
	}
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Dragging.String() != "dragging" || Resizing.String() != "resizing" {
		t.Fatalf("unexpected state names")
	}
	if GestureResizeTopLeft.String() != "resize-top-left" || Vertical.String() != "vertical" {
		t.Fatalf("unexpected gesture/orientation names")
	}
}
