/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"
	"testing"

	"canvassnap/internal/geom"
)

func TestViewportWorldBox(t *testing.T) {
	v := Viewport{Width: 800, Height: 600, PanX: -100, PanY: 50, Zoom: 2}
	box, ok := v.WorldBox()
	if !ok {
		t.Fatalf("expected valid viewport")
	}
	want := geom.B(50, -25, 450, 275)
	if box != want {
		t.Fatalf("WorldBox = %+v, want %+v", box, want)
	}
}

func TestViewportDegenerate(t *testing.T) {
	cases := []Viewport{
		{Width: 0, Height: 600, Zoom: 1},
		{Width: 800, Height: 600, Zoom: 0},
		{Width: math.Inf(1), Height: 600, Zoom: 1},
		{Width: 800, Height: 600, PanX: math.NaN(), Zoom: 1},
	}
	for i, v := range cases {
		if _, ok := v.WorldBox(); ok {
			t.Fatalf("case %d: expected degenerate viewport", i)
		}
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{Width: 800, Height: 600, PanX: 40, PanY: -20, Zoom: 0.5}
	p := geom.Point{X: 123, Y: 456}
	if got := v.ToWorld(v.ToScreen(p)); got != p {
		t.Fatalf("round trip = %+v, want %+v", got, p)
	}
}

func TestChangeStrings(t *testing.T) {
	c := DimensionOnly{ID: "a", Height: Float(12.5)}
	if got := c.String(); got != "dimensions a width=- height=12.5" {
		t.Fatalf("String() = %q", got)
	}
	if got := (PositionOnly{ID: "b", X: 1, Y: 2}).String(); got != "position b x=1 y=2" {
		t.Fatalf("String() = %q", got)
	}
}
