/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap implements alignment-guide snapping for a 2D canvas.
//
// While one object is dragged or resized, the engine looks for edges and
// centers of the other objects near the object's own edges and centers, rewrites
// the pending change so the object lands exactly on the best candidate, and
// reports the matched guide lines for an overlay.
//
// Guide lines are built from the host's object list at settlement checkpoints
// (load, gesture end, objects added or removed) and kept in two sorted
// sequences, so a pointer move costs a binary search plus the candidates inside
// the snap radius. The package is single-threaded: one Controller per canvas,
// no package-level mutable state.
package snap

// Options tunes the matching. All distances are world-space canvas units, so
// snapping behaves the same at every zoom level.
type Options struct {
	// Radius is the maximum distance between a guide line and the moving anchor.
	Radius float64
	// HysteresisBuffer is the window in which candidates count as equally near;
	// inside it the previously matched line and then the closer object win.
	HysteresisBuffer float64
	// EdgePreference is the window in which an edge-to-edge pairing (bottom onto
	// top) beats a same-edge or center pairing. Zero disables the preference.
	EdgePreference float64
}

const (
	DefaultRadius           = 5
	DefaultHysteresisBuffer = 0.5
	DefaultEdgePreference   = 2
)

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{Radius: DefaultRadius, HysteresisBuffer: DefaultHysteresisBuffer, EdgePreference: DefaultEdgePreference}
}

func (o Options) normalized() Options {
	if o.Radius <= 0 {
		o.Radius = DefaultRadius
	}
	if o.HysteresisBuffer < 0 {
		o.HysteresisBuffer = 0
	}
	if o.EdgePreference < 0 {
		o.EdgePreference = 0
	}
	return o
}
