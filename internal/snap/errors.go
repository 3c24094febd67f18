/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"errors"
	"fmt"
)

// Fallback causes. None of them reaches the host: the controller passes the
// original batch through and counts the fallback.
var (
	// ErrMissingGeometry: the referenced object has no resolvable box.
	ErrMissingGeometry = errors.New("snap: missing geometry")
	// ErrMalformedChangeBatch: the batch is not one of the recognised gestures.
	ErrMalformedChangeBatch = errors.New("snap: malformed change batch")
	// ErrDegenerateViewport: the viewport is collapsed or not finite.
	ErrDegenerateViewport = errors.New("snap: degenerate viewport")
	// ErrDegenerateObject: the object or its proposed box has no area.
	ErrDegenerateObject = fmt.Errorf("%w: zero-area object", ErrMissingGeometry)
)

// Fallback reasons as reported to a Reporter.
const (
	ReasonMissingGeometry    = "missing_geometry"
	ReasonMalformedBatch     = "malformed_change_batch"
	ReasonDegenerateViewport = "degenerate_viewport"
)

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrMalformedChangeBatch):
		return ReasonMalformedBatch
	case errors.Is(err, ErrDegenerateViewport):
		return ReasonDegenerateViewport
	default:
		return ReasonMissingGeometry
	}
}

// Reporter receives fallbacks for diagnostics. Implementations must not block.
type Reporter interface {
	ReportFallback(reason string)
}

// Diagnostics are running counters of one controller.
type Diagnostics struct {
	Rebuilds int
	// Lines is the size of the current index.
	Lines int
	// DegradedObjects counts objects indexed with local geometry in the last rebuild.
	DegradedObjects int

	Resolves int
	Snapped  int

	MissingGeometry    int
	MalformedBatch     int
	DegenerateViewport int
}

// Fallbacks returns the total number of pass-through fallbacks.
func (d Diagnostics) Fallbacks() int {
	return d.MissingGeometry + d.MalformedBatch + d.DegenerateViewport
}

func (d *Diagnostics) count(reason string) {
	switch reason {
	case ReasonMalformedBatch:
		d.MalformedBatch++
	case ReasonDegenerateViewport:
		d.DegenerateViewport++
	default:
		d.MissingGeometry++
	}
}
