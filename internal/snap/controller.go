/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"log/slog"

	"canvassnap/internal/canvas"
	applog "canvassnap/internal/log"
)

// Host is the canvas the controller serves.
type Host interface {
	Objects() []canvas.Object
	Object(id string) (canvas.Object, bool)
	Viewport() canvas.Viewport
}

// State is the controller's gesture state.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	}
	return "idle"
}

// DisplayGuide describes a matched line for an overlay renderer.
type DisplayGuide struct {
	Orientation Orientation
	Position    float64
	Anchor      string
	OwnerID     string
	Color       canvas.Color
	// Dashed is set for center anchors.
	Dashed bool
}

// Controller wires the engine to a host: it rebuilds the index at settlement
// checkpoints, resolves pending changes and keeps the guides to display.
// It is not safe for concurrent use; the host calls it from its event loop.
type Controller struct {
	host     Host
	geo      AbsoluteGeometry
	opts     Options
	index    *Index
	resolver *Resolver
	session  *Session
	state    State
	active   string
	shown    [2]*GuideLine
	diag     Diagnostics
	reporter Reporter
	log      *slog.Logger
}

// NewController creates a controller and builds the initial index. If host
// implements AbsoluteGeometry, nested objects are indexed in canvas coordinates.
func NewController(host Host, opts Options) *Controller {
	c := &Controller{
		host:    host,
		opts:    opts.normalized(),
		session: NewSession(""),
		log:     applog.WithComponent("snap"),
	}
	if geo, ok := host.(AbsoluteGeometry); ok {
		c.geo = geo
	}
	c.Rebuild()
	return c
}

// SetReporter installs a fallback reporter; nil disables reporting.
func (c *Controller) SetReporter(r Reporter) { c.reporter = r }

// Options returns the effective tuning.
func (c *Controller) Options() Options { return c.opts }

// Rebuild re-reads every object from the host and replaces the index. It also
// starts a fresh session, so no hysteresis memory survives a rebuild.
func (c *Controller) Rebuild() BuildStats {
	lines, stats := BuildGuideLines(c.host.Objects(), c.geo)
	c.index = NewIndex(lines)
	c.resolver = NewResolver(c.index, c.opts)
	c.session = NewSession(c.active)
	c.diag.Rebuilds++
	c.diag.Lines = stats.Lines
	c.diag.DegradedObjects = stats.Degraded
	l := applog.WithOperation(c.log, "rebuild")
	if stats.Degraded > 0 {
		l.Debug("index rebuilt with local geometry for nested objects", slog.Int("degraded", stats.Degraded))
	}
	l.Debug("index rebuilt", slog.Int("objects", stats.Objects), slog.Int("lines", stats.Lines))
	return stats
}

// BeginGesture enters the dragging or resizing state for an object and starts
// a fresh session.
func (c *Controller) BeginGesture(id string, s State) {
	if s == Idle {
		s = Dragging
	}
	c.state = s
	c.active = id
	c.session = NewSession(id)
	c.shown = [2]*GuideLine{}
}

// EndGesture returns to idle after the host committed the final geometry and
// rebuilds the index so later gestures see the moved object.
func (c *Controller) EndGesture() {
	c.state = Idle
	c.active = ""
	c.shown = [2]*GuideLine{}
	c.Rebuild()
}

// CancelGesture returns to idle without a rebuild, e.g. after pointer capture
// was lost. The next gesture or rebuild supersedes the session.
func (c *Controller) CancelGesture() {
	c.state = Idle
	c.active = ""
	c.shown = [2]*GuideLine{}
}

// State returns the gesture state.
func (c *Controller) State() State { return c.state }

// ActiveObject returns the id of the object being manipulated, "" when idle.
func (c *Controller) ActiveObject() string { return c.active }

// Resolve snaps a pending batch. It returns the rewritten batch, or batch
// itself when nothing snapped or the batch could not be handled.
func (c *Controller) Resolve(batch canvas.Batch) canvas.Batch {
	c.diag.Resolves++
	res, err := c.resolve(batch)
	if err != nil {
		reason := reasonFor(err)
		c.diag.count(reason)
		c.log.Debug("snap fallback", slog.String("reason", reason), slog.Any("err", err))
		if c.reporter != nil {
			c.reporter.ReportFallback(reason)
		}
		c.show(nil, "")
		return batch
	}
	c.show(&res, res.Change.ObjectID())
	if !res.Snapped() {
		return batch
	}
	c.diag.Snapped++
	return canvas.Batch{res.Change}
}

func (c *Controller) resolve(batch canvas.Batch) (Resolution, error) {
	change, _, err := classify(batch)
	if err != nil {
		return Resolution{}, err
	}
	obj, ok := c.host.Object(change.ObjectID())
	if !ok {
		return Resolution{}, ErrMissingGeometry
	}
	// An unresolvable parent degrades to local geometry like the builder does.
	off, _ := parentOffset(obj, c.geo)
	viewport, ok := c.host.Viewport().WorldBox()
	if !ok {
		return Resolution{}, ErrDegenerateViewport
	}
	c.session.bind(obj.ID)
	return c.resolver.Resolve(batch, Target{Object: obj, ParentOffset: off}, c.session, viewport)
}

// show updates the displayed guides, only while a gesture on id is in progress.
func (c *Controller) show(res *Resolution, id string) {
	if c.state == Idle || (id != "" && id != c.active) {
		return
	}
	c.shown = [2]*GuideLine{}
	if res == nil {
		return
	}
	if m := res.Horizontal; m != nil {
		l := m.Line
		c.shown[Horizontal] = &l
	}
	if m := res.Vertical; m != nil {
		l := m.Line
		c.shown[Vertical] = &l
	}
}

// Guides returns copies of the currently displayed horizontal and vertical lines.
func (c *Controller) Guides() (horizontal, vertical *GuideLine) {
	return copyLine(c.shown[Horizontal]), copyLine(c.shown[Vertical])
}

// DisplayGuides returns render descriptors for the displayed lines.
func (c *Controller) DisplayGuides() []DisplayGuide {
	var out []DisplayGuide
	for _, l := range c.shown {
		if l == nil {
			continue
		}
		a, _ := AnchorByName(l.Anchor)
		out = append(out, DisplayGuide{
			Orientation: l.Orientation,
			Position:    l.Position,
			Anchor:      l.Anchor,
			OwnerID:     l.OwnerID,
			Color:       l.Color,
			Dashed:      a.Center,
		})
	}
	return out
}

// Diagnostics returns the controller's counters.
func (c *Controller) Diagnostics() Diagnostics { return c.diag }

func copyLine(l *GuideLine) *GuideLine {
	if l == nil {
		return nil
	}
	cp := *l
	return &cp
}
