/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"canvassnap/internal/geom"
	applog "canvassnap/internal/log"
	"canvassnap/internal/undo"
)

// maxParentDepth bounds parent-chain walks so a malformed cycle cannot hang the host.
const maxParentDepth = 64

// Board is an in-memory canvas host. It owns the object list, composes
// absolute geometry through parent chains and commits pending changes.
// It is safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	objects []Object
	byID    map[string]int
	history *undo.Manager
	// geometry captured at gesture start, keyed by object id
	pending  map[string]undo.Snapshot
	viewport Viewport
	log      *slog.Logger
}

// NewBoard creates a board holding objs in the given order.
func NewBoard(objs ...Object) *Board {
	b := &Board{
		history:  undo.NewManager(undo.Config{}),
		pending:  make(map[string]undo.Snapshot),
		viewport: Viewport{Width: 1280, Height: 800, Zoom: 1},
		log:      applog.WithComponent("board"),
	}
	b.Replace(objs)
	return b
}

// Replace swaps the whole object list, e.g. after the scene file was reloaded.
// Objects without an id get a generated one.
func (b *Board) Replace(objs []Object) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects = make([]Object, 0, len(objs))
	b.byID = make(map[string]int, len(objs))
	for _, o := range objs {
		b.addLocked(o)
	}
	b.pending = make(map[string]undo.Snapshot)
}

// Add inserts an object and returns its id.
func (b *Board) Add(o Object) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addLocked(o)
}

func (b *Board) addLocked(o Object) string {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o = o.Clone()
	if i, ok := b.byID[o.ID]; ok {
		b.objects[i] = o
		return o.ID
	}
	b.byID[o.ID] = len(b.objects)
	b.objects = append(b.objects, o)
	return o.ID
}

// Remove deletes an object together with all of its descendants and returns
// how many objects were removed.
func (b *Board) Remove(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.byID[id]; !ok {
		return 0
	}
	doomed := map[string]bool{id: true}
	// descendants: repeat until no new child is found
	for changed := true; changed; {
		changed = false
		for _, o := range b.objects {
			if o.ParentID != "" && doomed[o.ParentID] && !doomed[o.ID] {
				doomed[o.ID] = true
				changed = true
			}
		}
	}
	kept := b.objects[:0]
	for _, o := range b.objects {
		if doomed[o.ID] {
			b.history.Forget(o.ID)
			delete(b.pending, o.ID)
			continue
		}
		kept = append(kept, o)
	}
	b.objects = kept
	b.reindexLocked()
	return len(doomed)
}

func (b *Board) reindexLocked() {
	b.byID = make(map[string]int, len(b.objects))
	for i, o := range b.objects {
		b.byID[o.ID] = i
	}
}

// Viewport returns the current viewport.
func (b *Board) Viewport() Viewport {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.viewport
}

// SetViewport replaces the viewport, e.g. after a pan, zoom or window resize.
func (b *Board) SetViewport(v Viewport) {
	b.mu.Lock()
	b.viewport = v
	b.mu.Unlock()
}

// Objects returns a copy of all objects in board order.
func (b *Board) Objects() []Object {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Object, len(b.objects))
	for i, o := range b.objects {
		out[i] = o.Clone()
	}
	return out
}

// Object looks up one object by id.
func (b *Board) Object(id string) (Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.byID[id]
	if !ok {
		return Object{}, false
	}
	return b.objects[i].Clone(), true
}

// AbsolutePosition composes the object's position through its parent chain.
// It fails for unknown ids, dangling parents and cycles.
func (b *Board) AbsolutePosition(id string) (geom.Point, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.absoluteLocked(id)
}

func (b *Board) absoluteLocked(id string) (geom.Point, bool) {
	var p geom.Point
	cur := id
	for depth := 0; cur != ""; depth++ {
		if depth > maxParentDepth {
			return geom.Point{}, false
		}
		i, ok := b.byID[cur]
		if !ok {
			return geom.Point{}, false
		}
		o := b.objects[i]
		p = p.Add(o.Position)
		cur = o.ParentID
	}
	return p, true
}

// AbsoluteBox returns the object's box in canvas coordinates.
func (b *Board) AbsoluteBox(id string) (geom.Box, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.absoluteLocked(id)
	if !ok {
		return geom.Box{}, false
	}
	return geom.BoxAt(p, b.objects[b.byID[id]].Dimensions()), true
}

// Apply commits a batch of changes and returns how many entries were applied.
// Unknown object ids are skipped.
func (b *Board) Apply(batch Batch) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	applied := 0
	for _, c := range batch {
		if c == nil {
			continue
		}
		i, ok := b.byID[c.ObjectID()]
		if !ok {
			b.log.Debug("apply skipped unknown object", slog.String("id", c.ObjectID()))
			continue
		}
		o := &b.objects[i]
		switch ch := c.(type) {
		case PositionOnly:
			o.Position = geom.Point{X: ch.X, Y: ch.Y}
		case DimensionOnly:
			o.Size = resized(o.Dimensions(), ch.Width, ch.Height)
		case PositionAndDimension:
			o.Position = geom.Point{X: ch.X, Y: ch.Y}
			o.Size = resized(o.Dimensions(), ch.Width, ch.Height)
		default:
			continue
		}
		applied++
	}
	return applied
}

func resized(cur geom.Size, w, h *float64) *geom.Size {
	s := cur
	if w != nil {
		s.Width = *w
	}
	if h != nil {
		s.Height = *h
	}
	return &s
}

// BeginGesture records the object's geometry so the gesture can be cancelled.
func (b *Board) BeginGesture(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.snapshotLocked(id)
	if ok {
		b.pending[id] = s
	}
	return ok
}

// CancelGesture restores the geometry recorded by BeginGesture.
func (b *Board) CancelGesture(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.pending[id]
	if !ok {
		return false
	}
	delete(b.pending, id)
	b.restoreLocked(s)
	return true
}

// CommitGesture keeps the current geometry and pushes the pre-gesture state to
// the undo history.
func (b *Board) CommitGesture(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.pending[id]
	if !ok {
		return false
	}
	delete(b.pending, id)
	s.TS = time.Now()
	b.history.Push(s)
	return true
}

// Undo reverts the last committed gesture of an object.
func (b *Board) Undo(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.snapshotLocked(id)
	if !ok {
		return false
	}
	s, ok := b.history.Undo(id, cur)
	if !ok {
		return false
	}
	b.restoreLocked(s)
	return true
}

// Redo re-applies a gesture reverted by Undo.
func (b *Board) Redo(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.snapshotLocked(id)
	if !ok {
		return false
	}
	s, ok := b.history.Redo(id, cur)
	if !ok {
		return false
	}
	b.restoreLocked(s)
	return true
}

func (b *Board) snapshotLocked(id string) (undo.Snapshot, bool) {
	i, ok := b.byID[id]
	if !ok {
		return undo.Snapshot{}, false
	}
	o := b.objects[i]
	return undo.Snapshot{ObjectID: id, Position: o.Position, Size: o.Dimensions(), TS: time.Now()}, true
}

func (b *Board) restoreLocked(s undo.Snapshot) {
	i, ok := b.byID[s.ObjectID]
	if !ok {
		return
	}
	size := s.Size
	b.objects[i].Position = s.Position
	b.objects[i].Size = &size
}
