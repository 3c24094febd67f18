/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps per-object geometry history for the reference canvas host.
// A snapshot is taken when a gesture starts; a cancelled gesture restores it and
// a committed gesture can be reverted later.
package undo

import (
	"sync"
	"time"

	"canvassnap/internal/geom"
)

// Snapshot is the committed geometry of one object at a point in time.
type Snapshot struct {
	ObjectID string
	Position geom.Point
	Size     geom.Size
	TS       time.Time
}

// Config controls depth caps and coalescing behavior.
type Config struct {
	// MaxPerObject limits the number of snapshots kept per object (0 means unlimited).
	MaxPerObject int
	// MaxObjects caps how many objects carry history; the object with the oldest
	// history is dropped first.
	MaxObjects int
	// MinInterval coalesces snapshots pushed within the interval for the same object,
	// keeping the earlier one so a burst of commits undoes as a single step.
	MinInterval time.Duration
}

// Manager provides undo/redo stacks per object. It is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Snapshot
	redo map[string][]Snapshot
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxPerObject <= 0 {
		cfg.MaxPerObject = 64
	}
	if cfg.MaxObjects <= 0 {
		cfg.MaxObjects = 4096
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the geometry an object had before a change was committed.
// Clears the redo stack for that object.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.ObjectID]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 {
		if s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
			// Coalesce: the earlier snapshot already holds the state to return to.
			m.redo[s.ObjectID] = nil
			return
		}
	}
	m.undo[s.ObjectID] = append(stack, s)
	m.redo[s.ObjectID] = nil
	m.enforceCapsLocked(s.ObjectID)
}

// Undo pops the latest snapshot of the object. The caller passes the object's
// current geometry so Redo can return to it.
func (m *Manager) Undo(objectID string, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[objectID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[objectID] = stack[:len(stack)-1]
	current.ObjectID = objectID
	m.redo[objectID] = append(m.redo[objectID], current)
	return s, true
}

// Redo pops from redo and pushes the given current geometry back to undo.
func (m *Manager) Redo(objectID string, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[objectID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[objectID] = r[:len(r)-1]
	current.ObjectID = objectID
	m.undo[objectID] = append(m.undo[objectID], current)
	m.enforceCapsLocked(objectID)
	return s, true
}

// Forget drops all history of an object, e.g. after it was removed.
func (m *Manager) Forget(objectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.undo, objectID)
	delete(m.redo, objectID)
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (objects int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return len(m.undo), totalSnapshots
}

func (m *Manager) enforceCapsLocked(objectID string) {
	if stack := m.undo[objectID]; len(stack) > m.cfg.MaxPerObject {
		toDrop := len(stack) - m.cfg.MaxPerObject
		m.undo[objectID] = append([]Snapshot{}, stack[toDrop:]...)
	}
	for len(m.undo) > m.cfg.MaxObjects {
		oldestID := ""
		var oldestTS time.Time
		for id, stack := range m.undo {
			if len(stack) == 0 {
				delete(m.undo, id)
				continue
			}
			if oldestID == "" || stack[0].TS.Before(oldestTS) {
				oldestID = id
				oldestTS = stack[0].TS
			}
		}
		if oldestID == "" {
			break
		}
		delete(m.undo, oldestID)
		delete(m.redo, oldestID)
	}
}
