/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene reads and writes scene files: a JSON document with the
// viewport, the objects of a board and optional scripted gestures used by the
// replay tool. Documents are validated against an embedded JSON Schema.
package scene

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gojsonschema "github.com/xeipuuv/gojsonschema"

	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
	"canvassnap/internal/snap"
)

// BackupsDirName holds the previous versions of a scene written by Save.
const BackupsDirName = ".canvassnap"

// Gesture kinds.
const (
	KindDrag     = "drag"
	KindResizeBR = "resize-br"
	KindResizeTL = "resize-tl"
)

// ErrInvalid wraps every schema or consistency problem of a scene document.
var ErrInvalid = errors.New("invalid scene")

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
})

type Scene struct {
	Version  int             `json:"version,omitempty"`
	Viewport canvas.Viewport `json:"viewport"`
	Objects  []Object        `json:"objects"`
	Gestures []Gesture       `json:"gestures,omitempty"`
}

type Object struct {
	ID       string  `json:"id,omitempty"`
	ParentID string  `json:"parentId,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Color    string  `json:"color,omitempty"`
}

// Gesture is a scripted drag or resize: every move is one pointer-move update.
type Gesture struct {
	Object string `json:"object"`
	Kind   string `json:"kind"`
	// Cancel ends the gesture without committing, as on pointer-capture loss.
	Cancel bool   `json:"cancel,omitempty"`
	Moves  []Move `json:"moves"`
}

// Move carries the proposed values; unset fields keep the current geometry.
type Move struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// Validate checks data against the scene schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile scene schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Parse validates and decodes a scene document. Objects without an id get a
// generated one; a missing viewport defaults to 1280x800 at zoom 1.
func Parse(data []byte) (*Scene, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var s Scene
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Viewport == (canvas.Viewport{}) {
		s.Viewport = canvas.Viewport{Width: 1280, Height: 800, Zoom: 1}
	} else if s.Viewport.Zoom == 0 {
		s.Viewport.Zoom = 1
	}
	seen := make(map[string]bool, len(s.Objects))
	for i := range s.Objects {
		if s.Objects[i].ID == "" {
			s.Objects[i].ID = uuid.NewString()
		}
		id := s.Objects[i].ID
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate object id %q", ErrInvalid, id)
		}
		seen[id] = true
	}
	for i, g := range s.Gestures {
		if !seen[g.Object] {
			return nil, fmt.Errorf("%w: gesture %d refers to unknown object %q", ErrInvalid, i, g.Object)
		}
	}
	return &s, nil
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes the scene transactionally: a timestamped backup of the previous
// file is kept under BackupsDirName, then a temp file is renamed over path.
func Save(path string, s *Scene) error {
	if s == nil {
		return errors.New("nil scene")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	data = append(data, '\n')
	dir := filepath.Dir(path)
	if _, statErr := os.Stat(path); statErr == nil {
		bdir := filepath.Join(dir, BackupsDirName)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := time.Now().Format("20060102-150405")
		old, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("backup current scene: %w", err)
		}
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if err := writeFileSync(bpath, old); err != nil {
			return fmt.Errorf("backup current scene: %w", err)
		}
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp scene: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace scene: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// BoardObjects converts the scene objects for a canvas.Board.
func (s *Scene) BoardObjects() []canvas.Object {
	out := make([]canvas.Object, 0, len(s.Objects))
	for _, o := range s.Objects {
		size := geom.Size{Width: o.Width, Height: o.Height}
		c, _ := ParseColor(o.Color)
		out = append(out, canvas.Object{
			ID:       o.ID,
			ParentID: o.ParentID,
			Position: geom.Point{X: o.X, Y: o.Y},
			Size:     &size,
			Measured: size,
			Color:    c,
		})
	}
	return out
}

// FromBoard captures the board state as a scene without gestures.
func FromBoard(objs []canvas.Object, vp canvas.Viewport) *Scene {
	s := &Scene{Version: 1, Viewport: vp, Objects: make([]Object, 0, len(objs))}
	for _, o := range objs {
		d := o.Dimensions()
		s.Objects = append(s.Objects, Object{
			ID: o.ID, ParentID: o.ParentID,
			X: o.Position.X, Y: o.Position.Y,
			Width: d.Width, Height: d.Height,
			Color: FormatColor(o.Color),
		})
	}
	return s
}

// State maps the gesture kind to the controller state.
func (g Gesture) State() snap.State {
	if g.Kind == KindDrag {
		return snap.Dragging
	}
	return snap.Resizing
}

// Change builds the pending change for one move of g applied to cur.
func (g Gesture) Change(cur canvas.Object, m Move) (canvas.Change, error) {
	x, y := cur.Position.X, cur.Position.Y
	if m.X != nil {
		x = *m.X
	}
	if m.Y != nil {
		y = *m.Y
	}
	switch g.Kind {
	case KindDrag:
		return canvas.PositionOnly{ID: cur.ID, X: x, Y: y}, nil
	case KindResizeBR:
		return canvas.DimensionOnly{ID: cur.ID, Width: m.Width, Height: m.Height}, nil
	case KindResizeTL:
		return canvas.PositionAndDimension{ID: cur.ID, X: x, Y: y, Width: m.Width, Height: m.Height}, nil
	}
	return nil, fmt.Errorf("%w: unknown gesture kind %q", ErrInvalid, g.Kind)
}

// ParseColor reads #rrggbb or #rrggbbaa. The empty string is the zero color.
func ParseColor(s string) (canvas.Color, error) {
	if s == "" {
		return canvas.Color{}, nil
	}
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return canvas.Color{}, fmt.Errorf("bad color %q", s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return canvas.Color{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return canvas.Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FormatColor is the inverse of ParseColor.
func FormatColor(c canvas.Color) string {
	if c.IsZero() {
		return ""
	}
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Autosave writes an emergency copy of s under BackupsDirName next to path and
// returns where it went. The scene file itself is left alone.
func Autosave(path string, s *Scene) (string, error) {
	if s == nil {
		return "", errors.New("nil scene")
	}
	dir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal scene: %w", err)
	}
	dst := filepath.Join(dir, filepath.Base(path)+".autosave")
	if err := writeFileSync(dst, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return dst, nil
}
