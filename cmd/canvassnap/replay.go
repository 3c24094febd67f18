/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"canvassnap/internal/canvas"
	"canvassnap/internal/export"
	applog "canvassnap/internal/log"
	"canvassnap/internal/scene"
	"canvassnap/internal/snap"
)

// replayer feeds the gestures recorded in a scene file through a board and a
// snap controller, the way an interactive host would, and prints each step.
type replayer struct {
	out      io.Writer
	opts     snap.Options
	reporter snap.Reporter

	pngPath  string
	pdfPath  string
	savePath string
	labels   bool

	// board is the last board replayed; the crash handler autosaves it.
	board *canvas.Board
}

func (r *replayer) run(path string) (snap.Diagnostics, error) {
	l := applog.WithOperation(applog.WithComponent("cli"), "replay").With(slog.String("scene", path))
	s, err := scene.Load(path)
	if err != nil {
		return snap.Diagnostics{}, err
	}
	b := canvas.NewBoard(s.BoardObjects()...)
	b.SetViewport(s.Viewport)
	r.board = b
	ctrl := snap.NewController(b, r.opts)
	if r.reporter != nil {
		ctrl.SetReporter(r.reporter)
	}
	l.Info("replaying", slog.Int("objects", len(s.Objects)), slog.Int("gestures", len(s.Gestures)))

	last := export.Capture(b, nil, "")
	for gi, g := range s.Gestures {
		fmt.Fprintf(r.out, "gesture %d: %s %s\n", gi+1, g.Kind, g.Object)
		if !b.BeginGesture(g.Object) {
			return ctrl.Diagnostics(), fmt.Errorf("gesture %d: unknown object %q", gi+1, g.Object)
		}
		ctrl.BeginGesture(g.Object, g.State())
		for mi, m := range g.Moves {
			cur, _ := b.Object(g.Object)
			change, err := g.Change(cur, m)
			if err != nil {
				return ctrl.Diagnostics(), fmt.Errorf("gesture %d move %d: %w", gi+1, mi+1, err)
			}
			applied := ctrl.Resolve(canvas.Batch{change})
			b.Apply(applied)
			guides := ctrl.DisplayGuides()
			fmt.Fprintf(r.out, "  move %d: %s -> %s%s\n", mi+1, change, describe(applied), describeGuides(guides))
			last = export.Capture(b, guides, g.Object)
		}
		if g.Cancel {
			b.CancelGesture(g.Object)
			ctrl.CancelGesture()
			fmt.Fprintf(r.out, "  cancelled\n")
		} else {
			b.CommitGesture(g.Object)
			ctrl.EndGesture()
		}
	}

	fmt.Fprintln(r.out, "final:")
	for _, o := range b.Objects() {
		box, ok := b.AbsoluteBox(o.ID)
		if !ok {
			box = o.LocalBox()
		}
		fmt.Fprintf(r.out, "  %s x=%g y=%g width=%g height=%g\n", o.ID, box.X, box.Y, box.Width(), box.Height())
	}
	d := ctrl.Diagnostics()
	fmt.Fprintf(r.out, "resolves=%d snapped=%d fallbacks=%d\n", d.Resolves, d.Snapped, d.Fallbacks())

	var errs []error
	if r.pngPath != "" {
		errs = append(errs, export.ExportOverlayPNG(r.pngPath, last, export.Options{Labels: r.labels}))
	}
	if r.pdfPath != "" {
		errs = append(errs, export.ExportOverlayPDF(r.pdfPath, last, export.Options{Labels: r.labels}))
	}
	if r.savePath != "" {
		errs = append(errs, scene.Save(r.savePath, scene.FromBoard(b.Objects(), b.Viewport())))
	}
	return d, errors.Join(errs...)
}

func describe(b canvas.Batch) string {
	parts := make([]string, 0, len(b))
	for _, c := range b {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "; ")
}

func describeGuides(gs []snap.DisplayGuide) string {
	if len(gs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(gs))
	for _, g := range gs {
		parts = append(parts, fmt.Sprintf("%s %s@%g (%s)", g.Orientation, g.Anchor, g.Position, g.OwnerID))
	}
	return "  [" + strings.Join(parts, ", ") + "]"
}
