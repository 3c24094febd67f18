//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	fcanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"canvassnap/internal/canvas"
	"canvassnap/internal/geom"
	"canvassnap/internal/snap"
)

var (
	colBackground = color.RGBA{R: 30, G: 30, B: 34, A: 255}
	colObject     = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	colStroke     = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	colSelected   = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	colGuide      = color.RGBA{R: 236, G: 72, B: 153, A: 255}
)

// BoardCanvas draws the board and forwards pointer input to an Editor.
// Dragging an object moves it, dragging a corner handle resizes it and
// dragging empty space pans. The wheel zooms around the pointer.
type BoardCanvas struct {
	widget.BaseWidget
	editor     *Editor
	showGuides bool
	panning    bool

	// OnChange runs after every update caused by input.
	OnChange func()
}

func NewBoardCanvas(e *Editor, showGuides bool) *BoardCanvas {
	c := &BoardCanvas{editor: e, showGuides: showGuides}
	c.ExtendBaseWidget(c)
	return c
}

func (c *BoardCanvas) Editor() *Editor { return c.editor }

func (c *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := fcanvas.NewRectangle(colBackground)
	r := &boardRenderer{bc: c, bg: bg}
	for i := range r.handles {
		h := fcanvas.NewRectangle(colSelected)
		h.Hide()
		r.handles[i] = h
	}
	for i := range r.guides {
		l := fcanvas.NewLine(colGuide)
		l.Hide()
		r.guides[i] = l
	}
	r.rebuildObjects()
	return r
}

func (c *BoardCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

// Resize keeps the board viewport in step with the widget size.
func (c *BoardCanvas) Resize(size fyne.Size) {
	c.editor.Resize(float64(size.Width), float64(size.Height))
	c.BaseWidget.Resize(size)
}

func point(p fyne.Position) geom.Point { return geom.Point{X: float64(p.X), Y: float64(p.Y)} }

func (c *BoardCanvas) Tapped(e *fyne.PointEvent) {
	vp := c.editor.Board().Viewport()
	id, _ := Pick(c.editor.Board(), vp, vp.ToWorld(point(e.Position)))
	c.editor.Select(id)
	if cv := fyne.CurrentApp().Driver().CanvasForObject(c); cv != nil {
		cv.Focus(c)
	}
	c.changed()
}

func (c *BoardCanvas) Dragged(e *fyne.DragEvent) {
	if !c.editor.Dragging() && !c.panning {
		start := fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY)
		if !c.editor.Press(point(start)) {
			c.panning = true
		}
	}
	if c.panning {
		c.editor.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
	} else {
		c.editor.Move(point(e.Position))
	}
	c.changed()
}

func (c *BoardCanvas) DragEnd() {
	if c.panning {
		c.panning = false
	} else {
		c.editor.Release()
	}
	c.changed()
}

// Scrolled zooms around the pointer. Fyne v2.6 does not report modifiers on
// scroll events, so the wheel always zooms.
func (c *BoardCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := 1 + float64(e.Scrolled.DY)*0.005
	if factor <= 0.5 {
		factor = 0.5
	}
	c.editor.Zoom(factor, point(e.Position))
	c.changed()
}

func (c *BoardCanvas) FocusGained()   {}
func (c *BoardCanvas) FocusLost()     {}
func (c *BoardCanvas) TypedRune(rune) {}

// TypedKey cancels a gesture in progress on Escape.
func (c *BoardCanvas) TypedKey(e *fyne.KeyEvent) {
	if e.Name == fyne.KeyEscape && c.editor.Dragging() {
		c.editor.Cancel()
		c.changed()
	}
}

func (c *BoardCanvas) changed() {
	c.Refresh()
	if c.OnChange != nil {
		c.OnChange()
	}
}

type boardRenderer struct {
	bc      *BoardCanvas
	bg      *fcanvas.Rectangle
	rects   []*fcanvas.Rectangle
	handles [2]*fcanvas.Rectangle
	guides  [2]*fcanvas.Line
	objects []fyne.CanvasObject
}

func (r *boardRenderer) Destroy()                     {}
func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) MinSize() fyne.Size           { return r.bc.MinSize() }
func (r *boardRenderer) Refresh()                     { r.Layout(r.bc.Size()); fcanvas.Refresh(r.bc) }

// rebuildObjects grows the rectangle pool and restores the draw order:
// background, objects, handles, guides.
func (r *boardRenderer) rebuildObjects() {
	need := len(r.bc.editor.Board().Objects())
	for len(r.rects) < need {
		rc := fcanvas.NewRectangle(colObject)
		rc.StrokeColor = colStroke
		rc.StrokeWidth = 1
		r.rects = append(r.rects, rc)
	}
	objs := make([]fyne.CanvasObject, 0, 1+len(r.rects)+len(r.handles)+len(r.guides))
	objs = append(objs, r.bg)
	for _, rc := range r.rects {
		objs = append(objs, rc)
	}
	for _, h := range r.handles {
		objs = append(objs, h)
	}
	for _, l := range r.guides {
		objs = append(objs, l)
	}
	r.objects = objs
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	ed := r.bc.editor
	b := ed.Board()
	vp := b.Viewport()
	objs := b.Objects()
	if len(objs) > len(r.rects) {
		r.rebuildObjects()
	}
	for i, o := range objs {
		rc := r.rects[i]
		box, ok := b.AbsoluteBox(o.ID)
		if !ok {
			box = o.LocalBox()
		}
		p0, p1 := screen(vp, box.Min()), screen(vp, box.Max())
		rc.Move(p0)
		rc.Resize(fyne.NewSize(p1.X-p0.X, p1.Y-p0.Y))
		rc.FillColor = fill(o.Color)
		rc.StrokeColor = colStroke
		rc.StrokeWidth = 1
		if o.ID == ed.Selected() {
			rc.StrokeColor = colSelected
			rc.StrokeWidth = 2
			r.placeHandles(p0, p1)
		}
		rc.Show()
		rc.Refresh()
	}
	for j := len(objs); j < len(r.rects); j++ {
		r.rects[j].Hide()
	}
	if _, ok := b.Object(ed.Selected()); !ok {
		for _, h := range r.handles {
			h.Hide()
		}
	}
	r.layoutGuides(size, vp)
}

func (r *boardRenderer) placeHandles(p0, p1 fyne.Position) {
	half := float32(HandleSize) / 2
	for i, p := range []fyne.Position{p0, p1} {
		h := r.handles[i]
		h.Resize(fyne.NewSize(HandleSize, HandleSize))
		h.Move(fyne.NewPos(p.X-half, p.Y-half))
		h.Show()
	}
}

func (r *boardRenderer) layoutGuides(size fyne.Size, vp canvas.Viewport) {
	for _, l := range r.guides {
		l.Hide()
	}
	if !r.bc.showGuides {
		return
	}
	for i, g := range r.bc.editor.Guides() {
		if i >= len(r.guides) {
			break
		}
		l := r.guides[i]
		l.StrokeColor = colGuide
		l.StrokeWidth = 1
		if g.Dashed {
			// Fyne lines have no dash pattern; center guides are drawn fainter.
			l.StrokeColor = color.RGBA{R: colGuide.R, G: colGuide.G, B: colGuide.B, A: 140}
		}
		if g.Orientation == snap.Vertical {
			x := screen(vp, geom.Point{X: g.Position}).X
			l.Position1 = fyne.NewPos(x, 0)
			l.Position2 = fyne.NewPos(x, size.Height)
		} else {
			y := screen(vp, geom.Point{Y: g.Position}).Y
			l.Position1 = fyne.NewPos(0, y)
			l.Position2 = fyne.NewPos(size.Width, y)
		}
		l.Show()
		l.Refresh()
	}
}

func screen(vp canvas.Viewport, p geom.Point) fyne.Position {
	s := vp.ToScreen(p)
	return fyne.NewPos(float32(s.X), float32(s.Y))
}

func fill(c canvas.Color) color.Color {
	if c.IsZero() {
		return colObject
	}
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
