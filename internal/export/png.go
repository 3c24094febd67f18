/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"canvassnap/internal/snap"
)

// RenderPNG rasterizes the overlay at one pixel per screen unit.
func RenderPNG(ov Overlay, opt Options) (*image.RGBA, error) {
	w, h, err := ov.size()
	if err != nil {
		return nil, err
	}
	opt = opt.withDefaults()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: toRGBA(opt.Background)}, image.Point{}, draw.Src)

	for _, it := range ov.Items {
		b := ov.screenBox(it.Box)
		x0, y0 := int(math.Round(b.X)), int(math.Round(b.Y))
		x1, y1 := int(math.Round(b.X2))-1, int(math.Round(b.Y2))-1
		strokeRect(img, x0, y0, x1, y1, toRGBA(ov.stroke(it, opt)))
		if opt.Labels {
			drawLabel(img, it.ID, x0+3, y0+13, toRGBA(ov.stroke(it, opt)))
		}
	}

	dash := [2]int{max(1, int(opt.Dash[0])), max(1, int(opt.Dash[1]))}
	for _, g := range ov.Guides {
		pos := int(math.Round(ov.screenGuide(g)))
		col := toRGBA(g.Color)
		if g.Color.IsZero() {
			col = color.RGBA{R: 236, G: 72, B: 153, A: 255}
		}
		pattern := [2]int{}
		if g.Dashed {
			pattern = dash
		}
		if g.Orientation == snap.Vertical {
			vline(img, pos, 0, h-1, col, pattern)
			if opt.Labels {
				drawLabel(img, guideLabel(g), pos+3, h-4, col)
			}
		} else {
			hline(img, 0, w-1, pos, col, pattern)
			if opt.Labels {
				drawLabel(img, guideLabel(g), 3, pos-3, col)
			}
		}
	}
	return img, nil
}

// ExportOverlayPNG renders the overlay and writes it to path.
func ExportOverlayPNG(path string, ov Overlay, opt Options) error {
	img, err := RenderPNG(ov, opt)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// strokeRect draws a 1px rectangle border inclusive of endpoints, clipped to img.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	hline(img, x0, x1, y0, col, [2]int{})
	hline(img, x0, x1, y1, col, [2]int{})
	vline(img, x0, y0, y1, col, [2]int{})
	vline(img, x1, y0, y1, col, [2]int{})
}

// on reports whether step i of a line is painted; a zero pattern is solid.
func on(i int, pattern [2]int) bool {
	if pattern[0] <= 0 {
		return true
	}
	return i%(pattern[0]+pattern[1]) < pattern[0]
}

func hline(img *image.RGBA, x0, x1, y int, col color.RGBA, pattern [2]int) {
	r := img.Bounds()
	if y < r.Min.Y || y >= r.Max.Y {
		return
	}
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	for x := max(x0, r.Min.X); x <= min(x1, r.Max.X-1); x++ {
		if on(x-x0, pattern) {
			img.SetRGBA(x, y, col)
		}
	}
}

func vline(img *image.RGBA, x, y0, y1 int, col color.RGBA, pattern [2]int) {
	r := img.Bounds()
	if x < r.Min.X || x >= r.Max.X {
		return
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := max(y0, r.Min.Y); y <= min(y1, r.Max.Y-1); y++ {
		if on(y-y0, pattern) {
			img.SetRGBA(x, y, col)
		}
	}
}

// drawLabel writes text with its baseline at (x, y), shifted left to stay inside img.
func drawLabel(img *image.RGBA, text string, x, y int, col color.RGBA) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(col), Face: basicfont.Face7x13}
	if over := x + d.MeasureString(text).Ceil() - img.Bounds().Max.X; over > 0 {
		x -= over
	}
	d.Dot = fixed.P(max(x, 0), max(y, 13))
	d.DrawString(text)
}
