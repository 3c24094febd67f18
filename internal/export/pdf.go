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

	"github.com/jung-kurt/gofpdf"

	"canvassnap/internal/canvas"
	"canvassnap/internal/snap"
	"canvassnap/internal/version"
)

// NewOverlayPDF lays the overlay out on a single page sized like the viewport,
// one point per screen unit with the origin at the top left.
func NewOverlayPDF(ov Overlay, opt Options) (*gofpdf.Fpdf, error) {
	w, h, err := ov.size()
	if err != nil {
		return nil, err
	}
	opt = opt.withDefaults()
	pw, ph := float64(w), float64(h)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: gofpdf.SizeType{Wd: pw, Ht: ph}})
	pdf.SetTitle("canvassnap overlay", false)
	pdf.SetCreator("canvassnap "+version.String(), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pw, Ht: ph})
	pdf.SetFont("Helvetica", "", 8)

	setFillColor(pdf, opt.Background)
	pdf.Rect(0, 0, pw, ph, "F")

	pdf.SetLineWidth(1)
	for _, it := range ov.Items {
		b := ov.screenBox(it.Box)
		c := ov.stroke(it, opt)
		setDrawColor(pdf, c)
		pdf.Rect(b.X, b.Y, b.Width(), b.Height(), "D")
		if opt.Labels {
			setTextColor(pdf, c)
			pdf.Text(b.X+3, b.Y+10, it.ID)
		}
	}

	pdf.SetLineWidth(0.75)
	for _, g := range ov.Guides {
		c := g.Color
		if c.IsZero() {
			c = canvas.Color{R: 236, G: 72, B: 153, A: 255}
		}
		setDrawColor(pdf, c)
		if g.Dashed {
			pdf.SetDashPattern([]float64{opt.Dash[0], opt.Dash[1]}, 0)
		} else {
			pdf.SetDashPattern([]float64{}, 0)
		}
		pos := ov.screenGuide(g)
		if g.Orientation == snap.Vertical {
			pdf.Line(pos, 0, pos, ph)
		} else {
			pdf.Line(0, pos, pw, pos)
		}
		if opt.Labels {
			setTextColor(pdf, c)
			if g.Orientation == snap.Vertical {
				pdf.Text(pos+3, ph-4, guideLabel(g))
			} else {
				pdf.Text(3, pos-3, guideLabel(g))
			}
		}
	}
	pdf.SetDashPattern([]float64{}, 0)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("build pdf: %w", err)
	}
	return pdf, nil
}

// ExportOverlayPDF writes the overlay to path as a one-page PDF.
func ExportOverlayPDF(path string, ov Overlay, opt Options) error {
	pdf, err := NewOverlayPDF(ov, opt)
	if err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c canvas.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c canvas.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c canvas.Color) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
