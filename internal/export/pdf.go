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
	"image/color"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"uidesigner/internal/storage"
	"uidesigner/internal/version"
)

// PDFOptions controls the layout sheet.
//
// The first page shows the window at 1pt per layout unit, surrounded by Margin.
// Unless OmitTable is set a second page lists every control with its kind,
// geometry and port.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	Margin    float64 // pt; 36 when zero
	GridStep  int     // when > 0 draws the snap grid with this spacing
	OmitTable bool
	Style     Style
}

// ExportLayoutPDF writes a layout sheet for the project to outPath. Relative
// paths are placed under the project's exports folder.
func ExportLayoutPDF(ph *storage.ProjectHandle, outPath string, opt PDFOptions) error {
	if ph == nil {
		return ErrNoProject
	}
	st := opt.Style.withDefaults()
	margin := opt.Margin
	if margin <= 0 {
		margin = 36
	}
	ww, wh := windowSize(ph.Project)
	pageW := float64(ww) + 2*margin
	pageH := float64(wh) + 2*margin + 24 // title line

	// Use points for 1:1 mapping from layout units to PDF
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(ph.Project.Name+" layout", false)
	if ph.Project.Metadata.Author != "" {
		pdf.SetAuthor(ph.Project.Metadata.Author, false)
	}
	pdf.SetCreator("uidesigner "+version.String(), false)
	pdf.SetAutoPageBreak(false, 0)

	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})
	pdf.SetFont("Helvetica", "B", 12)
	setTextColor(pdf, st.Caption)
	pdf.Text(margin, margin, fmt.Sprintf("%s (%dx%d)", ph.Project.Name, ww, wh))

	ox, oy := margin, margin+24
	if opt.GridStep > 0 {
		setDrawColor(pdf, st.Grid)
		pdf.SetLineWidth(0.2)
		for x := opt.GridStep; x < ww; x += opt.GridStep {
			pdf.Line(ox+float64(x), oy, ox+float64(x), oy+float64(wh))
		}
		for y := opt.GridStep; y < wh; y += opt.GridStep {
			pdf.Line(ox, oy+float64(y), ox+float64(ww), oy+float64(y))
		}
	}
	setDrawColor(pdf, st.Frame)
	pdf.SetLineWidth(1)
	pdf.Rect(ox, oy, float64(ww), float64(wh), "D")

	items := walk(ph.Project.Controls)
	pdf.SetFont("Helvetica", "", 8)
	for _, it := range items {
		if !it.Visible {
			continue
		}
		c := it.Control
		r := it.Abs
		if isContainer(c.Kind) {
			setDrawColor(pdf, st.Container)
			pdf.SetDashPattern([]float64{3, 2}, 0)
		} else {
			setDrawColor(pdf, st.Control)
			pdf.SetDashPattern([]float64{}, 0)
		}
		pdf.SetLineWidth(0.6)
		pdf.Rect(ox+float64(r.X), oy+float64(r.Y), float64(r.W), float64(r.H), "D")
		// Tab pages share their box with the TabBox, so only leaf captions are drawn.
		if !isContainer(c.Kind) {
			pdf.Text(ox+float64(r.X)+2, oy+float64(r.Y)+9, caption(c))
		}
	}
	pdf.SetDashPattern([]float64{}, 0)

	if !opt.OmitTable {
		controlTable(pdf, items, margin)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	out, err := resolveOut(ph, outPath)
	if err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(out); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// controlTable lists the controls on an A4 page, continuing onto new pages as needed.
func controlTable(pdf *gofpdf.Fpdf, items []sheetItem, margin float64) {
	const rowH = 14.0
	cols := []struct {
		title string
		w     float64
	}{{"Control", 190}, {"Kind", 80}, {"Label", 110}, {"Geometry", 110}, {"Port", 40}}

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		for _, c := range cols {
			pdf.CellFormat(c.w, rowH, c.title, "B", 0, "L", false, 0, "")
		}
		pdf.Ln(rowH)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: 595, Ht: 842})
	pdf.SetXY(margin, margin)
	header()
	for _, it := range items {
		if pdf.GetY()+rowH > 842-margin {
			pdf.AddPageFormat("P", gofpdf.SizeType{Wd: 595, Ht: 842})
			pdf.SetXY(margin, margin)
			header()
		}
		c := it.Control
		r := it.Abs
		pdf.SetX(margin)
		row := []string{
			strings.Repeat("  ", it.Depth) + c.Name,
			c.Kind.String(),
			c.Label,
			fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.W, r.H),
			portText(c),
		}
		for i, v := range row {
			pdf.CellFormat(cols[i].w, rowH, v, "", 0, "L", false, 0, "")
		}
		pdf.Ln(rowH)
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
