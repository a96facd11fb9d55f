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
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"uidesigner/internal/storage"
)

// PNGOptions controls the raster preview.
// - Scale: integer pixel multiplier, 1 when zero
// - GridStep: when > 0 the snap grid is drawn first
// - NoCaptions: skip control names
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	Scale      int
	GridStep   int
	NoCaptions bool
	Style      Style
}

// RenderLayoutImage draws the project's window and visible controls.
func RenderLayoutImage(ph *storage.ProjectHandle, opt PNGOptions) (*image.RGBA, error) {
	if ph == nil {
		return nil, ErrNoProject
	}
	st := opt.Style.withDefaults()
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	ww, wh := windowSize(ph.Project)
	pixW, pixH := ww*scale, wh*scale

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	// Background white
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	if opt.GridStep > 0 {
		for x := opt.GridStep; x < ww; x += opt.GridStep {
			for y := 0; y < pixH; y++ {
				img.SetRGBA(x*scale, y, st.Grid)
			}
		}
		for y := opt.GridStep; y < wh; y += opt.GridStep {
			for x := 0; x < pixW; x++ {
				img.SetRGBA(x, y*scale, st.Grid)
			}
		}
	}
	strokeRect(img, 0, 0, pixW-1, pixH-1, st.Frame)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(st.Caption), Face: basicfont.Face7x13}
	for _, it := range walk(ph.Project.Controls) {
		if !it.Visible {
			continue
		}
		c := it.Control
		r := it.Abs
		x0, y0 := r.X*scale, r.Y*scale
		x1, y1 := x0+r.W*scale-1, y0+r.H*scale-1
		if isContainer(c.Kind) {
			strokeRect(img, x0, y0, x1, y1, st.Container)
			continue
		}
		strokeRect(img, x0, y0, x1, y1, st.Control)
		if !opt.NoCaptions {
			d.Dot = fixed.P(x0+3, y0+12)
			d.DrawString(clipCaption(caption(c), r.W*scale-4))
		}
	}
	return img, nil
}

// ExportLayoutPNG renders the preview and writes it to outPath.
func ExportLayoutPNG(ph *storage.ProjectHandle, outPath string, opt PNGOptions) error {
	img, err := RenderLayoutImage(ph, opt)
	if err != nil {
		return err
	}
	name, err := resolveOut(ph, outPath)
	if err != nil {
		return err
	}
	f, err := os.Create(name)
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

// clipCaption shortens s to what fits in px pixels of the 7px wide face.
func clipCaption(s string, px int) string {
	n := px / 7
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
