/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a layout for review outside the designer: a PDF
// sheet with a control table, and PNG or SVG previews of the window.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"uidesigner/internal/domain"
	"uidesigner/internal/storage"
)

// ErrNoProject is returned when an exporter is handed a nil project handle.
var ErrNoProject = errors.New("project handle is nil")

// Style holds the colors shared by all exporters. Zero fields take defaults.
type Style struct {
	Frame     color.RGBA // window outline
	Control   color.RGBA
	Container color.RGBA // TabBox, Tab, Frame and ComboBox outlines
	Caption   color.RGBA
	Grid      color.RGBA
}

func (s Style) withDefaults() Style {
	if s.Frame == (color.RGBA{}) {
		s.Frame = color.RGBA{40, 40, 40, 255}
	}
	if s.Control == (color.RGBA{}) {
		s.Control = color.RGBA{0, 90, 200, 255}
	}
	if s.Container == (color.RGBA{}) {
		s.Container = color.RGBA{120, 120, 120, 255}
	}
	if s.Caption == (color.RGBA{}) {
		s.Caption = color.RGBA{0, 0, 0, 255}
	}
	if s.Grid == (color.RGBA{}) {
		s.Grid = color.RGBA{225, 225, 225, 255}
	}
	return s
}

// sheetItem is one control as drawn.
type sheetItem struct {
	Control domain.Control
	Abs     domain.Rect // geometry in window coordinates
	Path    string
	Depth   int
	Visible bool // false for controls on inactive tabs
}

// walk flattens the control tree depth first, resolving parent-relative
// geometry. Only the active tab of each TabBox is marked visible, the way
// the canvas shows it.
func walk(cs []domain.Control) []sheetItem {
	var out []sheetItem
	var rec func(cs []domain.Control, parent string, ox, oy, depth int, visible bool)
	rec = func(cs []domain.Control, parent string, ox, oy, depth int, visible bool) {
		for _, c := range cs {
			p := parent + "/" + c.Name
			abs := c.Geometry
			abs.X += ox
			abs.Y += oy
			out = append(out, sheetItem{Control: c, Abs: abs, Path: p, Depth: depth, Visible: visible})
			for i, ch := range c.Children {
				v := visible
				if c.Kind == domain.TabBox && i != c.ActiveTab {
					v = false
				}
				rec([]domain.Control{ch}, p, abs.X, abs.Y, depth+1, v)
			}
		}
	}
	rec(cs, "", 0, 0, 0, true)
	return out
}

func isContainer(k domain.Kind) bool {
	return k.Container() || k == domain.Frame
}

// caption is the text drawn inside a control's outline.
func caption(c domain.Control) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}

func portText(c domain.Control) string {
	if c.PortIndex < 0 || !c.Kind.Parameterized() {
		return "-"
	}
	return fmt.Sprint(c.PortIndex)
}

// resolveOut places relative paths under the project's exports folder and
// makes sure the parent directory exists.
func resolveOut(ph *storage.ProjectHandle, outPath string) (string, error) {
	if strings.TrimSpace(outPath) == "" {
		return "", errors.New("output path is empty")
	}
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, storage.ExportsDirName, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	return outPath, nil
}

func windowSize(p domain.Project) (int, int) {
	w, h := p.Window.W, p.Window.H
	if w <= 0 {
		w = 600
	}
	if h <= 0 {
		h = 400
	}
	return w, h
}
