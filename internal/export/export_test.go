/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uidesigner/internal/domain"
	"uidesigner/internal/storage"
)

func sampleProject() domain.Project {
	p := domain.NewProject("Test Delay")
	p.Window = domain.Size{W: 300, H: 200}
	p.Controls = []domain.Control{
		{Kind: domain.Knob, Name: "Knob0", Label: "Time", PortIndex: 0, Geometry: domain.Rect{X: 15, Y: 15, W: 60, H: 80}},
		{Kind: domain.TabBox, Name: "Tab1", PortIndex: -1, Geometry: domain.Rect{X: 120, Y: 15, W: 150, H: 150}, ActiveTab: 0,
			Children: []domain.Control{
				{Kind: domain.Tab, Name: "Tab2", Label: "Main", PortIndex: -1, Geometry: domain.Rect{X: 0, Y: 20, W: 150, H: 130},
					Children: []domain.Control{
						{Kind: domain.Button, Name: "Button3", Label: "Bypass", PortIndex: 1, Geometry: domain.Rect{X: 15, Y: 15, W: 60, H: 60}},
					}},
				{Kind: domain.Tab, Name: "Tab4", Label: "Extra", PortIndex: -1, Geometry: domain.Rect{X: 0, Y: 20, W: 150, H: 130},
					Children: []domain.Control{
						{Kind: domain.Label, Name: "Label5", Label: "Hidden&Seek", PortIndex: 2, Geometry: domain.Rect{X: 15, Y: 15, W: 60, H: 30}},
					}},
			}},
	}
	return p
}

func initSample(t *testing.T) (*storage.ProjectHandle, string) {
	t.Helper()
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleProject())
	if err != nil {
		t.Fatalf("init project: %v", err)
	}
	return ph, root
}

func TestWalkMarksInactiveTabsHidden(t *testing.T) {
	items := walk(sampleProject().Controls)
	if len(items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(items))
	}
	vis := map[string]bool{}
	for _, it := range items {
		vis[it.Path] = it.Visible
	}
	if !vis["/Tab1/Tab2/Button3"] {
		t.Fatalf("control on active tab should be visible")
	}
	if vis["/Tab1/Tab4"] || vis["/Tab1/Tab4/Label5"] {
		t.Fatalf("inactive tab should be hidden: %+v", vis)
	}
	if items[2].Depth != 2 {
		t.Fatalf("Button3 depth = %d", items[2].Depth)
	}
	if got := items[2].Abs; got != (domain.Rect{X: 135, Y: 50, W: 60, H: 60}) {
		t.Fatalf("Button3 window rect = %+v", got)
	}
}

func TestExportLayoutPDF_CreatesFile(t *testing.T) {
	ph, root := initSample(t)
	if err := ExportLayoutPDF(ph, "sheet.pdf", PDFOptions{GridStep: 15}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(root, "exports", "sheet.pdf"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
}

func TestExportLayoutPNG(t *testing.T) {
	ph, root := initSample(t)
	img, err := RenderLayoutImage(ph, PNGOptions{Scale: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 600 || b.Dy() != 400 {
		t.Fatalf("unexpected bounds %v", b)
	}
	// top-left corner of Knob0 is outlined in the control color
	if got := img.RGBAAt(30, 30); got != (Style{}).withDefaults().Control {
		t.Fatalf("knob outline missing, got %v", got)
	}
	out := filepath.Join(root, "out", "preview.png")
	if err := ExportLayoutPNG(ph, out, PNGOptions{}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	if st, err := os.Stat(out); err != nil || st.Size() == 0 {
		t.Fatalf("png missing or empty: %v", err)
	}
}

func TestRenderLayoutSVG(t *testing.T) {
	ph, _ := initSample(t)
	b, err := RenderLayoutSVG(ph, SVGOptions{Scale: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `viewBox="0 0 300 200"`) || !strings.Contains(s, `width="600px"`) {
		t.Fatalf("unexpected svg header: %s", s[:200])
	}
	if !strings.Contains(s, `id="Button3" data-kind="button" data-port="1"`) {
		t.Fatalf("button group missing")
	}
	if !strings.Contains(s, `<rect x="135" y="50" width="60" height="60"`) {
		t.Fatalf("button not drawn at its window position")
	}
	if strings.Contains(s, "Label5") {
		t.Fatalf("control on inactive tab exported")
	}
}

func TestExportRejectsNilHandle(t *testing.T) {
	if err := ExportLayoutSVG(nil, "x.svg", SVGOptions{}); err != ErrNoProject {
		t.Fatalf("expected ErrNoProject, got %v", err)
	}
}
