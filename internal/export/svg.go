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
	"fmt"
	"image/color"
	"os"

	"uidesigner/internal/storage"
	"uidesigner/internal/version"
)

// SVGOptions controls the vector preview. The viewBox is the window in
// layout units; Scale only sets the width/height attributes.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	Scale float64
	Style Style
}

// RenderLayoutSVG returns the SVG document for the project's window.
func RenderLayoutSVG(ph *storage.ProjectHandle, opt SVGOptions) ([]byte, error) {
	if ph == nil {
		return nil, ErrNoProject
	}
	st := opt.Style.withDefaults()
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	ww, wh := windowSize(ph.Project)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %d %d\">\n", float64(ww)*scale, float64(wh)*scale, ww, wh)
	wf("  <!-- uidesigner %s -->\n", escText(version.String()))
	wf("  <title>%s</title>\n", escText(ph.Project.Name))
	wf("  <rect x=\"0\" y=\"0\" width=\"%d\" height=\"%d\" fill=\"#ffffff\" stroke=\"%s\"/>\n", ww, wh, svgColor(st.Frame))

	for _, it := range walk(ph.Project.Controls) {
		if !it.Visible {
			continue
		}
		c := it.Control
		r := it.Abs
		if isContainer(c.Kind) {
			wf("  <rect id=\"%s\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"%s\" stroke-dasharray=\"3 2\"/>\n",
				escAttr(c.Name), r.X, r.Y, r.W, r.H, svgColor(st.Container))
			continue
		}
		wf("  <g id=\"%s\" data-kind=\"%s\" data-port=\"%s\">\n", escAttr(c.Name), c.Kind, portText(c))
		wf("    <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"%s\"/>\n", r.X, r.Y, r.W, r.H, svgColor(st.Control))
		wf("    <text x=\"%d\" y=\"%d\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"9\" fill=\"%s\">%s</text>\n",
			r.X+2, r.Y+10, svgColor(st.Caption), escText(caption(c)))
		wf("  </g>\n")
	}
	wf("</svg>\n")

	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

// ExportLayoutSVG renders the preview and writes it to outPath.
func ExportLayoutSVG(ph *storage.ProjectHandle, outPath string, opt SVGOptions) error {
	b, err := RenderLayoutSVG(ph, opt)
	if err != nil {
		return err
	}
	name, err := resolveOut(ph, outPath)
	if err != nil {
		return err
	}
	if err := os.WriteFile(name, b, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for control names
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
