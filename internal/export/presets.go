/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"uidesigner/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	// PresetReview is the sheet handed to whoever wires the plugin: PDF with grid and table, plus a PNG.
	PresetReview PresetName = "review"
	// PresetWeb produces previews for a product page: SVG and a 2x PNG, no grid.
	PresetWeb PresetName = "web"
)

// BatchOptions controls batch export across several formats.
//
// Path semantics:
//   - If OutDir is empty or relative, it is created under <project>/exports/<preset>/.
//   - Files are named <stem>.<format>, where stem is the layout name in lower case.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset   PresetName
	Formats  []string // allowed: pdf, png, svg; empty means preset defaults
	GridStep int      // snap grid spacing for presets that draw it
	Scale    int      // when > 0 overrides the preset's raster scale
	OutDir   string
}

// BatchExport runs exports according to the given preset and returns the written paths.
func BatchExport(ph *storage.ProjectHandle, opt BatchOptions) ([]string, error) {
	if ph == nil {
		return nil, ErrNoProject
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
		if baseOut == "" {
			baseOut = string(PresetReview)
		}
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(ph.Root, storage.ExportsDirName, baseOut)
	}

	grid := 0
	if presetDrawsGrid(opt.Preset) {
		grid = opt.GridStep
	}
	scale := presetScale(opt.Preset)
	if opt.Scale > 0 {
		scale = opt.Scale
	}
	stem := fileStem(ph.Project.Name)

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out := filepath.Join(baseOut, stem+"."+f)
		var err error
		switch f {
		case "pdf":
			err = ExportLayoutPDF(ph, out, PDFOptions{GridStep: grid})
		case "png":
			err = ExportLayoutPNG(ph, out, PNGOptions{Scale: scale, GridStep: grid})
		case "svg":
			err = ExportLayoutSVG(ph, out, SVGOptions{Scale: float64(scale)})
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"svg", "png"}
	default:
		return []string{"pdf", "png"}
	}
}

func presetDrawsGrid(p PresetName) bool {
	return p != PresetWeb
}

func presetScale(p PresetName) int {
	if p == PresetWeb {
		return 2
	}
	return 1
}

// fileStem turns a layout name into a file name without extension.
func fileStem(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '-'
		default:
			return -1
		}
	}, s)
	if s == "" {
		return "layout"
	}
	return s
}
