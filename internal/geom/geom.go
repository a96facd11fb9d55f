/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Integer window-space geometry for the layout canvas: grid snapping,
// containment and the resize grab band. Everything here is pure and
// deterministic so the drag state machine can be tested without a display.

import "uidesigner/internal/domain"

// MinLength is the smallest width or height a control may have.
const MinLength = 10

// GrabBand is the distance from the right/bottom edge inside which a press
// starts a resize instead of a move.
const GrabBand = 10

// floorDiv divides rounding towards negative infinity so cells stay aligned
// when a drag carries a control past the window origin.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// remainder reduces width to its remainder inside one grid cell.
// A width that is an exact multiple of the cell keeps one full cell.
func remainder(width, grid int) int {
	r := width
	for r > grid {
		r -= grid
	}
	return r
}

// Snap aligns a raw origin to the grid. X additionally receives the anchor
// offset selected by opt; Y is always the plain cell origin.
// Non-positive grid sizes leave the point untouched.
func Snap(rawX, rawY, width, gridW, gridH int, opt domain.SnapOption) (int, int) {
	if gridW <= 0 || gridH <= 0 {
		return rawX, rawY
	}
	x := floorDiv(rawX, gridW) * gridW
	y := floorDiv(rawY, gridH) * gridH
	switch opt {
	case domain.SnapCenter:
		r := remainder(width, gridW)
		if width > gridW {
			x += gridW - r/2
		} else {
			x += gridW - r*2
		}
	case domain.SnapRight:
		x += gridW - remainder(width, gridW)
	}
	return x, y
}

// Inside reports whether (x, y) lies strictly inside r. Points on any edge are outside.
func Inside(r domain.Rect, x, y int) bool {
	return x > r.X && x < r.X+r.W && y > r.Y && y < r.Y+r.H
}

// Normalize builds a rectangle with non-negative size from two arbitrary corners.
func Normalize(x1, y1, x2, y2 int) domain.Rect {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return domain.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Clamp floors a length at MinLength.
func Clamp(v int) int {
	if v < MinLength {
		return MinLength
	}
	return v
}

// Zone identifies where inside a control's bounds a pointer is.
type Zone int

const (
	Interior Zone = iota
	RightEdge
	BottomEdge
	Corner
)

func (z Zone) String() string {
	switch z {
	case RightEdge:
		return "right"
	case BottomEdge:
		return "bottom"
	case Corner:
		return "corner"
	default:
		return "interior"
	}
}

// EdgeZone classifies a control-local point against the grab band of a w×h control.
func EdgeZone(w, h, x, y int) Zone {
	right := x > w-GrabBand
	bottom := y > h-GrabBand
	switch {
	case right && bottom:
		return Corner
	case bottom:
		return BottomEdge
	case right:
		return RightEdge
	default:
		return Interior
	}
}

// Translate returns r moved by (dx, dy).
func Translate(r domain.Rect, dx, dy int) domain.Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Union returns the minimal rect containing both.
func Union(a, b domain.Rect) domain.Rect {
	minX, minY := min(a.X, b.X), min(a.Y, b.Y)
	maxX, maxY := max(a.X+a.W, b.X+b.W), max(a.Y+a.H, b.Y+b.H)
	return domain.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// LargerDelta returns whichever delta has the greater magnitude, dx on a tie.
func LargerDelta(dx, dy int) int {
	if abs(dy) > abs(dx) {
		return dy
	}
	return dx
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
