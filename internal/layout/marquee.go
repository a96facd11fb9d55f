/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"uidesigner/internal/domain"
	"uidesigner/internal/registry"
)

// Canvas events are pointer events on empty canvas, outside every control.

// CanvasPress starts a marquee, or grabs the existing one when the press lands inside it.
func (e *Editor) CanvasPress(b Button, x, y int) {
	if b != ButtonPrimary || e.isArmed {
		return
	}
	if e.sel.Marquee.Contains(x, y) {
		e.beginGroupMove(x, y)
		return
	}
	e.sel.Marquee.Begin(x, y)
}

// CanvasMotion extends the marquee or moves the grabbed group. While a kind
// is armed it moves the placement preview instead.
func (e *Editor) CanvasMotion(x, y int, pressed bool) {
	if e.isArmed {
		sz := e.armed.DefaultSize()
		e.preview = domain.Rect{X: x - sz.W/2, Y: y - sz.H/2, W: sz.W, H: sz.H}
		e.sub.SetCursor(registry.ID{}, CursorPlace)
		e.sub.RedrawAll()
		return
	}
	if !pressed {
		return
	}
	if e.group.active {
		e.groupMotion(x, y)
		return
	}
	e.sel.Marquee.Extend(x, y)
	e.sub.RedrawAll()
}

// CanvasRelease places the armed kind, commits a group move, or closes the
// marquee. A secondary release clears the marquee and disarms the palette.
func (e *Editor) CanvasRelease(b Button, x, y int) (registry.ID, error) {
	if b == ButtonSecondary {
		e.sel.Marquee.Reset()
		e.Disarm()
		e.sub.RedrawAll()
		return registry.ID{}, nil
	}
	if e.isArmed {
		e.preview = domain.Rect{}
		return e.Place(e.armed, x, y)
	}
	if e.group.active {
		e.endGroupMove()
		return registry.ID{}, nil
	}
	if !e.sel.Marquee.Active() {
		e.sel.Marquee.Reset()
	}
	e.sub.RedrawAll()
	return registry.ID{}, nil
}

// MarqueeRect returns the normalized marquee, if one is shown.
func (e *Editor) MarqueeRect() (domain.Rect, bool) {
	return e.sel.Marquee.Rect(), e.sel.Marquee.Active()
}
