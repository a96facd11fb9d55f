/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"uidesigner/internal/domain"
	"uidesigner/internal/layout"
	"uidesigner/internal/registry"
)

// Router turns raw pointer events on the canvas into editor calls, routed to
// the control under the pointer or to the empty canvas.
type Router struct {
	ed     *layout.Editor
	surf   *Surfaces
	target registry.ID // control under the press; zero for the canvas
	down   bool
}

func NewRouter(ed *layout.Editor, surf *Surfaces) *Router {
	return &Router{ed: ed, surf: surf}
}

// Down handles a button press at window coordinates.
func (r *Router) Down(b layout.Button, x, y int) error {
	r.down = true
	r.target = registry.ID{}
	if _, armed := r.ed.Armed(); armed {
		// placement happens on release
		return nil
	}
	id, hit := r.surf.HitTest(x, y)
	if !hit {
		r.ed.CanvasPress(b, x, y)
		return nil
	}
	if sf, _ := r.surf.Get(id); sf.Kind == domain.TabBox && b == layout.ButtonPrimary {
		abs := r.surf.Abs(id)
		if i, ok := r.ed.TabAt(id, x-abs.X, y-abs.Y); ok {
			if err := r.ed.SelectTab(id, i); err != nil {
				return err
			}
		}
	}
	r.target = id
	return r.ed.Press(id, b, x, y)
}

// Move handles pointer motion, pressed or not.
func (r *Router) Move(x, y int) {
	switch {
	case r.down && !r.target.IsZero():
		r.ed.Motion(r.target, x, y)
	case r.down:
		r.ed.CanvasMotion(x, y, true)
	default:
		if _, armed := r.ed.Armed(); armed {
			r.ed.CanvasMotion(x, y, false)
			return
		}
		if id, ok := r.surf.HitTest(x, y); ok {
			r.ed.Motion(id, x, y)
		}
	}
}

// Up handles a button release. It returns the control placed by the release, if any.
func (r *Router) Up(b layout.Button, x, y int) (registry.ID, error) {
	t := r.target
	r.down = false
	r.target = registry.ID{}
	if kind, armed := r.ed.Armed(); armed && b == layout.ButtonPrimary {
		if id, ok := r.surf.HitTest(x, y); ok {
			if tab, ok := r.surf.enclosing(id, domain.Tab); ok {
				abs := r.surf.Abs(tab)
				sz := kind.DefaultSize()
				return r.ed.PlaceInTab(tab, kind, x-abs.X-sz.W/2, y-abs.Y-sz.H/2)
			}
		}
		return r.ed.CanvasRelease(b, x, y)
	}
	if !t.IsZero() {
		r.ed.Release(t, b, x, y)
		return registry.ID{}, nil
	}
	return r.ed.CanvasRelease(b, x, y)
}

// Pressed reports whether a button is held.
func (r *Router) Pressed() bool { return r.down }
