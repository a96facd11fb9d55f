/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"log/slog"

	"uidesigner/internal/domain"
	"uidesigner/internal/geom"
	"uidesigner/internal/registry"
)

// Mode is the edit a drag session performs.
type Mode int

const (
	ModeNone Mode = iota
	ModePosition
	ModeWidth
	ModeHeight
	ModeSize
)

func (m Mode) String() string {
	switch m {
	case ModePosition:
		return "position"
	case ModeWidth:
		return "width"
	case ModeHeight:
		return "height"
	case ModeSize:
		return "size"
	default:
		return "none"
	}
}

// session lives from a primary press on a control to its release.
type session struct {
	active       bool
	id           registry.ID
	mode         Mode
	startX       int
	startY       int
	lastX, lastY int
	before       []byte
	recorded     bool
	touched      map[registry.ID]struct{}
}

func (s *session) touch(id registry.ID) {
	if s.touched == nil {
		s.touched = map[registry.ID]struct{}{}
	}
	s.touched[id] = struct{}{}
}

// Mode returns the edit mode of the current drag session.
func (e *Editor) Mode() Mode { return e.drag.mode }

// modeFor resolves the edit mode from where in the control the press landed.
func (e *Editor) modeFor(z geom.Zone) Mode {
	switch z {
	case geom.Corner:
		return ModeSize
	case geom.BottomEdge:
		if e.settings.KeepAspect {
			return ModeSize
		}
		return ModeHeight
	case geom.RightEdge:
		if e.settings.KeepAspect {
			return ModeSize
		}
		return ModeWidth
	default:
		return ModePosition
	}
}

// owner maps structural children to the control the user actually manipulates.
func (e *Editor) owner(id registry.ID) registry.ID {
	c, ok := e.reg.Get(id)
	if ok && (c.Kind == domain.Tab || c.Kind == domain.ComboMenu) {
		return e.reg.Parent(id)
	}
	return id
}

// Press starts a drag session on a control. x and y are window coordinates.
// A secondary press only activates the control for its context menu.
func (e *Editor) Press(id registry.ID, b Button, x, y int) error {
	if e.drag.active && b != ButtonPrimary {
		return nil
	}
	id = e.owner(id)
	c, ok := e.reg.Get(id)
	if !ok {
		return registry.ErrNotFound
	}
	if err := e.Activate(id); err != nil {
		return err
	}
	if b != ButtonPrimary {
		e.drag = session{}
		return nil
	}
	abs := e.absRect(id)
	mode := e.modeFor(geom.EdgeZone(c.Rect.W, c.Rect.H, x-abs.X, y-abs.Y))
	e.drag = session{
		active: true,
		id:     id,
		mode:   mode,
		startX: x, startY: y,
		lastX: x, lastY: y,
		before: e.capture(),
	}
	e.drag.touch(id)
	e.log.DebugContext(e.logCtx, "drag start", slog.String("name", c.Name), slog.String("mode", mode.String()))
	return nil
}

// Motion handles pointer movement over a control. Without an active session
// it only updates the cursor affordance.
func (e *Editor) Motion(id registry.ID, x, y int) {
	if !e.drag.active {
		e.hover(e.owner(id), x, y)
		return
	}
	s := &e.drag
	c, ok := e.reg.Get(s.id)
	if !ok {
		e.drag = session{}
		return
	}
	if !s.recorded {
		e.record("drag", s.before)
		s.recorded = true
	}
	dx, dy := x-s.lastX, y-s.lastY
	switch s.mode {
	case ModePosition:
		e.dragPosition(s.id, c, x-s.startX, y-s.startY)
	case ModeWidth:
		e.resize(s.id, c, dx, 0)
		e.fields.W.Set(c.Rect.W)
	case ModeHeight:
		e.resize(s.id, c, 0, dy)
		e.fields.H.Set(c.Rect.H)
	case ModeSize:
		v := geom.LargerDelta(dx, dy)
		e.resize(s.id, c, v, v)
		e.fields.W.Set(c.Rect.W)
		e.fields.H.Set(c.Rect.H)
	}
	s.lastX, s.lastY = x, y
}

func (e *Editor) dragPosition(id registry.ID, c *registry.Control, dx, dy int) {
	if e.settings.MoveAll {
		e.moveAllOfKind(c.Kind, dx, dy)
	} else {
		e.apply(id, e.snapped(c, c.Confirmed.X+dx, c.Confirmed.Y+dy))
	}
	e.fields.X.Set(c.Rect.X)
	e.fields.Y.Set(c.Rect.Y)
}

// snapped returns c's geometry moved to (x, y), grid-aligned when snapping is on.
func (e *Editor) snapped(c *registry.Control, x, y int) domain.Rect {
	r := c.Rect
	if e.settings.GridSnap {
		x, y = geom.Snap(x, y, r.W, e.settings.GridW, e.settings.GridH, c.SnapOption)
	}
	r.X, r.Y = x, y
	return r
}

// resize grows the control by (dw, dh), or every control of its kind when
// resize-all is on. Tab pages follow their TabBox.
func (e *Editor) resize(id registry.ID, c *registry.Control, dw, dh int) {
	if dw == 0 && dh == 0 {
		return
	}
	if e.settings.ResizeAll {
		e.resizeAllOfKind(c, dw, dh)
		return
	}
	e.resizeOne(id, c, geom.Clamp(c.Rect.W+dw), geom.Clamp(c.Rect.H+dh), dw, dh)
}

func (e *Editor) resizeOne(id registry.ID, c *registry.Control, w, h, dw, dh int) {
	r := c.Rect
	r.W, r.H = w, h
	e.apply(id, r)
	e.drag.touch(id)
	if c.Kind == domain.TabBox {
		for _, tab := range e.reg.Children(id) {
			tc, ok := e.reg.Get(tab)
			if !ok {
				continue
			}
			tr := tc.Rect
			tr.W = geom.Clamp(tr.W + dw)
			tr.H = geom.Clamp(tr.H + dh)
			e.apply(tab, tr)
		}
	}
}

// hover updates the resize affordance, only when it changes.
func (e *Editor) hover(id registry.ID, x, y int) {
	c, ok := e.reg.Get(id)
	if !ok {
		return
	}
	abs := e.absRect(id)
	var cur Cursor
	switch geom.EdgeZone(c.Rect.W, c.Rect.H, x-abs.X, y-abs.Y) {
	case geom.Corner:
		cur = CursorCorner
	case geom.BottomEdge:
		cur = CursorBottom
	case geom.RightEdge:
		cur = CursorRight
	default:
		cur = CursorHand
	}
	if cur == e.cursor && id == e.cursorOn {
		return
	}
	e.cursor, e.cursorOn = cur, id
	e.sub.SetCursor(id, cur)
}

// Release ends the drag session and confirms the geometry of every control it touched.
func (e *Editor) Release(id registry.ID, b Button, x, y int) {
	if !e.drag.active {
		return
	}
	if b != ButtonPrimary {
		return
	}
	s := e.drag
	e.drag = session{}
	for t := range s.touched {
		e.confirm(t)
	}
	if c, ok := e.reg.Get(s.id); ok {
		if c.Kind == domain.TabBox {
			e.DrawTabBox(s.id)
		}
		e.fields.Reflect(c.Rect)
		if s.recorded {
			e.log.DebugContext(e.logCtx, "drag committed", slog.String("name", c.Name), slog.String("mode", s.mode.String()),
				slog.Int("x", c.Rect.X), slog.Int("y", c.Rect.Y), slog.Int("w", c.Rect.W), slog.Int("h", c.Rect.H))
		}
	}
	e.sub.RedrawAll()
}
