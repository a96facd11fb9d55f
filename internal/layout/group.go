/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

// Broadcast edits. They exist only for the duration of one edit; after
// release every control is independent again.

import (
	"uidesigner/internal/domain"
	"uidesigner/internal/geom"
	"uidesigner/internal/registry"
)

// moveAllOfKind moves every control of kind by (dx, dy) from its confirmed
// origin, each snapped with its own anchor.
func (e *Editor) moveAllOfKind(kind domain.Kind, dx, dy int) {
	e.reg.ForEachOfKind(kind, func(id registry.ID, c *registry.Control) {
		e.apply(id, e.snapped(c, c.Confirmed.X+dx, c.Confirmed.Y+dy))
		e.drag.touch(id)
	})
}

// resizeAllOfKind gives every control of the active control's kind the size
// the active control ends up with. Tab pages of TabBoxes follow by the same delta.
func (e *Editor) resizeAllOfKind(active *registry.Control, dw, dh int) {
	w := geom.Clamp(active.Rect.W + dw)
	h := geom.Clamp(active.Rect.H + dh)
	e.reg.ForEachOfKind(active.Kind, func(id registry.ID, c *registry.Control) {
		e.resizeOne(id, c, w, h, dw, dh)
	})
}

// groupDrag is a marquee move in progress.
type groupDrag struct {
	active   bool
	grabX    int
	grabY    int
	origin   domain.Rect // marquee rect at grab time
	members  []registry.ID
	starts   []domain.Rect
	before   []byte
	recorded bool
}

// beginGroupMove captures the working set under the marquee.
func (e *Editor) beginGroupMove(x, y int) {
	members := e.sel.Capture(e.reg)
	g := groupDrag{
		active:  true,
		grabX:   x,
		grabY:   y,
		origin:  e.sel.Marquee.Rect(),
		members: members,
		before:  e.capture(),
	}
	for _, id := range members {
		c, _ := e.reg.Get(id)
		g.starts = append(g.starts, c.Confirmed)
	}
	e.group = g
}

// groupMotion moves the working set with the pointer. With grid snap the
// marquee footprint is snapped and members only move once it shifted by at
// least one cell.
func (e *Editor) groupMotion(x, y int) {
	g := &e.group
	cur := e.sel.Marquee.Rect()
	nx := g.origin.X + x - g.grabX
	ny := g.origin.Y + y - g.grabY
	if e.settings.GridSnap {
		gw, gh := e.settings.GridW, e.settings.GridH
		nx, ny = geom.Snap(nx, ny, g.origin.W, gw, gh, domain.SnapCenter)
		if abs(nx-cur.X) < gw && abs(ny-cur.Y) < gh {
			return
		}
	}
	if nx == cur.X && ny == cur.Y {
		return
	}
	if !g.recorded {
		e.record("group", g.before)
		g.recorded = true
	}
	e.sel.Marquee.Translate(nx-cur.X, ny-cur.Y)
	dx, dy := nx-g.origin.X, ny-g.origin.Y
	for i, id := range g.members {
		if _, ok := e.reg.Get(id); !ok {
			continue
		}
		e.apply(id, geom.Translate(g.starts[i], dx, dy))
	}
	e.sub.RedrawAll()
}

func (e *Editor) endGroupMove() {
	g := e.group
	e.group = groupDrag{}
	for _, id := range g.members {
		e.confirm(id)
	}
	if id, ok := e.Active(); ok {
		c, _ := e.reg.Get(id)
		e.fields.Reflect(c.Rect)
	}
	e.sub.RedrawAll()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
