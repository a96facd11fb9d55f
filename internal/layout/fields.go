/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"uidesigner/internal/geom"
	"uidesigner/internal/mirror"
	"uidesigner/internal/registry"
)

// Handlers for user edits in the numeric fields. Each runs once per edit,
// commits immediately and refreshes the other three fields.

func (e *Editor) fieldTarget() (registry.ID, *registry.Control, bool) {
	if e.Busy() {
		return registry.ID{}, nil, false
	}
	id, ok := e.Active()
	if !ok {
		return registry.ID{}, nil, false
	}
	c, _ := e.reg.Get(id)
	return id, c, true
}

func (e *Editor) onX(v int) {
	id, c, ok := e.fieldTarget()
	if !ok {
		return
	}
	e.record("x", e.capture())
	if e.settings.MoveAll {
		e.moveAllOfKind(c.Kind, v-c.Confirmed.X, 0)
	} else {
		r := c.Rect
		r.X = v
		e.apply(id, r)
		e.drag.touch(id)
	}
	e.commitField(mirror.X, id)
}

func (e *Editor) onY(v int) {
	id, c, ok := e.fieldTarget()
	if !ok {
		return
	}
	e.record("y", e.capture())
	if e.settings.MoveAll {
		e.moveAllOfKind(c.Kind, 0, v-c.Confirmed.Y)
	} else {
		r := c.Rect
		r.Y = v
		e.apply(id, r)
		e.drag.touch(id)
	}
	e.commitField(mirror.Y, id)
}

func (e *Editor) onWidth(v int) {
	id, c, ok := e.fieldTarget()
	if !ok {
		return
	}
	e.record("size", e.capture())
	if e.settings.KeepAspect {
		e.keepRatio(mirror.W, id, c, v-c.Rect.W)
	} else {
		e.resize(id, c, v-c.Rect.W, 0)
	}
	e.commitField(mirror.W, id)
}

func (e *Editor) onHeight(v int) {
	id, c, ok := e.fieldTarget()
	if !ok {
		return
	}
	e.record("size", e.capture())
	if e.settings.KeepAspect {
		e.keepRatio(mirror.H, id, c, v-c.Rect.H)
	} else {
		e.resize(id, c, 0, v-c.Rect.H)
	}
	e.commitField(mirror.H, id)
}

// keepRatio grows both dimensions by the same signed delta. The opposite
// field is written programmatically so its own handler does not run.
func (e *Editor) keepRatio(edited mirror.Axis, id registry.ID, c *registry.Control, d int) {
	if edited == mirror.W {
		e.fields.H.Set(e.fields.H.Value() + d)
	} else {
		e.fields.W.Set(e.fields.W.Value() + d)
	}
	if e.settings.ResizeAll {
		e.resizeAllOfKind(c, d, d)
		return
	}
	e.resizeOne(id, c, geom.Clamp(c.Rect.W+d), geom.Clamp(c.Rect.H+d), d, d)
}

// commitField confirms every control the edit touched and mirrors the result.
func (e *Editor) commitField(edited mirror.Axis, id registry.ID) {
	for t := range e.drag.touched {
		e.confirm(t)
	}
	e.drag.touched = nil
	if c, ok := e.reg.Get(id); ok {
		e.fields.ReflectExcept(edited, c.Rect)
	}
	e.sub.RedrawAll()
}
