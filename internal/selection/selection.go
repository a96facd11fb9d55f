/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package selection

import (
	"uidesigner/internal/domain"
	"uidesigner/internal/geom"
	"uidesigner/internal/registry"
)

// Marquee is a rubber-band rectangle spanned by an anchor corner and a moving corner.
type Marquee struct {
	x1, y1 int
	x2, y2 int
	active bool
}

// Begin anchors a new marquee at (x, y). It is not active until extended.
func (m *Marquee) Begin(x, y int) {
	*m = Marquee{x1: x, y1: y, x2: x, y2: y}
}

// Extend moves the free corner and activates the marquee.
func (m *Marquee) Extend(x, y int) {
	m.x2, m.y2 = x, y
	m.active = true
}

// Translate moves the whole marquee.
func (m *Marquee) Translate(dx, dy int) {
	m.x1 += dx
	m.x2 += dx
	m.y1 += dy
	m.y2 += dy
}

// Rect returns the normalized rectangle.
func (m Marquee) Rect() domain.Rect { return geom.Normalize(m.x1, m.y1, m.x2, m.y2) }

// Active reports whether the marquee spans a selection.
func (m Marquee) Active() bool { return m.active }

// Contains applies the exclusive containment test against the normalized rect.
func (m Marquee) Contains(x, y int) bool {
	return m.active && geom.Inside(m.Rect(), x, y)
}

func (m *Marquee) Reset() { *m = Marquee{} }

// Selection is the ephemeral editing focus: one active control, an optional
// marquee, and the working set captured when a group drag starts.
type Selection struct {
	Active  registry.ID
	Marquee Marquee
	members []registry.ID
}

// Capture records every top-level control whose confirmed origin lies inside the marquee.
func (s *Selection) Capture(reg *registry.Registry) []registry.ID {
	s.members = s.members[:0]
	if !s.Marquee.Active() {
		return nil
	}
	for _, id := range reg.TopLevel() {
		c, ok := reg.Get(id)
		if ok && s.Marquee.Contains(c.Confirmed.X, c.Confirmed.Y) {
			s.members = append(s.members, id)
		}
	}
	return s.Members()
}

// Members returns the captured working set.
func (s *Selection) Members() []registry.ID { return append([]registry.ID(nil), s.members...) }

// Clear drops the active control, the marquee and the working set.
func (s *Selection) Clear() {
	s.Active = registry.ID{}
	s.Marquee.Reset()
	s.members = nil
}
