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

// Surface is the drawable stand-in for one control.
type Surface struct {
	ID      registry.ID
	Parent  registry.ID
	Kind    domain.Kind
	Rect    domain.Rect // parent-relative
	Visible bool
}

// Drawn is a surface resolved to window coordinates.
type Drawn struct {
	Surface
	Abs domain.Rect
}

// Surfaces is the substrate behind the desktop canvas. It keeps geometry and
// visibility per control and leaves drawing to whoever listens on OnRedraw.
type Surfaces struct {
	byID   map[registry.ID]*Surface
	order  []registry.ID // creation order, later surfaces on top
	cursor layout.Cursor

	OnRedraw func()
	OnNotify func(title, message string)
	OnCursor func(layout.Cursor)

	// Notices keeps every Notify call, newest last.
	Notices []string
}

var _ layout.Substrate = (*Surfaces)(nil)

func NewSurfaces() *Surfaces {
	return &Surfaces{byID: map[registry.ID]*Surface{}}
}

func (s *Surfaces) CreateSurface(id, parent registry.ID, kind domain.Kind, r domain.Rect) {
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = &Surface{ID: id, Parent: parent, Kind: kind, Rect: r, Visible: true}
}

func (s *Surfaces) DestroySurface(id registry.ID) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, o := range s.order {
		if o == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Surfaces) RequestRedraw(registry.ID) { s.redraw() }
func (s *Surfaces) RedrawAll()                { s.redraw() }

func (s *Surfaces) redraw() {
	if s.OnRedraw != nil {
		s.OnRedraw()
	}
}

func (s *Surfaces) ResizeSurface(id registry.ID, w, h int) {
	if sf, ok := s.byID[id]; ok {
		sf.Rect.W, sf.Rect.H = w, h
	}
}

func (s *Surfaces) MoveSurface(id registry.ID, x, y int) {
	if sf, ok := s.byID[id]; ok {
		sf.Rect.X, sf.Rect.Y = x, y
	}
}

func (s *Surfaces) QueryBounds(id registry.ID) domain.Rect {
	if sf, ok := s.byID[id]; ok {
		return sf.Rect
	}
	return domain.Rect{}
}

func (s *Surfaces) SetCursor(_ registry.ID, c layout.Cursor) {
	s.cursor = c
	if s.OnCursor != nil {
		s.OnCursor(c)
	}
}

func (s *Surfaces) SetVisible(id registry.ID, visible bool) {
	if sf, ok := s.byID[id]; ok {
		sf.Visible = visible
	}
}

func (s *Surfaces) Notify(title, message string) {
	s.Notices = append(s.Notices, title+": "+message)
	if s.OnNotify != nil {
		s.OnNotify(title, message)
	}
}

// Cursor returns the last cursor the editor asked for.
func (s *Surfaces) Cursor() layout.Cursor { return s.cursor }

// Len returns the number of live surfaces.
func (s *Surfaces) Len() int { return len(s.byID) }

// Get returns the surface for id.
func (s *Surfaces) Get(id registry.ID) (Surface, bool) {
	sf, ok := s.byID[id]
	if !ok {
		return Surface{}, false
	}
	return *sf, true
}

// Abs returns id's geometry in window coordinates.
func (s *Surfaces) Abs(id registry.ID) domain.Rect {
	sf, ok := s.byID[id]
	if !ok {
		return domain.Rect{}
	}
	r := sf.Rect
	for p := sf.Parent; !p.IsZero(); {
		ps, ok := s.byID[p]
		if !ok {
			break
		}
		r.X += ps.Rect.X
		r.Y += ps.Rect.Y
		p = ps.Parent
	}
	return r
}

// Shown reports whether id and all of its ancestors are visible.
func (s *Surfaces) Shown(id registry.ID) bool {
	for !id.IsZero() {
		sf, ok := s.byID[id]
		if !ok || !sf.Visible {
			return false
		}
		id = sf.Parent
	}
	return true
}

// Drawn lists the shown surfaces bottom to top.
func (s *Surfaces) Drawn() []Drawn {
	out := make([]Drawn, 0, len(s.order))
	for _, id := range s.order {
		if !s.Shown(id) {
			continue
		}
		out = append(out, Drawn{Surface: *s.byID[id], Abs: s.Abs(id)})
	}
	return out
}

// HitTest returns the topmost shown surface containing the window point.
func (s *Surfaces) HitTest(x, y int) (registry.ID, bool) {
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		if !s.Shown(id) {
			continue
		}
		r := s.Abs(id)
		if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
			return id, true
		}
	}
	return registry.ID{}, false
}

// enclosing walks up from id to the nearest surface of kind.
func (s *Surfaces) enclosing(id registry.ID, kind domain.Kind) (registry.ID, bool) {
	for !id.IsZero() {
		sf, ok := s.byID[id]
		if !ok {
			return registry.ID{}, false
		}
		if sf.Kind == kind {
			return id, true
		}
		id = sf.Parent
	}
	return registry.ID{}, false
}
