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

// Cursor is the pointer affordance shown over a control.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorHand
	CursorRight
	CursorBottom
	CursorCorner
	CursorPlace // a palette kind is armed
)

// Substrate is the drawing surface the editor drives. Geometry passed to it
// is parent-relative, exactly as stored in the registry.
type Substrate interface {
	CreateSurface(id, parent registry.ID, kind domain.Kind, r domain.Rect)
	DestroySurface(id registry.ID)
	RequestRedraw(id registry.ID)
	RedrawAll()
	ResizeSurface(id registry.ID, w, h int)
	MoveSurface(id registry.ID, x, y int)
	// QueryBounds returns the geometry the surface actually has. A zero rect
	// means unknown; the editor then trusts its own live geometry.
	QueryBounds(id registry.ID) domain.Rect
	SetCursor(id registry.ID, c Cursor)
	SetVisible(id registry.ID, visible bool)
	// Notify shows a modal notice.
	Notify(title, message string)
}

// NopSubstrate keeps surface geometry in memory and draws nothing.
// It backs the CLI and headless use.
type NopSubstrate struct {
	bounds map[registry.ID]domain.Rect
	// Notices collects Notify calls.
	Notices []string
}

func NewNopSubstrate() *NopSubstrate {
	return &NopSubstrate{bounds: map[registry.ID]domain.Rect{}}
}

func (n *NopSubstrate) CreateSurface(id, _ registry.ID, _ domain.Kind, r domain.Rect) {
	n.bounds[id] = r
}
func (n *NopSubstrate) DestroySurface(id registry.ID) { delete(n.bounds, id) }
func (n *NopSubstrate) RequestRedraw(registry.ID)     {}
func (n *NopSubstrate) RedrawAll()                    {}
func (n *NopSubstrate) ResizeSurface(id registry.ID, w, h int) {
	r := n.bounds[id]
	r.W, r.H = w, h
	n.bounds[id] = r
}
func (n *NopSubstrate) MoveSurface(id registry.ID, x, y int) {
	r := n.bounds[id]
	r.X, r.Y = x, y
	n.bounds[id] = r
}
func (n *NopSubstrate) QueryBounds(id registry.ID) domain.Rect { return n.bounds[id] }
func (n *NopSubstrate) SetCursor(registry.ID, Cursor)          {}
func (n *NopSubstrate) SetVisible(registry.ID, bool)           {}
func (n *NopSubstrate) Notify(title, message string) {
	n.Notices = append(n.Notices, title+": "+message)
}
