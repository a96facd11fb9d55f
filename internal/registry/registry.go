/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

// Fixed-capacity arena of placed controls. Records are addressed by a
// generational ID; freed slots go on a free list and are reused with a
// bumped generation so stale IDs never resolve to a newer control.

import (
	"errors"
	"fmt"

	"uidesigner/internal/domain"
)

// MaxControls is the default registry capacity.
const MaxControls = 300

var (
	ErrRegistryFull = errors.New("registry full")
	ErrNotFound     = errors.New("control not found")
	ErrNotContainer = errors.New("control cannot hold children")
)

// ID addresses a control for its lifetime. The zero ID never resolves.
type ID struct {
	Slot uint32
	Gen  uint32
}

// IsZero reports whether id is the empty ID.
func (id ID) IsZero() bool { return id.Gen == 0 }

func (id ID) String() string { return fmt.Sprintf("%d@%d", id.Slot, id.Gen) }

// Control is the live record of one placed control.
type Control struct {
	Kind  domain.Kind
	Name  string
	Label string
	// Rect is the live geometry, Confirmed the geometry at the end of the
	// last drag session. Children are relative to their parent.
	Rect       domain.Rect
	Confirmed  domain.Rect
	PortIndex  int
	Adjustment *domain.Adjustment
	SnapOption domain.SnapOption
	Entries    []string
	ActiveTab  int
	Image      string

	parent   ID
	children []ID
}

// Confirm copies the live geometry into the confirmed snapshot.
func (c *Control) Confirm() { c.Confirmed = c.Rect }

type slot struct {
	gen  uint32
	live bool
	c    Control
}

// Registry owns every placed control.
type Registry struct {
	slots []slot
	free  []uint32
	top   []ID // top-level controls in placement order
	port  int
}

// New returns a registry holding at most capacity controls; capacity <= 0 uses MaxControls.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = MaxControls
	}
	r := &Registry{slots: make([]slot, capacity)}
	r.Reset()
	return r
}

// Reset drops every control and restores the initial port counter.
func (r *Registry) Reset() {
	n := len(r.slots)
	r.free = r.free[:0]
	for i := n - 1; i >= 0; i-- {
		if r.slots[i].live {
			r.slots[i].live = false
			r.slots[i].c = Control{}
		}
		r.free = append(r.free, uint32(i))
	}
	r.top = nil
	r.port = -1
}

// Cap returns the capacity.
func (r *Registry) Cap() int { return len(r.slots) }

// Len returns the number of live controls, children included.
func (r *Registry) Len() int { return len(r.slots) - len(r.free) }

// PortCounter returns the shared port-index counter (the last assigned index).
func (r *Registry) PortCounter() int { return r.port }

// SetPortCounter overrides the shared port-index counter.
func (r *Registry) SetPortCounter(v int) { r.port = v }

// implicitChildren is the number of records a placement of kind occupies beyond its own.
func implicitChildren(k domain.Kind) int {
	switch k {
	case domain.TabBox, domain.ComboBox:
		return 1
	default:
		return 0
	}
}

// Place adds a top-level control. Containers receive their implicit first child
// (a TabBox its first tab, a ComboBox its menu) in the same step; when the whole
// group does not fit, nothing is inserted and ErrRegistryFull is returned.
func (r *Registry) Place(kind domain.Kind, x, y, w, h int) (ID, error) {
	if !kind.Valid() {
		return ID{}, fmt.Errorf("place: invalid kind %d", int(kind))
	}
	if len(r.free) < 1+implicitChildren(kind) {
		return ID{}, ErrRegistryFull
	}
	id := r.alloc(kind, domain.Rect{X: x, Y: y, W: w, H: h})
	r.top = append(r.top, id)

	c := r.mustGet(id)
	r.port++
	c.PortIndex = r.port
	if !kind.Parameterized() {
		r.port--
		c.PortIndex = -1
	}

	switch kind {
	case domain.TabBox:
		_, _ = r.PlaceChild(id, domain.Tab, TabPageRect(c.Rect))
	case domain.ComboBox:
		_, _ = r.PlaceChild(id, domain.ComboMenu, MenuRect(c.Rect))
	}
	return id, nil
}

// TabPageRect is the content area of a tab page inside a w×h TabBox.
func TabPageRect(parent domain.Rect) domain.Rect {
	return domain.Rect{X: 0, Y: 20, W: parent.W, H: max(parent.H-20, 10)}
}

// MenuRect is the drop-down button of a ComboBox, flush with its right edge.
func MenuRect(parent domain.Rect) domain.Rect {
	w := min(20, parent.W)
	return domain.Rect{X: parent.W - w, Y: 0, W: w, H: parent.H}
}

// PlaceChild appends a child to a container. Structural children (tab pages,
// combobox menus) carry no port; controls placed inside a tab draw one from
// the shared counter like top-level controls.
func (r *Registry) PlaceChild(parent ID, kind domain.Kind, rect domain.Rect) (ID, error) {
	p, ok := r.Get(parent)
	if !ok {
		return ID{}, ErrNotFound
	}
	if !p.Kind.Container() {
		return ID{}, fmt.Errorf("place child in %s: %w", p.Name, ErrNotContainer)
	}
	if !kind.Valid() {
		return ID{}, fmt.Errorf("place child: invalid kind %d", int(kind))
	}
	if len(r.free) < 1+implicitChildren(kind) {
		return ID{}, ErrRegistryFull
	}
	id := r.alloc(kind, rect)
	c := r.mustGet(id)
	c.PortIndex = -1
	if kind.Parameterized() {
		r.port++
		c.PortIndex = r.port
	}
	c.parent = parent
	p = r.mustGet(parent)
	p.children = append(p.children, id)
	if kind == domain.Tab {
		c.Label = fmt.Sprintf("Tab %d", len(p.children))
	}
	if kind == domain.ComboBox {
		_, _ = r.PlaceChild(id, domain.ComboMenu, MenuRect(c.Rect))
	}
	return id, nil
}

func (r *Registry) alloc(kind domain.Kind, rect domain.Rect) ID {
	n := len(r.free)
	s := r.free[n-1]
	r.free = r.free[:n-1]
	sl := &r.slots[s]
	sl.gen++
	sl.live = true
	name := fmt.Sprintf("%s%d", kind.NamePrefix(), s)
	sl.c = Control{
		Kind:      kind,
		Name:      name,
		Label:     name,
		Rect:      rect,
		Confirmed: rect,
	}
	if kind.Adjustable() {
		sl.c.Adjustment = domain.DefaultAdjustment()
	}
	return ID{Slot: s, Gen: sl.gen}
}

// Get resolves id to its live record. The pointer is valid until the control is removed.
func (r *Registry) Get(id ID) (*Control, bool) {
	if id.IsZero() || int(id.Slot) >= len(r.slots) {
		return nil, false
	}
	sl := &r.slots[id.Slot]
	if !sl.live || sl.gen != id.Gen {
		return nil, false
	}
	return &sl.c, true
}

func (r *Registry) mustGet(id ID) *Control {
	c, ok := r.Get(id)
	if !ok {
		panic("registry: stale id " + id.String())
	}
	return c
}

// Parent returns the container owning id, or the zero ID for top-level controls.
func (r *Registry) Parent(id ID) ID {
	if c, ok := r.Get(id); ok {
		return c.parent
	}
	return ID{}
}

// Children returns the ordered children of id.
func (r *Registry) Children(id ID) []ID {
	c, ok := r.Get(id)
	if !ok {
		return nil
	}
	return append([]ID(nil), c.children...)
}

// Remove deletes id and, depth-first, everything it owns. It returns the number
// of records freed.
func (r *Registry) Remove(id ID) (int, error) {
	c, ok := r.Get(id)
	if !ok {
		return 0, ErrNotFound
	}
	if !c.parent.IsZero() {
		if p, ok := r.Get(c.parent); ok {
			p.children = without(p.children, id)
		}
	} else {
		r.top = without(r.top, id)
	}
	return r.removeTree(id), nil
}

func (r *Registry) removeTree(id ID) int {
	c := r.mustGet(id)
	n := 0
	for _, ch := range c.children {
		n += r.removeTree(ch)
	}
	sl := &r.slots[id.Slot]
	sl.live = false
	sl.c = Control{}
	r.free = append(r.free, id.Slot)
	return n + 1
}

func without(ids []ID, id ID) []ID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// TopLevel returns top-level controls in placement order.
func (r *Registry) TopLevel() []ID { return append([]ID(nil), r.top...) }

// Each visits every live control, parents before their children.
func (r *Registry) Each(fn func(ID, *Control)) {
	for _, id := range r.top {
		r.walk(id, fn)
	}
}

func (r *Registry) walk(id ID, fn func(ID, *Control)) {
	c := r.mustGet(id)
	fn(id, c)
	for _, ch := range c.children {
		r.walk(ch, fn)
	}
}

// ForEachOfKind visits every live control of the given kind.
func (r *Registry) ForEachOfKind(kind domain.Kind, fn func(ID, *Control)) {
	r.Each(func(id ID, c *Control) {
		if c.Kind == kind {
			fn(id, c)
		}
	})
}
