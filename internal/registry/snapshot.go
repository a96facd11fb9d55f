/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package registry

import (
	"fmt"

	"uidesigner/internal/domain"
)

// Snapshot returns the persisted form of every control, children nested under
// their parents. Geometry is the live geometry.
func (r *Registry) Snapshot() []domain.Control {
	out := make([]domain.Control, 0, len(r.top))
	for _, id := range r.top {
		out = append(out, r.export(id))
	}
	return out
}

func (r *Registry) export(id ID) domain.Control {
	c := r.mustGet(id)
	dc := domain.Control{
		Kind:       c.Kind,
		Name:       c.Name,
		Label:      c.Label,
		Geometry:   c.Rect,
		PortIndex:  c.PortIndex,
		SnapOption: c.SnapOption,
		ActiveTab:  c.ActiveTab,
		Image:      c.Image,
	}
	if c.Adjustment != nil {
		a := *c.Adjustment
		dc.Adjustment = &a
	}
	if len(c.Entries) > 0 {
		dc.Entries = append([]string(nil), c.Entries...)
	}
	for _, ch := range c.children {
		dc.Children = append(dc.Children, r.export(ch))
	}
	return dc
}

// Check reports whether cs could be restored: it fits the capacity, every
// kind is valid and children only sit under containers. It does not touch the
// registry.
func (r *Registry) Check(cs []domain.Control) error {
	if need := domain.Count(cs); need > len(r.slots) {
		return fmt.Errorf("restore %d controls: %w", need, ErrRegistryFull)
	}
	return checkTree(nil, cs)
}

func checkTree(parent *domain.Control, cs []domain.Control) error {
	for i := range cs {
		dc := &cs[i]
		if !dc.Kind.Valid() {
			return fmt.Errorf("restore %q: invalid kind %d", dc.Name, int(dc.Kind))
		}
		if parent != nil && !parent.Kind.Container() {
			return fmt.Errorf("restore %q under %s: %w", dc.Name, parent.Name, ErrNotContainer)
		}
		if err := checkTree(dc, dc.Children); err != nil {
			return err
		}
	}
	return nil
}

// Restore replaces the registry content with cs. The port counter is set to the
// highest port index found. cs is checked first; on error the registry keeps
// its previous content.
func (r *Registry) Restore(cs []domain.Control) error {
	if err := r.Check(cs); err != nil {
		return err
	}
	r.Reset()
	for _, dc := range cs {
		if err := r.restore(ID{}, dc); err != nil {
			r.Reset()
			return err
		}
	}
	return nil
}

func (r *Registry) restore(parent ID, dc domain.Control) error {
	if !dc.Kind.Valid() {
		return fmt.Errorf("restore %q: invalid kind %d", dc.Name, int(dc.Kind))
	}
	if !parent.IsZero() {
		if p := r.mustGet(parent); !p.Kind.Container() {
			return fmt.Errorf("restore %q under %s: %w", dc.Name, p.Name, ErrNotContainer)
		}
	}
	id := r.alloc(dc.Kind, dc.Geometry)
	c := r.mustGet(id)
	if dc.Name != "" {
		c.Name = dc.Name
	}
	c.Label = dc.Label
	c.PortIndex = dc.PortIndex
	c.SnapOption = dc.SnapOption
	c.ActiveTab = dc.ActiveTab
	c.Image = dc.Image
	c.Entries = append([]string(nil), dc.Entries...)
	if dc.Adjustment != nil {
		a := *dc.Adjustment
		c.Adjustment = &a
	}
	if parent.IsZero() {
		r.top = append(r.top, id)
	} else {
		c.parent = parent
		p := r.mustGet(parent)
		p.children = append(p.children, id)
	}
	if dc.PortIndex > r.port {
		r.port = dc.PortIndex
	}
	for _, ch := range dc.Children {
		if err := r.restore(id, ch); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the first control with the given name.
func (r *Registry) Find(name string) (ID, bool) {
	var found ID
	r.Each(func(id ID, c *Control) {
		if found.IsZero() && c.Name == name {
			found = id
		}
	})
	return found, !found.IsZero()
}
