/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"uidesigner/internal/domain"
	"uidesigner/internal/registry"
)

// Place puts a control of kind centred on (x, y) with the kind's default size.
// A full registry is reported through the substrate and leaves every existing
// control untouched.
func (e *Editor) Place(kind domain.Kind, x, y int) (registry.ID, error) {
	if e.Busy() {
		return registry.ID{}, ErrDragActive
	}
	sz := kind.DefaultSize()
	before := e.capture()
	id, err := e.reg.Place(kind, x-sz.W/2, y-sz.H/2, sz.W, sz.H)
	if err != nil {
		if errors.Is(err, registry.ErrRegistryFull) {
			e.log.WarnContext(e.logCtx, "placement rejected", slog.String("kind", kind.String()), slog.Int("cap", e.reg.Cap()))
			e.sub.Notify("INFO", fmt.Sprintf("The layout already holds the maximum of %d controls.", e.reg.Cap()))
		}
		return registry.ID{}, err
	}
	e.record("place", before)
	c, _ := e.reg.Get(id)
	if img := e.settings.GlobalImages[kind]; img != "" {
		c.Image = img
	}
	e.createSurfaces(id)
	if kind == domain.TabBox {
		e.DrawTabBox(id)
	}
	e.log.DebugContext(e.logCtx, "placed", slog.String("kind", kind.String()), slog.String("name", c.Name), slog.Int("port", c.PortIndex))
	_ = e.Activate(id)
	return id, nil
}

// PlaceInTab places a control inside a tab page at tab-relative (x, y).
func (e *Editor) PlaceInTab(tab registry.ID, kind domain.Kind, x, y int) (registry.ID, error) {
	if e.Busy() {
		return registry.ID{}, ErrDragActive
	}
	sz := kind.DefaultSize()
	before := e.capture()
	id, err := e.reg.PlaceChild(tab, kind, domain.Rect{X: x, Y: y, W: sz.W, H: sz.H})
	if err != nil {
		if errors.Is(err, registry.ErrRegistryFull) {
			e.sub.Notify("INFO", fmt.Sprintf("The layout already holds the maximum of %d controls.", e.reg.Cap()))
		}
		return registry.ID{}, err
	}
	e.record("place", before)
	e.createSurfaces(id)
	_ = e.Activate(id)
	return id, nil
}

// Remove deletes a control and everything it owns.
func (e *Editor) Remove(id registry.ID) error {
	if e.Busy() {
		return ErrDragActive
	}
	if _, ok := e.reg.Get(id); !ok {
		return registry.ErrNotFound
	}
	before := e.capture()
	gone := e.subtree(id)
	n, err := e.reg.Remove(id)
	if err != nil {
		return err
	}
	e.record("remove", before)
	for _, g := range gone {
		e.sub.DestroySurface(g)
		if g == e.sel.Active {
			e.sel.Active = registry.ID{}
		}
	}
	e.log.DebugContext(e.logCtx, "removed", slog.String("id", id.String()), slog.Int("records", n))
	e.sub.RedrawAll()
	return nil
}

// Reset empties the layout.
func (e *Editor) Reset() {
	e.reg.Each(func(id registry.ID, _ *registry.Control) { e.sub.DestroySurface(id) })
	e.reg.Reset()
	e.sel.Clear()
	e.drag = session{}
	e.group = groupDrag{}
	e.hist.Clear()
	e.sub.RedrawAll()
}

func (e *Editor) target(id registry.ID) (*registry.Control, error) {
	c, ok := e.reg.Get(id)
	if !ok {
		return nil, registry.ErrNotFound
	}
	return c, nil
}

// SetSnapOption chooses the horizontal grid anchor of a control.
func (e *Editor) SetSnapOption(id registry.ID, opt domain.SnapOption) error {
	c, err := e.target(id)
	if err != nil {
		return err
	}
	c.SnapOption = opt
	return nil
}

// SetLabel changes the caption of a control.
func (e *Editor) SetLabel(id registry.ID, label string) error {
	c, err := e.target(id)
	if err != nil {
		return err
	}
	e.record("label", e.capture())
	c.Label = label
	e.sub.RequestRedraw(id)
	if p := e.reg.Parent(id); !p.IsZero() {
		e.sub.RequestRedraw(p)
	}
	return nil
}

// SetImage assigns an image path to a control.
func (e *Editor) SetImage(id registry.ID, path string) error {
	c, err := e.target(id)
	if err != nil {
		return err
	}
	c.Image = path
	e.sub.RequestRedraw(id)
	return nil
}

// SetAdjustment replaces the numeric range of an adjustable control.
func (e *Editor) SetAdjustment(id registry.ID, a domain.Adjustment) error {
	c, err := e.target(id)
	if err != nil {
		return err
	}
	if c.Adjustment == nil {
		return fmt.Errorf("%s: %w", c.Name, ErrNotAdjustable)
	}
	if a.Max < a.Min {
		a.Min, a.Max = a.Max, a.Min
	}
	a.Default = min(max(a.Default, a.Min), a.Max)
	e.record("adjustment", e.capture())
	*c.Adjustment = a
	return nil
}

// AddComboEntry appends an item to a ComboBox.
func (e *Editor) AddComboEntry(id registry.ID, entry string) error {
	c, err := e.target(id)
	if err != nil {
		return err
	}
	if c.Kind != domain.ComboBox {
		return fmt.Errorf("%s is a %s, not a combobox", c.Name, c.Kind)
	}
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil
	}
	c.Entries = append(c.Entries, entry)
	if c.Adjustment != nil {
		c.Adjustment.Min = 0
		c.Adjustment.Max = float64(len(c.Entries) - 1)
		c.Adjustment.Step = 1
	}
	return nil
}

// SetPortIndex binds the active control to port index v and makes v the shared counter.
func (e *Editor) SetPortIndex(v int) error {
	id, ok := e.Active()
	if !ok {
		return ErrNoActiveControl
	}
	c, _ := e.reg.Get(id)
	if !c.Kind.Parameterized() {
		return fmt.Errorf("%s carries no port", c.Name)
	}
	c.PortIndex = v
	e.reg.SetPortCounter(v)
	return nil
}
