/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"fmt"
	"log/slog"
	"strings"

	"uidesigner/internal/domain"
	"uidesigner/internal/registry"
)

// TabHeaderHeight is the height of the tab header strip.
const TabHeaderHeight = 20

func (e *Editor) tabBox(id registry.ID) (*registry.Control, error) {
	c, ok := e.reg.Get(id)
	if !ok {
		return nil, registry.ErrNotFound
	}
	if c.Kind != domain.TabBox {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrNotTabBox)
	}
	return c, nil
}

// AddTab appends a tab page and makes it the active one.
func (e *Editor) AddTab(tabbox registry.ID, label string) (registry.ID, error) {
	if e.Busy() {
		return registry.ID{}, ErrDragActive
	}
	c, err := e.tabBox(tabbox)
	if err != nil {
		return registry.ID{}, err
	}
	before := e.capture()
	id, err := e.reg.PlaceChild(tabbox, domain.Tab, registry.TabPageRect(c.Rect))
	if err != nil {
		e.sub.Notify("INFO", fmt.Sprintf("The layout already holds the maximum of %d controls.", e.reg.Cap()))
		return registry.ID{}, err
	}
	e.record("tab", before)
	if label = strings.TrimSpace(label); label != "" {
		tc, _ := e.reg.Get(id)
		tc.Label = label
	}
	c.ActiveTab = len(e.reg.Children(tabbox)) - 1
	e.createSurfaces(id)
	e.DrawTabBox(tabbox)
	return id, nil
}

// RemoveTab removes the tab at index together with everything placed on it.
func (e *Editor) RemoveTab(tabbox registry.ID, index int) error {
	if e.Busy() {
		return ErrDragActive
	}
	c, err := e.tabBox(tabbox)
	if err != nil {
		return err
	}
	tabs := e.reg.Children(tabbox)
	if index < 0 || index >= len(tabs) {
		return fmt.Errorf("remove tab %d of %d: %w", index, len(tabs), ErrTabIndexOutRange)
	}
	before := e.capture()
	gone := e.subtree(tabs[index])
	n, err := e.reg.Remove(tabs[index])
	if err != nil {
		return err
	}
	e.record("tab", before)
	for _, g := range gone {
		e.sub.DestroySurface(g)
		if g == e.sel.Active {
			e.sel.Active = registry.ID{}
		}
	}
	switch left := len(tabs) - 1; {
	case index < c.ActiveTab:
		c.ActiveTab--
	case c.ActiveTab >= left:
		c.ActiveTab = max(left-1, 0)
	}
	e.log.DebugContext(e.logCtx, "tab removed", slog.String("tabbox", c.Name), slog.Int("index", index), slog.Int("records", n))
	e.DrawTabBox(tabbox)
	return nil
}

// SelectTab shows the tab at index.
func (e *Editor) SelectTab(tabbox registry.ID, index int) error {
	c, err := e.tabBox(tabbox)
	if err != nil {
		return err
	}
	if n := len(e.reg.Children(tabbox)); index < 0 || index >= n {
		return fmt.Errorf("select tab %d of %d: %w", index, n, ErrTabIndexOutRange)
	}
	c.ActiveTab = index
	e.DrawTabBox(tabbox)
	return nil
}

// TabHeader describes one tab as drawn.
type TabHeader struct {
	ID        registry.ID
	Label     string
	Slot      domain.Rect // header cell, TabBox-relative
	Visible   bool
	Highlight bool
}

// TabView computes the draw-time state of a TabBox: header cells of equal
// width, only the active page visible, and a highlight on the page that holds
// the active control.
func (e *Editor) TabView(tabbox registry.ID) ([]TabHeader, error) {
	c, err := e.tabBox(tabbox)
	if err != nil {
		return nil, err
	}
	tabs := e.reg.Children(tabbox)
	if len(tabs) == 0 {
		return nil, nil
	}
	slotW := c.Rect.W / len(tabs)
	holder := e.tabHolding(e.sel.Active)
	out := make([]TabHeader, 0, len(tabs))
	for i, t := range tabs {
		tc, _ := e.reg.Get(t)
		out = append(out, TabHeader{
			ID:        t,
			Label:     tc.Label,
			Slot:      domain.Rect{X: i * slotW, Y: 0, W: slotW, H: TabHeaderHeight},
			Visible:   i == c.ActiveTab,
			Highlight: t == holder,
		})
	}
	return out, nil
}

// tabHolding returns the tab page that id lives on, if any.
func (e *Editor) tabHolding(id registry.ID) registry.ID {
	for p := e.reg.Parent(id); !p.IsZero(); p = e.reg.Parent(p) {
		if c, ok := e.reg.Get(p); ok && c.Kind == domain.Tab {
			return p
		}
	}
	return registry.ID{}
}

// DrawTabBox applies the visibility policy to the substrate.
func (e *Editor) DrawTabBox(tabbox registry.ID) {
	view, err := e.TabView(tabbox)
	if err != nil {
		return
	}
	for _, h := range view {
		e.sub.SetVisible(h.ID, h.Visible)
	}
	e.sub.RequestRedraw(tabbox)
}

// TabAt maps a TabBox-relative header click to a tab index.
func (e *Editor) TabAt(tabbox registry.ID, x, y int) (int, bool) {
	view, err := e.TabView(tabbox)
	if err != nil || y < 0 || y >= TabHeaderHeight {
		return 0, false
	}
	for i, h := range view {
		if x >= h.Slot.X && x < h.Slot.X+h.Slot.W {
			return i, true
		}
	}
	return 0, false
}
