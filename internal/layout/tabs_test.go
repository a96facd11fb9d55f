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
	"testing"

	"uidesigner/internal/domain"
	"uidesigner/internal/registry"
)

func TestRemoveTabCascadesOnlyItsOwnChildren(t *testing.T) {
	e, rec := newEditor(t, DefaultSettings())
	tb := mustPlace(t, e, domain.TabBox, 200, 200)
	tab1, err := e.AddTab(tb, "Second")
	if err != nil {
		t.Fatalf("add tab: %v", err)
	}
	tab0 := e.Registry().Children(tb)[0]
	if err := e.SelectTab(tb, 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := e.PlaceInTab(tab0, domain.Knob, 10+i*60, 10); err != nil {
			t.Fatalf("place in tab: %v", err)
		}
	}
	before := e.Registry().Len()

	view, _ := e.TabView(tb)
	if len(view) != 2 || !view[0].Visible || view[1].Visible {
		t.Fatalf("only the active tab should be visible: %+v", view)
	}
	if !view[0].Highlight || view[1].Highlight {
		t.Fatalf("highlight belongs to the tab holding the active control: %+v", view)
	}
	if view[1].Slot.X != 60 || view[1].Slot.W != 60 {
		t.Fatalf("header slots should split the width: %+v", view[1].Slot)
	}
	if rec.visible[tab0] != true || rec.visible[tab1] != false {
		t.Fatalf("substrate visibility not applied: %v", rec.visible)
	}

	if err := e.RemoveTab(tb, 0); err != nil {
		t.Fatalf("remove tab: %v", err)
	}
	if got := before - e.Registry().Len(); got != 3 {
		t.Fatalf("expected 3 records removed, got %d", got)
	}
	if kids := e.Registry().Children(tb); len(kids) != 1 || kids[0] != tab1 {
		t.Fatalf("second tab must survive, got %v", kids)
	}
	if _, ok := e.Active(); ok {
		t.Fatalf("active control was on the removed tab")
	}
	c, _ := e.Registry().Get(tb)
	if c.ActiveTab != 0 {
		t.Fatalf("active tab index should stay in range, got %d", c.ActiveTab)
	}
}

func TestAddTabBecomesActiveAndRemoveShiftsIndex(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	tb := mustPlace(t, e, domain.TabBox, 200, 200)
	_, _ = e.AddTab(tb, "")
	_, _ = e.AddTab(tb, "")
	c, _ := e.Registry().Get(tb)
	if c.ActiveTab != 2 {
		t.Fatalf("newest tab should be active, got %d", c.ActiveTab)
	}
	if err := e.RemoveTab(tb, 2); err != nil {
		t.Fatal(err)
	}
	if c.ActiveTab != 1 {
		t.Fatalf("active index should shift down past the end, got %d", c.ActiveTab)
	}
	if err := e.RemoveTab(tb, 5); !errors.Is(err, ErrTabIndexOutRange) {
		t.Fatalf("expected ErrTabIndexOutRange, got %v", err)
	}
	k := mustPlace(t, e, domain.Knob, 10, 10)
	if _, err := e.AddTab(k, "x"); !errors.Is(err, ErrNotTabBox) {
		t.Fatalf("expected ErrNotTabBox, got %v", err)
	}
	if i, ok := e.TabAt(tb, 70, 5); !ok || i != 1 {
		t.Fatalf("TabAt = %d %v", i, ok)
	}
}

func TestPlaceRejectedWhenFullLeavesStateUntouched(t *testing.T) {
	rec := newRecorder()
	e := New(registry.New(2), rec, DefaultSettings())
	k := mustPlace(t, e, domain.Knob, 100, 100)
	if _, err := e.Place(domain.ComboBox, 300, 300); !errors.Is(err, registry.ErrRegistryFull) {
		t.Fatalf("expected ErrRegistryFull, got %v", err)
	}
	if e.Registry().Len() != 1 || len(rec.Notices) != 1 {
		t.Fatalf("expected 1 control and 1 notice, got %d / %v", e.Registry().Len(), rec.Notices)
	}
	if r := rectOf(t, e, k); r.X != 70 {
		t.Fatalf("existing control changed: %+v", r)
	}
}

func TestUndoRedoAcrossPlaceAndDrag(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	c, _ := e.Registry().Get(id)
	name := c.Name
	_ = e.Press(id, ButtonPrimary, 90, 90)
	e.Motion(id, 120, 90)
	e.Release(id, ButtonPrimary, 120, 90)

	find := func() (domain.Rect, bool) {
		nid, ok := e.Registry().Find(name)
		if !ok {
			return domain.Rect{}, false
		}
		nc, _ := e.Registry().Get(nid)
		return nc.Rect, true
	}

	if ok, err := e.Undo(); !ok || err != nil {
		t.Fatalf("undo drag: %v %v", ok, err)
	}
	if r, ok := find(); !ok || r.X != 70 {
		t.Fatalf("drag not undone: %+v %v", r, ok)
	}
	_, _ = e.Undo()
	if e.Registry().Len() != 0 {
		t.Fatalf("placement not undone")
	}
	_, _ = e.Redo()
	_, _ = e.Redo()
	if r, ok := find(); !ok || r.X != 100 {
		t.Fatalf("redo did not restore the drag: %+v %v", r, ok)
	}
	if ok, _ := e.Redo(); ok {
		t.Fatalf("nothing left to redo")
	}
}

func TestRestoreRebuildsSurfaces(t *testing.T) {
	e, rec := newEditor(t, DefaultSettings())
	cs := []domain.Control{
		{Kind: domain.Knob, Name: "Gain", Geometry: domain.Rect{X: 5, Y: 5, W: 60, H: 80}, PortIndex: 3},
	}
	if err := e.Restore(cs); err != nil {
		t.Fatalf("restore: %v", err)
	}
	id, ok := e.Registry().Find("Gain")
	if !ok {
		t.Fatalf("restored control missing")
	}
	if rec.QueryBounds(id).W != 60 {
		t.Fatalf("surface not created for restored control")
	}
	if e.Registry().PortCounter() != 3 {
		t.Fatalf("port counter should follow restored ports, got %d", e.Registry().PortCounter())
	}
	next := mustPlace(t, e, domain.Knob, 200, 200)
	nc, _ := e.Registry().Get(next)
	if nc.PortIndex != 4 {
		t.Fatalf("next port should be 4, got %d", nc.PortIndex)
	}
}

func TestFailedRestoreKeepsLayout(t *testing.T) {
	e, rec := newEditor(t, DefaultSettings())
	k := mustPlace(t, e, domain.Knob, 100, 100)
	b := mustPlace(t, e, domain.Button, 300, 100)

	tooMany := make([]domain.Control, 51)
	for i := range tooMany {
		tooMany[i] = domain.Control{Kind: domain.Knob, Geometry: domain.Rect{W: 60, H: 80}}
	}
	if err := e.Restore(tooMany); !errors.Is(err, registry.ErrRegistryFull) {
		t.Fatalf("expected ErrRegistryFull, got %v", err)
	}
	nested := []domain.Control{{
		Kind:     domain.Knob,
		Geometry: domain.Rect{W: 60, H: 80},
		Children: []domain.Control{{Kind: domain.Label, Geometry: domain.Rect{W: 40, H: 20}}},
	}}
	if err := e.Restore(nested); !errors.Is(err, registry.ErrNotContainer) {
		t.Fatalf("expected ErrNotContainer, got %v", err)
	}

	if e.Registry().Len() != 2 {
		t.Fatalf("layout lost after failed restores, %d controls left", e.Registry().Len())
	}
	for _, id := range []registry.ID{k, b} {
		if rec.QueryBounds(id).W == 0 {
			t.Fatalf("surface of %v destroyed by a failed restore", id)
		}
	}
	if a, ok := e.Active(); !ok || a != b {
		t.Fatalf("active control should survive, got %v %v", a, ok)
	}
	if len(rec.Notices) != 2 {
		t.Fatalf("each failure should notify once, got %v", rec.Notices)
	}
}
