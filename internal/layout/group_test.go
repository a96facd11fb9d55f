/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"testing"

	"uidesigner/internal/domain"
	"uidesigner/internal/mirror"
	"uidesigner/internal/registry"
)

func TestMoveAllOfTypeMovesOnlySameKind(t *testing.T) {
	s := DefaultSettings()
	s.MoveAll = true
	e, _ := newEditor(t, s)
	k1 := mustPlace(t, e, domain.Knob, 100, 100)  // {70,60}
	k2 := mustPlace(t, e, domain.Knob, 300, 100)  // {270,60}
	b := mustPlace(t, e, domain.Button, 100, 100) // {70,70}, co-located with k1

	_ = e.Press(k1, ButtonPrimary, 90, 90)
	e.Motion(k1, 115, 97)
	e.Release(k1, ButtonPrimary, 115, 97)

	if r := rectOf(t, e, k1); r.X != 95 || r.Y != 67 {
		t.Fatalf("active knob moved to %+v", r)
	}
	if r := rectOf(t, e, k2); r.X != 295 || r.Y != 67 {
		t.Fatalf("other knob must move by the same delta, got %+v", r)
	}
	if r := rectOf(t, e, b); r.X != 70 || r.Y != 70 {
		t.Fatalf("button must not move, got %+v", r)
	}
	c2, _ := e.Registry().Get(k2)
	if c2.Confirmed != c2.Rect {
		t.Fatalf("broadcast target not confirmed on release")
	}
}

func TestMoveAllOfTypeSnapsEachWithItsOwnAnchor(t *testing.T) {
	e, rec := newEditor(t, DefaultSettings())
	none := mustPlace(t, e, domain.Knob, 100, 100)   // {70,60}
	center := mustPlace(t, e, domain.Knob, 300, 100) // {270,60}
	right := mustPlace(t, e, domain.Knob, 500, 100)  // {470,60}
	b := mustPlace(t, e, domain.Button, 100, 100)
	anchors := map[registry.ID]domain.SnapOption{none: domain.SnapNone, center: domain.SnapCenter, right: domain.SnapRight}
	for id, opt := range anchors {
		c, _ := e.Registry().Get(id)
		c.SnapOption = opt
		c.Rect.W, c.Confirmed.W = 50, 50 // remainder 5 on a 15 grid
		rec.ResizeSurface(id, 50, 80)
	}
	s := e.Settings()
	s.MoveAll, s.GridSnap = true, true
	e.SetSettings(s)

	_ = e.Press(none, ButtonPrimary, 90, 90)
	e.Motion(none, 113, 107) // delta (23,17)
	e.Release(none, ButtonPrimary, 113, 107)

	want := map[registry.ID][2]int{
		none:   {90, 75},       // 93 -> 90
		center: {285 + 13, 75}, // 293 -> 285, + 15 - 5/2
		right:  {480 + 10, 75}, // 493 -> 480, + 15 - 5
	}
	for id, xy := range want {
		if r := rectOf(t, e, id); r.X != xy[0] || r.Y != xy[1] {
			t.Fatalf("%s knob at %d,%d, want %d,%d", anchors[id], r.X, r.Y, xy[0], xy[1])
		}
	}
	if r := rectOf(t, e, b); r.X != 70 || r.Y != 70 {
		t.Fatalf("button must not move, got %+v", r)
	}
}

func TestResizeAllOfTypeTakesActiveSize(t *testing.T) {
	s := DefaultSettings()
	s.ResizeAll = true
	e, _ := newEditor(t, s)
	k1 := mustPlace(t, e, domain.Knob, 100, 100)
	k2 := mustPlace(t, e, domain.Knob, 300, 100)
	sl := mustPlace(t, e, domain.HSlider, 300, 300)

	_ = e.Press(k1, ButtonPrimary, 125, 80) // right edge
	e.Motion(k1, 145, 80)
	e.Release(k1, ButtonPrimary, 145, 80)
	if r := rectOf(t, e, k2); r.W != 80 || r.H != 80 {
		t.Fatalf("expected 80x80 knob, got %+v", r)
	}
	if r := rectOf(t, e, sl); r.W != 120 {
		t.Fatalf("slider must keep its width, got %+v", r)
	}
}

func TestAspectLockAdjustsHeightWithoutReentry(t *testing.T) {
	s := DefaultSettings()
	s.KeepAspect = true
	e, _ := newEditor(t, s)
	id := mustPlace(t, e, domain.Knob, 100, 100) // 60x80

	f := e.Fields()
	for a := mirror.X; a <= mirror.H; a++ {
		fld := f.Field(a)
		fld.Attach(func(v int) { fld.Changed(v) }) // toolkit echoes programmatic sets
	}
	widthCalls, heightCalls := 0, 0
	f.W.Bind(func(v int) { widthCalls++; e.onWidth(v) })
	f.H.Bind(func(v int) { heightCalls++; e.onHeight(v) })

	f.W.Changed(f.W.Value() + 20)

	if widthCalls != 1 || heightCalls != 0 {
		t.Fatalf("expected one width handler call and no height call, got %d/%d", widthCalls, heightCalls)
	}
	if r := rectOf(t, e, id); r.W != 80 || r.H != 100 {
		t.Fatalf("expected 80x100, got %+v", r)
	}
	if f.H.Value() != 100 {
		t.Fatalf("height field shows %d, want 100", f.H.Value())
	}
}

func TestFieldEditMovesAndCommits(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	e.Fields().X.Changed(10)
	e.Fields().H.Changed(5)
	c, _ := e.Registry().Get(id)
	if c.Rect.X != 10 || c.Rect.H != 10 || c.Confirmed != c.Rect {
		t.Fatalf("unexpected geometry %+v / %+v", c.Rect, c.Confirmed)
	}
	if e.Fields().Y.Value() != 60 {
		t.Fatalf("other fields must be refreshed")
	}
}

func TestFieldMoveAllUsesDeltaFromConfirmed(t *testing.T) {
	s := DefaultSettings()
	s.MoveAll = true
	e, _ := newEditor(t, s)
	k1 := mustPlace(t, e, domain.Knob, 100, 100)
	k2 := mustPlace(t, e, domain.Knob, 300, 100)
	_ = e.Activate(k1)
	e.Fields().Y.Changed(100) // +40
	if rectOf(t, e, k1).Y != 100 || rectOf(t, e, k2).Y != 100 {
		t.Fatalf("both knobs should be at y 100: %+v %+v", rectOf(t, e, k1), rectOf(t, e, k2))
	}
}

func TestMarqueeGroupMove(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	k1 := mustPlace(t, e, domain.Knob, 100, 100)  // {70,60}
	b := mustPlace(t, e, domain.Button, 300, 300) // {270,270}
	k2 := mustPlace(t, e, domain.Knob, 500, 100)  // {470,60}

	e.CanvasPress(ButtonPrimary, 50, 50)
	e.CanvasMotion(350, 350, true)
	_, _ = e.CanvasRelease(ButtonPrimary, 350, 350)
	if r, ok := e.MarqueeRect(); !ok || r != (domain.Rect{X: 50, Y: 50, W: 300, H: 300}) {
		t.Fatalf("unexpected marquee %+v %v", r, ok)
	}

	e.CanvasPress(ButtonPrimary, 100, 100)
	if !e.Busy() {
		t.Fatalf("press inside the marquee should grab the group")
	}
	e.CanvasMotion(110, 120, true)
	_, _ = e.CanvasRelease(ButtonPrimary, 110, 120)

	if r := rectOf(t, e, k1); r.X != 80 || r.Y != 80 {
		t.Fatalf("k1 moved to %+v", r)
	}
	if r := rectOf(t, e, b); r.X != 280 || r.Y != 290 {
		t.Fatalf("button moved to %+v", r)
	}
	if r := rectOf(t, e, k2); r.X != 470 || r.Y != 60 {
		t.Fatalf("control outside the marquee moved to %+v", r)
	}
	if r, _ := e.MarqueeRect(); r.X != 60 || r.Y != 70 {
		t.Fatalf("marquee should follow the group, got %+v", r)
	}
}

func TestMarqueeGroupMoveSnapsFootprint(t *testing.T) {
	s := DefaultSettings()
	s.GridSnap = true
	e, _ := newEditor(t, s)
	k1 := mustPlace(t, e, domain.Knob, 100, 100) // {70,60}

	e.CanvasPress(ButtonPrimary, 50, 50)
	e.CanvasMotion(350, 350, true)
	_, _ = e.CanvasRelease(ButtonPrimary, 350, 350)

	e.CanvasPress(ButtonPrimary, 100, 100)
	e.CanvasMotion(105, 100, true) // snapped footprint moves less than a cell
	if r := rectOf(t, e, k1); r.X != 70 || r.Y != 60 {
		t.Fatalf("group must not move below one cell, got %+v", r)
	}
	e.CanvasMotion(130, 100, true) // footprint snaps to (83,45)
	_, _ = e.CanvasRelease(ButtonPrimary, 130, 100)
	if r := rectOf(t, e, k1); r.X != 103 || r.Y != 55 {
		t.Fatalf("expected group shifted by (33,-5), got %+v", r)
	}
}

func TestArmedReleasePlacesAndSecondaryDisarms(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	e.Arm(domain.VSlider)
	e.CanvasMotion(200, 200, false)
	if r, ok := e.Preview(); !ok || r.W != 30 || r.H != 120 {
		t.Fatalf("unexpected preview %+v %v", r, ok)
	}
	id, err := e.CanvasRelease(ButtonPrimary, 200, 200)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if r := rectOf(t, e, id); r.X != 185 || r.Y != 140 {
		t.Fatalf("unexpected slider rect %+v", r)
	}
	_, _ = e.CanvasRelease(ButtonSecondary, 0, 0)
	if _, armed := e.Armed(); armed {
		t.Fatalf("secondary release must disarm")
	}
}
