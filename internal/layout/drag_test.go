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
)

func TestPlaceCentresDefaultSize(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	if r := rectOf(t, e, id); r != (domain.Rect{X: 70, Y: 60, W: 60, H: 80}) {
		t.Fatalf("unexpected knob rect %+v", r)
	}
	if got, ok := e.Active(); !ok || got != id {
		t.Fatalf("placed control should become active")
	}
	if e.Fields().Rect() != rectOf(t, e, id) {
		t.Fatalf("fields not mirrored: %+v", e.Fields().Rect())
	}
}

func TestPressZoneSelectsMode(t *testing.T) {
	cases := []struct {
		name   string
		aspect bool
		x, y   int
		want   Mode
	}{
		{"corner", false, 125, 135, ModeSize},
		{"bottom", false, 90, 135, ModeHeight},
		{"right", false, 125, 80, ModeWidth},
		{"interior", false, 90, 90, ModePosition},
		{"bottom locked", true, 90, 135, ModeSize},
		{"right locked", true, 125, 80, ModeSize},
	}
	for _, c := range cases {
		s := DefaultSettings()
		s.KeepAspect = c.aspect
		e, _ := newEditor(t, s)
		id := mustPlace(t, e, domain.Knob, 100, 100) // {70,60,60,80}
		if err := e.Press(id, ButtonPrimary, c.x, c.y); err != nil {
			t.Fatalf("%s: press: %v", c.name, err)
		}
		if e.Mode() != c.want {
			t.Fatalf("%s: expected %s, got %s", c.name, c.want, e.Mode())
		}
		e.Release(id, ButtonPrimary, c.x, c.y)
		if e.Mode() != ModeNone {
			t.Fatalf("%s: release must reset mode", c.name)
		}
	}
}

func TestWidthDragAccumulatesAndClamps(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	_ = e.Press(id, ButtonPrimary, 125, 80)
	e.Motion(id, 135, 80)
	if w := rectOf(t, e, id).W; w != 70 {
		t.Fatalf("expected width 70, got %d", w)
	}
	e.Motion(id, 140, 80)
	if w := rectOf(t, e, id).W; w != 75 {
		t.Fatalf("expected width 75, got %d", w)
	}
	if e.Fields().W.Value() != 75 {
		t.Fatalf("width field not mirrored: %d", e.Fields().W.Value())
	}
	e.Motion(id, 0, 80)
	e.Release(id, ButtonPrimary, 0, 80)
	c, _ := e.Registry().Get(id)
	if c.Rect.W != 10 || c.Confirmed.W != 10 || c.Rect.H != 80 {
		t.Fatalf("expected clamped and confirmed width 10, got %+v / %+v", c.Rect, c.Confirmed)
	}
}

func TestSizeDragUsesLargerDelta(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	_ = e.Press(id, ButtonPrimary, 125, 135)
	e.Motion(id, 128, 127) // dx=3, dy=-8
	if r := rectOf(t, e, id); r.W != 52 || r.H != 72 {
		t.Fatalf("expected both sides shrunk by 8, got %+v", r)
	}
	e.Motion(id, 133, 122) // dx=5, dy=-5: tie uses horizontal
	if r := rectOf(t, e, id); r.W != 57 || r.H != 77 {
		t.Fatalf("expected tie to grow by 5, got %+v", r)
	}
}

func TestTabBoxHeightDragUsesVerticalDeltaForPages(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	tb := mustPlace(t, e, domain.TabBox, 200, 200) // {140,140,120,120}
	page := e.Registry().Children(tb)[0]
	_ = e.Press(tb, ButtonPrimary, 190, 255)
	if e.Mode() != ModeHeight {
		t.Fatalf("expected height mode, got %s", e.Mode())
	}
	e.Motion(tb, 197, 265)
	e.Release(tb, ButtonPrimary, 197, 265)
	if r := rectOf(t, e, tb); r.H != 130 || r.W != 120 {
		t.Fatalf("unexpected tabbox rect %+v", r)
	}
	if r := rectOf(t, e, page); r.H != 110 || r.W != 120 {
		t.Fatalf("tab page must follow the vertical delta, got %+v", r)
	}
}

func TestPositionDragSnapsWithAnchor(t *testing.T) {
	s := DefaultSettings()
	s.GridSnap = true
	e, _ := newEditor(t, s)
	id := mustPlace(t, e, domain.Knob, 100, 100) // {70,60,60,80}
	_ = e.Press(id, ButtonPrimary, 90, 90)
	e.Motion(id, 104, 97) // raw origin (84,67)
	if r := rectOf(t, e, id); r.X != 75 || r.Y != 60 {
		t.Fatalf("expected snapped origin (75,60), got %+v", r)
	}
	e.Release(id, ButtonPrimary, 104, 97)

	_ = e.SetSnapOption(id, domain.SnapCenter)
	_ = e.Press(id, ButtonPrimary, 90, 90)
	e.Motion(id, 90, 90)
	// 60 wide on a 15 grid: full-cell remainder, x = 75 + 15 - 7
	if r := rectOf(t, e, id); r.X != 83 {
		t.Fatalf("expected centre anchored x 83, got %d", r.X)
	}
	e.Release(id, ButtonPrimary, 90, 90)
}

func TestReleaseAdoptsSubstrateBounds(t *testing.T) {
	e, rec := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	_ = e.Press(id, ButtonPrimary, 90, 90)
	e.Motion(id, 95, 95)
	rec.override[id] = domain.Rect{X: 76, Y: 64, W: 60, H: 80}
	e.Release(id, ButtonPrimary, 95, 95)
	c, _ := e.Registry().Get(id)
	if c.Rect != rec.override[id] || c.Confirmed != rec.override[id] {
		t.Fatalf("release must confirm substrate bounds, got %+v / %+v", c.Rect, c.Confirmed)
	}
	if e.Fields().X.Value() != 76 {
		t.Fatalf("fields must reflect confirmed geometry")
	}
}

func TestHoverCursorOnlyOnChange(t *testing.T) {
	e, rec := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	e.Motion(id, 90, 90)
	e.Motion(id, 91, 92)
	if len(rec.cursors) != 1 || rec.cursors[0] != CursorHand {
		t.Fatalf("expected a single hand cursor, got %v", rec.cursors)
	}
	e.Motion(id, 125, 135)
	if len(rec.cursors) != 2 || rec.cursors[1] != CursorCorner {
		t.Fatalf("expected corner cursor, got %v", rec.cursors)
	}
}

func TestSnapshotRefusedDuringDrag(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	id := mustPlace(t, e, domain.Knob, 100, 100)
	_ = e.Press(id, ButtonPrimary, 90, 90)
	e.Motion(id, 100, 100)
	if _, err := e.Snapshot(); !errors.Is(err, ErrDragActive) {
		t.Fatalf("expected ErrDragActive, got %v", err)
	}
	e.Release(id, ButtonPrimary, 100, 100)
	cs, err := e.Snapshot()
	if err != nil || len(cs) != 1 || cs[0].Geometry.X != 80 {
		t.Fatalf("unexpected snapshot %+v (%v)", cs, err)
	}
}

func TestSecondaryPressOnlyActivates(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	a := mustPlace(t, e, domain.Knob, 100, 100)
	b := mustPlace(t, e, domain.Button, 300, 300)
	if err := e.Press(a, ButtonSecondary, 90, 90); err != nil {
		t.Fatal(err)
	}
	if got, _ := e.Active(); got != a || e.Busy() {
		t.Fatalf("secondary press should activate without a session")
	}
	_ = b
}

func TestSecondaryPressDuringDragIsIgnored(t *testing.T) {
	e, _ := newEditor(t, DefaultSettings())
	a := mustPlace(t, e, domain.Knob, 100, 100) // {70,60}
	b := mustPlace(t, e, domain.Button, 300, 300)

	_ = e.Press(a, ButtonPrimary, 90, 90)
	e.Motion(a, 100, 95)
	if err := e.Press(b, ButtonSecondary, 310, 310); err != nil {
		t.Fatal(err)
	}
	if got, _ := e.Active(); got != a || !e.Busy() {
		t.Fatalf("secondary press must not end the drag or steal activation")
	}
	e.Motion(a, 110, 100)
	e.Release(a, ButtonPrimary, 110, 100)

	c, _ := e.Registry().Get(a)
	if c.Rect.X != 90 || c.Rect.Y != 70 || c.Confirmed != c.Rect {
		t.Fatalf("drag not completed and confirmed: %+v", c)
	}
	name := c.Name
	if ok, err := e.Undo(); !ok || err != nil {
		t.Fatalf("drag should be undoable: %v %v", ok, err)
	}
	id, ok := e.Registry().Find(name)
	if !ok {
		t.Fatalf("%s missing after undo", name)
	}
	if r := rectOf(t, e, id); r.X != 70 || r.Y != 60 {
		t.Fatalf("undo restored %+v", r)
	}
}
