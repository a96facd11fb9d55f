package ui

import (
	"testing"

	"uidesigner/internal/domain"
	"uidesigner/internal/layout"
	"uidesigner/internal/registry"
)

func newRouted(t *testing.T) (*layout.Editor, *Surfaces, *Router) {
	t.Helper()
	s := NewSurfaces()
	ed := layout.New(registry.New(0), s, layout.DefaultSettings())
	return ed, s, NewRouter(ed, s)
}

func place(t *testing.T, r *Router, ed *layout.Editor, k domain.Kind, x, y int) registry.ID {
	t.Helper()
	ed.Arm(k)
	r.Move(x, y)
	if err := r.Down(layout.ButtonPrimary, x, y); err != nil {
		t.Fatalf("down: %v", err)
	}
	id, err := r.Up(layout.ButtonPrimary, x, y)
	if err != nil || id.IsZero() {
		t.Fatalf("place %v: %v %v", k, id, err)
	}
	ed.Disarm()
	return id
}

func TestRouterPlacesAndDrags(t *testing.T) {
	ed, s, r := newRouted(t)
	id := place(t, r, ed, domain.Knob, 100, 100)
	if got := s.Abs(id); got != (domain.Rect{X: 70, Y: 60, W: 60, H: 80}) {
		t.Fatalf("placed at %+v", got)
	}

	if err := r.Down(layout.ButtonPrimary, 100, 100); err != nil {
		t.Fatalf("down: %v", err)
	}
	if ed.Mode() != layout.ModePosition {
		t.Fatalf("mode = %v", ed.Mode())
	}
	r.Move(130, 110)
	if _, err := r.Up(layout.ButtonPrimary, 130, 110); err != nil {
		t.Fatalf("up: %v", err)
	}
	c, _ := ed.Registry().Get(id)
	if c.Rect != (domain.Rect{X: 100, Y: 70, W: 60, H: 80}) || c.Confirmed != c.Rect {
		t.Fatalf("after drag rect=%+v confirmed=%+v", c.Rect, c.Confirmed)
	}
	if s.Abs(id) != c.Rect {
		t.Fatalf("surface out of sync: %+v", s.Abs(id))
	}
}

func TestRouterCanvasMarquee(t *testing.T) {
	ed, _, r := newRouted(t)
	place(t, r, ed, domain.Knob, 100, 100)
	if err := r.Down(layout.ButtonPrimary, 300, 300); err != nil {
		t.Fatal(err)
	}
	r.Move(350, 340)
	if !r.Pressed() {
		t.Fatalf("router lost the press")
	}
	m, ok := ed.MarqueeRect()
	if !ok || m != (domain.Rect{X: 300, Y: 300, W: 50, H: 40}) {
		t.Fatalf("marquee = %+v %v", m, ok)
	}
	if _, err := r.Up(layout.ButtonSecondary, 350, 340); err != nil {
		t.Fatal(err)
	}
	if _, ok := ed.MarqueeRect(); ok {
		t.Fatalf("secondary release should clear the marquee")
	}
}

func TestRouterPlacesIntoActiveTab(t *testing.T) {
	ed, s, r := newRouted(t)
	box := place(t, r, ed, domain.TabBox, 300, 200) // {240,140,120,120}
	tabs := ed.Registry().Children(box)
	if len(tabs) != 1 {
		t.Fatalf("tabbox has %d tabs", len(tabs))
	}
	btn := place(t, r, ed, domain.Button, 300, 210)
	if p := ed.Registry().Parent(btn); p != tabs[0] {
		t.Fatalf("button parent = %v, want first tab", p)
	}
	if got := s.Abs(btn); got != (domain.Rect{X: 270, Y: 180, W: 60, H: 60}) {
		t.Fatalf("button at %+v", got)
	}
	if id, ok := s.HitTest(280, 190); !ok || id != btn {
		t.Fatalf("HitTest = %v", id)
	}
}
