/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package selection

import (
	"testing"

	"uidesigner/internal/domain"
	"uidesigner/internal/registry"
)

func TestMarqueeNormalizesCorners(t *testing.T) {
	var m Marquee
	m.Begin(100, 80)
	if m.Active() || m.Contains(50, 50) {
		t.Fatalf("a marquee that was never extended selects nothing")
	}
	m.Extend(20, 10)
	r := m.Rect()
	if r.X != 20 || r.Y != 10 || r.W != 80 || r.H != 70 {
		t.Fatalf("unexpected rect %+v", r)
	}
	if !m.Contains(21, 11) || m.Contains(20, 40) {
		t.Fatalf("containment must be exclusive on the near edge")
	}
	m.Translate(5, 5)
	if m.Rect().X != 25 || m.Rect().Y != 15 {
		t.Fatalf("translate broken: %+v", m.Rect())
	}
}

func TestCaptureUsesConfirmedOrigin(t *testing.T) {
	reg := registry.New(10)
	in, _ := reg.Place(domain.Knob, 30, 30, 60, 80)
	out, _ := reg.Place(domain.Knob, 300, 30, 60, 80)
	edge, _ := reg.Place(domain.Button, 10, 30, 60, 60)

	// live geometry drifted outside but the confirmed origin still counts
	c, _ := reg.Get(in)
	c.Rect.X = 500

	var s Selection
	s.Marquee.Begin(10, 10)
	s.Marquee.Extend(200, 200)
	got := s.Capture(reg)
	if len(got) != 1 || got[0] != in {
		t.Fatalf("expected only %v captured, got %v (out=%v edge=%v)", in, got, out, edge)
	}
	s.Clear()
	if s.Marquee.Active() || len(s.Members()) != 0 || !s.Active.IsZero() {
		t.Fatalf("clear did not reset selection")
	}
}
