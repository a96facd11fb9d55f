/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"testing"

	"uidesigner/internal/domain"
)

func TestSnapNoneIsIdempotent(t *testing.T) {
	for _, g := range []int{1, 7, 15, 30} {
		for x := -95; x <= 160; x += 3 {
			sx, sy := Snap(x, x+11, 40, g, g, domain.SnapNone)
			sx2, sy2 := Snap(sx, sy, 40, g, g, domain.SnapNone)
			if sx != sx2 || sy != sy2 {
				t.Fatalf("g=%d x=%d: snap not idempotent (%d,%d) -> (%d,%d)", g, x, sx, sy, sx2, sy2)
			}
			if sx%g != 0 || sx > x {
				t.Fatalf("g=%d x=%d: expected cell origin at or below raw, got %d", g, x, sx)
			}
		}
	}
}

func TestSnapAnchorsStayInsideCell(t *testing.T) {
	const g = 30
	for w := 1; w <= g; w++ {
		for x := 0; x < 200; x += 7 {
			cell := (x / g) * g
			for _, opt := range []domain.SnapOption{domain.SnapCenter, domain.SnapRight} {
				sx, _ := Snap(x, 0, w, g, g, opt)
				if sx+w > cell+g {
					t.Fatalf("opt=%s w=%d x=%d: right edge %d exceeds cell end %d", opt, w, x, sx+w, cell+g)
				}
			}
		}
	}
}

func TestSnapOffsets(t *testing.T) {
	// 60 wide on a 15 grid reduces to a full cell remainder.
	if x, y := Snap(47, 52, 60, 15, 15, domain.SnapCenter); x != 45+15-7 || y != 45 {
		t.Fatalf("center wide: got (%d,%d)", x, y)
	}
	if x, _ := Snap(47, 0, 10, 15, 15, domain.SnapCenter); x != 45+15-20 {
		t.Fatalf("center narrow: got %d", x)
	}
	if x, _ := Snap(47, 0, 40, 15, 15, domain.SnapRight); x != 45+15-10 {
		t.Fatalf("right: got %d", x)
	}
	if x, y := Snap(47, 52, 40, 0, 15, domain.SnapRight); x != 47 || y != 52 {
		t.Fatalf("zero grid must return raw point, got (%d,%d)", x, y)
	}
	if x, _ := Snap(-1, 0, 10, 15, 15, domain.SnapNone); x != -15 {
		t.Fatalf("negative raw must floor, got %d", x)
	}
}

func TestInsideIsExclusive(t *testing.T) {
	r := domain.Rect{X: 10, Y: 10, W: 20, H: 20}
	if Inside(r, 10, 15) || Inside(r, 30, 15) || Inside(r, 15, 10) || Inside(r, 15, 30) {
		t.Fatalf("edge points must not be contained")
	}
	if !Inside(r, 11, 11) || !Inside(r, 29, 29) {
		t.Fatalf("points one unit inside must be contained")
	}
}

func TestNormalizeAndEdgeZone(t *testing.T) {
	r := Normalize(50, 40, 10, 5)
	if r != (domain.Rect{X: 10, Y: 5, W: 40, H: 35}) {
		t.Fatalf("unexpected normalized rect %+v", r)
	}
	cases := []struct {
		x, y int
		want Zone
	}{
		{55, 75, Corner},
		{20, 75, BottomEdge},
		{55, 20, RightEdge},
		{50, 70, Interior},
	}
	for _, c := range cases {
		if got := EdgeZone(60, 80, c.x, c.y); got != c.want {
			t.Fatalf("EdgeZone(%d,%d) = %s, want %s", c.x, c.y, got, c.want)
		}
	}
	if Clamp(-4) != MinLength || Clamp(25) != 25 {
		t.Fatalf("clamp floor broken")
	}
	if LargerDelta(3, -3) != 3 || LargerDelta(2, -5) != -5 {
		t.Fatalf("larger delta tie-break broken")
	}
}
