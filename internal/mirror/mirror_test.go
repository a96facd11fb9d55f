/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mirror

import (
	"testing"

	"uidesigner/internal/domain"
)

// echoView mimics a toolkit widget that fires its change callback whenever its value is set.
func echoView(f *Field) func(int) {
	return func(v int) { f.Changed(v) }
}

func TestSetDoesNotReachHandlerThroughEchoingView(t *testing.T) {
	var f Field
	calls := 0
	f.Bind(func(int) { calls++ })
	f.Attach(echoView(&f))

	f.Set(42)
	if calls != 0 || f.Value() != 42 {
		t.Fatalf("programmatic set ran handler %d times, value %d", calls, f.Value())
	}
	f.Changed(7)
	if calls != 1 || f.Value() != 7 {
		t.Fatalf("user edit should run handler once, got %d", calls)
	}
}

func TestReflectExceptSkipsEditedField(t *testing.T) {
	var m Mirror
	seen := map[Axis]int{}
	for a := X; a <= H; a++ {
		a := a
		m.Field(a).Attach(func(int) { seen[a]++ })
	}
	m.Reflect(domain.Rect{X: 1, Y: 2, W: 30, H: 40})
	m.ReflectExcept(W, domain.Rect{X: 5, Y: 6, W: 99, H: 70})
	if seen[W] != 1 || seen[X] != 2 {
		t.Fatalf("unexpected view writes %v", seen)
	}
	if r := m.Rect(); r.W != 30 || r.X != 5 || r.H != 70 {
		t.Fatalf("unexpected field values %+v", r)
	}
}
