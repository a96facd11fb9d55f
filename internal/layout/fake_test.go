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
	"uidesigner/internal/registry"
)

// recorder is a substrate that keeps geometry like NopSubstrate and records
// the calls the editor makes.
type recorder struct {
	*NopSubstrate
	cursors  []Cursor
	visible  map[registry.ID]bool
	override map[registry.ID]domain.Rect
	moves    int
}

func newRecorder() *recorder {
	return &recorder{
		NopSubstrate: NewNopSubstrate(),
		visible:      map[registry.ID]bool{},
		override:     map[registry.ID]domain.Rect{},
	}
}

func (r *recorder) SetCursor(_ registry.ID, c Cursor) { r.cursors = append(r.cursors, c) }

func (r *recorder) SetVisible(id registry.ID, v bool) { r.visible[id] = v }

func (r *recorder) MoveSurface(id registry.ID, x, y int) {
	r.moves++
	r.NopSubstrate.MoveSurface(id, x, y)
}

func (r *recorder) QueryBounds(id registry.ID) domain.Rect {
	if b, ok := r.override[id]; ok {
		return b
	}
	return r.NopSubstrate.QueryBounds(id)
}

func newEditor(t *testing.T, s Settings) (*Editor, *recorder) {
	t.Helper()
	rec := newRecorder()
	return New(registry.New(50), rec, s), rec
}

func mustPlace(t *testing.T, e *Editor, k domain.Kind, x, y int) registry.ID {
	t.Helper()
	id, err := e.Place(k, x, y)
	if err != nil {
		t.Fatalf("place %s: %v", k, err)
	}
	return id
}

func rectOf(t *testing.T, e *Editor, id registry.ID) domain.Rect {
	t.Helper()
	c, ok := e.Registry().Get(id)
	if !ok {
		t.Fatalf("control %v not found", id)
	}
	return c.Rect
}
