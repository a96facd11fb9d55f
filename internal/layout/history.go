/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"uidesigner/internal/domain"
	"uidesigner/internal/registry"
	"uidesigner/internal/undo"
)

// state is the undo blob: the control tree plus the shared port counter.
type state struct {
	Controls []domain.Control `json:"controls"`
	Port     int              `json:"port"`
}

func (e *Editor) capture() []byte {
	b, err := json.Marshal(state{Controls: e.reg.Snapshot(), Port: e.reg.PortCounter()})
	if err != nil {
		e.log.ErrorContext(e.logCtx, "capture layout state", slog.Any("err", err))
		return nil
	}
	return b
}

func (e *Editor) record(label string, before []byte) {
	if before == nil {
		return
	}
	e.hist.Push(undo.Snapshot{Label: label, Blob: before, TS: e.now()})
}

// Snapshot returns the complete control tree. It refuses while a drag or group
// move is in progress, so collaborators never see half-applied geometry.
func (e *Editor) Snapshot() ([]domain.Control, error) {
	if e.Busy() {
		return nil, ErrDragActive
	}
	return e.reg.Snapshot(), nil
}

// Restore replaces the layout with cs, rebuilding every surface. History and
// selection are cleared.
func (e *Editor) Restore(cs []domain.Control) error {
	if e.Busy() {
		return ErrDragActive
	}
	if err := e.rebuild(cs, -2); err != nil {
		return err
	}
	e.hist.Clear()
	return nil
}

// rebuild swaps the registry content. port < -1 keeps the counter Restore derives.
func (e *Editor) rebuild(cs []domain.Control, port int) error {
	if err := e.reg.Check(cs); err != nil {
		e.log.WarnContext(e.logCtx, "restore rejected", slog.Int("controls", domain.Count(cs)), slog.Any("err", err))
		e.sub.Notify("INFO", fmt.Sprintf("Could not load layout: %v", err))
		return err
	}
	e.reg.Each(func(id registry.ID, _ *registry.Control) { e.sub.DestroySurface(id) })
	e.sel.Clear()
	if err := e.reg.Restore(cs); err != nil {
		e.sub.Notify("INFO", fmt.Sprintf("Could not load layout: %v", err))
		return err
	}
	if port >= -1 {
		e.reg.SetPortCounter(port)
	}
	for _, id := range e.reg.TopLevel() {
		e.createSurfaces(id)
		if c, _ := e.reg.Get(id); c.Kind == domain.TabBox {
			e.DrawTabBox(id)
		}
	}
	e.sub.RedrawAll()
	return nil
}

func (e *Editor) restoreBlob(b []byte) error {
	var s state
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode undo state: %w", err)
	}
	return e.rebuild(s.Controls, s.Port)
}

// Undo reverts the last edit. It reports false when there is nothing to undo.
func (e *Editor) Undo() (bool, error) {
	if e.Busy() {
		return false, ErrDragActive
	}
	cur := undo.Snapshot{Label: "current", Blob: e.capture(), TS: e.now()}
	s, ok := e.hist.Undo(cur)
	if !ok {
		return false, nil
	}
	return true, e.restoreBlob(s.Blob)
}

// Redo reapplies the last undone edit.
func (e *Editor) Redo() (bool, error) {
	if e.Busy() {
		return false, ErrDragActive
	}
	cur := undo.Snapshot{Label: "current", Blob: e.capture(), TS: e.now()}
	s, ok := e.hist.Redo(cur)
	if !ok {
		return false, nil
	}
	return true, e.restoreBlob(s.Blob)
}
