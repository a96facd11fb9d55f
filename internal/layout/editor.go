/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout is the direct-manipulation engine of the designer. An Editor
// owns the control registry, the selection, the drag session and the numeric
// field mirror, and turns pointer events into geometry edits pushed to a
// Substrate. All methods must be called from the single event loop.
package layout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"uidesigner/internal/domain"
	applog "uidesigner/internal/log"
	"uidesigner/internal/mirror"
	"uidesigner/internal/registry"
	"uidesigner/internal/selection"
	"uidesigner/internal/undo"
)

var (
	ErrDragActive       = errors.New("drag session active")
	ErrNoActiveControl  = errors.New("no active control")
	ErrNotAdjustable    = errors.New("control has no adjustment")
	ErrNotTabBox        = errors.New("control is not a tab box")
	ErrTabIndexOutRange = errors.New("tab index out of range")
)

// Settings is the canvas configuration for one editing session.
type Settings struct {
	GridW, GridH int
	GridSnap     bool
	KeepAspect   bool
	// ResizeAll replicates size edits to every control of the same kind.
	ResizeAll bool
	// MoveAll replicates position edits to every control of the same kind.
	MoveAll bool
	// GlobalImages is applied to newly placed controls of a kind.
	GlobalImages map[domain.Kind]string
}

// DefaultSettings returns a 15×15 grid with every toggle off.
func DefaultSettings() Settings { return Settings{GridW: 15, GridH: 15} }

func (s Settings) normalized() Settings {
	if s.GridW <= 0 {
		s.GridW = 15
	}
	if s.GridH <= 0 {
		s.GridH = 15
	}
	return s
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota + 1
	ButtonSecondary
)

// Editor is the explicit editing context passed to every event handler.
type Editor struct {
	reg      *registry.Registry
	sub      Substrate
	sel      selection.Selection
	settings Settings
	fields   mirror.Mirror
	drag     session
	group    groupDrag
	hist     *undo.Manager
	log      *slog.Logger
	logCtx   context.Context
	now      func() time.Time

	armed    domain.Kind
	isArmed  bool
	preview  domain.Rect
	cursor   Cursor
	cursorOn registry.ID
}

// New builds an editor over reg. A nil substrate uses NewNopSubstrate.
func New(reg *registry.Registry, sub Substrate, s Settings) *Editor {
	if sub == nil {
		sub = NewNopSubstrate()
	}
	e := &Editor{
		reg:      reg,
		sub:      sub,
		settings: s.normalized(),
		hist:     undo.NewManager(undo.Config{MaxDepth: 200, MinInterval: 400 * time.Millisecond}),
		log:      applog.WithComponent("layout"),
		logCtx:   context.Background(),
		now:      time.Now,
	}
	e.fields.X.Bind(e.onX)
	e.fields.Y.Bind(e.onY)
	e.fields.W.Bind(e.onWidth)
	e.fields.H.Bind(e.onHeight)
	return e
}

// SetLayoutName tags the editor's log records with the layout being edited.
func (e *Editor) SetLayoutName(name string) {
	e.logCtx = applog.WithLayout(context.Background(), name)
}

// Registry exposes the control registry for read access by collaborators.
func (e *Editor) Registry() *registry.Registry { return e.reg }

// Fields returns the numeric X/Y/W/H fields so a widget toolkit can attach to them.
func (e *Editor) Fields() *mirror.Mirror { return &e.fields }

// Settings returns the current canvas configuration.
func (e *Editor) Settings() Settings { return e.settings }

// SetSettings replaces the canvas configuration.
func (e *Editor) SetSettings(s Settings) {
	e.settings = s.normalized()
	e.sub.RedrawAll()
}

// Active returns the active control, if any.
func (e *Editor) Active() (registry.ID, bool) {
	if _, ok := e.reg.Get(e.sel.Active); !ok {
		return registry.ID{}, false
	}
	return e.sel.Active, true
}

// Selection returns the current selection state.
func (e *Editor) Selection() *selection.Selection { return &e.sel }

// Activate makes id the target of the numeric fields and property edits.
func (e *Editor) Activate(id registry.ID) error {
	c, ok := e.reg.Get(id)
	if !ok {
		return registry.ErrNotFound
	}
	e.sel.Active = id
	e.fields.Reflect(c.Rect)
	e.sub.RedrawAll()
	return nil
}

// Busy reports whether a drag or group move is in progress.
func (e *Editor) Busy() bool { return e.drag.active || e.group.active }

// Arm selects a palette kind; the next canvas release places it.
func (e *Editor) Arm(kind domain.Kind) {
	e.armed, e.isArmed = kind, true
	e.sel.Marquee.Reset()
}

// Disarm cancels a pending palette placement.
func (e *Editor) Disarm() {
	if e.isArmed {
		e.isArmed = false
		e.preview = domain.Rect{}
		e.sub.RedrawAll()
	}
}

// Armed returns the pending palette kind.
func (e *Editor) Armed() (domain.Kind, bool) { return e.armed, e.isArmed }

// Preview returns the footprint drawn under the pointer while a kind is armed.
func (e *Editor) Preview() (domain.Rect, bool) { return e.preview, e.isArmed && e.preview.W > 0 }

// absRect converts a control's live geometry to window space.
func (e *Editor) absRect(id registry.ID) domain.Rect {
	c, ok := e.reg.Get(id)
	if !ok {
		return domain.Rect{}
	}
	r := c.Rect
	for p := e.reg.Parent(id); !p.IsZero(); p = e.reg.Parent(p) {
		pc, ok := e.reg.Get(p)
		if !ok {
			break
		}
		r.X += pc.Rect.X
		r.Y += pc.Rect.Y
	}
	return r
}

// AbsRect returns the window-space geometry of id.
func (e *Editor) AbsRect(id registry.ID) domain.Rect { return e.absRect(id) }

// apply writes a new live geometry and pushes it to the substrate.
func (e *Editor) apply(id registry.ID, r domain.Rect) {
	c, ok := e.reg.Get(id)
	if !ok {
		return
	}
	old := c.Rect
	c.Rect = r
	if old.X != r.X || old.Y != r.Y {
		e.sub.MoveSurface(id, r.X, r.Y)
	}
	if old.W != r.W || old.H != r.H {
		e.sub.ResizeSurface(id, r.W, r.H)
		if c.Kind == domain.ComboBox {
			for _, ch := range e.reg.Children(id) {
				e.apply(ch, registry.MenuRect(r))
			}
		}
	}
	e.sub.RequestRedraw(id)
}

// confirm adopts the substrate's bounds as the last known good geometry.
func (e *Editor) confirm(id registry.ID) {
	c, ok := e.reg.Get(id)
	if !ok {
		return
	}
	if b := e.sub.QueryBounds(id); b.W > 0 && b.H > 0 {
		c.Rect = b
	}
	c.Confirm()
	for _, ch := range e.reg.Children(id) {
		if cc, ok := e.reg.Get(ch); ok && (cc.Kind == domain.Tab || cc.Kind == domain.ComboMenu) {
			e.confirm(ch)
		}
	}
}

func (e *Editor) createSurfaces(id registry.ID) {
	c, ok := e.reg.Get(id)
	if !ok {
		return
	}
	e.sub.CreateSurface(id, e.reg.Parent(id), c.Kind, c.Rect)
	for _, ch := range e.reg.Children(id) {
		e.createSurfaces(ch)
	}
}

// subtree lists id and every descendant, children first.
func (e *Editor) subtree(id registry.ID) []registry.ID {
	var out []registry.ID
	for _, ch := range e.reg.Children(id) {
		out = append(out, e.subtree(ch)...)
	}
	return append(out, id)
}

// Notify forwards a modal notice to the substrate.
func (e *Editor) Notify(title, message string) { e.sub.Notify(title, message) }
