/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package mirror

// Numeric X/Y/W/H fields that follow the active control. A field has two
// entry points: Set for programmatic updates, which never reach the edit
// handler, and Changed for edits coming from the widget.

import "uidesigner/internal/domain"

// Axis names one of the four geometry fields.
type Axis int

const (
	X Axis = iota
	Y
	W
	H
)

func (a Axis) String() string {
	return [...]string{"x", "y", "width", "height"}[a]
}

// Field is one numeric input.
type Field struct {
	value      int
	handler    func(int)
	view       func(int)
	suppressed bool
}

// Bind installs the user-edit handler.
func (f *Field) Bind(handler func(int)) { f.handler = handler }

// Attach installs the sink that pushes values into the on-screen widget.
// The widget may call Changed synchronously from inside the sink.
func (f *Field) Attach(view func(int)) { f.view = view }

// Value returns the current value.
func (f *Field) Value() int { return f.value }

// Set updates the field programmatically. The edit handler does not run,
// even when the view echoes the value back through Changed.
func (f *Field) Set(v int) {
	f.suppressed = true
	defer func() { f.suppressed = false }()
	f.value = v
	if f.view != nil {
		f.view(v)
	}
}

// Changed is called by the widget when its value changes.
func (f *Field) Changed(v int) {
	if f.suppressed {
		return
	}
	f.value = v
	if f.handler != nil {
		f.handler(v)
	}
}

// Mirror groups the four geometry fields.
type Mirror struct {
	X, Y, W, H Field
}

// Field returns the field for an axis.
func (m *Mirror) Field(a Axis) *Field {
	switch a {
	case X:
		return &m.X
	case Y:
		return &m.Y
	case W:
		return &m.W
	default:
		return &m.H
	}
}

// Reflect writes all four fields from r.
func (m *Mirror) Reflect(r domain.Rect) {
	m.X.Set(r.X)
	m.Y.Set(r.Y)
	m.W.Set(r.W)
	m.H.Set(r.H)
}

// ReflectExcept writes every field but the one the user just edited.
func (m *Mirror) ReflectExcept(skip Axis, r domain.Rect) {
	vals := [4]int{r.X, r.Y, r.W, r.H}
	for a := X; a <= H; a++ {
		if a != skip {
			m.Field(a).Set(vals[a])
		}
	}
}

// Rect returns the fields as a rectangle.
func (m *Mirror) Rect() domain.Rect {
	return domain.Rect{X: m.X.value, Y: m.Y.value, W: m.W.value, H: m.H.value}
}
