/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the persisted data model of a plugin interface layout.
// The in-memory registry works on its own records; these types are the
// snapshot/restore form exchanged with storage, export and the shared library.

import "github.com/google/uuid"

// Project is one plugin interface layout. It serializes to a human-readable JSON manifest.
type Project struct {
	Name     string    `json:"name"`
	StableID string    `json:"stableId"`
	URI      string    `json:"uri,omitempty"`
	Window   Size      `json:"window"`
	Metadata Metadata  `json:"metadata,omitempty"`
	Controls []Control `json:"controls"`
}

// Metadata contains optional descriptive metadata for a layout.
type Metadata struct {
	Author     string `json:"author,omitempty"`
	Background string `json:"background,omitempty"` // image path, decoded by the host
	Notes      string `json:"notes,omitempty"`
}

// Size is a width/height pair in window units.
type Size struct {
	W int `json:"width"`
	H int `json:"height"`
}

// Rect is an integer window-space rectangle with a top-left origin.
// Children of containers are stored relative to their parent.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"width"`
	H int `json:"height"`
}

// Adjustment is the numeric range owned by adjustable controls.
type Adjustment struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
}

// Control is one placed interface element.
type Control struct {
	Kind       Kind        `json:"kind"`
	Name       string      `json:"name"`
	Label      string      `json:"label"`
	Geometry   Rect        `json:"geometry"`
	PortIndex  int         `json:"portIndex"`
	Adjustment *Adjustment `json:"adjustment,omitempty"`
	SnapOption SnapOption  `json:"snapOption"`
	Entries    []string    `json:"entries,omitempty"`   // ComboBox items
	ActiveTab  int         `json:"activeTab,omitempty"` // TabBox only
	Image      string      `json:"image,omitempty"`
	Children   []Control   `json:"children,omitempty"`
}

// NewProject returns an empty layout with a fresh stable ID and the default window size.
func NewProject(name string) Project {
	return Project{
		Name:     name,
		StableID: uuid.NewString(),
		Window:   Size{W: 600, H: 400},
		Controls: []Control{},
	}
}

// DefaultAdjustment returns the range new adjustable controls start with.
func DefaultAdjustment() *Adjustment {
	return &Adjustment{Min: 0, Max: 1, Default: 0.5, Step: 0.01}
}

// Count returns the number of controls in the tree, children included.
func Count(cs []Control) int {
	n := 0
	for _, c := range cs {
		n += 1 + Count(c.Children)
	}
	return n
}
