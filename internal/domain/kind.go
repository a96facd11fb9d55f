/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strings"
)

// Kind is the closed set of control variants.
type Kind int

const (
	Knob Kind = iota
	HSlider
	VSlider
	Button
	ToggleButton
	ImageToggle
	ComboBox
	ValueDisplay
	Label
	VMeter
	HMeter
	WaveView
	Frame
	TabBox
	Image
	// Tab is one page of a TabBox. Created with the TabBox and by AddTab, never placed from the palette.
	Tab
	// ComboMenu is the implicit child of a ComboBox (its drop-down button).
	ComboMenu

	kindCount
)

type kindInfo struct {
	name       string
	prefix     string
	adjustable bool
	parameter  bool
	container  bool
	palette    bool
	size       Size
}

// kinds is indexed by Kind. Its length is fixed by kindCount, so a new Kind
// without an entry here is caught by TestKindTableComplete.
var kinds = [kindCount]kindInfo{
	Knob:         {name: "knob", prefix: "Knob", adjustable: true, parameter: true, palette: true, size: Size{60, 80}},
	HSlider:      {name: "hslider", prefix: "HSlider", adjustable: true, parameter: true, palette: true, size: Size{120, 30}},
	VSlider:      {name: "vslider", prefix: "VSlider", adjustable: true, parameter: true, palette: true, size: Size{30, 120}},
	Button:       {name: "button", prefix: "Button", parameter: true, palette: true, size: Size{60, 60}},
	ToggleButton: {name: "toggle", prefix: "Switch", parameter: true, palette: true, size: Size{60, 60}},
	ImageToggle:  {name: "imagetoggle", prefix: "ImageSwitch", parameter: true, palette: true, size: Size{60, 60}},
	ComboBox:     {name: "combobox", prefix: "Combobox", adjustable: true, parameter: true, container: true, palette: true, size: Size{120, 30}},
	ValueDisplay: {name: "valuedisplay", prefix: "ValueDisplay", adjustable: true, parameter: true, palette: true, size: Size{40, 30}},
	Label:        {name: "label", prefix: "Label", parameter: true, palette: true, size: Size{60, 30}},
	VMeter:       {name: "vmeter", prefix: "VMeter", adjustable: true, parameter: true, palette: true, size: Size{10, 120}},
	HMeter:       {name: "hmeter", prefix: "HMeter", adjustable: true, parameter: true, palette: true, size: Size{120, 10}},
	WaveView:     {name: "waveview", prefix: "WaveView", adjustable: true, parameter: true, palette: true, size: Size{120, 120}},
	Frame:        {name: "frame", prefix: "Frame", palette: true, size: Size{120, 120}},
	TabBox:       {name: "tabbox", prefix: "Tab", container: true, palette: true, size: Size{120, 120}},
	Image:        {name: "image", prefix: "Image", palette: true, size: Size{120, 120}},
	Tab:          {name: "tab", prefix: "Tab", container: true, size: Size{120, 100}},
	ComboMenu:    {name: "combomenu", prefix: "Menu", size: Size{20, 30}},
}

// Kinds returns every kind that can be placed from the palette, in palette order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		if kinds[k].palette {
			out = append(out, k)
		}
	}
	return out
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }

func (k Kind) info() kindInfo {
	if !k.Valid() {
		return kindInfo{name: fmt.Sprintf("kind(%d)", int(k))}
	}
	return kinds[k]
}

func (k Kind) String() string { return k.info().name }

// NamePrefix is the prefix used for generated control names ("Knob3").
func (k Kind) NamePrefix() string { return k.info().prefix }

// Adjustable reports whether the kind owns a numeric range.
func (k Kind) Adjustable() bool { return k.info().adjustable }

// Parameterized reports whether the kind binds a plugin port.
// Frame, TabBox, Image and the structural kinds carry no parameter.
func (k Kind) Parameterized() bool { return k.info().parameter }

// Container reports whether the kind owns registry children.
func (k Kind) Container() bool { return k.info().container }

// DefaultSize is the footprint a palette placement starts with.
func (k Kind) DefaultSize() Size { return k.info().size }

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(kinds[k].name), nil
}

// UnmarshalText decodes a kind name (case-insensitive).
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind maps a kind name to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := Kind(0); k < kindCount; k++ {
		if kinds[k].name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown control kind %q", s)
}

// SnapOption is the horizontal anchor used when grid snapping a control.
type SnapOption int

const (
	SnapNone SnapOption = iota
	SnapCenter
	SnapRight
)

func (o SnapOption) String() string {
	switch o {
	case SnapCenter:
		return "center"
	case SnapRight:
		return "right"
	default:
		return "none"
	}
}

func (o SnapOption) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *SnapOption) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "none", "left":
		*o = SnapNone
	case "center":
		*o = SnapCenter
	case "right":
		*o = SnapRight
	default:
		return fmt.Errorf("unknown snap option %q", string(b))
	}
	return nil
}
