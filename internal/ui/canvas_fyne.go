//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"uidesigner/internal/domain"
	"uidesigner/internal/layout"
	"uidesigner/internal/registry"
)

var (
	colBackground = color.RGBA{R: 42, G: 42, B: 46, A: 255}
	colGrid       = color.RGBA{R: 58, G: 58, B: 64, A: 255}
	colControl    = color.RGBA{R: 96, G: 110, B: 130, A: 255}
	colContainer  = color.RGBA{R: 70, G: 76, B: 88, A: 255}
	colStroke     = color.RGBA{R: 20, G: 20, B: 24, A: 255}
	colActive     = color.RGBA{R: 240, G: 160, B: 40, A: 255}
	colCaption    = color.RGBA{R: 235, G: 235, B: 235, A: 255}
	colHeader     = color.RGBA{R: 84, G: 90, B: 104, A: 255}
	colPreview    = color.RGBA{R: 120, G: 200, B: 120, A: 90}
	colMarquee    = color.RGBA{R: 120, G: 170, B: 240, A: 255}
)

// DesignCanvas draws the open layout and turns pointer input into editor calls.
// One canvas unit is one window unit of the plugin UI.
type DesignCanvas struct {
	widget.BaseWidget

	doc    *Document
	surf   *Surfaces
	router *Router
	cursor desktop.Cursor
	last   fyne.Position

	// OnError reports errors raised while handling input.
	OnError func(error)
	// OnChange runs after input that may have changed the layout.
	OnChange func()
}

var (
	_ desktop.Mouseable  = (*DesignCanvas)(nil)
	_ desktop.Hoverable  = (*DesignCanvas)(nil)
	_ desktop.Cursorable = (*DesignCanvas)(nil)
	_ fyne.Draggable     = (*DesignCanvas)(nil)
)

func NewDesignCanvas() *DesignCanvas {
	c := &DesignCanvas{cursor: desktop.DefaultCursor}
	c.ExtendBaseWidget(c)
	return c
}

// SetDocument shows doc, whose editor drives surf. A nil doc clears the canvas.
func (c *DesignCanvas) SetDocument(doc *Document, surf *Surfaces) {
	c.doc, c.surf, c.router = doc, surf, nil
	if doc != nil && surf != nil {
		c.router = NewRouter(doc.Editor, surf)
		surf.OnRedraw = c.Refresh
		surf.OnCursor = func(cur layout.Cursor) { c.cursor = fyneCursor(cur) }
	}
	c.Refresh()
}

// Document returns the layout on the canvas, or nil.
func (c *DesignCanvas) Document() *Document { return c.doc }

func (c *DesignCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &designRenderer{c: c}
	r.objects = c.scene()
	return r
}

// windowSize is the plugin window size, or a placeholder when nothing is open.
func (c *DesignCanvas) windowSize() fyne.Size {
	if c.doc == nil {
		return fyne.NewSize(600, 400)
	}
	w, h := c.doc.PH.Project.Window.W, c.doc.PH.Project.Window.H
	if w <= 0 {
		w = 600
	}
	if h <= 0 {
		h = 400
	}
	return fyne.NewSize(float32(w), float32(h))
}

func (c *DesignCanvas) MouseDown(ev *desktop.MouseEvent) {
	if c.router == nil {
		return
	}
	c.last = ev.Position
	x, y := unitPoint(ev.Position)
	c.report(c.router.Down(editorButton(ev.Button), x, y))
}

func (c *DesignCanvas) MouseUp(ev *desktop.MouseEvent) {
	if c.router == nil || !c.router.Pressed() {
		return
	}
	c.last = ev.Position
	x, y := unitPoint(ev.Position)
	_, err := c.router.Up(editorButton(ev.Button), x, y)
	c.report(err)
}

func (c *DesignCanvas) MouseIn(ev *desktop.MouseEvent) { c.move(ev.Position) }

func (c *DesignCanvas) MouseMoved(ev *desktop.MouseEvent) { c.move(ev.Position) }

func (c *DesignCanvas) MouseOut() {}

func (c *DesignCanvas) Dragged(ev *fyne.DragEvent) { c.move(ev.Position) }

// DragEnd releases a press whose MouseUp was lost outside the canvas.
func (c *DesignCanvas) DragEnd() {
	if c.router == nil || !c.router.Pressed() {
		return
	}
	x, y := unitPoint(c.last)
	_, err := c.router.Up(layout.ButtonPrimary, x, y)
	c.report(err)
}

func (c *DesignCanvas) Cursor() desktop.Cursor { return c.cursor }

func (c *DesignCanvas) move(p fyne.Position) {
	if c.router == nil {
		return
	}
	c.last = p
	x, y := unitPoint(p)
	c.router.Move(x, y)
	if _, armed := c.doc.Editor.Armed(); armed || c.router.Pressed() {
		c.Refresh()
	}
}

func (c *DesignCanvas) report(err error) {
	if err != nil && c.OnError != nil {
		c.OnError(err)
	}
	if c.OnChange != nil {
		c.OnChange()
	}
	c.Refresh()
}

func unitPoint(p fyne.Position) (int, int) { return int(p.X), int(p.Y) }

func editorButton(b desktop.MouseButton) layout.Button {
	if b == desktop.MouseButtonSecondary {
		return layout.ButtonSecondary
	}
	return layout.ButtonPrimary
}

func fyneCursor(c layout.Cursor) desktop.Cursor {
	switch c {
	case layout.CursorHand:
		return desktop.PointerCursor
	case layout.CursorRight:
		return desktop.HResizeCursor
	case layout.CursorBottom:
		return desktop.VResizeCursor
	case layout.CursorCorner, layout.CursorPlace:
		return desktop.CrosshairCursor
	default:
		return desktop.DefaultCursor
	}
}

// scene builds the canvas objects back to front.
func (c *DesignCanvas) scene() []fyne.CanvasObject {
	size := c.windowSize()
	bg := canvas.NewRectangle(colBackground)
	bg.Resize(size)
	objs := []fyne.CanvasObject{bg}
	if c.doc == nil {
		return objs
	}
	ed := c.doc.Editor
	st := ed.Settings()
	if st.GridSnap {
		objs = append(objs, gridLines(size, st.GridW, st.GridH)...)
	}

	active, hasActive := ed.Active()
	reg := ed.Registry()
	for _, d := range c.surf.Drawn() {
		ctl, ok := reg.Get(d.ID)
		if !ok {
			continue
		}
		if d.Kind == domain.Tab {
			// pages are drawn through their TabBox header
			continue
		}
		fill := colControl
		if d.Kind.Container() || d.Kind == domain.Frame {
			fill = colContainer
		}
		rect := canvas.NewRectangle(fill)
		rect.StrokeColor = colStroke
		rect.StrokeWidth = 1
		if hasActive && d.ID == active {
			rect.StrokeColor = colActive
			rect.StrokeWidth = 2
		}
		place(rect, d.Abs)
		objs = append(objs, rect)

		if d.Kind == domain.TabBox {
			objs = append(objs, c.tabHeaders(d.ID, d.Abs)...)
			continue
		}
		if d.Kind.Container() {
			continue
		}
		caption := ctl.Label
		switch {
		case d.Kind == domain.ComboMenu:
			caption = "▾"
		case caption == "":
			caption = ctl.Name
		}
		txt := canvas.NewText(caption, colCaption)
		txt.TextSize = 10
		txt.Move(fyne.NewPos(float32(d.Abs.X+3), float32(d.Abs.Y+2)))
		objs = append(objs, txt)
	}

	if r, ok := ed.Preview(); ok {
		pv := canvas.NewRectangle(colPreview)
		pv.StrokeColor = colActive
		pv.StrokeWidth = 1
		place(pv, r)
		objs = append(objs, pv)
	}
	if r, ok := ed.MarqueeRect(); ok {
		mq := canvas.NewRectangle(color.Transparent)
		mq.StrokeColor = colMarquee
		mq.StrokeWidth = 1
		place(mq, r)
		objs = append(objs, mq)
	}
	return objs
}

func (c *DesignCanvas) tabHeaders(id registry.ID, abs domain.Rect) []fyne.CanvasObject {
	headers, err := c.doc.Editor.TabView(id)
	if err != nil {
		return nil
	}
	var objs []fyne.CanvasObject
	for _, h := range headers {
		cell := canvas.NewRectangle(colHeader)
		cell.StrokeColor = colStroke
		cell.StrokeWidth = 1
		if h.Highlight {
			cell.FillColor = colControl
		}
		place(cell, domain.Rect{X: abs.X + h.Slot.X, Y: abs.Y + h.Slot.Y, W: h.Slot.W, H: h.Slot.H})
		txt := canvas.NewText(h.Label, colCaption)
		txt.TextSize = 10
		txt.Move(fyne.NewPos(float32(abs.X+h.Slot.X+4), float32(abs.Y+h.Slot.Y+3)))
		objs = append(objs, cell, txt)
	}
	return objs
}

func gridLines(size fyne.Size, gw, gh int) []fyne.CanvasObject {
	var objs []fyne.CanvasObject
	if gw > 1 {
		for x := float32(gw); x < size.Width; x += float32(gw) {
			ln := canvas.NewLine(colGrid)
			ln.Position1 = fyne.NewPos(x, 0)
			ln.Position2 = fyne.NewPos(x, size.Height)
			objs = append(objs, ln)
		}
	}
	if gh > 1 {
		for y := float32(gh); y < size.Height; y += float32(gh) {
			ln := canvas.NewLine(colGrid)
			ln.Position1 = fyne.NewPos(0, y)
			ln.Position2 = fyne.NewPos(size.Width, y)
			objs = append(objs, ln)
		}
	}
	return objs
}

func place(o fyne.CanvasObject, r domain.Rect) {
	o.Move(fyne.NewPos(float32(r.X), float32(r.Y)))
	o.Resize(fyne.NewSize(float32(r.W), float32(r.H)))
}

type designRenderer struct {
	c       *DesignCanvas
	objects []fyne.CanvasObject
}

func (r *designRenderer) Destroy()                     {}
func (r *designRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *designRenderer) MinSize() fyne.Size           { return r.c.windowSize() }
func (r *designRenderer) Layout(fyne.Size)             {}
func (r *designRenderer) Refresh() {
	r.objects = r.c.scene()
	canvas.Refresh(r.c)
}
