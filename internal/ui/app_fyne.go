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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"uidesigner/internal/config"
	"uidesigner/internal/crash"
	"uidesigner/internal/domain"
	"uidesigner/internal/export"
	"uidesigner/internal/layout"
	"uidesigner/internal/library"
	applog "uidesigner/internal/log"
	"uidesigner/internal/mirror"
	"uidesigner/internal/registry"
	"uidesigner/internal/storage"
	"uidesigner/internal/version"
)

// designer is the state behind the main window.
type designer struct {
	w      fyne.Window
	prefs  fyne.Preferences
	l      *slog.Logger
	canvas *DesignCanvas
	status *widget.Label

	cfg      config.AppConfig
	password string

	doc     *Document
	watcher *storage.ManifestWatcher

	fields  map[mirror.Axis]*widget.Entry
	name    *widget.Label
	label   *widget.Entry
	port    *widget.Entry
	snap    *widget.Select
	palette *widget.List
}

// Run starts the desktop designer. projectDir, when not empty, is opened immediately.
func Run(projectDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	d := &designer{l: l}
	defer crash.RecoverWith(func() *storage.ProjectHandle {
		if d.doc == nil {
			return nil
		}
		return d.doc.PH
	})

	cfg, pw, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	d.cfg, d.password = cfg, pw

	fyneApp := app.NewWithID("uidesigner")
	d.w = fyneApp.NewWindow("UI Designer")
	d.prefs = fyneApp.Preferences()
	winW := d.prefs.IntWithFallback("window.width", 1100)
	winH := d.prefs.IntWithFallback("window.height", 720)
	if winW < 800 {
		winW = 800
	}
	if winH < 560 {
		winH = 560
	}
	d.w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	d.status = widget.NewLabel("Ready")
	d.canvas = NewDesignCanvas()
	d.canvas.OnError = func(err error) { dialog.ShowError(err, d.w) }
	d.canvas.OnChange = d.refreshInspector

	left := container.NewBorder(widget.NewLabel("Palette"), d.settingsBox(), nil, nil, d.buildPalette())
	right := d.buildInspector()
	center := container.NewScroll(d.canvas)
	split := container.NewHSplit(left, container.NewHSplit(center, right))
	split.Offset = 0.16
	d.w.SetContent(container.NewBorder(nil, d.status, nil, nil, split))
	d.w.SetMainMenu(d.buildMenu())
	d.addShortcuts()

	d.w.SetCloseIntercept(func() {
		sz := d.w.Canvas().Size()
		d.prefs.SetInt("window.width", int(sz.Width))
		d.prefs.SetInt("window.height", int(sz.Height))
		if err := config.Save(d.cfg, d.password); err != nil {
			l.Warn("config save failed", slog.Any("err", err))
		}
		d.stopWatch()
		d.w.Close()
	})

	if strings.TrimSpace(projectDir) != "" {
		d.open(func(s *Surfaces) (*Document, error) {
			return OpenDocument(projectDir, s, d.cfg.Settings())
		})
	}
	d.w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

// open swaps in the document produced by load, wiring a fresh surface set.
func (d *designer) open(load func(*Surfaces) (*Document, error)) {
	surf := NewSurfaces()
	surf.OnNotify = func(title, message string) { dialog.ShowInformation(title, message, d.w) }
	doc, err := load(surf)
	if err != nil {
		d.l.Error("open layout failed", slog.Any("err", err))
		dialog.ShowError(err, d.w)
		return
	}
	d.stopWatch()
	d.doc = doc
	d.canvas.SetDocument(doc, surf)
	d.bindFields()
	d.startWatch()
	addRecentProject(d.prefs, doc.PH.Root)
	d.w.SetTitle("UI Designer - " + doc.PH.Project.Name)
	d.status.SetText("Opened " + doc.PH.Root)
	d.refreshInspector()
}

func (d *designer) startWatch() {
	mw, err := storage.WatchManifest(d.doc.PH.Root)
	if err != nil {
		d.l.Warn("manifest watch unavailable", slog.Any("err", err))
		return
	}
	d.watcher = mw
	doc := d.doc
	go func() {
		for range mw.Events {
			seen := time.Now()
			fyne.Do(func() {
				if d.doc != doc || doc.OwnWrite(seen) || doc.Editor.Busy() {
					return
				}
				if err := doc.Reload(); err != nil {
					return
				}
				d.canvas.Refresh()
				d.refreshInspector()
				d.status.SetText("Reloaded after an external change")
			})
		}
	}()
}

func (d *designer) stopWatch() {
	if d.watcher != nil {
		_ = d.watcher.Close()
		d.watcher = nil
	}
}

func (d *designer) editor() (*layout.Editor, bool) {
	if d.doc == nil {
		dialog.ShowInformation("UI Designer", "No layout open.", d.w)
		return nil, false
	}
	return d.doc.Editor, true
}

func (d *designer) activeControl() (registry.ID, *registry.Control, bool) {
	if d.doc == nil {
		return registry.ID{}, nil, false
	}
	id, ok := d.doc.Editor.Active()
	if !ok {
		return registry.ID{}, nil, false
	}
	c, ok := d.doc.Editor.Registry().Get(id)
	return id, c, ok
}

func (d *designer) buildPalette() fyne.CanvasObject {
	kinds := domain.Kinds()
	d.palette = widget.NewList(
		func() int { return len(kinds) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(kinds[i].NamePrefix())
		},
	)
	d.palette.OnSelected = func(i widget.ListItemID) {
		if d.doc == nil {
			d.palette.UnselectAll()
			return
		}
		d.doc.Editor.Arm(kinds[i])
		d.status.SetText("Click the canvas to place a " + kinds[i].String() + ", right click to cancel")
	}
	return d.palette
}

func (d *designer) settingsBox() fyne.CanvasObject {
	c := d.cfg.Canvas
	apply := func() {
		d.cfg.Canvas = c
		if d.doc != nil {
			d.doc.Editor.SetSettings(d.cfg.Settings())
			d.canvas.Refresh()
		}
	}
	snap := widget.NewCheck("Snap to grid", func(v bool) { c.GridSnap = v; apply() })
	snap.SetChecked(c.GridSnap)
	aspect := widget.NewCheck("Keep aspect ratio", func(v bool) { c.KeepAspectRatio = v; apply() })
	aspect.SetChecked(c.KeepAspectRatio)
	resizeAll := widget.NewCheck("Resize all of kind", func(v bool) { c.ResizeAll = v; apply() })
	resizeAll.SetChecked(c.ResizeAll)
	moveAll := widget.NewCheck("Move all of kind", func(v bool) { c.MoveAll = v; apply() })
	moveAll.SetChecked(c.MoveAll)
	return container.NewVBox(widget.NewSeparator(), snap, aspect, resizeAll, moveAll)
}

func (d *designer) buildInspector() fyne.CanvasObject {
	d.name = widget.NewLabel("Nothing selected")
	d.fields = map[mirror.Axis]*widget.Entry{}
	items := []*widget.FormItem{}
	for _, a := range []mirror.Axis{mirror.X, mirror.Y, mirror.W, mirror.H} {
		e := widget.NewEntry()
		d.fields[a] = e
		items = append(items, widget.NewFormItem(strings.ToUpper(a.String()[:1]), e))
	}
	geom := widget.NewForm(items...)

	d.label = widget.NewEntry()
	d.label.SetPlaceHolder("Caption")
	d.label.OnSubmitted = func(s string) {
		if id, _, ok := d.activeControl(); ok {
			d.report(d.doc.Editor.SetLabel(id, s))
		}
	}
	d.port = widget.NewEntry()
	d.port.SetPlaceHolder("Port")
	d.port.OnSubmitted = func(s string) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || d.doc == nil {
			return
		}
		d.report(d.doc.Editor.SetPortIndex(v))
	}
	d.snap = widget.NewSelect([]string{"none", "center", "right"}, func(s string) {
		id, c, ok := d.activeControl()
		if !ok || c.SnapOption.String() == s {
			return
		}
		opt := map[string]domain.SnapOption{"none": domain.SnapNone, "center": domain.SnapCenter, "right": domain.SnapRight}[s]
		d.report(d.doc.Editor.SetSnapOption(id, opt))
	})

	addTab := widget.NewButton("Add Tab", func() {
		id, c, ok := d.activeControl()
		if !ok || c.Kind != domain.TabBox {
			dialog.ShowInformation("Add Tab", "Select a tab box first.", d.w)
			return
		}
		_, err := d.doc.Editor.AddTab(id, "")
		d.report(err)
	})
	removeTab := widget.NewButton("Remove Tab", func() {
		id, c, ok := d.activeControl()
		if !ok || c.Kind != domain.TabBox {
			dialog.ShowInformation("Remove Tab", "Select a tab box first.", d.w)
			return
		}
		d.report(d.doc.Editor.RemoveTab(id, c.ActiveTab))
	})
	comboEntry := widget.NewEntry()
	comboEntry.SetPlaceHolder("Combo entry")
	comboEntry.OnSubmitted = func(s string) {
		if id, c, ok := d.activeControl(); ok && c.Kind == domain.ComboBox {
			d.report(d.doc.Editor.AddComboEntry(id, s))
			comboEntry.SetText("")
		}
	}
	remove := widget.NewButton("Remove Control", d.removeActive)

	return container.NewVBox(
		d.name, geom,
		widget.NewForm(
			widget.NewFormItem("Label", d.label),
			widget.NewFormItem("Port", d.port),
			widget.NewFormItem("Snap", d.snap),
		),
		container.NewHBox(addTab, removeTab),
		comboEntry,
		remove,
	)
}

// bindFields attaches the inspector entries to the open editor's mirror fields.
func (d *designer) bindFields() {
	m := d.doc.Editor.Fields()
	for a, e := range d.fields {
		f := m.Field(a)
		f.Attach(func(v int) { e.SetText(strconv.Itoa(v)) })
		e.OnChanged = func(s string) {
			v, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return
			}
			f.Changed(v)
			d.canvas.Refresh()
		}
		e.SetText(strconv.Itoa(f.Value()))
	}
}

func (d *designer) refreshInspector() {
	if d.palette != nil && d.doc != nil {
		if _, armed := d.doc.Editor.Armed(); !armed {
			d.palette.UnselectAll()
		}
	}
	_, c, ok := d.activeControl()
	if !ok {
		d.name.SetText("Nothing selected")
		return
	}
	port := "-"
	if c.Kind.Parameterized() {
		port = strconv.Itoa(c.PortIndex)
	}
	d.name.SetText(fmt.Sprintf("%s (%s, port %s)", c.Name, c.Kind, port))
	d.label.SetText(c.Label)
	d.port.SetText(strconv.Itoa(c.PortIndex))
	d.snap.SetSelected(c.SnapOption.String())
}

func (d *designer) report(err error) {
	if err != nil {
		dialog.ShowError(err, d.w)
	}
	d.canvas.Refresh()
	d.refreshInspector()
}

func (d *designer) removeActive() {
	id, _, ok := d.activeControl()
	if !ok {
		dialog.ShowInformation("Remove Control", "Nothing selected.", d.w)
		return
	}
	d.report(d.doc.Editor.Remove(id))
}

func (d *designer) addShortcuts() {
	c := d.w.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { d.save() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { d.undo(false) })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) { d.undo(true) })
	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete:
			if d.doc != nil {
				d.removeActive()
			}
		case fyne.KeyEscape:
			if d.doc != nil {
				d.doc.Editor.Disarm()
				d.report(nil)
			}
		}
	})
}

func (d *designer) save() {
	if d.doc == nil {
		dialog.ShowInformation("Save", "No layout open.", d.w)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.doc.Save(ctx, "save"); err != nil {
		d.l.Error("save failed", slog.Any("err", err))
		dialog.ShowError(err, d.w)
		return
	}
	d.status.SetText("Saved " + d.doc.PH.ManifestPath)
}

func (d *designer) undo(redo bool) {
	ed, ok := d.editor()
	if !ok {
		return
	}
	var (
		done bool
		err  error
	)
	if redo {
		done, err = ed.Redo()
	} else {
		done, err = ed.Undo()
	}
	if err == nil && !done {
		d.status.SetText("Nothing to undo")
	}
	d.report(err)
}

func (d *designer) buildMenu() *fyne.MainMenu {
	newItem := fyne.NewMenuItem("New…", func() {
		dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			root := uri.Path()
			nameEntry := widget.NewEntry()
			nameEntry.SetPlaceHolder("Plugin name")
			dialog.NewForm("New Layout", "Create", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Name", nameEntry),
			}, func(ok bool) {
				name := strings.TrimSpace(nameEntry.Text)
				if !ok {
					return
				}
				if name == "" {
					dialog.ShowInformation("New Layout", "Please enter a name.", d.w)
					return
				}
				d.open(func(s *Surfaces) (*Document, error) {
					return NewDocument(root, name, s, d.cfg.Settings())
				})
			}, d.w).Show()
		}, d.w).Show()
	})
	openItem := fyne.NewMenuItem("Open…", func() {
		dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			root := uri.Path()
			d.open(func(s *Surfaces) (*Document, error) { return OpenDocument(root, s, d.cfg.Settings()) })
		}, d.w).Show()
	})
	recentItem := fyne.NewMenuItem("Open Recent", nil)
	recentItem.ChildMenu = fyne.NewMenu("Open Recent", d.recentItems()...)
	saveItem := fyne.NewMenuItem("Save", d.save)
	revisionsItem := fyne.NewMenuItem("Revisions…", d.showRevisions)
	fileMenu := fyne.NewMenu("File", newItem, openItem, recentItem, saveItem, fyne.NewMenuItemSeparator(), revisionsItem)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { d.undo(false) }),
		fyne.NewMenuItem("Redo", func() { d.undo(true) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Remove Control", d.removeActive),
	)

	exportMenu := fyne.NewMenu("Export",
		fyne.NewMenuItem("Layout Sheet as PDF…", func() { d.exportFile(".pdf") }),
		fyne.NewMenuItem("Mockup as PNG…", func() { d.exportFile(".png") }),
		fyne.NewMenuItem("Mockup as SVG…", func() { d.exportFile(".svg") }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Review Set", func() { d.batch(export.PresetReview) }),
		fyne.NewMenuItem("Web Set", func() { d.batch(export.PresetWeb) }),
	)

	libraryMenu := fyne.NewMenu("Library",
		fyne.NewMenuItem("Publish", d.publish),
		fyne.NewMenuItem("Fetch…", d.fetch),
	)

	aboutItem := fyne.NewMenuItem("About UI Designer", func() {
		exe, _ := os.Executable()
		info := fmt.Sprintf("UI Designer\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe)
		dialog.ShowInformation("About", info, d.w)
	})
	return fyne.NewMainMenu(fileMenu, editMenu, exportMenu, libraryMenu, fyne.NewMenu("About", aboutItem))
}

func (d *designer) recentItems() []*fyne.MenuItem {
	var items []*fyne.MenuItem
	for _, root := range loadRecentProjects(d.prefs) {
		items = append(items, fyne.NewMenuItem(root, func() {
			d.open(func(s *Surfaces) (*Document, error) { return OpenDocument(root, s, d.cfg.Settings()) })
		}))
	}
	if len(items) == 0 {
		none := fyne.NewMenuItem("(none)", nil)
		none.Disabled = true
		items = append(items, none)
	}
	return items
}

func (d *designer) showRevisions() {
	if d.doc == nil {
		dialog.ShowInformation("Revisions", "No layout open.", d.w)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	revs, err := d.doc.Revisions(ctx, 50)
	if err != nil {
		dialog.ShowError(err, d.w)
		return
	}
	if len(revs) == 0 {
		dialog.ShowInformation("Revisions", "No saved revisions yet.", d.w)
		return
	}
	list := widget.NewList(
		func() int { return len(revs) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(revs[i].TS.Local().Format("2006-01-02 15:04:05") + "  " + revs[i].Label)
		},
	)
	var dlg dialog.Dialog
	list.OnSelected = func(i widget.ListItemID) {
		id := revs[i].ID
		dialog.ShowConfirm("Revert", "Load this revision? Unsaved edits are lost.", func(ok bool) {
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			d.report(d.doc.Revert(ctx, id))
			dlg.Hide()
		}, d.w)
	}
	box := container.NewGridWrap(fyne.NewSize(420, 320), list)
	dlg = dialog.NewCustom("Revisions", "Close", box, d.w)
	dlg.Show()
}

func (d *designer) exportFile(ext string) {
	if d.doc == nil {
		dialog.ShowInformation("Export", "No layout open.", d.w)
		return
	}
	if err := d.doc.Sync(); err != nil {
		dialog.ShowError(err, d.w)
		return
	}
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, d.w)
			return
		}
		if uc == nil {
			return
		}
		out := uc.URI().Path()
		_ = uc.Close()
		if !strings.HasSuffix(strings.ToLower(out), ext) {
			out += ext
		}
		switch ext {
		case ".pdf":
			err = export.ExportLayoutPDF(d.doc.PH, out, export.PDFOptions{GridStep: d.cfg.Canvas.GridWidth})
		case ".png":
			err = export.ExportLayoutPNG(d.doc.PH, out, export.PNGOptions{Scale: 1})
		case ".svg":
			err = export.ExportLayoutSVG(d.doc.PH, out, export.SVGOptions{Scale: 1})
		}
		if err != nil {
			d.l.Error("export failed", slog.String("path", out), slog.Any("err", err))
			dialog.ShowError(err, d.w)
			return
		}
		dialog.ShowInformation("Export", "Exported to "+out, d.w)
	}, d.w)
	save.SetFileName("layout" + ext)
	save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
	save.Show()
}

func (d *designer) batch(preset string) {
	if d.doc == nil {
		dialog.ShowInformation("Export", "No layout open.", d.w)
		return
	}
	if err := d.doc.Sync(); err != nil {
		dialog.ShowError(err, d.w)
		return
	}
	paths, err := export.BatchExport(d.doc.PH, export.BatchOptions{Preset: preset})
	if err != nil {
		dialog.ShowError(err, d.w)
		return
	}
	dialog.ShowInformation("Export", fmt.Sprintf("Wrote %d files to %s", len(paths), filepath.Dir(paths[0])), d.w)
}

func (d *designer) publish() {
	if d.doc == nil {
		dialog.ShowInformation("Publish", "No layout open.", d.w)
		return
	}
	if !d.cfg.Library.Enabled || strings.TrimSpace(d.cfg.Library.DSN) == "" {
		dialog.ShowInformation("Publish", "No library database configured.", d.w)
		return
	}
	if err := d.doc.Sync(); err != nil {
		dialog.ShowError(err, d.w)
		return
	}
	proj := d.doc.PH.Project
	dsn := d.cfg.Library.ConnString(d.password)
	d.status.SetText("Publishing…")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ver, err := publishLayout(ctx, dsn, proj)
		fyne.Do(func() {
			if err != nil {
				d.l.Error("publish failed", slog.Any("err", err))
				d.status.SetText("Publish failed.")
				dialog.ShowError(err, d.w)
				return
			}
			d.status.SetText(fmt.Sprintf("Published %s v%d", proj.Name, ver))
		})
	}()
}

func publishLayout(ctx context.Context, dsn string, proj domain.Project) (int64, error) {
	st, err := library.Open(ctx, dsn)
	if err != nil {
		return 0, err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return 0, err
	}
	return st.Publish(ctx, proj)
}

func (d *designer) fetch() {
	if strings.TrimSpace(d.cfg.Library.URL) == "" {
		dialog.ShowInformation("Fetch", "No library URL configured.", d.w)
		return
	}
	client := library.NewClient(d.cfg.Library.URL, "")
	pw := d.password
	d.status.SetText("Contacting library…")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		var entries []library.Entry
		err := client.Authenticate(ctx, os.Getenv("USER"), pw)
		if err == nil {
			entries, err = client.ListLayouts(ctx)
		}
		fyne.Do(func() {
			if err != nil {
				d.status.SetText("Library unavailable.")
				dialog.ShowError(err, d.w)
				return
			}
			d.status.SetText(fmt.Sprintf("%d layouts in library", len(entries)))
			d.chooseFetched(client, entries)
		})
	}()
}

func (d *designer) chooseFetched(client *library.Client, entries []library.Entry) {
	if len(entries) == 0 {
		dialog.ShowInformation("Fetch", "The library is empty.", d.w)
		return
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = fmt.Sprintf("%s v%d (%d controls)", e.Name, e.Version, e.Controls)
	}
	pick := widget.NewSelect(names, nil)
	dialog.NewForm("Fetch Layout", "Next", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Layout", pick),
	}, func(ok bool) {
		if !ok || pick.SelectedIndex() < 0 {
			return
		}
		entry := entries[pick.SelectedIndex()]
		dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			root := uri.Path()
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			proj, _, err := client.Fetch(ctx, entry.StableID)
			if err != nil {
				dialog.ShowError(err, d.w)
				return
			}
			if _, err := storage.InitProject(root, proj); err != nil {
				dialog.ShowError(err, d.w)
				return
			}
			d.open(func(s *Surfaces) (*Document, error) { return OpenDocument(root, s, d.cfg.Settings()) })
		}, d.w).Show()
	}, d.w).Show()
}

const recentPrefsKey = "recent.layouts"
const recentMax = 10

func loadRecentProjects(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		_ = json.Unmarshal([]byte(raw), &items)
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(s, storage.ManifestFileName)); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentProjects(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentProject(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentProjects(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// case-insensitive for Windows paths
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentProjects(p, out)
}
