/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"uidesigner/internal/config"
	"uidesigner/internal/domain"
	"uidesigner/internal/export"
	"uidesigner/internal/layout"
	"uidesigner/internal/library"
	applog "uidesigner/internal/log"
	"uidesigner/internal/mirror"
	"uidesigner/internal/registry"
	"uidesigner/internal/storage"
	"uidesigner/internal/ui"
	"uidesigner/internal/version"
)

type cli struct {
	out        io.Writer
	loadConfig func() (config.AppConfig, string, error)

	doc *ui.Document
	sub *layout.NopSubstrate
}

func loadConfig() (config.AppConfig, string, error) {
	cfg, pw, err := config.Load()
	if err != nil {
		applog.WithComponent("cli").Warn("config load failed, using defaults", slog.Any("err", err))
		return config.Defaults(), "", nil
	}
	return cfg, pw, nil
}

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errUsage)
}

func (c *cli) run(args []string) error {
	if len(args) == 0 {
		usage(c.out)
		return nil
	}
	rest := args[1:]
	need := func(n int, what string) error {
		if len(rest) < n {
			return usageErr("%s requires %s", args[0], what)
		}
		return nil
	}
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(c.out, "UI Designer")
		fmt.Fprintln(c.out, version.String())
		return nil
	case "init":
		if err := need(2, "<dir> and <name>"); err != nil {
			return err
		}
		return c.initLayout(rest)
	case "open":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		return c.summary(rest[0])
	case "place":
		if err := need(4, "<dir> <kind> <x> <y>"); err != nil {
			return err
		}
		return c.place(rest)
	case "move", "resize":
		if err := need(4, "<dir> <name> and two numbers"); err != nil {
			return err
		}
		return c.geometry(args[0], rest)
	case "label":
		if err := need(3, "<dir> <name> <text>"); err != nil {
			return err
		}
		return c.edit(rest[0], rest[1], "label "+rest[1], func(ed *layout.Editor, id registry.ID) error {
			return ed.SetLabel(id, strings.Join(rest[2:], " "))
		})
	case "remove":
		if err := need(2, "<dir> <name>"); err != nil {
			return err
		}
		return c.edit(rest[0], rest[1], "remove "+rest[1], func(ed *layout.Editor, id registry.ID) error {
			return ed.Remove(id)
		})
	case "tab":
		if err := need(2, "<dir> <tabbox>"); err != nil {
			return err
		}
		label := ""
		if len(rest) > 2 {
			label = strings.Join(rest[2:], " ")
		}
		return c.edit(rest[0], rest[1], "add tab to "+rest[1], func(ed *layout.Editor, id registry.ID) error {
			_, err := ed.AddTab(id, label)
			return err
		})
	case "find":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		return c.find(rest)
	case "history":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		return c.history(rest)
	case "revert":
		if err := need(2, "<dir> <revision>"); err != nil {
			return err
		}
		return c.revert(rest[0], rest[1])
	case "export":
		if err := need(2, "<dir> and a format"); err != nil {
			return err
		}
		return c.export(rest)
	case "import-legacy":
		if err := need(1, "<file>"); err != nil {
			return err
		}
		return c.importLegacy(rest[0])
	case "publish":
		if err := need(1, "<dir>"); err != nil {
			return err
		}
		return c.publish(rest[0])
	case "fetch":
		if err := need(2, "<stable-id> and <dir>"); err != nil {
			return err
		}
		return c.fetch(rest[0], rest[1])
	case "serve":
		addr := ":8080"
		if len(rest) > 0 {
			addr = rest[0]
		}
		return c.serve(addr)
	case "token":
		return c.token(rest)
	case "ui":
		var dir string
		if len(rest) > 0 {
			dir = rest[0]
		}
		return ui.Run(dir)
	}
	return usageErr("unknown command %q", args[0])
}

// open loads the layout at dir with a headless substrate.
func (c *cli) open(dir string) error {
	cfg, _, err := c.loadConfig()
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(dir)
	c.sub = layout.NewNopSubstrate()
	doc, err := ui.OpenDocument(abs, c.sub, cfg.Settings())
	if err != nil {
		return err
	}
	c.doc = doc
	for _, n := range c.sub.Notices {
		fmt.Fprintln(c.out, n)
	}
	return nil
}

func (c *cli) save(label string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.doc.Save(ctx, label)
}

func (c *cli) initLayout(rest []string) error {
	cfg, _, err := c.loadConfig()
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(rest[0])
	c.sub = layout.NewNopSubstrate()
	doc, err := ui.NewDocument(abs, rest[1], c.sub, cfg.Settings())
	if err != nil {
		return err
	}
	c.doc = doc
	if len(rest) > 2 {
		w, h, ok := parseSize(rest[2])
		if !ok {
			return usageErr("window size must look like 600x400, got %q", rest[2])
		}
		doc.PH.Project.Window = domain.Size{W: w, H: h}
		if err := c.save("init"); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.out, "Created layout at", abs)
	return nil
}

func parseSize(s string) (int, int, bool) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, false
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

func (c *cli) summary(dir string) error {
	if err := c.open(dir); err != nil {
		return err
	}
	p := c.doc.PH.Project
	fmt.Fprintf(c.out, "Layout: %s\n", p.Name)
	fmt.Fprintf(c.out, "Window: %dx%d\n", p.Window.W, p.Window.H)
	fmt.Fprintf(c.out, "Controls: %d\n", domain.Count(p.Controls))
	fmt.Fprintln(c.out, "Root:", c.doc.PH.Root)
	printControls(c.out, p.Controls, "  ")
	return nil
}

func printControls(w io.Writer, cs []domain.Control, indent string) {
	for _, ctl := range cs {
		port := "-"
		if ctl.Kind.Parameterized() {
			port = strconv.Itoa(ctl.PortIndex)
		}
		g := ctl.Geometry
		fmt.Fprintf(w, "%s%-14s %-12s %4d %4d %4d %4d  port %s", indent, ctl.Name, ctl.Kind, g.X, g.Y, g.W, g.H, port)
		if ctl.Label != "" {
			fmt.Fprintf(w, "  %q", ctl.Label)
		}
		fmt.Fprintln(w)
		printControls(w, ctl.Children, indent+"  ")
	}
}

func atoi2(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, usageErr("not a number: %q", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, usageErr("not a number: %q", b)
	}
	return x, y, nil
}

func (c *cli) place(rest []string) error {
	kind, err := domain.ParseKind(rest[1])
	if err != nil {
		return usageErr("%v", err)
	}
	x, y, err := atoi2(rest[2], rest[3])
	if err != nil {
		return err
	}
	if err := c.open(rest[0]); err != nil {
		return err
	}
	ed := c.doc.Editor
	var id registry.ID
	if len(rest) > 4 {
		tab, ok := c.doc.Find(rest[4])
		if !ok {
			return fmt.Errorf("no control named %q", rest[4])
		}
		id, err = ed.PlaceInTab(tab, kind, x, y)
	} else {
		id, err = ed.Place(kind, x, y)
	}
	if err != nil {
		return err
	}
	ctl, _ := ed.Registry().Get(id)
	if err := c.save("place " + ctl.Name); err != nil {
		return err
	}
	r := ctl.Rect
	fmt.Fprintf(c.out, "Placed %s at %d,%d (%dx%d)\n", ctl.Name, r.X, r.Y, r.W, r.H)
	return nil
}

// geometry drives the numeric fields, the same path the inspector takes.
func (c *cli) geometry(cmd string, rest []string) error {
	a, b, err := atoi2(rest[2], rest[3])
	if err != nil {
		return err
	}
	return c.edit(rest[0], rest[1], cmd+" "+rest[1], func(ed *layout.Editor, id registry.ID) error {
		if err := ed.Activate(id); err != nil {
			return err
		}
		m := ed.Fields()
		if cmd == "move" {
			m.Field(mirror.X).Changed(a)
			m.Field(mirror.Y).Changed(b)
		} else {
			m.Field(mirror.W).Changed(a)
			m.Field(mirror.H).Changed(b)
		}
		return nil
	})
}

// edit applies fn to the control named name and saves under label.
func (c *cli) edit(dir, name, label string, fn func(*layout.Editor, registry.ID) error) error {
	if err := c.open(dir); err != nil {
		return err
	}
	id, ok := c.doc.Find(name)
	if !ok {
		return fmt.Errorf("no control named %q", name)
	}
	if err := fn(c.doc.Editor, id); err != nil {
		return err
	}
	if err := c.save(label); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "OK:", label)
	return nil
}

func (c *cli) find(rest []string) error {
	abs, _ := filepath.Abs(rest[0])
	query := strings.Join(rest[1:], " ")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hits, err := storage.FindControls(ctx, abs, query)
	if err != nil {
		return err
	}
	for _, h := range hits {
		g := h.Geometry
		fmt.Fprintf(c.out, "%-28s %-12s %4d %4d %4d %4d  %s\n", h.Path, h.Kind, g.X, g.Y, g.W, g.H, h.Label)
	}
	fmt.Fprintf(c.out, "%d match(es)\n", len(hits))
	return nil
}

func (c *cli) history(rest []string) error {
	limit := 20
	if len(rest) > 1 {
		n, err := strconv.Atoi(rest[1])
		if err != nil {
			return usageErr("limit must be a number")
		}
		limit = n
	}
	if err := c.open(rest[0]); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	revs, err := c.doc.Revisions(ctx, limit)
	if err != nil {
		return err
	}
	for _, r := range revs {
		fmt.Fprintf(c.out, "%6d  %s  %s\n", r.ID, r.TS.Local().Format("2006-01-02 15:04:05"), r.Label)
	}
	if len(revs) == 0 {
		fmt.Fprintln(c.out, "No revisions.")
	}
	return nil
}

func (c *cli) revert(dir, rev string) error {
	id, err := strconv.ParseInt(rev, 10, 64)
	if err != nil {
		return usageErr("revision must be a number")
	}
	if err := c.open(dir); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.doc.Revert(ctx, id); err != nil {
		return err
	}
	if err := c.save(fmt.Sprintf("revert to %d", id)); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Reverted to revision %d\n", id)
	return nil
}

func (c *cli) export(rest []string) error {
	cfg, _, err := c.loadConfig()
	if err != nil {
		return err
	}
	if err := c.open(rest[0]); err != nil {
		return err
	}
	ph := c.doc.PH
	format := strings.ToLower(rest[1])
	switch format {
	case export.PresetReview, export.PresetWeb:
		paths, err := export.BatchExport(ph, export.BatchOptions{Preset: format, GridStep: cfg.Canvas.GridWidth})
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(c.out, "Wrote", p)
		}
		return nil
	}
	out := "layout." + format
	if len(rest) > 2 {
		out = rest[2]
	}
	switch format {
	case "pdf":
		err = export.ExportLayoutPDF(ph, out, export.PDFOptions{GridStep: cfg.Canvas.GridWidth})
	case "png":
		err = export.ExportLayoutPNG(ph, out, export.PNGOptions{Scale: 1})
	case "svg":
		err = export.ExportLayoutSVG(ph, out, export.SVGOptions{Scale: 1})
	default:
		return usageErr("unknown export format %q", rest[1])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Exported", format)
	return nil
}

func (c *cli) importLegacy(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	cfg, pw, err := c.loadConfig()
	if err != nil {
		return err
	}
	n, err := config.ImportLegacy(f, &cfg)
	if err != nil {
		return err
	}
	if err := config.Save(cfg, pw); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported %d setting(s)\n", n)
	return nil
}

func (c *cli) publish(dir string) error {
	cfg, pw, err := c.loadConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Library.DSN) == "" {
		return errors.New("no library database configured (set UID_LIBRARY_DSN)")
	}
	if err := c.open(dir); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, err := library.Open(ctx, cfg.Library.ConnString(pw))
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	ver, err := st.Publish(ctx, c.doc.PH.Project)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Published %s as version %d\n", c.doc.PH.Project.StableID, ver)
	return nil
}

func (c *cli) fetch(stableID, dir string) error {
	cfg, pw, err := c.loadConfig()
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Library.URL) == "" {
		return errors.New("no library URL configured (set UID_LIBRARY_URL)")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client := library.NewClient(cfg.Library.URL, os.Getenv("UID_LIBRARY_TOKEN"))
	if client.Token == "" {
		if err := client.Authenticate(ctx, os.Getenv("USER"), pw); err != nil {
			return err
		}
	}
	proj, ver, err := client.Fetch(ctx, stableID)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(dir)
	if _, err := storage.InitProject(abs, proj); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Fetched %s v%d into %s\n", proj.Name, ver, abs)
	return nil
}

func (c *cli) serve(addr string) error {
	cfg, pw, err := c.loadConfig()
	if err != nil {
		return err
	}
	secret := os.Getenv("UID_LIBRARY_SECRET")
	if secret == "" {
		return errors.New("UID_LIBRARY_SECRET must be set to sign library tokens")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st, err := library.Open(ctx, cfg.Library.ConnString(pw))
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	l := applog.WithComponent("serve")
	if pw == "" {
		l.Warn("no library password in the keyring, token issuing disabled; use `uidesigner token`")
	}
	l.Info("library listening", slog.String("addr", addr))
	h := library.NewHandler(st, library.Auth{Secret: secret, Password: pw})
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	return srv.ListenAndServe()
}

// token prints a bearer token for headless clients (UID_LIBRARY_TOKEN).
func (c *cli) token(rest []string) error {
	secret := os.Getenv("UID_LIBRARY_SECRET")
	if secret == "" {
		return errors.New("UID_LIBRARY_SECRET must be set to sign library tokens")
	}
	subject := "designer"
	if len(rest) > 0 {
		subject = rest[0]
	}
	ttl := time.Hour
	if len(rest) > 1 {
		d, err := time.ParseDuration(rest[1])
		if err != nil || d <= 0 {
			return usageErr("invalid ttl %q", rest[1])
		}
		ttl = d
	}
	tok, exp := library.IssueToken(secret, subject, ttl)
	fmt.Fprintln(c.out, tok)
	fmt.Fprintf(c.out, "Expires %s\n", exp.UTC().Format(time.RFC3339))
	return nil
}
