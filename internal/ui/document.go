/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui hosts the designer front end. The document, surface and router
// types are toolkit-free and shared with the command line; the Fyne window is
// only compiled with -tags fyne.
package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"uidesigner/internal/domain"
	"uidesigner/internal/layout"
	applog "uidesigner/internal/log"
	"uidesigner/internal/registry"
	"uidesigner/internal/storage"
)

// MaxRevisions is how many saved revisions the index keeps per layout.
const MaxRevisions = 100

// ErrRevisionNotFound is returned by Revert for an unknown revision ID.
var ErrRevisionNotFound = errors.New("revision not found")

// Document is an open layout: the project on disk plus the editor working on it.
type Document struct {
	PH     *storage.ProjectHandle
	Editor *layout.Editor
	log    *slog.Logger
	logCtx context.Context

	savedAt time.Time
}

// NewDocument creates a layout named name in dir and opens it.
func NewDocument(dir, name string, sub layout.Substrate, s layout.Settings) (*Document, error) {
	ph, err := storage.InitProject(dir, domain.NewProject(name))
	if err != nil {
		return nil, err
	}
	return newDocument(ph, sub, s)
}

// OpenDocument opens the layout in dir. A layout recovered from a backup is
// reported through the substrate.
func OpenDocument(dir string, sub layout.Substrate, s layout.Settings) (*Document, error) {
	ph, err := storage.Open(dir)
	if err != nil {
		return nil, err
	}
	return newDocument(ph, sub, s)
}

func newDocument(ph *storage.ProjectHandle, sub layout.Substrate, s layout.Settings) (*Document, error) {
	ed := layout.New(registry.New(0), sub, s)
	if err := ed.Restore(ph.Project.Controls); err != nil {
		return nil, fmt.Errorf("load %s: %w", ph.ManifestPath, err)
	}
	ed.SetLayoutName(ph.Project.Name)
	d := &Document{
		PH:     ph,
		Editor: ed,
		log:    applog.WithComponent("document"),
		logCtx: applog.WithLayout(context.Background(), ph.Project.Name),
	}
	if ph.Recovered {
		d.log.WarnContext(d.logCtx, "opened from backup", slog.String("root", ph.Root))
		ed.Notify("INFO", "The layout file could not be read. The latest backup was opened instead.")
	}
	d.log.InfoContext(d.logCtx, "layout opened", slog.String("root", ph.Root), slog.Int("controls", domain.Count(ph.Project.Controls)))
	return d, nil
}

// Sync copies the editor's controls into the project.
func (d *Document) Sync() error {
	cs, err := d.Editor.Snapshot()
	if err != nil {
		return err
	}
	d.PH.Project.Controls = cs
	return nil
}

// Save writes the manifest and records a revision labelled label. A failed
// revision write is logged; the manifest is what counts.
func (d *Document) Save(ctx context.Context, label string) error {
	if err := d.Sync(); err != nil {
		return err
	}
	ctx = applog.WithLayout(ctx, d.PH.Project.Name)
	if err := storage.Save(d.PH); err != nil {
		d.log.ErrorContext(ctx, "save failed", slog.Any("err", err))
		d.Editor.Notify("ERROR", fmt.Sprintf("Could not save %s: %v", d.PH.ManifestPath, err))
		return err
	}
	d.savedAt = time.Now()
	blob, err := json.Marshal(d.PH.Project)
	if err != nil {
		return fmt.Errorf("marshal revision: %w", err)
	}
	if err := storage.SaveRevision(ctx, d.PH, label, blob, time.Now()); err != nil {
		d.log.WarnContext(ctx, "revision not recorded", slog.Any("err", err))
		return nil
	}
	if _, err := storage.PruneRevisions(ctx, d.PH, MaxRevisions); err != nil {
		d.log.WarnContext(ctx, "revision prune failed", slog.Any("err", err))
	}
	d.log.InfoContext(ctx, "layout saved", slog.String("label", label), slog.Int("controls", domain.Count(d.PH.Project.Controls)))
	return nil
}

// Revisions lists the most recent saved revisions, newest first.
func (d *Document) Revisions(ctx context.Context, limit int) ([]storage.Revision, error) {
	return storage.ListRevisions(ctx, d.PH, limit)
}

// Revert loads revision id into the editor. The manifest on disk is left
// alone until the next Save.
func (d *Document) Revert(ctx context.Context, id int64) error {
	revs, err := storage.ListRevisions(ctx, d.PH, MaxRevisions)
	if err != nil {
		return err
	}
	for _, r := range revs {
		if r.ID != id {
			continue
		}
		var p domain.Project
		if err := json.Unmarshal(r.Blob, &p); err != nil {
			return fmt.Errorf("decode revision %d: %w", id, err)
		}
		if err := d.Editor.Restore(p.Controls); err != nil {
			return err
		}
		d.PH.Project.Controls = p.Controls
		d.PH.Project.Window = p.Window
		d.log.InfoContext(applog.WithLayout(ctx, d.PH.Project.Name), "reverted", slog.Int64("revision", id), slog.String("label", r.Label))
		return nil
	}
	return fmt.Errorf("revision %d: %w", id, ErrRevisionNotFound)
}

// OwnWrite reports whether a manifest change seen at t is the echo of our own Save.
func (d *Document) OwnWrite(t time.Time) bool {
	return !d.savedAt.IsZero() && t.Sub(d.savedAt) < time.Second
}

// Reload rereads the manifest from disk, for changes made outside the designer.
func (d *Document) Reload() error {
	ph, err := storage.Open(d.PH.Root)
	if err != nil {
		d.log.WarnContext(d.logCtx, "reload failed", slog.Any("err", err))
		d.Editor.Notify("INFO", fmt.Sprintf("Could not reload layout: %v", err))
		return err
	}
	if err := d.Editor.Restore(ph.Project.Controls); err != nil {
		d.log.WarnContext(d.logCtx, "reload rejected, keeping the open layout", slog.Any("err", err))
		return err
	}
	d.PH = ph
	d.Editor.SetLayoutName(ph.Project.Name)
	d.logCtx = applog.WithLayout(context.Background(), ph.Project.Name)
	d.log.InfoContext(d.logCtx, "layout reloaded", slog.Int("controls", domain.Count(ph.Project.Controls)))
	return nil
}

// Find returns the control named name, searching the whole tree.
func (d *Document) Find(name string) (registry.ID, bool) {
	var found registry.ID
	d.Editor.Registry().Each(func(id registry.ID, c *registry.Control) {
		if found.IsZero() && c.Name == name {
			found = id
		}
	})
	return found, !found.IsZero()
}
