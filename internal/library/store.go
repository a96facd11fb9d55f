/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package library is the shared layout library: published layouts live in
// PostgreSQL, keyed by their stable ID, with every published version kept.
package library

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"uidesigner/internal/domain"
	applog "uidesigner/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound reports a stable ID with no published version.
var ErrNotFound = errors.New("layout not found in library")

// Entry is the listing projection of a published layout.
type Entry struct {
	StableID  string    `json:"stable_id"`
	Name      string    `json:"name"`
	Author    string    `json:"author,omitempty"`
	Version   int64     `json:"version"`
	Controls  int       `json:"controls"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is a PostgreSQL-backed library.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to dsn through the pgx driver and checks the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("library dsn is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{db: db, log: applog.WithComponent("library")}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Migrate applies embedded SQL migrations in filename order, each exactly once.
func (s *Store) Migrate(ctx context.Context) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return err
	}
	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES($1, $2)`, version, fname); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", fname, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", fname, err)
		}
		s.log.Info("migration applied", slog.String("file", fname))
	}
	return nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int64]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("select schema_migrations: %w", err)
	}
	defer rows.Close()
	applied := map[int64]bool{}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}

// Publish stores proj as the next version of its stable ID and returns that version.
func (s *Store) Publish(ctx context.Context, proj domain.Project) (int64, error) {
	if strings.TrimSpace(proj.StableID) == "" {
		return 0, errors.New("layout has no stable id")
	}
	manifest, err := json.Marshal(proj)
	if err != nil {
		return 0, fmt.Errorf("marshal layout: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id, version int64
	err = tx.QueryRowContext(ctx, `INSERT INTO layouts(stable_id, name, author, version, updated_at)
		VALUES($1, $2, $3, 1, now())
		ON CONFLICT (stable_id) DO UPDATE SET name = EXCLUDED.name, author = EXCLUDED.author,
			version = layouts.version + 1, updated_at = now()
		RETURNING id, version`, proj.StableID, proj.Name, proj.Metadata.Author).Scan(&id, &version)
	if err != nil {
		return 0, fmt.Errorf("upsert layout: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO layout_versions(layout_id, version, manifest, controls) VALUES($1, $2, $3, $4)`,
		id, version, string(manifest), domain.Count(proj.Controls)); err != nil {
		return 0, fmt.Errorf("insert version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.log.Info("layout published", slog.String("stable_id", proj.StableID), slog.Int64("version", version))
	return version, nil
}

// Latest returns the newest published version of stableID.
func (s *Store) Latest(ctx context.Context, stableID string) (domain.Project, int64, error) {
	var (
		version int64
		raw     []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT v.version, v.manifest FROM layout_versions v
		JOIN layouts l ON l.id = v.layout_id
		WHERE l.stable_id = $1 ORDER BY v.version DESC LIMIT 1`, stableID).Scan(&version, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, 0, fmt.Errorf("%s: %w", stableID, ErrNotFound)
	}
	if err != nil {
		return domain.Project{}, 0, err
	}
	var p domain.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Project{}, 0, fmt.Errorf("decode %s v%d: %w", stableID, version, err)
	}
	return p, version, nil
}

// List returns every published layout, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT l.stable_id, l.name, l.author, l.version, coalesce(v.controls, 0), l.updated_at
		FROM layouts l LEFT JOIN layout_versions v ON v.layout_id = l.id AND v.version = l.version
		ORDER BY l.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.StableID, &e.Name, &e.Author, &e.Version, &e.Controls, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
