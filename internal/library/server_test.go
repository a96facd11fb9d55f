/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package library

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"uidesigner/internal/domain"
)

type memCatalog struct {
	layouts map[string]domain.Project
}

func (m memCatalog) List(context.Context) ([]Entry, error) {
	var out []Entry
	for id, p := range m.layouts {
		out = append(out, Entry{StableID: id, Name: p.Name, Version: 1, Controls: domain.Count(p.Controls)})
	}
	return out, nil
}

func (m memCatalog) Latest(_ context.Context, id string) (domain.Project, int64, error) {
	p, ok := m.layouts[id]
	if !ok {
		return domain.Project{}, 0, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return p, 3, nil
}

const testPassword = "open sesame"

func newTestServer(t *testing.T, auth Auth) (*httptest.Server, domain.Project) {
	t.Helper()
	p := domain.NewProject("Compressor")
	p.Controls = []domain.Control{{Kind: domain.Knob, Name: "Knob0", Label: "Ratio", Geometry: domain.Rect{W: 60, H: 80}}}
	srv := httptest.NewServer(NewHandler(memCatalog{layouts: map[string]domain.Project{p.StableID: p}}, auth))
	t.Cleanup(srv.Close)
	return srv, p
}

func TestClientFetchesWithToken(t *testing.T) {
	srv, p := newTestServer(t, Auth{Secret: "test-secret", Password: testPassword})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := NewClient(srv.URL+"/", "")
	if err := c.Authenticate(ctx, "tester", testPassword); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	list, err := c.ListLayouts(ctx)
	if err != nil || len(list) != 1 || list[0].StableID != p.StableID || list[0].Controls != 1 {
		t.Fatalf("unexpected list %+v (%v)", list, err)
	}
	got, ver, err := c.Fetch(ctx, p.StableID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if ver != 3 || got.Name != "Compressor" || got.Controls[0].Kind != domain.Knob {
		t.Fatalf("unexpected layout v%d %+v", ver, got)
	}
	if _, _, err := c.Fetch(ctx, "missing"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 for unknown layout, got %v", err)
	}
}

func TestTokenEndpointRequiresPassword(t *testing.T) {
	srv, _ := newTestServer(t, Auth{Secret: "test-secret", Password: testPassword})

	resp, err := http.Post(srv.URL+"/api/auth/token", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous token request: expected 401, got %d", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Fatalf("401 without WWW-Authenticate challenge")
	}

	c := NewClient(srv.URL, "")
	err = c.Authenticate(context.Background(), "tester", "guess")
	if err == nil || !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("wrong password: expected invalid credentials, got %v", err)
	}
	if c.Token != "" {
		t.Fatalf("token kept after refused authentication")
	}
	if _, err := c.ListLayouts(context.Background()); err == nil {
		t.Fatalf("layouts listed without a token")
	}
}

func TestTokenEndpointDisabledWithoutPassword(t *testing.T) {
	srv, p := newTestServer(t, Auth{Secret: "test-secret"})
	c := NewClient(srv.URL, "")
	if err := c.Authenticate(context.Background(), "tester", ""); err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 from a server without password, got %v", err)
	}

	tok, exp := IssueToken("test-secret", "ops", 2*time.Hour)
	if until := time.Until(exp); until < time.Hour || until > 2*time.Hour {
		t.Fatalf("unexpected expiry %v", exp)
	}
	c = NewClient(srv.URL, tok)
	if _, _, err := c.Fetch(context.Background(), p.StableID); err != nil {
		t.Fatalf("operator token rejected: %v", err)
	}
}

func TestLayoutsRequireToken(t *testing.T) {
	srv, _ := newTestServer(t, Auth{Secret: "test-secret", Password: testPassword})
	resp, err := http.Get(srv.URL + "/api/layouts")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	c := NewClient(srv.URL, "garbage.token")
	if _, err := c.ListLayouts(context.Background()); err == nil {
		t.Fatalf("forged token accepted")
	}
	other, _ := IssueToken("another-secret", "mallory", time.Hour)
	c = NewClient(srv.URL, other)
	if _, err := c.ListLayouts(context.Background()); err == nil {
		t.Fatalf("token signed with a foreign secret accepted")
	}
}

func TestTokenExpiryAndClaims(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tk := tokens{key: []byte("s"), now: func() time.Time { return now }}

	tok, exp := tk.issue("me", 0)
	if !exp.Equal(now.Add(time.Hour)) {
		t.Fatalf("default ttl: exp %v", exp)
	}
	if sub, err := tk.verify(tok); err != nil || sub != "me" {
		t.Fatalf("verify: %q %v", sub, err)
	}
	if _, long := tk.issue("me", 72*time.Hour); !long.Equal(now.Add(maxTokenTTL)) {
		t.Fatalf("ttl not capped: %v", long)
	}

	later := tk
	later.now = func() time.Time { return now.Add(time.Hour) }
	if _, err := later.verify(tok); !errors.Is(err, errTokenExpired) {
		t.Fatalf("expected errTokenExpired, got %v", err)
	}
	if _, err := (tokens{key: []byte("other"), now: tk.now}).verify(tok); !errors.Is(err, errBadToken) {
		t.Fatalf("wrong key: expected errBadToken, got %v", err)
	}

	enc, _, _ := strings.Cut(tok, ".")
	forged := enc + "." + base64.RawURLEncoding.EncodeToString([]byte("not a mac"))
	if _, err := tk.verify(forged); !errors.Is(err, errBadToken) {
		t.Fatalf("forged mac: expected errBadToken, got %v", err)
	}

	b, _ := json.Marshal(claims{Sub: "me", Aud: "someone-else", Exp: now.Add(time.Hour).Unix()})
	foreign := base64.RawURLEncoding.EncodeToString(b)
	foreign += "." + base64.RawURLEncoding.EncodeToString(tk.mac(foreign))
	if _, err := tk.verify(foreign); !errors.Is(err, errBadToken) {
		t.Fatalf("foreign audience: expected errBadToken, got %v", err)
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("migrations/0002_version_controls.sql"); err != nil || v != 2 {
		t.Fatalf("parseVersion = %d %v", v, err)
	}
	if _, err := parseVersion("init.sql"); err == nil {
		t.Fatalf("expected error for unnumbered file")
	}
}
