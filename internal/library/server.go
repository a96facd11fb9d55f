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
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"uidesigner/internal/domain"
	applog "uidesigner/internal/log"
	"uidesigner/internal/version"
)

// Catalog is the read side of the library served over HTTP.
type Catalog interface {
	List(ctx context.Context) ([]Entry, error)
	Latest(ctx context.Context, stableID string) (domain.Project, int64, error)
}

// LayoutEnvelope is the response body of GET /api/layouts/{stableID}.
type LayoutEnvelope struct {
	StableID string         `json:"stable_id"`
	Version  int64          `json:"version"`
	Layout   domain.Project `json:"layout"`
}

// Auth configures token handling of the HTTP API.
type Auth struct {
	// Secret signs bearer tokens.
	Secret string
	// Password must be presented (HTTP Basic) to obtain a token. Empty turns
	// the token endpoint off; tokens then come from IssueToken only.
	Password string
	// TTL of issued tokens; zero means one hour, capped at 24 hours.
	TTL time.Duration
}

var (
	errIssuingDisabled = errors.New("token issuing is disabled on this server")
	errBadCredentials  = errors.New("invalid credentials")
	errMissingToken    = errors.New("missing bearer token")
	errBadToken        = errors.New("invalid token")
	errTokenExpired    = errors.New("token expired")
)

const (
	tokenAudience = "uidesigner-library"
	maxTokenTTL   = 24 * time.Hour
)

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type server struct {
	cat  Catalog
	auth Auth
	tok  tokens
	log  *slog.Logger
}

// NewHandler serves the read-only library API:
//
//	GET  /healthz
//	GET  /version
//	POST /api/auth/token      (Basic auth with the library password)
//	GET  /api/layouts         (bearer)
//	GET  /api/layouts/{id}    (bearer)
func NewHandler(cat Catalog, auth Auth) http.Handler {
	s := &server{
		cat:  cat,
		auth: auth,
		tok:  tokens{key: []byte(auth.Secret), now: time.Now},
		log:  applog.WithComponent("library"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(version.String()))
	})
	mux.HandleFunc("POST /api/auth/token", s.issue)
	mux.HandleFunc("GET /api/layouts", s.bearer(s.list))
	mux.HandleFunc("GET /api/layouts/{id}", s.bearer(s.layout))
	return mux
}

func (s *server) issue(w http.ResponseWriter, r *http.Request) {
	if s.auth.Password == "" {
		writeError(w, http.StatusForbidden, errIssuingDisabled)
		return
	}
	user, pass, ok := r.BasicAuth()
	if !ok || subtle.ConstantTimeCompare([]byte(pass), []byte(s.auth.Password)) != 1 {
		s.log.WarnContext(r.Context(), "token refused", slog.String("remote", r.RemoteAddr), slog.String("user", user))
		w.Header().Set("WWW-Authenticate", `Basic realm="uidesigner library"`)
		writeError(w, http.StatusUnauthorized, errBadCredentials)
		return
	}
	if user == "" {
		user = "designer"
	}
	tok, exp := s.tok.issue(user, s.auth.TTL)
	s.log.InfoContext(r.Context(), "token issued", slog.String("sub", user), slog.Time("exp", exp))
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok, ExpiresAt: exp.UTC().Format(time.RFC3339)})
}

func (s *server) list(w http.ResponseWriter, r *http.Request, _ string) {
	list, err := s.cat.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []Entry{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) layout(w http.ResponseWriter, r *http.Request, sub string) {
	id := r.PathValue("id")
	p, ver, err := s.cat.Latest(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.log.DebugContext(applog.WithLayout(r.Context(), p.Name), "layout served", slog.String("sub", sub), slog.Int64("version", ver))
	writeJSON(w, http.StatusOK, LayoutEnvelope{StableID: id, Version: ver, Layout: p})
}

// bearer admits requests carrying a valid token and passes on its subject.
func (s *server) bearer(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheme, tok, _ := strings.Cut(r.Header.Get("Authorization"), " ")
		tok = strings.TrimSpace(tok)
		if !strings.EqualFold(scheme, "Bearer") || tok == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, errMissingToken)
			return
		}
		sub, err := s.tok.verify(tok)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			writeError(w, http.StatusUnauthorized, err)
			return
		}
		next(w, r, sub)
	}
}

// IssueToken signs a token for subject without going through the HTTP API,
// for operators handing tokens to headless clients.
func IssueToken(secret, subject string, ttl time.Duration) (string, time.Time) {
	return tokens{key: []byte(secret), now: time.Now}.issue(subject, ttl)
}

type claims struct {
	Sub string `json:"sub"`
	Aud string `json:"aud"`
	Exp int64  `json:"exp"`
}

// tokens are "<claims>.<mac>", both base64url; the MAC is HMAC-SHA256 over the
// encoded claims.
type tokens struct {
	key []byte
	now func() time.Time
}

func (t tokens) issue(sub string, ttl time.Duration) (string, time.Time) {
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := t.now().Add(min(ttl, maxTokenTTL)).Truncate(time.Second)
	b, _ := json.Marshal(claims{Sub: sub, Aud: tokenAudience, Exp: exp.Unix()})
	enc := base64.RawURLEncoding.EncodeToString(b)
	return enc + "." + base64.RawURLEncoding.EncodeToString(t.mac(enc)), exp
}

func (t tokens) verify(tok string) (string, error) {
	enc, sig, ok := strings.Cut(tok, ".")
	if !ok {
		return "", errBadToken
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(mac, t.mac(enc)) {
		return "", errBadToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", errBadToken
	}
	var c claims
	if err := json.Unmarshal(raw, &c); err != nil || c.Aud != tokenAudience {
		return "", errBadToken
	}
	if !t.now().Before(time.Unix(c.Exp, 0)) {
		return "", errTokenExpired
	}
	return c.Sub, nil
}

func (t tokens) mac(enc string) []byte {
	h := hmac.New(sha256.New, t.key)
	_, _ = h.Write([]byte(enc))
	return h.Sum(nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
