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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"uidesigner/internal/domain"
)

// Client reads the library over HTTP, for designers without database access.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a library client. A trailing slash on baseURL is dropped.
func NewClient(baseURL string, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.do(req, dest)
}

// do sends req and decodes a 2xx JSON body into dest. Error bodies carry
// {"error": "..."}, which is folded into the returned error.
func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("library %s %s: %s: %s", req.Method, req.URL.Path, resp.Status, e.Error)
		}
		return fmt.Errorf("library %s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Authenticate exchanges the library password for a bearer token, kept for
// later calls. subject names the caller in server logs.
func (c *Client) Authenticate(ctx context.Context, subject, password string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/auth/token", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(subject, password)
	var out tokenResponse
	if err := c.do(req, &out); err != nil {
		return err
	}
	c.Token = out.Token
	return nil
}

// ListLayouts returns the published layouts.
func (c *Client) ListLayouts(ctx context.Context) ([]Entry, error) {
	var list []Entry
	if err := c.getJSON(ctx, "/api/layouts", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Fetch returns the newest published version of stableID.
func (c *Client) Fetch(ctx context.Context, stableID string) (domain.Project, int64, error) {
	var env LayoutEnvelope
	if err := c.getJSON(ctx, "/api/layouts/"+url.PathEscape(stableID), &env); err != nil {
		return domain.Project{}, 0, err
	}
	return env.Layout, env.Version, nil
}
