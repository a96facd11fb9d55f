/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"uidesigner/internal/domain"
	"uidesigner/internal/layout"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

// CanvasConfig holds the designer toggles that shape drag and resize behavior.
type CanvasConfig struct {
	GridWidth       int  `yaml:"grid_width"`
	GridHeight      int  `yaml:"grid_height"`
	GridSnap        bool `yaml:"grid_snap"`
	KeepAspectRatio bool `yaml:"keep_aspect_ratio"`
	ResizeAll       bool `yaml:"resize_all"` // "use global size"
	MoveAll         bool `yaml:"move_all"`
}

// ImagesConfig holds the global images applied to newly placed controls.
type ImagesConfig struct {
	Knob      string `yaml:"knob"`
	Button    string `yaml:"button"`
	Switch    string `yaml:"switch"`
	UseKnob   bool   `yaml:"use_knob"`
	UseButton bool   `yaml:"use_button"`
	UseSwitch bool   `yaml:"use_switch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// LibraryConfig points at the shared layout library.
type LibraryConfig struct {
	DSN     string `yaml:"dsn"`
	URL     string `yaml:"url"` // HTTP endpoint for designers without database access
	Enabled bool   `yaml:"enabled"`
	// Password is not stored on disk; it lives in the OS keychain.
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Images        ImagesConfig  `yaml:"images"`
	Logging       LoggingConfig `yaml:"logging"`
	Library       LibraryConfig `yaml:"library"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{GridWidth: 15, GridHeight: 15},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Library:       LibraryConfig{URL: "http://localhost:8080"},
	}
}

// Env var names used as overrides.
const (
	EnvGridWidth      = "UID_GRID_WIDTH"
	EnvGridHeight     = "UID_GRID_HEIGHT"
	EnvGridSnap       = "UID_GRID_SNAP"
	EnvKeepAspect     = "UID_KEEP_ASPECT"
	EnvResizeAll      = "UID_RESIZE_ALL"
	EnvMoveAll        = "UID_MOVE_ALL"
	EnvLibraryDSN     = "UID_LIBRARY_DSN"
	EnvLibraryURL     = "UID_LIBRARY_URL"
	EnvLibraryEnabled = "UID_LIBRARY_ENABLED"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "UID_LOG_LEVEL"
	EnvLogFormat = "UID_LOG_FORMAT"
	EnvLogSource = "UID_LOG_SOURCE"
	EnvLogFile   = "UID_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "UiDesigner"
	keyringPassword = "library_password"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "UiDesigner")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "UiDesigner")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "uidesigner")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the library password from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	pw, _ := tokenStore.Get(keyringService, keyringPassword)
	return cfg, pw, nil
}

// Save writes the user config YAML and persists the password into OS keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := tokenStore.Set(keyringService, keyringPassword, password); err != nil {
			return err
		}
	}
	return nil
}

// ForgetPassword removes the library password from the keyring.
func ForgetPassword() error {
	return tokenStore.Delete(keyringService, keyringPassword)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Canvas.GridWidth > 0 {
		dst.Canvas.GridWidth = src.Canvas.GridWidth
	}
	if src.Canvas.GridHeight > 0 {
		dst.Canvas.GridHeight = src.Canvas.GridHeight
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.Canvas.GridSnap = src.Canvas.GridSnap
	dst.Canvas.KeepAspectRatio = src.Canvas.KeepAspectRatio
	dst.Canvas.ResizeAll = src.Canvas.ResizeAll
	dst.Canvas.MoveAll = src.Canvas.MoveAll

	dst.Images = src.Images

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}

	if strings.TrimSpace(src.Library.DSN) != "" {
		dst.Library.DSN = strings.TrimSpace(src.Library.DSN)
	}
	if strings.TrimSpace(src.Library.URL) != "" {
		dst.Library.URL = strings.TrimSpace(src.Library.URL)
	}
	dst.Library.Enabled = src.Library.Enabled
}

func envBool(name string, dst *bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		lv := strings.ToLower(v)
		*dst = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
}

func envInt(name string, dst *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt(EnvGridWidth, &cfg.Canvas.GridWidth)
	envInt(EnvGridHeight, &cfg.Canvas.GridHeight)
	envBool(EnvGridSnap, &cfg.Canvas.GridSnap)
	envBool(EnvKeepAspect, &cfg.Canvas.KeepAspectRatio)
	envBool(EnvResizeAll, &cfg.Canvas.ResizeAll)
	envBool(EnvMoveAll, &cfg.Canvas.MoveAll)

	if v := strings.TrimSpace(os.Getenv(EnvLibraryDSN)); v != "" {
		cfg.Library.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLibraryURL)); v != "" {
		cfg.Library.URL = v
	}
	envBool(EnvLibraryEnabled, &cfg.Library.Enabled)

	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	envBool(EnvLogSource, &cfg.Logging.Source)
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"canvas.grid_width":        EnvGridWidth,
	"canvas.grid_height":       EnvGridHeight,
	"canvas.grid_snap":         EnvGridSnap,
	"canvas.keep_aspect_ratio": EnvKeepAspect,
	"canvas.resize_all":        EnvResizeAll,
	"canvas.move_all":          EnvMoveAll,
	"library.dsn":              EnvLibraryDSN,
	"library.url":              EnvLibraryURL,
	"library.enabled":          EnvLibraryEnabled,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Settings converts the canvas section into editor settings. Enabled global
// images are attached per kind; the switch image serves both switch kinds.
func (c AppConfig) Settings() layout.Settings {
	s := c.Canvas.Settings()
	img := map[domain.Kind]string{}
	if c.Images.UseKnob && c.Images.Knob != "" {
		img[domain.Knob] = c.Images.Knob
	}
	if c.Images.UseButton && c.Images.Button != "" {
		img[domain.Button] = c.Images.Button
	}
	if c.Images.UseSwitch && c.Images.Switch != "" {
		img[domain.ToggleButton] = c.Images.Switch
		img[domain.ImageToggle] = c.Images.Switch
	}
	if len(img) > 0 {
		s.GlobalImages = img
	}
	return s
}

// Settings converts the canvas toggles into editor settings.
func (c CanvasConfig) Settings() layout.Settings {
	s := layout.DefaultSettings()
	if c.GridWidth > 0 {
		s.GridW = c.GridWidth
	}
	if c.GridHeight > 0 {
		s.GridH = c.GridHeight
	}
	s.GridSnap = c.GridSnap
	s.KeepAspect = c.KeepAspectRatio
	s.ResizeAll = c.ResizeAll
	s.MoveAll = c.MoveAll
	return s
}

// ConnString returns the DSN with password filled in when the DSN is a URL
// that names a user but carries no password of its own.
func (l LibraryConfig) ConnString(password string) string {
	if password == "" {
		return l.DSN
	}
	u, err := url.Parse(l.DSN)
	if err != nil || u.User == nil || u.Scheme == "" {
		return l.DSN
	}
	if _, set := u.User.Password(); set {
		return l.DSN
	}
	u.User = url.UserPassword(u.User.Username(), password)
	return u.String()
}
