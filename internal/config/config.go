/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "canvassnap/internal/log"
	"canvassnap/internal/snap"
	"canvassnap/internal/telemetry"
)

// AppConfig is the user configuration read from a YAML file in the user scope.
// It is read-only at runtime; environment variables override file values.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Snap          SnapConfig      `yaml:"snap"`
	Logging       LoggingConfig   `yaml:"logging"`
	Telemetry     TelemetryConfig `yaml:"telemetry"`
}

// SnapConfig tunes the snapping engine. A zero radius in the file keeps the
// default; a zero hysteresis buffer or edge preference disables that rule.
type SnapConfig struct {
	Radius           float64 `yaml:"radius"`
	HysteresisBuffer float64 `yaml:"hysteresis_buffer"`
	EdgePreference   float64 `yaml:"edge_preference"`
	ShowGuides       bool    `yaml:"show_guides"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Source    bool   `yaml:"source"`
	File      string `yaml:"file"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

type TelemetryConfig struct {
	OptIn     bool   `yaml:"opt_in"`
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Snap: SnapConfig{
			Radius:           snap.DefaultRadius,
			HysteresisBuffer: snap.DefaultHysteresisBuffer,
			EdgePreference:   snap.DefaultEdgePreference,
			ShowGuides:       true,
		},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
		Telemetry: TelemetryConfig{URL: "http://localhost:8080/telemetry", TimeoutMs: 2000},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath         = "CSN_CONFIG"
	EnvSnapRadius         = "CSN_SNAP_RADIUS"
	EnvSnapHysteresis     = "CSN_SNAP_HYSTERESIS"
	EnvSnapEdgePreference = "CSN_SNAP_EDGE_PREFERENCE"
	EnvSnapShowGuides     = "CSN_SNAP_SHOW_GUIDES"
	EnvTelemetryOptIn     = "CSN_TELEMETRY_OPT_IN"
	EnvTelemetryURL       = "CSN_TELEMETRY_URL"
	EnvLogLevel           = "CSN_LOG_LEVEL"
	EnvLogFormat          = "CSN_LOG_FORMAT"
	EnvLogSource          = "CSN_LOG_SOURCE"
	EnvLogFile            = "CSN_LOG_FILE"
)

// ConfigPath returns the per-user config file path; CSN_CONFIG takes precedence.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "CanvasSnap")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "CanvasSnap")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "canvassnap")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "canvassnap")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file if present, merges it onto the defaults and
// applies environment overrides. A missing file is not an error.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		// absent keys keep their defaults, including booleans
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// Validate reports values the engine cannot work with.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Snap.Radius <= 0 {
		errs = append(errs, fmt.Errorf("snap.radius must be positive, got %v", c.Snap.Radius))
	}
	if c.Snap.HysteresisBuffer < 0 {
		errs = append(errs, fmt.Errorf("snap.hysteresis_buffer must not be negative, got %v", c.Snap.HysteresisBuffer))
	}
	if c.Snap.EdgePreference < 0 {
		errs = append(errs, fmt.Errorf("snap.edge_preference must not be negative, got %v", c.Snap.EdgePreference))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Snap.Radius != 0 {
		dst.Snap.Radius = src.Snap.Radius
	}
	// src starts from the defaults, so a zero here was written explicitly and
	// switches the rule off
	dst.Snap.HysteresisBuffer = src.Snap.HysteresisBuffer
	dst.Snap.EdgePreference = src.Snap.EdgePreference
	dst.Snap.ShowGuides = src.Snap.ShowGuides
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
	if src.Logging.MaxSizeMB > 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	if strings.TrimSpace(src.Telemetry.URL) != "" {
		dst.Telemetry.URL = strings.TrimSpace(src.Telemetry.URL)
	}
	if src.Telemetry.TimeoutMs > 0 {
		dst.Telemetry.TimeoutMs = src.Telemetry.TimeoutMs
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envFloat(name string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envFloat(EnvSnapRadius, &cfg.Snap.Radius)
	envFloat(EnvSnapHysteresis, &cfg.Snap.HysteresisBuffer)
	envFloat(EnvSnapEdgePreference, &cfg.Snap.EdgePreference)
	if v := strings.TrimSpace(os.Getenv(EnvSnapShowGuides)); v != "" {
		cfg.Snap.ShowGuides = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.Telemetry.OptIn = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryURL)); v != "" {
		cfg.Telemetry.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var overrides = map[string]string{
	"snap.radius":            EnvSnapRadius,
	"snap.hysteresis_buffer": EnvSnapHysteresis,
	"snap.edge_preference":   EnvSnapEdgePreference,
	"snap.show_guides":       EnvSnapShowGuides,
	"telemetry.opt_in":       EnvTelemetryOptIn,
	"telemetry.url":          EnvTelemetryURL,
	"logging.level":          EnvLogLevel,
	"logging.format":         EnvLogFormat,
	"logging.source":         EnvLogSource,
	"logging.file":           EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := overrides[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Options converts the section to engine options.
func (s SnapConfig) Options() snap.Options {
	return snap.Options{Radius: s.Radius, HysteresisBuffer: s.HysteresisBuffer, EdgePreference: s.EdgePreference}
}

// Options converts the section to logger options.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File, MaxSizeMB: l.MaxSizeMB}
}

// Client converts the section to telemetry client settings. Crash upload and
// debug switches stay environment-only.
func (t TelemetryConfig) Client() telemetry.Config {
	cfg := telemetry.FromEnv()
	cfg.OptIn = t.OptIn
	cfg.EventsURL = t.URL
	cfg.Timeout = t.Timeout()
	return cfg
}

// Timeout returns the telemetry HTTP timeout, falling back to the default.
func (t TelemetryConfig) Timeout() time.Duration {
	if t.TimeoutMs <= 0 {
		return time.Duration(Defaults().Telemetry.TimeoutMs) * time.Millisecond
	}
	return time.Duration(t.TimeoutMs) * time.Millisecond
}
