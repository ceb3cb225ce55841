// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/FuriousFire05/secure-ai-chat/internal/model"
	"github.com/FuriousFire05/secure-ai-chat/internal/upload"
	"github.com/FuriousFire05/secure-ai-chat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete client configuration.
type Config struct {
	Backend   BackendConfig   `toml:"backend"`
	Upload    UploadConfig    `toml:"upload"`
	Redaction RedactionConfig `toml:"redaction"`
	UI        UIConfig        `toml:"ui"`
	Log       LogConfig       `toml:"log"`
}

// BackendConfig holds settings for the PII service.
type BackendConfig struct {
	// URL is the API root, e.g. http://localhost:8000/api
	URL string `toml:"url"`

	// TimeoutSecs bounds each request.
	TimeoutSecs int `toml:"timeout_secs"`

	// RequestsPerSecond spaces requests client-side. 0 disables pacing.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// UploadConfig holds image selection limits.
type UploadConfig struct {
	MaxBytes          int64    `toml:"max_bytes"`
	AllowedExtensions []string `toml:"allowed_extensions"`

	// StartDir is where the file picker opens. Empty means the working directory.
	StartDir string `toml:"start_dir"`
}

// RedactionConfig holds selection and completion policies.
type RedactionConfig struct {
	// RedactByDefault preselects every detected item.
	RedactByDefault bool `toml:"redact_by_default"`

	// DiscardStaleResponses drops replies to requests issued before a clear.
	DiscardStaleResponses bool `toml:"discard_stale_responses"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `toml:"theme"`

	// TimestampFormat is a Go time layout for message timestamps.
	TimestampFormat string `toml:"timestamp_format"`

	// WordWrap is the markdown wrap width. 0 follows the terminal width.
	WordWrap int `toml:"word_wrap"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`

	// File receives TUI logs. Empty means secure-ai-chat.log in the config directory.
	File string `toml:"file"`
}

// Valid theme names.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Environment variable names.
const (
	EnvBackendURL   = "SECURE_CHAT_BACKEND_URL"
	EnvTimeoutSecs  = "SECURE_CHAT_TIMEOUT_SECS"
	EnvLogLevel     = "SECURE_CHAT_LOG_LEVEL"
	EnvTheme        = "SECURE_CHAT_THEME"
	EnvDiscardStale = "SECURE_CHAT_DISCARD_STALE"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:         "http://localhost:8000/api",
			TimeoutSecs: 60,
		},
		Upload: UploadConfig{
			MaxBytes:          upload.DefaultMaxBytes,
			AllowedExtensions: append([]string(nil), upload.DefaultExtensions...),
		},
		Redaction: RedactionConfig{
			RedactByDefault: true,
		},
		UI: UIConfig{
			Theme:           ThemeAuto,
			TimestampFormat: model.DefaultTimestampLayout,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Backend.URL == "" {
		c.Backend.URL = d.Backend.URL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = d.Upload.MaxBytes
	}
	if c.Upload.AllowedExtensions == nil {
		c.Upload.AllowedExtensions = d.Upload.AllowedExtensions
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.TimestampFormat == "" {
		c.UI.TimestampFormat = d.UI.TimestampFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Timeout returns the backend timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".secure-ai-chat"), nil
}

// Path returns the path to the default TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the file TUI logs go to.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "secure-ai-chat.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the effective configuration: defaults, then the TOML file at
// path (the default location when empty; a missing file is not an error),
// then .env and the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the file at path over cfg. Keys the file omits keep their
// current values.
func LoadTOML(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (./.env when none are
// given) without overriding the real environment. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - SECURE_CHAT_BACKEND_URL: overrides backend.url
//   - SECURE_CHAT_TIMEOUT_SECS: overrides backend.timeout_secs
//   - SECURE_CHAT_LOG_LEVEL: overrides log.level
//   - SECURE_CHAT_THEME: overrides ui.theme
//   - SECURE_CHAT_DISCARD_STALE: overrides redaction.discard_stale_responses
func (c *Config) ApplyEnvOverrides() error {
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv(EnvTimeoutSecs); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeoutSecs, err)
		}
		c.Backend.TimeoutSecs = secs
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv(EnvDiscardStale); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDiscardStale, err)
		}
		c.Redaction.DiscardStaleResponses = b
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes cfg to path with owner-only permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# secure-ai-chat configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.Backend.URL); err != nil {
		add("backend.url", "invalid URL: %v", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("backend.url", "scheme must be http or https, got %q", u.Scheme)
	} else if u.Host == "" {
		add("backend.url", "missing host")
	}
	if c.Backend.TimeoutSecs <= 0 {
		add("backend.timeout_secs", "must be positive, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.RequestsPerSecond < 0 {
		add("backend.requests_per_second", "must not be negative")
	}

	if c.Upload.MaxBytes <= 0 {
		add("upload.max_bytes", "must be positive, got %d", c.Upload.MaxBytes)
	}
	for _, ext := range c.Upload.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			add("upload.allowed_extensions", "%q must start with a dot", ext)
		}
	}
	if c.Upload.StartDir != "" {
		if info, err := os.Stat(c.Upload.StartDir); err != nil || !info.IsDir() {
			add("upload.start_dir", "%q is not a directory", c.Upload.StartDir)
		}
	}

	switch c.UI.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		add("ui.theme", "must be auto, dark or light, got %q", c.UI.Theme)
	}
	if c.UI.WordWrap < 0 {
		add("ui.word_wrap", "must not be negative")
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig   *Config
	globalConfigMu sync.RWMutex
)

// Global returns the process-wide configuration, or defaults when SetGlobal
// has not been called.
func Global() *Config {
	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}

// SetGlobal sets the process-wide configuration. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the process-wide configuration.
func ResetGlobalForTesting() {
	SetGlobal(nil)
}
