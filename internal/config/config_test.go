// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func clearEnv(t *testing.T) {
	for _, k := range []string{EnvBackendURL, EnvTimeoutSecs, EnvLogLevel, EnvTheme, EnvDiscardStale} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000/api", cfg.Backend.URL)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes)
	assert.True(t, cfg.Redaction.RedactByDefault)
	assert.False(t, cfg.Redaction.DiscardStaleResponses)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[backend]
url = "https://pii.internal/api"

[redaction]
discard_stale_responses = true

[ui]
theme = "light"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://pii.internal/api", cfg.Backend.URL)
	assert.Equal(t, 60, cfg.Backend.TimeoutSecs, "omitted keys keep defaults")
	assert.True(t, cfg.Redaction.DiscardStaleResponses)
	assert.True(t, cfg.Redaction.RedactByDefault)
	assert.Equal(t, ThemeLight, cfg.UI.Theme)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", "[backend]\nurll = \"x\"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.urll")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[backend]
url = "ftp://nowhere"
timeout_secs = -1

[ui]
theme = "neon"
`)
	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, len(verrs))
	for i, v := range verrs {
		fields[i] = v.Field
	}
	assert.ElementsMatch(t, []string{"backend.url", "backend.timeout_secs", "ui.theme"}, fields)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBackendURL, "http://10.0.0.5:8000/api")
	t.Setenv(EnvTimeoutSecs, "5")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvTheme, "dark")
	t.Setenv(EnvDiscardStale, "true")

	path := writeFile(t, "config.toml", "[backend]\nurl = \"http://file/api\"\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000/api", cfg.Backend.URL)
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ThemeDark, cfg.UI.Theme)
	assert.True(t, cfg.Redaction.DiscardStaleResponses)
}

func TestEnvOverrideBadNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTimeoutSecs, "soon")
	cfg := Default()
	assert.Error(t, cfg.ApplyEnvOverrides())
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTheme, "light")
	os.Unsetenv(EnvLogLevel)
	dotenv := writeFile(t, ".env", EnvTheme+"=dark\n"+EnvLogLevel+"=warn\n")

	require.NoError(t, LoadDotEnv(dotenv, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "light", os.Getenv(EnvTheme))
	assert.Equal(t, "warn", os.Getenv(EnvLogLevel))
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Backend.RequestsPerSecond = 2.5
	cfg.Upload.AllowedExtensions = []string{".png"}
	cfg.UI.WordWrap = 100
	require.NoError(t, SaveTOML(cfg, path))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestStringIsTOML(t *testing.T) {
	s := Default().String()
	assert.Contains(t, s, "[backend]")
	assert.Contains(t, s, `url = "http://localhost:8000/api"`)
	assert.Contains(t, s, "redact_by_default = true")
}

func TestLogPath(t *testing.T) {
	cfg := Default()
	cfg.Log.File = "/var/log/chat.log"
	p, err := cfg.LogPath()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/chat.log", p)
}

// TestConfig_ConcurrentAccess checks Global and SetGlobal under -race.
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := Default()
			c.UI.Theme = ThemeDark
			SetGlobal(c)
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, ThemeDark, Global().UI.Theme)
}
