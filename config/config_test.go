package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvDataDir, "")
	return home
}

func TestValidateBackendURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"https", "https://api.example.com", false},
		{"http with port", "http://localhost:8000", false},
		{"with path", "https://api.example.com/v1", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"no scheme", "api.example.com", true},
		{"ftp", "ftp://api.example.com", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBackendURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoad_MissingBackendURLFailsFast(t *testing.T) {
	isolateHome(t)

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingBackendURL)

	// the template is still written so the user has something to edit
	require.FileExists(t, GetSettingsFilePath())
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := isolateHome(t)
	dataDir := filepath.Join(home, "data")
	t.Setenv(EnvBackendURL, " https://valuation.example.com ")
	t.Setenv(EnvDataDir, dataDir)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://valuation.example.com", cfg.BackendURL)
	require.Equal(t, dataDir, cfg.DataDir())
	require.Equal(t, DefaultSpeechLanguage, cfg.Speech.Language)
	require.Equal(t, filepath.Join(dataDir, "reports"), cfg.ReportsDir())
	require.NotNil(t, cfg.Keybindings)

	info, err := os.Stat(dataDir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestLoad_FromSettingsFile(t *testing.T) {
	home := isolateHome(t)
	path := GetSettingsFilePath()

	settings := DefaultSettings()
	settings.BackendURL = "http://localhost:8000"
	settings.DataDirectory = filepath.Join(home, "sterling-data")
	settings.Display.MarkdownRenderer = RendererGlamour
	settings.Notifications.EstimateErrors = true
	require.NoError(t, SaveSettings(settings, path))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", cfg.BackendURL)
	require.Equal(t, RendererGlamour, cfg.Display.MarkdownRenderer)
	require.True(t, cfg.Notifications.EstimateErrors)
	require.True(t, cfg.Reports.SavePDF)
}

func TestLoad_InvalidSettingsFile(t *testing.T) {
	isolateHome(t)
	path := GetSettingsFilePath()
	require.NoError(t, EnsureDir(filepath.Dir(path)))
	require.NoError(t, os.WriteFile(path, []byte("backend_url = [broken"), 0600))

	_, err := Load()
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrMissingBackendURL))
}

func TestExpandPath(t *testing.T) {
	home := isolateHome(t)
	require.Equal(t, filepath.Join(home, "reports"), ExpandPath("~/reports"))
	require.Equal(t, "", ExpandPath(""))
}
