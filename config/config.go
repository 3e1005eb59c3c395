package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvBackendURL = "STERLING_BACKEND_URL"
	EnvDataDir    = "STERLING_DATA_DIR"
	EnvDebug      = "STERLING_DEBUG"
)

// ErrMissingBackendURL is returned by Load when neither settings.toml nor the
// environment supplies a backend URL.
var ErrMissingBackendURL = errors.New("backend URL is not configured")

type DisplayConfig struct {
	MarkdownRenderer string `toml:"markdown_renderer"` // "term" or "glamour"
	Thumbnails       bool   `toml:"thumbnails"`
	ThumbnailWidth   int    `toml:"thumbnail_width"`
	PickerAllFiles   bool   `toml:"picker_all_files"` // list non-image files in the picker too
}

type SpeechConfig struct {
	Command  string   `toml:"command"`
	Args     []string `toml:"args,omitempty"`
	Language string   `toml:"language"`
	Device   string   `toml:"device,omitempty"`
}

type ReportsConfig struct {
	SavePDF bool `toml:"save_pdf"`
	Ledger  bool `toml:"ledger"`
}

type NotificationsConfig struct {
	EstimateErrors bool `toml:"estimate_errors"`
}

// Settings mirrors settings.toml
type Settings struct {
	BackendURL    string              `toml:"backend_url"`
	DataDirectory string              `toml:"data_directory"`
	Display       DisplayConfig       `toml:"display"`
	Speech        SpeechConfig        `toml:"speech"`
	Reports       ReportsConfig       `toml:"reports"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type Config struct {
	BackendURL    string
	DataDirectory string
	Display       DisplayConfig
	Speech        SpeechConfig
	Reports       ReportsConfig
	Notifications NotificationsConfig
	Keybindings   *KeyBindingsConfig
}

var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ReportsDir is where decoded PDF reports are written
func (c *Config) ReportsDir() string {
	return filepath.Join(c.DataDir(), "reports")
}

func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir(), "receipts.db")
}

func (c *Config) applyEnvOverrides() {
	if backend := os.Getenv(EnvBackendURL); backend != "" {
		c.BackendURL = backend
	}
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func CheckDebug() bool {
	debug := os.Getenv(EnvDebug)
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: request bodies end up in here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (%s=%s) ===", EnvDebug, os.Getenv(EnvDebug))
	DebugLog.Printf("Log path: %s", logPath)
}

// ValidateBackendURL checks that raw is an absolute http(s) URL.
func ValidateBackendURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrMissingBackendURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend URL %q: missing host", raw)
	}
	return nil
}

func fromSettings(s *Settings) *Config {
	return &Config{
		BackendURL:    strings.TrimSpace(s.BackendURL),
		DataDirectory: s.DataDirectory,
		Display:       s.Display,
		Speech:        s.Speech,
		Reports:       s.Reports,
		Notifications: s.Notifications,
	}
}

// Load reads settings.toml (creating it from the template when missing),
// applies environment overrides and fails fast when the backend URL is
// absent or malformed.
func Load() (*Config, error) {
	settings, err := LoadSettings(GetSettingsFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := fromSettings(settings)
	cfg.applyEnvOverrides()
	cfg.BackendURL = strings.TrimSpace(cfg.BackendURL)

	if cfg.DataDirectory == "" {
		cfg.DataDirectory = GetDefaultDataDir()
	}
	if cfg.Speech.Language == "" {
		cfg.Speech.Language = DefaultSpeechLanguage
	}
	if cfg.Display.ThumbnailWidth <= 0 {
		cfg.Display.ThumbnailWidth = DefaultThumbnailWidth
	}

	if err := ValidateBackendURL(cfg.BackendURL); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, err
	}
	cfg.Keybindings = kb

	return cfg, nil
}
