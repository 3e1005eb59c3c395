package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadSettings decodes settings.toml at path, writing the commented template
// first if the file does not exist yet.
func LoadSettings(path string) (*Settings, error) {
	cfg := DefaultSettings()

	if !FileExists(path) {
		if err := CreateDefaultSettings(path); err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	return cfg, nil
}

func SaveSettings(cfg *Settings, path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return nil
}

func CreateDefaultSettings(path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if FileExists(path) {
		return nil
	}

	if err := os.WriteFile(path, []byte(GenerateSettingsTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}
