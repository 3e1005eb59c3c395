package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appDirName = "sterling"

// GetConfigDir returns the platform-specific configuration directory
// Linux/Mac: ~/.config/sterling
// Windows: C:\Users\username\.config\sterling
func GetConfigDir() string {
	return filepath.Join(GetHomeDir(), ".config", appDirName)
}

// GetDefaultDataDir returns the platform-specific default data directory
// Linux/Mac: ~/.local/share/sterling
// Windows: C:\Users\username\AppData\Local\sterling
func GetDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(GetHomeDir(), "AppData", "Local")
		}
		return filepath.Join(localAppData, appDirName)
	}

	return filepath.Join(GetHomeDir(), ".local", "share", appDirName)
}

// GetSettingsFilePath returns the path to settings.toml
func GetSettingsFilePath() string {
	return filepath.Join(GetConfigDir(), "settings.toml")
}

// GetHomeDir returns the user's home directory across platforms
func GetHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("USERPROFILE")
		if home == "" {
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
		if home == "" {
			home = "C:\\"
		}
		return home
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = "/"
	}
	return home
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(GetHomeDir(), path[2:])
	}

	path = os.ExpandEnv(path)

	return filepath.Clean(path)
}

// EnsureDir creates a directory if it doesn't exist (0700 - user-only access)
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDataDirPermissions creates dataDir if needed and forces 0700
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dataDir, 0700)
		}
		return err
	}

	if info.Mode().Perm() != 0700 {
		return os.Chmod(dataDir, 0700)
	}
	return nil
}
