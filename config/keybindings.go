package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"`
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "alt", "ctrl", "meta", "super"
	Secondary string `toml:"secondary"` // e.g., "alt+shift", "ctrl+shift"
}

type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string
}

// actionRegistry maps action names to their default keybindings.
// Any of them can be overridden in the [actions] table of keybindings.toml.
var actionRegistry = map[string]actionDef{
	"help":  {"primary", "h"},
	"about": {"secondary", "a"},
	"quit":  {"primary", "q"},

	// Input affordances
	"attach_images": {"primary", "a"},
	"next_image":    {"primary", "n"},
	"remove_image":  {"primary", "x"},
	"dictate":       {"primary", "v"},
	"clear_input":   {"primary", "u"},

	// Conversation actions
	"yank_last_response": {"primary", "y"},
	"yank_conversation":  {"primary", "c"},
	"copy_report":        {"primary", "d"},

	// Scrolling
	"scroll_down":      {"primary", "j"},
	"scroll_up":        {"primary", "k"},
	"half_page_down":   {"secondary", "j"},
	"half_page_up":     {"secondary", "k"},
	"page_down":        {"primary", "pgdown"},
	"page_up":          {"primary", "pgup"},
	"scroll_to_top":    {"primary", "g"},
	"scroll_to_bottom": {"secondary", "g"},
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   "alt",
			Secondary: "alt+shift",
		},
	}
}

// LoadKeybindings loads keybindings from data directory
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	cfg := DefaultKeybindings()
	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")

	if !FileExists(keybindingsPath) {
		if err := CreateDefaultKeybindings(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(keybindingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	if cfg.Modifiers.Primary == "" {
		cfg.Modifiers.Primary = "alt"
	}
	if cfg.Modifiers.Secondary == "" {
		cfg.Modifiers.Secondary = "alt+shift"
	}

	if ok, warning := cfg.Validate(); warning != "" && DebugLog != nil {
		DebugLog.Printf("[Config] keybindings (valid=%v): %s", ok, warning)
	}

	return cfg, nil
}

// CreateDefaultKeybindings creates default keybindings.toml
func CreateDefaultKeybindings(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	keybindingsPath := filepath.Join(dataDir, "keybindings.toml")
	if FileExists(keybindingsPath) {
		return nil
	}

	if err := os.WriteFile(keybindingsPath, []byte(GenerateKeybindingsTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write keybindings: %w", err)
	}

	return nil
}

// GenerateKeybindingsTemplate returns the default TOML template
func GenerateKeybindingsTemplate() string {
	return `# Sterling Keybindings
# Location: <data_directory>/keybindings.toml
# This file uses TOML format: https://toml.io

[modifiers]
primary = "alt"          # alt, ctrl, meta, super
secondary = "alt+shift"

# tmux users may prefer:
#   primary = "ctrl"
#   secondary = "ctrl+shift"

[actions]
# Per-action overrides, for example:
#   dictate = "ctrl+r"
#   attach_images = "ctrl+o"
#   quit = "ctrl+shift+q"
#
# Actions: help, about, quit, attach_images, next_image, remove_image, dictate,
# clear_input, yank_last_response, yank_conversation, copy_report, scroll_down,
# scroll_up, half_page_down, half_page_up, page_down, page_up, scroll_to_top,
# scroll_to_bottom
`
}

// Primary returns the primary modifier
func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return "alt"
	}
	return kb.Modifiers.Primary
}

// Secondary returns the secondary modifier
func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return "alt+shift"
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds a keybinding string with primary modifier
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds a keybinding string with the secondary modifier.
// Shift + a single lowercase letter is reported by terminals as the uppercase
// letter, so "alt+shift" + "a" becomes "alt+A".
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		var mods []string
		for _, part := range strings.Split(secondary, "+") {
			if strings.ToLower(part) != "shift" {
				mods = append(mods, part)
			}
		}
		if len(mods) > 0 {
			return strings.Join(mods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// GetActionKey returns the keybinding for an action, user overrides first.
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override, ok := kb.Actions[action]; ok && override != "" {
		return override
	}

	def, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.PrimaryKey(def.key)
	case "secondary":
		return kb.SecondaryKey(def.key)
	default:
		return def.key
	}
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "alt+A" -> "Alt+Shift+A"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	hasShift := false
	for _, p := range parts {
		if strings.ToLower(p) == "shift" {
			hasShift = true
		}
	}

	var result []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			if !hasShift && i > 0 {
				result = append(result, "Shift")
			}
			result = append(result, part)
			continue
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}

	return strings.Join(result, "+")
}

// Validate checks if the configuration is valid
// Returns (isValid, warningMessage)
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()
	secondary := kb.Secondary()

	if primary == "shift" || secondary == "shift" {
		return false, "Shift alone conflicts with typing"
	}

	if strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl") {
		return true, "Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}

	return true, ""
}
