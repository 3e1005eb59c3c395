package config

const (
	DefaultSpeechLanguage = "en-US"
	DefaultThumbnailWidth = 16
	RendererTerm          = "term"
	RendererGlamour       = "glamour"
)

func DefaultSettings() *Settings {
	return &Settings{
		DataDirectory: "~/.local/share/sterling",
		Display: DisplayConfig{
			MarkdownRenderer: RendererTerm,
			Thumbnails:       true,
			ThumbnailWidth:   DefaultThumbnailWidth,
		},
		Speech: SpeechConfig{
			Language: DefaultSpeechLanguage,
		},
		Reports: ReportsConfig{
			SavePDF: true,
			Ledger:  true,
		},
	}
}

func GenerateSettingsTemplate() string {
	return `# Sterling Configuration
# Location: ~/.config/sterling/settings.toml
# This file uses TOML format: https://toml.io

# Base URL of the valuation backend. Requests go to <backend_url>/estimate.
# Required. STERLING_BACKEND_URL overrides this value.
backend_url = ""

# Directory for reports, the receipt ledger, keybindings and the debug log
data_directory = "~/.local/share/sterling"

[display]
# "term" (lightweight) or "glamour"
markdown_renderer = "term"

# Show image thumbnails in the conversation
thumbnails = true
thumbnail_width = 16
# List every file in the image picker; non-images are skipped on attach
picker_all_files = false

[speech]
# External speech-to-text command used for dictation (Alt+V).
# It must print one transcript event per line on stdout, either plain text or
# {"results":[{"transcript":"...","final":true}]}
command = ""
args = []
language = "en-US"

# Capture device checked before listening (optional)
# device = "/dev/snd/pcmC0D0c"

[reports]
# Save PDF reports returned by the backend
save_pdf = true

# Record estimate receipts (uuid, hashes) in receipts.db
ledger = true

[notifications]
# Show a notification when an estimate request fails
estimate_errors = false
`
}
