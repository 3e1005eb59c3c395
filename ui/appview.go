package ui

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sterling/config"
	appmodel "sterling/model"
	"sterling/speech"
)

// Title, separator, textarea (3 lines) and status bar.
const reservedLines = 6

// imageExtensions narrows the picker to common image files.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".svg"}

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Spinner shown while an estimate is in flight
	loadingSpinner spinner.Model

	showHelp  bool
	showAbout bool

	imagePicker   FilePickerState
	selectedImage int

	// Rendered markdown per message ID, at renderedWidth
	rendered      map[string]string
	renderedWidth int
	renderer      markdownRenderer

	toasts toastStack

	// Open while dictation is running
	dictation <-chan speech.Update
}

func NewAppView(dataModel *appmodel.Model) AppView {
	if dataModel.Config == nil {
		dataModel.Config = &config.Config{}
	}
	if dataModel.Config.Keybindings == nil {
		dataModel.Config.Keybindings = config.DefaultKeybindings()
	}
	cfg := dataModel.Config

	ta := textarea.New()
	ta.Placeholder = fmt.Sprintf("Describe the property... (%s to dictate, %s to attach photos)",
		cfg.Keybindings.DisplayActionKey("dictate"), cfg.Keybindings.DisplayActionKey("attach_images"))
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Custom KeyMap: Alt+Enter for newline, Enter alone does nothing (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	// Set dynamic prompt: "> " for first line, "| " for subsequent lines
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	allowed := imageExtensions
	if cfg.Display.PickerAllFiles {
		allowed = nil
	}
	picker := NewFilePickerState(FilePickerConfig{
		Title:         "Attach Images",
		AllowedTypes:  allowed,
		ShowHidden:    false,
		OperationType: "Attaching",
	})

	return AppView{
		dataModel:      dataModel,
		textarea:       ta,
		viewport:       viewport.New(0, 0),
		loadingSpinner: sp,
		imagePicker:    picker,
		rendered:       make(map[string]string),
		renderer:       newMarkdownRenderer(cfg.Display.MarkdownRenderer),
	}
}

func (a AppView) Init() tea.Cmd {
	// Markdown waits for the first WindowSizeMsg to know the width
	return textarea.Blink
}

func (a AppView) display() config.DisplayConfig {
	return a.dataModel.Config.Display
}

func (a AppView) backendLabel() string {
	raw := a.dataModel.Config.BackendURL
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading Sterling..."
	}

	// Help can peek over the picker; the picker sits over about.
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.imagePicker.Active {
		return RenderFilePickerModal(a.imagePicker, a.width, a.height)
	}

	if a.showAbout {
		return renderAboutModal(a, a.width, a.height)
	}

	// Title bar - "Sterling - Appraisal Assistant | host"
	title := AssistantStyle.Render("Sterling") +
		TitleStyle.Render(" - Appraisal Assistant") +
		DimStyle.Render(" | "+a.backendLabel())
	if a.dataModel.Listening() {
		title += ListeningStyle.Render(" | ● Listening...")
	}

	// Separator with bottom margin for header (empty line forces spacing)
	separator := ""

	parts := []string{title, separator, a.viewport.View()}
	if toasts := a.toasts.view(a.width); toasts != "" {
		parts = append(parts, toasts)
	}
	if chips := a.renderPendingImages(); chips != "" {
		parts = append(parts, chips)
	}
	parts = append(parts, a.textarea.View(), a.statusBar())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a AppView) statusBar() string {
	kb := a.dataModel.Config.Keybindings

	// Status bar with bold user green descriptions (main chat uses user green)
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	dictate := "Dictate"
	if a.dataModel.Listening() {
		dictate = "Stop"
	}
	status := fmt.Sprintf("%s %s  %s %s  %s %s  Alt+Enter %s  Enter %s  %s %s  %s %s",
		kb.DisplayActionKey("quit"), descStyle.Render("Quit"),
		kb.DisplayActionKey("attach_images"), descStyle.Render("Images"),
		kb.DisplayActionKey("dictate"), descStyle.Render(dictate),
		descStyle.Render("New Line"),
		descStyle.Render("Send"),
		kb.DisplayActionKey("yank_last_response"), descStyle.Render("Copy"),
		kb.DisplayActionKey("help"), descStyle.Render("Help"),
	)
	return StatusStyle.Render(status)
}

// layout sizes the viewport around the optional toast and image rows.
func (a *AppView) layout() {
	if !a.ready {
		return
	}
	extra := len(a.toasts.toasts)
	if len(a.dataModel.Conversation.PendingImages()) > 0 {
		extra++
	}
	height := a.height - reservedLines - extra
	if height < 1 {
		height = 1
	}
	if a.viewport.Height != height {
		atBottom := a.viewport.AtBottom()
		a.viewport.Height = height
		if atBottom {
			a.viewport.GotoBottom()
		}
	}
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showAbout = false
	a.imagePicker.Reset()
}

// Model exposes the underlying data model, e.g. for receipts on exit.
func (a AppView) Model() *appmodel.Model {
	return a.dataModel
}
