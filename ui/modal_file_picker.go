package ui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"sterling/config"
)

type FilePickerConfig struct {
	Title          string
	AllowedTypes   []string // nil shows every file
	StartDirectory string
	ShowHidden     bool
	OperationType  string // "Attaching" etc. for the processing title
}

// FilePickerState is a multi-select file picker. Enter toggles a file,
// Tab confirms the selection, Esc cancels.
type FilePickerState struct {
	Active     bool
	Picker     filepicker.Model
	Config     FilePickerConfig
	Selected   []string
	Processing bool
	Spinner    spinner.Model
}

func NewFilePickerState(cfg FilePickerConfig) FilePickerState {
	fp := filepicker.New()
	fp.AllowedTypes = cfg.AllowedTypes
	fp.Height = 10
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowPermissions = false
	fp.ShowSize = true
	fp.ShowHidden = cfg.ShowHidden

	startDir := cfg.StartDirectory
	if startDir == "" {
		startDir = config.GetHomeDir()
	}
	fp.CurrentDirectory = startDir

	fp.Styles.Directory = lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)
	fp.Styles.File = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15"))
	fp.Styles.Selected = lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)
	fp.Styles.Cursor = lipgloss.NewStyle().
		Foreground(successColor)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return FilePickerState{
		Picker:  fp,
		Config:  cfg,
		Spinner: sp,
	}
}

func (fps *FilePickerState) Activate() {
	fps.Active = true
	fps.Processing = false
	fps.Selected = nil
	fps.Picker.Path = ""
}

func (fps *FilePickerState) Reset() {
	fps.Active = false
	fps.Processing = false
	fps.Selected = nil
	fps.Picker.Path = ""
}

// Toggle adds path to the selection, or removes it when already selected.
func (fps *FilePickerState) Toggle(path string) {
	if i := slices.Index(fps.Selected, path); i >= 0 {
		fps.Selected = slices.Delete(fps.Selected, i, i+1)
		return
	}
	fps.Selected = append(fps.Selected, path)
}

func RenderFilePickerModal(state FilePickerState, width, height int) string {
	if state.Processing {
		return renderFilePickerProcessing(state.Spinner, state.Config, len(state.Selected), width, height)
	}
	return renderFilePickerInput(state, width, height)
}

func renderFilePickerInput(state FilePickerState, width, height int) string {
	// Guard clause: prevent rendering in tiny terminals
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := clampModalWidth(80, width)

	var messageLines []string

	contentStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Left)

	for _, line := range strings.Split(state.Picker.View(), "\n") {
		trimmedLine := strings.TrimRight(line, " ")
		messageLines = append(messageLines, contentStyle.Render("  "+trimmedLine))
	}

	if len(state.Selected) > 0 {
		messageLines = append(messageLines, strings.Repeat(" ", modalWidth))
		names := make([]string, len(state.Selected))
		for i, p := range state.Selected {
			names[i] = filepath.Base(p)
		}
		summary := fmt.Sprintf("Selected (%d): %s", len(names), strings.Join(names, ", "))
		for _, line := range wrapLines(summary, modalWidth-4) {
			messageLines = append(messageLines, contentStyle.Foreground(successColor).Render("  "+line))
		}
	}

	footer := FormatFooter("Enter", "Select", "h/l", "Back/Forward", "Tab", "Attach", "Esc", "Cancel")

	return modalFrame{
		title:  state.Config.Title,
		body:   messageLines,
		footer: footer,
		width:  modalWidth,
	}.place(width, height)
}

func renderFilePickerProcessing(sp spinner.Model, cfg FilePickerConfig, count, width, height int) string {
	// Guard clause: prevent rendering in tiny terminals
	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	modalWidth := clampModalWidth(80, width)

	title := cfg.OperationType + " Images"

	noun := "files"
	if count == 1 {
		noun = "file"
	}
	processingLine := fmt.Sprintf("%s Reading %d %s...", sp.View(), count, noun)
	styledProcessing := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(processingLine)

	return modalFrame{
		title:  title,
		body:   []string{styledProcessing},
		footer: "Please wait",
		width:  modalWidth,
	}.place(width, height)
}
