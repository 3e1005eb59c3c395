package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrorModal is a standalone program for startup failures, shown before the
// chat UI exists (missing backend URL, unreadable settings).
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c", "q":
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	w := clampModalWidth(60, m.width)
	lineStyle := lipgloss.NewStyle().Width(w).Align(lipgloss.Center)

	var body []string
	for _, line := range wrapLines(m.message, w-4) {
		body = append(body, lineStyle.Render(line))
	}

	return modalFrame{
		title:  m.title,
		body:   body,
		footer: "Press Enter to quit",
		kind:   ModalTypeError,
	}.place(m.width, m.height)
}
