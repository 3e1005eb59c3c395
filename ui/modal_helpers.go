package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType picks the title color of a modal.
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

func (t ModalType) color() lipgloss.Color {
	switch t {
	case ModalTypeWarning:
		return warningColor
	case ModalTypeError:
		return dangerColor
	default:
		return accentColor
	}
}

// modalFrame is the borderless three-part modal used across the app:
// a centered title, a body under a rule, and a footer under a second rule.
type modalFrame struct {
	title  string
	body   []string // pre-rendered lines
	footer string
	kind   ModalType
	width  int // 0 means 60
}

// clampModalWidth keeps a modal at most want columns wide with a 5 column
// margin on each side, and never narrower than 10.
func clampModalWidth(want, screenWidth int) int {
	if want == 0 {
		want = 60
	}
	if screenWidth-10 < want {
		want = screenWidth - 10
	}
	return max(want, 10)
}

// place centers the frame on a screen of the given size.
func (f modalFrame) place(screenWidth, screenHeight int) string {
	w := clampModalWidth(f.width, screenWidth)
	rule := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(w)

	// runewidth so emoji and wide glyphs in titles still center
	pad := max((w-runewidth.StringWidth(f.title))/2-2, 0)
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(f.kind.color()).
		Render(runewidth.FillRight(strings.Repeat(" ", pad)+f.title, w))

	blank := strings.Repeat(" ", w)
	lines := make([]string, 0, len(f.body)+2)
	lines = append(lines, blank)
	lines = append(lines, f.body...)
	lines = append(lines, blank)

	body := rule.Render(strings.Join(lines, "\n"))
	footer := rule.Foreground(dimColor).Align(lipgloss.Center).Render(f.footer)

	return lipgloss.Place(screenWidth, screenHeight, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, title, body, footer))
}

// wrapLines word-wraps text to width display columns, keeping explicit line
// breaks and blank lines.
func wrapLines(text string, width int) []string {
	if width <= 0 {
		return strings.Split(text, "\n")
	}

	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(line)+1+runewidth.StringWidth(word) > width {
				out = append(out, line)
				line = word
				continue
			}
			line += " " + word
		}
		out = append(out, line)
	}
	return out
}
