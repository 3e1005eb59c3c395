package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ToastKind selects the color and lifetime of a toast.
type ToastKind int

const (
	ToastStatus ToastKind = iota
	ToastError
	ToastWarning
	ToastSuccess
)

const (
	DefaultToastDuration = 4 * time.Second
	ErrorToastDuration   = 8 * time.Second
	WarningToastDuration = 6 * time.Second

	maxVisibleToasts = 3
	maxToastWidth    = 50
)

// Toast is a transient, non-blocking notification.
type Toast struct {
	ID       int
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

type toastExpiredMsg struct {
	ID int
}

func durationFor(kind ToastKind) time.Duration {
	switch kind {
	case ToastError:
		return ErrorToastDuration
	case ToastWarning:
		return WarningToastDuration
	default:
		return DefaultToastDuration
	}
}

// toastStack holds the visible toasts, oldest first.
type toastStack struct {
	nextID int
	toasts []Toast
}

// push adds a toast and returns the command that expires it.
func (s *toastStack) push(kind ToastKind, message string) tea.Cmd {
	s.nextID++
	t := Toast{ID: s.nextID, Message: message, Kind: kind, Duration: durationFor(kind)}
	s.toasts = append(s.toasts, t)
	if len(s.toasts) > maxVisibleToasts {
		s.toasts = s.toasts[len(s.toasts)-maxVisibleToasts:]
	}

	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

func (s *toastStack) dismiss(id int) {
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i:i], s.toasts[i+1:]...)
			return
		}
	}
}

// dismissAll drops every toast, e.g. on Esc.
func (s *toastStack) dismissAll() {
	s.toasts = nil
}

func (s *toastStack) empty() bool {
	return len(s.toasts) == 0
}

func toastColor(kind ToastKind) lipgloss.Color {
	switch kind {
	case ToastError:
		return dangerColor
	case ToastWarning:
		return warningColor
	case ToastSuccess:
		return successColor
	default:
		return accentColor
	}
}

func toastIcon(kind ToastKind) string {
	switch kind {
	case ToastError:
		return "✗"
	case ToastWarning:
		return "!"
	case ToastSuccess:
		return "✓"
	default:
		return "•"
	}
}

// view renders the stack right-aligned in width columns, one line per toast.
func (s *toastStack) view(width int) string {
	if s.empty() {
		return ""
	}
	limit := maxToastWidth
	if width-4 < limit {
		limit = width - 4
	}
	if limit < 10 {
		limit = 10
	}

	lines := make([]string, 0, len(s.toasts))
	for _, t := range s.toasts {
		text := runewidth.Truncate(toastIcon(t.Kind)+" "+t.Message, limit, "…")
		line := lipgloss.NewStyle().
			Foreground(toastColor(t.Kind)).
			Bold(t.Kind == ToastError).
			Render(text)
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, line))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}
