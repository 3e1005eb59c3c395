package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sterling/config"
)

type helpSection struct {
	title string
	rows  [][2]string // key, description
}

func helpSections(kb *config.KeyBindingsConfig) [][]helpSection {
	key := kb.DisplayActionKey
	left := []helpSection{
		{"Global", [][2]string{
			{key("about"), "About Donna"},
			{key("help"), "Toggle this help"},
			{key("quit"), "Quit"},
			{"Esc", "Dismiss notifications"},
		}},
		{"Composing", [][2]string{
			{"Enter", "Send message"},
			{"Alt+Enter", "New line"},
			{key("attach_images"), "Attach images"},
			{key("next_image"), "Select next image"},
			{key("remove_image"), "Remove selected image"},
			{key("dictate"), "Start/stop dictation"},
			{key("clear_input"), "Clear input"},
		}},
	}
	right := []helpSection{
		{"Chat Navigation", [][2]string{
			{key("scroll_down") + "/" + key("scroll_up"), "Scroll one line"},
			{key("half_page_down") + "/" + key("half_page_up"), "Half page"},
			{"PgDn/PgUp", "Full page"},
			{key("scroll_to_top"), "Jump to top"},
			{key("scroll_to_bottom"), "Jump to bottom"},
		}},
		{"Chat Actions", [][2]string{
			{key("yank_last_response"), "Copy last valuation"},
			{key("yank_conversation"), "Copy conversation"},
			{key("copy_report"), "Copy report location"},
		}},
	}
	return [][]helpSection{left, right}
}

func renderHelpColumn(sections []helpSection) string {
	heading := lipgloss.NewStyle().Foreground(accentColor)

	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(heading.Render("## " + s.title))
		for _, row := range s.rows {
			fmt.Fprintf(&sb, "\n• %-15s %s", row[0], row[1])
		}
	}
	return lipgloss.NewStyle().Width(44).PaddingLeft(4).Render(sb.String())
}

func (a AppView) renderHelpModal(width, height int) string {
	kb := a.dataModel.Config.Keybindings

	var columns []string
	for _, col := range helpSections(kb) {
		columns = append(columns, renderHelpColumn(col))
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(successColor).Render("Sterling - Keyboard Shortcuts"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		"",
		DimStyle.Render(fmt.Sprintf("Press %s or Esc to close", kb.DisplayActionKey("help"))),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(content))
}
