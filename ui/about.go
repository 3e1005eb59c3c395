package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	ProductName = "Donna Sterling - AI Appraiser"
	Tagline     = "Expert in Property Valuation & Real Estate Analysis"
	Copyright   = "© 2025 Sterling Intelligence"
)

var Features = []string{
	"• Describe a property, get a justified estimate",
	"• Attach photos of the home for context",
	"• Dictate instead of typing",
	"• Valuation reports saved as PDF",
}

func renderAboutModal(a AppView, width, height int) string {
	var sb strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(successColor).
		Bold(true)

	sb.WriteString(titleStyle.Render(ProductName))
	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render(Tagline))
	sb.WriteString("\n\n")

	featureStyle := lipgloss.NewStyle().
		Foreground(dimColor)

	for _, feature := range Features {
		sb.WriteString(featureStyle.Render(feature))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	labelStyle := lipgloss.NewStyle().
		Foreground(accentColor).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(dimColor)

	version := a.dataModel.Version
	if version == "" {
		version = "dev"
	}

	sb.WriteString(labelStyle.Render("Version: "))
	sb.WriteString(valueStyle.Render(version))
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("Backend: "))
	sb.WriteString(valueStyle.Render(a.backendLabel()))
	sb.WriteString("\n\n")
	sb.WriteString(valueStyle.Render(Copyright))
	sb.WriteString("\n\n")

	kb := a.dataModel.Config.Keybindings
	sb.WriteString(featureStyle.Render(fmt.Sprintf("Press Esc or %s to close", kb.DisplayActionKey("about"))))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(sb.String()))
}
