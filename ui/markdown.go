package ui

import (
	"fmt"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	"sterling/config"
)

// markdownRenderer turns message markdown into terminal text at a given width.
type markdownRenderer interface {
	Render(content string, width int) (string, error)
}

func newMarkdownRenderer(name string) markdownRenderer {
	if name == config.RendererGlamour {
		style := "dark"
		if !lipgloss.HasDarkBackground() {
			style = "light"
		}
		return glamourRenderer{style: style}
	}
	return termRenderer{}
}

// termRenderer is go-term-markdown over gomarkdown: fast and dependency light.
type termRenderer struct{}

func (termRenderer) Render(content string, width int) (out string, err error) {
	defer func() {
		// go-term-markdown panics on a few malformed tables
		if r := recover(); r != nil {
			out, err = content, fmt.Errorf("markdown render panic: %v", r)
		}
	}()

	// Keep plain URLs as plain text so terminals can detect them
	content = preprocessLinks(content)
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	return postProcessMarkdown(string(rendered), width), nil
}

type glamourRenderer struct {
	style string
}

func (g glamourRenderer) Render(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(g.style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return content, err
	}
	out, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return strings.Trim(out, "\n"), nil
}
