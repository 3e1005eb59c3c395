package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sterling/config"
	"sterling/images"
	appmodel "sterling/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
)

const (
	assistantName  = "Donna"
	waitingMessage = "Appraising..."
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	conv := a.dataModel.Conversation

	var content strings.Builder
	for _, msg := range conv.Messages() {
		content.WriteString(a.formatMessage(msg))
	}

	if conv.InFlight() {
		timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
		role := AssistantStyle.Render(assistantName)
		content.WriteString(fmt.Sprintf("%s %s\n%s %s\n\n", timestamp, role, a.loadingSpinner.View(), waitingMessage))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func (a *AppView) formatMessage(msg appmodel.Message) string {
	timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

	body, ok := a.rendered[msg.ID]
	if !ok {
		// Plain text until the async render lands
		body = msg.Content
		if n := len(msg.Images); n > 0 {
			body = strings.TrimLeft(body+"\n"+DimStyle.Render(imageCountLabel(n)), "\n")
		}
	}

	if msg.Role == appmodel.RoleUser {
		return formatUserMessage(timestamp, UserStyle.Render("You"), body)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n%s\n", timestamp, AssistantStyle.Render(assistantName), body))
	for _, att := range msg.Attachments {
		sb.WriteString(formatAttachment(att))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func imageCountLabel(n int) string {
	if n == 1 {
		return "[1 image]"
	}
	return fmt.Sprintf("[%d images]", n)
}

func formatAttachment(att appmodel.Attachment) string {
	label := att.DisplayName
	if label == "" {
		label = att.Locator
	}
	line := "📎 " + AttachmentStyle.Render(label)
	if att.Locator != label {
		line += " " + DimStyle.Render(att.Locator)
	}
	return line
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + "┃" + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// renderPendingImages draws the chips above the input, or "" when empty.
func (a AppView) renderPendingImages() string {
	pending := a.dataModel.Conversation.PendingImages()
	if len(pending) == 0 {
		return ""
	}

	chips := make([]string, 0, len(pending)+1)
	chips = append(chips, DimStyle.Render("Images:"))
	for i, ref := range pending {
		label := fmt.Sprintf("🖼 %s", ref.Name)
		if i == a.selectedImage {
			chips = append(chips, SelectedChipStyle.Render("["+label+"]"))
		} else {
			chips = append(chips, ChipStyle.Render(label))
		}
	}
	return lipgloss.NewStyle().MaxWidth(a.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
}

// renderMessageAsync renders markdown and, for images, thumbnails off the update loop.
func (a AppView) renderMessageAsync(msg appmodel.Message) tea.Cmd {
	renderer := a.renderer
	width := a.width
	display := a.display()

	return func() tea.Msg {
		startTime := time.Now()

		var parts []string
		if strings.TrimSpace(msg.Content) != "" {
			rendered, err := renderer.Render(msg.Content, width)
			if err != nil && config.DebugLog != nil {
				config.DebugLog.Printf("[UI] Markdown render of %s failed: %v", msg.ID, err)
			}
			parts = append(parts, strings.TrimRight(rendered, "\n"))
		}
		if len(msg.Images) > 0 {
			parts = append(parts, renderThumbnails(msg.Images, display))
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Rendered message %s (%d chars) in %v", msg.ID, len(msg.Content), time.Since(startTime))
		}

		return markdownRenderedMsg{
			MessageID: msg.ID,
			Width:     width,
			Rendered:  strings.Join(parts, "\n"),
		}
	}
}

func renderThumbnails(refs []images.Ref, display config.DisplayConfig) string {
	if !display.Thumbnails {
		return DimStyle.Render(imageCountLabel(len(refs)))
	}

	width := display.ThumbnailWidth
	if width <= 0 {
		width = config.DefaultThumbnailWidth
	}
	profile := lipgloss.ColorProfile()

	blocks := make([]string, 0, len(refs))
	for _, ref := range refs {
		thumb, err := images.Thumbnail(ref, width, profile)
		if err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] Thumbnail for %s failed: %v", ref.Name, err)
			}
			thumb = DimStyle.Render("🖼 " + ref.Name)
		}
		caption := DimStyle.Render(truncateName(ref.Name, width))
		blocks = append(blocks, lipgloss.JoinVertical(lipgloss.Left, thumb, caption), " ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func truncateName(name string, width int) string {
	if lipgloss.Width(name) <= width {
		return name
	}
	r := []rune(name)
	if width <= 1 || len(r) <= width {
		return name
	}
	return string(r[:width-1]) + "…"
}

func postProcessMarkdown(rendered string, width int) string {
	// 1. Inline code: blue background → red text
	rendered = fixInlineCode(rendered)

	// 2. Color plain URLs red (autolink disabled keeps URLs plain)
	rendered = fixMarkdownLinks(rendered)

	// 3. Frame code blocks with horizontal lines
	rendered = frameCodeBlocks(rendered, width)

	return rendered
}

func preprocessLinks(content string) string {
	// [text](url) → url
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Skip code blocks (┃ prefix from go-term-markdown)
		if !strings.Contains(line, "┃") {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"
	lineLen := width - 4
	if lineLen < 10 {
		lineLen = 10
	}

	closeBlock := func() {
		result = append(result, codeBlockLines...)
		result = append(result, "")
		result = append(result, darkGray+strings.Repeat("━", lineLen)+reset)
		result = append(result, "")
	}

	for _, line := range lines {
		if strings.Contains(line, "┃") {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLines = []string{}
				result = append(result, "")

				label := "[code]"
				leftLen := (lineLen - len(label)) / 2
				rightLen := lineLen - len(label) - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border, "")
			}
			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			closeBlock()
			codeBlockLines = nil
			inCodeBlock = false
		}
		result = append(result, line)
	}

	if inCodeBlock && len(codeBlockLines) > 0 {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, "┃")
	if idx < 0 {
		return line
	}
	after := idx + len("┃")
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}

// conversationTranscript formats the log for the clipboard.
func conversationTranscript(msgs []appmodel.Message) string {
	var sb strings.Builder
	for _, msg := range msgs {
		role := "You"
		if msg.Role == appmodel.RoleAssistant {
			role = assistantName
		}
		sb.WriteString(fmt.Sprintf("[%s] %s:\n%s\n", msg.Timestamp.Format("15:04"), role, msg.Content))
		if n := len(msg.Images); n > 0 {
			sb.WriteString(imageCountLabel(n) + "\n")
		}
		for _, att := range msg.Attachments {
			sb.WriteString(fmt.Sprintf("[%s] %s\n", att.Kind, att.Locator))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
