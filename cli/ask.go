package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"sterling/config"
	"sterling/model"
	"sterling/storage"
)

// Ask runs one submit/resolve cycle through the same pipeline as the chat
// (report saving and receipts included) and prints the reply to out.
func Ask(cfg *config.Config, estimator model.Estimator, ledger *storage.ReceiptLedger, reports *storage.Reports, args Args, out io.Writer) error {
	m := model.NewModel(cfg, estimator, ledger, reports, "")
	m.Conversation = m.Conversation.WithInput(args.Query)

	cmd := m.Submit()
	if cmd == nil {
		return fmt.Errorf("ask: empty query")
	}
	done, ok := cmd().(model.EstimateDoneMsg)
	if !ok {
		return fmt.Errorf("ask: unexpected response")
	}
	m.ApplyEstimate(done)
	if done.Err != nil {
		return done.Err
	}

	reply, _ := m.Conversation.LastReply()
	text := reply.Content
	if !args.Raw {
		text = renderMarkdown(text)
	}
	fmt.Fprintln(out, strings.TrimRight(text, "\n"))

	for _, att := range reply.Attachments {
		fmt.Fprintf(out, "\nReport: %s\n", att.Locator)
	}
	if done.ReceiptID != "" {
		fmt.Fprintf(out, "Receipt: %s\n", done.ReceiptID)
	}
	return nil
}

func renderMarkdown(content string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to plain text if renderer initialization fails
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[CLI] Markdown render failed: %v", err)
		}
		return content
	}
	return out
}
