package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sterling/config"
)

func TestNewMarkdownRenderer(t *testing.T) {
	_, ok := newMarkdownRenderer(config.RendererTerm).(termRenderer)
	require.True(t, ok)
	_, ok = newMarkdownRenderer("").(termRenderer)
	require.True(t, ok)
	_, ok = newMarkdownRenderer(config.RendererGlamour).(glamourRenderer)
	require.True(t, ok)
}

func TestTermRenderer(t *testing.T) {
	out, err := termRenderer{}.Render("## Estimate\n\nValue is **$450,000**. See [the report](https://files.test/r.pdf).", 80)
	require.NoError(t, err)

	plain := stripANSI(out)
	require.Contains(t, plain, "Estimate")
	require.Contains(t, plain, "$450,000")
	require.NotContains(t, plain, "**")
	// links collapse to their URL
	require.Contains(t, plain, "https://files.test/r.pdf")
	require.NotContains(t, plain, "[the report]")
}

func TestGlamourRenderer(t *testing.T) {
	out, err := glamourRenderer{style: "dark"}.Render("# Comparable Sales\n\n- 12 Oak St: $430k", 80)
	require.NoError(t, err)

	plain := stripANSI(out)
	require.Contains(t, plain, "Comparable Sales")
	require.Contains(t, plain, "12 Oak St")
	require.False(t, strings.HasPrefix(out, "\n"))
}

func TestPreprocessLinks(t *testing.T) {
	require.Equal(t, "see https://a.test/x and http://b.test",
		preprocessLinks("see [report](https://a.test/x) and [b](http://b.test)"))
	require.Equal(t, "[not a link](ftp://x)", preprocessLinks("[not a link](ftp://x)"))
}

func TestFrameCodeBlocks(t *testing.T) {
	in := "before\n┃ line one\n┃ line two\nafter"
	out := stripANSI(frameCodeBlocks(in, 30))

	require.Contains(t, out, "[code]")
	require.Contains(t, out, "\nline one\nline two\n")
	require.NotContains(t, out, "┃")
	require.True(t, strings.HasPrefix(out, "before\n"))
	require.True(t, strings.HasSuffix(out, "after"))
}

func TestStripCodeBlockPrefix(t *testing.T) {
	require.Equal(t, "x := 1", stripCodeBlockPrefix("  ┃ x := 1"))
	require.Equal(t, "plain", stripCodeBlockPrefix("plain"))
}

func TestFormatUserMessage(t *testing.T) {
	out := stripANSI(formatUserMessage("[10:00]", "You", "line one\nline two"))
	require.Equal(t, "┃ [10:00] You\n┃ line one\n┃ line two\n\n", out)
}

func TestConversationTranscriptCountsImages(t *testing.T) {
	v := newTestView(t, nil)
	v = send(t, v, imagesConvertedMsg{Refs: testRefs("a.png", "b.png"), Selected: 2})
	v.dataModel.Conversation = v.dataModel.Conversation.WithInput("what is it worth")
	next, _, ok := v.dataModel.Conversation.Submit()
	require.True(t, ok)

	text := conversationTranscript(next.Messages())
	require.Contains(t, text, "what is it worth\n[2 images]\n")
}
