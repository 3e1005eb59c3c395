package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"sterling/estimate"
	"sterling/images"
)

func TestNewConversation_Greeting(t *testing.T) {
	c := NewConversation()
	require.Equal(t, 1, c.Len())

	greeting, ok := c.Last()
	require.True(t, ok)
	require.Equal(t, RoleAssistant, greeting.Role)
	require.Equal(t, Greeting, greeting.Content)
	require.NotEmpty(t, greeting.ID)
	require.False(t, c.InFlight())
}

func TestSubmit_EmptyIsNoOp(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		c := NewConversation().WithInput(input)
		next, _, ok := c.Submit()
		require.False(t, ok)
		require.Equal(t, c.Len(), next.Len())
		require.False(t, next.InFlight())
		require.Equal(t, input, next.Input())
	}
}

func TestSubmit_RejectedWhileInFlight(t *testing.T) {
	c, _, ok := NewConversation().WithInput("first").Submit()
	require.True(t, ok)

	c = c.WithInput("second")
	next, _, ok := c.Submit()
	require.False(t, ok)
	require.Equal(t, c.Len(), next.Len())
	require.Equal(t, "second", next.Input())
}

func TestSubmit_AppendsTrimmedUserMessage(t *testing.T) {
	refs := []images.Ref{{Name: "front.png", URL: "data:image/png;base64,AA=="}}
	c := NewConversation().WithInput("  3 bed 2 bath  ").AddPendingImages(refs)

	next, turn, ok := c.Submit()
	require.True(t, ok)
	require.Equal(t, "  3 bed 2 bath  ", turn.Query)
	require.True(t, next.InFlight())
	require.Empty(t, next.Input())
	require.Empty(t, next.PendingImages())

	msg, _ := next.Last()
	require.Equal(t, turn.MessageID, msg.ID)
	require.Equal(t, RoleUser, msg.Role)
	require.Equal(t, "3 bed 2 bath", msg.Content)
	require.Equal(t, refs, msg.Images)
}

func TestSubmit_ImagesOnly(t *testing.T) {
	c := NewConversation().AddPendingImages([]images.Ref{{Name: "a.png"}})
	next, turn, ok := c.Submit()
	require.True(t, ok)
	require.Empty(t, turn.Query)

	msg, _ := next.Last()
	require.Empty(t, msg.Content)
	require.Len(t, msg.Images, 1)
}

func TestResolveAndFail(t *testing.T) {
	c, turn, ok := NewConversation().WithInput("query").Submit()
	require.True(t, ok)
	require.NotEmpty(t, turn.ReplyID)
	require.NotEqual(t, turn.MessageID, turn.ReplyID)

	resolved := c.Resolve(&estimate.Result{Justification: "Estimated value: $500,000"}, []Attachment{{Kind: AttachmentPDF, Locator: "/tmp/r.pdf"}})
	require.False(t, resolved.InFlight())
	require.Equal(t, c.Len()+1, resolved.Len())
	reply, _ := resolved.LastReply()
	require.Equal(t, "Estimated value: $500,000", reply.Content)
	require.Equal(t, turn.ReplyID, reply.ID)
	require.Len(t, reply.Attachments, 1)

	failed := c.Fail()
	require.False(t, failed.InFlight())
	require.Equal(t, c.Len(), failed.Len())

	// stale result with nothing in flight
	require.Equal(t, resolved.Len(), resolved.Resolve(&estimate.Result{Justification: "late"}, nil).Len())

	empty := c.Resolve(nil, nil)
	require.False(t, empty.InFlight())
	require.Equal(t, c.Len(), empty.Len())
	require.True(t, empty.WithInput("next").CanSubmit())
}

func TestTransitionsDoNotMutatePreviousState(t *testing.T) {
	start := NewConversation().
		WithInput("loft").
		AddPendingImages([]images.Ref{{Name: "a"}, {Name: "b"}, {Name: "c"}})

	removed := start.RemovePendingImage(1)
	require.Len(t, start.PendingImages(), 3)
	require.Equal(t, []images.Ref{{Name: "a"}, {Name: "c"}}, removed.PendingImages())

	submitted, _, ok := start.Submit()
	require.True(t, ok)
	require.Equal(t, 1, start.Len())
	require.Equal(t, "loft", start.Input())
	require.False(t, start.InFlight())

	// appending to two successors of the same state must not alias
	a := submitted.Resolve(&estimate.Result{Justification: "A"}, nil)
	b := submitted.Resolve(&estimate.Result{Justification: "B"}, nil)
	lastA, _ := a.Last()
	lastB, _ := b.Last()
	require.Equal(t, "A", lastA.Content)
	require.Equal(t, "B", lastB.Content)

	exposed := a.Messages()
	exposed[0].Content = "tampered"
	first := a.Messages()[0]
	require.Equal(t, Greeting, first.Content)
}

func TestRemovePendingImage_OutOfRange(t *testing.T) {
	c := NewConversation().AddPendingImages([]images.Ref{{Name: "a"}})
	require.Len(t, c.RemovePendingImage(5).PendingImages(), 1)
	require.Len(t, c.RemovePendingImage(-1).PendingImages(), 1)
}

// At most one request is outstanding over any sequence of operations.
func TestInFlightInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(90210))

	for run := 0; run < 50; run++ {
		c := NewConversation()
		outstanding := 0

		for step := 0; step < 200; step++ {
			switch rng.Intn(5) {
			case 0:
				c = c.WithInput("")
			case 1:
				c = c.WithInput("house")
			case 2:
				var ok bool
				c, _, ok = c.Submit()
				if ok {
					outstanding++
				}
			case 3:
				if outstanding > 0 {
					c = c.Resolve(&estimate.Result{Justification: "ok"}, nil)
					outstanding--
				}
			case 4:
				if outstanding > 0 {
					c = c.Fail()
					outstanding--
				}
			}
			require.LessOrEqual(t, outstanding, 1)
			require.Equal(t, outstanding == 1, c.InFlight())
		}
	}
}

func TestMessageIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewMessageID()
		require.False(t, seen[id])
		seen[id] = true
	}
}
