package model

import (
	"slices"
	"strings"
	"time"

	"sterling/estimate"
	"sterling/images"
)

// Greeting seeds every new conversation.
const Greeting = "Hello, I'm Donna Sterling, your AI Appraiser. How can I assist you with property valuation today?"

// Conversation is the state of one chat. It is a value: every transition
// returns a new Conversation and leaves the receiver, including the slices
// it exposes, untouched.
type Conversation struct {
	messages      []Message
	pendingImages []images.Ref
	input         string
	inFlight      bool
	replyID       string // ID reserved for the in-flight reply
}

// Turn describes a submission that was accepted and now waits for the backend.
type Turn struct {
	MessageID string
	// ReplyID is the ID the assistant reply will carry once resolved.
	ReplyID string
	// Query is the input exactly as typed, before trimming.
	Query string
}

// NewConversation returns a conversation holding only the greeting.
func NewConversation() Conversation {
	return Conversation{
		messages: []Message{{
			ID:        NewMessageID(),
			Role:      RoleAssistant,
			Content:   Greeting,
			Timestamp: time.Now(),
		}},
	}
}

func (c Conversation) Messages() []Message         { return slices.Clone(c.messages) }
func (c Conversation) PendingImages() []images.Ref { return slices.Clone(c.pendingImages) }
func (c Conversation) Input() string               { return c.input }
func (c Conversation) InFlight() bool              { return c.inFlight }
func (c Conversation) Len() int                    { return len(c.messages) }

// Last returns the newest message.
func (c Conversation) Last() (Message, bool) {
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// LastReply returns the newest assistant message.
func (c Conversation) LastReply() (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// CanSubmit reports whether Submit would accept the current state.
func (c Conversation) CanSubmit() bool {
	if c.inFlight {
		return false
	}
	return strings.TrimSpace(c.input) != "" || len(c.pendingImages) > 0
}

func (c Conversation) WithInput(text string) Conversation {
	c.input = text
	return c
}

func (c Conversation) AddPendingImages(refs []images.Ref) Conversation {
	if len(refs) == 0 {
		return c
	}
	c.pendingImages = append(slices.Clip(c.pendingImages), refs...)
	return c
}

// RemovePendingImage drops the image at index; out of range is a no-op.
func (c Conversation) RemovePendingImage(index int) Conversation {
	c.pendingImages = images.RemoveImage(c.pendingImages, index)
	return c
}

// Submit turns the input and pending images into a user message. It is
// rejected, returning the receiver and false, when there is nothing to send
// or a request is already in flight.
func (c Conversation) Submit() (Conversation, Turn, bool) {
	if !c.CanSubmit() {
		return c, Turn{}, false
	}

	msg := Message{
		ID:        NewMessageID(),
		Role:      RoleUser,
		Content:   strings.TrimSpace(c.input),
		Images:    slices.Clone(c.pendingImages),
		Timestamp: time.Now(),
	}
	turn := Turn{MessageID: msg.ID, ReplyID: NewMessageID(), Query: c.input}

	next := c
	next.messages = append(slices.Clip(c.messages), msg)
	next.input = ""
	next.pendingImages = nil
	next.inFlight = true
	next.replyID = turn.ReplyID
	return next, turn, true
}

// Resolve appends the assistant reply for an in-flight turn, under the
// turn's ReplyID. It is ignored when nothing is in flight; a nil result ends
// the turn like Fail.
func (c Conversation) Resolve(res *estimate.Result, attachments []Attachment) Conversation {
	if !c.inFlight {
		return c
	}
	if res == nil {
		return c.Fail()
	}
	reply := Message{
		ID:          c.replyID,
		Role:        RoleAssistant,
		Content:     res.Justification,
		Attachments: slices.Clone(attachments),
		Timestamp:   time.Now(),
	}
	c.messages = append(slices.Clip(c.messages), reply)
	c.inFlight = false
	c.replyID = ""
	return c
}

// Fail ends the in-flight turn without adding a message.
func (c Conversation) Fail() Conversation {
	c.inFlight = false
	c.replyID = ""
	return c
}
