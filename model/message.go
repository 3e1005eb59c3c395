package model

import (
	"time"

	"github.com/google/uuid"

	"sterling/images"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const AttachmentPDF = "pdf"

// Attachment is a downloadable artifact shown under a message. Locator is a
// local path or a URL.
type Attachment struct {
	Kind        string
	Locator     string
	DisplayName string
}

// Message is one entry of the conversation log. It is never modified after
// it has been appended.
type Message struct {
	ID          string
	Role        Role
	Content     string // may be empty when only images were sent
	Images      []images.Ref
	Attachments []Attachment
	Timestamp   time.Time
}

// NewMessageID returns a time-ordered unique identifier.
func NewMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
