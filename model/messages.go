package model

import (
	"sterling/estimate"
	"sterling/images"
	"sterling/speech"
)

type EstimateDoneMsg struct {
	Turn        Turn
	Result      *estimate.Result
	Attachments []Attachment
	ReceiptID   string
	Err         error
}

type ImagesConvertedMsg struct {
	Refs     []images.Ref
	Selected int
	Err      error
}

type DictationStartedMsg struct {
	Updates <-chan speech.Update
	Err     error
}

// TranscriptMsg and DictationEndedMsg carry the channel they were read from
// so a view can drop updates from a session it has already left.
type TranscriptMsg struct {
	Updates <-chan speech.Update
	Text    string
}

// DictationEndedMsg is sent when the update channel closes. Err is set when
// the recognizer stopped on its own with an error.
type DictationEndedMsg struct {
	Updates <-chan speech.Update
	Err     error
}

type MarkdownRenderedMsg struct {
	MessageID string
	Width     int
	Rendered  string
}
