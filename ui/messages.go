package ui

import (
	"sterling/model"
)

type Message = model.Message

// Message type aliases - these are defined in the model package
type estimateDoneMsg = model.EstimateDoneMsg
type imagesConvertedMsg = model.ImagesConvertedMsg
type dictationStartedMsg = model.DictationStartedMsg
type transcriptMsg = model.TranscriptMsg
type dictationEndedMsg = model.DictationEndedMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
