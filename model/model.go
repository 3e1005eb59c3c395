package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"sterling/config"
	"sterling/estimate"
	"sterling/images"
	"sterling/speech"
	"sterling/storage"
)

// Estimator is satisfied by *estimate.Client.
type Estimator interface {
	Estimate(ctx context.Context, query string) (*estimate.Result, error)
}

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config    *config.Config
	Estimator Estimator
	Images    *images.Loader
	Speech    *speech.Capture
	Ledger    *storage.ReceiptLedger // nil when disabled
	Reports   *storage.Reports       // nil when disabled

	// Application data
	Conversation Conversation

	Quitting bool
	Version  string
}

// NewModel creates a Model with a fresh conversation. ledger and reports may be nil.
func NewModel(cfg *config.Config, estimator Estimator, ledger *storage.ReceiptLedger, reports *storage.Reports, version string) *Model {
	var rec speech.Recognizer
	if cfg != nil {
		rec = speech.NewCommandRecognizer(cfg.Speech)
	}

	return &Model{
		Config:       cfg,
		Estimator:    estimator,
		Images:       images.NewLoader(),
		Speech:       speech.NewCapture(rec),
		Ledger:       ledger,
		Reports:      reports,
		Conversation: NewConversation(),
		Version:      version,
	}
}

// Submit applies the submit transition and returns the request command, or
// nil when the submission was rejected.
func (m *Model) Submit() tea.Cmd {
	next, turn, ok := m.Conversation.Submit()
	if !ok {
		return nil
	}
	m.Conversation = next

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Model] Submitted turn %s (%d chars, %d images)",
			turn.MessageID, len(turn.Query), len(lastImages(next)))
	}
	return m.RequestEstimate(turn)
}

// ApplyEstimate folds an EstimateDoneMsg into the conversation.
func (m *Model) ApplyEstimate(msg EstimateDoneMsg) {
	if msg.Err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Estimate for turn %s failed: %v", msg.Turn.MessageID, msg.Err)
		}
		m.Conversation = m.Conversation.Fail()
		return
	}
	m.Conversation = m.Conversation.Resolve(msg.Result, msg.Attachments)
}

func lastImages(c Conversation) []images.Ref {
	if msg, ok := c.Last(); ok {
		return msg.Images
	}
	return nil
}
