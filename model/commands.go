package model

import (
	"context"
	"errors"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"sterling/config"
	"sterling/estimate"
	"sterling/images"
	"sterling/speech"
	"sterling/storage"
)

// ErrNoResult is reported when an estimator returns neither a result nor an error.
var ErrNoResult = errors.New("estimator returned no result")

// RequestEstimate sends turn.Query to the backend. On success the PDF report
// is saved and a receipt recorded when those are enabled; failures of either
// are logged and never fail the turn.
func (m *Model) RequestEstimate(turn Turn) tea.Cmd {
	estimator := m.Estimator
	reports := m.Reports
	ledger := m.Ledger

	return func() tea.Msg {
		if estimator == nil {
			return EstimateDoneMsg{Turn: turn, Err: estimate.ErrMissingBaseURL}
		}

		res, err := estimator.Estimate(context.Background(), turn.Query)
		if err == nil && res == nil {
			err = ErrNoResult
		}
		if err != nil {
			return EstimateDoneMsg{Turn: turn, Err: err}
		}

		attachments := reportAttachments(reports, turn, res)
		receiptID := recordReceipt(ledger, turn, res, attachments)

		return EstimateDoneMsg{
			Turn:        turn,
			Result:      res,
			Attachments: attachments,
			ReceiptID:   receiptID,
		}
	}
}

func reportAttachments(reports *storage.Reports, turn Turn, res *estimate.Result) []Attachment {
	if !res.HasPDF() {
		return nil
	}

	if reports != nil && res.PDFBase64 != "" {
		id := res.UUID
		if id == "" {
			id = turn.ReplyID
		}
		data, err := res.PDF()
		if err == nil {
			var path string
			path, err = reports.Save(id, data)
			if err == nil {
				return []Attachment{{Kind: AttachmentPDF, Locator: path, DisplayName: filepath.Base(path)}}
			}
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Could not save PDF report for %s: %v", turn.MessageID, err)
		}
	}

	if res.PDFURL != "" {
		return []Attachment{{Kind: AttachmentPDF, Locator: res.PDFURL, DisplayName: "Valuation report (PDF)"}}
	}
	return nil
}

func recordReceipt(ledger *storage.ReceiptLedger, turn Turn, res *estimate.Result, attachments []Attachment) string {
	if ledger == nil {
		return ""
	}

	receipt := storage.Receipt{
		ID:            turn.ReplyID,
		Query:         turn.Query,
		Justification: res.Justification,
		BackendUUID:   res.UUID,
		PDFHash:       res.PDFHash,
		TxHash:        res.TxHash,
		PDFURL:        res.PDFURL,
	}
	for _, a := range attachments {
		if a.Kind == AttachmentPDF && a.Locator != res.PDFURL {
			receipt.PDFPath = a.Locator
		}
	}

	stored, err := ledger.Record(receipt)
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Could not record receipt for %s: %v", turn.MessageID, err)
		}
		return ""
	}
	return stored.ID
}

// ConvertImages reads the selected files off the update loop. The result
// carries either every accepted image or an error, never a partial list.
func (m *Model) ConvertImages(files []string) tea.Cmd {
	if len(files) == 0 {
		return nil
	}
	loader := m.Images
	return func() tea.Msg {
		refs, err := loader.Convert(context.Background(), files)
		return ImagesConvertedMsg{Refs: refs, Selected: len(files), Err: err}
	}
}

// ApplyImages appends converted images to the pending list.
func (m *Model) ApplyImages(msg ImagesConvertedMsg) {
	if msg.Err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] Image conversion failed: %v", msg.Err)
		}
		return
	}
	m.Conversation = m.Conversation.AddPendingImages(msg.Refs)
}

// RemovePendingImage drops one pending image.
func (m *Model) RemovePendingImage(index int) {
	m.Conversation = m.Conversation.RemovePendingImage(index)
}

// StartDictation asks the speech capture to begin listening.
func (m *Model) StartDictation() tea.Cmd {
	capture := m.Speech
	return func() tea.Msg {
		updates, err := capture.Start(context.Background())
		return DictationStartedMsg{Updates: updates, Err: err}
	}
}

func (m *Model) StopDictation() {
	m.Speech.Stop()
}

// Listening reports whether dictation is active.
func (m *Model) Listening() bool {
	return m.Speech.State() == speech.Listening
}

// WaitForTranscript delivers the next dictation update. Re-issue it after
// every TranscriptMsg until a DictationEndedMsg arrives.
func WaitForTranscript(updates <-chan speech.Update) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return DictationEndedMsg{Updates: updates}
		}
		if u.Err != nil {
			return DictationEndedMsg{Updates: updates, Err: u.Err}
		}
		return TranscriptMsg{Updates: updates, Text: u.Transcript}
	}
}

// ApplyTranscript replaces the input with the cumulative transcript.
func (m *Model) ApplyTranscript(msg TranscriptMsg) {
	m.Conversation = m.Conversation.WithInput(msg.Text)
}

func PendingImageNames(refs []images.Ref) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}
