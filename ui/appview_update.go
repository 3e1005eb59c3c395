package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"sterling/config"
	"sterling/estimate"
	appmodel "sterling/model"
	"sterling/speech"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := a.update(msg)
	next.layout()
	return next, cmd
}

func (a AppView) update(msg tea.Msg) (AppView, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	if a.imagePicker.Processing {
		if _, ok := msg.(spinner.TickMsg); ok {
			a.imagePicker.Spinner, cmd = a.imagePicker.Spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Update file picker if active (needs to receive ALL message types EXCEPT KeyMsg)
	// KeyMsg is handled in handleImagePicker to check the selection before updating
	if a.imagePicker.Active && !a.imagePicker.Processing {
		switch msg.(type) {
		case tea.KeyMsg, tea.WindowSizeMsg:
		default:
			// Forward non-KeyMsg (like readDirMsg)
			a.imagePicker.Picker, cmd = a.imagePicker.Picker.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		a.viewport.Width = a.width
		a.viewport.Height = a.height - reservedLines
		a.textarea.SetWidth(a.width)
		a.imagePicker.Picker.Height = max(a.height-16, 5)

		a.ready = true
		a.updateViewportContent(true)

		// Re-render everything at the new width
		if a.renderedWidth != a.width {
			a.renderedWidth = a.width
			cmds = append(cmds, a.renderAll())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if a.dataModel.Conversation.InFlight() {
			a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
			cmds = append(cmds, cmd)
			a.updateViewportContent(a.viewport.AtBottom())
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		next, cmd := a.handleKey(msg)
		return next, tea.Batch(append(cmds, cmd)...)

	case estimateDoneMsg:
		return a.handleEstimateDone(msg)

	case imagesConvertedMsg:
		return a.handleImagesConverted(msg)

	case dictationStartedMsg:
		return a.handleDictationStarted(msg)

	case transcriptMsg:
		if a.dictation == nil || msg.Updates != a.dictation {
			return a, nil
		}
		a.dataModel.ApplyTranscript(msg)
		a.textarea.SetValue(a.dataModel.Conversation.Input())
		a.textarea.CursorEnd()
		return a, appmodel.WaitForTranscript(a.dictation)

	case dictationEndedMsg:
		if msg.Updates != a.dictation {
			return a, nil
		}
		a.dictation = nil
		if msg.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] Dictation ended with error: %v", msg.Err)
			}
			return a, a.toasts.push(ToastError, "Speech recognition error: "+errorText(msg.Err))
		}
		return a, nil

	case toastExpiredMsg:
		a.toasts.dismiss(msg.ID)
		return a, nil

	case markdownRenderedMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] markdownRenderedMsg received for message %s", msg.MessageID)
		}
		// A resize may have queued a newer render
		if msg.Width != a.renderedWidth {
			return a, nil
		}
		a.rendered[msg.MessageID] = msg.Rendered
		a.updateViewportContent(a.viewport.AtBottom())
		return a, nil
	}

	return a, tea.Batch(cmds...)
}

func (a AppView) renderAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, msg := range a.dataModel.Conversation.Messages() {
		cmds = append(cmds, a.renderMessageAsync(msg))
	}
	return tea.Batch(cmds...)
}

func (a AppView) isAction(msg tea.KeyMsg, action string) bool {
	k := a.dataModel.Config.Keybindings.GetActionKey(action)
	return k != "" && msg.String() == k
}

func (a AppView) handleKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	// Always-global shortcuts
	if a.isAction(msg, "quit") || msg.String() == "ctrl+c" {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Quit requested")
		}
		a.dataModel.StopDictation()
		a.dictation = nil
		a.dataModel.Quitting = true
		return a, tea.Quit
	}

	if a.isAction(msg, "help") {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		if msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	if a.imagePicker.Active {
		return a.handleImagePicker(msg)
	}

	if a.isAction(msg, "about") {
		a.showAbout = !a.showAbout
		return a, nil
	}
	if a.showAbout {
		if msg.String() == "esc" {
			a.showAbout = false
		}
		return a, nil
	}

	switch {
	case msg.String() == "enter":
		return a.submit()

	case msg.String() == "esc":
		a.toasts.dismissAll()
		return a, nil

	case a.isAction(msg, "attach_images"):
		a.imagePicker.Activate()
		return a, a.imagePicker.Picker.Init()

	case a.isAction(msg, "next_image"):
		if n := len(a.dataModel.Conversation.PendingImages()); n > 0 {
			a.selectedImage = (a.selectedImage + 1) % n
		}
		return a, nil

	case a.isAction(msg, "remove_image"):
		pending := a.dataModel.Conversation.PendingImages()
		if len(pending) == 0 {
			return a, nil
		}
		name := pending[a.selectedImage].Name
		a.dataModel.RemovePendingImage(a.selectedImage)
		a.clampSelectedImage()
		return a, a.toasts.push(ToastStatus, "Removed "+name)

	case a.isAction(msg, "dictate"):
		if a.dataModel.Listening() {
			a.dataModel.StopDictation()
			a.dictation = nil
			return a, a.toasts.push(ToastStatus, "Stopped listening")
		}
		return a, a.dataModel.StartDictation()

	case a.isAction(msg, "clear_input"):
		a.textarea.Reset()
		a.dataModel.Conversation = a.dataModel.Conversation.WithInput("")
		return a, nil

	case a.isAction(msg, "yank_last_response"):
		reply, ok := a.dataModel.Conversation.LastReply()
		if !ok {
			return a, nil
		}
		return a, a.copyToClipboard(reply.Content, "Copied last response")

	case a.isAction(msg, "yank_conversation"):
		text := conversationTranscript(a.dataModel.Conversation.Messages())
		return a, a.copyToClipboard(text, "Copied conversation")

	case a.isAction(msg, "copy_report"):
		att, ok := lastReport(a.dataModel.Conversation.Messages())
		if !ok {
			return a, a.toasts.push(ToastWarning, "No valuation report yet")
		}
		return a, a.copyToClipboard(att.Locator, "Copied report location")

	case a.isAction(msg, "scroll_down"):
		a.viewport.LineDown(1)
		return a, nil

	case a.isAction(msg, "scroll_up"):
		a.viewport.LineUp(1)
		return a, nil

	case a.isAction(msg, "half_page_down"), msg.String() == "alt+down":
		a.viewport.HalfPageDown()
		return a, nil

	case a.isAction(msg, "half_page_up"), msg.String() == "alt+up":
		a.viewport.HalfPageUp()
		return a, nil

	case a.isAction(msg, "page_down"), msg.String() == "pgdown":
		a.viewport.PageDown()
		return a, nil

	case a.isAction(msg, "page_up"), msg.String() == "pgup":
		a.viewport.PageUp()
		return a, nil

	case a.isAction(msg, "scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil

	case a.isAction(msg, "scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	a.dataModel.Conversation = a.dataModel.Conversation.WithInput(a.textarea.Value())
	return a, cmd
}

func (a AppView) submit() (AppView, tea.Cmd) {
	a.dataModel.Conversation = a.dataModel.Conversation.WithInput(a.textarea.Value())
	requestCmd := a.dataModel.Submit()
	if requestCmd == nil {
		return a, nil
	}

	// A running transcript would refill the cleared input
	a.dataModel.StopDictation()
	a.dictation = nil
	a.textarea.Reset()
	a.selectedImage = 0

	cmds := []tea.Cmd{requestCmd, a.loadingSpinner.Tick}
	if sent, ok := a.dataModel.Conversation.Last(); ok {
		cmds = append(cmds, a.renderMessageAsync(sent))
	}
	a.updateViewportContent(true)
	return a, tea.Batch(cmds...)
}

func (a AppView) handleEstimateDone(msg estimateDoneMsg) (AppView, tea.Cmd) {
	a.dataModel.ApplyEstimate(msg)
	a.updateViewportContent(true)

	if msg.Err != nil {
		if a.dataModel.Config.Notifications.EstimateErrors {
			return a, a.toasts.push(ToastError, estimateErrorText(msg.Err))
		}
		return a, nil
	}

	var cmds []tea.Cmd
	if reply, ok := a.dataModel.Conversation.LastReply(); ok {
		cmds = append(cmds, a.renderMessageAsync(reply))
	}
	for _, att := range msg.Attachments {
		if _, err := os.Stat(att.Locator); err == nil {
			cmds = append(cmds, a.toasts.push(ToastSuccess, "Report saved to "+att.Locator))
		}
	}
	return a, tea.Batch(cmds...)
}

func (a AppView) handleImagePicker(msg tea.KeyMsg) (AppView, tea.Cmd) {
	var cmd tea.Cmd

	// Reading files: wait for imagesConvertedMsg
	if a.imagePicker.Processing {
		return a, nil
	}

	switch msg.String() {
	case "esc":
		a.imagePicker.Reset()
		return a, nil
	case "tab":
		if len(a.imagePicker.Selected) == 0 {
			return a, nil
		}
		a.imagePicker.Processing = true
		return a, tea.Batch(
			a.dataModel.ConvertImages(a.imagePicker.Selected),
			a.imagePicker.Spinner.Tick,
		)
	}

	// Update picker with the KeyMsg FIRST
	a.imagePicker.Picker, cmd = a.imagePicker.Picker.Update(msg)

	if path := a.imagePicker.Picker.Path; path != "" {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[UI] Image picker toggled %s", path)
			}
			a.imagePicker.Toggle(path)
		}
		// Clear so the same file can be toggled again
		a.imagePicker.Picker.Path = ""
	}

	return a, cmd
}

func (a AppView) handleImagesConverted(msg imagesConvertedMsg) (AppView, tea.Cmd) {
	a.imagePicker.Reset()
	a.dataModel.ApplyImages(msg)
	a.clampSelectedImage()

	if msg.Err != nil {
		return a, a.toasts.push(ToastError, "Could not attach images: "+errorText(msg.Err))
	}

	skipped := msg.Selected - len(msg.Refs)
	switch {
	case len(msg.Refs) == 0:
		return a, a.toasts.push(ToastWarning, "No image files selected")
	case skipped == 1:
		return a, a.toasts.push(ToastWarning, "1 non-image file skipped")
	case skipped > 1:
		return a, a.toasts.push(ToastWarning, fmt.Sprintf("%d non-image files skipped", skipped))
	}
	return a, nil
}

func (a AppView) handleDictationStarted(msg dictationStartedMsg) (AppView, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, speech.ErrAlreadyListening) {
			return a, nil
		}
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Dictation did not start: %v", msg.Err)
		}
		if !speech.IsUserFacing(msg.Err) {
			return a, a.toasts.push(ToastError, "Could not start dictation")
		}
		return a, a.toasts.push(ToastError, dictationErrorText(msg.Err))
	}

	a.dictation = msg.Updates
	return a, tea.Batch(
		a.toasts.push(ToastStatus, "Listening..."),
		appmodel.WaitForTranscript(a.dictation),
	)
}

func (a *AppView) clampSelectedImage() {
	n := len(a.dataModel.Conversation.PendingImages())
	if a.selectedImage >= n {
		a.selectedImage = max(n-1, 0)
	}
}

func (a *AppView) copyToClipboard(text, done string) tea.Cmd {
	if err := writeClipboard(text); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Clipboard write failed: %v", err)
		}
		return a.toasts.push(ToastError, "Clipboard unavailable")
	}
	return a.toasts.push(ToastSuccess, done)
}

func lastReport(msgs []appmodel.Message) (appmodel.Attachment, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		for _, att := range msgs[i].Attachments {
			if att.Kind == appmodel.AttachmentPDF {
				return att, true
			}
		}
	}
	return appmodel.Attachment{}, false
}

func dictationErrorText(err error) string {
	var perm *speech.PermissionError
	var unsupported *speech.UnsupportedCapabilityError
	switch {
	case errors.As(err, &perm):
		return "Please allow microphone access to use voice input"
	case errors.As(err, &unsupported):
		return "Speech recognition is not supported on this system"
	default:
		return "Speech recognition error: " + errorText(err)
	}
}

func estimateErrorText(err error) string {
	var serverErr *estimate.ServerError
	switch {
	case estimate.IsNetworkError(err):
		return "Could not reach the valuation service"
	case errors.As(err, &serverErr) && serverErr.StatusCode != 0:
		return fmt.Sprintf("Valuation service error (%d)", serverErr.StatusCode)
	case errors.Is(err, estimate.ErrMissingBaseURL):
		return "No backend URL configured"
	default:
		return "Valuation failed: " + errorText(err)
	}
}

func errorText(err error) string {
	if u := errors.Unwrap(err); u != nil {
		return u.Error()
	}
	return err.Error()
}
