package speech

import (
	"errors"
	"fmt"
)

// ErrAlreadyListening is returned by Capture.Start while a session is active.
var ErrAlreadyListening = errors.New("speech: already listening")

// PermissionError means the audio input could not be opened.
type PermissionError struct {
	Device string
	Err    error
}

func (e *PermissionError) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("speech: microphone access denied for %s: %v", e.Device, e.Err)
	}
	return fmt.Sprintf("speech: microphone access denied: %v", e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// UnsupportedCapabilityError means no recognizer is usable in this environment.
type UnsupportedCapabilityError struct {
	Reason string
	Err    error
}

func (e *UnsupportedCapabilityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech recognition unsupported: %s: %v", e.Reason, e.Err)
	}
	return "speech recognition unsupported: " + e.Reason
}

func (e *UnsupportedCapabilityError) Unwrap() error { return e.Err }

// RecognitionError wraps the reason a recognizer stopped on its own.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition error: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }
