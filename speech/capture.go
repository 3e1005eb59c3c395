// Package speech drives dictation: a Recognizer produces recognition events
// and Capture turns them into cumulative transcripts.
package speech

import (
	"context"
	"errors"
	"strings"
	"sync"

	"sterling/config"
)

// Segment is one recognition result. Interim segments may be revised by
// later events; final ones will not change.
type Segment struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
}

// Event carries every result of the session so far, in arrival order.
type Event struct {
	Results []Segment `json:"results"`
}

// Transcript concatenates all segments, final and interim.
func (e Event) Transcript() string {
	var sb strings.Builder
	for _, s := range e.Results {
		sb.WriteString(s.Transcript)
	}
	return sb.String()
}

// Recognizer is a speech-to-text capability.
type Recognizer interface {
	// Available returns an *UnsupportedCapabilityError when recognition
	// cannot run at all.
	Available() error
	// RequestPermission returns a *PermissionError when audio input is denied.
	RequestPermission(ctx context.Context) error
	// Recognize streams events to fn until ctx is done or the recognizer
	// ends. A nil return means a normal end.
	Recognize(ctx context.Context, fn func(Event)) error
}

type State int

const (
	Idle State = iota
	Listening
)

func (s State) String() string {
	if s == Listening {
		return "listening"
	}
	return "idle"
}

// Update is delivered for every transcript change. The final Update of a
// session that failed carries Err instead.
type Update struct {
	Transcript string
	Err        error
}

// Capture is the Idle/Listening state machine around a Recognizer.
type Capture struct {
	rec Recognizer

	mu      sync.Mutex
	state   State
	session int
	cancel  context.CancelFunc
}

func NewCapture(rec Recognizer) *Capture {
	return &Capture{rec: rec}
}

func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start checks availability and permission, then begins recognition. On
// error the state stays Idle. The returned channel is closed when the
// session ends, whether by Stop, by error or by the recognizer finishing.
func (c *Capture) Start(ctx context.Context) (<-chan Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Listening {
		return nil, ErrAlreadyListening
	}
	if c.rec == nil {
		return nil, &UnsupportedCapabilityError{Reason: "no recognizer configured"}
	}
	if err := c.rec.Available(); err != nil {
		var unsupported *UnsupportedCapabilityError
		if !errors.As(err, &unsupported) {
			err = &UnsupportedCapabilityError{Reason: "recognizer unavailable", Err: err}
		}
		return nil, err
	}
	if err := c.rec.RequestPermission(ctx); err != nil {
		var denied *PermissionError
		if !errors.As(err, &denied) {
			err = &PermissionError{Err: err}
		}
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	c.session++
	c.state = Listening
	c.cancel = cancel

	updates := make(chan Update, 16)
	go c.run(ctx, c.session, updates)

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Speech] Listening (session %d)", c.session)
	}
	return updates, nil
}

// Stop ends the active session. It is a no-op when Idle.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Listening {
		return
	}
	c.cancel()
	c.cancel = nil
	c.state = Idle
}

func (c *Capture) run(ctx context.Context, session int, updates chan<- Update) {
	defer close(updates)

	last := ""
	err := c.rec.Recognize(ctx, func(ev Event) {
		text := ev.Transcript()
		if text == last {
			return
		}
		last = text
		select {
		case updates <- Update{Transcript: text}:
		case <-ctx.Done():
		}
	})

	stopped := ctx.Err() != nil
	c.finish(session)

	if err != nil && !stopped {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Speech] Recognizer failed: %v", err)
		}
		updates <- Update{Err: &RecognitionError{Err: err}}
	}
}

func (c *Capture) finish(session int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = Idle
}
