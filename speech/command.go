package speech

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"sterling/config"
)

// Placeholders substituted in CommandRecognizer arguments.
const (
	LanguagePlaceholder = "{lang}"
	DevicePlaceholder   = "{device}"
)

const maxStderr = 2048

// CommandRecognizer runs an external speech-to-text program and reads its
// stdout line by line. A line is either a JSON event
//
//	{"results":[{"transcript":"three bed","final":false}]}
//
// carrying all results so far, or plain text which is appended as a final
// segment.
type CommandRecognizer struct {
	Command  string
	Args     []string
	Language string
	// Device is an audio input path checked for read access before starting.
	Device string
}

func NewCommandRecognizer(cfg config.SpeechConfig) *CommandRecognizer {
	lang := cfg.Language
	if lang == "" {
		lang = config.DefaultSpeechLanguage
	}
	return &CommandRecognizer{
		Command:  strings.TrimSpace(cfg.Command),
		Args:     cfg.Args,
		Language: lang,
		Device:   config.ExpandPath(cfg.Device),
	}
}

func (r *CommandRecognizer) Available() error {
	if r.Command == "" {
		return &UnsupportedCapabilityError{Reason: "no speech command configured"}
	}
	if _, err := exec.LookPath(r.Command); err != nil {
		return &UnsupportedCapabilityError{Reason: fmt.Sprintf("%s not found", r.Command), Err: err}
	}
	return nil
}

func (r *CommandRecognizer) RequestPermission(ctx context.Context) error {
	if r.Device == "" {
		return nil
	}
	f, err := os.Open(r.Device)
	if err != nil {
		return &PermissionError{Device: r.Device, Err: err}
	}
	return f.Close()
}

func (r *CommandRecognizer) Recognize(ctx context.Context, fn func(Event)) error {
	cmd := exec.CommandContext(ctx, r.Command, r.expandArgs()...)
	cmd.Env = append(os.Environ(), "STERLING_SPEECH_LANG="+r.Language)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr := &tailBuffer{max: maxStderr}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", r.Command, err)
	}

	scanErr := scanEvents(stdout, fn)
	// Drain so Wait does not block on a full pipe after a scan error.
	_, _ = io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s exited: %w: %s", r.Command, err, msg)
		}
		return fmt.Errorf("%s exited: %w", r.Command, err)
	}
	if scanErr != nil && ctx.Err() == nil {
		return fmt.Errorf("read %s output: %w", r.Command, scanErr)
	}
	return nil
}

func (r *CommandRecognizer) expandArgs() []string {
	repl := strings.NewReplacer(LanguagePlaceholder, r.Language, DevicePlaceholder, r.Device)
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = repl.Replace(a)
	}
	return args
}

func scanEvents(rd io.Reader, fn func(Event)) error {
	var results []Segment
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if ev, ok := parseEventLine(line); ok {
			results = ev.Results
		} else {
			results = append(results, Segment{Transcript: line, Final: true})
		}
		fn(Event{Results: append([]Segment(nil), results...)})
	}
	return scanner.Err()
}

func parseEventLine(line string) (Event, bool) {
	if !strings.HasPrefix(line, "{") || !gjson.Valid(line) {
		return Event{}, false
	}
	res := gjson.Get(line, "results")
	if !res.IsArray() {
		return Event{}, false
	}
	var ev Event
	res.ForEach(func(_, seg gjson.Result) bool {
		ev.Results = append(ev.Results, Segment{
			Transcript: seg.Get("transcript").String(),
			Final:      seg.Get("final").Bool(),
		})
		return true
	})
	return ev, true
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf.Write(p)
	if over := t.buf.Len() - t.max; over > 0 {
		t.buf.Next(over)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

var _ Recognizer = (*CommandRecognizer)(nil)

// IsUserFacing reports whether err is one of the speech errors meant to be
// shown to the user.
func IsUserFacing(err error) bool {
	var (
		perm *PermissionError
		uns  *UnsupportedCapabilityError
		rec  *RecognitionError
	)
	return errors.As(err, &perm) || errors.As(err, &uns) || errors.As(err, &rec)
}
