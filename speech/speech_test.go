package speech

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRecognizer replays scripted events. When hold is set it blocks after
// the events until its context is cancelled.
type fakeRecognizer struct {
	availableErr  error
	permissionErr error
	events        []Event
	endErr        error
	hold          bool
}

func (f *fakeRecognizer) Available() error { return f.availableErr }

func (f *fakeRecognizer) RequestPermission(ctx context.Context) error { return f.permissionErr }

func (f *fakeRecognizer) Recognize(ctx context.Context, fn func(Event)) error {
	for _, ev := range f.events {
		fn(ev)
	}
	if f.hold {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.endErr
}

func interim(s string) Event {
	return Event{Results: []Segment{{Transcript: s}}}
}

func drain(t *testing.T, ch <-chan Update) []Update {
	t.Helper()
	var out []Update
	timeout := time.After(5 * time.Second)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, u)
		case <-timeout:
			t.Fatal("timed out waiting for updates")
		}
	}
}

func TestEventTranscript(t *testing.T) {
	ev := Event{Results: []Segment{
		{Transcript: "three bed ", Final: true},
		{Transcript: "two bath", Final: false},
	}}
	require.Equal(t, "three bed two bath", ev.Transcript())
	require.Equal(t, "", Event{}.Transcript())
}

func TestCapture_CumulativeTranscript(t *testing.T) {
	c := NewCapture(&fakeRecognizer{events: []Event{interim("hello"), interim("hello world")}})

	ch, err := c.Start(context.Background())
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 2)
	require.Equal(t, "hello", updates[0].Transcript)
	require.Equal(t, "hello world", updates[1].Transcript)

	input := ""
	for _, u := range updates {
		input = u.Transcript
	}
	require.Equal(t, "hello world", input)
	require.Equal(t, Idle, c.State())
}

func TestCapture_PermissionDenied(t *testing.T) {
	c := NewCapture(&fakeRecognizer{permissionErr: errors.New("denied by user")})

	ch, err := c.Start(context.Background())
	require.Nil(t, ch)

	var perm *PermissionError
	require.ErrorAs(t, err, &perm)
	require.Equal(t, Idle, c.State())
}

func TestCapture_Unsupported(t *testing.T) {
	c := NewCapture(&fakeRecognizer{availableErr: errors.New("no audio stack")})
	_, err := c.Start(context.Background())

	var uns *UnsupportedCapabilityError
	require.ErrorAs(t, err, &uns)
	require.Equal(t, Idle, c.State())

	_, err = NewCapture(nil).Start(context.Background())
	require.ErrorAs(t, err, &uns)
}

func TestCapture_RecognizerFailureReturnsToIdle(t *testing.T) {
	cause := errors.New("audio-capture")
	c := NewCapture(&fakeRecognizer{events: []Event{interim("three")}, endErr: cause})

	ch, err := c.Start(context.Background())
	require.NoError(t, err)

	updates := drain(t, ch)
	require.Len(t, updates, 2)
	require.Equal(t, "three", updates[0].Transcript)

	var recErr *RecognitionError
	require.ErrorAs(t, updates[1].Err, &recErr)
	require.ErrorIs(t, updates[1].Err, cause)
	require.Equal(t, Idle, c.State())
}

func TestCapture_StopAndRestart(t *testing.T) {
	rec := &fakeRecognizer{events: []Event{interim("hi")}, hold: true}
	c := NewCapture(rec)

	ch, err := c.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, Listening, c.State())

	_, err = c.Start(context.Background())
	require.ErrorIs(t, err, ErrAlreadyListening)

	c.Stop()
	require.Equal(t, Idle, c.State())

	for _, u := range drain(t, ch) {
		require.NoError(t, u.Err)
	}

	ch, err = c.Start(context.Background())
	require.NoError(t, err)
	require.Equal(t, Listening, c.State())
	c.Stop()
	drain(t, ch)

	c.Stop()
	require.Equal(t, Idle, c.State())
}

func TestScanEvents(t *testing.T) {
	input := strings.Join([]string{
		`{"results":[{"transcript":"hello","final":false}]}`,
		`{"results":[{"transcript":"hello world","final":true}]}`,
		``,
		`in 90210`,
	}, "\n")

	var got []string
	require.NoError(t, scanEvents(strings.NewReader(input), func(ev Event) {
		got = append(got, ev.Transcript())
	}))
	require.Equal(t, []string{"hello", "hello world", "hello worldin 90210"}, got)
}

func TestParseEventLine(t *testing.T) {
	_, ok := parseEventLine(`{"text":"no results"}`)
	require.False(t, ok)

	_, ok = parseEventLine(`{broken`)
	require.False(t, ok)

	ev, ok := parseEventLine(`{"results":[{"transcript":"a","final":true},{"transcript":"b"}]}`)
	require.True(t, ok)
	require.Equal(t, []Segment{{Transcript: "a", Final: true}, {Transcript: "b"}}, ev.Results)
}

func TestCommandRecognizer_Availability(t *testing.T) {
	var uns *UnsupportedCapabilityError

	require.ErrorAs(t, (&CommandRecognizer{}).Available(), &uns)
	require.ErrorAs(t, (&CommandRecognizer{Command: "definitely-not-a-speech-tool"}).Available(), &uns)

	r := &CommandRecognizer{Device: filepath.Join(t.TempDir(), "missing-mic")}
	var perm *PermissionError
	require.ErrorAs(t, r.RequestPermission(context.Background()), &perm)
}

func TestCommandRecognizer_Recognize(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	r := &CommandRecognizer{
		Command:  "sh",
		Args:     []string{"-c", `echo "$STERLING_SPEECH_LANG {lang}"; echo '{"results":[{"transcript":"hello","final":true}]}'`},
		Language: "en-GB",
	}
	require.NoError(t, r.Available())

	var got []string
	err := r.Recognize(context.Background(), func(ev Event) {
		got = append(got, ev.Transcript())
	})
	require.NoError(t, err)
	require.Equal(t, []string{"en-GB en-GB", "hello"}, got)
}

func TestCommandRecognizer_Failure(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	r := &CommandRecognizer{Command: "sh", Args: []string{"-c", "echo 'device busy' >&2; exit 3"}}
	err := r.Recognize(context.Background(), func(Event) {})
	require.Error(t, err)
	require.Contains(t, err.Error(), "device busy")
}
