// Package images turns user-selected files into inline image references.
package images

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"sterling/config"
)

// DefaultMaxFileSize bounds a single attachment.
const DefaultMaxFileSize int64 = 10 << 20

const sniffLen = 512

// ErrTooLarge is returned when a selected image exceeds the loader's size limit.
var ErrTooLarge = errors.New("images: file exceeds size limit")

var errNotDataURL = errors.New("images: not a base64 data URL")

// Ref is an inline image reference: "data:<mime>;base64,<payload>".
// It can be rendered or sent without a separate fetch.
type Ref struct {
	Name string
	URL  string
}

// MIMEType returns the media type from the data URL header.
func (r Ref) MIMEType() string {
	header, _, ok := strings.Cut(strings.TrimPrefix(r.URL, "data:"), ",")
	if !ok {
		return ""
	}
	mt, _, _ := strings.Cut(header, ";")
	return mt
}

// Decode returns the raw image bytes.
func (r Ref) Decode() ([]byte, error) {
	if !strings.HasPrefix(r.URL, "data:") {
		return nil, errNotDataURL
	}
	header, payload, ok := strings.Cut(r.URL[len("data:"):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, errNotDataURL
	}
	return base64.StdEncoding.DecodeString(payload)
}

// Loader converts files on disk to Refs.
type Loader struct {
	maxFileSize int64
}

// Files read at once by Convert.
const maxConcurrentReads = 4

type Option func(*Loader)

// WithMaxFileSize sets the per-file limit. Zero or negative disables it.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) {
		l.maxFileSize = n
	}
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Convert reads every image among files and returns their Refs in input
// order. Files whose type is not image/* are skipped. Conversions run
// concurrently; if any of them fails the whole call fails and no Refs are
// returned.
func (l *Loader) Convert(ctx context.Context, files []string) ([]Ref, error) {
	accepted := make([]string, 0, len(files))
	for _, path := range files {
		mt, err := DetectMIMEType(path)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(mt, "image/") {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Images] Skipping %s (%s)", path, mt)
			}
			continue
		}
		accepted = append(accepted, path)
	}
	if len(accepted) == 0 {
		return nil, nil
	}

	refs := make([]Ref, len(accepted))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, path := range accepted {
		g.Go(func() error {
			ref, err := l.load(ctx, path)
			if err != nil {
				return err
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Images] Converted %d of %d selected files", len(refs), len(files))
	}
	return refs, nil
}

// AddFiles converts files and returns current followed by the new Refs.
// On error current is returned unchanged.
func (l *Loader) AddFiles(ctx context.Context, current []Ref, files []string) ([]Ref, error) {
	added, err := l.Convert(ctx, files)
	if err != nil {
		return current, err
	}
	out := make([]Ref, 0, len(current)+len(added))
	out = append(out, current...)
	return append(out, added...), nil
}

// RemoveImage returns a copy of list without the element at index.
// An out-of-range index returns list as is.
func RemoveImage(list []Ref, index int) []Ref {
	if index < 0 || index >= len(list) {
		return list
	}
	out := make([]Ref, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...)
}

func (l *Loader) load(ctx context.Context, path string) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Ref{}, fmt.Errorf("images: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if l.maxFileSize > 0 {
		r = io.LimitReader(f, l.maxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Ref{}, fmt.Errorf("images: read %s: %w", path, err)
	}
	if l.maxFileSize > 0 && int64(len(data)) > l.maxFileSize {
		return Ref{}, fmt.Errorf("%w: %s", ErrTooLarge, filepath.Base(path))
	}

	return Ref{
		Name: filepath.Base(path),
		URL:  EncodeDataURL(mimeOf(data, path), data),
	}, nil
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DetectMIMEType sniffs the first bytes of path, falling back to the file
// extension when the content is not recognised.
func DetectMIMEType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("images: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("images: read %s: %w", path, err)
	}
	return mimeOf(buf[:n], path), nil
}

func mimeOf(head []byte, path string) string {
	sniffed := http.DetectContentType(head)
	mt, _, _ := strings.Cut(sniffed, ";")
	if mt != "application/octet-stream" && mt != "text/plain" && mt != "text/xml" {
		return mt
	}
	// SVG and a few others sniff as text; trust the extension for those.
	if ext := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ext != "" {
		mt, _, _ = strings.Cut(ext, ";")
	}
	return mt
}
