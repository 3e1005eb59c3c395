package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reports writes PDF reports returned by the backend to a directory.
type Reports struct {
	dir string
}

// NewReports creates dir (0700) if it doesn't exist.
func NewReports(dir string) (*Reports, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &Reports{dir: dir}, nil
}

func (r *Reports) Dir() string {
	return r.dir
}

// Save writes data as a PDF named after id and returns its path.
func (r *Reports) Save(id string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to write empty report")
	}
	path := filepath.Join(r.dir, ReportFilename(id, time.Now()))

	// 0600: reports describe the user's property
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// ReportFilename builds "valuation-<id>-<timestamp>.pdf".
func ReportFilename(id string, at time.Time) string {
	return fmt.Sprintf("valuation-%s-%s.pdf", SanitizeFilename(id), at.Format("20060102-150405"))
}

// SanitizeFilename removes or replaces characters that are invalid in filenames
func SanitizeFilename(name string) string {
	name = strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-",
		"<", "-", ">", "-", "|", "-", " ", "-", "\n", "-", "\r", "-",
	).Replace(name)

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}

	if name == "" {
		name = "report"
	}

	return name
}
