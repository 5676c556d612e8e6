package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stock-analyzer/observability"
)

// FilenameTimeLayout is the timestamp format used in artifact names
const FilenameTimeLayout = "02-01-2006 15-04-05"

// maxNameAttempts bounds the " (n)" suffixes tried for one timestamp
const maxNameAttempts = 100

// Writer stores rendered reports as files under a directory, never
// replacing an existing file.
type Writer struct {
	dir         string
	authorLabel string
}

// NewWriter creates a Writer storing files in dir
func NewWriter(dir, authorLabel string) *Writer {
	return &Writer{dir: dir, authorLabel: authorLabel}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Filename returns the artifact name for symbol at the given time,
// e.g. "TCS.NS - Jane Doe Analysis - 19-10-2026 14-05-09.pdf"
func Filename(symbol, authorLabel string, at time.Time) string {
	return fmt.Sprintf("%s - %s - %s.pdf", safeName(symbol), authorLabel, at.Format(FilenameTimeLayout))
}

// Write stores data as the report for symbol created at the given time
// and returns the file path. The directory is created on demand; a name
// that already exists gets a " (n)" suffix.
func (w *Writer) Write(symbol string, data []byte, at time.Time) (string, error) {
	metrics := observability.GetMetrics()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		metrics.RecordReportError("mkdir")
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := Filename(symbol, w.authorLabel, at)
	stem := strings.TrimSuffix(name, ".pdf")

	for n := 0; n < maxNameAttempts; n++ {
		if n > 0 {
			name = fmt.Sprintf("%s (%d).pdf", stem, n)
		}
		path := filepath.Join(w.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			metrics.RecordReportError("open")
			return "", fmt.Errorf("failed to create report file: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			metrics.RecordReportError("write")
			return "", fmt.Errorf("failed to write report file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			metrics.RecordReportError("write")
			return "", fmt.Errorf("failed to close report file: %w", err)
		}

		metrics.RecordReportWritten()
		observability.WithSymbol(symbol).Info("report written", "path", path, "bytes", len(data))
		return path, nil
	}

	metrics.RecordReportError("name")
	return "", fmt.Errorf("no free report name for %q after %d attempts", stem, maxNameAttempts)
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, s)
}
