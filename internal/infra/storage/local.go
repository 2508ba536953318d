package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
)

// Local is the report store: one flat directory of generated documents plus
// an images subdirectory for supporting assets. Files are addressed by exact
// filename; nothing below the directory is exposed to clients.
type Local struct {
	baseDir   string
	imagesDir string
}

func NewLocal(baseDir string) (*Local, error) {
	imagesDir := filepath.Join(baseDir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &Local{baseDir: baseDir, imagesDir: imagesDir}, nil
}

func (s *Local) Dir() string       { return s.baseDir }
func (s *Local) ImagesDir() string { return s.imagesDir }

// Path resolves a filename inside the store without any validation.
// Callers that accept client-supplied names must go through Open/Delete.
func (s *Local) Path(filename string) string {
	return filepath.Join(s.baseDir, filename)
}

// resolve validates a caller-supplied filename. Any name that is not a plain
// entry of the store directory (separators, traversal segments) is treated as
// absent rather than an error of its own.
func (s *Local) resolve(filename string) (string, error) {
	if filename == "" {
		return "", domain.ErrNotFound
	}
	cleaned := filepath.Clean(filename)
	if cleaned != filename || cleaned != filepath.Base(cleaned) || strings.HasPrefix(cleaned, ".") {
		return "", domain.ErrNotFound
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

// List enumerates generated documents, newest modification first. Order is
// not part of the store contract.
func (s *Local) List(_ context.Context) ([]domain.ReportFile, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	files := make([]domain.ReportFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".docx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, domain.ReportFile{
			Filename:  e.Name(),
			SizeBytes: info.Size(),
			// Birth time is not portable; modification time stands in.
			Created:  info.ModTime(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Modified.After(files[j].Modified)
	})
	return files, nil
}

func (s *Local) Open(_ context.Context, filename string) (domain.ReportFile, io.ReadCloser, error) {
	fullPath, err := s.resolve(filename)
	if err != nil {
		return domain.ReportFile{}, nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		return domain.ReportFile{}, nil, domain.ErrNotFound
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return domain.ReportFile{}, nil, fmt.Errorf("open report: %w", err)
	}
	return domain.ReportFile{
		Filename:  filename,
		SizeBytes: info.Size(),
		Created:   info.ModTime(),
		Modified:  info.ModTime(),
	}, f, nil
}

// Delete removes the named report. Deleting an absent name reports
// ErrNotFound, so a repeated delete is 404 rather than silent success.
func (s *Local) Delete(_ context.Context, filename string) error {
	fullPath, err := s.resolve(filename)
	if err != nil {
		return err
	}
	if _, err := os.Stat(fullPath); err != nil {
		return domain.ErrNotFound
	}
	return os.Remove(fullPath)
}

// AllocateName builds "<prefix>_<sanitized key>_<YYYYMMDD_HHMMSS>.docx". The
// timestamp alone is not a uniqueness guarantee; when the candidate already
// exists an 8-char random token is appended so same-second generations for
// the same key never overwrite each other.
func (s *Local) AllocateName(prefix, keyPart string, t time.Time) string {
	parts := []string{prefix}
	if key := SanitizeNamePart(keyPart); key != "" {
		parts = append(parts, key)
	}
	parts = append(parts, t.Format("20060102_150405"))

	name := strings.Join(parts, "_") + ".docx"
	if _, err := os.Stat(filepath.Join(s.baseDir, name)); err == nil {
		token := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
		name = strings.Join(parts, "_") + "_" + token + ".docx"
	}
	return name
}

// SanitizeNamePart keeps alphanumerics, space, dash and underscore, the same
// rule the report filenames have always used.
func SanitizeNamePart(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
