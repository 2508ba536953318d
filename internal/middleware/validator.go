package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Input validation and sanitization utilities

// ValidateFilename rejects report names that could reach outside the store
// directory. The store applies the same rule; this keeps obviously bad names
// out of the handlers early.
func ValidateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("invalid characters in filename")
	}
	cleaned := filepath.Clean(name)
	if cleaned != name || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return fmt.Errorf("path traversal detected")
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid characters in filename")
	}
	return nil
}

// ValidateServerPath validates client-supplied server filesystem paths
// (pdf_path, template_path) before they reach the extractor.
func ValidateServerPath(path string) error {
	if path == "" {
		return nil // optional field, handlers enforce presence
	}
	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("path traversal detected")
	}
	blocked := []string{"/etc", "/proc", "/sys", "/dev", "/root", "/boot"}
	for _, b := range blocked {
		if strings.HasPrefix(cleaned, b) {
			return fmt.Errorf("access to %s is not allowed", b)
		}
	}
	dangerous := []string{"$(", "`", "&", "|", ";", "\n", "\r"}
	for _, d := range dangerous {
		if strings.Contains(path, d) {
			return fmt.Errorf("invalid characters in path")
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates the history limit parameter
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
