package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilename(t *testing.T) {
	valid := []string{
		"Property_Report_1 Main St_20260314_092653.docx",
		"Report_with_Comps_20260314_092653.docx",
		"simple.docx",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateFilename(name), "name %q", name)
	}

	invalid := []string{
		"",
		"../escape.docx",
		"..",
		"dir/report.docx",
		"dir\\report.docx",
		"/etc/passwd",
		".hidden.docx",
		"nul\x00byte.docx",
	}
	for _, name := range invalid {
		assert.Error(t, ValidateFilename(name), "name %q", name)
	}
}

func TestValidateServerPath(t *testing.T) {
	valid := []string{
		"",
		"/tmp/uploads/comps.pdf",
		"relative/comps.pdf",
		"comptemplate.docx",
	}
	for _, p := range valid {
		assert.NoError(t, ValidateServerPath(p), "path %q", p)
	}

	invalid := []string{
		"/etc/passwd",
		"/proc/self/environ",
		"/root/.ssh/id_rsa",
		"../../secret.pdf",
		"/tmp/a;rm -rf tmp",
		"/tmp/$(whoami).pdf",
		"/tmp/a`b.pdf",
	}
	for _, p := range invalid {
		assert.Error(t, ValidateServerPath(p), "path %q", p)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "ab", SanitizeString("a\x00b"))
	assert.Equal(t, "line1\nline2", SanitizeString("line1\nline2"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 42, ValidateLimit(42))
	assert.Equal(t, 100, ValidateLimit(1000))
}
