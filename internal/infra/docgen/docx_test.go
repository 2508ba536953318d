package docgen

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

// writeTemplate builds a minimal .docx whose body is one paragraph of text.
func writeTemplate(t *testing.T, path, bodyText string) {
	t.Helper()
	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>` + bodyText + `</w:t></w:r></w:p></w:body>
</w:document>`

	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	relsXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	for name, content := range map[string]string{
		"[Content_Types].xml":          contentTypesXML,
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// readDocumentXML returns the body part of a rendered .docx.
func readDocumentXML(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, zf := range zr.File {
		if zf.Name != "word/document.xml" {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("no word/document.xml in %s", path)
	return ""
}

func TestRenderTemplate(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "template.docx")
	writeTemplate(t, templatePath, "Subject: {{address}} prepared by {{prepared_by}} on {{Date}}")

	outPath := filepath.Join(dir, "out.docx")
	err := RenderTemplate(templatePath, outPath, map[string]string{
		"{{address}}":     "1 Main St",
		"{{prepared_by}}": "Jane Analyst",
		"{{Date}}":        "March 14, 2026",
		"{{unused}}":      "never appears",
	})
	require.NoError(t, err)

	body := readDocumentXML(t, outPath)
	assert.Contains(t, body, "Subject: 1 Main St prepared by Jane Analyst on March 14, 2026")
	assert.NotContains(t, body, "{{")
}

func TestRenderTemplateMissingTemplate(t *testing.T) {
	err := RenderTemplate(filepath.Join(t.TempDir(), "absent.docx"), "out.docx", nil)
	assert.Error(t, err)
}
