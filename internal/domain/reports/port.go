package reports

import (
	"context"
	"io"
	"time"
)

// PropertyGenerator port (interface for the property report engine)
type PropertyGenerator interface {
	Generate(ctx context.Context, req PropertyReportRequest) (GeneratedDocument, error)
}

// CompExtractor port (interface for the comp extraction engine)
type CompExtractor interface {
	// ExtractComps parses comparable-property rows out of the PDF at pdfPath.
	ExtractComps(ctx context.Context, pdfPath string) ([]CompRow, error)
	// RenderReport substitutes comp placeholders in the template and saves
	// the result into the report store.
	RenderReport(ctx context.Context, templatePath string, comps []CompRow) (GeneratedDocument, error)
}

// Store port (interface for the generated-file holding area)
type Store interface {
	List(ctx context.Context) ([]ReportFile, error)
	// Open returns metadata and contents for an exact filename. Names that
	// resolve outside the store directory are ErrNotFound.
	Open(ctx context.Context, filename string) (ReportFile, io.ReadCloser, error)
	Delete(ctx context.Context, filename string) error
	// AllocateName builds a collision-free output filename from prefix,
	// sanitized key part and a second-granularity timestamp.
	AllocateName(prefix, keyPart string, t time.Time) string
	// Path resolves a filename to its absolute location inside the store.
	Path(filename string) string
}

// Archiver port (optional mirror of generated documents to object storage)
type Archiver interface {
	Archive(ctx context.Context, localPath, key string) (string, error)
}
