package reports

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osama-shakil/ppcode/internal/application"
	"github.com/osama-shakil/ppcode/internal/domain/history"
	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
)

// PropertyFactory builds the property report adapter from current config.
type PropertyFactory func() (domain.PropertyGenerator, error)

// CompFactory builds the comp extraction adapter from current config.
type CompFactory func() (domain.CompExtractor, error)

// Service implements the use-cases of the API. The two generator adapters
// are shared, swappable handles: Reinitialize replaces them wholesale under
// the mutex, in-flight requests finish against whichever handle they read.
type Service struct {
	Store               domain.Store
	History             history.Repository
	Archive             domain.Archiver // nil disables the mirror
	Clock               application.Clock
	DefaultCompTemplate string

	NewProperty PropertyFactory
	NewComp     CompFactory

	mu          sync.RWMutex
	property    domain.PropertyGenerator
	comp        domain.CompExtractor
	propertyErr error
	compErr     error
}

// AdapterStatus reports whether each adapter is currently usable.
type AdapterStatus struct {
	PropertyGenerator bool   `json:"property_generator"`
	CompExtractor     bool   `json:"comp_extractor"`
	PropertyError     string `json:"property_error,omitempty"`
	CompError         string `json:"comp_error,omitempty"`
}

// Initialize builds both adapters from their factories. One adapter failing
// does not stop the other; each outcome is kept separately and reported by
// Status. Endpoints backed by a failed adapter error until a later
// Initialize succeeds.
func (s *Service) Initialize() AdapterStatus {
	var (
		prop    domain.PropertyGenerator
		comp    domain.CompExtractor
		propErr error
		compErr error
	)
	if s.NewProperty != nil {
		prop, propErr = s.NewProperty()
	} else {
		propErr = fmt.Errorf("no property generator factory configured")
	}
	if s.NewComp != nil {
		comp, compErr = s.NewComp()
	} else {
		compErr = fmt.Errorf("no comp extractor factory configured")
	}

	s.mu.Lock()
	s.property, s.propertyErr = prop, propErr
	s.comp, s.compErr = comp, compErr
	s.mu.Unlock()

	if propErr != nil {
		log.Printf("property generator init failed: %v", propErr)
	}
	if compErr != nil {
		log.Printf("comp extractor init failed: %v", compErr)
	}
	return s.Status()
}

// Status reports adapter readiness for /health and /reinitialize.
func (s *Service) Status() AdapterStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := AdapterStatus{
		PropertyGenerator: s.property != nil,
		CompExtractor:     s.comp != nil,
	}
	if s.propertyErr != nil {
		st.PropertyError = s.propertyErr.Error()
	}
	if s.compErr != nil {
		st.CompError = s.compErr.Error()
	}
	return st
}

func (s *Service) propertyHandle() (domain.PropertyGenerator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.property == nil {
		return nil, fmt.Errorf("property %w", domain.ErrNotInitialized)
	}
	return s.property, nil
}

func (s *Service) compHandle() (domain.CompExtractor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.comp == nil {
		return nil, fmt.Errorf("comp %w", domain.ErrNotInitialized)
	}
	return s.comp, nil
}

// GenerateProperty runs the property report adapter for one request.
func (s *Service) GenerateProperty(ctx context.Context, req domain.PropertyReportRequest) (domain.GeneratedDocument, error) {
	if err := req.Validate(); err != nil {
		return domain.GeneratedDocument{}, err
	}
	gen, err := s.propertyHandle()
	if err != nil {
		return domain.GeneratedDocument{}, err
	}

	start := s.now()
	doc, err := gen.Generate(ctx, req)
	s.record(ctx, "property", req.Address, doc.Filename, start, err)
	if err != nil {
		return domain.GeneratedDocument{}, err
	}
	s.archive(ctx, doc, string(domain.KindProperty))
	return doc, nil
}

// ProcessComps extracts comp rows from the PDF and renders the comp report.
// templatePath may be empty; the configured default template is used then.
func (s *Service) ProcessComps(ctx context.Context, pdfPath, templatePath string) (domain.GeneratedDocument, []domain.CompRow, error) {
	if pdfPath == "" {
		return domain.GeneratedDocument{}, nil, domain.Invalid("PDF path is required")
	}
	ext, err := s.compHandle()
	if err != nil {
		return domain.GeneratedDocument{}, nil, err
	}
	if templatePath == "" {
		templatePath = s.DefaultCompTemplate
	}

	start := s.now()
	comps, err := ext.ExtractComps(ctx, pdfPath)
	if err != nil {
		s.record(ctx, "comp", pdfPath, "", start, err)
		return domain.GeneratedDocument{}, nil, err
	}
	if len(comps) == 0 {
		err = domain.Invalid("no comparable properties found in PDF")
		s.record(ctx, "comp", pdfPath, "", start, err)
		return domain.GeneratedDocument{}, nil, err
	}

	doc, err := ext.RenderReport(ctx, templatePath, comps)
	s.record(ctx, "comp", pdfPath, doc.Filename, start, err)
	if err != nil {
		return domain.GeneratedDocument{}, nil, err
	}
	s.archive(ctx, doc, string(domain.KindComp))
	return doc, comps, nil
}

// HalfResult is the outcome of one half of a combined request.
type HalfResult struct {
	Success      bool   `json:"success"`
	DocumentPath string `json:"document_path,omitempty"`
	Filename     string `json:"filename,omitempty"`
	CompsCount   int    `json:"comps_count,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CombinedResult carries both halves of a combined request separately.
type CombinedResult struct {
	PropertyReport *HalfResult `json:"property_report,omitempty"`
	CompReport     *HalfResult `json:"comp_report,omitempty"`
}

// GenerateCombined runs the property half first, then the comp half.
// A property failure aborts the whole request. A comp failure after a
// successful property half is reported in the result instead, so the client
// keeps the property filename and can retry comps alone.
func (s *Service) GenerateCombined(ctx context.Context, req domain.CombinedReportRequest) (CombinedResult, error) {
	if req.Address == "" && req.PDFPath == "" {
		return CombinedResult{}, domain.Invalid("address or pdf_path is required")
	}

	var result CombinedResult

	if req.Address != "" {
		propReq := domain.PropertyReportRequest{}
		if req.PropertyData != nil {
			propReq = *req.PropertyData
		}
		propReq.Address = req.Address

		doc, err := s.GenerateProperty(ctx, propReq)
		if err != nil {
			return CombinedResult{}, err
		}
		result.PropertyReport = &HalfResult{
			Success:      true,
			DocumentPath: doc.Path,
			Filename:     doc.Filename,
		}
	}

	if req.PDFPath != "" {
		doc, comps, err := s.ProcessComps(ctx, req.PDFPath, req.TemplatePath)
		if err != nil {
			if result.PropertyReport == nil {
				return CombinedResult{}, err
			}
			result.CompReport = &HalfResult{Success: false, Error: err.Error()}
		} else {
			result.CompReport = &HalfResult{
				Success:      true,
				DocumentPath: doc.Path,
				Filename:     doc.Filename,
				CompsCount:   len(comps),
			}
		}
	}

	return result, nil
}

// BatchOutcome is the per-row result of a CSV batch generation.
type BatchOutcome struct {
	Row      int    `json:"row"`
	Address  string `json:"address"`
	Success  bool   `json:"success"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GenerateBatch generates one property report per request. Row failures do
// not stop the batch.
func (s *Service) GenerateBatch(ctx context.Context, reqs []domain.PropertyReportRequest) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(reqs))
	for i, req := range reqs {
		outcome := BatchOutcome{Row: i + 1, Address: req.Address}
		doc, err := s.GenerateProperty(ctx, req)
		if err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Success = true
			outcome.Filename = doc.Filename
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// ListReports returns store contents for /list_reports.
func (s *Service) ListReports(ctx context.Context) ([]domain.ReportFile, error) {
	return s.Store.List(ctx)
}

// OpenReport returns a named report for download.
func (s *Service) OpenReport(ctx context.Context, filename string) (domain.ReportFile, io.ReadCloser, error) {
	return s.Store.Open(ctx, filename)
}

// DeleteReport removes a named report.
func (s *Service) DeleteReport(ctx context.Context, filename string) error {
	return s.Store.Delete(ctx, filename)
}

// Latest returns the most recent generation records.
func (s *Service) Latest(ctx context.Context, limit int) ([]*history.Record, error) {
	if s.History == nil {
		return nil, nil
	}
	return s.History.Latest(ctx, limit)
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

// record persists one generation attempt; history failures only log.
func (s *Service) record(ctx context.Context, kind, key, filename string, start time.Time, genErr error) {
	if s.History == nil {
		return
	}
	rec := &history.Record{
		ID:         uuid.New().String(),
		Kind:       kind,
		Key:        key,
		Filename:   filename,
		Status:     history.StatusSuccess,
		DurationMS: s.now().Sub(start).Milliseconds(),
		CreatedAt:  start,
	}
	if genErr != nil {
		rec.Status = history.StatusFailed
		rec.Message = genErr.Error()
	}
	if err := s.History.Save(ctx, rec); err != nil {
		log.Printf("history save failed: %v", err)
	}
}

// archive mirrors the document to object storage when configured.
func (s *Service) archive(ctx context.Context, doc domain.GeneratedDocument, kind string) {
	if s.Archive == nil {
		return
	}
	key := kind + "/" + doc.Filename
	if url, err := s.Archive.Archive(ctx, doc.Path, key); err != nil {
		log.Printf("archive failed for %s: %v", doc.Filename, err)
	} else {
		log.Printf("archived %s to %s", doc.Filename, url)
	}
}
