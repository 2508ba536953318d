package httpserver

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	appreports "github.com/osama-shakil/ppcode/internal/application/reports"
	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
	"github.com/osama-shakil/ppcode/internal/middleware"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type Router struct {
	svc *appreports.Service
}

func NewRouter(svc *appreports.Service) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Get("/health", r.handleHealth)
	mux.Get("/metrics", middleware.MetricsHandler)
	mux.Post("/reinitialize", r.wrap(r.handleReinitialize))

	mux.Post("/generate_property_report", r.wrap(r.handleGenerateProperty))
	mux.Get("/download_property_report/{filename}", r.wrap(r.handleDownload))
	mux.Post("/process_comps", r.wrap(r.handleProcessComps))
	mux.Get("/download_comp_report/{filename}", r.wrap(r.handleDownload))
	mux.Post("/generate_combined_report", r.wrap(r.handleCombined))
	mux.Post("/generate_batch_reports", r.wrap(r.handleBatch))
	mux.Get("/list_reports", r.wrap(r.handleList))
	mux.Delete("/delete_report/{filename}", r.wrap(r.handleDelete))
	mux.Get("/history", r.wrap(r.handleHistory))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain errors onto HTTP statuses: validation failures are 400,
// absent files 404, everything else (generation, uninitialized adapters) 500.
// Every error body is {"error": "<message>"}.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		status := http.StatusInternalServerError
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]any{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	st := r.svc.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"timestamp":          time.Now().Format(time.RFC3339),
		"property_generator": st.PropertyGenerator,
		"comp_extractor":     st.CompExtractor,
	})
}

// POST /reinitialize
// Rebuilds both adapters; each outcome is reported separately so one adapter
// can come back while the other stays down.
func (r *Router) handleReinitialize(w http.ResponseWriter, req *http.Request) error {
	st := r.svc.Initialize()
	resp := map[string]any{
		"success":            true,
		"message":            "Generators reinitialized",
		"property_generator": st.PropertyGenerator,
		"comp_extractor":     st.CompExtractor,
	}
	if st.PropertyError != "" {
		resp["property_error"] = st.PropertyError
	}
	if st.CompError != "" {
		resp["comp_error"] = st.CompError
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

// POST /generate_property_report
func (r *Router) handleGenerateProperty(w http.ResponseWriter, req *http.Request) error {
	var body domain.PropertyReportRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return domain.Invalid("invalid JSON body")
	}

	doc, err := r.svc.GenerateProperty(req.Context(), body)
	if err != nil {
		middleware.IncrementGenerationsFailed()
		return err
	}
	middleware.IncrementReportsGenerated()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Property report generated successfully",
		"document_path": doc.Path,
		"filename":      doc.Filename,
	})
	return nil
}

// GET /download_property_report/{filename}
// GET /download_comp_report/{filename}
// Both kinds live in the same store, so both routes share this handler.
func (r *Router) handleDownload(w http.ResponseWriter, req *http.Request) error {
	filename := pathFilename(req)
	if err := middleware.ValidateFilename(filename); err != nil {
		return domain.ErrNotFound
	}

	info, rc, err := r.svc.OpenReport(req.Context(), filename)
	if err != nil {
		return err
	}
	defer rc.Close()

	w.Header().Set("Content-Type", docxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(info.SizeBytes, 10))
	_, err = io.Copy(w, rc)
	return err
}

// POST /process_comps
// Input is either multipart uploads or a JSON body naming server paths.
// The mode is resolved once here; the service only ever sees file paths.
func (r *Router) handleProcessComps(w http.ResponseWriter, req *http.Request) error {
	pdfPath, templatePath, cleanup, err := r.resolveCompInput(req)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return err
	}

	doc, comps, err := r.svc.ProcessComps(req.Context(), pdfPath, templatePath)
	if err != nil {
		middleware.IncrementGenerationsFailed()
		return err
	}
	middleware.IncrementReportsGenerated()
	middleware.AddCompsExtracted(len(comps))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("Processed %d comparable properties", len(comps)),
		"document_path": doc.Path,
		"filename":      doc.Filename,
		"comps_count":   len(comps),
		"comps_data":    comps,
	})
	return nil
}

// resolveCompInput stages uploaded files into a temp dir or validates the
// JSON-supplied server paths. The returned cleanup removes staged uploads.
func (r *Router) resolveCompInput(req *http.Request) (pdfPath, templatePath string, cleanup func(), err error) {
	contentType := req.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var body struct {
			PDFPath      string `json:"pdf_path"`
			TemplatePath string `json:"template_path"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return "", "", nil, domain.Invalid("invalid JSON body")
		}
		if body.PDFPath == "" {
			return "", "", nil, domain.Invalid("PDF path is required")
		}
		if err := middleware.ValidateServerPath(body.PDFPath); err != nil {
			return "", "", nil, domain.Invalid("pdf_path: %v", err)
		}
		if err := middleware.ValidateServerPath(body.TemplatePath); err != nil {
			return "", "", nil, domain.Invalid("template_path: %v", err)
		}
		return body.PDFPath, body.TemplatePath, nil, nil
	}

	if err := req.ParseMultipartForm(32 << 20); err != nil {
		return "", "", nil, domain.Invalid("invalid multipart form")
	}

	pdfFile, _, err := req.FormFile("pdf_file")
	if err != nil {
		return "", "", nil, domain.Invalid("PDF file is required")
	}
	defer pdfFile.Close()

	tempDir, err := os.MkdirTemp("", "comp-upload-")
	if err != nil {
		return "", "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(tempDir) }

	pdfPath = filepath.Join(tempDir, "comp.pdf")
	if err := saveUpload(pdfFile, pdfPath); err != nil {
		return "", "", cleanup, fmt.Errorf("save uploaded pdf: %w", err)
	}

	if tmplFile, _, err := req.FormFile("template_file"); err == nil {
		defer tmplFile.Close()
		templatePath = filepath.Join(tempDir, "comptemplate.docx")
		if err := saveUpload(tmplFile, templatePath); err != nil {
			return "", "", cleanup, fmt.Errorf("save uploaded template: %w", err)
		}
	}

	return pdfPath, templatePath, cleanup, nil
}

func saveUpload(src multipart.File, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, src)
	return err
}

// POST /generate_combined_report
func (r *Router) handleCombined(w http.ResponseWriter, req *http.Request) error {
	var body domain.CombinedReportRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return domain.Invalid("invalid JSON body")
	}
	if err := middleware.ValidateServerPath(body.PDFPath); err != nil {
		return domain.Invalid("pdf_path: %v", err)
	}
	if err := middleware.ValidateServerPath(body.TemplatePath); err != nil {
		return domain.Invalid("template_path: %v", err)
	}

	result, err := r.svc.GenerateCombined(req.Context(), body)
	if err != nil {
		middleware.IncrementGenerationsFailed()
		return err
	}
	middleware.IncrementReportsGenerated()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Combined report generation completed",
		"results": result,
	})
	return nil
}

// POST /generate_batch_reports
// Multipart csv_file with a header row; one property report per data row
// with a non-empty address. Row failures do not stop the batch.
func (r *Router) handleBatch(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		return domain.Invalid("invalid multipart form")
	}
	csvFile, _, err := req.FormFile("csv_file")
	if err != nil {
		return domain.Invalid("CSV file is required")
	}
	defer csvFile.Close()

	requests, err := parseBatchCSV(csvFile)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return domain.Invalid("CSV contains no data rows")
	}

	outcomes := r.svc.GenerateBatch(req.Context(), requests)
	generated := 0
	for _, o := range outcomes {
		if o.Success {
			generated++
			middleware.IncrementReportsGenerated()
		} else {
			middleware.IncrementGenerationsFailed()
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"total":     len(outcomes),
		"generated": generated,
		"failed":    len(outcomes) - generated,
		"results":   outcomes,
	})
	return nil
}

// parseBatchCSV maps header names onto request fields. Unknown columns are
// ignored so exports with extra columns still work.
func parseBatchCSV(src io.Reader) ([]domain.PropertyReportRequest, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.Invalid("invalid CSV: missing header row")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["address"]; !ok {
		return nil, domain.Invalid("invalid CSV: address column is required")
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var requests []domain.PropertyReportRequest
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.Invalid("invalid CSV: %v", err)
		}
		requests = append(requests, domain.PropertyReportRequest{
			Address:            field(row, "address"),
			PreparedBy:         field(row, "prepared_by"),
			PreparedByCompany:  field(row, "prepared_by_company"),
			PreparedByAddress:  field(row, "prepared_by_address"),
			PreparedFor:        field(row, "prepared_for"),
			PreparedForCompany: field(row, "prepared_for_company"),
			PreparedForAddress: field(row, "prepared_for_address"),
			PropertyName:       field(row, "property_name"),
			PropertyType:       field(row, "property_type"),
			LotArea:            field(row, "lot_area"),
			Acres:              field(row, "acres"),
			RecordedSaleDate:   field(row, "recorded_sale_date"),
			Zoning:             field(row, "zoning"),
			APN:                field(row, "apn"),
			CurrentOwner:       field(row, "current_owner"),
		})
	}
	return requests, nil
}

// GET /list_reports
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	reports, err := r.svc.ListReports(req.Context())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reports":     reports,
		"total_count": len(reports),
	})
	return nil
}

// DELETE /delete_report/{filename}
func (r *Router) handleDelete(w http.ResponseWriter, req *http.Request) error {
	filename := pathFilename(req)
	if err := middleware.ValidateFilename(filename); err != nil {
		return domain.ErrNotFound
	}
	if err := r.svc.DeleteReport(req.Context(), filename); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Report %s deleted successfully", filename),
	})
	return nil
}

// GET /history?limit=20
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	records, err := r.svc.Latest(req.Context(), limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history": records,
		"count":   len(records),
	})
	return nil
}

// pathFilename returns the decoded {filename} path parameter. Generated
// names contain spaces, so clients send them percent-encoded.
func pathFilename(req *http.Request) string {
	raw := chi.URLParam(req, "filename")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}
