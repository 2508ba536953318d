package reports

import (
	"strings"
	"time"
)

// Kind of generated report
type Kind string

const (
	KindProperty Kind = "property"
	KindComp     Kind = "comp"
)

// Filename prefixes per report kind
const (
	PropertyReportPrefix = "Property_Report"
	CompReportPrefix     = "Report_with_Comps"
)

// ReportFile is one generated document in the report store.
// The store directory owns the file; everything else references it by name.
type ReportFile struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
}

// PropertyReportRequest is the flat appraisal record for one property report.
// Address is the only required field; everything else may be empty.
type PropertyReportRequest struct {
	Address            string `json:"address"`
	PreparedBy         string `json:"prepared_by,omitempty"`
	PreparedByCompany  string `json:"prepared_by_company,omitempty"`
	PreparedByAddress  string `json:"prepared_by_address,omitempty"`
	PreparedFor        string `json:"prepared_for,omitempty"`
	PreparedForCompany string `json:"prepared_for_company,omitempty"`
	PreparedForAddress string `json:"prepared_for_address,omitempty"`
	PropertyName       string `json:"property_name,omitempty"`
	PropertyType       string `json:"property_type,omitempty"`
	LotArea            string `json:"lot_area,omitempty"`
	Acres              string `json:"acres,omitempty"`
	RecordedSaleDate   string `json:"recorded_sale_date,omitempty"`
	Zoning             string `json:"zoning,omitempty"`
	APN                string `json:"apn,omitempty"`
	CurrentOwner       string `json:"current_owner,omitempty"`
}

// Validate checks the required fields.
func (r *PropertyReportRequest) Validate() error {
	if strings.TrimSpace(r.Address) == "" {
		return Invalid("address is required")
	}
	return nil
}

// GeneratedDocument is the outcome of one adapter call.
type GeneratedDocument struct {
	Path     string `json:"document_path"`
	Filename string `json:"filename"`
}
