package docgen

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/osama-shakil/ppcode/internal/application"
	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
	"github.com/osama-shakil/ppcode/internal/infra/ai/prompt"
	"github.com/osama-shakil/ppcode/internal/infra/geocode"
	"github.com/osama-shakil/ppcode/internal/infra/storage"
)

// Geocoder resolves the subject address and fetches supporting imagery.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geocode.Location, error)
	AerialImage(ctx context.Context, lat, lng float64, outPath string) error
	StreetViewImage(ctx context.Context, address string, outPath string) error
}

// Narrator produces the narrative sections of the report.
type Narrator interface {
	PropertySections(ctx context.Context, address, propertyType, city, county, state string) (prompt.Sections, error)
}

// PropertyGenerator renders a property report from the .docx template:
// geocode the subject, fetch aerial/street-view imagery, ask the narrator for
// prose sections, then substitute every placeholder and save the result into
// the report store.
type PropertyGenerator struct {
	templatePath string
	store        *storage.Local
	geocoder     Geocoder // nil when no maps key is configured
	narrator     Narrator // nil when no OpenAI key is configured
	clock        application.Clock
}

func NewPropertyGenerator(templatePath string, store *storage.Local, geocoder Geocoder, narrator Narrator, clock application.Clock) (*PropertyGenerator, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return nil, fmt.Errorf("property template %s: %w", templatePath, err)
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &PropertyGenerator{
		templatePath: templatePath,
		store:        store,
		geocoder:     geocoder,
		narrator:     narrator,
		clock:        clock,
	}, nil
}

func (g *PropertyGenerator) Generate(ctx context.Context, req domain.PropertyReportRequest) (domain.GeneratedDocument, error) {
	now := g.clock.Now()

	propertyType := req.PropertyType
	if propertyType == "" {
		propertyType = "Office"
	}

	var loc geocode.Location
	if g.geocoder != nil {
		var err error
		loc, err = g.geocoder.Geocode(ctx, req.Address)
		if err != nil {
			return domain.GeneratedDocument{}, domain.Generation("generate property report", err)
		}
		g.fetchImages(ctx, req.Address, loc, now)
	}

	propertyName := req.PropertyName
	if propertyName == "" {
		city := loc.City
		if city == "" {
			city = "Property"
		}
		propertyName = city + " " + propertyType
	}

	// Narrative is best effort: a failed enrichment call degrades to empty
	// sections, the document still renders.
	var sections prompt.Sections
	if g.narrator != nil {
		var err error
		sections, err = g.narrator.PropertySections(ctx, req.Address, propertyType, loc.City, loc.County, loc.State)
		if err != nil {
			log.Printf("narrative sections failed for %s: %v", req.Address, err)
			sections = prompt.Sections{}
		}
	}

	replacements := map[string]string{
		"{{Date}}":                 now.Format("January 2, 2006"),
		"{{address}}":              req.Address,
		"{{prepared_by}}":          req.PreparedBy,
		"{{prepared_by_company}}":  req.PreparedByCompany,
		"{{prepared_by_address}}":  req.PreparedByAddress,
		"{{prepared_for}}":         req.PreparedFor,
		"{{prepared_for_company}}": req.PreparedForCompany,
		"{{prepared_for_address}}": req.PreparedForAddress,
		"{{property_name}}":        propertyName,
		"{{property_type}}":        propertyType,
		"{{state}}":                loc.State,
		"{{county}}":               loc.County,
		"{{latitude}}":             coord(loc.Lat),
		"{{longitude}}":            coord(loc.Lng),
		"{{lot_area}}":             req.LotArea,
		"{{acres}}":                req.Acres,
		"{{recorded_sale_date}}":   req.RecordedSaleDate,
		"{{zoning}}":               req.Zoning,
		"{{apn}}":                  req.APN,
		"{{current_owner}}":        req.CurrentOwner,
		"{{property_summary}}":     sections.PropertySummary,
		"{{location_summary}}":     sections.LocationSummary,
		"{{market_overview}}":      sections.MarketOverview,
		"{{swot_strengths}}":       sections.SWOT.Strengths,
		"{{swot_weaknesses}}":      sections.SWOT.Weaknesses,
		"{{swot_opportunities}}":   sections.SWOT.Opportunities,
		"{{swot_threats}}":         sections.SWOT.Threats,
	}

	filename := g.store.AllocateName(domain.PropertyReportPrefix, req.Address, now)
	outPath := g.store.Path(filename)
	if err := RenderTemplate(g.templatePath, outPath, replacements); err != nil {
		return domain.GeneratedDocument{}, domain.Generation("generate property report", err)
	}

	return domain.GeneratedDocument{Path: outPath, Filename: filename}, nil
}

// fetchImages pulls the aerial and street-view shots into the images subarea.
// Failures only lose the imagery, never the report.
func (g *PropertyGenerator) fetchImages(ctx context.Context, address string, loc geocode.Location, now time.Time) {
	ts := now.Format("20060102_150405")
	aerialPath := filepath.Join(g.store.ImagesDir(), "aerial_"+ts+".jpg")
	if err := g.geocoder.AerialImage(ctx, loc.Lat, loc.Lng, aerialPath); err != nil {
		log.Printf("aerial image failed for %s: %v", address, err)
	}
	streetPath := filepath.Join(g.store.ImagesDir(), "street_view_"+ts+".jpg")
	if err := g.geocoder.StreetViewImage(ctx, address, streetPath); err != nil {
		log.Printf("street view image failed for %s: %v", address, err)
	}
}

func coord(v float64) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%.6f", v)
}
