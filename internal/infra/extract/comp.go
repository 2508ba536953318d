package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/osama-shakil/ppcode/internal/application"
	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
	"github.com/osama-shakil/ppcode/internal/infra/docgen"
	"github.com/osama-shakil/ppcode/internal/infra/storage"
)

// CompExtractor parses comparable-property rows out of land comp summary
// PDFs and renders them into a comp report template.
type CompExtractor struct {
	store *storage.Local
	clock application.Clock
}

func NewCompExtractor(store *storage.Local, clock application.Clock) *CompExtractor {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &CompExtractor{store: store, clock: clock}
}

// ExtractComps reads the PDF at pdfPath and parses its comp sections.
// A missing file is ErrNotFound; unparseable content is a GenerationError.
// A readable PDF with no comp sections yields an empty slice, not an error.
func (e *CompExtractor) ExtractComps(_ context.Context, pdfPath string) ([]domain.CompRow, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pdfPath, domain.ErrNotFound)
	}
	defer f.Close()

	text, err := extractText(f)
	if err != nil {
		return nil, domain.Generation("extract comps", err)
	}
	return parseComps(cleanText(text)), nil
}

// RenderReport fills the six comp positions of the template and saves the
// result as Report_with_Comps_<timestamp>.docx in the report store.
func (e *CompExtractor) RenderReport(_ context.Context, templatePath string, comps []domain.CompRow) (domain.GeneratedDocument, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return domain.GeneratedDocument{}, fmt.Errorf("%s: %w", templatePath, domain.ErrNotFound)
	}

	filename := e.store.AllocateName(domain.CompReportPrefix, "", e.clock.Now())
	outPath := e.store.Path(filename)
	if err := docgen.RenderTemplate(templatePath, outPath, compReplacements(comps)); err != nil {
		return domain.GeneratedDocument{}, domain.Generation("render comp report", err)
	}
	return domain.GeneratedDocument{Path: outPath, Filename: filename}, nil
}

func extractText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		p := pdfReader.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

var (
	footerRe     = regexp.MustCompile(`(?s)All information contained herein.*?Page \d+ of \d+`)
	headerRe     = regexp.MustCompile(`Land Comp Summary Report`)
	compHeaderRe = regexp.MustCompile(`(\d+)\.\s+Sold Land (?:Property|Space)(?:\s*\([^)]+\))?`)

	nameRe       = regexp.MustCompile(`System ID:\s*\d+\)\s*([^\n]+)`)
	primaryUseRe = regexp.MustCompile(`Primary Use:\s*([^\n]+)`)
	marketRe     = regexp.MustCompile(`(?m)(?:^|\s)Market:\s*([^/\n]+?)\s*(?:/\s*Sub-Market:\s*([^\n]+?))?\s*$`)
	fullAddrRe   = regexp.MustCompile(`(\d+[^,\n]+,\s*[^,\n]+,\s*[A-Z]{2}\s+\d{5})`)
	streetWordRe = regexp.MustCompile(`(?i)\b(Street|St|Avenue|Ave|Road|Rd|Drive|Dr|Lane|Ln|Way|Blvd|Boulevard)\b`)
	cityStateRe  = regexp.MustCompile(`,\s*[A-Z]{2}\s+\d{5}`)

	compSFRe       = regexp.MustCompile(`(?i)Comp SF:\s*([0-9,]+(?:\s*SF)?)`)
	acresRe        = regexp.MustCompile(`(?i)Acres:\s*([0-9.]+(?:\s*Acres)?)`)
	salePriceRe    = regexp.MustCompile(`(?i)Sale Price:\s*(\$[0-9,]+)`)
	salePriceSFRe  = regexp.MustCompile(`(?i)Sale Price/SF:\s*(\$[0-9,.]+)`)
	salePriceAcRe  = regexp.MustCompile(`(?i)Sale Price/Acres:\s*(\$[0-9,.]+)`)
	zoningRe       = regexp.MustCompile(`(?im)Zoning:\s*([^\n]+?)(?:\s*Off-Market:|$)`)
	parcelRe       = regexp.MustCompile(`(?im)Parcel #:\s*([^\n]+?)(?:\s*Lot Dimensions:|$)`)
	offMarketRe    = regexp.MustCompile(`(?i)Off-Market:\s*(\d{2}/\d{2}/\d{4})`)
	monthsRe       = regexp.MustCompile(`(?i)Months on Market:\s*(\d+)`)
	topographyRe   = regexp.MustCompile(`(?im)Topography:\s*([^\n]+?)(?:\s*Land Conditions:|$)`)
	colonRunRe     = regexp.MustCompile(`:+`)
	sfSuffixRe     = regexp.MustCompile(`\s*SF\s*$`)
	acresSuffixRe  = regexp.MustCompile(`\s*Acres\s*$`)
	emailRe        = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	phoneRe        = regexp.MustCompile(`\d{3}[.-]?\d{3}[.-]?\d{4}`)
	brokerBlockRe  = regexp.MustCompile(`(?s)Listing Broker\s+(.*?)(?:Procuring Broker|Buyer/Tenant|$)`)
)

// cleanText strips the page chrome the comp PDFs carry on every page.
func cleanText(text string) string {
	text = footerRe.ReplaceAllString(text, "")
	text = headerRe.ReplaceAllString(text, "")
	return text
}

// parseComps splits the text on the numbered "Sold Land" section headers and
// parses each section independently.
func parseComps(text string) []domain.CompRow {
	matches := compHeaderRe.FindAllStringSubmatchIndex(text, -1)
	comps := make([]domain.CompRow, 0, len(matches))

	for i, m := range matches {
		start := m[0]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		num, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		comps = append(comps, parseComp(text[start:end], num))
	}
	return comps
}

func parseComp(section string, num int) domain.CompRow {
	comp := domain.CompRow{CompNumber: num}

	if m := nameRe.FindStringSubmatch(section); m != nil {
		comp.PropertyName = strings.TrimSpace(m[1])
	}
	if m := primaryUseRe.FindStringSubmatch(section); m != nil {
		comp.PrimaryUse = strings.TrimSpace(m[1])
	}
	comp.Address = extractAddress(section)

	if m := marketRe.FindStringSubmatch(section); m != nil {
		comp.Market = strings.TrimSpace(m[1])
		comp.SubMarket = strings.TrimSpace(m[2])
	}

	comp.CompSF = cleanField(section, compSFRe)
	comp.Acres = cleanField(section, acresRe)
	comp.SalePrice = cleanField(section, salePriceRe)
	comp.SalePriceSF = cleanField(section, salePriceSFRe)
	comp.SalePriceAcres = cleanField(section, salePriceAcRe)
	comp.Zoning = cleanField(section, zoningRe)
	comp.ParcelNumber = cleanField(section, parcelRe)
	comp.OffMarketDate = cleanField(section, offMarketRe)
	comp.MonthsOnMarket = cleanField(section, monthsRe)
	comp.Topography = cleanField(section, topographyRe)

	comp.SellerLandlord = extractParty(section, "Seller/Landlord")
	comp.BuyerTenant = extractParty(section, "Buyer/Tenant")

	broker := extractBroker(section)
	comp.ListingBroker = broker.name
	comp.ListingBrokerCompany = broker.company
	comp.ListingBrokerPhone = broker.phone
	comp.ListingBrokerEmail = broker.email

	return comp
}

// extractAddress first looks for a full "123 Street, City, ST 12345" pattern,
// then falls back to walking the lines between Primary Use and Market and
// keeping the ones that look like address fragments.
func extractAddress(section string) string {
	if m := fullAddrRe.FindStringSubmatch(section); m != nil {
		return strings.TrimSpace(m[1])
	}

	fieldLabels := []string{
		"Comp SF:", "Acres:", "Sale Price:", "Zoning:", "Parcel #:",
		"Off-Market:", "Lot Dimensions:", "Legal Description:", "Gas:",
		"Water:", "Sewer:", "Power:", "Rail Status:", "Topography:",
	}

	var candidates []string
	inAddress := false
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "Primary Use:") {
			inAddress = true
			continue
		}
		if strings.Contains(line, "Market:") {
			break
		}
		if !inAddress || line == "" {
			continue
		}
		isLabel := false
		for _, label := range fieldLabels {
			if strings.Contains(line, label) {
				isLabel = true
				break
			}
		}
		if !isLabel {
			candidates = append(candidates, line)
		}
	}
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}

	var parts []string
	for _, line := range candidates {
		if strings.ContainsAny(line, "0123456789") ||
			streetWordRe.MatchString(line) ||
			cityStateRe.MatchString(line) {
			parts = append(parts, line)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func cleanField(section string, re *regexp.Regexp) string {
	m := re.FindStringSubmatch(section)
	if m == nil {
		return ""
	}
	v := strings.TrimSpace(m[1])
	v = strings.NewReplacer("{", "", "}", "").Replace(v)
	v = colonRunRe.ReplaceAllString(v, "")
	v = sfSuffixRe.ReplaceAllString(v, "")
	v = acresSuffixRe.ReplaceAllString(v, "")
	return strings.TrimSpace(v)
}

func extractParty(section, partyType string) string {
	re := regexp.MustCompile(regexp.QuoteMeta(partyType) + `\s*\n\s*([^\n]+)`)
	if m := re.FindStringSubmatch(section); m != nil {
		name := strings.TrimSpace(m[1])
		if name != "" && !containsAnyFold(name, "role", "company", "name", "phone", "email") {
			return name
		}
	}

	alt := regexp.MustCompile(regexp.QuoteMeta(partyType) + `\s+([^\n]+?)(?:\s+Role|\s+Company|\s+Listing|\s+Procuring|\n|$)`)
	if m := alt.FindStringSubmatch(section); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

type brokerInfo struct {
	name    string
	company string
	phone   string
	email   string
}

func extractBroker(section string) brokerInfo {
	var info brokerInfo
	m := brokerBlockRe.FindStringSubmatch(section)
	if m == nil {
		return info
	}

	lines := strings.Split(m[1], "\n")
	if len(lines) > 0 {
		company := strings.TrimSpace(lines[0])
		if company != "" && !containsAnyFold(company, "role", "company", "name", "phone", "email") {
			info.company = company
		}
	}

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if info.email == "" {
			if e := emailRe.FindString(line); e != "" {
				info.email = e
			}
		}
		if info.phone == "" {
			if p := phoneRe.FindString(line); p != "" {
				info.phone = p
			}
		}
		if info.name == "" &&
			!containsAnyFold(line, "role", "company", "phone", "email", "listing", "procuring") &&
			emailRe.FindString(line) == "" && phoneRe.FindString(line) == "" {
			info.name = line
		}
	}
	return info
}

func containsAnyFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// compReplacements builds the {{compN_field}} map for template positions 1-6.
// Positions past the extracted rows are blanked so no placeholder survives in
// the rendered report.
func compReplacements(comps []domain.CompRow) map[string]string {
	sorted := make([]domain.CompRow, len(comps))
	copy(sorted, comps)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].CompNumber < sorted[j-1].CompNumber; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	replacements := make(map[string]string, 6*23)
	for pos := 1; pos <= 6; pos++ {
		var c domain.CompRow
		if pos <= len(sorted) {
			c = sorted[pos-1]
		}
		prefix := fmt.Sprintf("{{comp%d_", pos)
		set := func(field, value string) {
			replacements[prefix+field+"}}"] = value
		}
		if pos <= len(sorted) {
			set("number", strconv.Itoa(c.CompNumber))
		} else {
			set("number", "")
		}
		set("property_name", c.PropertyName)
		set("address", c.Address)
		set("primary_use", c.PrimaryUse)
		set("market", c.Market)
		set("sub_market", c.SubMarket)
		set("comp_sf", c.CompSF)
		set("acres", c.Acres)
		set("sale_price", c.SalePrice)
		set("sale_price_sf", c.SalePriceSF)
		set("sale_price_acres", c.SalePriceAcres)
		set("zoning", c.Zoning)
		set("parcel_number", c.ParcelNumber)
		set("off_market_date", c.OffMarketDate)
		set("months_on_market", c.MonthsOnMarket)
		set("topography", c.Topography)
		set("seller_landlord", c.SellerLandlord)
		set("buyer_tenant", c.BuyerTenant)
		set("listing_broker", c.ListingBroker)
		set("listing_broker_company", c.ListingBrokerCompany)
		set("listing_broker_phone", c.ListingBrokerPhone)
		set("listing_broker_email", c.ListingBrokerEmail)
		set("image", "")
	}
	return replacements
}
