package reports

// CompRow is one comparable-property record extracted from a source PDF.
// The JSON-tagged fields are the ones returned to API clients; the rest only
// feed template placeholders in the rendered report.
type CompRow struct {
	CompNumber   int    `json:"comp_number"`
	PropertyName string `json:"property_name"`
	Address      string `json:"address"`
	SalePrice    string `json:"sale_price"`
	SalePriceSF  string `json:"sale_price_sf"`
	Market       string `json:"market"`
	SubMarket    string `json:"sub_market"`

	PrimaryUse           string `json:"-"`
	CompSF               string `json:"-"`
	Acres                string `json:"-"`
	SalePriceAcres       string `json:"-"`
	Zoning               string `json:"-"`
	ParcelNumber         string `json:"-"`
	OffMarketDate        string `json:"-"`
	MonthsOnMarket       string `json:"-"`
	Topography           string `json:"-"`
	SellerLandlord       string `json:"-"`
	BuyerTenant          string `json:"-"`
	ListingBroker        string `json:"-"`
	ListingBrokerCompany string `json:"-"`
	ListingBrokerPhone   string `json:"-"`
	ListingBrokerEmail   string `json:"-"`
}

// CombinedReportRequest drives both generators from one request body.
// PropertyData gets Address copied into it before generation.
type CombinedReportRequest struct {
	Address      string                 `json:"address"`
	PropertyData *PropertyReportRequest `json:"property_data,omitempty"`
	PDFPath      string                 `json:"pdf_path,omitempty"`
	TemplatePath string                 `json:"template_path,omitempty"`
}
