package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
)

// sampleText mirrors the text layer of a two-comp summary PDF after page
// chrome removal.
const sampleText = `1. Sold Land Property
(System ID: 482913) Riverside Commerce Site
Primary Use: Industrial Land
4750 Commerce Parkway
Chattanooga, TN 37416
Market: Chattanooga / Sub-Market: East Chattanooga
Comp SF: 210,395 SF
Acres: 4.83 Acres
Sale Price: $1,250,000
Sale Price/SF: $5.94
Sale Price/Acres: $258,799
Zoning: M-1
Parcel #: 147J-A-014
Off-Market: 03/15/2024
Months on Market: 11
Topography: Level
Seller/Landlord
Riverbend Holdings LLC
Buyer/Tenant
Chattanooga Cold Storage Inc
Listing Broker
NAI Charter Real Estate
David Wiley
dwiley@naicharter.com
423-267-6549
2. Sold Land Property (Industrial)
(System ID: 482957) Hixson Pike Parcel
Primary Use: Commercial Land
Market: Chattanooga
Sale Price: $480,000
Acres: 1.20 Acres
`

func TestParseComps(t *testing.T) {
	comps := parseComps(sampleText)
	require.Len(t, comps, 2)

	t.Run("full section", func(t *testing.T) {
		c := comps[0]
		assert.Equal(t, 1, c.CompNumber)
		assert.Equal(t, "Riverside Commerce Site", c.PropertyName)
		assert.Equal(t, "Industrial Land", c.PrimaryUse)
		assert.Equal(t, "4750 Commerce Parkway Chattanooga, TN 37416", c.Address)
		assert.Equal(t, "Chattanooga", c.Market)
		assert.Equal(t, "East Chattanooga", c.SubMarket)
		assert.Equal(t, "210,395", c.CompSF)
		assert.Equal(t, "4.83", c.Acres)
		assert.Equal(t, "$1,250,000", c.SalePrice)
		assert.Equal(t, "$5.94", c.SalePriceSF)
		assert.Equal(t, "$258,799", c.SalePriceAcres)
		assert.Equal(t, "M-1", c.Zoning)
		assert.Equal(t, "147J-A-014", c.ParcelNumber)
		assert.Equal(t, "03/15/2024", c.OffMarketDate)
		assert.Equal(t, "11", c.MonthsOnMarket)
		assert.Equal(t, "Level", c.Topography)
		assert.Equal(t, "Riverbend Holdings LLC", c.SellerLandlord)
		assert.Equal(t, "Chattanooga Cold Storage Inc", c.BuyerTenant)
		assert.Equal(t, "David Wiley", c.ListingBroker)
		assert.Equal(t, "NAI Charter Real Estate", c.ListingBrokerCompany)
		assert.Equal(t, "423-267-6549", c.ListingBrokerPhone)
		assert.Equal(t, "dwiley@naicharter.com", c.ListingBrokerEmail)
	})

	t.Run("sparse section", func(t *testing.T) {
		c := comps[1]
		assert.Equal(t, 2, c.CompNumber)
		assert.Equal(t, "Hixson Pike Parcel", c.PropertyName)
		assert.Equal(t, "Commercial Land", c.PrimaryUse)
		assert.Empty(t, c.Address)
		assert.Equal(t, "Chattanooga", c.Market)
		assert.Empty(t, c.SubMarket)
		assert.Equal(t, "$480,000", c.SalePrice)
		assert.Equal(t, "1.20", c.Acres)
		assert.Empty(t, c.ListingBroker)
	})
}

func TestParseCompsNoSections(t *testing.T) {
	assert.Empty(t, parseComps("nothing resembling a comp summary"))
}

func TestCleanText(t *testing.T) {
	text := "Land Comp Summary Report\n1. Sold Land Property\n" +
		"All information contained herein is from sources deemed reliable. Page 1 of 3"
	cleaned := cleanText(text)
	assert.NotContains(t, cleaned, "Land Comp Summary Report")
	assert.NotContains(t, cleaned, "Page 1 of 3")
	assert.Contains(t, cleaned, "1. Sold Land Property")
}

func TestExtractAddressFullPattern(t *testing.T) {
	section := "Primary Use: Land\n1420 Market Street, Chattanooga, TN 37402\nMarket: Chattanooga"
	assert.Equal(t, "1420 Market Street, Chattanooga, TN 37402", extractAddress(section))
}

func TestCompReplacements(t *testing.T) {
	comps := []domain.CompRow{
		{CompNumber: 3, PropertyName: "Third", SalePrice: "$300"},
		{CompNumber: 1, PropertyName: "First", SalePrice: "$100"},
	}
	repl := compReplacements(comps)

	// rows land in template positions ordered by comp number
	assert.Equal(t, "First", repl["{{comp1_property_name}}"])
	assert.Equal(t, "1", repl["{{comp1_number}}"])
	assert.Equal(t, "Third", repl["{{comp2_property_name}}"])
	assert.Equal(t, "3", repl["{{comp2_number}}"])
	assert.Equal(t, "$300", repl["{{comp2_sale_price}}"])

	// unused positions are blanked, never left as live placeholders
	for pos := 3; pos <= 6; pos++ {
		assert.Equal(t, "", repl[fmt.Sprintf("{{comp%d_number}}", pos)])
		assert.Equal(t, "", repl[fmt.Sprintf("{{comp%d_property_name}}", pos)])
		assert.Equal(t, "", repl[fmt.Sprintf("{{comp%d_sale_price}}", pos)])
	}
	assert.Equal(t, "", repl["{{comp1_image}}"], "images are placed manually")
	assert.Len(t, repl, 6*23)
}

func TestExtractCompsMissingFile(t *testing.T) {
	e := NewCompExtractor(nil, nil)
	_, err := e.ExtractComps(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "absent.pdf")
}

func TestExtractCompsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	e := NewCompExtractor(nil, nil)
	_, err := e.ExtractComps(context.Background(), path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestRenderReportMissingTemplate(t *testing.T) {
	e := NewCompExtractor(nil, nil)
	_, err := e.RenderReport(context.Background(), filepath.Join(t.TempDir(), "absent.docx"), []domain.CompRow{{CompNumber: 1}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
