package prompt

import "fmt"

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior commercial real-estate appraiser writing report narrative. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Each narrative field is 2-4 sentences of professional appraisal prose.
- Stay factual about the location given; never invent sale figures or owners.
- The swot fields are short comma-separated phrase lists, not sentences.

Schema (example with empty values):
{
  "property_summary": "<string>",
  "location_summary": "<string>",
  "market_overview": "<string>",
  "swot": {
    "strengths": "<string>",
    "weaknesses": "<string>",
    "opportunities": "<string>",
    "threats": "<string>"
  }
}`
}

// GetUserPrompt builds the user message for one subject property.
func GetUserPrompt(address, propertyType, city, county, state string) string {
	return fmt.Sprintf(
		"Write the report narrative JSON for this subject property. Address: %s. Property type: %s. City: %s. County: %s. State: %s.",
		address, propertyType, city, county, state,
	)
}

// Sections matches the schema used by the system prompt.
type Sections struct {
	PropertySummary string `json:"property_summary"`
	LocationSummary string `json:"location_summary"`
	MarketOverview  string `json:"market_overview"`
	SWOT            struct {
		Strengths     string `json:"strengths"`
		Weaknesses    string `json:"weaknesses"`
		Opportunities string `json:"opportunities"`
		Threats       string `json:"threats"`
	} `json:"swot"`
}
