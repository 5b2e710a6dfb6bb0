package nutrition

// PremiumMarker is the value the API puts in fields that the free tier does not expose.
const PremiumMarker = "Only available for premium subscribers."

// Record is one food item as returned by the API, e.g. fat_total_g or sodium_mg.
// Numbers are kept as json.Number so they print exactly as the API sent them.
type Record map[string]any

// Failure carries a non-200 API response.
type Failure struct {
	StatusCode int    `json:"status"`
	Body       string `json:"body"`
}

// Result is the outcome of one lookup: either the records or the upstream failure.
type Result struct {
	Records []Record `json:"records"`
	Failure *Failure `json:"failure,omitempty"`
}

// StripPremium removes every premium-restricted field from each record in place.
func StripPremium(records []Record) []Record {
	for _, rec := range records {
		for field, value := range rec {
			if s, ok := value.(string); ok && s == PremiumMarker {
				delete(rec, field)
			}
		}
	}
	return records
}
