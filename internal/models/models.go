package models

// RawSample is one input row as handed over by a tabular-file reader.
// Keys are column names as they appear in the source; values are whatever
// the reader produced (string, float64, nil). There is no fixed schema:
// casing and synonyms vary between sources.
type RawSample map[string]any

// Category classifies a sample by its HPI value.
type Category string

const (
	CategorySafe             Category = "Safe"
	CategorySlightlyPolluted Category = "Slightly Polluted"
	CategoryHazardous        Category = "Hazardous"
	// CategoryUnknown is only produced by rehydration when a stored record
	// carries no recognizable category field.
	CategoryUnknown Category = "Unknown"
)

// Indices bundles the three aggregate pollution indices for one sample.
type Indices struct {
	HPI float64 `json:"hpi"`
	HEI float64 `json:"hei"`
	CD  float64 `json:"cd"`
}

// CalculationResult is the normalized per-sample output of the batch
// processor. Coordinates are nil when no recognized coordinate field parsed.
type CalculationResult struct {
	ID        string             `json:"id"`
	Latitude  *float64           `json:"latitude,omitempty"`
	Longitude *float64           `json:"longitude,omitempty"`
	HPI       float64            `json:"hpi"`
	HEI       float64            `json:"hei"`
	CD        float64            `json:"cd"`
	Category  Category           `json:"category"`
	Metals    map[string]float64 `json:"metals"`
}

// ResultRecord is a rehydrated result: a previously computed record re-read
// from storage, with id/coordinates/indices resolved across key-naming drift.
// Index fields are nil when the stored record carried no parsable value for
// them. Extra keeps every original field untouched (non-destructive
// normalization); resolved canonical fields win when the record is
// re-serialized.
type ResultRecord struct {
	ID        string
	Latitude  *float64
	Longitude *float64
	HPI       *float64
	HEI       *float64
	CD        *float64
	Category  Category
	Extra     map[string]any
}

// HasCoordinates reports whether both latitude and longitude resolved.
func (r ResultRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// HasAnyIndex reports whether at least one of hpi/hei/cd resolved.
func (r ResultRecord) HasAnyIndex() bool {
	return r.HPI != nil || r.HEI != nil || r.CD != nil
}
