// Package rehydrate re-normalizes previously computed results when they are
// reloaded from storage. Producers of the persisted payload have drifted in
// key casing and naming over time, so every field is resolved through
// synonym lists rather than trusted as-is.
package rehydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/izumilab/groundwater-viewer/internal/coerce"
	"github.com/izumilab/groundwater-viewer/internal/models"
)

// ErrNotArray is returned when the persisted payload is not a JSON array.
// This is the one fatal parse condition of the display phase: the caller
// should route the user back to a fresh upload.
var ErrNotArray = errors.New("rehydrate: persisted payload is not a JSON array")

// Synonym lists, in priority order, for each resolved field.
var (
	idKeys        = []string{"id", "sample_id", "SampleID", "Location"}
	latitudeKeys  = []string{"latitude", "Latitude", "lat", "Lat"}
	longitudeKeys = []string{"longitude", "Longitude", "lon", "lng", "Lon", "Lng"}
	hpiKeys       = []string{"hpi", "HPI", "hpi_value", "hpiValue", "hpi_val"}
	heiKeys       = []string{"hei", "HEI", "hei_value", "heiValue", "hei_val"}
	cdKeys        = []string{"cd", "CD", "cd_value", "cdValue", "cd_val"}
	categoryKeys  = []string{"category", "Category", "status"}
)

// Decode parses the persisted handoff payload. Anything but a top-level JSON
// array is ErrNotArray; array elements that are not objects are rejected too,
// since a record without keys cannot be normalized.
func Decode(payload []byte) ([]map[string]any, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var records []map[string]any
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("rehydrate: decode records: %w", err)
	}
	return records, nil
}

// Normalize resolves id, coordinates, the three indices and the category of
// each stored record across the known synonym lists, then filters out records
// that carry neither usable geography nor any usable index. Original fields
// are kept in Extra; nothing is mutated in place. Applying Normalize to its
// own output changes nothing.
func Normalize(raw []map[string]any) []models.ResultRecord {
	out := make([]models.ResultRecord, 0, len(raw))

	for i, rec := range raw {
		if rec == nil {
			continue
		}

		id := strings.TrimSpace(coerce.PickFirstString(rec, idKeys...))
		if id == "" {
			id = fmt.Sprintf("sample-%d", i+1)
		}

		category := models.Category(coerce.PickFirstString(rec, categoryKeys...))
		if category == "" {
			category = models.CategoryUnknown
		}

		extra := make(map[string]any, len(rec))
		for k, v := range rec {
			extra[k] = v
		}

		r := models.ResultRecord{
			ID:        id,
			Latitude:  coerce.PickFirst(rec, latitudeKeys...).Ptr(),
			Longitude: coerce.PickFirst(rec, longitudeKeys...).Ptr(),
			HPI:       coerce.PickFirst(rec, hpiKeys...).Ptr(),
			HEI:       coerce.PickFirst(rec, heiKeys...).Ptr(),
			CD:        coerce.PickFirst(rec, cdKeys...).Ptr(),
			Category:  category,
			Extra:     extra,
		}

		// Records with neither coordinates nor any index have nothing to
		// display or export; drop them silently.
		if !r.HasCoordinates() && !r.HasAnyIndex() {
			continue
		}
		out = append(out, r)
	}

	return out
}

// Load decodes and normalizes a persisted payload in one step.
func Load(payload []byte) ([]models.ResultRecord, error) {
	raw, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}
