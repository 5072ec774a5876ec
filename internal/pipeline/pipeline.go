// Package pipeline orchestrates schema inference and per-sample index
// calculation across a whole dataset.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/izumilab/groundwater-viewer/internal/coerce"
	"github.com/izumilab/groundwater-viewer/internal/hmpi"
	"github.com/izumilab/groundwater-viewer/internal/models"
	"github.com/izumilab/groundwater-viewer/internal/schema"
	"github.com/izumilab/groundwater-viewer/internal/standards"
)

// Candidate key lists for coordinate lookup, in priority order.
var (
	latitudeKeys  = []string{"latitude", "Latitude", "lat"}
	longitudeKeys = []string{"longitude", "Longitude", "lon", "lng"}
)

// Processor computes normalized results for raw sample rows against one
// standards table. The zero value is not usable; use New.
type Processor struct {
	table *standards.Table
}

// New returns a processor bound to the given standards table. A nil table
// selects the built-in WHO defaults.
func New(table *standards.Table) *Processor {
	if table == nil {
		table = standards.Default()
	}
	return &Processor{table: table}
}

// Process transforms raw rows into calculation results, preserving input
// order. The metal column set is inferred from the first row only and frozen
// for the whole batch: a metal that first appears in a later row is ignored
// everywhere. Empty input returns an empty slice, never an error.
func (p *Processor) Process(rows []models.RawSample) []models.CalculationResult {
	results := make([]models.CalculationResult, 0, len(rows))
	if len(rows) == 0 {
		return results
	}

	metals := schema.MetalColumns(rows[0])

	for i, row := range rows {
		id := strings.TrimSpace(coerce.PickFirstString(row, "id"))
		if id == "" {
			id = fmt.Sprintf("Sample %d", i+1)
		}

		indices := hmpi.Compute(row, metals, p.table)

		concentrations := make(map[string]float64, len(metals))
		for _, metal := range metals {
			concentrations[metal] = coerce.Parse(row[metal]).Or(0)
		}

		results = append(results, models.CalculationResult{
			ID:        id,
			Latitude:  coerce.PickFirst(row, latitudeKeys...).Ptr(),
			Longitude: coerce.PickFirst(row, longitudeKeys...).Ptr(),
			HPI:       indices.HPI,
			HEI:       indices.HEI,
			CD:        indices.CD,
			Category:  hmpi.Classify(indices.HPI),
			Metals:    concentrations,
		})
	}

	return results
}
