// Package hmpi computes the three aggregate pollution indices for a sample:
// the heavy metal pollution index (HPI), the heavy metal evaluation index
// (HEI) and the contamination degree (CD).
package hmpi

import (
	"math"

	"github.com/izumilab/groundwater-viewer/internal/coerce"
	"github.com/izumilab/groundwater-viewer/internal/models"
	"github.com/izumilab/groundwater-viewer/internal/standards"
)

// Category thresholds on HPI. Boundary values belong to the higher category:
// exactly 100 is Slightly Polluted, exactly 200 is Hazardous.
const (
	slightlyPollutedMin = 100
	hazardousMin        = 200
)

// Compute aggregates the given metal columns of one sample into the three
// indices. Missing or unparsable concentrations count as zero; one corrupt
// cell must not derail the whole aggregate. Note the flip side: a sparsely
// populated metal column silently understates pollution, since "not
// measured" and "not present" are indistinguishable after coercion.
//
// HEI and CD are computed from the same ratio sum and are numerically
// identical. The source formulas define them that way; keep the equivalence.
func Compute(sample models.RawSample, metals []string, table *standards.Table) models.Indices {
	var (
		weightedSum float64 // Σ w·q over metals, w = 1/limit, q = ratio·100
		totalWeight float64 // Σ w
		ratioSum    float64 // Σ concentration/limit
	)

	for _, metal := range metals {
		concentration := coerce.Parse(sample[metal]).Or(0)
		limit := table.Limit(metal)

		weight := 1 / limit
		subIndex := (concentration / limit) * 100

		weightedSum += weight * subIndex
		totalWeight += weight
		ratioSum += concentration / limit
	}

	hpi := 0.0
	if totalWeight > 0 {
		hpi = weightedSum / totalWeight
	}

	return models.Indices{
		HPI: Round2(hpi),
		HEI: Round2(ratioSum),
		CD:  Round2(ratioSum),
	}
}

// Classify maps an HPI value to its quality category.
func Classify(hpi float64) models.Category {
	switch {
	case hpi < slightlyPollutedMin:
		return models.CategorySafe
	case hpi < hazardousMin:
		return models.CategorySlightlyPolluted
	default:
		return models.CategoryHazardous
	}
}

// Round2 rounds to two decimal places, half away from zero. The choice
// matters for boundary fixtures: 3.16667 rounds to 3.17, -0.005 to -0.01.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
