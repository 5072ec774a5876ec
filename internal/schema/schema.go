// Package schema infers which columns of a dataset carry metal
// concentrations. The decision is made once, from the first row, and applied
// to every row of the batch.
package schema

import (
	"sort"
	"strings"

	"github.com/izumilab/groundwater-viewer/internal/models"
)

// metadataKeys are the column names (lower-cased) that never count as metal
// concentration columns.
var metadataKeys = map[string]struct{}{
	"id":        {},
	"latitude":  {},
	"longitude": {},
	"lat":       {},
	"lon":       {},
	"lng":       {},
}

// MetalColumns returns every column of the first row that is not a known
// metadata field, compared case-insensitively. The result is sorted so the
// inferred schema is deterministic regardless of map iteration order; an
// empty or nil row yields an empty set, which downstream code treats as a
// degenerate all-zero dataset rather than an error.
func MetalColumns(first models.RawSample) []string {
	cols := make([]string, 0, len(first))
	for name := range first {
		if _, meta := metadataKeys[strings.ToLower(strings.TrimSpace(name))]; meta {
			continue
		}
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// IsMetadata reports whether a column name belongs to the fixed metadata
// exclusion set.
func IsMetadata(name string) bool {
	_, ok := metadataKeys[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
