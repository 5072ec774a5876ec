// Package standards holds the reference table of permissible metal
// concentration limits used to weight the pollution indices.
package standards

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultLimit is used for metal symbols absent from the table. A unit limit
// keeps unknown metals contributing at unit weight instead of dividing by
// zero or dropping the column.
const DefaultLimit = 1

// Table maps a canonical metal symbol (case-sensitive, e.g. "Pb") to its
// permissible concentration limit in mg/L. Built once at startup and never
// mutated afterwards, so it is safe to share across concurrent pipelines.
type Table struct {
	limits map[string]float64
}

// Default returns the WHO drinking-water guideline limits (mg/L).
func Default() *Table {
	return &Table{limits: map[string]float64{
		"As": 0.01,
		"Cd": 0.003,
		"Cr": 0.05,
		"Cu": 2.0,
		"Fe": 0.3,
		"Hg": 0.001,
		"Mn": 0.4,
		"Ni": 0.07,
		"Pb": 0.01,
		"Zn": 3.0,
	}}
}

// New builds a table from an explicit symbol → limit mapping. Non-positive
// limits are rejected.
func New(limits map[string]float64) (*Table, error) {
	m := make(map[string]float64, len(limits))
	for sym, lim := range limits {
		if lim <= 0 {
			return nil, fmt.Errorf("standards: non-positive limit %g for %q", lim, sym)
		}
		m[sym] = lim
	}
	return &Table{limits: m}, nil
}

// LoadFile reads a YAML mapping of metal symbol to limit and merges it over
// the defaults. Entries in the file override or extend the built-in table.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("standards: read %s: %w", path, err)
	}
	var overrides map[string]float64
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("standards: parse %s: %w", path, err)
	}
	base := Default()
	for sym, lim := range overrides {
		if lim <= 0 {
			return nil, fmt.Errorf("standards: non-positive limit %g for %q in %s", lim, sym, path)
		}
		base.limits[sym] = lim
	}
	return base, nil
}

// Limit returns the permissible limit for a metal symbol, or DefaultLimit
// when the symbol is not in the table.
func (t *Table) Limit(symbol string) float64 {
	if lim, ok := t.limits[symbol]; ok {
		return lim
	}
	return DefaultLimit
}

// Symbols returns the known metal symbols with their limits as a copy, for
// read-only consumers such as the standards API endpoint.
func (t *Table) Symbols() map[string]float64 {
	out := make(map[string]float64, len(t.limits))
	for sym, lim := range t.limits {
		out[sym] = lim
	}
	return out
}
