// Package export flattens rehydrated result records into the two interchange
// formats consumed outside the pipeline: tabular CSV and GeoJSON points.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/izumilab/groundwater-viewer/internal/models"
)

// csvHeader is the fixed column layout of the CSV export.
var csvHeader = []string{"id", "latitude", "longitude", "hpi", "hei", "cd", "category"}

// WriteCSV writes records as CSV with the fixed header. Unresolved optional
// fields are emitted as empty cells.
func WriteCSV(w io.Writer, records []models.ResultRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.ID,
			formatOpt(r.Latitude),
			formatOpt(r.Longitude),
			formatOpt(r.HPI),
			formatOpt(r.HEI),
			formatOpt(r.CD),
			string(r.Category),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write csv row %q: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOpt(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// FeatureCollection builds a GeoJSON feature collection of Point features,
// one per record that resolved both coordinates. Records without usable
// geography are skipped, not errors: they are exportable as CSV but have no
// place on a map.
func FeatureCollection(records []models.ResultRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		f := geojson.NewFeature(orb.Point{*r.Longitude, *r.Latitude})
		f.Properties["id"] = r.ID
		if r.HPI != nil {
			f.Properties["hpi"] = *r.HPI
		}
		if r.HEI != nil {
			f.Properties["hei"] = *r.HEI
		}
		if r.CD != nil {
			f.Properties["cd"] = *r.CD
		}
		f.Properties["category"] = string(r.Category)
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the feature collection for records to w.
func WriteGeoJSON(w io.Writer, records []models.ResultRecord) error {
	data, err := json.Marshal(FeatureCollection(records))
	if err != nil {
		return fmt.Errorf("export: marshal geojson: %w", err)
	}
	_, err = w.Write(data)
	return err
}
