package httpapi

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/izumilab/groundwater-viewer/internal/export"
)

// handleExportCSV serves the flattened CSV export for a dataset.
// GET /api/v1/datasets/:id/export/csv
func (s *Server) handleExportCSV(c *gin.Context) {
	records, ok := s.loadRecords(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// handleExportGeoJSON serves the Point feature collection for a dataset.
// Records without both coordinates are omitted.
// GET /api/v1/datasets/:id/export/geojson
func (s *Server) handleExportGeoJSON(c *gin.Context) {
	records, ok := s.loadRecords(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteGeoJSON(&buf, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.geojson"`)
	c.Data(http.StatusOK, "application/geo+json", buf.Bytes())
}
