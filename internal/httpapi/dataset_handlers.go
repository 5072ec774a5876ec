package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/izumilab/groundwater-viewer/internal/db"
	"github.com/izumilab/groundwater-viewer/internal/ingest"
	"github.com/izumilab/groundwater-viewer/internal/models"
	"github.com/izumilab/groundwater-viewer/internal/rehydrate"
)

// createDatasetRequest is the JSON body variant of the upload endpoint.
// Rows stays raw so a non-array payload can be reported distinctly.
type createDatasetRequest struct {
	Name string          `json:"name"`
	Rows json.RawMessage `json:"rows"`
}

// handleCreateDataset ingests one dataset, runs the pipeline and persists
// the result payload.
// POST /api/v1/datasets accepts multipart CSV (field "file") or JSON {name, rows}.
func (s *Server) handleCreateDataset(c *gin.Context) {
	var (
		name       string
		sourceFile *string
		rows       []models.RawSample
	)

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
			return
		}
		if fileHeader.Size > s.cfg.MaxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "uploaded file too large"})
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer f.Close()

		delimiter := ','
		if strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".tsv") {
			delimiter = '\t'
		}
		rows, err = ingest.Read(f, delimiter)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		fn := fileHeader.Filename
		sourceFile = &fn
		name = c.PostForm("name")
		if name == "" {
			name = fn
		}
	} else {
		var req createDatasetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		if err := json.Unmarshal(req.Rows, &rows); err != nil {
			// The one malformed-payload condition treated as fatal: rows must
			// be a JSON array of row objects.
			c.JSON(http.StatusBadRequest, gin.H{"error": "rows must be a JSON array of row objects"})
			return
		}
		name = req.Name
		if name == "" {
			name = "dataset"
		}
	}

	if len(rows) == 0 {
		// Distinct from a malformed payload: the upload parsed, there is
		// just nothing in it. The client should route back to upload.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "dataset is empty"})
		return
	}

	results := s.processor.Process(rows)

	payload, err := json.Marshal(results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	dataset, err := s.store.CreateDataset(ctx, name, sourceFile, len(results))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.store.SaveResults(ctx, dataset.ID, payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"dataset": dataset,
			"results": results,
		},
		"meta": gin.H{
			"count": len(results),
		},
	})
}

// handleListDatasets returns recent datasets.
// GET /api/v1/datasets?limit=N
func (s *Server) handleListDatasets(c *gin.Context) {
	limit := s.cfg.DefaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	datasets, err := s.store.ListDatasets(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": datasets,
		"meta": gin.H{
			"count": len(datasets),
		},
	})
}

// handleGetDataset returns one dataset's metadata.
// GET /api/v1/datasets/:id
func (s *Server) handleGetDataset(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	dataset, err := s.store.GetDataset(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dataset})
}

// handleDeleteDataset removes a dataset and its results.
// DELETE /api/v1/datasets/:id
func (s *Server) handleDeleteDataset(c *gin.Context) {
	id, ok := datasetID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := s.store.DeleteDataset(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// handleDatasetResults serves the rehydrated result records for a dataset.
// GET /api/v1/datasets/:id/results
func (s *Server) handleDatasetResults(c *gin.Context) {
	records, ok := s.loadRecords(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
		"meta": gin.H{
			"count": len(records),
		},
	})
}

// handleStandards returns the active permissible-limit table.
// GET /api/v1/standards
func (s *Server) handleStandards(c *gin.Context) {
	limits := s.table.Symbols()
	c.JSON(http.StatusOK, gin.H{
		"data": limits,
		"meta": gin.H{
			"unit":  "mg/L",
			"count": len(limits),
		},
	})
}

func datasetID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset id"})
		return uuid.UUID{}, false
	}
	return id, true
}

// loadRecords fetches and rehydrates the stored payload for the dataset in
// the request path. It writes the error response itself on failure.
func (s *Server) loadRecords(c *gin.Context) ([]models.ResultRecord, bool) {
	id, ok := datasetID(c)
	if !ok {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	payload, err := s.store.LoadResults(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}

	records, err := rehydrate.Load(payload)
	if err != nil {
		// Stored payload is unusable; the dataset has to be uploaded again.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return nil, false
	}
	return records, true
}
