package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/izumilab/groundwater-viewer/internal/config"
	"github.com/izumilab/groundwater-viewer/internal/db"
	"github.com/izumilab/groundwater-viewer/internal/pipeline"
	"github.com/izumilab/groundwater-viewer/internal/standards"
)

// Store is the persistence surface the server needs. *db.Store satisfies it;
// tests substitute an in-memory fake.
type Store interface {
	CreateDataset(ctx context.Context, name string, sourceFile *string, rowCount int) (*db.Dataset, error)
	ListDatasets(ctx context.Context, limit int) ([]db.Dataset, error)
	GetDataset(ctx context.Context, id uuid.UUID) (*db.Dataset, error)
	SaveResults(ctx context.Context, datasetID uuid.UUID, payload []byte) error
	LoadResults(ctx context.Context, datasetID uuid.UUID) ([]byte, error)
	DeleteDataset(ctx context.Context, id uuid.UUID) error
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg       config.Config
	store     Store
	table     *standards.Table
	processor *pipeline.Processor
	engine    *gin.Engine
}

// New constructs a server with routes and middleware. A nil table selects
// the built-in standards.
func New(cfg config.Config, store Store, table *standards.Table) *Server {
	if table == nil {
		table = standards.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	server := &Server{
		cfg:       cfg,
		store:     store,
		table:     table,
		processor: pipeline.New(table),
		engine:    engine,
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware())

	datasets := v1.Group("/datasets")
	{
		datasets.POST("", s.handleCreateDataset)
		datasets.GET("", s.handleListDatasets)
		datasets.GET("/:id", s.handleGetDataset)
		datasets.DELETE("/:id", s.handleDeleteDataset)
		datasets.GET("/:id/results", s.handleDatasetResults)
		datasets.GET("/:id/export/csv", s.handleExportCSV)
		datasets.GET("/:id/export/geojson", s.handleExportGeoJSON)
	}

	v1.GET("/standards", s.handleStandards)
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
