package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/izumilab/groundwater-viewer/internal/config"
	"github.com/izumilab/groundwater-viewer/internal/db"
	"github.com/izumilab/groundwater-viewer/internal/ingest"
	"github.com/izumilab/groundwater-viewer/internal/pipeline"
)

var (
	ingestInput string
	ingestName  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Process a CSV of samples and store the results in Postgres",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestInput, "input", "", "input CSV/TSV file (required)")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "dataset name (default: input file name)")
	_ = ingestCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	table, err := loadStandards()
	if err != nil {
		return err
	}

	rows, err := ingest.ReadFile(ingestInput)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("dataset is empty; nothing to ingest")
	}
	log.Printf("read %d rows from %s", len(rows), ingestInput)

	results := pipeline.New(table).Process(rows)
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	name := ingestName
	sourceFile := filepath.Base(ingestInput)
	if name == "" {
		name = sourceFile
	}

	dataset, err := store.CreateDataset(ctx, name, &sourceFile, len(results))
	if err != nil {
		return err
	}
	if err := store.SaveResults(ctx, dataset.ID, payload); err != nil {
		return err
	}

	log.Printf("stored dataset %s (%d results)", dataset.ID, len(results))
	return nil
}
