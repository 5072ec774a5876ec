package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/izumilab/groundwater-viewer/internal/export"
	"github.com/izumilab/groundwater-viewer/internal/ingest"
	"github.com/izumilab/groundwater-viewer/internal/pipeline"
	"github.com/izumilab/groundwater-viewer/internal/rehydrate"
	"github.com/izumilab/groundwater-viewer/internal/standards"
)

var (
	processInput  string
	processOutput string
	processFormat string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Compute pollution indices for a CSV of samples",
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processInput, "input", "", "input CSV/TSV file (required)")
	processCmd.Flags().StringVar(&processOutput, "output", "", "output file (default stdout)")
	processCmd.Flags().StringVar(&processFormat, "format", "json", "output format: json, csv or geojson")
	_ = processCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	table, err := loadStandards()
	if err != nil {
		return err
	}

	rows, err := ingest.ReadFile(processInput)
	if err != nil {
		return err
	}
	log.Printf("read %d rows from %s", len(rows), processInput)

	results := pipeline.New(table).Process(rows)

	// Round-trip through the persisted handoff so local exports see exactly
	// what the display phase would see.
	payload, err := json.Marshal(results)
	if err != nil {
		return err
	}
	records, err := rehydrate.Load(payload)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(processOutput)
	if err != nil {
		return err
	}
	defer closeOut()

	switch processFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "csv":
		return export.WriteCSV(out, records)
	case "geojson":
		return export.WriteGeoJSON(out, records)
	default:
		return fmt.Errorf("unknown format %q (want json, csv or geojson)", processFormat)
	}
}

func loadStandards() (*standards.Table, error) {
	if standardsPath == "" {
		return standards.Default(), nil
	}
	return standards.LoadFile(standardsPath)
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
