// Package ingest reads headered CSV/TSV files into raw sample rows. It is
// the input-boundary collaborator of the pipeline: no interpretation happens
// here beyond header-to-cell pairing.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/izumilab/groundwater-viewer/internal/models"
)

// ReadFile opens a tabular file and reads it into raw samples. The delimiter
// is sniffed from the extension: .tsv means tab, everything else comma.
func ReadFile(path string) ([]models.RawSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, sniffDelimiter(path))
}

// Read parses headered CSV content into raw samples. Header names are
// trimmed; short rows are padded with empty cells; extra cells beyond the
// header are dropped. An empty reader yields an empty slice.
func Read(r io.Reader, delimiter rune) ([]models.RawSample, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []models.RawSample{}, nil
		}
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]models.RawSample, 0)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("ingest: read row %d: %w", len(rows)+1, err)
		}

		row := make(models.RawSample, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
