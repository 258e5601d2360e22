// Package artifacts persists pipeline outputs (reports, plans, cleaned
// data) to the local filesystem. All writers create parent directories
// as needed.
package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"

	apperrors "gosift/internal/errors"

	"gosift/domain/table"
)

// SaveJSON writes v as indented JSON to path, creating directories.
func SaveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Wrapf(err, "create artifact dir for %s", path)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.Wrapf(err, "marshal artifact %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.Wrapf(err, "write artifact %s", path)
	}
	return nil
}

// LoadJSON reads the JSON artifact at path into v.
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.Wrapf(err, "read artifact %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.Wrapf(err, "decode artifact %s", path)
	}
	return nil
}

// WriteTableCSV writes tbl as a CSV file with a header row. Missing
// values render as empty fields.
func WriteTableCSV(path string, tbl *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Wrapf(err, "create output dir for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Names()); err != nil {
		return apperrors.Wrapf(err, "write header to %s", path)
	}
	rows := tbl.NumRows()
	record := make([]string, len(tbl.Columns))
	for r := 0; r < rows; r++ {
		for c := range tbl.Columns {
			record[c] = tbl.Columns[c].Values[r].String()
		}
		if err := w.Write(record); err != nil {
			return apperrors.Wrapf(err, "write row to %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.Wrapf(err, "flush %s", path)
	}
	return nil
}
