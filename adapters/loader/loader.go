// Package loader reads tabular datasets from CSV, Excel and JSON files
// into the in-memory table model, inferring a column kind per column.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"gosift/domain/table"
	"gosift/internal"
	apperrors "gosift/internal/errors"
)

// categoricalMaxDistinct bounds how many distinct values a text column
// may have and still be classified categorical.
const categoricalMaxDistinct = 50

var datetimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
}

// FileLoader loads datasets from the local filesystem
type FileLoader struct {
	logger *internal.Logger
}

// New creates a FileLoader
func New(logger *internal.Logger) *FileLoader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &FileLoader{logger: logger}
}

// Load reads the file at path, dispatching on its extension. It fails
// with EMPTY_INPUT when the parsed table has no rows and no columns.
func (l *FileLoader) Load(path string) (*table.Table, error) {
	var (
		tbl *table.Table
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		tbl, err = l.loadCSV(path)
	case ".xlsx", ".xls":
		tbl, err = l.loadExcel(path)
	case ".json":
		tbl, err = l.loadJSON(path)
	case ".parquet":
		// TODO: add a Parquet reader once a columnar dependency is settled
		return nil, apperrors.UnsupportedFormat(
			fmt.Sprintf("parquet input %q is not supported yet (want .csv, .xlsx, .xls or .json)", filepath.Base(path)))
	default:
		return nil, apperrors.UnsupportedFormat(
			fmt.Sprintf("unsupported file format %q (want .csv, .xlsx, .xls or .json)", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}
	if tbl.NumCols() == 0 {
		return nil, apperrors.EmptyInput(fmt.Sprintf("no data found in %s", path))
	}
	l.logger.Info("Loaded %s: %d rows x %d columns", path, tbl.NumRows(), tbl.NumCols())
	return tbl, nil
}

// loadCSV reads a delimited text file, falling back from UTF-8 to
// Windows-1252 and then Latin-1 for files with legacy encodings, and
// sniffing the delimiter from the header line.
func (l *FileLoader) loadCSV(path string) (*table.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "read %s", path)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.EmptyInput(fmt.Sprintf("file %s is empty", path))
	}

	text, encoding := decodeText(raw)
	if encoding != "utf-8" {
		l.logger.Debug("CSV %s decoded as %s", path, encoding)
	}

	delim := sniffDelimiter(text)
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.Wrapf(err, "parse CSV %s", path)
	}
	if len(records) == 0 {
		return nil, apperrors.EmptyInput(fmt.Sprintf("file %s has no records", path))
	}
	return fromRecords(records[0], records[1:])
}

// loadExcel reads the first sheet of a workbook
func (l *FileLoader) loadExcel(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.EmptyInput(fmt.Sprintf("workbook %s has no sheets", path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrapf(err, "read sheet %q of %s", sheets[0], path)
	}
	if len(rows) == 0 {
		return nil, apperrors.EmptyInput(fmt.Sprintf("sheet %q of %s is empty", sheets[0], path))
	}
	return fromRecords(rows[0], rows[1:])
}

// loadJSON reads an array of flat objects. Column order is the sorted
// union of keys so repeated loads are deterministic.
func (l *FileLoader) loadJSON(path string) (*table.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "read %s", path)
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, apperrors.Wrapf(err, "parse JSON %s (want an array of objects)", path)
	}
	if len(rows) == 0 {
		return nil, apperrors.EmptyInput(fmt.Sprintf("file %s holds an empty array", path))
	}

	keySet := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			keySet[k] = struct{}{}
		}
	}
	header := make([]string, 0, len(keySet))
	for k := range keySet {
		header = append(header, k)
	}
	sort.Strings(header)

	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, len(header))
		for j, k := range header {
			record[j] = jsonCell(row[k])
		}
		records[i] = record
	}
	return fromRecords(header, records)
}

func jsonCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

// decodeText returns raw as a string plus the encoding used. Valid UTF-8
// passes through; anything else is decoded as Windows-1252 (a superset
// of printable Latin-1), falling back to ISO 8859-1.
func decodeText(raw []byte) (string, string) {
	if utf8.Valid(raw) {
		return string(raw), "utf-8"
	}
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		return string(decoded), "windows-1252"
	}
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(decoded), "latin-1"
}

// sniffDelimiter picks the candidate most frequent in the header line
func sniffDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	best, bestCount := ',', 0
	for _, cand := range []rune{',', ';', '\t'} {
		if c := strings.Count(header, string(cand)); c > bestCount {
			best, bestCount = cand, c
		}
	}
	return best
}

// fromRecords builds a typed table from a header and raw string rows.
// Short rows are padded with missing cells; blank header names get
// positional fallbacks.
func fromRecords(header []string, rows [][]string) (*table.Table, error) {
	if len(header) == 0 {
		return table.New(), nil
	}

	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = h
	}

	cols := make([]table.Column, len(names))
	for c := range names {
		raw := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				raw[r] = row[c]
			}
		}
		cols[c] = inferColumn(names[c], raw)
	}
	return table.New(cols...), nil
}

// inferColumn classifies a raw string column and converts its cells.
// Order matters: boolean and numeric are strict (every non-empty value
// must parse), datetime likewise, and anything else stays text with a
// categorical refinement based on distinct ratio.
func inferColumn(name string, raw []string) table.Column {
	trimmed := make([]string, len(raw))
	nonEmpty := 0
	for i, s := range raw {
		trimmed[i] = strings.TrimSpace(s)
		if trimmed[i] != "" {
			nonEmpty++
		}
	}

	if nonEmpty == 0 {
		vals := make([]table.Value, len(raw))
		for i := range vals {
			vals[i] = table.NewMissingValue()
		}
		return table.Column{Name: name, Kind: table.KindText, Values: vals}
	}

	if allMatch(trimmed, isBool) {
		vals := make([]table.Value, len(trimmed))
		for i, s := range trimmed {
			if s == "" {
				vals[i] = table.NewMissingValue()
				continue
			}
			vals[i] = table.NewBooleanValue(strings.EqualFold(s, "true"))
		}
		return table.Column{Name: name, Kind: table.KindBoolean, Values: vals}
	}

	if allMatch(trimmed, isNumber) {
		vals := make([]table.Value, len(trimmed))
		for i, s := range trimmed {
			if s == "" {
				vals[i] = table.NewMissingValue()
				continue
			}
			f, _ := strconv.ParseFloat(s, 64)
			vals[i] = table.NewNumericValue(f)
		}
		return table.Column{Name: name, Kind: table.KindNumeric, Values: vals}
	}

	if allMatch(trimmed, isDatetime) {
		vals := make([]table.Value, len(trimmed))
		for i, s := range trimmed {
			if s == "" {
				vals[i] = table.NewMissingValue()
				continue
			}
			ts, _ := parseTimestamp(s)
			vals[i] = table.NewTimestampValue(ts)
		}
		return table.Column{Name: name, Kind: table.KindDatetime, Values: vals}
	}

	vals := make([]table.Value, len(trimmed))
	distinct := map[string]struct{}{}
	for i, s := range trimmed {
		vals[i] = table.NewStringValue(s)
		if s != "" {
			distinct[s] = struct{}{}
		}
	}
	kind := table.KindText
	if len(distinct) <= categoricalMaxDistinct &&
		float64(len(distinct))/float64(nonEmpty) < 0.5 {
		kind = table.KindCategorical
	}
	return table.Column{Name: name, Kind: kind, Values: vals}
}

func allMatch(vals []string, pred func(string) bool) bool {
	matched := false
	for _, s := range vals {
		if s == "" {
			continue
		}
		if !pred(s) {
			return false
		}
		matched = true
	}
	return matched
}

func isBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "false")
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isDatetime(s string) bool {
	_, ok := parseTimestamp(s)
	return ok
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range datetimeFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
