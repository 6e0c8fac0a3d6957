package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/parquet-go/parquet-go"
)

// maxLineSize bounds a single JSONL line.
const maxLineSize = 10 * 1024 * 1024

// ErrUnsupportedFormat is returned for files that are neither JSONL nor Parquet.
var ErrUnsupportedFormat = errors.New("unsupported file format (supported: .parquet, .jsonl)")

// Loader reads batch input records from a JSONL or Parquet file.
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load reads every record. A malformed record fails the whole load.
func (l *Loader) Load() ([]Entry, error) {
	return l.load(-1, true)
}

// LoadSample reads at most limit records, skipping malformed ones. A limit of zero or less reads all of them.
func (l *Loader) LoadSample(limit int) ([]Entry, error) {
	return l.load(limit, false)
}

func (l *Loader) load(limit int, strict bool) ([]Entry, error) {
	switch ext := strings.ToLower(filepath.Ext(l.datasetPath)); ext {
	case ".parquet":
		return l.loadParquet(limit, strict)
	case ".jsonl", ".json":
		return l.loadJSONL(limit, strict)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func full(entries []Entry, limit int) bool {
	return limit > 0 && len(entries) >= limit
}

// loadJSONL reads one MARC-in-JSON record per line.
func (l *Loader) loadJSONL(limit int, strict bool) ([]Entry, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for !full(entries, limit) && scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		rec, err := marc.ParseJSON(line)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("failed to parse record at line %d: %w", lineNum, err)
			}
			slog.Warn("Skipping malformed record", "line", lineNum, "err", err)
			continue
		}

		id := rec.ID()
		if id == "" {
			id = "line-" + strconv.Itoa(lineNum)
		}
		entries = append(entries, Entry{ID: id, Record: rec})

		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(entries), "total_lines", lineNum)
	return entries, nil
}

// loadParquet reads Row values in batches.
func (l *Loader) loadParquet(limit int, strict bool) ([]Entry, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var entries []Entry
	rows := make([]Row, 128)
	rowNum := 0

	for !full(entries, limit) {
		n, readErr := reader.Read(rows)
		for _, row := range rows[:n] {
			rowNum++
			if full(entries, limit) {
				break
			}
			entry, err := entryFromRow(row)
			if err != nil {
				if strict {
					return nil, fmt.Errorf("failed to parse record at row %d: %w", rowNum, err)
				}
				slog.Warn("Skipping malformed record", "row", rowNum, "id", row.ID, "err", err)
				continue
			}
			entries = append(entries, entry)
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				return nil, fmt.Errorf("failed to read parquet rows: %w", readErr)
			}
			break
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(entries), "rows_read", rowNum)
	return entries, nil
}
