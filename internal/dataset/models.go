package dataset

import (
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

// Row is the on-disk shape of a Parquet dataset row.
type Row struct {
	ID     string `json:"id" parquet:"id"`
	Record string `json:"record" parquet:"record"` // MARC-in-JSON
}

// Entry is one decoded input record.
type Entry struct {
	ID     string
	Record *marc.Record
}

// entryFromRow decodes the record payload of a row. The row ID falls back to the record's 001.
func entryFromRow(row Row) (Entry, error) {
	rec, err := marc.ParseJSON([]byte(row.Record))
	if err != nil {
		return Entry{}, err
	}
	id := row.ID
	if id == "" {
		id = rec.ID()
	}
	return Entry{ID: id, Record: rec}, nil
}
