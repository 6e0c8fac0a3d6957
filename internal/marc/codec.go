package marc

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmptyRecord is returned when a payload decodes to a record with no leader and no fields.
var ErrEmptyRecord = errors.New("record has no leader and no fields")

// ParseJSON decodes a MARC-in-JSON document ({"leader": ..., "fields": [...]}).
func ParseJSON(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode MARC JSON: %w", err)
	}
	if rec.Leader == "" && len(rec.Fields) == 0 {
		return nil, ErrEmptyRecord
	}
	return &rec, nil
}

// ReadJSONFile loads a single MARC-in-JSON record from disk.
func ReadJSONFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	return ParseJSON(data)
}

type xmlRecord struct {
	XMLName xml.Name
	Leader  string     `xml:"leader"`
	Fields  []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName   xml.Name
	Tag       string        `xml:"tag,attr"`
	Ind1      string        `xml:"ind1,attr"`
	Ind2      string        `xml:"ind2,attr"`
	Value     string        `xml:",chardata"`
	Subfields []xmlSubfield `xml:"subfield"`
}

type xmlSubfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// ParseXML decodes one MARCXML <record> element. Namespaces are ignored.
func ParseXML(data []byte) (*Record, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRecord
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode MARCXML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "record" {
			continue
		}
		var raw xmlRecord
		if err := dec.DecodeElement(&raw, &start); err != nil {
			return nil, fmt.Errorf("failed to decode MARCXML: %w", err)
		}
		return raw.toRecord()
	}
}

func (x xmlRecord) toRecord() (*Record, error) {
	rec := &Record{Leader: x.Leader}
	for _, f := range x.Fields {
		switch f.XMLName.Local {
		case "controlfield":
			rec.Fields = append(rec.Fields, Field{Tag: f.Tag, Value: f.Value})
		case "datafield":
			field := Field{Tag: f.Tag, Ind1: f.Ind1, Ind2: f.Ind2}
			for _, sf := range f.Subfields {
				field.Subfields = append(field.Subfields, Subfield{Code: sf.Code, Value: sf.Value})
			}
			rec.Fields = append(rec.Fields, field)
		}
	}
	if rec.Leader == "" && len(rec.Fields) == 0 {
		return nil, ErrEmptyRecord
	}
	for _, f := range rec.Fields {
		if len(f.Tag) != 3 {
			return nil, fmt.Errorf("invalid field tag %q", f.Tag)
		}
	}
	return rec, nil
}

// String renders the record in the line-based mnemonic form used in logs and reports.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("LDR  ")
	b.WriteString(r.Leader)
	b.WriteByte('\n')
	for _, f := range r.Fields {
		b.WriteString(f.Tag)
		if f.IsControl() {
			b.WriteString("  ")
			b.WriteString(f.Value)
		} else {
			b.WriteByte(' ')
			b.WriteString(f.Indicator(1))
			b.WriteString(f.Indicator(2))
			for _, sf := range f.Subfields {
				b.WriteString(" $")
				b.WriteString(sf.Code)
				b.WriteByte(' ')
				b.WriteString(sf.Value)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
