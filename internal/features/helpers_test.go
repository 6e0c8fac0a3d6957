package features

import "github.com/lehigh-university-libraries/recordmatcher/internal/marc"

func record(leader string, fields ...marc.Field) *marc.Record {
	return &marc.Record{Leader: leader, Fields: fields}
}

func control(tag, value string) marc.Field {
	return marc.Field{Tag: tag, Value: value}
}

// data builds a data field from alternating subfield codes and values.
func data(tag, ind1, ind2 string, pairs ...string) marc.Field {
	f := marc.Field{Tag: tag, Ind1: ind1, Ind2: ind2}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Subfields = append(f.Subfields, marc.Subfield{Code: pairs[i], Value: pairs[i+1]})
	}
	return f
}

// f008 returns a 40 character 008 with the given Date1 and language.
func f008(date1, lang string) marc.Field {
	return control("008", "200101s"+date1+"    fi            000 0 "+lang+" d")
}

func compare(f Feature, a, b *marc.Record) float64 {
	return f.Compare(f.Extract(a, "a"), f.Extract(b, "b"))
}
