package marc

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<record xmlns="http://www.loc.gov/MARC21/slim">
  <leader>00000cam a2200000 i 4500</leader>
  <controlfield tag="001">012345678</controlfield>
  <controlfield tag="008">200101s2020    fi            000 0 fin d</controlfield>
  <datafield tag="020" ind1=" " ind2=" ">
    <subfield code="a">978-951-0-12345-6</subfield>
  </datafield>
  <datafield tag="245" ind1="1" ind2="0">
    <subfield code="a">Kalevala :</subfield>
    <subfield code="b">runoja</subfield>
  </datafield>
</record>`

func TestParseXML(t *testing.T) {
	rec, err := ParseXML([]byte(sampleXML))
	require.NoError(t, err)

	assert.Equal(t, "00000cam a2200000 i 4500", rec.Leader)
	assert.Equal(t, "012345678", rec.ID())
	assert.Equal(t, "a", rec.LeaderAt(6))
	assert.Equal(t, "m", rec.LeaderAt(7))
	assert.Equal(t, "2020", rec.ControlSlice("008", 7, 11))
	assert.Equal(t, "fin", rec.ControlSlice("008", 35, 38))

	titles := rec.GetFields("245")
	require.Len(t, titles, 1)
	assert.Equal(t, []string{"Kalevala :", "runoja"}, titles[0].SubfieldValues("a", "b"))
	assert.Equal(t, "1", titles[0].Indicator(1))
}

func TestParseXMLErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "malformed", payload: `<record><leader>x</leader><datafield tag="245">`},
		{name: "no record element", payload: `<collection></collection>`},
		{name: "empty record", payload: `<record></record>`},
		{name: "bad tag", payload: `<record><leader>x</leader><controlfield tag="1">y</controlfield></record>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseXML([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestParseJSON(t *testing.T) {
	payload := `{"leader":"00000nam a22000007i 4500","fields":[
		{"tag":"001","value":"000000001"},
		{"tag":"700","ind1":"1","ind2":" ","subfields":[{"code":"a","value":"Doe, Jane"},{"code":"0","value":"(orcid)1"}]},
		{"tag":"700","ind1":"1","ind2":" ","subfields":[{"code":"a","value":"Roe, Rick"}]}
	]}`

	rec, err := ParseJSON([]byte(payload))
	require.NoError(t, err)

	assert.Len(t, rec.Get(regexp.MustCompile(`^[17]00$`)), 2)
	assert.Len(t, rec.GetFields("700", Subfield{Code: "a", Value: "Roe, Rick"}), 1)

	id, ok := rec.GetFields("700")[0].FirstSubfield("0")
	assert.True(t, ok)
	assert.Equal(t, "(orcid)1", id)

	_, err = ParseJSON([]byte(`{}`))
	assert.ErrorIs(t, err, ErrEmptyRecord)
}

func TestAccessorsOnMissingData(t *testing.T) {
	rec := &Record{Leader: "short"}

	assert.Equal(t, "", rec.LeaderAt(9))
	assert.Equal(t, "", rec.ControlSlice("008", 7, 11))
	assert.Empty(t, rec.GetFields("245"))
	assert.Equal(t, "", rec.ID())

	var nilRec *Record
	assert.Empty(t, nilRec.Get(regexp.MustCompile(`.*`)))
	assert.Equal(t, "", nilRec.LeaderAt(0))
}
