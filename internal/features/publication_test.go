package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicationTime(t *testing.T) {
	exact := NewPublicationTime()
	loose := NewPublicationTimeAllowConsYears()

	y2020 := record("", f008("2020", "fin"))
	y2021 := record("", f008("2021", "fin"))
	y1999 := record("", f008("1999", "fin"))
	unknown := record("", f008("uuuu", "fin"))
	blank := record("", f008("    ", "fin"))

	assert.Equal(t, 0.1, compare(exact, y2020, y2020))
	assert.Equal(t, -1.0, compare(exact, y2020, y2021))
	assert.Equal(t, 0.1, compare(loose, y2020, y2021))
	assert.Equal(t, -1.0, compare(loose, y2020, y1999))
	assert.Equal(t, -1.0, compare(loose, y2020, unknown))
	assert.True(t, loose.Extract(blank, "a").Empty())
}

func TestPublicationYearsExtract(t *testing.T) {
	rec := record("",
		f008("2019", "fin"),
		data("264", " ", "1", "c", "[2019]"),
		data("264", " ", "4", "c", "©2018"),
		data("260", " ", " ", "c", "cop. 2017"),
		data("500", " ", " ", "a", "Lisäpainokset: 2. p. 2021. 3. p. 2022."),
		data("500", " ", " ", "a", "Alkuteos 1950."),
	)

	years := NewPublicationTimeAllowConsYearsMulti().Extract(rec, "a").(Years)
	assert.Equal(t, []string{"2019"}, years.Normal)
	assert.Equal(t, []string{"2017", "2018"}, years.Copyright)
	assert.Equal(t, []string{"2021", "2022"}, years.Reprint)
}

func TestPublicationYearsCompare(t *testing.T) {
	f := NewPublicationTimeAllowConsYearsMulti()

	tests := []struct {
		name     string
		a        Years
		b        Years
		expected float64
	}{
		{name: "same first year", a: Years{Normal: []string{"2019"}}, b: Years{Normal: []string{"2019"}}, expected: 0.1},
		{name: "consecutive", a: Years{Normal: []string{"2019"}}, b: Years{Normal: []string{"2020"}}, expected: 0.1},
		{name: "overlap beyond first", a: Years{Normal: []string{"2010", "2015"}}, b: Years{Normal: []string{"2000", "2015"}}, expected: 0},
		{name: "reprint year", a: Years{Normal: []string{"2010"}, Reprint: []string{"2015"}}, b: Years{Normal: []string{"2015"}}, expected: 0},
		{name: "different", a: Years{Normal: []string{"2010"}}, b: Years{Normal: []string{"2015"}}, expected: -1.0},
		{name: "copyright only", a: Years{Copyright: []string{"2010"}}, b: Years{Normal: []string{"2015"}}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Compare(tt.a, tt.b))
		})
	}
}
