package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestISBN(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValue string
		wantValid bool
	}{
		{name: "isbn13 with hyphens", raw: "978-951-0-12345-6", wantValue: "9789510123456", wantValid: true},
		{name: "isbn10 converted", raw: "951-0-11346-8", wantValue: "9789510113462", wantValid: true},
		{name: "qualifier dropped", raw: "978-951-0-12345-6 (nid.)", wantValue: "9789510123456", wantValid: true},
		{name: "isbn10 with x check", raw: "0-8044-2957-x", wantValue: "9780804429573", wantValid: true},
		{name: "isbn10 with bad check digit", raw: "951-0-11346-2", wantValue: "9510113462", wantValid: false},
		{name: "isbn13 accepted without checksum", raw: "978-951-0-12345-1", wantValue: "9789510123451", wantValid: true},
		{name: "garbage", raw: "12-34", wantValue: "1234", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, valid := ISBN(tt.raw)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantValid, valid)
		})
	}
}

func TestISSN(t *testing.T) {
	value, valid := ISSN("0355-0893")
	assert.True(t, valid)
	assert.Equal(t, "03550893", value)

	_, valid = ISSN("0355")
	assert.False(t, valid)
}

func TestLooksLikeISBN(t *testing.T) {
	assert.True(t, LooksLikeISBN("951-0-11346-2"))
	assert.True(t, LooksLikeISBN("9789510123456"))
	assert.False(t, LooksLikeISBN("abc"))
}

func TestQueryable(t *testing.T) {
	assert.True(t, Queryable("978-951-0-12345-6"))
	assert.False(t, Queryable("978 951"))
	assert.False(t, Queryable("(nid.)"))
}
