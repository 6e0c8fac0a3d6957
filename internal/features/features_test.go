package features

import (
	"testing"

	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRecord() *marc.Record {
	return record("00000cam a2200000 i 4500",
		control("001", "000000001"),
		control("003", "FI-MELINDA"),
		f008("2020", "fin"),
		data("020", " ", " ", "a", "978-951-0-12345-6"),
		data("022", " ", " ", "a", "0355-0893"),
		data("024", "3", " ", "a", "6417825002343"),
		data("035", " ", " ", "a", "(FI-MELINDA)000000002"),
		data("041", "0", " ", "a", "fin"),
		data("100", "1", " ", "a", "Lönnrot, Elias", "0", "(isni)1"),
		data("245", "1", "0", "a", "Kalevala :", "b", "runoja"),
		data("264", " ", "1", "b", "WSOY", "c", "2020"),
		data("337", " ", " ", "a", "käytettävissä ilman laitetta", "b", "n", "2", "rdamedia"),
		data("SID", " ", " ", "c", "123", "b", "helka"),
		data("SID", " ", " ", "c", "VER1", "b", "FI-KV"),
	)
}

func TestRegistry(t *testing.T) {
	_, err := New("noSuchFeature")
	assert.ErrorIs(t, err, ErrUnknownFeature)

	strategy, err := NewStrategy([]string{Title, ISBN, Language})
	require.NoError(t, err)
	require.Len(t, strategy, 3)
	assert.Equal(t, Title, strategy[0].Name())
	assert.Equal(t, ISBN, strategy[1].Name())
	assert.Equal(t, Language, strategy[2].Name())

	_, err = NewStrategy([]string{Title, "bogus"})
	assert.ErrorIs(t, err, ErrUnknownFeature)

	for _, name := range Names() {
		f, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}
}

func TestEmptyValuesGiveNoEvidence(t *testing.T) {
	empty := record("")
	full := fullRecord()

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			f, err := New(name)
			require.NoError(t, err)

			fullValue := f.Extract(full, "full")
			emptyValue := f.Extract(empty, "empty")

			assert.Equal(t, 0.0, f.Compare(nil, fullValue))
			assert.Equal(t, 0.0, f.Compare(fullValue, nil))
			if emptyValue.Empty() {
				assert.Equal(t, 0.0, f.Compare(emptyValue, fullValue))
				assert.Equal(t, 0.0, f.Compare(fullValue, emptyValue))
			}
		})
	}
}

func TestScoresStayInRange(t *testing.T) {
	full := fullRecord()
	other := record("00000nas a2200000 i 4500",
		f008("1999", "eng"),
		data("020", " ", " ", "a", "951-0-11346-8"),
		data("041", "1", " ", "a", "eng", "2", "iso639-3"),
		data("245", "0", "0", "a", "Something else entirely"),
		data("773", "0", " ", "w", "(FI-MELINDA)000000009"),
		data("SID", " ", " ", "c", "999", "b", "helka"),
	)

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			f, err := New(name)
			require.NoError(t, err)
			for _, pair := range [][2]*marc.Record{{full, full}, {full, other}, {other, full}} {
				score := compare(f, pair[0], pair[1])
				assert.GreaterOrEqual(t, score, -1.0)
				assert.LessOrEqual(t, score, 1.0)
			}
		})
	}
}
