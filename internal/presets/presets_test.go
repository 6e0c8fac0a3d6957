package presets

import (
	"testing"

	"github.com/lehigh-university-libraries/recordmatcher/internal/detection"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
	"github.com/lehigh-university-libraries/recordmatcher/internal/querylist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryPresetBuilds(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			p, err := Get(name)
			require.NoError(t, err)

			_, err = querylist.ParseSearchTypes(searchTypeNames(p.SearchSpec))
			require.NoError(t, err)

			_, err = detection.NewFromNames(p.Strategy)
			require.NoError(t, err)

			opts := p.Apply(matcher.DefaultOptions())
			assert.NoError(t, opts.Validate())
		})
	}
}

func TestGet(t *testing.T) {
	p, err := Get(" content ")
	require.NoError(t, err)
	assert.Equal(t, Content, p.Name)
	assert.Equal(t, []querylist.SearchType{querylist.BibHostComponents, querylist.BibTitle}, p.SearchSpec)

	p.Strategy[0] = "changed"
	again, err := Get(Content)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again.Strategy[0])

	_, err = Get("FUZZY")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"COMPONENT", "CONTENT", "CONTENTALT", "IDS", "STANDARD_IDS"}, Names())
}

func searchTypeNames(types []querylist.SearchType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
