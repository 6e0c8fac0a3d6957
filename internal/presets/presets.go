// Package presets names the search spec and strategy combinations used in
// day-to-day matching.
package presets

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/features"
	"github.com/lehigh-university-libraries/recordmatcher/internal/matcher"
	"github.com/lehigh-university-libraries/recordmatcher/internal/querylist"
)

// ErrUnknownPreset is returned for a preset name that is not defined.
var ErrUnknownPreset = errors.New("unknown search type preset")

const (
	IDs         = "IDS"
	StandardIDs = "STANDARD_IDS"
	Component   = "COMPONENT"
	Content     = "CONTENT"
	ContentAlt  = "CONTENTALT"
)

// Preset is a search spec and the strategy that fits the candidates it finds.
type Preset struct {
	Name       string
	SearchSpec []querylist.SearchType
	Strategy   []string
}

var contentStrategy = []string{
	features.HostComponent,
	features.ISBN,
	features.ISSN,
	features.OtherStandardIdentifier,
	features.Title,
	features.Authors,
	features.RecordType,
	features.PublicationTime,
	features.Language,
	features.BibliographicLevel,
}

var presets = map[string]Preset{
	IDs: {
		SearchSpec: []querylist.SearchType{querylist.BibMelindaIDs, querylist.BibSourceIDs},
		Strategy:   []string{features.MelindaID, features.AllSourceIDs},
	},
	// candidates share an identifier already, so the title is not compared
	StandardIDs: {
		SearchSpec: []querylist.SearchType{querylist.BibStandardIdentifiers},
		Strategy: []string{
			features.HostComponent,
			features.ISBN,
			features.ISSN,
			features.OtherStandardIdentifier,
			features.Authors,
			features.RecordType,
			features.PublicationTimeAllowConsYearsMulti,
			features.Language,
			features.BibliographicLevel,
		},
	},
	Component: {
		SearchSpec: []querylist.SearchType{querylist.ComponentHostIDMelinda, querylist.ComponentHostIDOtherSource},
		Strategy: []string{
			features.HostComponent,
			features.OtherStandardIdentifier,
			features.RecordType,
			features.Title,
			features.Language,
			features.Authors,
			features.BibliographicLevel,
		},
	},
	Content: {
		SearchSpec: []querylist.SearchType{querylist.BibHostComponents, querylist.BibTitle},
		Strategy:   contentStrategy,
	},
	ContentAlt: {
		SearchSpec: []querylist.SearchType{querylist.BibHostComponents, querylist.BibTitleAuthorYearAlternates},
		Strategy:   contentStrategy,
	},
}

// Get returns the named preset. Names are case-insensitive.
func Get(name string) (Preset, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	p, ok := presets[key]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s (expected one of %s)", ErrUnknownPreset, name, strings.Join(Names(), ", "))
	}
	p.Name = key
	p.SearchSpec = slices.Clone(p.SearchSpec)
	p.Strategy = slices.Clone(p.Strategy)
	return p, nil
}

// Names lists the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Apply sets the preset's search spec and strategy on opts.
func (p Preset) Apply(opts matcher.Options) matcher.Options {
	opts.SearchSpec = slices.Clone(p.SearchSpec)
	opts.Strategy = slices.Clone(p.Strategy)
	return opts
}
