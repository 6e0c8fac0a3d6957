package querylist

import (
	"context"
	"regexp"
	"strings"

	"github.com/lehigh-university-libraries/recordmatcher/internal/features"
	"github.com/lehigh-university-libraries/recordmatcher/internal/identifier"
	"github.com/lehigh-university-libraries/recordmatcher/internal/marc"
)

const (
	identifierIndex  = "dc.identifier"
	melindaIDIndex   = "melinda.melindaid"
	sourceIDIndex    = "melinda.sourceid"
	partsOfHostIndex = "melinda.partsofhost"
)

var (
	standardIdentifierTags = regexp.MustCompile(`^(020|022|024)$`)
	hostPrefixPattern      = regexp.MustCompile(`^\((FI-MELINDA|FIN01)\)`)
	melindaHostPattern     = regexp.MustCompile(`(?i)\(FI-MELINDA\)`)
	melindaHostIDPattern   = regexp.MustCompile(`^\(FI-MELINDA\)([0-9]{9})$`)
	foreignPrefixPattern   = regexp.MustCompile(`(?i)\(FI-.*\)`)
	sourcePrefixPattern    = regexp.MustCompile(`^\([^)]*\)`)
)

// StandardIdentifiers pairs ISBN, ISSN and other standard identifiers from
// 020 $a $z, 022 $a $z $y and 024 $a $z.
func StandardIdentifiers(rec *marc.Record) []string {
	var ids []string
	for _, f := range rec.Get(standardIdentifierTags) {
		switch f.Tag {
		case "020":
			ids = append(ids, queryable(f.SubfieldValues("a", "z"))...)
		case "022":
			ids = append(ids, queryable(f.SubfieldValues("a", "z", "y"))...)
		default:
			ids = append(ids, f.SubfieldValues("a", "z")...)
		}
	}
	return ToQueries(ids, identifierIndex)
}

func queryable(values []string) []string {
	var out []string
	for _, v := range values {
		if identifier.Queryable(v) {
			out = append(out, v)
		}
	}
	return out
}

// HostComponents finds the components of the host named in the first 773 $w.
func HostComponents(rec *marc.Record) []string {
	fields := rec.GetFields("773")
	if len(fields) == 0 {
		return nil
	}
	w, ok := fields[0].FirstSubfield("w")
	if !ok || !hostPrefixPattern.MatchString(w) {
		return nil
	}
	return []string{partsOfHostIndex + "=" + hostPrefixPattern.ReplaceAllString(w, "")}
}

// MelindaIDs searches for the record's own union catalog id and the ids of
// records merged into it.
func MelindaIDs(rec *marc.Record) []string {
	var ids []string
	if strings.TrimSpace(rec.ControlValue("003")) == features.MelindaPrefix {
		ids = append(ids, rec.ID())
	}
	ids = append(ids, features.MelindaIDs(rec)...)
	return ToQueries(unique(ids), melindaIDIndex)
}

// SourceIDs searches for local system ids. Each id loses its parenthesized
// prefix, hyphens and spaces and is suffixed with its database code.
func SourceIDs(rec *marc.Record) []string {
	var ids []string
	for _, sid := range features.SourceIDs(rec) {
		id := sourcePrefixPattern.ReplaceAllString(strings.TrimSpace(sid.ID), "")
		id = strings.NewReplacer("-", "", " ", "").Replace(id)
		if id == "" {
			continue
		}
		ids = append(ids, id+strings.TrimSpace(sid.DB))
	}
	return ToQueries(unique(ids), sourceIDIndex)
}

// HostIDMelinda searches for the other components of every host linked with
// a union catalog id.
func HostIDMelinda(rec *marc.Record) []string {
	var ids []string
	for _, f := range rec.GetFields("773") {
		for _, w := range f.SubfieldValues("w") {
			if m := melindaHostIDPattern.FindStringSubmatch(strings.TrimSpace(w)); m != nil {
				ids = append(ids, m[1])
			}
		}
	}
	return ToQueries(unique(ids), partsOfHostIndex)
}

// hostIDOtherSource resolves hosts linked with a local system id. Every
// (id, source database) combination is looked up one at a time and the union
// catalog ids found become parts-of-host queries.
func (g *Generator) hostIDOtherSource(ctx context.Context, rec *marc.Record) ([]string, error) {
	var hostIDs []string
	for _, f := range rec.GetFields("773") {
		for _, w := range f.SubfieldValues("w") {
			if melindaHostPattern.MatchString(w) {
				continue
			}
			hostIDs = append(hostIDs, foreignPrefixPattern.ReplaceAllString(strings.TrimSpace(w), ""))
		}
	}
	hostIDs = unique(hostIDs)

	var sources []string
	for _, f := range rec.GetFields("SID") {
		sources = append(sources, f.SubfieldValues("b")...)
	}
	sources = unique(sources)

	if len(hostIDs) == 0 || len(sources) == 0 {
		g.logger.Debug("No hosts with other source ids found")
		return nil, nil
	}
	if g.resolver == nil {
		return nil, ErrResolverRequired
	}

	var resolved []string
	for _, id := range hostIDs {
		for _, source := range sources {
			query := ToQueries([]string{id + source}, sourceIDIndex)[0]
			found, err := g.resolver.ResolveID(ctx, query)
			if err != nil {
				return nil, err
			}
			g.logger.Debug("Resolved host", "query", query, "id", found)
			resolved = append(resolved, found)
		}
	}
	return ToQueries(unique(resolved), partsOfHostIndex), nil
}
