package extract

import (
	"strings"

	"github.com/pdiddy/crime-extract/internal/heuristic"
	"github.com/pdiddy/crime-extract/pkg/types"
)

// normalize clamps remote output to the shape the heuristic path produces:
// a vocabulary method label, at most MaxSuspects bounded descriptors, and
// trimmed vehicle attributes with a canonical make, a lower-case color and a
// canonical plate.
func normalize(f types.Fields) types.Fields {
	return types.Fields{
		MethodOfEntry: normalizeMethod(f.MethodOfEntry),
		Suspects:      normalizeSuspects(f.Suspects),
		Vehicle: types.Vehicle{
			Make:  heuristic.CanonicalMake(cleanValue(f.Vehicle.Make)),
			Model: cleanValue(f.Vehicle.Model),
			Color: strings.ToLower(cleanValue(f.Vehicle.Color)),
			Plate: heuristic.FormatPlate(cleanValue(f.Vehicle.Plate)),
		},
	}
}

// normalizeMethod maps a free-text method onto the vocabulary. Labels that
// are not in the vocabulary are reclassified with the entry catalog, and
// anything still unrecognized becomes "other".
func normalizeMethod(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return types.NoMatch
	}
	label := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(s))
	if heuristic.IsVocabulary(label) {
		return label
	}
	if heuristic.IsNullLike(s) {
		return types.NoMatch
	}
	if m := heuristic.EntryMethod(s); m != types.NoMatch {
		return m
	}
	return heuristic.MethodOther
}

func normalizeSuspects(in []string) []string {
	var out []string
	for _, s := range in {
		if len(out) == types.MaxSuspects {
			break
		}
		if d := heuristic.CleanDescriptor(s); d != types.NoMatch {
			out = append(out, d)
		}
	}
	return out
}

func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	if heuristic.IsNullLike(s) {
		return types.NoMatch
	}
	return s
}
