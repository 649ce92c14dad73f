package extract

import (
	"strings"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
)

// nameRepetition is one parsed PID-5 repetition before merging.
type nameRepetition struct {
	use            string
	family         string
	given          []string
	prefix         []string
	suffix         []string
}

// nameUseFromCode maps the PID-5 7th-component use code to a HumanName.use.
func nameUseFromCode(code string) string {
	switch code {
	case "L":
		return "official"
	case "D":
		return "usual"
	case "M":
		return "maiden"
	case "N":
		return "nickname"
	case "S", "A":
		return "anonymous"
	case "I":
		return "old"
	default:
		return "official"
	}
}

// FrenchNames parses PID-5 per §4.F: split on repetition, split each
// repetition into up to 7 components, map the use code, fold additional
// given names into the given list, then merge repetitions that share a use
// but only completed half of a name (family-only completing a given-only,
// or vice versa). The single-letter family "L" is rejected as a known
// dialect artefact.
func FrenchNames(seg hl7.Segment) []fhir.HumanName {
	f, ok := seg.Field(5)
	if !ok {
		return nil
	}
	fv := normalize.FromField(f)
	reps := normalize.AsRepetitions(fv)

	var parsed []nameRepetition
	for _, rep := range reps {
		family := unescapeText(normalize.ComponentString(rep, 1))
		if family == "L" {
			family = ""
		}
		given := unescapeText(normalize.ComponentString(rep, 2))
		additional := unescapeText(normalize.ComponentString(rep, 3))
		suffix := unescapeText(normalize.ComponentString(rep, 4))
		prefix := unescapeText(normalize.ComponentString(rep, 5))
		useCode := normalize.ComponentString(rep, 7)

		var givens []string
		if given != "" {
			givens = append(givens, given)
		}
		for _, g := range strings.Fields(additional) {
			if !containsString(givens, g) {
				givens = append(givens, g)
			}
		}

		if family == "" && len(givens) == 0 && prefix == "" {
			continue
		}

		nr := nameRepetition{
			use:    nameUseFromCode(useCode),
			family: family,
			given:  givens,
		}
		if prefix != "" {
			nr.prefix = []string{prefix}
		}
		if suffix != "" {
			nr.suffix = []string{suffix}
		}
		parsed = merge(parsed, nr)
	}

	out := make([]fhir.HumanName, 0, len(parsed))
	for _, p := range parsed {
		out = append(out, fhir.HumanName{
			Use:    p.use,
			Family: p.family,
			Given:  p.given,
			Prefix: p.prefix,
			Suffix: p.suffix,
		})
	}
	return out
}

// merge implements the §4.F step 5 merge policy: a repetition carrying
// only a family completes an earlier same-use repetition that had given
// names but no family, and vice versa. It never appends a duplicate given
// list onto an already-complete name.
func merge(acc []nameRepetition, next nameRepetition) []nameRepetition {
	for i := range acc {
		if acc[i].use != next.use {
			continue
		}
		if acc[i].family == "" && len(acc[i].given) > 0 && next.family != "" && len(next.given) == 0 {
			acc[i].family = next.family
			return acc
		}
		if acc[i].family != "" && len(acc[i].given) == 0 && next.family == "" && len(next.given) > 0 {
			acc[i].given = next.given
			return acc
		}
	}
	return append(acc, next)
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
