package extract

import (
	"regexp"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/internal/escape"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

var communeSuffixRe = regexp.MustCompile(`^(.+?)\s*\((\d{5})\)\s*$`)

// textEscaper is held as hl7.Escaper rather than *escape.Escaper so this
// package depends on the escaping contract, not the concrete decoder.
var textEscaper hl7.Escaper = escape.New(nil)

// unescapeText decodes HL7 escape sequences (\T\, \S\, \F\, ...) that can
// appear in free-text fields such as street names and commune labels.
func unescapeText(s string) string {
	if s == "" {
		return s
	}
	return textEscaper.Unescape(s)
}

type addressTypeMapping struct {
	use  string
	kind string
}

var addressTypeCodes = map[string]addressTypeMapping{
	"H":  {"home", "physical"},
	"B":  {"work", "both"},
	"C":  {"temp", "postal"},
	"BA": {"old", "postal"},
	"M":  {"both", "postal"},
	"P":  {"both", "physical"},
}

// Addresses extracts FHIR Addresses from PID-11 per §4.E.1.7: components
// {line1, line2, city, state, postalCode, country, type}. A city matching
// "NAME (12345)" is split into plain city + a commune INSEE-code
// extension.
func Addresses(ctx *Context, seg hl7.Segment) []fhir.Address {
	f, ok := seg.Field(11)
	if !ok {
		return nil
	}
	fv := normalize.FromField(f)
	reps := normalize.AsRepetitions(fv)

	out := make([]fhir.Address, 0, len(reps))
	for _, rep := range reps {
		line1 := unescapeText(normalize.ComponentString(rep, 1))
		line2 := unescapeText(normalize.ComponentString(rep, 2))
		city := unescapeText(normalize.ComponentString(rep, 3))
		state := normalize.ComponentString(rep, 4)
		postalCode := normalize.ComponentString(rep, 5)
		country := normalize.ComponentString(rep, 6)
		typeCode := normalize.ComponentString(rep, 7)

		if line1 == "" && city == "" && postalCode == "" {
			continue
		}

		addr := fhir.Address{
			City:       city,
			State:      state,
			PostalCode: postalCode,
			Country:    country,
		}
		if line1 != "" {
			addr.Line = append(addr.Line, line1)
		}
		if line2 != "" {
			addr.Line = append(addr.Line, line2)
		}
		if m, ok := addressTypeCodes[typeCode]; ok {
			addr.Use = m.use
			addr.Type = m.kind
		}
		if match := communeSuffixRe.FindStringSubmatch(addr.City); match != nil {
			addr.City = match[1]
			if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtCommuneCOGInsee); ok {
				addr.Extension = append(addr.Extension, fhir.Extension{URL: url, ValueString: match[2]})
			}
		}
		out = append(out, addr)
	}
	return out
}
