package extract

import (
	"strings"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

var telecomUseCodes = map[string]string{
	"PRN": "home",
	"WPN": "work",
	"ORN": "work",
	"NET": "home",
	"EMR": "mobile",
	"ASN": "temp",
	"VHN": "home",
	"BPN": "work",
}

var telecomEquipmentCodes = map[string]string{
	"PH":      "phone",
	"CP":      "phone",
	"FX":      "fax",
	"BP":      "pager",
	"Internet": "email",
	"NET":     "email",
	"X.400":   "email",
	"URI":     "url",
}

// Telecoms extracts ContactPoints from a PID-13 (home) or PID-14 (work)
// field per §4.E.1.6. isHomeField controls whether mobile detection flips
// `use` to "mobile" (PID-13) or instead adds the mobility extension
// (PID-14); the field is otherwise parsed identically either way.
func Telecoms(ctx *Context, seg hl7.Segment, fieldNum int, isHomeField bool) []fhir.ContactPoint {
	f, ok := seg.Field(fieldNum)
	if !ok {
		return nil
	}
	fv := normalize.FromField(f)
	reps := normalize.AsRepetitions(fv)

	var out []fhir.ContactPoint
	seen := map[string]bool{}

	add := func(cp fhir.ContactPoint) {
		key := cp.System + "|" + cp.Use + "|" + cp.Value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, cp)
	}

	for _, rep := range reps {
		useCode := normalize.ComponentString(rep, 2)
		equipCode := normalize.ComponentString(rep, 3)
		use := telecomUseCodes[useCode]
		if use == "" {
			use = "home"
		}

		raw := normalize.ComponentString(rep, 1)
		if raw == "" {
			raw = normalize.ComponentString(rep, 12)
		}

		if equipCode == "" {
			equipCode = "PH"
		}

		if system, ok := telecomEquipmentCodes[equipCode]; ok && system == "email" {
			email := firstEmail(rep, raw)
			if email != "" {
				add(fhir.ContactPoint{System: "email", Use: use, Value: email})
			}
			continue
		}
		if useCode == "NET" {
			if email := firstEmail(rep, raw); email != "" {
				add(fhir.ContactPoint{System: "email", Use: use, Value: email})
				continue
			}
		}

		if raw == "" {
			continue
		}

		phone, ok := normalize.NormalizePhone(raw)
		if !ok {
			ctx.Warn(InvalidPhone, "PID", "telecom normalized to length <= 1: "+raw)
			continue
		}

		system := telecomEquipmentCodes[equipCode]
		if system == "" {
			system = "phone"
		}

		cp := fhir.ContactPoint{System: system, Use: use, Value: phone.Value}
		if phone.IsMobile {
			if isHomeField {
				cp.Use = "mobile"
			} else if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtTelecomMobilite); ok {
				cp.Extension = []fhir.Extension{{URL: url, ValueBoolean: fhir.BoolPtr(true)}}
			}
		}
		add(cp)
	}

	// Any "@"-bearing substring anywhere in the field must be emitted as
	// email even outside a NET-tagged repetition (§4.E.1.6).
	for _, s := range normalize.DepthFirstStrings(fv) {
		if strings.Contains(s, "@") {
			add(fhir.ContactPoint{System: "email", Use: "home", Value: s})
		}
	}

	return out
}

func firstEmail(rep normalize.FieldValue, fallback string) string {
	for _, s := range normalize.DepthFirstStrings(rep) {
		if strings.Contains(s, "@") {
			return s
		}
	}
	if strings.Contains(fallback, "@") {
		return fallback
	}
	return ""
}
