package extract

import (
	"strings"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
)

var genderCodes = map[string]string{
	"M": "male",
	"F": "female",
	"O": "other",
	"A": "other",
	"U": "unknown",
}

type maritalStatusInfo struct {
	display string
}

var maritalStatusCodes = map[string]maritalStatusInfo{
	"A": {"Annulé"},
	"D": {"Divorcé"},
	"M": {"Marié"},
	"S": {"Célibataire"},
	"W": {"Veuf/Veuve"},
	"P": {"Séparé"},
	"I": {"Interlocutoire"},
	"B": {"Partenaire enregistré"},
	"C": {"Union libre"},
	"G": {"Cohabitant"},
	"O": {"Autre"},
	"U": {"Inconnu"},
}

// Patient builds the partial Patient resource for PID[+PD1] per §4.E.1.
// stamp is the engine's per-conversion fallback id, used only when PID-3
// carries no IPP-classified identifier.
func Patient(ctx *Context, pid hl7.Segment, pd1 hl7.Segment) *fhir.Patient {
	p := &fhir.Patient{ResourceType: "Patient"}

	p.Identifier = PatientIdentifiers(ctx, pid, ctx.Stamp)

	p.Name = dedupNames(FrenchNames(pid))

	if sex := normalize.FieldString(pid, 8); sex != "" {
		if g, ok := genderCodes[sex]; ok {
			p.Gender = g
		} else {
			p.Gender = "unknown"
		}
	}

	if dob := normalize.FieldString(pid, 7); dob != "" {
		if d, ok := normalize.ParseHL7Date(dob); ok {
			p.BirthDate = d
		} else {
			ctx.Warn(InvalidDate, "PID-7", "unparseable birth date: "+dob)
		}
	}

	if ms := normalize.FieldString(pid, 16); len(ms) >= 1 {
		code := ms[:1]
		if info, ok := maritalStatusCodes[code]; ok {
			p.MaritalStatus = fhir.NewCode(
				"http://terminology.hl7.org/CodeSystem/v3-MaritalStatus", code, info.display,
			)
		}
	}

	p.Telecom = append(p.Telecom, Telecoms(ctx, pid, 13, true)...)
	p.Telecom = append(p.Telecom, Telecoms(ctx, pid, 14, false)...)

	p.Address = Addresses(ctx, pid)

	hasINS := hasINSIdentifier(p.Identifier)
	if pd1 != nil && hasINS {
		p.Extension = appendExtensionOnce(p.Extension, insiStatusExtension(ctx)...)
	}

	id, ok := FirstIPP(pid)
	if !ok {
		id = "temp-" + ctx.Stamp
	}
	p.ID = "patient-" + id

	return p
}

func hasINSIdentifier(ids []fhir.Identifier) bool {
	for _, id := range ids {
		if id.Type != nil {
			for _, c := range id.Type.Coding {
				if c.Code == "NI" {
					return true
				}
			}
		}
	}
	return false
}

func appendExtensionOnce(existing []fhir.Extension, add ...fhir.Extension) []fhir.Extension {
	for _, a := range add {
		dup := false
		for _, e := range existing {
			if e.URL == a.URL {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, a)
		}
	}
	return existing
}

// dedupNames applies I-DEDUP-1: unique by (use, family, given-multiset).
func dedupNames(names []fhir.HumanName) []fhir.HumanName {
	seen := map[string]bool{}
	out := make([]fhir.HumanName, 0, len(names))
	for _, n := range names {
		key := n.Use + "|" + n.Family + "|" + strings.Join(n.Given, ",")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}
