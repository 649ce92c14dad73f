package extract

import (
	"strings"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

var relationshipCodes = map[string]bool{
	"SPO": true, "DOM": true, "CHD": true, "PAR": true,
	"SIB": true, "GRD": true, "SIGOTHR": true, "EMC": true,
}

// RelatedPerson builds a RelatedPerson from NK1 per §4.E.5.
func RelatedPerson(ctx *Context, nk1 hl7.Segment, patientFullURL string) *fhir.RelatedPerson {
	if nk1 == nil {
		return nil
	}
	f, ok := nk1.Field(2)
	if !ok {
		return nil
	}
	nameField := normalize.FromField(f)
	family := normalize.ComponentString(nameField, 1)
	given := normalize.ComponentString(nameField, 2)

	rp := &fhir.RelatedPerson{ResourceType: "RelatedPerson"}
	if patientFullURL != "" {
		rp.Patient = &fhir.Reference{Reference: patientFullURL}
	}
	if family != "" || given != "" {
		name := fhir.HumanName{Family: family}
		if given != "" {
			name.Given = strings.Fields(given)
		}
		rp.Name = []fhir.HumanName{name}
	}

	for _, candidate := range strings.Split(normalize.FieldString(nk1, 3), "^") {
		if relationshipCodes[candidate] {
			display, _ := ctx.Catalogue.CodeDisplay(terminology.FRSysRelationship, candidate)
			rp.Relationship = []fhir.CodeableConcept{*fhir.NewCode(
				"http://terminology.hl7.org/CodeSystem/v3-RoleCode", candidate, display,
			)}
			break
		}
	}

	rp.ID = "relatedperson-" + sanitizeID(firstNonEmpty(family, "contact"))
	return rp
}
