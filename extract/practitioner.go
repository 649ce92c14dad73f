package extract

import (
	"strings"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

// PractitionerResult is the Practitioner built from one ROL segment plus
// its ROL-3 role code; the engine builds the PractitionerRole from that code
// once it has an Encounter to link it to.
type PractitionerResult struct {
	Practitioner *fhir.Practitioner
	RoleCode     string
}

// Practitioner builds a Practitioner (and the role code to link later) from
// a ROL segment per §4.E.4. ROL-4 is the XCN person block: 1st component
// id-value, 2nd family, 3rd given, 9th the assigning authority composite
// (namespace & oid), 13th the profession/identifier-type code.
func Practitioner(ctx *Context, rol hl7.Segment) *PractitionerResult {
	if rol == nil {
		return nil
	}
	f, ok := rol.Field(4)
	if !ok {
		return nil
	}
	person := normalize.FromField(f)

	idValue := normalize.ComponentString(person, 1)
	family := normalize.ComponentString(person, 2)
	given := normalize.ComponentString(person, 3)
	authority := normalize.Component(person, 9)
	namespace := normalize.ComponentString(authority, 1)
	oid := normalize.ComponentString(authority, 2)
	professionCode := normalize.ComponentString(person, 13)

	p := &fhir.Practitioner{ResourceType: "Practitioner"}

	isRPPS := len(idValue) == 11 || strings.Contains(strings.ToUpper(namespace), "RPPS") || oid == "1.2.250.1.71.4.2.1"
	if idValue != "" {
		var identSys terminology.SystemInfo
		var typeCode, typeDisplay string
		if isRPPS {
			identSys, _ = ctx.Catalogue.IdentifierSystem("RPPS")
			typeCode, typeDisplay = "RPPS", "Répertoire Partagé des Professionnels de Santé"
		} else {
			identSys, _ = ctx.Catalogue.IdentifierSystem("ADELI")
			typeCode, typeDisplay = "ADELI", "Répertoire ADELI"
		}
		system := identSys.URL
		if system == "" {
			system = terminology.OIDSystemURL(oid)
		}
		p.Identifier = append(p.Identifier, fhir.Identifier{
			System: system,
			Value:  idValue,
			Type:   fhir.NewCode("http://terminology.hl7.org/CodeSystem/v2-0203", typeCode, typeDisplay),
		})
		p.Identifier = append(p.Identifier, fhir.Identifier{Value: idValue, Use: "secondary"})

		qual := fhir.Qualification{
			Identifier: []fhir.Identifier{{System: system, Value: idValue}},
		}
		if professionCode != "" {
			qual.Code = professionCodeableConcept(ctx, professionCode)
		}
		p.Qualification = append(p.Qualification, qual)
	}

	if family != "" || given != "" {
		name := fhir.HumanName{Use: "official", Family: family}
		if given != "" {
			name.Given = []string{given}
		}
		p.Name = []fhir.HumanName{name}
	} else {
		p.Name = []fhir.HumanName{{Use: "official", Family: "Praticien"}}
	}

	if professionCode != "" {
		if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtPractitionerProf); ok {
			p.Extension = append(p.Extension, fhir.Extension{
				URL:                  url,
				ValueCodeableConcept: professionCodeableConcept(ctx, professionCode),
			})
		}
	}
	if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtNationality); ok {
		p.Extension = append(p.Extension, fhir.Extension{URL: url, ValueCode: "FRA"})
	}

	p.ID = "practitioner-" + sanitizeID(firstNonEmpty(idValue, family, "unknown"))

	roleCode := normalize.FieldString(rol, 3)

	return &PractitionerResult{Practitioner: p, RoleCode: roleCode}
}

func professionCodeableConcept(ctx *Context, code string) *fhir.CodeableConcept {
	display, _ := ctx.Catalogue.CodeDisplay(terminology.FRSysProfession, code)
	return fhir.NewCode(systemURLOrName(ctx, terminology.FRSysProfession), code, display)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
