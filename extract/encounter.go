package extract

import (
	"regexp"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

var encounterClassCodes = map[string]string{
	"I": "IMP",
	"O": "AMB",
	"P": "AMB",
	"B": "AMB",
	"E": "EMER",
	"R": "ACUTE",
	"N": "NONAC",
}

var modePriseEnChargeCodes = map[string]string{
	"I": "HOSPITALT",
	"O": "CONSULT",
	"P": "CONSULT",
	"B": "CONSULT",
	"E": "URMG",
	"R": "HOSPITALT",
	"N": "HOSPITALT",
}

var eightDigitToken = regexp.MustCompile(`^\d{8}`)
var eightDigitAnywhere = regexp.MustCompile(`\d{8}`)

// EncounterResult is the {main, side_entries} pair §9's design note
// requires: the Encounter extractor never reaches into a shared entry
// list, it only returns what it built.
type EncounterResult struct {
	Encounter *fhir.Encounter
	Location  *fhir.Location
}

// Encounter builds the Encounter (and an optional Location side-resource)
// for PV1[+PV2] per §4.E.2.
func Encounter(ctx *Context, pv1 hl7.Segment, pv2 hl7.Segment, patientFullURL string) *EncounterResult {
	if pv1 == nil {
		return nil
	}
	e := &fhir.Encounter{ResourceType: "Encounter"}

	classCode := normalize.FieldString(pv1, 2)
	code, ok := encounterClassCodes[classCode]
	if !ok {
		code = "AMB"
		ctx.Warn(UnexpectedShape, "PV1-2", "unrecognized patient class: "+classCode)
	}
	e.Class = fhir.Coding{
		System: "http://terminology.hl7.org/CodeSystem/v3-ActCode",
		Code:   code,
	}

	if mode, ok := modePriseEnChargeCodes[classCode]; ok {
		if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtModePriseEnCharge); ok {
			display, _ := ctx.Catalogue.CodeDisplay(terminology.FRSysModePriseEnCharge, mode)
			e.Extension = append(e.Extension, fhir.Extension{
				URL: url,
				ValueCodeableConcept: fhir.NewCode(systemURLOrName(ctx, terminology.FRSysModePriseEnCharge), mode, display),
			})
		}
	}

	disposition := normalize.FieldString(pv1, 36)
	if isFinishedDisposition(disposition) {
		e.Status = "finished"
	} else {
		e.Status = "in-progress"
	}

	admit := normalize.FieldString(pv1, 44)
	var periodStart string
	if admit != "" {
		if dt, ok := normalize.ParseHL7DateTime(admit); ok {
			periodStart = dt
		} else {
			ctx.Warn(InvalidDate, "PV1-44", "unparseable admit datetime: "+admit)
		}
	}
	if periodStart != "" {
		e.Period = &fhir.Period{Start: periodStart}
	}

	if expected, ok := expectedExitDate(pv2, admit); ok {
		if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtEncounterExpExit); ok {
			e.Extension = append(e.Extension, fhir.Extension{URL: url, ValueDateTime: expected})
		}
		e.Hospitalization = &fhir.Hospitalization{ExpectedDischargeDate: expected}
	}

	if visitNum := normalize.FieldString(pv1, 19); visitNum != "" {
		e.Identifier = []fhir.Identifier{{
			System: terminology.OIDSystemURL("1.2.250.1.71.4.2.7"),
			Value:  visitNum,
			Type:   fhir.NewCode("http://terminology.hl7.org/CodeSystem/v2-0203", "VN", "Visit number"),
		}}
	}

	if patientFullURL != "" {
		e.Subject = &fhir.Reference{Reference: patientFullURL}
	}

	result := &EncounterResult{Encounter: e}

	if name, ok := facilityName(pv1); ok {
		loc := &fhir.Location{ResourceType: "Location", ID: "location-" + sanitizeID(name), Name: name}
		result.Location = loc
	}

	return result
}

func isFinishedDisposition(code string) bool {
	if len(code) != 2 {
		return false
	}
	if code[0] != '0' {
		return false
	}
	return code[1] >= '1' && code[1] <= '9'
}

// expectedExitDate implements §4.E.2's expected-exit recovery chain:
// PV2-9, then PV2-30, then PV2-40; then the first 8-digit token anywhere
// in PV2; then PV1-44 as a last resort.
func expectedExitDate(pv2 hl7.Segment, admitFallback string) (string, bool) {
	if pv2 != nil {
		for _, fieldNum := range []int{9, 30, 40} {
			v := normalize.FieldString(pv2, fieldNum)
			if tok := eightDigitToken.FindString(v); tok != "" {
				if dt, ok := normalize.ParseHL7DateTime(tok); ok {
					return dt, true
				}
			}
		}
		for _, f := range pv2.AllFields() {
			if tok := eightDigitAnywhere.FindString(f.Value()); tok != "" {
				if dt, ok := normalize.ParseHL7DateTime(tok); ok {
					return dt, true
				}
			}
		}
	}
	if admitFallback != "" {
		if dt, ok := normalize.ParseHL7DateTime(admitFallback); ok {
			return dt, true
		}
	}
	return "", false
}

// facilityName recognizes the dialect PV1-3 shape "^^^NAME&ID&M" (4th
// component carries the functional-unit name as its 1st subcomponent).
func facilityName(pv1 hl7.Segment) (string, bool) {
	f, ok := pv1.Field(3)
	if !ok {
		return "", false
	}
	fv := normalize.FromField(f)
	name := normalize.ComponentString(normalize.Component(fv, 4), 1)
	if name == "" {
		return "", false
	}
	return name, true
}

func systemURLOrName(ctx *Context, name string) string {
	if info, ok := ctx.Catalogue.SystemByName(name); ok {
		return info.URL
	}
	return name
}

var sanitizeIDRe = regexp.MustCompile(`[^A-Za-z0-9.-]+`)

func sanitizeID(s string) string {
	return sanitizeIDRe.ReplaceAllString(s, "-")
}
