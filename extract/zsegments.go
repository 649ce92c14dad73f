package extract

import (
	"strings"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

// ZBEPlan is the ZBE extractor's mutation plan: the composer merges it into
// the already-emitted Encounter without re-ordering the entry list (§9).
type ZBEPlan struct {
	MovementID          string
	EffectiveDateTime    string
	MovementType         string
	FunctionalUnit       string
	IsAdmissionOrInsert  bool
}

var admissionMovementTypes = map[string]bool{"INSERT": true, "ADMISSION": true}

// ZBE parses the ZBE segment per §4.E.7. Repeating/array-shaped field
// values are flattened to their first non-empty string, matching the
// source's ZBE-specific tolerance.
func ZBE(seg hl7.Segment) *ZBEPlan {
	if seg == nil {
		return nil
	}
	plan := &ZBEPlan{
		MovementID: firstNonEmptyField(seg, 1),
	}
	if dt := firstNonEmptyField(seg, 2); dt != "" {
		if parsed, ok := normalize.ParseHL7DateTime(dt); ok {
			plan.EffectiveDateTime = parsed
		}
	}
	plan.MovementType = strings.ToUpper(firstNonEmptyField(seg, 4))
	plan.IsAdmissionOrInsert = admissionMovementTypes[plan.MovementType]

	plan.FunctionalUnit = normalize.FieldComponent(seg, 7, 9)

	return plan
}

// firstNonEmptyField flattens a field's repetitions to the first non-empty
// string, per ZBE's array tolerance.
func firstNonEmptyField(seg hl7.Segment, fieldNum int) string {
	f, ok := seg.Field(fieldNum)
	if !ok {
		return ""
	}
	for _, rep := range normalize.AsRepetitions(normalize.FromField(f)) {
		if s := normalize.AsString(rep); s != "" {
			return s
		}
	}
	return ""
}

// ApplyZBE merges a ZBE plan into an already-built Encounter, per §4.E.7
// and §4.G: adds the health-event type/identifier extensions and enriches
// hospitalization. It returns the functional-unit Organization side-entry
// (nil if ZBE-7 component 9 was empty); the composer adds it to the Bundle
// and points Encounter.serviceProvider at it, since the extractor never
// reaches into the entry list itself (§9 design note).
func ApplyZBE(ctx *Context, e *fhir.Encounter, plan *ZBEPlan) *fhir.Organization {
	if e == nil || plan == nil {
		return nil
	}
	if plan.MovementType != "" {
		if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtHealthEventType); ok {
			e.Extension = append(e.Extension, fhir.Extension{URL: url, ValueCode: plan.MovementType})
		}
	}
	if plan.MovementID != "" {
		if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtHealthEventID); ok {
			e.Extension = append(e.Extension, fhir.Extension{URL: url, ValueString: plan.MovementID})
		}
	}
	if plan.IsAdmissionOrInsert {
		if e.Hospitalization == nil {
			e.Hospitalization = &fhir.Hospitalization{}
		}
		if plan.MovementID != "" {
			e.Hospitalization.PreAdmissionIdentifier = &fhir.Identifier{Value: plan.MovementID}
		}
	}
	if plan.FunctionalUnit == "" {
		return nil
	}
	return &fhir.Organization{
		ResourceType: "Organization",
		ID:           "organization-" + sanitizeID(plan.FunctionalUnit),
		Name:         plan.FunctionalUnit,
	}
}

// ZFVPlan is ZFV's override plan: class + priority.
type ZFVPlan struct {
	ClassCode    string
	ModeCode     string
	PriorityCode string
}

var zfvClassOverrides = map[string]struct {
	class string
	mode  string
}{
	"H": {"IMP", "HOSPITALT"},
	"U": {"EMER", "URMG"},
	"C": {"AMB", "CONSULT"},
	"E": {"AMB", "CONSULT"},
}

// ZFV parses the ZFV segment per §4.E.7.
func ZFV(seg hl7.Segment) *ZFVPlan {
	if seg == nil {
		return nil
	}
	code := normalize.FieldString(seg, 1)
	over, ok := zfvClassOverrides[code]
	if !ok {
		return nil
	}
	return &ZFVPlan{
		ClassCode:    over.class,
		ModeCode:     over.mode,
		PriorityCode: normalize.FieldString(seg, 2),
	}
}

// ApplyZFV overrides Encounter.class/priority per the ZFV plan.
func ApplyZFV(ctx *Context, e *fhir.Encounter, plan *ZFVPlan) {
	if e == nil || plan == nil {
		return
	}
	e.Class = fhir.Coding{
		System: "http://terminology.hl7.org/CodeSystem/v3-ActCode",
		Code:   plan.ClassCode,
	}
	if plan.PriorityCode != "" {
		display, _ := ctx.Catalogue.CodeDisplay(terminology.FRSysModePriseEnCharge, plan.PriorityCode)
		e.Priority = fhir.NewCode(systemURLOrName(ctx, terminology.FRSysModePriseEnCharge), plan.PriorityCode, display)
	}
}

// ZFMPlan captures ZFM's three fields. Per §4.E.7 these are kept for
// completeness but, like the source, are not materialized onto any
// resource unless a future profile calls for them.
type ZFMPlan struct {
	HospitalizationType string
	AdmissionMode       string
	DischargeMode       string
}

// ZFM parses the ZFM segment.
func ZFM(seg hl7.Segment) *ZFMPlan {
	if seg == nil {
		return nil
	}
	return &ZFMPlan{
		HospitalizationType: normalize.FieldString(seg, 1),
		AdmissionMode:       normalize.FieldString(seg, 2),
		DischargeMode:       normalize.FieldString(seg, 3),
	}
}

// ZFPPlan reserves ZFP for future Patient enrichment; currently captured
// as raw field values only.
type ZFPPlan struct {
	Fields []string
}

// ZFP parses the ZFP segment, capturing every field verbatim.
func ZFP(seg hl7.Segment) *ZFPPlan {
	if seg == nil {
		return nil
	}
	fields := seg.AllFields()
	values := make([]string, len(fields))
	for i, f := range fields {
		values[i] = f.Value()
	}
	return &ZFPPlan{Fields: values}
}
