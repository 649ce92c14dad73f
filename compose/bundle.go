// Package compose assembles the partial resources the extractors produce
// into a single FHIR transaction Bundle (§4.G): it assigns fullUrls,
// wires cross-references, merges Z-segment side effects into the already
// -emitted Encounter without reordering entries, and returns the frozen
// Bundle.
package compose

import (
	"time"

	"github.com/google/uuid"

	"github.com/svoer/hl7fhir/extract"
	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
)

// Clock supplies the current instant to the composer so Bundle.timestamp
// and Bundle.id are the only non-deterministic fields in an otherwise
// reproducible conversion (§9's injectable-clock design note; §10.4 fixes
// the signature to time.Time so production and test wiring share one
// formatting path).
type Clock interface {
	Now() time.Time
}

// Builder assembles one Bundle from a parsed message's segments. It owns
// nothing beyond the conversion in progress: create a fresh Builder per
// message.
type Builder struct {
	ctx   *extract.Context
	clock Clock
	b     *fhir.Bundle
}

// NewBuilder starts a Bundle with a fresh id/timestamp from clock.
func NewBuilder(ctx *extract.Context, clock Clock) *Builder {
	ts := clock.Now().UTC().Format("2006-01-02T15:04:05.000Z")
	return &Builder{
		ctx:   ctx,
		clock: clock,
		b:     fhir.NewTransactionBundle("bundle-"+uuid.NewString(), ts),
	}
}

// add assigns a fresh urn:uuid fullUrl to resource and appends it, returning
// the fullUrl so callers can build references to it immediately.
func (bld *Builder) add(resourceType string, resource interface{}) string {
	fullURL := "urn:uuid:" + uuid.NewString()
	bld.b.AddEntry(fullURL, resourceType, resource)
	return fullURL
}

// Compose builds the Bundle from msg's segments in I-ORDER-1 order: Patient,
// then MSH organizations, then Location (preceding its Encounter), then
// Encounter (merged with any Z-segments), then Practitioner/
// PractitionerRole, RelatedPerson, payor Organization preceding Coverage.
func (bld *Builder) Compose(msg hl7.Message) *fhir.Bundle {
	var patientFullURL string

	if pid, ok := msg.Segment("PID"); ok {
		var pd1 hl7.Segment
		if seg, ok := msg.Segment("PD1"); ok {
			pd1 = seg
		}
		patient := extract.Patient(bld.ctx, pid, pd1)
		patientFullURL = bld.add("Patient", patient)
	}

	if msh, ok := msg.Segment("MSH"); ok {
		sending, receiving := extract.Organizations(msh)
		if sending != nil {
			bld.add("Organization", sending)
		}
		if receiving != nil {
			bld.add("Organization", receiving)
		}
	}

	var encounterFullURL string
	var encounter *fhir.Encounter
	if pv1, ok := msg.Segment("PV1"); ok {
		var pv2 hl7.Segment
		if seg, ok := msg.Segment("PV2"); ok {
			pv2 = seg
		}
		result := extract.Encounter(bld.ctx, pv1, pv2, patientFullURL)
		if result != nil {
			encounter = result.Encounter
			if result.Location != nil {
				locationFullURL := bld.add("Location", result.Location)
				encounter.Location = append(encounter.Location, fhir.EncounterLocation{
					Location: fhir.Reference{Reference: locationFullURL},
				})
			}
			bld.mergeZSegments(msg, encounter)
			encounterFullURL = bld.add("Encounter", encounter)
		}
	}

	for _, rol := range msg.Segments("ROL") {
		result := extract.Practitioner(bld.ctx, rol)
		if result == nil || result.Practitioner == nil {
			continue
		}
		practitionerFullURL := bld.add("Practitioner", result.Practitioner)
		if encounter != nil {
			role := &fhir.PractitionerRole{
				ResourceType: "PractitionerRole",
				ID:           "practitionerrole-" + uuid.NewString(),
				Practitioner: &fhir.Reference{Reference: practitionerFullURL},
				Encounter:    &fhir.Reference{Reference: encounterFullURL},
			}
			if result.RoleCode != "" {
				display, _ := bld.ctx.Catalogue.CodeDisplay("FR_SYS_PROFESSION", result.RoleCode)
				role.Code = []fhir.CodeableConcept{*fhir.NewCode("FR_SYS_PROFESSION", result.RoleCode, display)}
				if url, ok := bld.ctx.Catalogue.ExtensionURL("FR_EXT_PRACTITIONER_PROFESSION"); ok {
					role.Extension = append(role.Extension, fhir.Extension{
						URL:                  url,
						ValueCodeableConcept: &role.Code[0],
					})
				}
			}
			bld.add("PractitionerRole", role)
		}
	}

	for _, nk1 := range msg.Segments("NK1") {
		rp := extract.RelatedPerson(bld.ctx, nk1, patientFullURL)
		if rp != nil {
			bld.add("RelatedPerson", rp)
		}
	}

	for _, in1 := range msg.Segments("IN1") {
		result := extract.Coverage(bld.ctx, in1, patientFullURL)
		if result == nil {
			continue
		}
		var payorFullURL string
		if result.Payor != nil {
			payorFullURL = bld.add("Organization", result.Payor)
			result.Coverage.Payor = []fhir.Reference{{Reference: payorFullURL}}
		}
		bld.add("Coverage", result.Coverage)
	}

	return bld.b
}

// knownZSegments are the French Z-segment extensions this engine
// understands; mergeZSegments warns about any other Z-segment a message
// carries instead of silently dropping it.
var knownZSegments = map[string]bool{"ZBE": true, "ZFV": true, "ZFP": true, "ZFM": true}

// mergeZSegments applies ZBE/ZFV's mutation plans to encounter in place;
// ZFP/ZFM are parsed for completeness but not materialized, matching the
// source's own behavior for those two segments. Any Z-segment outside that
// known set is reported as a recoverable warning via hl7.Message.ZSegments
// rather than probed for by name.
func (bld *Builder) mergeZSegments(msg hl7.Message, encounter *fhir.Encounter) {
	if zbe, ok := msg.Segment("ZBE"); ok {
		plan := extract.ZBE(zbe)
		if org := extract.ApplyZBE(bld.ctx, encounter, plan); org != nil {
			encounter.ServiceProvider = &fhir.Reference{Reference: bld.add("Organization", org)}
		}
	}
	if zfv, ok := msg.Segment("ZFV"); ok {
		plan := extract.ZFV(zfv)
		extract.ApplyZFV(bld.ctx, encounter, plan)
	}
	if zfp, ok := msg.Segment("ZFP"); ok {
		extract.ZFP(zfp)
	}
	if zfm, ok := msg.Segment("ZFM"); ok {
		extract.ZFM(zfm)
	}
	for _, seg := range msg.ZSegments() {
		if !knownZSegments[seg.Name()] {
			bld.ctx.Warn(extract.UnexpectedShape, seg.Name(), "unrecognized Z-segment, ignored")
		}
	}
}
