package compose

import (
	"fmt"
	"regexp"
	"time"

	"github.com/svoer/hl7fhir/fhir"
)

// InvariantError reports one violation of §3.3's Bundle-level invariants,
// adapted from the teacher's hl7 ValidationError shape onto a composed
// Bundle instead of a raw message.
type InvariantError struct {
	Invariant string
	Message   string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", e.Invariant, e.Message)
}

var isoInstantRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)
var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// CheckInvariants runs I-REF-1 (reference resolution), I-DEDUP-1 (telecom/
// name/identifier uniqueness), I-ORDER-1 (entry ordering), and I-TIME-1
// (dateTime validity) against a composed Bundle. Invoked by the engine in
// strict mode and always by the test suite (§12).
func CheckInvariants(b *fhir.Bundle) []InvariantError {
	var errs []InvariantError
	known := make(map[string]bool, len(b.Entry))
	for _, e := range b.Entry {
		known[e.FullURL] = true
	}

	errs = append(errs, checkReferences(b, known)...)
	errs = append(errs, checkOrdering(b)...)
	errs = append(errs, checkPatientDedup(b)...)
	errs = append(errs, checkTimes(b)...)
	return errs
}

func checkReferences(b *fhir.Bundle, known map[string]bool) []InvariantError {
	var errs []InvariantError
	require := func(ref *fhir.Reference, label string) {
		if ref == nil || ref.Reference == "" {
			return
		}
		if !known[ref.Reference] {
			errs = append(errs, InvariantError{"I-REF-1", label + " resolves to no entry: " + ref.Reference})
		}
	}
	for _, e := range b.Entry {
		switch r := e.Resource.(type) {
		case *fhir.Encounter:
			require(r.Subject, "Encounter.subject")
			require(r.ServiceProvider, "Encounter.serviceProvider")
			for _, loc := range r.Location {
				require(&loc.Location, "Encounter.location")
			}
		case *fhir.PractitionerRole:
			require(r.Practitioner, "PractitionerRole.practitioner")
			require(r.Encounter, "PractitionerRole.encounter")
		case *fhir.RelatedPerson:
			require(r.Patient, "RelatedPerson.patient")
		case *fhir.Coverage:
			require(r.Beneficiary, "Coverage.beneficiary")
			for i := range r.Payor {
				require(&r.Payor[i], "Coverage.payor")
			}
		}
	}
	return errs
}

func resourceTypeOf(e fhir.Entry) string {
	switch e.Resource.(type) {
	case *fhir.Patient:
		return "Patient"
	case *fhir.Encounter:
		return "Encounter"
	case *fhir.Organization:
		return "Organization"
	case *fhir.Practitioner:
		return "Practitioner"
	case *fhir.PractitionerRole:
		return "PractitionerRole"
	case *fhir.RelatedPerson:
		return "RelatedPerson"
	case *fhir.Coverage:
		return "Coverage"
	case *fhir.Location:
		return "Location"
	default:
		return ""
	}
}

// checkOrdering verifies I-ORDER-1: Patient before Encounter before
// Practitioner/PractitionerRole/RelatedPerson/Coverage; Location before the
// Encounter it precedes; payor Organization before the Coverage referencing
// it. Organization entries that aren't a Coverage payor are unconstrained.
func checkOrdering(b *fhir.Bundle) []InvariantError {
	var errs []InvariantError
	seenPatient, seenEncounter := false, false
	payorFullURLs := map[string]bool{}
	seenFullURLs := map[string]bool{}
	hasEncounter := false
	for _, e := range b.Entry {
		hasEncounter = hasEncounter || resourceTypeOf(e) == "Encounter"
	}

	for _, e := range b.Entry {
		switch resourceTypeOf(e) {
		case "Patient":
			seenPatient = true
		case "Encounter":
			if !seenPatient {
				errs = append(errs, InvariantError{"I-ORDER-1", "Encounter appears before Patient"})
			}
			for _, loc := range e.Resource.(*fhir.Encounter).Location {
				if ref := loc.Location.Reference; ref != "" && !seenFullURLs[ref] {
					errs = append(errs, InvariantError{"I-ORDER-1", "Encounter references Location not yet emitted: " + ref})
				}
			}
			seenEncounter = true
		case "Practitioner", "PractitionerRole", "RelatedPerson":
			if hasEncounter && !seenEncounter {
				errs = append(errs, InvariantError{"I-ORDER-1", resourceTypeOf(e) + " appears before Encounter"})
			}
		case "Coverage":
			cov := e.Resource.(*fhir.Coverage)
			if !seenPatient {
				errs = append(errs, InvariantError{"I-ORDER-1", "Coverage appears before Patient"})
			}
			if hasEncounter && !seenEncounter {
				errs = append(errs, InvariantError{"I-ORDER-1", "Coverage appears before Encounter"})
			}
			for _, p := range cov.Payor {
				if !payorFullURLs[p.Reference] {
					errs = append(errs, InvariantError{"I-ORDER-1", "Coverage references payor Organization not yet emitted: " + p.Reference})
				}
			}
		}
		if resourceTypeOf(e) == "Organization" {
			payorFullURLs[e.FullURL] = true
		}
		seenFullURLs[e.FullURL] = true
	}
	return errs
}

func checkPatientDedup(b *fhir.Bundle) []InvariantError {
	var errs []InvariantError
	for _, e := range b.Entry {
		p, ok := e.Resource.(*fhir.Patient)
		if !ok {
			continue
		}
		telecomSeen := map[string]bool{}
		for _, t := range p.Telecom {
			key := t.System + "|" + t.Use + "|" + t.Value
			if telecomSeen[key] {
				errs = append(errs, InvariantError{"I-DEDUP-1", "duplicate telecom (system,use,value): " + key})
			}
			telecomSeen[key] = true
		}
		nameSeen := map[string]bool{}
		for _, n := range p.Name {
			key := n.Use + "|" + n.Family + "|" + fmt.Sprint(n.Given)
			if nameSeen[key] {
				errs = append(errs, InvariantError{"I-DEDUP-1", "duplicate name (use,family,given): " + key})
			}
			nameSeen[key] = true
		}
		idSeen := map[string]bool{}
		for _, id := range p.Identifier {
			key := id.System + "|" + id.Value
			if idSeen[key] {
				errs = append(errs, InvariantError{"I-DEDUP-1", "duplicate identifier (system,value): " + key})
			}
			idSeen[key] = true
		}
	}
	return errs
}

func checkTimes(b *fhir.Bundle) []InvariantError {
	var errs []InvariantError
	if !isoInstantRe.MatchString(b.Timestamp) {
		if _, err := time.Parse(time.RFC3339, b.Timestamp); err != nil {
			errs = append(errs, InvariantError{"I-TIME-1", "Bundle.timestamp is not a valid ISO-8601 instant: " + b.Timestamp})
		}
	}
	for _, e := range b.Entry {
		switch r := e.Resource.(type) {
		case *fhir.Patient:
			if r.BirthDate != "" && !isoDateRe.MatchString(r.BirthDate) {
				errs = append(errs, InvariantError{"I-TIME-1", "Patient.birthDate is not YYYY-MM-DD: " + r.BirthDate})
			}
		case *fhir.Encounter:
			if r.Period != nil && r.Period.Start != "" && !isoInstantRe.MatchString(r.Period.Start) {
				errs = append(errs, InvariantError{"I-TIME-1", "Encounter.period.start is not a valid ISO-8601 instant: " + r.Period.Start})
			}
			if r.Hospitalization != nil && r.Hospitalization.ExpectedDischargeDate != "" {
				if !isoInstantRe.MatchString(r.Hospitalization.ExpectedDischargeDate) {
					errs = append(errs, InvariantError{"I-TIME-1", "Encounter.hospitalization.expectedDischargeDate is not a valid ISO-8601 instant"})
				}
				for _, ext := range r.Extension {
					if ext.ValueDateTime != "" && ext.ValueDateTime != r.Hospitalization.ExpectedDischargeDate {
						errs = append(errs, InvariantError{"I-TIME-1", "expected-exit extension does not mirror hospitalization.expectedDischargeDate"})
					}
				}
			}
		case *fhir.Coverage:
			if r.Period != nil && r.Period.End != "" && !isoDateRe.MatchString(r.Period.End) {
				errs = append(errs, InvariantError{"I-TIME-1", "Coverage.period.end is not YYYY-MM-DD: " + r.Period.End})
			}
		}
	}
	return errs
}
