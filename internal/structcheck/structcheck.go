// Package structcheck validates that a parsed message carries the segments
// and fields this domain's extractors assume are there before PID/PV1/ROL
// extraction begins. It is the structural layer the teacher's validate
// package covered with a pluggable Rule/RuleBuilder system (validate/rules.go,
// validate/builder.go); this domain's required-segment set is fixed, so the
// adaptation is a small concrete hl7.Validator rather than that machinery.
package structcheck

import (
	"github.com/svoer/hl7fhir/hl7"
)

// Validator checks presence of the segments and header fields every ADT
// extractor in this repo depends on existing before it runs.
type Validator struct{}

var _ hl7.Validator = Validator{}

// New returns a Validator ready to use; it holds no state.
func New() Validator {
	return Validator{}
}

// Validate checks message-level structure: MSH and PID must both be
// present, since extract.MSH and extract.Patient are unconditional for
// every ADT scenario this engine handles (§4.E).
func (v Validator) Validate(msg hl7.Message) []error {
	var errs []error
	if msh, ok := msg.Segment("MSH"); ok {
		errs = append(errs, v.ValidateSegment(msh)...)
	} else {
		errs = append(errs, &hl7.SegmentError{Segment: "MSH", Reason: "required segment missing"})
	}
	if pid, ok := msg.Segment("PID"); ok {
		errs = append(errs, v.ValidateSegment(pid)...)
	} else {
		errs = append(errs, &hl7.SegmentError{Segment: "PID", Reason: "required segment missing"})
	}
	return errs
}

// ValidateSegment checks the header fields a segment must carry for its
// extractor to do anything useful. Unrecognized segment names are always
// valid as far as this checker is concerned; it only knows about the
// segments this domain extracts.
func (v Validator) ValidateSegment(seg hl7.Segment) []error {
	var errs []error
	switch seg.Name() {
	case "MSH":
		if f, ok := seg.Field(9); !ok || f.Value() == "" {
			errs = append(errs, &hl7.ValidationError{
				Location: "MSH.9", Rule: "required", Expected: "message type", Severity: hl7.SeverityError,
			})
		}
	case "PID":
		if f, ok := seg.Field(3); !ok || f.Value() == "" {
			errs = append(errs, &hl7.ValidationError{
				Location: "PID.3", Rule: "required", Expected: "patient identifier list", Severity: hl7.SeverityError,
			})
		}
	}
	return errs
}
