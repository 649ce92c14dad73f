package extract

import (
	"regexp"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
)

var timestampLooking = regexp.MustCompile(`^\d{8,}$`)

// Organizations builds the sending/receiving Organization side-resources
// from MSH-4/MSH-6 per §4.E.3, deduplicating when both facilities share
// the generated id.
func Organizations(msh hl7.Segment) (sending, receiving *fhir.Organization) {
	sending = organizationFromField(msh, 4, "Établissement émetteur")
	receiving = organizationFromField(msh, 6, "Établissement destinataire")
	if sending != nil && receiving != nil && sending.ID == receiving.ID {
		receiving = nil
	}
	return sending, receiving
}

func organizationFromField(seg hl7.Segment, fieldNum int, fallbackDisplay string) *fhir.Organization {
	raw := normalize.FieldString(seg, fieldNum)
	if raw == "" {
		return nil
	}
	namespace := normalize.FieldComponent(seg, fieldNum, 1)
	if namespace == "" {
		namespace = raw
	}

	org := &fhir.Organization{ResourceType: "Organization"}
	if timestampLooking.MatchString(namespace) {
		org.Name = fallbackDisplay
		org.Identifier = []fhir.Identifier{{Value: namespace}}
		org.ID = "organization-" + sanitizeID(fallbackDisplay)
	} else {
		org.Name = namespace
		org.ID = "organization-" + sanitizeID(namespace)
	}
	return org
}
