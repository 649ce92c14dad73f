// Package fhir defines the subset of FHIR R4 resource and data-type shapes
// this transcoder emits: Bundle, Patient, Encounter, Organization,
// Practitioner, PractitionerRole, RelatedPerson, Coverage, and Location,
// plus the common data types they share (Identifier, Reference,
// CodeableConcept, HumanName, ContactPoint, Address, Extension, Period).
//
// These are plain marshaling structs, not a validating client library:
// nothing here consults a StructureDefinition, by design (spec.md §1
// Non-goals).
package fhir

// Meta carries resource-level metadata. Only profile is used today.
type Meta struct {
	Profile []string `json:"profile,omitempty"`
}

// Coding is a single code within a CodeableConcept.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// CodeableConcept pairs zero or more Codings with free text.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// NewCode builds a single-coding CodeableConcept, the overwhelmingly common
// case across every extractor in this package.
func NewCode(system, code, display string) *CodeableConcept {
	return &CodeableConcept{Coding: []Coding{{System: system, Code: code, Display: display}}}
}

// Identifier is a business identifier attached to a resource.
type Identifier struct {
	Use        string           `json:"use,omitempty"`
	Type       *CodeableConcept `json:"type,omitempty"`
	System     string           `json:"system,omitempty"`
	Value      string           `json:"value,omitempty"`
	Assigner   *Reference       `json:"assigner,omitempty"`
	Extension  []Extension      `json:"extension,omitempty"`
}

// Reference points at another resource, by value (urn:uuid:<id> or a
// plain display-only reference), never by pointer.
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Extension is a single FHIR extension; exactly one of the value* fields
// is populated depending on the extension's declared type.
type Extension struct {
	URL               string      `json:"url"`
	ValueString       string      `json:"valueString,omitempty"`
	ValueCode         string      `json:"valueCode,omitempty"`
	ValueBoolean      *bool       `json:"valueBoolean,omitempty"`
	ValueDateTime     string      `json:"valueDateTime,omitempty"`
	ValueIdentifier   *Identifier `json:"valueIdentifier,omitempty"`
	ValueCodeableConcept *CodeableConcept `json:"valueCodeableConcept,omitempty"`
}

// BoolPtr is a small helper since Go has no boolean literal address syntax.
func BoolPtr(b bool) *bool { return &b }

// HumanName is a patient, practitioner, or related-person name.
type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
	Suffix []string `json:"suffix,omitempty"`
}

// ContactPoint is a telecom entry (phone, fax, email, pager, url).
type ContactPoint struct {
	System    string      `json:"system,omitempty"`
	Value     string      `json:"value,omitempty"`
	Use       string      `json:"use,omitempty"`
	Extension []Extension `json:"extension,omitempty"`
}

// Address is a postal or physical address.
type Address struct {
	Use        string      `json:"use,omitempty"`
	Type       string      `json:"type,omitempty"`
	Line       []string    `json:"line,omitempty"`
	City       string      `json:"city,omitempty"`
	State      string      `json:"state,omitempty"`
	PostalCode string      `json:"postalCode,omitempty"`
	Country    string      `json:"country,omitempty"`
	Extension  []Extension `json:"extension,omitempty"`
}

// Period is a start/end instant pair; either bound may be empty.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}
