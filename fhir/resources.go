package fhir

// Patient is the FHIR R4 Patient resource this transcoder emits. Id is the
// bare resource id ("patient-<ipp-or-stamp>"); the Bundle composer assigns
// the urn:uuid fullUrl separately.
type Patient struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id"`
	Meta         *Meta        `json:"meta,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Telecom      []ContactPoint `json:"telecom,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	BirthDate    string       `json:"birthDate,omitempty"`
	Address      []Address    `json:"address,omitempty"`
	MaritalStatus *CodeableConcept `json:"maritalStatus,omitempty"`
	Extension    []Extension  `json:"extension,omitempty"`
}

// Hospitalization captures Encounter.hospitalization's fields this domain
// actually populates.
type Hospitalization struct {
	PreAdmissionIdentifier  *Identifier      `json:"preAdmissionIdentifier,omitempty"`
	Origin                  *Reference       `json:"origin,omitempty"`
	Destination             *Reference       `json:"destination,omitempty"`
	ExpectedDischargeDate   string           `json:"expectedDischargeDate,omitempty"`
}

// EncounterLocation is one entry of Encounter.location.
type EncounterLocation struct {
	Location Reference `json:"location"`
}

// Encounter is the FHIR R4 Encounter resource.
type Encounter struct {
	ResourceType    string               `json:"resourceType"`
	ID              string               `json:"id"`
	Status          string               `json:"status"`
	Class           Coding               `json:"class"`
	Identifier      []Identifier         `json:"identifier,omitempty"`
	Subject         *Reference           `json:"subject,omitempty"`
	Period          *Period              `json:"period,omitempty"`
	Location        []EncounterLocation  `json:"location,omitempty"`
	ServiceProvider *Reference           `json:"serviceProvider,omitempty"`
	Priority        *CodeableConcept     `json:"priority,omitempty"`
	Hospitalization *Hospitalization     `json:"hospitalization,omitempty"`
	Extension       []Extension          `json:"extension,omitempty"`
}

// Organization is the FHIR R4 Organization resource.
type Organization struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         string       `json:"name,omitempty"`
	Type         []CodeableConcept `json:"type,omitempty"`
}

// Qualification is one entry of Practitioner.qualification.
type Qualification struct {
	Identifier []Identifier     `json:"identifier,omitempty"`
	Code       *CodeableConcept `json:"code,omitempty"`
}

// Practitioner is the FHIR R4 Practitioner resource.
type Practitioner struct {
	ResourceType  string          `json:"resourceType"`
	ID            string          `json:"id"`
	Identifier    []Identifier    `json:"identifier,omitempty"`
	Name          []HumanName     `json:"name,omitempty"`
	Qualification []Qualification `json:"qualification,omitempty"`
	Extension     []Extension     `json:"extension,omitempty"`
}

// PractitionerRole is the FHIR R4 PractitionerRole resource.
type PractitionerRole struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	Practitioner *Reference        `json:"practitioner,omitempty"`
	Encounter    *Reference        `json:"encounter,omitempty"`
	Code         []CodeableConcept `json:"code,omitempty"`
	Extension    []Extension       `json:"extension,omitempty"`
}

// RelatedPerson is the FHIR R4 RelatedPerson resource.
type RelatedPerson struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id"`
	Patient      *Reference        `json:"patient,omitempty"`
	Relationship []CodeableConcept `json:"relationship,omitempty"`
	Name         []HumanName       `json:"name,omitempty"`
}

// Coverage is the FHIR R4 Coverage resource.
type Coverage struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	Type         *CodeableConcept `json:"type,omitempty"`
	Beneficiary  *Reference       `json:"beneficiary,omitempty"`
	Payor        []Reference      `json:"payor,omitempty"`
	Period       *Period          `json:"period,omitempty"`
	SubscriberId string           `json:"subscriberId,omitempty"`
	Extension    []Extension      `json:"extension,omitempty"`
}

// Location is the FHIR R4 Location resource.
type Location struct {
	ResourceType string `json:"resourceType"`
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
}
