package extract

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

var (
	mutuelComplementRe = regexp.MustCompile(`(?i)MUTUEL|COMPLEMENT`)
	aldRe               = regexp.MustCompile(`ALD|100%`)
	atmpRe               = regexp.MustCompile(`^AT|MP`)
	fifteenDigitCoverage = regexp.MustCompile(`^\d{15}$`)
	twentyPrefixed8Digit = regexp.MustCompile(`^20\d{6}$`)
)

// CoverageResult pairs the Coverage with the payor Organization side-entry
// created from IN1-4 (§4.E.6).
type CoverageResult struct {
	Coverage *fhir.Coverage
	Payor    *fhir.Organization
}

// Coverage builds a Coverage (and its payor Organization) from IN1[+IN2]
// per §4.E.6.
func Coverage(ctx *Context, in1 hl7.Segment, beneficiaryFullURL string) *CoverageResult {
	if in1 == nil {
		return nil
	}
	c := &fhir.Coverage{ResourceType: "Coverage", Status: "active"}
	if beneficiaryFullURL != "" {
		c.Beneficiary = &fhir.Reference{Reference: beneficiaryFullURL}
	}

	planName := normalize.FieldString(in1, 2)
	c.Type = coverageType(ctx, planName)

	var payor *fhir.Organization
	insurerRaw := normalize.FieldString(in1, 4)
	if insurerRaw != "" {
		insurerName := normalize.FieldComponent(in1, 4, 1)
		if insurerName == "" {
			insurerName = insurerRaw
		}
		payor = &fhir.Organization{
			ResourceType: "Organization",
			ID:           "organization-" + sanitizeID(insurerName),
			Name:         insurerName,
			Type:         []fhir.CodeableConcept{*fhir.NewCode("http://terminology.hl7.org/CodeSystem/organization-type", "ins", "Insurance Company")},
		}
	}

	if end, ok := coveragePeriodEnd(ctx, in1); ok {
		c.Period = &fhir.Period{End: end}
	}

	if sub := normalize.FieldComponent(in1, 16, 1); sub != "" {
		c.SubscriberId = sub
	} else if sub := normalize.FieldString(in1, 16); sub != "" {
		c.SubscriberId = sub
	}

	if insuredID, ok := frenchInsuredID(in1); ok {
		if url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtCoverageInsuredID); ok {
			c.Extension = append(c.Extension, fhir.Extension{
				URL: url,
				ValueIdentifier: &fhir.Identifier{
					System: terminology.OIDSystemURL("1.2.250.1.213.1.4.8"),
					Value:  insuredID,
				},
			})
		}
	}

	c.ID = "coverage-" + uuid.NewString()

	return &CoverageResult{Coverage: c, Payor: payor}
}

func coverageType(ctx *Context, planName string) *fhir.CodeableConcept {
	var code string
	switch {
	case mutuelComplementRe.MatchString(planName):
		code = "AMC"
	case aldRe.MatchString(planName):
		code = "ALD"
	case atmpRe.MatchString(planName):
		code = "ATMP"
	default:
		code = "AMO"
	}
	display, _ := ctx.Catalogue.CodeDisplay(terminology.FRSysTypeCouverture, code)
	return fhir.NewCode(systemURLOrName(ctx, terminology.FRSysTypeCouverture), code, display)
}

// coveragePeriodEnd implements the recovery chain in §4.E.6, constrained
// per the Open Question decision to IN1-12/13/14 unless the caller opts
// into the broader 20-field scan.
func coveragePeriodEnd(ctx *Context, in1 hl7.Segment) (string, bool) {
	for _, fieldNum := range []int{13, 12, 14} {
		v := normalize.FieldString(in1, fieldNum)
		if v == "" {
			continue
		}
		if d, ok := normalize.ParseHL7Date(v); ok {
			return d, true
		}
	}
	if !ctx.BroadScanCoveragePeriodEnd {
		return "", false
	}
	for i := 1; i <= 20; i++ {
		v := normalize.FieldString(in1, i)
		if twentyPrefixed8Digit.MatchString(v) {
			if d, ok := normalize.ParseHL7Date(v); ok {
				return d, true
			}
		}
	}
	return "", false
}

func frenchInsuredID(in1 hl7.Segment) (string, bool) {
	if v := normalize.FieldString(in1, 36); fifteenDigitCoverage.MatchString(v) {
		return v, true
	}
	fields := in1.AllFields()
	if len(fields) == 0 {
		return "", false
	}
	last := fields[len(fields)-1].Value()
	last = strings.TrimSpace(last)
	if fifteenDigitCoverage.MatchString(last) {
		return last, true
	}
	return "", false
}
