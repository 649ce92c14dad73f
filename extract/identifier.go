package extract

import (
	"regexp"
	"strings"

	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/normalize"
	"github.com/svoer/hl7fhir/terminology"
)

// idKind is the enumerated identifier classification from the design
// note in §9, replacing the source's ad hoc string matching.
type idKind int

const (
	idOther idKind = iota
	idINS
	idINSC
	idIPP
)

var fifteenDigits = regexp.MustCompile(`^\d{15}$`)

var insAuthorityMarkers = []string{
	"ASIP-SANTE-INS-NIR", "ASIP-SANTE-INS-C", "ASIP-SANTE-INS-A", "INSEE-NIR",
}

// candidateIdentifier is one PID-3 repetition decomposed into its relevant
// CX components: value (1st), namespace/OID/universal-type (4th, itself a
// composite), and type code (5th).
type candidateIdentifier struct {
	value     string
	namespace string
	oid       string
	typeCode  string
}

func parsePID3(seg hl7.Segment) []candidateIdentifier {
	f, ok := seg.Field(3)
	if !ok {
		return nil
	}
	fv := normalize.FromField(f)
	reps := normalize.AsRepetitions(fv)

	out := make([]candidateIdentifier, 0, len(reps))
	for _, rep := range reps {
		value := normalize.ComponentString(rep, 1)
		if value == "" {
			continue
		}
		authority := normalize.Component(rep, 4)
		out = append(out, candidateIdentifier{
			value:     value,
			namespace: normalize.ComponentString(authority, 1),
			oid:       normalize.ComponentString(authority, 2),
			typeCode:  normalize.ComponentString(rep, 5),
		})
	}
	return out
}

func classify(c candidateIdentifier) idKind {
	switch {
	case c.typeCode == "NI" && (c.oid == "1.2.250.1.213.1.4.8" || hasInsAuthorityMarker(c.namespace)):
		return idINS
	case c.typeCode == "NI" && c.oid == "1.2.250.1.213.1.4.2":
		return idINSC
	case fifteenDigits.MatchString(c.value) && hasInsAuthorityMarker(c.namespace):
		return idINS
	case (c.typeCode == "PI" || c.typeCode == "NH" || c.typeCode == "") :
		return idIPP
	default:
		return idOther
	}
}

func hasInsAuthorityMarker(namespace string) bool {
	for _, m := range insAuthorityMarkers {
		if strings.Contains(namespace, m) {
			return true
		}
	}
	return false
}

// PatientIdentifiers classifies PID-3 per §4.E.1.1: keep exactly one INS
// (preferring NIR over INS-C) and one IPP, synthesizing an IPP when only an
// INS was found, and passing every other identifier through with a
// best-effort system. INS identifiers carry the INSi-Status extension.
func PatientIdentifiers(ctx *Context, seg hl7.Segment, stampFallback string) []fhir.Identifier {
	candidates := parsePID3(seg)

	var ins, insC *candidateIdentifier
	var ipp *candidateIdentifier
	var others []candidateIdentifier

	for i := range candidates {
		c := candidates[i]
		switch classify(c) {
		case idINS:
			if ins == nil {
				ins = &c
			}
		case idINSC:
			if insC == nil {
				insC = &c
			}
		case idIPP:
			if ipp == nil {
				ipp = &c
			}
		default:
			others = append(others, c)
		}
	}

	var out []fhir.Identifier

	chosenINS := ins
	if chosenINS == nil {
		chosenINS = insC
	}
	if chosenINS != nil {
		out = append(out, fhir.Identifier{
			System: terminology.OIDSystemURL("1.2.250.1.213.1.4.8"),
			Value:  chosenINS.value,
			Type:   fhir.NewCode("http://terminology.hl7.org/CodeSystem/v2-0203", "NI", "National unique individual identifier"),
			Assigner: &fhir.Reference{Display: "INSEE"},
			Extension: insiStatusExtension(ctx),
		})
	}

	if ipp != nil {
		out = append(out, fhir.Identifier{
			System: ippSystemURL(ctx),
			Value:  ipp.value,
			Type:   fhir.NewCode("http://terminology.hl7.org/CodeSystem/v2-0203", "PI", "Patient internal identifier"),
		})
	} else if chosenINS != nil {
		out = append(out, fhir.Identifier{
			System: ippSystemURL(ctx),
			Value:  "temp-" + stampFallback,
			Type:   fhir.NewCode("http://terminology.hl7.org/CodeSystem/v2-0203", "PI", "Patient internal identifier"),
		})
	}

	for _, c := range others {
		system := terminology.OIDSystemURL(c.oid)
		if c.oid == "" {
			system = "urn:system:unknown"
			ctx.Warn(UnknownIdentifierAuthority, "PID-3", "identifier authority unresolvable for value "+c.value)
		}
		out = append(out, fhir.Identifier{System: system, Value: c.value})
	}

	return out
}

func insiStatusExtension(ctx *Context) []fhir.Extension {
	url, ok := ctx.Catalogue.ExtensionURL(terminology.FRExtInsiStatus)
	if !ok {
		return nil
	}
	return []fhir.Extension{{URL: url, ValueCode: "VALI"}}
}

func ippSystemURL(ctx *Context) string {
	if info, ok := ctx.Catalogue.IdentifierSystem("IPP"); ok {
		return info.URL
	}
	return terminology.OIDSystemURL("1.2.250.1.71.4.2.7")
}

// FirstIPP returns the first IPP-classified value in PID-3, used as the
// Patient.id stamp when present.
func FirstIPP(seg hl7.Segment) (string, bool) {
	for _, c := range parsePID3(seg) {
		if classify(c) == idIPP {
			return c.value, true
		}
	}
	return "", false
}
