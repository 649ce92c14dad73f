// Package terminology consults the offline French ANS/MOS terminology
// catalogue: OID-to-URL resolution, code display lookups, and the
// well-known identifier/extension system names the segment extractors
// reference by constant. The catalogue is loaded once at package init from
// an embedded JSON file and never mutated afterward, so concurrent reads
// from independent conversions need no locking.
package terminology

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed catalogue.json
var catalogueJSON []byte

// System-name constants the segment extractors and composer reference.
// These are keys into the catalogue's "systems" and "extension_systems"
// maps, not URLs themselves — resolve them through Catalogue before use.
const (
	FRSysProfession          = "FR_SYS_PROFESSION"
	FRSysModePriseEnCharge   = "FR_SYS_MODE_PRISE_EN_CHARGE"
	FRSysTypeCouverture      = "FR_SYS_TYPE_COUVERTURE"
	FRSysPays                = "FR_SYS_PAYS"
	FRSysRelationship        = "FR_SYS_RELATIONSHIP"
	FRExtPractitionerProf    = "FR_EXT_PRACTITIONER_PROFESSION"
	FRExtNationality         = "FR_EXT_NATIONALITY"
	FRExtInsiStatus          = "FR_EXT_INSI_STATUS"
	FRExtEncounterExpExit    = "FR_EXT_ENCOUNTER_EXPECTED_EXIT"
	FRExtHealthEventType     = "FR_EXT_HEALTHEVENT_TYPE"
	FRExtHealthEventID       = "FR_EXT_HEALTHEVENT_IDENTIFIER"
	FRExtCommuneCOGInsee     = "FR_EXT_COMMUNE_COG_INSEE"
	FRExtTelecomMobilite     = "FR_EXT_TELECOM_MOBILITE"
	FRExtModePriseEnCharge   = "FR_EXT_MODE_PRISE_EN_CHARGE"
	FRExtCoverageInsuredID   = "FR_EXT_COVERAGE_INSURED_ID"
)

// CodeInfo is a single code's display metadata within a code system.
type CodeInfo struct {
	Display    string `json:"display"`
	Definition string `json:"definition"`
}

// SystemInfo pairs a code system's OID with its canonical FHIR URL.
type SystemInfo struct {
	OID string `json:"oid"`
	URL string `json:"url"`
}

// Catalogue is the parsed offline terminology file. Zero value is usable
// (every lookup falls back per §4.C's fallback policy) but Load should be
// preferred so real entries resolve.
type Catalogue struct {
	Systems            map[string]SystemInfo         `json:"systems"`
	Codes              map[string]map[string]CodeInfo `json:"codes"`
	IdentifierSystems  map[string]SystemInfo         `json:"identifier_systems"`
	ExtensionSystems   map[string]struct {
		URI string `json:"uri"`
	} `json:"extension_systems"`
}

// Default is the catalogue loaded from the embedded JSON at package init.
// Production code should use Default directly; tests that need a custom
// catalogue should build one via Load on their own bytes.
var Default = mustLoadEmbedded()

func mustLoadEmbedded() *Catalogue {
	c, err := Load(catalogueJSON)
	if err != nil {
		panic(fmt.Sprintf("terminology: embedded catalogue is invalid: %v", err))
	}
	return c
}

// Load parses a terminology catalogue from JSON bytes, per the shape in
// the conversion engine's external interface documentation.
func Load(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("terminology: parse catalogue: %w", err)
	}
	return &c, nil
}

// SystemURL resolves a system-by-oid style request to its canonical URL,
// returning ("", false) when the oid is unknown to the catalogue.
func (c *Catalogue) SystemURL(oid string) (string, bool) {
	for _, info := range c.Systems {
		if info.OID == oid {
			return info.URL, true
		}
	}
	for _, info := range c.IdentifierSystems {
		if info.OID == oid {
			return info.URL, true
		}
	}
	return "", false
}

// SystemByName resolves one of the FRSys* constants to its SystemInfo.
func (c *Catalogue) SystemByName(name string) (SystemInfo, bool) {
	info, ok := c.Systems[name]
	return info, ok
}

// IdentifierSystem resolves an identifier-system key (e.g. "INS", "IPP",
// "RPPS", "ADELI") to its OID/URL pair.
func (c *Catalogue) IdentifierSystem(key string) (SystemInfo, bool) {
	info, ok := c.IdentifierSystems[key]
	return info, ok
}

// ExtensionURL resolves one of the FRExt* constants to its extension URI.
// Unknown names return ("", false); callers should treat that as "omit the
// extension" rather than fabricate a URL.
func (c *Catalogue) ExtensionURL(name string) (string, bool) {
	ext, ok := c.ExtensionSystems[name]
	if !ok {
		return "", false
	}
	return ext.URI, true
}

// CodeDisplay resolves a code within a named system. Per the fallback
// policy in §4.C, an unknown code returns the code itself as the display
// and ok=false so callers know the lookup missed.
func (c *Catalogue) CodeDisplay(system, code string) (display string, ok bool) {
	codes, exists := c.Codes[system]
	if !exists {
		return code, false
	}
	info, exists := codes[code]
	if !exists {
		return code, false
	}
	return info.Display, true
}

// OIDSystemURL applies the fallback policy for an unresolved OID: the
// caller gets "urn:oid:<oid>" verbatim. Use SystemURL first; fall back to
// this when it misses.
func OIDSystemURL(oid string) string {
	return "urn:oid:" + oid
}
