// Package extract holds the per-concern segment extractors (§4.E): one per
// PID[+PD1], PV1[+PV2], MSH, ROL, NK1, IN1[+IN2], and the ZBE/ZFP/ZFV/ZFM
// Z-segments. Every extractor follows the same contract: take the parsed
// message (never throw past a malformed header), return a partial FHIR
// resource plus any side entries, and record recoverable problems on the
// Context's warning log instead of aborting the conversion (§7: "extract
// defensively, compose strictly").
package extract

import (
	"github.com/rs/zerolog"

	"github.com/svoer/hl7fhir/terminology"
)

// WarningKind mirrors the recoverable kinds in the error taxonomy (§7).
// MalformedHeader and EmptyMessage are fatal and never appear here — those
// abort parsing before any extractor runs.
type WarningKind string

const (
	UnknownIdentifierAuthority WarningKind = "UnknownIdentifierAuthority"
	InvalidDate                WarningKind = "InvalidDate"
	InvalidPhone               WarningKind = "InvalidPhone"
	UnexpectedShape            WarningKind = "UnexpectedShape"
	InternalExtractionFailure  WarningKind = "InternalExtractionFailure"
)

// Warning is one recoverable problem recorded during extraction.
type Warning struct {
	Kind    WarningKind
	Segment string
	Detail  string
}

// Context carries the read-only terminology catalogue, the trace sink, and
// conversion options shared by every extractor, plus the accumulated
// warning log the engine returns alongside the Bundle as Result.Warnings.
type Context struct {
	Catalogue       *terminology.Catalogue
	Logger          zerolog.Logger
	GenerateTestINS bool
	Warnings        []Warning

	// Stamp is the per-conversion monotonic id the engine derives from its
	// injected clock, used as the fallback suffix for Patient.id when no
	// natural identifier (IPP) is available.
	Stamp string

	// BroadScanCoveragePeriodEnd opts into scanning the first 20 IN1 fields
	// for any 8-digit value beginning "20" when IN1-12/13/14 are all empty.
	// Defaults to false: the scan is a known hazard (it can consume an
	// unrelated SIRET-like number), so callers must opt in explicitly.
	BroadScanCoveragePeriodEnd bool
}

// NewContext builds an extraction Context against the default embedded
// catalogue and a no-op logger; callers typically override both via the
// conversion engine's options.
func NewContext() *Context {
	return &Context{
		Catalogue: terminology.Default,
		Logger:    zerolog.Nop(),
	}
}

// Warn records a recoverable problem and logs it at the level the taxonomy
// calls for: Warn for InvalidDate/InvalidPhone/UnexpectedShape, Error for
// InternalExtractionFailure.
func (c *Context) Warn(kind WarningKind, segment, detail string) {
	c.Warnings = append(c.Warnings, Warning{Kind: kind, Segment: segment, Detail: detail})
	event := c.Logger.Warn()
	if kind == InternalExtractionFailure {
		event = c.Logger.Error()
	}
	event.Str("kind", string(kind)).Str("segment", segment).Msg(detail)
}
