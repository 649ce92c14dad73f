// Package convert is the conversion engine façade (§4.H): it wires
// parse -> extract -> compose -> (optional) validate behind one entry
// point, owns the clock and terminology catalogue options, and translates
// fatal parser errors into the taxonomy's two fatal kinds.
package convert

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/svoer/hl7fhir/compose"
	"github.com/svoer/hl7fhir/extract"
	"github.com/svoer/hl7fhir/fhir"
	"github.com/svoer/hl7fhir/hl7"
	"github.com/svoer/hl7fhir/internal/structcheck"
	"github.com/svoer/hl7fhir/parse"
	"github.com/svoer/hl7fhir/terminology"
)

// structureValidator checks MSH/PID presence ahead of extraction. Declared
// as hl7.Validator so swapping in a stricter implementation never touches
// this call site.
var structureValidator hl7.Validator = structcheck.New()

// Option configures a conversion. Functional options mirror the teacher's
// ParserOption idiom (parse/options.go) rather than a sprawling config
// struct.
type Option func(*options)

type options struct {
	catalogue               *terminology.Catalogue
	logger                  zerolog.Logger
	clock                   Clock
	generateTestINS         bool
	strict                  bool
	broadScanCoveragePeriod bool
}

func defaultOptions() options {
	return options{
		catalogue: terminology.Default,
		logger:    zerolog.Nop(),
		clock:     SystemClock{},
	}
}

// WithCatalogue overrides the embedded terminology catalogue, e.g. when
// HL7FHIR_CATALOGUE_PATH points at a site-local override (§10.2).
func WithCatalogue(c *terminology.Catalogue) Option {
	return func(o *options) { o.catalogue = c }
}

// WithLogger sets the trace sink (§10.1). Defaults to zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the source of "now" (§10.4). Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithGenerateTestINS opts into the source's test-INS behavior explicitly;
// never autodetected from the environment (§9 Open Question).
func WithGenerateTestINS(v bool) Option {
	return func(o *options) { o.generateTestINS = v }
}

// WithStrict runs the Bundle invariant validator (§12) after composition
// and returns its findings as part of the Result instead of only logging.
func WithStrict(v bool) Option {
	return func(o *options) { o.strict = v }
}

// WithBroadScanCoveragePeriodEnd opts into the Coverage.period.end hazard
// scan beyond IN1-12/13/14 (§9 Open Question). Off by default.
func WithBroadScanCoveragePeriodEnd(v bool) Option {
	return func(o *options) { o.broadScanCoveragePeriod = v }
}

// Result is everything a conversion produces: the Bundle plus the
// recoverable-warning log and (in strict mode) invariant findings.
type Result struct {
	Bundle            *fhir.Bundle
	Warnings          []extract.Warning
	InvariantFindings []compose.InvariantError
}

// Convert parses raw HL7 (bytes, MLLP-framed or not) and composes a FHIR R4
// transaction Bundle from it, per §4.H. The only errors returned are the
// taxonomy's two fatal kinds, MalformedHeader and EmptyMessage (plus
// MissingMSH, which spec.md §6.1 also lists as engine-fatal even though it
// is a shape error one level past the header check).
func Convert(data []byte, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	msg, err := parse.New().Parse(data)
	if err != nil {
		return nil, classifyParseError(err)
	}

	ctx := &extract.Context{
		Catalogue:                  o.catalogue,
		Logger:                     o.logger,
		GenerateTestINS:            o.generateTestINS,
		BroadScanCoveragePeriodEnd: o.broadScanCoveragePeriod,
		Stamp:                      o.clock.Now().UTC().Format("20060102150405.000"),
	}

	for _, structErr := range structureValidator.Validate(msg) {
		ctx.Warn(extract.UnexpectedShape, "MSH/PID", structErr.Error())
	}

	builder := compose.NewBuilder(ctx, o.clock)
	bundle := builder.Compose(msg)

	result := &Result{Bundle: bundle, Warnings: ctx.Warnings}
	if o.strict {
		result.InvariantFindings = compose.CheckInvariants(bundle)
	}
	return result, nil
}

// classifyParseError maps the parser's sentinel errors onto the taxonomy's
// fatal kinds (§7). Any other parser error is treated as MalformedHeader:
// every failure mode short of "parsing never began" belongs to the shape
// tolerance extractors are supposed to absorb, so the only things that can
// reach here are header-level.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, hl7.ErrEmptyMessage):
		return &ConversionError{Kind: EmptyMessage, Err: err}
	case errors.Is(err, hl7.ErrMissingMSH), errors.Is(err, hl7.ErrNotMSHSegment):
		return &ConversionError{Kind: MissingMSH, Err: err}
	default:
		return &ConversionError{Kind: MalformedHeader, Err: err}
	}
}
