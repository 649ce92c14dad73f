// Package normalize provides shape-tolerant accessors over parsed HL7 field
// data. An HL7 cell can surface as an empty value, a bare string, a list of
// repetitions, or a list of components (possibly itself holding
// subcomponents); callers should not need to know which one they received.
package normalize

import "github.com/svoer/hl7fhir/hl7"

// Kind tags the shape a FieldValue currently holds.
type Kind int

const (
	// Empty marks a value with nothing in it.
	Empty Kind = iota
	// Atom marks a plain string leaf.
	Atom
	// Rep marks a list of repetitions.
	Rep
	// Comp marks a list of components (or subcomponents).
	Comp
)

// FieldValue is the tagged union the source leans on structural polymorphism
// for: Empty | Atom(string) | Rep(list<FieldValue>) | Comp(list<FieldValue>).
// Every normalizer in this package pattern-matches on Kind rather than
// type-asserting against the hl7 interfaces directly.
type FieldValue struct {
	Kind  Kind
	Atom  string
	Items []FieldValue
}

// FromField builds a FieldValue from an hl7.Field, preserving its shape:
// a single repetition with no components collapses to Atom, multiple
// repetitions become Rep, and a single repetition with components becomes
// Comp directly (skipping the redundant one-element Rep wrapper).
func FromField(f hl7.Field) FieldValue {
	if f == nil {
		return FieldValue{Kind: Empty}
	}
	reps := f.Repetitions()
	if len(reps) == 0 {
		if f.Value() == "" {
			return FieldValue{Kind: Empty}
		}
		return FieldValue{Kind: Atom, Atom: f.Value()}
	}
	if len(reps) == 1 {
		return fromRepetition(reps[0])
	}
	items := make([]FieldValue, len(reps))
	for i, r := range reps {
		items[i] = fromRepetition(r)
	}
	return FieldValue{Kind: Rep, Items: items}
}

func fromRepetition(r hl7.Repetition) FieldValue {
	comps := r.Components()
	if len(comps) == 0 {
		if r.Value() == "" {
			return FieldValue{Kind: Empty}
		}
		return FieldValue{Kind: Atom, Atom: r.Value()}
	}
	if len(comps) == 1 {
		return fromComponent(comps[0])
	}
	items := make([]FieldValue, len(comps))
	for i, c := range comps {
		items[i] = fromComponent(c)
	}
	return FieldValue{Kind: Comp, Items: items}
}

func fromComponent(c hl7.Component) FieldValue {
	subs := c.SubComponents()
	if len(subs) <= 1 {
		if c.Value() == "" {
			return FieldValue{Kind: Empty}
		}
		return FieldValue{Kind: Atom, Atom: c.Value()}
	}
	items := make([]FieldValue, len(subs))
	for i, s := range subs {
		v := s.Value()
		if v == "" {
			items[i] = FieldValue{Kind: Empty}
		} else {
			items[i] = FieldValue{Kind: Atom, Atom: v}
		}
	}
	return FieldValue{Kind: Comp, Items: items}
}

// AsString collapses any shape to its first leaf string; Rep and Comp
// recurse into their first element. Matches the source's behavior of
// treating a single-element list as indistinguishable from an atom.
func AsString(v FieldValue) string {
	switch v.Kind {
	case Empty:
		return ""
	case Atom:
		return v.Atom
	case Rep, Comp:
		if len(v.Items) == 0 {
			return ""
		}
		return AsString(v.Items[0])
	default:
		return ""
	}
}

// AsRepetitions returns the repetition list of v. An Atom or Comp value is
// treated as a single-element repetition list.
func AsRepetitions(v FieldValue) []FieldValue {
	switch v.Kind {
	case Empty:
		return nil
	case Rep:
		return v.Items
	default:
		return []FieldValue{v}
	}
}

// Component returns the k-th (1-based) component of v. A Rep value answers
// from its first repetition. For an Atom or Empty value, index 1 returns v
// itself and any other index returns Empty —
// mirroring the source's tolerance for fields that never actually repeat.
func Component(v FieldValue, k int) FieldValue {
	if k < 1 {
		return FieldValue{Kind: Empty}
	}
	switch v.Kind {
	case Comp:
		if k-1 < len(v.Items) {
			return v.Items[k-1]
		}
		return FieldValue{Kind: Empty}
	case Rep:
		if len(v.Items) == 0 {
			return FieldValue{Kind: Empty}
		}
		return Component(v.Items[0], k)
	default:
		if k == 1 {
			return v
		}
		return FieldValue{Kind: Empty}
	}
}

// ComponentString is the common case: AsString(Component(v, k)).
func ComponentString(v FieldValue, k int) string {
	return AsString(Component(v, k))
}

// FieldString is a convenience wrapper for the common case of reading an
// hl7.Segment field directly into its collapsed string form. Delegates to
// hl7.Segment.FieldString, which implements the same leaf-collapse rule as
// AsString(FromField(f)).
func FieldString(seg hl7.Segment, fieldNum int) string {
	return seg.FieldString(fieldNum)
}

// FieldComponent reads a segment field and returns its k-th component as a
// collapsed string, tolerating fields that never repeat or never split into
// components. Delegates to hl7.Segment.FieldComponent.
func FieldComponent(seg hl7.Segment, fieldNum, k int) string {
	return seg.FieldComponent(fieldNum, k)
}

// DepthFirstStrings walks v and returns every Atom leaf, in order.
// Used to scan a whole field for an "@"-bearing substring regardless of
// which component or subcomponent it landed in.
func DepthFirstStrings(v FieldValue) []string {
	switch v.Kind {
	case Atom:
		return []string{v.Atom}
	case Rep, Comp:
		var out []string
		for _, item := range v.Items {
			out = append(out, DepthFirstStrings(item)...)
		}
		return out
	default:
		return nil
	}
}
