package mrz

import (
	"time"

	"github.com/ywel/mrz/internal/registration/domain"
)

// Decoder runs the full MRZ pipeline: normalize, detect the layout variant,
// tokenize, validate checksums, resolve OCR ambiguities and assemble the
// identity record. A Decoder holds no per-document state, so one instance
// can serve any number of concurrent decodes.
type Decoder struct {
	now func() time.Time
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithClock overrides the reference time used by the century-pivot rule.
func WithClock(now func() time.Time) Option {
	return func(d *Decoder) { d.now = now }
}

// NewDecoder creates a decoder with the given options.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode transforms raw OCR text lines into a validated IdentityRecord.
// Checksum failures never abort the decode; they are routed through the
// ambiguity resolver and surface as per-field confidence. The fatal
// failures are ErrUnrecognizedFormat, ErrTruncatedLine and
// ErrIncompleteRecord, each wrapped in a DecodeError naming the stage
// and field.
func (d *Decoder) Decode(rawLines []string) (*domain.IdentityRecord, error) {
	lines := CleanLines(rawLines)

	variant, err := DetectVariant(lines)
	if err != nil {
		return nil, err
	}

	lines = FitLines(lines, variant.LineLength)

	slices, err := Tokenize(lines, variant)
	if err != nil {
		return nil, err
	}

	fields, corrected := validateFields(slices, lines)

	if variant.Composite != nil {
		fields = append(fields, validateComposite(variant, corrected))
	}

	return Assemble(variant, fields, d.now())
}

// validateFields checks every field that carries a check digit, invoking
// the resolver on failures. It returns the resolved fields plus a copy of
// the lines with accepted corrections spliced in, which the composite
// check is computed over.
func validateFields(slices []FieldSlice, lines []string) ([]ResolvedField, []string) {
	checkDigits := make(map[string]FieldSlice)
	for _, s := range slices {
		if s.Kind == KindCheckDigit {
			checkDigits[s.Group] = s
		}
	}

	corrected := make([]string, len(lines))
	copy(corrected, lines)

	fields := make([]ResolvedField, 0, len(slices))
	for _, s := range slices {
		if s.Kind == KindCheckDigit {
			fields = append(fields, ResolvedField{Slice: s, Text: s.Raw, Confidence: domain.ConfidenceExact})
			continue
		}

		check, checked := checkDigits[s.Group]
		if !checked || s.Group == "" {
			fields = append(fields, ResolvedField{Slice: s, Text: s.Raw, Confidence: domain.ConfidenceExact})
			continue
		}

		expected := check.Raw[0]
		result := Validate(s.Name, s.Raw, expected)
		if result.Passed {
			fields = append(fields, ResolvedField{Slice: s, Text: s.Raw, Confidence: domain.ConfidenceExact})
			continue
		}

		res := Resolve(s.Raw, expected)
		if res.Resolved {
			corrected[s.Line] = spliceLine(corrected[s.Line], s.Start, res.Text)
			fields = append(fields, ResolvedField{Slice: s, Text: res.Text, Confidence: domain.ConfidenceCorrected})
			continue
		}
		// Keep the raw reading; the record carries the unresolved flag.
		fields = append(fields, ResolvedField{Slice: s, Text: s.Raw, Confidence: domain.ConfidenceUnresolved})
	}

	return fields, corrected
}

// validateComposite recomputes the variant's final check digit over the
// corrected lines. A failure is resolved for confidence only: accepted
// substitutions inside the composite span are not written back into fields
// that already carry their own passing checksums.
func validateComposite(variant *Variant, lines []string) ResolvedField {
	slice := FieldSlice{
		Name:   FieldComposite,
		Line:   variant.Composite.CheckPos.Line,
		Start:  variant.Composite.CheckPos.Start,
		Length: variant.Composite.CheckPos.Length,
		Kind:   KindAlphanumeric,
	}

	text, err := compositeText(lines, variant.Composite.Spans)
	if err != nil {
		return ResolvedField{Slice: slice, Confidence: domain.ConfidenceUnresolved}
	}
	slice.Raw = text

	pos := variant.Composite.CheckPos
	expected := lines[pos.Line][pos.Start]

	result := Validate(FieldComposite, text, expected)
	if result.Passed {
		return ResolvedField{Slice: slice, Text: text, Confidence: domain.ConfidenceExact}
	}
	if res := Resolve(text, expected); res.Resolved {
		return ResolvedField{Slice: slice, Text: text, Confidence: domain.ConfidenceCorrected}
	}
	return ResolvedField{Slice: slice, Text: text, Confidence: domain.ConfidenceUnresolved}
}

func spliceLine(line string, start int, text string) string {
	return line[:start] + text + line[start+len(text):]
}
