package mrz

// FieldSlice is one tokenized field: a named view into a line of the text
// block. Slices are never mutated; the resolver produces replacement text
// separately so the raw reading is always retained.
type FieldSlice struct {
	Name      string
	Raw       string
	Line      int
	Start     int
	Length    int
	Kind      FieldKind
	Group     string
	Mandatory bool
}

// Tokenize slices every field descriptor of the detected variant out of the
// normalized text block. It is a pure transform. Lines are expected to have
// been fitted to the variant's length already; a shorter line is reported
// as truncated rather than sliced out of range.
func Tokenize(lines []string, variant *Variant) ([]FieldSlice, error) {
	slices := make([]FieldSlice, 0, len(variant.Fields))
	for _, fd := range variant.Fields {
		if fd.Line >= len(lines) {
			return nil, newDecodeError(ErrTruncatedLine, StageTokenized, fd.Name)
		}
		line := lines[fd.Line]
		if fd.Start+fd.Length > len(line) {
			return nil, newDecodeError(ErrTruncatedLine, StageTokenized, fd.Name)
		}
		slices = append(slices, FieldSlice{
			Name:      fd.Name,
			Raw:       line[fd.Start : fd.Start+fd.Length],
			Line:      fd.Line,
			Start:     fd.Start,
			Length:    fd.Length,
			Kind:      fd.Kind,
			Group:     fd.Group,
			Mandatory: fd.Mandatory,
		})
	}
	return slices, nil
}

// compositeText concatenates the character spans the composite check digit
// is defined over.
func compositeText(lines []string, spans []Span) (string, error) {
	var text string
	for _, sp := range spans {
		if sp.Line >= len(lines) || sp.Start+sp.Length > len(lines[sp.Line]) {
			return "", newDecodeError(ErrTruncatedLine, StageTokenized, FieldComposite)
		}
		text += lines[sp.Line][sp.Start : sp.Start+sp.Length]
	}
	return text, nil
}
