package mrz

// DetectVariant classifies a cleaned text block against the closed set of
// layout tables. Matching is on line count and exact per-line length; no
// tolerance is applied, so OCR output that lost or gained characters is
// reported as unrecognized rather than guessed at.
//
// Two layouts share a line signature (TD3/MRV-A at 2x44, TD2/MRV-B at 2x36).
// Those are disambiguated on content: a leading 'V' document-type letter
// selects the visa layout, otherwise the layout defining the most fields
// wins as the more specific one.
func DetectVariant(lines []string) (*Variant, error) {
	var candidates []*Variant
	for i := range Variants {
		v := &Variants[i]
		if v.LineCount != len(lines) {
			continue
		}
		match := true
		for _, line := range lines {
			if len(line) != v.LineLength {
				match = false
				break
			}
		}
		if match {
			candidates = append(candidates, v)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, newDecodeError(ErrUnrecognizedFormat, StageFormatDetected, "")
	case 1:
		return candidates[0], nil
	}

	isVisa := len(lines[0]) > 0 && lines[0][0] == 'V'
	var best *Variant
	for _, v := range candidates {
		if v.Visa != isVisa {
			continue
		}
		if best == nil || v.FieldCount() > best.FieldCount() {
			best = v
		}
	}
	if best == nil {
		// No candidate agrees with the document-type letter; fall back to
		// the most specific layout rather than refusing a matching length.
		for _, v := range candidates {
			if best == nil || v.FieldCount() > best.FieldCount() {
				best = v
			}
		}
	}
	return best, nil
}
