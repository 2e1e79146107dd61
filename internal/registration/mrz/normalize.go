package mrz

import "strings"

const filler = '<'

// CleanLines normalizes raw OCR output into MRZ-charset lines: blank lines
// are dropped, whitespace inside a line is removed, letters are uppercased
// and anything outside A-Z, 0-9 and '<' becomes the filler character.
// This never fails; unrecoverable garbage is detected downstream.
func CleanLines(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		b.Grow(len(line))
		for _, r := range strings.ToUpper(line) {
			switch {
			case r == ' ' || r == '\t' || r == '\r':
				// OCR engines often inject spurious spacing
			case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == filler:
				b.WriteRune(r)
			default:
				b.WriteRune(filler)
			}
		}
		if b.Len() == 0 {
			continue
		}
		cleaned = append(cleaned, b.String())
	}
	return cleaned
}

// FitLines pads each line with filler or truncates it to the expected
// length for the current format hypothesis.
func FitLines(lines []string, length int) []string {
	fitted := make([]string, len(lines))
	for i, line := range lines {
		fitted[i] = fitLine(line, length)
	}
	return fitted
}

func fitLine(line string, length int) string {
	if len(line) >= length {
		return line[:length]
	}
	return line + strings.Repeat(string(filler), length-len(line))
}

// trimFiller strips leading and trailing filler characters from a field.
func trimFiller(s string) string {
	return strings.Trim(s, string(filler))
}

// isAllFiller reports whether a field carries no content at all.
func isAllFiller(s string) bool {
	return trimFiller(s) == ""
}
