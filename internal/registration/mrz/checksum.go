package mrz

// checksumWeights is the weight cycle of the ICAO 9303 check-digit scheme,
// restarting at position 0 of every checked field.
var checksumWeights = [3]int{7, 3, 1}

// ChecksumResult is the outcome of recomputing one check digit.
// Skipped marks the trivial case of an entirely empty optional field whose
// declared check digit is filler.
type ChecksumResult struct {
	FieldName     string
	ExpectedDigit byte
	ComputedDigit int
	Passed        bool
	Skipped       bool
}

// charValue maps an MRZ character to its checksum value: digits map to
// themselves, A-Z to 10-35 and the filler to 0. Any other character (which
// the normalizer should have replaced) also counts as 0.
func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return 0
	}
}

// ComputeCheckDigit computes the weighted modulo-10 check digit over the
// given characters. It is a pure function: identical input always yields
// the identical digit.
func ComputeCheckDigit(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += charValue(s[i]) * checksumWeights[i%3]
	}
	return sum % 10
}

// Validate recomputes the check digit over a field's text and compares it
// against the declared check-digit character. A filler check digit fails
// unless the field itself is entirely filler, in which case the check is
// trivially satisfied. A mismatch is an expected condition, never an error:
// the caller routes it to the ambiguity resolver.
func Validate(fieldName, fieldText string, expected byte) ChecksumResult {
	result := ChecksumResult{
		FieldName:     fieldName,
		ExpectedDigit: expected,
		ComputedDigit: ComputeCheckDigit(fieldText),
	}

	if expected == filler {
		if isAllFiller(fieldText) {
			result.Passed = true
			result.Skipped = true
		}
		return result
	}
	if expected < '0' || expected > '9' {
		return result
	}

	result.Passed = result.ComputedDigit == int(expected-'0')
	return result
}
