package mrz

// confusions is the fixed table of OCR glyph confusions the resolver may
// reinterpret, applied symmetrically per character.
var confusions = map[byte]byte{
	'O': '0', '0': 'O',
	'I': '1', '1': 'I',
	'S': '5', '5': 'S',
	'B': '8', '8': 'B',
	'Z': '2', '2': 'Z',
	'G': '6', '6': 'G',
}

// MaxCandidates hard-caps the number of reinterpretations explored for one
// field, keeping resolution latency bounded regardless of field length or
// noise level.
const MaxCandidates = 1024

// Resolution is the outcome of a bounded ambiguity search.
type Resolution struct {
	// Text is the accepted reinterpretation when Resolved, otherwise the
	// original raw text.
	Text string
	// Distance is the number of substituted characters (0 when unresolved).
	Distance int
	// Candidates is how many reinterpretations were explored.
	Candidates int
	Resolved   bool
}

// Resolve attempts to repair a field whose checksum failed by substituting
// commonly confused glyphs. Single substitutions are explored first, then
// pairs, never more, and never beyond MaxCandidates evaluations. Among
// passing candidates at the same distance the one with the fewest
// letter-to-digit substitutions wins, then enumeration order. The search
// never invents a value: with no passing candidate the raw text is kept
// and the field stays unresolved.
func Resolve(fieldText string, expected byte) Resolution {
	res := Resolution{Text: fieldText}
	if expected < '0' || expected > '9' {
		return res
	}
	want := int(expected - '0')

	// Positions where the glyph has a confusion counterpart.
	var positions []int
	for i := 0; i < len(fieldText); i++ {
		if _, ok := confusions[fieldText[i]]; ok {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return res
	}

	type candidate struct {
		text           string
		lettersToDigit int
	}
	var passing []candidate

	evaluate := func(text string, lettersToDigit int) bool {
		res.Candidates++
		if ComputeCheckDigit(text) == want {
			passing = append(passing, candidate{text, lettersToDigit})
		}
		return res.Candidates < MaxCandidates
	}

	accept := func(distance int) Resolution {
		best := passing[0]
		for _, c := range passing[1:] {
			if c.lettersToDigit < best.lettersToDigit {
				best = c
			}
		}
		res.Text = best.text
		res.Distance = distance
		res.Resolved = true
		return res
	}

	buf := []byte(fieldText)

	// Distance 1.
	for _, i := range positions {
		orig := buf[i]
		buf[i] = confusions[orig]
		ok := evaluate(string(buf), letterToDigit(orig, buf[i]))
		buf[i] = orig
		if !ok {
			if len(passing) > 0 {
				return accept(1)
			}
			return res
		}
	}
	if len(passing) > 0 {
		return accept(1)
	}

	// Distance 2.
	for a := 0; a < len(positions); a++ {
		for b := a + 1; b < len(positions); b++ {
			i, j := positions[a], positions[b]
			origI, origJ := buf[i], buf[j]
			buf[i], buf[j] = confusions[origI], confusions[origJ]
			n := letterToDigit(origI, buf[i]) + letterToDigit(origJ, buf[j])
			ok := evaluate(string(buf), n)
			buf[i], buf[j] = origI, origJ
			if !ok {
				if len(passing) > 0 {
					return accept(2)
				}
				return res
			}
		}
	}
	if len(passing) > 0 {
		return accept(2)
	}
	return res
}

func letterToDigit(from, to byte) int {
	if from >= 'A' && from <= 'Z' && to >= '0' && to <= '9' {
		return 1
	}
	return 0
}
