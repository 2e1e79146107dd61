package mrz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_SingleSubstitution(t *testing.T) {
	// "L898902C3" with its '0' misread as 'O'; check digit 6 only holds
	// for the original text.
	res := Resolve("L8989O2C3", '6')

	require.True(t, res.Resolved)
	assert.Equal(t, "L898902C3", res.Text)
	assert.Equal(t, 1, res.Distance)
}

func TestResolve_DoubleSubstitution_TieBreak(t *testing.T) {
	// Two distance-2 candidates pass for this corruption: LB9890ZC3
	// (one letter-to-digit substitution) and L898902C3 (two). The
	// documented tie-break prefers the fewest letter-to-digit swaps.
	res := Resolve("L8989OZC3", '6')

	require.True(t, res.Resolved)
	assert.Equal(t, 2, res.Distance)
	assert.Equal(t, "LB9890ZC3", res.Text)
}

func TestResolve_NoPassingCandidate_KeepsRaw(t *testing.T) {
	// '9' has no confusion counterpart, so the corruption 9->7 is out of
	// reach; no reinterpretation within the bound satisfies digit 6.
	res := Resolve("L897902C3", '6')

	assert.False(t, res.Resolved)
	assert.Equal(t, "L897902C3", res.Text, "raw text must be kept")
	assert.Equal(t, 0, res.Distance)
}

func TestResolve_NoConfusableCharacters(t *testing.T) {
	res := Resolve("YYYYYY", '3')

	assert.False(t, res.Resolved)
	assert.Equal(t, 0, res.Candidates)
}

func TestResolve_FillerCheckDigitNeverResolves(t *testing.T) {
	res := Resolve("L8989O2C3", '<')

	assert.False(t, res.Resolved)
	assert.Equal(t, 0, res.Candidates)
}

func TestResolve_CandidateCap(t *testing.T) {
	// Every character is confusable, so an unbounded distance-2 search
	// over 100 positions would explore ~5000 pairs. The cap must hold
	// regardless of field length.
	text := strings.Repeat("O", 100)
	want := (ComputeCheckDigit(text) + 5) % 10 // guaranteed mismatch

	res := Resolve(text, byte('0'+want))

	assert.LessOrEqual(t, res.Candidates, MaxCandidates)
}

func TestResolve_Deterministic(t *testing.T) {
	first := Resolve("L8989OZC3", '6')
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve("L8989OZC3", '6'))
	}
}

func TestConfusionTableIsSymmetric(t *testing.T) {
	for from, to := range confusions {
		back, ok := confusions[to]
		require.True(t, ok, "missing reverse mapping for %c", to)
		assert.Equal(t, from, back)
	}
}
