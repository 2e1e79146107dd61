package mrz

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ywel/mrz/internal/registration/domain"
)

// Reference time for the century-pivot rule in all decode tests.
var testClock = func() time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func newTestDecoder() *Decoder {
	return NewDecoder(WithClock(testClock))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDecode_TD3_ICAOSpecimen(t *testing.T) {
	rec, err := newTestDecoder().Decode([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	})
	require.NoError(t, err)

	assert.Equal(t, TagTD3, rec.Format)
	assert.Equal(t, domain.DocumentClassPassport, rec.Class)
	assert.Equal(t, "P", rec.DocumentType)
	assert.Equal(t, "UTO", rec.IssuingCountry)
	assert.Equal(t, "ERIKSSON", rec.Surname)
	assert.Equal(t, "ANNA MARIA", rec.GivenNames)
	assert.Equal(t, "L898902C3", rec.DocumentNumber)
	assert.Equal(t, "UTO", rec.Nationality)
	assert.Equal(t, "F", rec.Sex)
	assert.Equal(t, date(1974, time.August, 12), rec.DateOfBirth)
	assert.Equal(t, date(2012, time.April, 15), rec.DocumentExpiry)
	assert.Equal(t, "ZE184226B", rec.OptionalData)

	// Every checked field carries passing checksum evidence.
	for _, name := range []string{FieldDocumentNumber, FieldBirthDate, FieldExpiryDate, FieldOptionalData, FieldComposite} {
		assert.Equal(t, domain.ConfidenceExact, rec.FieldConfidence[name], "field %s", name)
	}
	assert.Empty(t, rec.Unresolved())
}

func TestDecode_TD1(t *testing.T) {
	rec, err := newTestDecoder().Decode([]string{
		"I<UTOD231458907<<<<<<<<<<<<<<<",
		"7408122F1204159UTO<<<<<<<<<<<6",
		"ERIKSSON<<ANNA<MARIA<<<<<<<<<<",
	})
	require.NoError(t, err)

	assert.Equal(t, TagTD1, rec.Format)
	assert.Equal(t, domain.DocumentClassID, rec.Class)
	assert.Equal(t, "I", rec.DocumentType)
	assert.Equal(t, "D23145890", rec.DocumentNumber)
	assert.Equal(t, "ERIKSSON", rec.Surname)
	assert.Equal(t, "ANNA MARIA", rec.GivenNames)
	assert.Equal(t, "UTO", rec.Nationality)
	assert.Equal(t, date(1974, time.August, 12), rec.DateOfBirth)
	assert.Equal(t, date(2012, time.April, 15), rec.DocumentExpiry)
	assert.Empty(t, rec.OptionalData)
	assert.Empty(t, rec.OptionalData2)
	assert.Equal(t, domain.ConfidenceExact, rec.FieldConfidence[FieldComposite])
}

func TestDecode_TD2(t *testing.T) {
	rec, err := newTestDecoder().Decode([]string{
		"I<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<",
		"D231458907UTO7408122F1204159<<<<<<<6",
	})
	require.NoError(t, err)

	assert.Equal(t, TagTD2, rec.Format)
	assert.Equal(t, domain.DocumentClassID, rec.Class)
	assert.Equal(t, "D23145890", rec.DocumentNumber)
	assert.Equal(t, "ERIKSSON", rec.Surname)
	assert.Equal(t, domain.ConfidenceExact, rec.FieldConfidence[FieldComposite])
}

func TestDecode_MRVA(t *testing.T) {
	rec, err := newTestDecoder().Decode([]string{
		"V<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L8988901C4XXX4009078F96121096ZE184226B<<<<<<",
	})
	require.NoError(t, err)

	assert.Equal(t, TagMRVA, rec.Format)
	assert.Equal(t, domain.DocumentClassVisa, rec.Class)
	assert.Equal(t, "V", rec.DocumentType)
	assert.Equal(t, "L8988901C", rec.DocumentNumber)
	assert.Equal(t, date(1940, time.September, 7), rec.DateOfBirth)
	assert.Equal(t, date(1996, time.December, 10), rec.DocumentExpiry)

	// Visa layouts define no composite check digit.
	_, ok := rec.FieldConfidence[FieldComposite]
	assert.False(t, ok)
}

func TestDecode_MRVB(t *testing.T) {
	rec, err := newTestDecoder().Decode([]string{
		"V<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<",
		"L8988901C4XXX4009078F96121096ZE18422",
	})
	require.NoError(t, err)

	assert.Equal(t, TagMRVB, rec.Format)
	assert.Equal(t, domain.DocumentClassVisa, rec.Class)
	assert.Equal(t, "L8988901C", rec.DocumentNumber)
}

func TestDecode_NormalizesNoisyInput(t *testing.T) {
	// Lowercase and stray spacing must both survive normalization.
	rec, err := newTestDecoder().Decode([]string{
		"p<uto eriksson<<anna<maria<<<<<<<<<<<<<<<<<<< ",
		"l898902c36uto7408122f1204159ze184226b<<<<<10",
	})
	require.NoError(t, err)
	assert.Equal(t, "ERIKSSON", rec.Surname)
	assert.Equal(t, "L898902C3", rec.DocumentNumber)
}

func TestDecode_OCRNoiseCorrectedByResolver(t *testing.T) {
	// The document number's 0 misread as the letter O: the checksum
	// constraint pins the reinterpretation back to the digit.
	rec, err := newTestDecoder().Decode([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L8989O2C36UTO7408122F1204159ZE184226B<<<<<10",
	})
	require.NoError(t, err)

	assert.Equal(t, "L898902C3", rec.DocumentNumber)
	assert.Equal(t, domain.ConfidenceCorrected, rec.FieldConfidence[FieldDocumentNumber])
	// The composite is recomputed over the corrected text and passes.
	assert.Equal(t, domain.ConfidenceExact, rec.FieldConfidence[FieldComposite])
}

func TestDecode_UnresolvableFieldKeepsRawText(t *testing.T) {
	// 9 corrupted to 7: neither glyph is in the confusion table, so no
	// bounded reinterpretation passes. The raw reading is kept and the
	// field flagged, never silently presented as confident.
	rec, err := newTestDecoder().Decode([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L897902C36UTO7408122F1204159ZE184226B<<<<<10",
	})
	require.NoError(t, err)

	assert.Equal(t, "L897902C3", rec.DocumentNumber)
	assert.Equal(t, domain.ConfidenceUnresolved, rec.FieldConfidence[FieldDocumentNumber])
	assert.Contains(t, rec.Unresolved(), FieldDocumentNumber)
}

func TestDecode_CenturyPivot(t *testing.T) {
	// With a 2024 reference the pivot sits at 34: year 35 resolves to the
	// previous century, 34 to the current one.
	rec, err := newTestDecoder().Decode([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO3501014F3401011<<<<<<<<<<<<<<<0",
	})
	require.NoError(t, err)

	assert.Equal(t, date(1935, time.January, 1), rec.DateOfBirth)
	assert.Equal(t, date(2034, time.January, 1), rec.DocumentExpiry)
}

func TestDecode_EmptyOptionalFieldIsTriviallyExact(t *testing.T) {
	rec, err := newTestDecoder().Decode([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO3501014F3401011<<<<<<<<<<<<<<<0",
	})
	require.NoError(t, err)

	assert.Empty(t, rec.OptionalData)
	assert.Equal(t, domain.ConfidenceExact, rec.FieldConfidence[FieldOptionalData])
}

func TestDecode_IncompleteRecord(t *testing.T) {
	// Document number entirely filler: its check digit is trivially
	// consistent but the mandatory field is unreadable.
	_, err := newTestDecoder().Decode([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"<<<<<<<<<0UTO7408122F1204159<<<<<<<<<<<<<<<0",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteRecord))

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, FieldDocumentNumber, decodeErr.Field)
	assert.Equal(t, StageAssembled, decodeErr.Stage)
}

func TestDecode_UnrecognizedGarbage(t *testing.T) {
	rec, err := newTestDecoder().Decode([]string{"HELLO WORLD", "THIS IS NOT AN MRZ AT ALL"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))
	assert.Nil(t, rec, "no partially populated record on format failure")
}

func TestDecode_EmptyInput(t *testing.T) {
	_, err := newTestDecoder().Decode(nil)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))
}

func TestDecode_Idempotent(t *testing.T) {
	lines := []string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	}
	d := newTestDecoder()

	first, err := d.Decode(lines)
	require.NoError(t, err)
	second, err := d.Decode(lines)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestTokenize_TruncatedLineIsDefensivelyChecked(t *testing.T) {
	variant, err := DetectVariant([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	})
	require.NoError(t, err)

	_, err = Tokenize([]string{"P<UTO", "L89"}, variant)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedLine))
}
