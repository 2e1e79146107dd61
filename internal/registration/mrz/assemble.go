package mrz

import (
	"strings"
	"time"

	"github.com/ywel/mrz/internal/registration/domain"
)

// centuryPivotOffset fixes the two-digit-year pivot rule: a year strictly
// greater than (reference year mod 100) + centuryPivotOffset is read as
// 19xx, anything else as 20xx. With a 2024 reference, "35" is 1935 and
// "34" is 2034.
const centuryPivotOffset = 10

// ResolvedField pairs a tokenized field with the text that survived
// checksum validation (raw or corrected) and its confidence.
type ResolvedField struct {
	Slice      FieldSlice
	Text       string
	Confidence domain.Confidence
}

// Assemble maps validated fields into an immutable IdentityRecord:
// dates are parsed with the fixed century-pivot rule, filler is trimmed
// from value fields and the name field is split on the double-filler
// separator. The only failure is a mandatory field that is entirely
// filler after resolution.
func Assemble(variant *Variant, fields []ResolvedField, ref time.Time) (*domain.IdentityRecord, error) {
	byName := make(map[string]ResolvedField, len(fields))
	confidence := make(map[string]domain.Confidence, len(fields))
	for _, f := range fields {
		if f.Slice.Kind == KindCheckDigit {
			continue
		}
		byName[f.Slice.Name] = f
		confidence[f.Slice.Name] = f.Confidence
		if f.Slice.Mandatory && isAllFiller(f.Text) {
			return nil, newDecodeError(ErrIncompleteRecord, StageAssembled, f.Slice.Name)
		}
	}

	rec := &domain.IdentityRecord{
		Format:          variant.Tag,
		Class:           documentClass(variant),
		DocumentType:    trimFiller(byName[FieldDocumentType].Text),
		IssuingCountry:  trimFiller(byName[FieldIssuingCountry].Text),
		DocumentNumber:  trimFiller(byName[FieldDocumentNumber].Text),
		Nationality:     trimFiller(byName[FieldNationality].Text),
		Sex:             trimFiller(byName[FieldSex].Text),
		OptionalData:    trimFiller(byName[FieldOptionalData].Text),
		OptionalData2:   trimFiller(byName[FieldOptionalData2].Text),
		FieldConfidence: confidence,
	}

	surname, given := splitName(byName[FieldName].Text)
	if surname == "" {
		return nil, newDecodeError(ErrIncompleteRecord, StageAssembled, FieldName)
	}
	rec.Surname = surname
	rec.GivenNames = given

	rec.DateOfBirth = parseDate(byName[FieldBirthDate], confidence, ref)
	rec.DocumentExpiry = parseDate(byName[FieldExpiryDate], confidence, ref)

	return rec, nil
}

// documentClass maps a layout variant to the broad class of document it
// encodes: visas for the MRV layouts, passports for TD3 booklets and
// identity cards for the TD1/TD2 card formats.
func documentClass(variant *Variant) domain.DocumentClass {
	switch {
	case variant.Visa:
		return domain.DocumentClassVisa
	case variant.Tag == TagTD3:
		return domain.DocumentClassPassport
	default:
		return domain.DocumentClassID
	}
}

// parseDate turns a YYMMDD field into a calendar date. A field that carries
// non-digit characters or an impossible calendar date cannot be trusted
// regardless of its checksum outcome, so its confidence is downgraded to
// unresolved and the zero time returned.
func parseDate(f ResolvedField, confidence map[string]domain.Confidence, ref time.Time) time.Time {
	s := f.Text
	if len(s) != 6 {
		confidence[f.Slice.Name] = domain.ConfidenceUnresolved
		return time.Time{}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			confidence[f.Slice.Name] = domain.ConfidenceUnresolved
			return time.Time{}
		}
	}

	yy := int(s[0]-'0')*10 + int(s[1]-'0')
	mm := int(s[2]-'0')*10 + int(s[3]-'0')
	dd := int(s[4]-'0')*10 + int(s[5]-'0')

	century := 2000
	if yy > ref.Year()%100+centuryPivotOffset {
		century = 1900
	}

	t := time.Date(century+yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if t.Year() != century+yy || int(t.Month()) != mm || t.Day() != dd {
		confidence[f.Slice.Name] = domain.ConfidenceUnresolved
		return time.Time{}
	}
	return t
}

// splitName separates the primary identifier (surname) from the secondary
// identifier (given names): a double filler divides the two, single fillers
// divide name parts within each.
func splitName(name string) (surname, given string) {
	name = trimFiller(name)
	parts := strings.SplitN(name, "<<", 2)
	surname = strings.TrimSpace(strings.ReplaceAll(trimFiller(parts[0]), string(filler), " "))
	if len(parts) == 2 {
		given = strings.TrimSpace(strings.ReplaceAll(trimFiller(parts[1]), string(filler), " "))
	}
	return surname, given
}
