package mrz

// FieldKind classifies the characters a field descriptor may contain.
type FieldKind string

const (
	KindAlpha        FieldKind = "alpha"
	KindNumeric      FieldKind = "numeric"
	KindAlphanumeric FieldKind = "alphanumeric"
	KindCheckDigit   FieldKind = "checkdigit"
	KindFiller       FieldKind = "filler"
)

// Well-known field names shared by all layout variants.
const (
	FieldDocumentType        = "document_type"
	FieldIssuingCountry      = "issuing_country"
	FieldDocumentNumber      = "document_number"
	FieldDocumentNumberCheck = "document_number_check"
	FieldName                = "name"
	FieldNationality         = "nationality"
	FieldBirthDate           = "birth_date"
	FieldBirthDateCheck      = "birth_date_check"
	FieldSex                 = "sex"
	FieldExpiryDate          = "expiry_date"
	FieldExpiryDateCheck     = "expiry_date_check"
	FieldOptionalData        = "optional_data"
	FieldOptionalDataCheck   = "optional_data_check"
	FieldOptionalData2       = "optional_data_2"
	FieldComposite           = "composite"
)

// FieldDescriptor is one fixed-width slot in an MRZ layout table.
// Fields carrying a check digit share a Group with their checkdigit
// descriptor so the checksum engine can pair them up.
type FieldDescriptor struct {
	Name      string
	Line      int
	Start     int
	Length    int
	Kind      FieldKind
	Group     string
	Mandatory bool
}

// Span addresses a contiguous run of characters inside one line, used to
// describe the character ranges the composite check digit covers.
type Span struct {
	Line   int
	Start  int
	Length int
}

// CompositeSpec defines a variant's final check digit: the spans whose
// concatenation it is computed over, and where the digit itself sits.
type CompositeSpec struct {
	Spans    []Span
	CheckPos Span
}

// Variant is a supported MRZ layout: line geometry plus an ordered field
// table. Adding a document variant is a data change here, nothing else.
type Variant struct {
	Tag        string
	LineCount  int
	LineLength int
	Fields     []FieldDescriptor
	Composite  *CompositeSpec
	Visa       bool
}

// FieldCount reports how many descriptors the layout defines, used to pick
// the most specific variant when two layouts share a line signature.
func (v *Variant) FieldCount() int {
	n := len(v.Fields)
	if v.Composite != nil {
		n++
	}
	return n
}

// TotalLength is the variant's full text size in characters.
func (v *Variant) TotalLength() int {
	return v.LineCount * v.LineLength
}

// Variant tags.
const (
	TagTD1  = "TD1"
	TagTD2  = "TD2"
	TagTD3  = "TD3"
	TagMRVA = "MRV-A"
	TagMRVB = "MRV-B"
)

// Variants is the closed set of supported layouts, in preference order.
// TD1/TD2/TD3 carry a composite (final) check digit; the two-line visa
// formats define no composite position.
var Variants = []Variant{
	{
		Tag:        TagTD1,
		LineCount:  3,
		LineLength: 30,
		Fields: []FieldDescriptor{
			{Name: FieldDocumentType, Line: 0, Start: 0, Length: 2, Kind: KindAlpha},
			{Name: FieldIssuingCountry, Line: 0, Start: 2, Length: 3, Kind: KindAlpha},
			{Name: FieldDocumentNumber, Line: 0, Start: 5, Length: 9, Kind: KindAlphanumeric, Group: FieldDocumentNumber, Mandatory: true},
			{Name: FieldDocumentNumberCheck, Line: 0, Start: 14, Length: 1, Kind: KindCheckDigit, Group: FieldDocumentNumber},
			{Name: FieldOptionalData, Line: 0, Start: 15, Length: 15, Kind: KindAlphanumeric},
			{Name: FieldBirthDate, Line: 1, Start: 0, Length: 6, Kind: KindNumeric, Group: FieldBirthDate, Mandatory: true},
			{Name: FieldBirthDateCheck, Line: 1, Start: 6, Length: 1, Kind: KindCheckDigit, Group: FieldBirthDate},
			{Name: FieldSex, Line: 1, Start: 7, Length: 1, Kind: KindAlpha},
			{Name: FieldExpiryDate, Line: 1, Start: 8, Length: 6, Kind: KindNumeric, Group: FieldExpiryDate, Mandatory: true},
			{Name: FieldExpiryDateCheck, Line: 1, Start: 14, Length: 1, Kind: KindCheckDigit, Group: FieldExpiryDate},
			{Name: FieldNationality, Line: 1, Start: 15, Length: 3, Kind: KindAlpha},
			{Name: FieldOptionalData2, Line: 1, Start: 18, Length: 11, Kind: KindAlphanumeric},
			{Name: FieldName, Line: 2, Start: 0, Length: 30, Kind: KindAlpha, Mandatory: true},
		},
		Composite: &CompositeSpec{
			Spans: []Span{
				{Line: 0, Start: 5, Length: 25},
				{Line: 1, Start: 0, Length: 7},
				{Line: 1, Start: 8, Length: 7},
				{Line: 1, Start: 18, Length: 11},
			},
			CheckPos: Span{Line: 1, Start: 29, Length: 1},
		},
	},
	{
		Tag:        TagTD2,
		LineCount:  2,
		LineLength: 36,
		Fields: []FieldDescriptor{
			{Name: FieldDocumentType, Line: 0, Start: 0, Length: 2, Kind: KindAlpha},
			{Name: FieldIssuingCountry, Line: 0, Start: 2, Length: 3, Kind: KindAlpha},
			{Name: FieldName, Line: 0, Start: 5, Length: 31, Kind: KindAlpha, Mandatory: true},
			{Name: FieldDocumentNumber, Line: 1, Start: 0, Length: 9, Kind: KindAlphanumeric, Group: FieldDocumentNumber, Mandatory: true},
			{Name: FieldDocumentNumberCheck, Line: 1, Start: 9, Length: 1, Kind: KindCheckDigit, Group: FieldDocumentNumber},
			{Name: FieldNationality, Line: 1, Start: 10, Length: 3, Kind: KindAlpha},
			{Name: FieldBirthDate, Line: 1, Start: 13, Length: 6, Kind: KindNumeric, Group: FieldBirthDate, Mandatory: true},
			{Name: FieldBirthDateCheck, Line: 1, Start: 19, Length: 1, Kind: KindCheckDigit, Group: FieldBirthDate},
			{Name: FieldSex, Line: 1, Start: 20, Length: 1, Kind: KindAlpha},
			{Name: FieldExpiryDate, Line: 1, Start: 21, Length: 6, Kind: KindNumeric, Group: FieldExpiryDate, Mandatory: true},
			{Name: FieldExpiryDateCheck, Line: 1, Start: 27, Length: 1, Kind: KindCheckDigit, Group: FieldExpiryDate},
			{Name: FieldOptionalData, Line: 1, Start: 28, Length: 7, Kind: KindAlphanumeric},
		},
		Composite: &CompositeSpec{
			Spans: []Span{
				{Line: 1, Start: 0, Length: 10},
				{Line: 1, Start: 13, Length: 7},
				{Line: 1, Start: 21, Length: 14},
			},
			CheckPos: Span{Line: 1, Start: 35, Length: 1},
		},
	},
	{
		Tag:        TagTD3,
		LineCount:  2,
		LineLength: 44,
		Fields: []FieldDescriptor{
			{Name: FieldDocumentType, Line: 0, Start: 0, Length: 2, Kind: KindAlpha},
			{Name: FieldIssuingCountry, Line: 0, Start: 2, Length: 3, Kind: KindAlpha},
			{Name: FieldName, Line: 0, Start: 5, Length: 39, Kind: KindAlpha, Mandatory: true},
			{Name: FieldDocumentNumber, Line: 1, Start: 0, Length: 9, Kind: KindAlphanumeric, Group: FieldDocumentNumber, Mandatory: true},
			{Name: FieldDocumentNumberCheck, Line: 1, Start: 9, Length: 1, Kind: KindCheckDigit, Group: FieldDocumentNumber},
			{Name: FieldNationality, Line: 1, Start: 10, Length: 3, Kind: KindAlpha},
			{Name: FieldBirthDate, Line: 1, Start: 13, Length: 6, Kind: KindNumeric, Group: FieldBirthDate, Mandatory: true},
			{Name: FieldBirthDateCheck, Line: 1, Start: 19, Length: 1, Kind: KindCheckDigit, Group: FieldBirthDate},
			{Name: FieldSex, Line: 1, Start: 20, Length: 1, Kind: KindAlpha},
			{Name: FieldExpiryDate, Line: 1, Start: 21, Length: 6, Kind: KindNumeric, Group: FieldExpiryDate, Mandatory: true},
			{Name: FieldExpiryDateCheck, Line: 1, Start: 27, Length: 1, Kind: KindCheckDigit, Group: FieldExpiryDate},
			{Name: FieldOptionalData, Line: 1, Start: 28, Length: 14, Kind: KindAlphanumeric, Group: FieldOptionalData},
			{Name: FieldOptionalDataCheck, Line: 1, Start: 42, Length: 1, Kind: KindCheckDigit, Group: FieldOptionalData},
		},
		Composite: &CompositeSpec{
			Spans: []Span{
				{Line: 1, Start: 0, Length: 10},
				{Line: 1, Start: 13, Length: 7},
				{Line: 1, Start: 21, Length: 22},
			},
			CheckPos: Span{Line: 1, Start: 43, Length: 1},
		},
	},
	{
		Tag:        TagMRVA,
		LineCount:  2,
		LineLength: 44,
		Visa:       true,
		Fields: []FieldDescriptor{
			{Name: FieldDocumentType, Line: 0, Start: 0, Length: 2, Kind: KindAlpha},
			{Name: FieldIssuingCountry, Line: 0, Start: 2, Length: 3, Kind: KindAlpha},
			{Name: FieldName, Line: 0, Start: 5, Length: 39, Kind: KindAlpha, Mandatory: true},
			{Name: FieldDocumentNumber, Line: 1, Start: 0, Length: 9, Kind: KindAlphanumeric, Group: FieldDocumentNumber, Mandatory: true},
			{Name: FieldDocumentNumberCheck, Line: 1, Start: 9, Length: 1, Kind: KindCheckDigit, Group: FieldDocumentNumber},
			{Name: FieldNationality, Line: 1, Start: 10, Length: 3, Kind: KindAlpha},
			{Name: FieldBirthDate, Line: 1, Start: 13, Length: 6, Kind: KindNumeric, Group: FieldBirthDate, Mandatory: true},
			{Name: FieldBirthDateCheck, Line: 1, Start: 19, Length: 1, Kind: KindCheckDigit, Group: FieldBirthDate},
			{Name: FieldSex, Line: 1, Start: 20, Length: 1, Kind: KindAlpha},
			{Name: FieldExpiryDate, Line: 1, Start: 21, Length: 6, Kind: KindNumeric, Group: FieldExpiryDate, Mandatory: true},
			{Name: FieldExpiryDateCheck, Line: 1, Start: 27, Length: 1, Kind: KindCheckDigit, Group: FieldExpiryDate},
			{Name: FieldOptionalData, Line: 1, Start: 28, Length: 16, Kind: KindAlphanumeric},
		},
	},
	{
		Tag:        TagMRVB,
		LineCount:  2,
		LineLength: 36,
		Visa:       true,
		Fields: []FieldDescriptor{
			{Name: FieldDocumentType, Line: 0, Start: 0, Length: 2, Kind: KindAlpha},
			{Name: FieldIssuingCountry, Line: 0, Start: 2, Length: 3, Kind: KindAlpha},
			{Name: FieldName, Line: 0, Start: 5, Length: 31, Kind: KindAlpha, Mandatory: true},
			{Name: FieldDocumentNumber, Line: 1, Start: 0, Length: 9, Kind: KindAlphanumeric, Group: FieldDocumentNumber, Mandatory: true},
			{Name: FieldDocumentNumberCheck, Line: 1, Start: 9, Length: 1, Kind: KindCheckDigit, Group: FieldDocumentNumber},
			{Name: FieldNationality, Line: 1, Start: 10, Length: 3, Kind: KindAlpha},
			{Name: FieldBirthDate, Line: 1, Start: 13, Length: 6, Kind: KindNumeric, Group: FieldBirthDate, Mandatory: true},
			{Name: FieldBirthDateCheck, Line: 1, Start: 19, Length: 1, Kind: KindCheckDigit, Group: FieldBirthDate},
			{Name: FieldSex, Line: 1, Start: 20, Length: 1, Kind: KindAlpha},
			{Name: FieldExpiryDate, Line: 1, Start: 21, Length: 6, Kind: KindNumeric, Group: FieldExpiryDate, Mandatory: true},
			{Name: FieldExpiryDateCheck, Line: 1, Start: 27, Length: 1, Kind: KindCheckDigit, Group: FieldExpiryDate},
			{Name: FieldOptionalData, Line: 1, Start: 28, Length: 8, Kind: KindAlphanumeric},
		},
	},
}
