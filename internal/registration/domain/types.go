package domain

import "time"

// DocumentClass is the broad class of identity document a scan claims to be.
type DocumentClass string

const (
	DocumentClassID       DocumentClass = "id_card"
	DocumentClassPassport DocumentClass = "passport"
	DocumentClassVisa     DocumentClass = "visa"
)

// ScanStatus represents the processing state of a scan job
type ScanStatus string

const (
	StatusPending    ScanStatus = "pending"
	StatusProcessing ScanStatus = "processing"
	StatusCompleted  ScanStatus = "completed"
	StatusFailed     ScanStatus = "failed"
)

// Confidence describes how a decoded field value was established:
// read with a passing checksum, repaired by the ambiguity resolver,
// or kept raw because no repair within the search bound passed.
type Confidence string

const (
	ConfidenceExact      Confidence = "exact"
	ConfidenceCorrected  Confidence = "corrected"
	ConfidenceUnresolved Confidence = "unresolved"
)

// IdentityRecord is the structured result of decoding an MRZ text block.
// It is created once by the assembler and never mutated afterwards.
// Every checked field either carries passing checksum evidence or is
// flagged unresolved in FieldConfidence.
type IdentityRecord struct {
	Format          string                `json:"format"`
	Class           DocumentClass         `json:"document_class"`
	DocumentType    string                `json:"document_type"`
	IssuingCountry  string                `json:"issuing_country"`
	DocumentNumber  string                `json:"document_number"`
	Surname         string                `json:"surname"`
	GivenNames      string                `json:"given_names"`
	Nationality     string                `json:"nationality"`
	Sex             string                `json:"sex"`
	DateOfBirth     time.Time             `json:"date_of_birth"`
	DocumentExpiry  time.Time             `json:"document_expiry"`
	OptionalData    string                `json:"optional_data,omitempty"`
	OptionalData2   string                `json:"optional_data_2,omitempty"`
	FieldConfidence map[string]Confidence `json:"field_confidence"`
}

// Unresolved returns the names of checked fields whose checksum could
// not be satisfied even after ambiguity resolution.
func (r *IdentityRecord) Unresolved() []string {
	var names []string
	for name, c := range r.FieldConfidence {
		if c == ConfidenceUnresolved {
			names = append(names, name)
		}
	}
	return names
}

// ContactDetails are the registrant-supplied fields persisted alongside
// the decoded identity record. The schema is fixed by the registration
// store contract.
type ContactDetails struct {
	FullName                     string `json:"full_name" db:"full_name" validate:"required,min=2,max=200"`
	Email                        string `json:"email" db:"email" validate:"required,email"`
	MobileNumber                 string `json:"mobile_number" db:"mobile_number" validate:"required,min=7,max=20"`
	AreaOfResidence              string `json:"area_of_residence" db:"area_of_residence" validate:"required,max=200"`
	EmergencyContactName         string `json:"emergency_contact_name" db:"emergency_contact_name" validate:"required,max=200"`
	Relationship                 string `json:"relationship" db:"relationship" validate:"required,max=100"`
	EmergencyContactMobileNumber string `json:"emergency_contact_mobile_number" db:"emergency_contact_mobile_number" validate:"required,min=7,max=20"`
}

// Registration is the durable record handed to the persistence layer:
// contact details plus the decoded identity fields.
type Registration struct {
	ID                           string    `json:"id" db:"id"`
	FullName                     string    `json:"full_name" db:"full_name"`
	Email                        string    `json:"email" db:"email"`
	MobileNumber                 string    `json:"mobile_number" db:"mobile_number"`
	AreaOfResidence              string    `json:"area_of_residence" db:"area_of_residence"`
	EmergencyContactName         string    `json:"emergency_contact_name" db:"emergency_contact_name"`
	Relationship                 string    `json:"relationship" db:"relationship"`
	EmergencyContactMobileNumber string    `json:"emergency_contact_mobile_number" db:"emergency_contact_mobile_number"`
	DocumentType                 string    `json:"document_type" db:"document_type"`
	DocumentNumber               string    `json:"document_number" db:"document_number"`
	IssuingCountry               string    `json:"issuing_country" db:"issuing_country"`
	Nationality                  string    `json:"nationality" db:"nationality"`
	Surname                      string    `json:"surname" db:"surname"`
	GivenNames                   string    `json:"given_names" db:"given_names"`
	Sex                          string    `json:"sex" db:"sex"`
	DateOfBirth                  time.Time `json:"date_of_birth" db:"date_of_birth"`
	DocumentExpiry               time.Time `json:"document_expiry" db:"document_expiry"`
	CreatedAt                    time.Time `json:"created_at" db:"created_at"`
}

// ScanJob tracks one document scan through OCR and MRZ decoding.
// Jobs live in memory only and expire after a TTL.
type ScanJob struct {
	JobID          string          `json:"job_id"`
	Status         ScanStatus      `json:"status"`
	Record         *IdentityRecord `json:"record,omitempty"`
	RegistrationID string          `json:"registration_id,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
