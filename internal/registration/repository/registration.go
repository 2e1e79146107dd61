package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/ywel/mrz/internal/registration/domain"
	"github.com/ywel/mrz/pkg/database"
	"github.com/ywel/mrz/pkg/errors"
)

// RegistrationRepository handles registration persistence
type RegistrationRepository struct {
	db *database.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *database.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create persists a completed registration. The caller has already
// validated contact details and decoded the identity fields.
func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}

	query := `
		INSERT INTO registrations (
			id, full_name, email, mobile_number, area_of_residence,
			emergency_contact_name, relationship, emergency_contact_mobile_number,
			document_type, document_number, issuing_country, nationality,
			surname, given_names, sex, date_of_birth, document_expiry
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		reg.ID, reg.FullName, reg.Email, reg.MobileNumber, reg.AreaOfResidence,
		reg.EmergencyContactName, reg.Relationship, reg.EmergencyContactMobileNumber,
		reg.DocumentType, reg.DocumentNumber, reg.IssuingCountry, reg.Nationality,
		reg.Surname, reg.GivenNames, reg.Sex, reg.DateOfBirth, reg.DocumentExpiry,
	).Scan(&reg.CreatedAt)
}

// GetByID gets a registration by ID
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	var reg domain.Registration
	query := `SELECT * FROM registrations WHERE id = $1`
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("registration")
		}
		return nil, err
	}
	return &reg, nil
}

// List lists registrations, newest first
func (r *RegistrationRepository) List(ctx context.Context, limit, offset int) ([]*domain.Registration, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var regs []*domain.Registration
	query := `
		SELECT * FROM registrations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &regs, query, limit, offset); err != nil {
		return nil, err
	}
	return regs, nil
}

// ExistsByDocumentNumber reports whether a registration already exists
// for the given document number and issuing country.
func (r *RegistrationRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber, issuingCountry string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM registrations
			WHERE document_number = $1 AND issuing_country = $2
		)
	`
	if err := r.db.GetContext(ctx, &exists, query, documentNumber, issuingCountry); err != nil {
		return false, err
	}
	return exists, nil
}
