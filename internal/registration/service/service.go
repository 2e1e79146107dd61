package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ywel/mrz/internal/registration/domain"
	"github.com/ywel/mrz/internal/registration/mrz"
	"github.com/ywel/mrz/internal/registration/ocr"
	"github.com/ywel/mrz/internal/registration/storage"
	"github.com/ywel/mrz/pkg/errors"
	"github.com/ywel/mrz/pkg/logger"
)

// RegistrationStore persists completed registrations.
type RegistrationStore interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Registration, error)
	ExistsByDocumentNumber(ctx context.Context, documentNumber, issuingCountry string) (bool, error)
}

// EventPublisher publishes registration lifecycle events.
type EventPublisher interface {
	PublishRegistrationCreated(ctx context.Context, reg *domain.Registration)
	PublishScanCompleted(ctx context.Context, job *domain.ScanJob)
	PublishScanFailed(ctx context.Context, jobID, reason string)
}

// Service orchestrates document registration: OCR → MRZ decode → persist.
// Document images live in memory only and are zeroed after processing.
type Service struct {
	engines []ocr.Engine
	decoder *mrz.Decoder
	jobs    *storage.JobStore
	repo    RegistrationStore
	events  EventPublisher
	log     *logger.Logger
}

// NewService creates a new registration service
func NewService(engines []ocr.Engine, decoder *mrz.Decoder, jobs *storage.JobStore, repo RegistrationStore, events EventPublisher, log *logger.Logger) *Service {
	return &Service{
		engines: engines,
		decoder: decoder,
		jobs:    jobs,
		repo:    repo,
		events:  events,
		log:     log,
	}
}

// DecodeText decodes an MRZ text block synchronously. Used when the
// caller already has the MRZ lines and just wants the structured record.
func (s *Service) DecodeText(ctx context.Context, lines []string) (*domain.IdentityRecord, error) {
	record, err := s.decoder.Decode(lines)
	if err != nil {
		return nil, mapDecodeError(err)
	}
	return record, nil
}

// DecodeImage runs the engine chain over a document image and decodes
// the result synchronously. The image is zeroed before returning.
func (s *Service) DecodeImage(ctx context.Context, imageData []byte) (*domain.IdentityRecord, error) {
	defer storage.ZeroBytes(imageData)

	if len(s.engines) == 0 {
		return nil, errors.Internal("no recognition engine configured")
	}
	return s.recognizeAndDecode(ctx, "", imageData)
}

// StartScan creates a scan job and decodes the document asynchronously.
// Returns the job immediately so the caller can poll for results.
func (s *Service) StartScan(ctx context.Context, imageData []byte) (*domain.ScanJob, error) {
	if len(s.engines) == 0 {
		storage.ZeroBytes(imageData)
		return nil, errors.Internal("no recognition engine configured")
	}

	job := &domain.ScanJob{
		JobID:     storage.GenerateJobID(),
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}
	s.jobs.Store(job)

	go s.scanAsync(job.JobID, imageData, nil)

	return job, nil
}

// Register creates a scan job that, on successful decode, persists the
// registration and publishes a created event. Contact details must
// already be validated by the caller.
func (s *Service) Register(ctx context.Context, contact *domain.ContactDetails, imageData []byte) (*domain.ScanJob, error) {
	if len(s.engines) == 0 {
		storage.ZeroBytes(imageData)
		return nil, errors.Internal("no recognition engine configured")
	}

	job := &domain.ScanJob{
		JobID:     storage.GenerateJobID(),
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}
	s.jobs.Store(job)

	go s.scanAsync(job.JobID, imageData, contact)

	return job, nil
}

// scanAsync runs recognition and decoding in a background goroutine.
// When contact details are present the decoded record is persisted as a
// registration.
func (s *Service) scanAsync(jobID string, imageData []byte, contact *domain.ContactDetails) {
	// Detached context: request cancellation must not kill processing.
	ctx := context.Background()

	s.jobs.Update(jobID, func(j *domain.ScanJob) {
		j.Status = domain.StatusProcessing
	})

	record, err := s.recognizeAndDecode(ctx, jobID, imageData)

	// Zero image data immediately after recognition, before any
	// persistence or publishing can fail.
	storage.ZeroBytes(imageData)

	if err != nil {
		s.failJob(ctx, jobID, err)
		return
	}

	warnings := unresolvedWarnings(record)

	if contact == nil {
		s.jobs.Update(jobID, func(j *domain.ScanJob) {
			j.Status = domain.StatusCompleted
			j.Record = record
			j.Warnings = warnings
		})
		if s.events != nil {
			s.events.PublishScanCompleted(ctx, s.jobs.Get(jobID))
		}
		s.log.Info().Str("job_id", jobID).Str("format", record.Format).Msg("document scan completed")
		return
	}

	reg, err := s.persistRegistration(ctx, contact, record)
	if err != nil {
		s.failJob(ctx, jobID, err)
		return
	}

	s.jobs.Update(jobID, func(j *domain.ScanJob) {
		j.Status = domain.StatusCompleted
		j.Record = record
		j.RegistrationID = reg.ID
		j.Warnings = warnings
	})
	if s.events != nil {
		s.events.PublishScanCompleted(ctx, s.jobs.Get(jobID))
		s.events.PublishRegistrationCreated(ctx, reg)
	}
	s.log.Info().
		Str("job_id", jobID).
		Str("registration_id", reg.ID).
		Str("format", record.Format).
		Msg("registration completed")
}

// recognizeAndDecode tries each engine in order until one yields text
// that decodes as a machine readable zone.
func (s *Service) recognizeAndDecode(ctx context.Context, jobID string, imageData []byte) (*domain.IdentityRecord, error) {
	var lastErr error
	for _, engine := range s.engines {
		s.log.Info().
			Str("job_id", jobID).
			Str("engine", engine.Name()).
			Msg("trying recognition engine")

		lines, err := engine.Recognize(ctx, imageData)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).
				Str("job_id", jobID).
				Str("engine", engine.Name()).
				Msg("recognition failed, trying next engine")
			continue
		}

		record, err := s.decoder.Decode(lines)
		if err != nil {
			lastErr = err
			s.log.Warn().Err(err).
				Str("job_id", jobID).
				Str("engine", engine.Name()).
				Msg("decode failed, trying next engine")
			continue
		}

		s.log.Info().
			Str("job_id", jobID).
			Str("engine", engine.Name()).
			Msg("engine succeeded")
		return record, nil
	}

	if lastErr == nil {
		lastErr = errors.Internal("no recognition engine configured")
	}
	return nil, mapDecodeError(lastErr)
}

// persistRegistration stores the decoded record with the contact
// details, rejecting documents with unverifiable numbers or duplicates.
func (s *Service) persistRegistration(ctx context.Context, contact *domain.ContactDetails, record *domain.IdentityRecord) (*domain.Registration, error) {
	if record.FieldConfidence[mrz.FieldDocumentNumber] == domain.ConfidenceUnresolved {
		return nil, errors.Unprocessable("document number checksum could not be verified", nil)
	}

	exists, err := s.repo.ExistsByDocumentNumber(ctx, record.DocumentNumber, record.IssuingCountry)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Conflict("document is already registered")
	}

	reg := &domain.Registration{
		FullName:                     contact.FullName,
		Email:                        contact.Email,
		MobileNumber:                 contact.MobileNumber,
		AreaOfResidence:              contact.AreaOfResidence,
		EmergencyContactName:         contact.EmergencyContactName,
		Relationship:                 contact.Relationship,
		EmergencyContactMobileNumber: contact.EmergencyContactMobileNumber,
		DocumentType:                 record.DocumentType,
		DocumentNumber:               record.DocumentNumber,
		IssuingCountry:               record.IssuingCountry,
		Nationality:                  record.Nationality,
		Surname:                      record.Surname,
		GivenNames:                   record.GivenNames,
		Sex:                          record.Sex,
		DateOfBirth:                  record.DateOfBirth,
		DocumentExpiry:               record.DocumentExpiry,
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *Service) failJob(ctx context.Context, jobID string, err error) {
	s.jobs.Update(jobID, func(j *domain.ScanJob) {
		j.Status = domain.StatusFailed
		j.Error = err.Error()
	})
	if s.events != nil {
		s.events.PublishScanFailed(ctx, jobID, err.Error())
	}
	s.log.Error().Err(err).Str("job_id", jobID).Msg("document scan failed")
}

// GetScanJob retrieves a scan job by ID
func (s *Service) GetScanJob(jobID string) *domain.ScanJob {
	return s.jobs.Get(jobID)
}

// GetRegistration retrieves a registration by ID
func (s *Service) GetRegistration(ctx context.Context, id string) (*domain.Registration, error) {
	return s.repo.GetByID(ctx, id)
}

// ListRegistrations lists registrations, newest first
func (s *Service) ListRegistrations(ctx context.Context, limit, offset int) ([]*domain.Registration, error) {
	return s.repo.List(ctx, limit, offset)
}

// unresolvedWarnings converts unresolved field confidences into
// human-readable job warnings.
func unresolvedWarnings(record *domain.IdentityRecord) []string {
	var warnings []string
	for _, name := range record.Unresolved() {
		warnings = append(warnings, fmt.Sprintf("checksum for %s could not be verified", name))
	}
	return warnings
}

// mapDecodeError translates decoder errors into API errors so handlers
// can map them onto status codes.
func mapDecodeError(err error) error {
	var decodeErr *mrz.DecodeError
	if errors.As(err, &decodeErr) {
		switch {
		case errors.Is(err, mrz.ErrUnrecognizedFormat):
			return errors.Unprocessable("document format not recognized as a machine readable zone", nil)
		case errors.Is(err, mrz.ErrTruncatedLine):
			return errors.Unprocessable("machine readable zone is truncated", nil)
		case errors.Is(err, mrz.ErrIncompleteRecord):
			return errors.Unprocessable(fmt.Sprintf("mandatory field %s is empty", decodeErr.Field), nil)
		}
		return errors.Unprocessable(decodeErr.Error(), nil)
	}
	if errors.Is(err, ocr.ErrEngineUnavailable) {
		return errors.Internal("no recognition engine available")
	}
	return err
}
