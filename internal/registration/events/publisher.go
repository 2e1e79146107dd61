package events

import (
	"context"

	"github.com/ywel/mrz/internal/registration/domain"
	"github.com/ywel/mrz/pkg/logger"
	"github.com/ywel/mrz/pkg/messaging"
)

// RegistrationEventPublisher publishes registration-related events
type RegistrationEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewRegistrationEventPublisher creates a new registration event publisher
func NewRegistrationEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*RegistrationEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeRegistrationEvents, "registration-service", log)
	if err != nil {
		return nil, err
	}

	return &RegistrationEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishRegistrationCreated publishes a registration created event
func (p *RegistrationEventPublisher) PublishRegistrationCreated(ctx context.Context, reg *domain.Registration) {
	if p == nil {
		return
	}
	data := messaging.RegistrationCreatedEvent{
		RegistrationID: reg.ID,
		DocumentNumber: reg.DocumentNumber,
		IssuingCountry: reg.IssuingCountry,
		Nationality:    reg.Nationality,
		FullName:       reg.FullName,
		Email:          reg.Email,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRegistrationCreated, data); err != nil {
		p.logger.Error().Err(err).Str("registration_id", reg.ID).Msg("failed to publish registration created event")
	}
}

// PublishScanCompleted publishes a scan completed event
func (p *RegistrationEventPublisher) PublishScanCompleted(ctx context.Context, job *domain.ScanJob) {
	if p == nil {
		return
	}
	data := messaging.ScanCompletedEvent{
		JobID: job.JobID,
	}
	if job.Record != nil {
		data.Format = job.Record.Format
		data.Unresolved = job.Record.Unresolved()
	}

	if err := p.publisher.Publish(ctx, messaging.EventScanCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.JobID).Msg("failed to publish scan completed event")
	}
}

// PublishScanFailed publishes a scan failed event
func (p *RegistrationEventPublisher) PublishScanFailed(ctx context.Context, jobID, reason string) {
	if p == nil {
		return
	}
	data := messaging.ScanFailedEvent{
		JobID:  jobID,
		Reason: reason,
	}

	if err := p.publisher.Publish(ctx, messaging.EventScanFailed, data); err != nil {
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to publish scan failed event")
	}
}
