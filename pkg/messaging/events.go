package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventRegistrationCreated = "registration.created"
	EventScanCompleted       = "registration.scan.completed"
	EventScanFailed          = "registration.scan.failed"
)

// Exchange names
const (
	ExchangeRegistrationEvents = "registration.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// RegistrationCreatedEvent is published when a decoded document has been
// persisted as a registration.
type RegistrationCreatedEvent struct {
	RegistrationID string `json:"registration_id"`
	DocumentNumber string `json:"document_number"`
	IssuingCountry string `json:"issuing_country"`
	Nationality    string `json:"nationality"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
}

// ScanCompletedEvent is published when a scan job decodes successfully.
type ScanCompletedEvent struct {
	JobID      string   `json:"job_id"`
	Format     string   `json:"format"`
	Unresolved []string `json:"unresolved_fields,omitempty"`
}

// ScanFailedEvent is published when a scan job fails terminally.
type ScanFailedEvent struct {
	JobID  string `json:"job_id"`
	Reason string `json:"reason"`
}
