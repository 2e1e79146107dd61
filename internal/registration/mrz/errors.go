package mrz

import (
	"errors"
	"fmt"
)

// Stage identifies where in the decode lifecycle a document currently is
// or where it failed. The lifecycle runs
// Acquired → Normalized → FormatDetected → Tokenized → ChecksumValidated →
// Resolved/Unresolved → Assembled.
type Stage string

const (
	StageAcquired          Stage = "acquired"
	StageNormalized        Stage = "normalized"
	StageFormatDetected    Stage = "format_detected"
	StageTokenized         Stage = "tokenized"
	StageChecksumValidated Stage = "checksum_validated"
	StageResolved          Stage = "resolved"
	StageAssembled         Stage = "assembled"
)

// Fatal decode failures. Checksum mismatches are deliberately absent:
// they are recoverable signals routed to the ambiguity resolver.
var (
	ErrUnrecognizedFormat = errors.New("unrecognized MRZ format")
	ErrTruncatedLine      = errors.New("truncated MRZ line")
	ErrIncompleteRecord   = errors.New("incomplete identity record")
)

// DecodeError tags a fatal failure with the stage and field it occurred in,
// so callers can report which part of the document was unreadable.
type DecodeError struct {
	Err   error
	Stage Stage
	Field string
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v (stage %s, field %s)", e.Err, e.Stage, e.Field)
	}
	return fmt.Sprintf("%v (stage %s)", e.Err, e.Stage)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(err error, stage Stage, field string) *DecodeError {
	return &DecodeError{Err: err, Stage: stage, Field: field}
}
