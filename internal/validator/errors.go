package validator

import (
	"errors"
	"fmt"
)

// ErrNilInvoice is wrapped in a ProcessingError when no invoice is supplied.
var ErrNilInvoice = errors.New("invoice data is nil")

// ErrNilRule is wrapped in a ProcessingError when a business rule slot is nil.
var ErrNilRule = errors.New("business rule is nil")

// ProcessingError means the validator itself failed, as opposed to the
// invoice being invalid.
type ProcessingError struct {
	CorrelationID string
	Rule          string
	Err           error
}

func (e *ProcessingError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("validation processing failed in rule %s [%s]: %v", e.Rule, e.CorrelationID, e.Err)
	}
	return fmt.Sprintf("validation processing failed [%s]: %v", e.CorrelationID, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// IsProcessingError reports whether err is or wraps a ProcessingError.
func IsProcessingError(err error) bool {
	var pe *ProcessingError
	return errors.As(err, &pe)
}
