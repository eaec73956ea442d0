package usecase

import "errors"

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeBadRequest    = "bad_request"
	CodeNotFound      = "not_found"
	CodeFailedToSave  = "failed_to_save"
	CodeFailedToFetch = "failed_to_fetch"
	CodeUpdateFailed  = "update_failed"
)

// DomainError is a caller mistake: rejected before any write.
type DomainError struct {
	Code    string
	Message string
	Fields  []string
}

func (e *DomainError) Error() string {
	return e.Message
}

// TechnicalError wraps a store or transport failure.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func badRequest(msg string) *DomainError {
	return &DomainError{Code: CodeBadRequest, Message: msg}
}
