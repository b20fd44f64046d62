package errors

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound     = errors.New("transaction record not found")
	ErrBrandUnknown       = errors.New("unknown brand slug")
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrMailMalformed      = errors.New("malformed mail message")
	ErrBotSuspected       = errors.New("submission failed anti-bot check")
)

// RejectionReason classifies why an uploaded file was refused before any
// durable state was touched.
type RejectionReason string

const (
	RejectEmpty       RejectionReason = "EMPTY"
	RejectTooLarge    RejectionReason = "TOO_LARGE"
	RejectUnsupported RejectionReason = "UNSUPPORTED"
)

type RejectionError struct {
	Reason RejectionReason
	Detail string
}

func (e RejectionError) Error() string {
	return fmt.Sprintf("file rejected (%s): %s", e.Reason, e.Detail)
}

func NewRejection(reason RejectionReason, detail string) error {
	return RejectionError{Reason: reason, Detail: detail}
}

// AsRejection unwraps err into a RejectionError if it is one.
func AsRejection(err error) (RejectionError, bool) {
	var rej RejectionError
	ok := errors.As(err, &rej)
	return rej, ok
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}
