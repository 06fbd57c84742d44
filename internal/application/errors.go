package application

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrRegistrationFailed   = errors.New("registration failed")
	ErrPasswordUpdateFailed = errors.New("password update failed")
	ErrDeletionFailed       = errors.New("deletion failed")
	ErrProfileUpdateFailed  = errors.New("profile update failed")
	// ErrCallerContract means an authenticated operation was called without
	// the caller's email. It is a bug in the calling layer.
	ErrCallerContract = errors.New("no email is provided")

	ErrCourseNotFound    = errors.New("course not found")
	ErrExamNotFound      = errors.New("exam not found")
	ErrInvalidCourse     = errors.New("invalid course")
	ErrInvalidScore      = errors.New("score must be between 0 and 100")
	ErrStorageNotEnabled = errors.New("gcs not configured")
)

// UserNotFoundError names the email that had no matching account.
type UserNotFoundError struct {
	Email string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user with email %s is not found", e.Email)
}

func (e *UserNotFoundError) Is(target error) bool { return target == ErrUserNotFound }

// ValidationError is a refused mutation. Kind is one of the Err*Failed
// sentinels; Reasons keeps the credential store's messages in order.
type ValidationError struct {
	Kind    error
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func refused(kind error, reasons []string) error {
	return &ValidationError{Kind: kind, Reasons: append([]string(nil), reasons...)}
}

// Reasons returns the aggregated reasons carried by err, if any.
func Reasons(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reasons
	}
	return nil
}
