package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("operation not valid for current application status")
	ErrLinkExpired       = errors.New("approval link has expired")
	ErrInvalidCode       = errors.New("invalid verification code")
	ErrSponsorNotFound   = errors.New("sponsor not found")
	ErrSponsorInactive   = errors.New("sponsor is not active")
	ErrNotAuthorized     = errors.New("member is not the sponsor of this application")
	ErrSelfApproval      = errors.New("applicant cannot approve their own application")
	ErrRateLimitExceeded = errors.New("sponsor approval quota exceeded")
	ErrConflict          = errors.New("concurrent modification")
	ErrStorage           = errors.New("storage error")
)

// ValidationError lists the offending fields of a rejected input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failure of the underlying store. The enclosing
// transaction has already been rolled back when it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// IsWorkflowError reports whether err is one of the workflow's own error kinds,
// as opposed to an infrastructure failure.
func IsWorkflowError(err error) bool {
	for _, kind := range []error{
		ErrValidation, ErrNotFound, ErrInvalidState, ErrLinkExpired, ErrInvalidCode,
		ErrSponsorNotFound, ErrSponsorInactive, ErrNotAuthorized, ErrSelfApproval,
		ErrRateLimitExceeded, ErrStorage,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
