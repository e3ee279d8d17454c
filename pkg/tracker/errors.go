package tracker

import (
	"errors"
	"fmt"
	"strings"
)

// AuthError means the tracker rejected the personal access token (401/403).
type AuthError struct {
	Op         string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: tracker rejected credentials (status %d)", e.Op, e.StatusCode)
}

// UnavailableError covers transport failures, 5xx replies and bodies that do
// not decode.
type UnavailableError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: tracker unavailable (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: tracker unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// QueryError means the WIQL query request was rejected.
type QueryError struct {
	Project    string
	StatusCode int
	Err        error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("work item query in %q failed: %v", e.Project, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// FetchError means the batch work item fetch failed.
type FetchError struct {
	IDs        []int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %d work items failed: %v", len(e.IDs), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ItemError is a single failed creation inside a batch.
type ItemError struct {
	Title      string
	StatusCode int
	Err        error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("create %q: %v", e.Title, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// BatchError is returned when every item of a creation batch failed.
type BatchError struct {
	Type   string
	Errors []*ItemError
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ie := range e.Errors {
		msgs = append(msgs, ie.Error())
	}
	return fmt.Sprintf("all %d %s items failed: %s", len(e.Errors), e.Type, strings.Join(msgs, "; "))
}

// Unwrap exposes the per-item errors to errors.Is/As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, ie := range e.Errors {
		errs = append(errs, ie)
	}
	return errs
}

// statusError carries the tracker's reply body for a non-2xx response.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// IsAuth reports whether err is, or wraps, an *AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsUnavailable reports whether err is, or wraps, an *UnavailableError.
func IsUnavailable(err error) bool {
	var target *UnavailableError
	return errors.As(err, &target)
}
