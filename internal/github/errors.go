package github

import (
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v68/github"
)

// FailureKind classifies a page fetch that did not produce a page.
type FailureKind string

const (
	// FailureRateLimited means the API kept answering 403 after transport
	// retries. The page may be retried after a cooldown.
	FailureRateLimited FailureKind = "rate_limited"

	// FailureTerminal covers every other HTTP error and transport failure.
	FailureTerminal FailureKind = "terminal"
)

// FetchError is returned by FetchPage when no page could be produced.
type FetchError struct {
	Kind       FailureKind
	Page       int
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("page %d: %s (status %d): %v", e.Page, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("page %d: %s: %v", e.Page, e.Kind, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a rate-limited FetchError.
func IsRateLimited(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FailureRateLimited
}

// classifyFailure turns a go-github error into a FetchError.
func classifyFailure(page int, resp *gh.Response, err error) *FetchError {
	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	kind := FailureTerminal
	if status == http.StatusForbidden || errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		kind = FailureRateLimited
	}
	return &FetchError{Kind: kind, Page: page, StatusCode: status, Err: err}
}
