package domain

import "errors"

var (
	// ErrUnexpectedStatus is returned when the storefront answers with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrEmptyResponse is returned when a successful response carries no body
	ErrEmptyResponse = errors.New("empty response body")

	// ErrNoRunRecorded is returned when no previous run summary exists
	ErrNoRunRecorded = errors.New("no run recorded")
)
