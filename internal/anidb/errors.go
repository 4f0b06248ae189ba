package anidb

import (
	"fmt"
)

// TransportError reports a network or HTTP level failure talking to AniDB
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("anidb transport: HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("anidb transport: %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError is returned when AniDB answers with an <error> envelope
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "anidb service error: " + e.Message
}

// MissingElementError reports a required XML element that is absent
type MissingElementError struct {
	Field string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("missing element %q", e.Field)
}

// FormatError reports a value that is present but cannot be parsed
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// MissingMainTitleError is returned when no title of a work is tagged "main"
type MissingMainTitleError struct {
	AID int
}

func (e *MissingMainTitleError) Error() string {
	return fmt.Sprintf("anime %d has no main title", e.AID)
}

// CacheMissingError reports that one cache tier holds no usable data.
// Absent and corrupt caches are not distinguished.
type CacheMissingError struct {
	Tier string
	Err  error
}

func (e *CacheMissingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cache %s: missing", e.Tier)
	}
	return fmt.Sprintf("cache %s: missing: %v", e.Tier, e.Err)
}

func (e *CacheMissingError) Unwrap() error {
	return e.Err
}
