package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the generation pipeline. Strategies and the registry wrap
// these with fmt.Errorf("...: %w", err) so callers can classify failures with
// errors.Is without depending on message text.
var (
	// ErrModelNotFound indicates the requested strategy name is not registered.
	ErrModelNotFound = errors.New("domain: model not found")

	// ErrUnauthorized indicates the credential is missing or its refresh
	// exchange failed.
	ErrUnauthorized = errors.New("domain: unauthorized")

	// ErrEmptyResult indicates the recommendation query returned zero tracks,
	// or feature inference found nothing usable to aggregate.
	ErrEmptyResult = errors.New("domain: empty result")

	// ErrLifecycle indicates a model lifecycle violation: Generate before
	// Initialize, or twice per Initialize.
	ErrLifecycle = errors.New("domain: lifecycle violation")

	// ErrExternalService indicates the catalog or language-model collaborator
	// was unreachable or answered with a server error.
	ErrExternalService = errors.New("domain: external service error")

	// ErrParse indicates a language-model response failed schema validation.
	ErrParse = errors.New("domain: parse error")
)

// ParseError carries the stage and raw payload of a language-model response
// that could not be parsed. It matches ErrParse via errors.Is.
type ParseError struct {
	Stage string // "genres" or "features"
	Raw   string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
