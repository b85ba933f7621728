package culture

import "errors"

// ErrContext is the kind attached to every resolution failure caused by
// missing or malformed scoring context.
var ErrContext = errors.New("scoring context error")

// ErrLookup is the kind for organisation directory failures.
var ErrLookup = errors.New("organisation lookup failed")

// Causes wrapped under ErrContext.
var (
	ErrPartialContext  = errors.New("operating_environment and taxonomy must be supplied together")
	ErrEmptyContext    = errors.New("operating_environment and taxonomy must be non-empty objects")
	ErrBadTaxonomy     = errors.New("taxonomy requires a taxonomy_id and an array of signals")
	ErrNoOrganisation  = errors.New("organisation context required")
	ErrValuesFramework = errors.New("organisation values_framework is missing or invalid JSON")
	ErrNoEnvironment   = errors.New("organisation values_framework missing operating_environment")
	ErrNoTaxonomy      = errors.New("organisation values_framework missing taxonomy")
)
