package domain

import "errors"

// ErrInvalidInputs indicates that generation inputs failed validation.
var ErrInvalidInputs = errors.New("invalid generation inputs")

// ErrInvalidContent indicates that a provider returned content that could not
// be decoded into the expected structured payload.
var ErrInvalidContent = errors.New("LLM response was not valid JSON")

// ErrTimeBudgetExceeded indicates that a stage ran past its wall-clock budget.
var ErrTimeBudgetExceeded = errors.New("time budget exceeded")

// ErrConfiguration indicates an unusable configuration.
var ErrConfiguration = errors.New("configuration error")

// ErrMissingCredential indicates that a selected provider has no credential configured.
var ErrMissingCredential = errors.New("missing provider credential")

// ErrUnknownProvider indicates a provider identifier with no registered constructor.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrModelNotAllowed indicates a resolved model outside the configured allowlist.
var ErrModelNotAllowed = errors.New("model not permitted by allowlist")

// ErrJobNotFound indicates that no job record exists for an identifier.
var ErrJobNotFound = errors.New("job not found")

// ErrDomainNotFound indicates that no persisted domain exists for an identifier.
var ErrDomainNotFound = errors.New("domain not found")
