package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and allow callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoCourse is returned when the report command gets no course id.
	ErrNoCourse = errors.New("no course specified: provide at least one course id")

	// ErrInvalidFilter is returned for a filter other than all or errorsonly.
	ErrInvalidFilter = errors.New("invalid filter: must be all or errorsonly")

	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = errors.New("invalid format: must be one of html, text, csv, tsv, ods, xlsx, json, markdown")

	// ErrInvalidProbePolicy wraps probe policy validation errors.
	ErrInvalidProbePolicy = errors.New("invalid probe settings")

	// ErrInvalidItemConcurrency is returned when item concurrency is not positive.
	ErrInvalidItemConcurrency = errors.New("invalid item concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no course is ever built.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidStoreDriver is returned for a driver other than sqlite or postgres.
	ErrInvalidStoreDriver = errors.New("invalid store driver: must be sqlite or postgres")

	// ErrEmptyStoreDSN is returned when no store location is configured.
	ErrEmptyStoreDSN = errors.New("store DSN is empty")

	// ErrInvalidRowsPerSheet is returned when rows per sheet is not positive.
	ErrInvalidRowsPerSheet = errors.New("invalid rows per sheet: must be positive")

	// ErrInvalidCSVComma is returned for a separator that is not a single
	// usable character.
	ErrInvalidCSVComma = errors.New("invalid csv separator: must be a single character or \"tab\"")

	// ErrInvalidBuildTimeout is returned when the build timeout is negative.
	ErrInvalidBuildTimeout = errors.New("invalid build timeout: must be non-negative")

	// ErrInvalidEnv is returned when a LINKVALIDATOR_* variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
