package hooks

import "errors"

var (
	// Registration errors.
	ErrInvalidPattern = errors.New("hooks: invalid event pattern")
	ErrInvalidCron    = errors.New("hooks: invalid cron expression")
	ErrInvalidKind    = errors.New("hooks: invalid listener kind")

	// Execution context errors.
	ErrContextUnavailable = errors.New("hooks: execution context unavailable outside operation scope")

	// Extension loading errors.
	ErrExtensionLoad       = errors.New("hooks: extension load failed")
	ErrEntrypointMissing   = errors.New("hooks: extension entrypoint not registered")
	ErrExtensionLoaded     = errors.New("hooks: extension already loaded")
	ErrManifestMissing     = errors.New("hooks: extension manifest not found")
	ErrDuplicateEntrypoint = errors.New("hooks: entrypoint already registered")

	// Store errors.
	ErrNoStore          = errors.New("hooks: no store configured")
	ErrStoreClosed      = errors.New("hooks: store closed")
	ErrScheduleNotFound = errors.New("hooks: schedule entry not found")
	ErrEmissionNotFound = errors.New("hooks: emission not found")

	// Lifecycle errors.
	ErrAlreadyStarted = errors.New("hooks: engine already started")
	ErrNotStarted     = errors.New("hooks: engine not started")
)
