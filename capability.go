package hooks

// Capabilities is the capability object handed to every extension
// entrypoint alongside the registration API. It carries host-provided
// collaborators the engine itself never interprets.
type Capabilities struct {
	// Services exposes the host's business logic factories. Opaque to
	// the engine; extensions type-assert to the host's service contract.
	Services any

	// Exceptions provides constructors for the designated error kinds
	// extensions may raise, including the cancellation signal.
	Exceptions Exceptions
}

// Exceptions constructs the error kinds recognized by the engine and the
// host. Extensions must use these constructors rather than inventing
// error types of their own: the dispatcher recognizes cancellation by
// type identity.
type Exceptions struct{}

// Cancel returns the cancellation signal. Returned from a filter
// listener, it aborts the remaining chain and the enclosing operation.
func (Exceptions) Cancel(reason string) error { return Cancel(reason) }

// Forbidden returns an error the host maps to a permission failure.
func (Exceptions) Forbidden(msg string) error {
	return &HostError{Kind: "forbidden", Message: msg}
}

// NotFound returns an error the host maps to a missing-record failure.
func (Exceptions) NotFound(msg string) error {
	return &HostError{Kind: "not_found", Message: msg}
}

// Invalid returns an error the host maps to a validation failure.
func (Exceptions) Invalid(msg string) error {
	return &HostError{Kind: "invalid", Message: msg}
}

// HostError is an error kind the host translates at its own boundary
// (HTTP status, API error code). The engine treats it as an ordinary
// listener error.
type HostError struct {
	Kind    string
	Message string
}

// Error implements the error interface.
func (e *HostError) Error() string { return "hooks: " + e.Kind + ": " + e.Message }
