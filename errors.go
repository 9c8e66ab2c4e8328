package namecheck

import "errors"

var (
	// ErrEngineNotReady is returned when Resolve is called on a closed or
	// unbuilt engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrEmptyPlayerID is returned when the caller supplies a blank id.
	ErrEmptyPlayerID = errors.New("empty player id")
	// ErrMissingCredentials is returned when a backend needs credentials the
	// configuration does not carry.
	ErrMissingCredentials = errors.New("missing upstream credentials")
	// ErrLoginFailed wraps a transport-level failure during the login flow.
	ErrLoginFailed = errors.New("login failed")
	// ErrLoginRejected is returned when the upstream answered the login POST
	// with a non-success status. Cookies returned alongside the rejection are
	// still persisted.
	ErrLoginRejected = errors.New("login rejected by upstream")
	// ErrLoginFormUnusable is returned when the login page no longer exposes
	// the expected identifier/secret fields.
	ErrLoginFormUnusable = errors.New("login form fields not found")
	// ErrBuilderUsed is returned by Build when the builder already produced
	// an engine.
	ErrBuilderUsed = errors.New("builder already used")
)
