package services

import "errors"

// Errors shared across services and the HTTP mapping layer.
//
// Registration and login failures are deliberately coarse: every failed
// precondition folds into the same user-facing error so a caller cannot tell
// a taken team name from a bad token, or a disabled login from a wrong
// password.
var (
	// ErrRegistrationDisabled covers every registration precondition failure
	// uniformly: disabled registration, missing/used token, invalid logo,
	// empty or taken team name, store-level creation failure.
	ErrRegistrationDisabled = errors.New("registration failed")

	// ErrLoginFailed covers disabled login, unknown team and bad credentials
	// uniformly.
	ErrLoginFailed = errors.New("login failed")

	// ErrConfigMissing signals an undefined runtime flag. A misconfigured
	// deployment must not silently proceed, so this propagates as a generic
	// server failure rather than folding into a user-facing category.
	ErrConfigMissing = errors.New("config flag missing")

	// ErrLogoInvalid is internal to logo resolution; the registration
	// boundary folds it into ErrRegistrationDisabled.
	ErrLogoInvalid = errors.New("invalid custom logo")

	// ErrInvalidCredentials is internal to credential verification; the login
	// boundary folds it into ErrLoginFailed.
	ErrInvalidCredentials = errors.New("invalid team id or password")
)
