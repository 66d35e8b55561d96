package auth

import "errors"

var (
	// ErrMissingCredentials indicates the request carried no usable credentials.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials indicates a bad username/password pair. Unknown
	// usernames and wrong passwords are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidOrExpiredToken indicates a token whose signature or expiry
	// failed verification.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrPermissionDenied indicates the caller does not own the target resource.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidCredentialFormat indicates a stored digest that is not a valid
	// bcrypt hash. Surfaced rather than swallowed: a malformed digest in the
	// store is a defect, not a login failure.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")
	// ErrInvalidIdentity indicates an identity record unusable for token
	// issuance (no username).
	ErrInvalidIdentity = errors.New("invalid identity")
)
