package auth

import "myflix-api/internal/domain"

// Authorize permits an operation iff the caller is the owner of the target
// resource. Usernames are compared exactly; there is no role hierarchy and no
// admin override.
func Authorize(caller *domain.User, ownerUsername string) error {
	if caller == nil || caller.Username == "" {
		return ErrPermissionDenied
	}
	if caller.Username != ownerUsername {
		return ErrPermissionDenied
	}
	return nil
}
