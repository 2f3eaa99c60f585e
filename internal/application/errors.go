package application

import (
	"errors"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

// Outcome errors. Every UserService method returns nil or an error matching exactly
// one of these (via errors.Is); the doc comment of each method lists which.
var (
	ErrEmailReserved      = errors.New("Email reserved.")
	ErrUserNotFound       = errors.New("User not found.")
	ErrUserCreationFailed = errors.New("User creation failed.")
	ErrUserUpdateFailed   = errors.New("Updating user failed.")
	ErrUserDeletionFailed = errors.New("User deletion failed.")
	ErrLookupFailed       = errors.New("User lookup failed.")
)

const UpdateUserCommandRequirements = "Either email or password has to be valid."

// ErrUpdateCommandEmpty is returned by NewUpdateUserCommand when neither field is
// given. It matches valueobject.ErrValidation.
var ErrUpdateCommandEmpty = &valueobject.ValidationError{Message: UpdateUserCommandRequirements}
