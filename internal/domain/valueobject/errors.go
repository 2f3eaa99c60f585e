package valueobject

import "errors"

// ErrValidation is matched by every error returned from a value-object constructor.
var ErrValidation = errors.New("validation failed")

const (
	EmailRequirements        = "Invalid email. Email must have a recipient and domain and contain @ sign."
	PasswordRequirements     = "Invalid password. Password length must be at least 8 characters."
	PasswordSaltRequirements = "Invalid salt. Salt length must be at least 32 characters."
)

// ValidationError describes a rejected raw input. Field is the request field the
// input came from, empty for whole-object errors.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

var (
	ErrInvalidEmail        = &ValidationError{Field: "email", Message: EmailRequirements}
	ErrInvalidPassword     = &ValidationError{Field: "password", Message: PasswordRequirements}
	ErrInvalidPasswordSalt = &ValidationError{Field: "salt", Message: PasswordSaltRequirements}
)
