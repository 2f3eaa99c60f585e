package valueobject

import "unicode/utf8"

const (
	MinPasswordLength     = 8
	MinPasswordSaltLength = 32
)

// ValidPassword is a raw password that satisfies the strength rule. It is only
// held long enough to derive a HashedPassword and is never persisted.
type ValidPassword struct {
	password string
}

func NewValidPassword(raw *string) (ValidPassword, error) {
	if raw == nil {
		return ValidPassword{}, ErrInvalidPassword
	}
	return ParsePassword(*raw)
}

func ParsePassword(raw string) (ValidPassword, error) {
	if utf8.RuneCountInString(raw) < MinPasswordLength {
		return ValidPassword{}, ErrInvalidPassword
	}
	return ValidPassword{password: raw}, nil
}

func (p ValidPassword) Password() string { return p.password }

// String hides the plaintext so a password never ends up in logs by accident.
func (p ValidPassword) String() string { return "********" }

// ValidPasswordSalt is the salt appended to passwords before hashing.
type ValidPasswordSalt struct {
	salt string
}

func NewValidPasswordSalt(raw string) (ValidPasswordSalt, error) {
	if utf8.RuneCountInString(raw) < MinPasswordSaltLength {
		return ValidPasswordSalt{}, ErrInvalidPasswordSalt
	}
	return ValidPasswordSalt{salt: raw}, nil
}

func (s ValidPasswordSalt) Salt() string { return s.salt }

func (s ValidPasswordSalt) String() string { return "********" }
