package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// ValidEmailAddress is an email address that has a non-blank recipient and domain.
// The zero value is not a valid address; obtain one through NewValidEmailAddress
// or ParseEmailAddress.
type ValidEmailAddress struct {
	address string
}

// NewValidEmailAddress validates raw, which may be absent.
func NewValidEmailAddress(raw *string) (ValidEmailAddress, error) {
	if raw == nil {
		return ValidEmailAddress{}, ErrInvalidEmail
	}
	return ParseEmailAddress(*raw)
}

// ParseEmailAddress validates raw and keeps it unchanged on success.
func ParseEmailAddress(raw string) (ValidEmailAddress, error) {
	parts := strings.Split(raw, "@")
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return ValidEmailAddress{}, ErrInvalidEmail
	}
	return ValidEmailAddress{address: raw}, nil
}

func (e ValidEmailAddress) Address() string { return e.address }

func (e ValidEmailAddress) String() string { return e.address }

// Scan restores an address previously written by Value. It is meant for database
// drivers only and skips validation.
func (e *ValidEmailAddress) Scan(src any) error {
	switch v := src.(type) {
	case string:
		e.address = v
	case []byte:
		e.address = string(v)
	default:
		return fmt.Errorf("valueobject: cannot scan %T into ValidEmailAddress", src)
	}
	return nil
}

func (e ValidEmailAddress) Value() (driver.Value, error) { return e.address, nil }
