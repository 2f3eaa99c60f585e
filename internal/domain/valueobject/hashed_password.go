package valueobject

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashedPassword is the uppercase hex SHA-256 digest of password+salt.
type HashedPassword struct {
	hash string
}

// NewHashedPassword derives the digest. Same inputs always give the same hash.
func NewHashedPassword(password ValidPassword, salt ValidPasswordSalt) HashedPassword {
	sum := sha256.Sum256([]byte(password.password + salt.salt))
	return HashedPassword{hash: strings.ToUpper(hex.EncodeToString(sum[:]))}
}

func (h HashedPassword) Hash() string { return h.hash }

// Scan restores a hash previously written by Value. Database drivers only.
func (h *HashedPassword) Scan(src any) error {
	switch v := src.(type) {
	case string:
		h.hash = v
	case []byte:
		h.hash = string(v)
	default:
		return fmt.Errorf("valueobject: cannot scan %T into HashedPassword", src)
	}
	return nil
}

func (h HashedPassword) Value() (driver.Value, error) { return h.hash, nil }
