package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

func TestUserWithFieldsReturnsCopy(t *testing.T) {
	email, err := valueobject.ParseEmailAddress("bill@microsoft.com")
	require.NoError(t, err)
	newEmail, err := valueobject.ParseEmailAddress("bill@gates.org")
	require.NoError(t, err)
	salt, err := valueobject.NewValidPasswordSalt("12345678901235467890123456789012")
	require.NoError(t, err)
	pw, err := valueobject.ParsePassword("password123")
	require.NoError(t, err)
	pw2, err := valueobject.ParsePassword("another-password")
	require.NoError(t, err)

	original := NewUser(7, email, valueobject.NewHashedPassword(pw, salt))

	changed := original.WithEmail(newEmail).WithHashedPassword(valueobject.NewHashedPassword(pw2, salt))

	assert.Equal(t, int64(7), changed.ID)
	assert.Equal(t, newEmail, changed.Email)
	assert.Equal(t, valueobject.NewHashedPassword(pw2, salt), changed.HashedPassword)

	assert.Equal(t, email, original.Email)
	assert.Equal(t, valueobject.NewHashedPassword(pw, salt), original.HashedPassword)
}
