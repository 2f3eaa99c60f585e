package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

func TestNewUpdateUserCommand(t *testing.T) {
	email, err := valueobject.ParseEmailAddress("bill@microsoft.com")
	require.NoError(t, err)
	pw, err := valueobject.ParsePassword("password123")
	require.NoError(t, err)

	t.Run("both absent fails", func(t *testing.T) {
		_, err := NewUpdateUserCommand(1, nil, nil)
		assert.ErrorIs(t, err, ErrUpdateCommandEmpty)
		assert.ErrorIs(t, err, valueobject.ErrValidation)
		assert.Equal(t, UpdateUserCommandRequirements, err.Error())
	})

	cases := []struct {
		name     string
		email    *valueobject.ValidEmailAddress
		password *valueobject.ValidPassword
	}{
		{"email only", &email, nil},
		{"password only", nil, &pw},
		{"both", &email, &pw},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := NewUpdateUserCommand(42, tc.email, tc.password)
			require.NoError(t, err)
			assert.Equal(t, int64(42), cmd.ID())

			gotEmail, hasEmail := cmd.EmailAddress()
			assert.Equal(t, tc.email != nil, hasEmail)
			if hasEmail {
				assert.Equal(t, email, gotEmail)
			}
			gotPw, hasPw := cmd.Password()
			assert.Equal(t, tc.password != nil, hasPw)
			if hasPw {
				assert.Equal(t, pw, gotPw)
			}
		})
	}
}

func TestUpdateUserCommandCopiesInputs(t *testing.T) {
	email, err := valueobject.ParseEmailAddress("bill@microsoft.com")
	require.NoError(t, err)

	cmd, err := NewUpdateUserCommand(1, &email, nil)
	require.NoError(t, err)

	email, err = valueobject.ParseEmailAddress("steve@apple.com")
	require.NoError(t, err)

	got, _ := cmd.EmailAddress()
	assert.Equal(t, "bill@microsoft.com", got.Address())
}
