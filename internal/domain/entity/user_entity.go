package entity

import (
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

// User is the aggregate root for the user domain.
// ID is assigned by the repository and never changes; Email and HashedPassword are
// replaced through the With* methods, which return a copy.
type User struct {
	ID             int64
	Email          valueobject.ValidEmailAddress
	HashedPassword valueobject.HashedPassword
}

func NewUser(id int64, email valueobject.ValidEmailAddress, hash valueobject.HashedPassword) User {
	return User{ID: id, Email: email, HashedPassword: hash}
}

func (u User) WithEmail(email valueobject.ValidEmailAddress) User {
	u.Email = email
	return u
}

func (u User) WithHashedPassword(hash valueobject.HashedPassword) User {
	u.HashedPassword = hash
	return u
}
