package application

import (
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

// CreateUserCommand carries already-validated input for UserService.CreateUser.
type CreateUserCommand struct {
	EmailAddress valueobject.ValidEmailAddress
	Password     valueobject.ValidPassword
}

func NewCreateUserCommand(email valueobject.ValidEmailAddress, password valueobject.ValidPassword) CreateUserCommand {
	return CreateUserCommand{EmailAddress: email, Password: password}
}

// UpdateUserCommand changes the email, the password, or both of user ID.
// At least one of them is always present.
type UpdateUserCommand struct {
	id       int64
	email    *valueobject.ValidEmailAddress
	password *valueobject.ValidPassword
}

func NewUpdateUserCommand(id int64, email *valueobject.ValidEmailAddress, password *valueobject.ValidPassword) (UpdateUserCommand, error) {
	if email == nil && password == nil {
		return UpdateUserCommand{}, ErrUpdateCommandEmpty
	}
	cmd := UpdateUserCommand{id: id}
	if email != nil {
		e := *email
		cmd.email = &e
	}
	if password != nil {
		p := *password
		cmd.password = &p
	}
	return cmd, nil
}

func (c UpdateUserCommand) ID() int64 { return c.id }

func (c UpdateUserCommand) EmailAddress() (valueobject.ValidEmailAddress, bool) {
	if c.email == nil {
		return valueobject.ValidEmailAddress{}, false
	}
	return *c.email, true
}

func (c UpdateUserCommand) Password() (valueobject.ValidPassword, bool) {
	if c.password == nil {
		return valueobject.ValidPassword{}, false
	}
	return *c.password, true
}
