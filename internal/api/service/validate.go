package service

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 128
)

// Registration is the input of AuthService.Register.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 150), is.Email),
	)
}

// PasswordChange is the input of UserService.ChangePassword.
type PasswordChange struct {
	Current string `json:"currentPassword"`
	New     string `json:"newPassword"`
}

func (p PasswordChange) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Current, validation.Required),
		validation.Field(&p.New, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	)
}

func validate(v validation.Validatable) error {
	if err := v.Validate(); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
