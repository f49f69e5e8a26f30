package user

import (
	"net/mail"

	"github.com/dmarquez/inventory-management/internal"
)

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d CreateUserDTO) Validate() error {
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return ValidationError{Msg: "email is invalid"}
	}
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if len(d.Password) < 8 {
		return ValidationError{Msg: "password must be at least 8 characters"}
	}
	if d.Role != internal.RoleAdmin && d.Role != internal.RoleUser {
		return ValidationError{Msg: "role must be ADMIN or USER"}
	}
	return nil
}

type UpdateUserDTO struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func (d UpdateUserDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.Role != internal.RoleAdmin && d.Role != internal.RoleUser {
		return ValidationError{Msg: "role must be ADMIN or USER"}
	}
	return nil
}

type SetActiveDTO struct {
	IsActive bool `json:"is_active"`
}
