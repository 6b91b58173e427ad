package validation

import (
	"strings"

	"capsort/internal/models"
)

// SignupInput is the public registration payload.
type SignupInput struct {
	FullName      string `json:"fullName" validate:"required,max=255"`
	Email         string `json:"email" validate:"required,email,max=255"`
	ContactNumber string `json:"contactNumber" validate:"omitempty,max=32"`
	Password      string `json:"password" validate:"required"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ValidateSignup trims and validates a registration request.
func ValidateSignup(in *SignupInput) error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)

	if err := Struct(in); err != nil {
		return err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return models.NewFieldValidationError(models.FieldError{Field: "password", Message: err.Error()})
	}
	return nil
}

// ValidateLogin trims and validates a login request.
func ValidateLogin(in *LoginInput) error {
	in.Email = strings.TrimSpace(in.Email)
	return Struct(in)
}
