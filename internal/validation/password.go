package validation

import (
	"errors"
	"unicode"
)

const (
	passwordMinLength = 6
	passwordMaxLength = 128
)

// ValidatePassword checks if a password meets the account password policy:
// at least six characters with an uppercase letter, a lowercase letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < passwordMinLength {
		return errors.New("password must be at least 6 characters long")
	}
	if len(password) > passwordMaxLength {
		return errors.New("password must not exceed 128 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
