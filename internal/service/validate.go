package service

import (
	"regexp"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateRegistration returns the first failing rule, or nil.
func validateRegistration(email, password string) *ValidationError {
	if !emailRe.MatchString(email) {
		return &ValidationError{Message: "Invalid email address"}
	}
	if len(password) < 8 {
		return &ValidationError{Message: "Password must be at least 8 characters"}
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
		return &ValidationError{Message: "Password must contain an uppercase letter"}
	}
	if !hasLower {
		return &ValidationError{Message: "Password must contain a lowercase letter"}
	}
	if !hasDigit {
		return &ValidationError{Message: "Password must contain a digit"}
	}
	return nil
}
