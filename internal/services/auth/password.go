// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Validation error codes.
const (
	CodeTooShort        = "min_length"
	CodeEntirelyNumeric = "entirely_numeric"
	CodeTooSimilar      = "too_similar"
)

// PasswordValidator validates passwords against various criteria
type PasswordValidator struct {
	MinLength           int
	CheckNumeric        bool
	CheckUserSimilarity bool
}

// NewPasswordValidator returns a validator enforcing minLength and the
// numeric and similarity checks.
func NewPasswordValidator(minLength int) *PasswordValidator {
	if minLength <= 0 {
		minLength = 8
	}
	return &PasswordValidator{
		MinLength:           minLength,
		CheckNumeric:        true,
		CheckUserSimilarity: true,
	}
}

// ValidationError represents a single password validation error
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// PasswordValidationError wraps multiple validation errors
type PasswordValidationError struct {
	Errors []ValidationError
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return e.Errors[0].Message
}

// Codes returns the codes of all failed checks.
func (e *PasswordValidationError) Codes() []string {
	codes := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		codes[i] = err.Code
	}
	return codes
}

// TooShort reports whether the password only needs to be longer.
func (v *PasswordValidator) TooShort(password string) bool {
	return utf8.RuneCountInString(password) < v.MinLength
}

// Validate checks a password; userAttributes are compared for similarity.
// It returns nil or a *PasswordValidationError.
func (v *PasswordValidator) Validate(password string, userAttributes ...string) error {
	var errs []ValidationError

	if v.TooShort(password) {
		errs = append(errs, ValidationError{
			Code:    CodeTooShort,
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	}

	if v.CheckNumeric && isEntirelyNumeric(password) {
		errs = append(errs, ValidationError{
			Code:    CodeEntirelyNumeric,
			Message: "Password cannot be entirely numeric.",
		})
	}

	if v.CheckUserSimilarity && isSimilarToUserAttributes(password, userAttributes) {
		errs = append(errs, ValidationError{
			Code:    CodeTooSimilar,
			Message: "Password is too similar to your personal information.",
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return &PasswordValidationError{Errors: errs}
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func isEntirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return password != ""
}

func isSimilarToUserAttributes(password string, attributes []string) bool {
	passwordLower := strings.ToLower(password)

	for _, attr := range attributes {
		// Compare the local part of email addresses as well.
		local, _, _ := strings.Cut(attr, "@")
		for _, a := range []string{attr, local} {
			if utf8.RuneCountInString(a) < 3 {
				continue
			}
			a = strings.ToLower(a)
			if strings.Contains(passwordLower, a) || similarity(passwordLower, a) > 0.7 {
				return true
			}
		}
	}

	return false
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	return float64(longestCommonSubsequence(ra, rb)) / float64(max(len(ra), len(rb)))
}

func longestCommonSubsequence(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else {
				cur[j] = max(prev[j], cur[j-1])
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
