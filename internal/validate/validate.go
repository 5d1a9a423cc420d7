package validate

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Error is a single schema violation. Only the first violation of a schema
// is ever surfaced to callers; remaining checks are not evaluated.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[\d\s+\-()]+$`)
)

const maxEmailLen = 254

// First runs checks in order and returns the first violation, or nil.
func First(checks ...error) error {
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// NonEmpty requires a non-empty value.
func NonEmpty(field, value, message string) error {
	if value == "" {
		return &Error{Field: field, Message: message}
	}
	return nil
}

// MinLen requires at least n characters, counted as runes so multi-byte
// names and addresses are measured the way users see them. Empty optional
// fields should be guarded by the caller before applying length rules.
func MinLen(field, value string, n int, message string) error {
	if utf8.RuneCountInString(value) < n {
		return &Error{Field: field, Message: message}
	}
	return nil
}

// MaxLen requires at most n characters, counted as runes.
func MaxLen(field, value string, n int, message string) error {
	if utf8.RuneCountInString(value) > n {
		return &Error{Field: field, Message: message}
	}
	return nil
}

// Email requires a well-formed, non-empty address no longer than 254 chars.
func Email(field, value string) error {
	if value == "" {
		return &Error{Field: field, Message: fmt.Sprintf("%s is required", field)}
	}
	if len(value) > maxEmailLen {
		return &Error{Field: field, Message: "Email too long"}
	}
	if !emailRe.MatchString(value) {
		return &Error{Field: field, Message: "Invalid email format"}
	}
	return nil
}

// OptionalEmail applies Email only when a value is present.
func OptionalEmail(field, value string) error {
	if value == "" {
		return nil
	}
	return Email(field, value)
}

// Phone requires 10-20 chars of digits, spaces, +, -, ( and ).
func Phone(field, value string) error {
	if len(value) < 10 {
		return &Error{Field: field, Message: "Phone number must be at least 10 characters"}
	}
	if len(value) > 20 {
		return &Error{Field: field, Message: "Phone number too long"}
	}
	if !phoneRe.MatchString(value) {
		return &Error{Field: field, Message: "Invalid phone number format"}
	}
	return nil
}

// IntRange requires lo <= value <= hi.
func IntRange(field string, value, lo, hi int, message string) error {
	if value < lo || value > hi {
		return &Error{Field: field, Message: message}
	}
	return nil
}

// Password enforces the signup password policy: 8-128 chars with at least
// one upper-case letter, one lower-case letter and one digit.
func Password(field, value string) error {
	if value == "" {
		return &Error{Field: field, Message: "Password is required"}
	}
	if len(value) < 8 {
		return &Error{Field: field, Message: "Password must be at least 8 characters"}
	}
	if len(value) > 128 {
		return &Error{Field: field, Message: "Password too long"}
	}
	var upper, lower, digit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return &Error{Field: field, Message: "Password must contain upper and lower case letters and a digit"}
	}
	return nil
}
