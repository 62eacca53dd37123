// Package contact validates contact form submissions and relays them to the
// site owner by email, with an automatic acknowledgement to the visitor.
package contact

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation errors. Their text is shown to the visitor as-is.
var (
	ErrMissingFields = errors.New("All fields are required")
	ErrInvalidEmail  = errors.New("Invalid email address")
	ErrTooShort      = errors.New("Name must be at least 2 characters and message at least 10 characters")
)

// ErrNotConfigured is returned by Submit when no mailer is available.
var ErrNotConfigured = errors.New("Email service not configured")

const (
	minNameLen    = 2
	minMessageLen = 10
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Submission is a contact form post.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Normalize returns s with surrounding whitespace trimmed from every field.
func (s Submission) Normalize() Submission {
	return Submission{
		Name:    strings.TrimSpace(s.Name),
		Email:   strings.TrimSpace(s.Email),
		Subject: strings.TrimSpace(s.Subject),
		Message: strings.TrimSpace(s.Message),
	}
}

// Validate checks a normalized submission.
func (s Submission) Validate() error {
	if s.Name == "" || s.Email == "" || s.Subject == "" || s.Message == "" {
		return ErrMissingFields
	}
	if !emailRe.MatchString(s.Email) {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(s.Name) < minNameLen || utf8.RuneCountInString(s.Message) < minMessageLen {
		return ErrTooShort
	}
	return nil
}

// IsValidation reports whether err is caused by the visitor's input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingFields) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrTooShort)
}
