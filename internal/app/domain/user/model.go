// Package user defines the user record, its public projection and the
// identifier/input validation rules shared by the account endpoints.
package user

import (
	"regexp"
	"strings"
	"time"
)

// User is the stored account record. VerificationCode and CodeExpiresAt
// are set only while the account is unverified; verification clears
// both. Zero times mean "not set".
type User struct {
	ID               string
	FirstName        string
	LastName         string
	DateOfBirth      string
	Region           string
	Email            string
	Tell             string
	PasswordHash     string
	Role             string
	IsVerified       bool
	VerificationCode string
	CodeExpiresAt    time.Time
	CreatedAt        time.Time
	VerifiedAt       time.Time
	LastLogin        time.Time
}

// Sanitized is the public projection of a User. It is constructed
// explicitly so the password hash and verification token can never
// leak through serialization.
type Sanitized struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"fname,omitempty"`
	LastName    string     `json:"lname,omitempty"`
	DateOfBirth string     `json:"dob"`
	Region      string     `json:"region,omitempty"`
	Email       string     `json:"email"`
	Tell        string     `json:"tell"`
	Role        string     `json:"role,omitempty"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// Sanitize projects the user onto its public view.
func (u User) Sanitize() Sanitized {
	s := Sanitized{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DateOfBirth: u.DateOfBirth,
		Region:      u.Region,
		Email:       u.Email,
		Tell:        u.Tell,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
	if !u.VerifiedAt.IsZero() {
		t := u.VerifiedAt
		s.VerifiedAt = &t
	}
	if !u.LastLogin.IsZero() {
		t := u.LastLogin
		s.LastLogin = &t
	}
	return s
}

// Initials returns the upper-cased first letters of the names. A
// missing name contributes nothing; signup guarantees at least one
// name is present.
func (u User) Initials() string {
	var b strings.Builder
	if u.FirstName != "" {
		b.WriteString(strings.ToUpper(u.FirstName[:1]))
	}
	if u.LastName != "" {
		b.WriteString(strings.ToUpper(u.LastName[:1]))
	}
	return b.String()
}

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	codeRegex  = regexp.MustCompile(`^\d{6}$`)
)

// IsEmail reports whether input looks like an email address.
func IsEmail(input string) bool { return emailRegex.MatchString(input) }

// IsPhoneNumber reports whether input is an E.164 phone number.
func IsPhoneNumber(input string) bool { return phoneRegex.MatchString(input) }

// IsVerificationCode reports whether input is a 6-digit code.
func IsVerificationCode(input string) bool { return codeRegex.MatchString(input) }

// IdentifierKind classifies a login identifier.
type IdentifierKind string

const (
	IdentifierEmail   IdentifierKind = "email"
	IdentifierTell    IdentifierKind = "tell"
	IdentifierInvalid IdentifierKind = "invalid"
)

// ClassifyIdentifier decides whether input is an email, a phone number
// or neither.
func ClassifyIdentifier(input string) IdentifierKind {
	switch {
	case IsEmail(input):
		return IdentifierEmail
	case IsPhoneNumber(input):
		return IdentifierTell
	default:
		return IdentifierInvalid
	}
}

// NormalizeEmail lower-cases and trims an email address for storage
// and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
