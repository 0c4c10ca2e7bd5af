package assessment

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)

// UserDetails identifies the participant. EmailAddress is the resume key.
type UserDetails struct {
	FullName     string `json:"fullName"`
	PhoneNumber  string `json:"phoneNumber"`
	EmailAddress string `json:"emailAddress"`
	Organization string `json:"organization"`
}

// ValidationError maps field names to messages.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e[f])
	}
	return "invalid user details: " + strings.Join(parts, "; ")
}

// Validate checks every field and returns a ValidationError listing all
// problems, or nil.
func (d UserDetails) Validate() error {
	errs := ValidationError{}

	switch name := strings.TrimSpace(d.FullName); {
	case name == "":
		errs["fullName"] = "Full Name is required"
	case utf8.RuneCountInString(name) < 2:
		errs["fullName"] = "Name must be at least 2 characters"
	}

	switch phone := strings.TrimSpace(d.PhoneNumber); {
	case phone == "":
		errs["phoneNumber"] = "Phone Number is required"
	case !phonePattern.MatchString(phone):
		errs["phoneNumber"] = "Please enter a valid phone number"
	}

	switch email := strings.TrimSpace(d.EmailAddress); {
	case email == "":
		errs["emailAddress"] = "Email Address is required"
	case !validEmail(email):
		errs["emailAddress"] = "Please enter a valid email address"
	}

	switch org := strings.TrimSpace(d.Organization); {
	case org == "":
		errs["organization"] = "Organization is required"
	case utf8.RuneCountInString(org) < 2:
		errs["organization"] = "Organization name must be at least 2 characters"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalized returns a copy with the email trimmed and lower-cased.
func (d UserDetails) Normalized() UserDetails {
	d.EmailAddress = NormalizeEmail(d.EmailAddress)
	return d
}

// NormalizeEmail is the canonical form used for session resumption.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare address only, no display name.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
