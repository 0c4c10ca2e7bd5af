package survey

import "strings"

// Status is the publication state of a survey.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusClosed   Status = "CLOSED"
	StatusArchived Status = "ARCHIVED"
)

// ParseStatus matches s case-insensitively against the known states.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusDraft, StatusActive, StatusClosed, StatusArchived:
		return st, true
	}
	return "", false
}

// resolveStatus returns the parsed status, or current when s is invalid.
func resolveStatus(s string, current Status) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return current
}
