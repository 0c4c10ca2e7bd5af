package survey

import "errors"

var (
	// ErrNotFound is returned when a survey id does not exist.
	ErrNotFound = errors.New("survey not found")

	// ErrForbidden is returned when the caller does not own the survey.
	ErrForbidden = errors.New("not authorized to access this survey")

	ErrTitleRequired   = errors.New("survey title is required")
	ErrInvalidSchema   = errors.New("invalid survey schema")
	ErrUnknownType     = errors.New("unknown element type")
	ErrElementNotFound = errors.New("element not found")
	ErrLastChoice      = errors.New("an element needs at least one choice")
	ErrChoiceRange     = errors.New("choice index out of range")
)
