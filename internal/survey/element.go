package survey

import (
	"fmt"
	"strings"
)

// ElementType is the kind of input a survey element renders.
type ElementType string

const (
	TypeText       ElementType = "text"
	TypeRating     ElementType = "rating"
	TypeRadioGroup ElementType = "radiogroup"
	TypeCheckbox   ElementType = "checkbox"
	TypeComment    ElementType = "comment"
	TypeBoolean    ElementType = "boolean"
	TypeDropdown   ElementType = "dropdown"
	TypeDate       ElementType = "date"
	TypeFile       ElementType = "file"
)

// ElementTypes lists every supported type in toolbox order.
var ElementTypes = []ElementType{
	TypeText, TypeRating, TypeRadioGroup, TypeCheckbox, TypeComment,
	TypeBoolean, TypeDropdown, TypeDate, TypeFile,
}

// ParseElementType accepts a type name in any case.
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ElementTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// HasChoices reports whether elements of this type carry a choice list.
func (t ElementType) HasChoices() bool {
	return t == TypeRadioGroup || t == TypeCheckbox
}

// DefaultTitle is the placeholder title given to a new element.
func (t ElementType) DefaultTitle() string {
	switch t {
	case TypeText:
		return "What is your answer?"
	case TypeRating:
		return "How would you rate this?"
	case TypeRadioGroup:
		return "Select one option"
	case TypeCheckbox:
		return "Select all that apply"
	default:
		return "New Question"
	}
}

// Element is one question on the survey canvas.
type Element struct {
	ID         string         `json:"id"`
	Type       ElementType    `json:"type"`
	Title      string         `json:"title"`
	Name       string         `json:"name"`
	IsRequired bool           `json:"isRequired"`
	Choices    []string       `json:"choices,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (e Element) clone() Element {
	e.Choices = append([]string(nil), e.Choices...)
	if e.Properties != nil {
		props := make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			props[k] = v
		}
		e.Properties = props
	}
	return e
}

// Patch holds the element fields to change. Nil fields are left alone.
type Patch struct {
	Title      *string        `json:"title,omitempty"`
	Name       *string        `json:"name,omitempty"`
	IsRequired *bool          `json:"isRequired,omitempty"`
	Choices    []string       `json:"choices,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (p Patch) apply(e *Element) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.IsRequired != nil {
		e.IsRequired = *p.IsRequired
	}
	if p.Choices != nil {
		e.Choices = append([]string(nil), p.Choices...)
	}
	if p.Properties != nil {
		if e.Properties == nil {
			e.Properties = map[string]any{}
		}
		for k, v := range p.Properties {
			e.Properties[k] = v
		}
	}
}
