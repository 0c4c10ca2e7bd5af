package survey

import (
	"fmt"

	"github.com/google/uuid"
)

// DefaultPageName is the single page every built survey uses.
const DefaultPageName = "page1"

// Schema is the stored survey layout.
type Schema struct {
	Pages []Page `json:"pages"`
}

// Page is a group of elements shown together.
type Page struct {
	Name     string    `json:"name"`
	Elements []Element `json:"elements"`
}

// Elements flattens all pages in order.
func (s Schema) Elements() []Element {
	var out []Element
	for _, p := range s.Pages {
		out = append(out, p.Elements...)
	}
	return out
}

// Builder edits the element list of a survey. It is not safe for
// concurrent use.
type Builder struct {
	elements []Element
	selected string
	newID    func() string
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{newID: uuid.NewString}
}

// FromSchema loads the elements of s into a builder.
func FromSchema(s Schema) *Builder {
	b := NewBuilder()
	for _, e := range s.Elements() {
		b.elements = append(b.elements, e.clone())
	}
	return b
}

// Elements returns a copy of the current element list.
func (b *Builder) Elements() []Element {
	out := make([]Element, len(b.elements))
	for i, e := range b.elements {
		out[i] = e.clone()
	}
	return out
}

// Len is the number of elements.
func (b *Builder) Len() int { return len(b.elements) }

// Selected returns the selected element, if any.
func (b *Builder) Selected() (Element, bool) {
	if b.selected == "" {
		return Element{}, false
	}
	i := b.index(b.selected)
	if i < 0 {
		return Element{}, false
	}
	return b.elements[i].clone(), true
}

// Add creates an element of type t at index and selects it. A negative
// index appends; an index past the end is clamped.
func (b *Builder) Add(t ElementType, index int) (Element, error) {
	if _, err := ParseElementType(string(t)); err != nil {
		return Element{}, err
	}
	e := Element{
		ID:    b.newID(),
		Type:  t,
		Title: t.DefaultTitle(),
		Name:  fmt.Sprintf("question%d", len(b.elements)+1),
	}
	if t.HasChoices() {
		e.Choices = []string{"Option 1", "Option 2"}
	}

	if index < 0 || index >= len(b.elements) {
		b.elements = append(b.elements, e)
	} else {
		b.elements = append(b.elements, Element{})
		copy(b.elements[index+1:], b.elements[index:])
		b.elements[index] = e
	}
	b.selected = e.ID
	return e.clone(), nil
}

// Move shifts the element at from to position to. Both are clamped to the
// list bounds.
func (b *Builder) Move(from, to int) {
	n := len(b.elements)
	if n < 2 {
		return
	}
	from = clamp(from, 0, n-1)
	to = clamp(to, 0, n-1)
	if from == to {
		return
	}
	e := b.elements[from]
	if from < to {
		copy(b.elements[from:to], b.elements[from+1:to+1])
	} else {
		copy(b.elements[to+1:from+1], b.elements[to:from])
	}
	b.elements[to] = e
}

// Remove deletes the element with id. Removing the selected element clears
// the selection.
func (b *Builder) Remove(id string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	b.elements = append(b.elements[:i], b.elements[i+1:]...)
	if b.selected == id {
		b.selected = ""
	}
	return nil
}

// Select marks the element with id as selected.
func (b *Builder) Select(id string) error {
	if b.index(id) < 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	b.selected = id
	return nil
}

// AddChoice appends "Option <n+1>" to the element's choices.
func (b *Builder) AddChoice(id string) (Element, error) {
	i := b.index(id)
	if i < 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	e := &b.elements[i]
	e.Choices = append(e.Choices, fmt.Sprintf("Option %d", len(e.Choices)+1))
	return e.clone(), nil
}

// RemoveChoice drops choice i. The last remaining choice is never removed.
func (b *Builder) RemoveChoice(id string, choice int) (Element, error) {
	i := b.index(id)
	if i < 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	e := &b.elements[i]
	if choice < 0 || choice >= len(e.Choices) {
		return Element{}, fmt.Errorf("%w: %d", ErrChoiceRange, choice)
	}
	if len(e.Choices) <= 1 {
		return Element{}, ErrLastChoice
	}
	e.Choices = append(e.Choices[:choice], e.Choices[choice+1:]...)
	return e.clone(), nil
}

// Update applies p to the element with id.
func (b *Builder) Update(id string, p Patch) (Element, error) {
	i := b.index(id)
	if i < 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	p.apply(&b.elements[i])
	return b.elements[i].clone(), nil
}

// Schema renders the elements as a single page.
func (b *Builder) Schema() Schema {
	return Schema{Pages: []Page{{Name: DefaultPageName, Elements: b.Elements()}}}
}

func (b *Builder) index(id string) int {
	for i, e := range b.elements {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
