package questions

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var embeddedBank []byte

// Bank is an ordered, indexed question bank.
type Bank struct {
	version   string
	themes    []Theme
	questions []Question
	byID      map[int]*Question
	byTheme   map[string][]Question
	themeByID map[string]*Theme
}

type bankFile struct {
	Version   string     `yaml:"version"`
	Themes    []Theme    `yaml:"themes"`
	Questions []Question `yaml:"questions"`
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the embedded maturity question bank. It panics if the
// embedded data is malformed, which the package tests guard against.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := Parse(embeddedBank)
		if err != nil {
			panic(fmt.Sprintf("questions: embedded bank: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}

// Embedded returns the raw YAML the default bank is built from.
func Embedded() []byte {
	return slices.Clone(embeddedBank)
}

// Parse decodes a YAML question bank and validates it.
func Parse(data []byte) (*Bank, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return New(f.Version, f.Themes, f.Questions)
}

// New builds a bank from themes and questions, in the given order.
func New(version string, themes []Theme, qs []Question) (*Bank, error) {
	for i := range qs {
		if qs[i].Type == "" {
			qs[i].Type = TypeRating
		}
	}
	if err := validateBank(themes, qs); err != nil {
		return nil, err
	}

	b := &Bank{
		version:   version,
		themes:    themes,
		questions: qs,
		byID:      make(map[int]*Question, len(qs)),
		byTheme:   make(map[string][]Question, len(themes)),
		themeByID: make(map[string]*Theme, len(themes)),
	}
	for i := range b.themes {
		b.themeByID[b.themes[i].ID] = &b.themes[i]
	}
	for i := range b.questions {
		q := &b.questions[i]
		b.byID[q.ID] = q
		b.byTheme[q.Theme] = append(b.byTheme[q.Theme], *q)
	}
	return b, nil
}

// Version returns the bank's semantic version, e.g. "v1.0.0".
func (b *Bank) Version() string { return b.version }

// Themes returns all themes in display order.
func (b *Bank) Themes() []Theme {
	return slices.Clone(b.themes)
}

// Questions returns all questions in wizard order.
func (b *Bank) Questions() []Question {
	return slices.Clone(b.questions)
}

// Total returns the number of questions.
func (b *Bank) Total() int { return len(b.questions) }

// At returns the question at a zero-based wizard position.
func (b *Bank) At(i int) (Question, bool) {
	if i < 0 || i >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[i], true
}

// ErrNotFound is returned for an unknown question id.
var ErrNotFound = errors.New("question not found")

// Question returns a question by ID, or ErrNotFound.
func (b *Bank) Question(id int) (Question, error) {
	q, ok := b.byID[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return *q, nil
}

// Theme returns a theme by ID.
func (b *Bank) Theme(id string) (Theme, bool) {
	t, ok := b.themeByID[id]
	if !ok {
		return Theme{}, false
	}
	return *t, true
}

// ByTheme returns the questions of a theme in wizard order.
func (b *Bank) ByTheme(themeID string) []Question {
	return slices.Clone(b.byTheme[themeID])
}

// Validate re-runs the structural checks on the bank.
func (b *Bank) Validate() error {
	return validateBank(b.themes, b.questions)
}
