// Package assess holds the screens of the maturity assessment wizard:
// participant details, welcome, questions and results.
package assess

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/export"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/screen"
)

// Deps are the services the wizard screens share.
type Deps struct {
	Session   *assessment.Session
	ExportDir string
	Formats   []export.Format
	Logger    *zap.Logger
	Now       func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.ExportDir == "" {
		d.ExportDir = "."
	}
	if len(d.Formats) == 0 {
		d.Formats = export.Formats
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// New returns the first wizard screen. A session that already has user
// details (restored by id) skips straight to the welcome page.
func New(d Deps) screen.Screen {
	return newDetails(d.withDefaults())
}

// snapshot is a copy of session state taken on the goroutine that changed
// the session. Views render snapshots and never touch the session.
type snapshot struct {
	Data       assessment.Data
	Bank       *questions.Bank
	Question   questions.Question
	OnQuestion bool
	Answered   int
	Total      int
}

func take(s *assessment.Session) snapshot {
	q, ok := s.Current()
	answered, total := s.Progress()
	return snapshot{
		Data:       s.Data(),
		Bank:       s.Bank(),
		Question:   q,
		OnQuestion: ok,
		Answered:   answered,
		Total:      total,
	}
}

// Number is the 1-based position of the current question.
func (s snapshot) Number() int {
	i, _ := assessment.QuestionIndex(s.Data.CurrentStep, s.Total)
	return i + 1
}

// IsLast reports whether the current question is the final one.
func (s snapshot) IsLast() bool {
	return s.OnQuestion && s.Data.CurrentStep >= assessment.LastStep(s.Total)
}

// Saved is the index of the stored answer for the current question, or -1.
func (s snapshot) Saved() int {
	a, ok := s.Data.Answers.Get(s.Question.ID)
	if !ok {
		return -1
	}
	return slices.Index(s.Question.Options, a.SelectedOption)
}

func (s snapshot) status() string {
	if s.Total == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d answered", s.Answered, s.Total)
}
