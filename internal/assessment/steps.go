package assessment

import "errors"

// Wizard steps before the first question. Step StepFirstQuestion+i shows
// the question at bank index i.
const (
	StepUserDetails   = 0
	StepWelcome       = 1
	StepFirstQuestion = 2
)

var (
	// ErrNoUserDetails guards every page after the details form.
	ErrNoUserDetails = errors.New("assessment: user details required")

	// ErrNoAnswer is returned by Next when the current question is unanswered.
	ErrNoAnswer = errors.New("assessment: current question has no answer")

	// ErrNotResumable is returned when a stored assessment is missing or
	// already completed.
	ErrNotResumable = errors.New("assessment: not resumable")

	// ErrCompleted is returned for mutations after completion.
	ErrCompleted = errors.New("assessment: already completed")

	// ErrNotOnQuestion is returned when navigation needs a question step.
	ErrNotOnQuestion = errors.New("assessment: not on a question step")
)

// LastStep is the step of the final question for a bank of total questions.
func LastStep(total int) int {
	return StepFirstQuestion + total - 1
}

// QuestionIndex maps a step to a 0-based bank index.
func QuestionIndex(step, total int) (int, bool) {
	i := step - StepFirstQuestion
	if i < 0 || i >= total {
		return 0, false
	}
	return i, true
}

// ClampToQuestions resets steps outside the question range to the first
// question.
func ClampToQuestions(step, total int) int {
	if _, ok := QuestionIndex(step, total); ok {
		return step
	}
	return StepFirstQuestion
}
