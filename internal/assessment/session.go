package assessment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/metrics"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/store"
)

// Event kinds written to the assessment event log.
const (
	EventAnswer   = "answer"
	EventStep     = "step"
	EventComplete = "complete"
	EventReset    = "reset"
)

// Recommender produces improvement suggestions for a scored assessment.
type Recommender interface {
	Recommend(ctx context.Context, result Result, answers Answers) ([]string, error)
}

// Data is the wizard state that is persisted as one assessment document.
type Data struct {
	ID          string       `json:"id,omitempty"`
	UserDetails *UserDetails `json:"userDetails,omitempty"`
	Answers     Answers      `json:"answers"`
	CurrentStep int          `json:"currentStep"`
	Completed   bool         `json:"completed"`
	StartTime   time.Time    `json:"startTime"`
	EndTime     *time.Time   `json:"endTime,omitempty"`
	Results     *Result      `json:"results,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Session drives one participant through the wizard and keeps the stored
// document in sync. It is not safe for concurrent use.
type Session struct {
	bank     *questions.Bank
	repo     store.AssessmentRepo
	events   store.EventRepo
	rec      Recommender
	log      *zap.Logger
	now      func() time.Time
	data     Data
	recordID string
}

// Option configures a Session.
type Option func(*Session)

// WithEvents records every mutation in the event log.
func WithEvents(repo store.EventRepo) Option {
	return func(s *Session) { s.events = repo }
}

// WithRecommender sets the recommendation source used by Complete.
func WithRecommender(r Recommender) Option {
	return func(s *Session) { s.rec = r }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session in its initial state.
func NewSession(bank *questions.Bank, repo store.AssessmentRepo, opts ...Option) *Session {
	s := &Session{bank: bank, repo: repo, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.data = s.initialData()
	return s
}

func (s *Session) initialData() Data {
	return Data{Answers: Answers{}, StartTime: s.now()}
}

// Data returns a copy of the current state.
func (s *Session) Data() Data {
	d := s.data
	d.Answers = slices.Clone(s.data.Answers)
	if s.data.UserDetails != nil {
		ud := *s.data.UserDetails
		d.UserDetails = &ud
	}
	return d
}

// Bank returns the question bank the session scores against.
func (s *Session) Bank() *questions.Bank { return s.bank }

// RecordID is the id of the stored document, empty before the first save
// and after completion or reset.
func (s *Session) RecordID() string { return s.recordID }

// HasUserDetails reports whether the details form has been submitted.
func (s *Session) HasUserDetails() bool { return s.data.UserDetails != nil }

// Start validates and normalizes details, then resumes the oldest
// incomplete assessment for the email or begins a new one. It reports
// whether an existing assessment was resumed.
func (s *Session) Start(ctx context.Context, details UserDetails) (bool, error) {
	if err := details.Validate(); err != nil {
		return false, err
	}
	details = details.Normalized()

	rec, err := s.repo.FindIncomplete(ctx, details.EmailAddress)
	switch {
	case err == nil:
		s.adopt(rec)
		metrics.Assessments.WithLabelValues(metrics.EventResumed).Inc()
		s.log.Info("assessment resumed",
			zap.String("id", rec.ID),
			zap.Int("answers", len(s.data.Answers)),
			zap.Int("step", s.data.CurrentStep))
		return true, nil
	case !errors.Is(err, store.ErrNotFound):
		// Resume is best effort; a lookup failure starts a fresh assessment.
		s.log.Warn("resume lookup failed", zap.String("email", details.EmailAddress), zap.Error(err))
	}

	prev := s.Data()
	s.data.UserDetails = &details
	if s.data.StartTime.IsZero() {
		s.data.StartTime = s.now()
	}
	if err := s.commit(ctx, prev, nil); err != nil {
		return false, err
	}
	metrics.Assessments.WithLabelValues(metrics.EventStarted).Inc()
	s.log.Info("assessment started", zap.String("id", s.recordID))
	return false, nil
}

// Restore reloads an in-progress assessment by id.
func (s *Session) Restore(ctx context.Context, id string) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotResumable
		}
		return fmt.Errorf("restore assessment %s: %w", id, err)
	}
	if rec.Completed {
		return ErrNotResumable
	}
	s.adopt(rec)
	return nil
}

// Load reads any stored assessment, completed or not, for display.
// Mutations on a completed assessment fail with ErrCompleted.
func (s *Session) Load(ctx context.Context, id string) error {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	s.adopt(rec)
	if rec.Completed {
		s.recordID = ""
	}
	return nil
}

func (s *Session) adopt(rec *store.AssessmentRecord) {
	s.data = FromRecord(rec)
	s.recordID = rec.ID
}

// Guard checks that the participant may see step.
func (s *Session) Guard(step int) error {
	if step > StepUserDetails && !s.HasUserDetails() {
		return ErrNoUserDetails
	}
	return nil
}

// SetStep moves to step and persists it.
func (s *Session) SetStep(ctx context.Context, step int) error {
	if s.data.Completed {
		return ErrCompleted
	}
	if err := s.Guard(step); err != nil {
		return err
	}
	prev := s.Data()
	s.data.CurrentStep = step
	return s.commit(ctx, prev, &store.AssessmentEventData{Kind: EventStep, Step: step})
}

// Enter opens the question pages, resetting a step outside the question
// range to the first question.
func (s *Session) Enter(ctx context.Context) error {
	if err := s.Guard(StepFirstQuestion); err != nil {
		return err
	}
	step := ClampToQuestions(s.data.CurrentStep, s.bank.Total())
	if step == s.data.CurrentStep {
		return nil
	}
	return s.SetStep(ctx, step)
}

// Current returns the question shown at the current step.
func (s *Session) Current() (questions.Question, bool) {
	i, ok := QuestionIndex(s.data.CurrentStep, s.bank.Total())
	if !ok {
		return questions.Question{}, false
	}
	return s.bank.At(i)
}

// Answer records option for question qid.
func (s *Session) Answer(ctx context.Context, qid int, option string) (Answer, error) {
	if s.data.Completed {
		return Answer{}, ErrCompleted
	}
	if err := s.Guard(StepFirstQuestion); err != nil {
		return Answer{}, err
	}
	if _, err := s.bank.Question(qid); err != nil {
		return Answer{}, err
	}
	prev := s.Data()
	ans := s.data.Answers.Save(qid, option)
	ev := store.AssessmentEventData{Kind: EventAnswer, QuestionID: qid, Score: ans.Score, Step: s.data.CurrentStep}
	if err := s.commit(ctx, prev, &ev); err != nil {
		return Answer{}, err
	}
	metrics.Answers.Inc()
	return ans, nil
}

// Next saves option (when non-empty) for the current question and
// advances. On the last question it completes the assessment and reports
// done.
func (s *Session) Next(ctx context.Context, option string) (done bool, err error) {
	q, ok := s.Current()
	if !ok {
		return false, ErrNotOnQuestion
	}
	if option != "" {
		if _, err := s.Answer(ctx, q.ID, option); err != nil {
			return false, err
		}
	}
	if _, answered := s.data.Answers.Get(q.ID); !answered {
		return false, ErrNoAnswer
	}
	if s.data.CurrentStep >= LastStep(s.bank.Total()) {
		if _, err := s.Complete(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, s.SetStep(ctx, s.data.CurrentStep+1)
}

// Previous saves option (when non-empty) and goes back one question. On
// the first question it returns to the welcome page.
func (s *Session) Previous(ctx context.Context, option string) error {
	q, ok := s.Current()
	if !ok {
		return ErrNotOnQuestion
	}
	if option != "" {
		if _, err := s.Answer(ctx, q.ID, option); err != nil {
			return err
		}
	}
	return s.SetStep(ctx, s.data.CurrentStep-1)
}

// Complete scores the assessment, asks for recommendations and stores the
// final document. The session forgets the record id afterwards so a new
// Start creates a fresh assessment. When the save fails the session stays
// incomplete and Complete may be retried.
func (s *Session) Complete(ctx context.Context) (Result, error) {
	if s.data.Completed && s.data.Results != nil {
		return *s.data.Results, nil
	}
	if !s.HasUserDetails() {
		return Result{}, ErrNoUserDetails
	}

	prev := s.Data()
	end := s.now()
	s.data.Completed = true
	s.data.EndTime = &end

	res := Score(s.bank, s.data.Answers)
	res.Recommendations = s.recommend(ctx, res)
	s.data.Results = &res

	if err := s.commit(ctx, prev, &store.AssessmentEventData{Kind: EventComplete, Step: s.data.CurrentStep}); err != nil {
		return Result{}, err
	}
	metrics.Assessments.WithLabelValues(metrics.EventCompleted).Inc()
	metrics.MaturityLevels.WithLabelValues(string(res.MaturityLevel)).Inc()
	s.log.Info("assessment completed",
		zap.String("id", s.data.ID),
		zap.Float64("overall", res.OverallScore),
		zap.String("level", string(res.MaturityLevel)))

	s.recordID = ""
	return res, nil
}

func (s *Session) recommend(ctx context.Context, res Result) []string {
	if s.rec == nil {
		return FallbackRecommendations()
	}
	recs, err := s.rec.Recommend(ctx, res, s.data.Answers)
	if err != nil || len(recs) == 0 {
		s.log.Warn("recommendations unavailable, using fallback", zap.Error(err))
		return FallbackRecommendations()
	}
	return recs
}

// Reset discards all progress and detaches from the stored document.
func (s *Session) Reset(ctx context.Context) {
	if s.recordID != "" {
		s.appendEvent(ctx, store.AssessmentEventData{Kind: EventReset, Step: s.data.CurrentStep})
		metrics.Assessments.WithLabelValues(metrics.EventReset).Inc()
	}
	s.data = s.initialData()
	s.recordID = ""
}

// ClearUserDetails forgets the participant but keeps answers and step.
func (s *Session) ClearUserDetails() {
	s.data.UserDetails = nil
}

// Progress returns the answered count and total question count.
func (s *Session) Progress() (answered, total int) {
	return len(s.data.Answers), s.bank.Total()
}

// commit saves the current state and then records ev. A failed save puts
// back prev so memory never runs ahead of the stored document.
func (s *Session) commit(ctx context.Context, prev Data, ev *store.AssessmentEventData) error {
	if err := s.save(ctx); err != nil {
		s.data = prev
		return err
	}
	if ev != nil {
		s.appendEvent(ctx, *ev)
	}
	return nil
}

// save persists the document. Nothing is written until user details exist.
func (s *Session) save(ctx context.Context) error {
	if s.data.UserDetails == nil {
		return nil
	}
	rec := toRecord(s.data)
	if s.recordID != "" {
		rec.ID = s.recordID
		if err := s.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("save assessment: %w", err)
		}
		s.data.UpdatedAt = rec.UpdatedAt
		return nil
	}

	rec.ID = ""
	if err := s.repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("save assessment: %w", err)
	}
	s.recordID = rec.ID
	s.data.ID = rec.ID
	s.data.CreatedAt = rec.CreatedAt
	s.data.UpdatedAt = rec.UpdatedAt
	return nil
}

func (s *Session) appendEvent(ctx context.Context, ev store.AssessmentEventData) {
	if s.events == nil || s.recordID == "" {
		return
	}
	ev.AssessmentID = s.recordID
	if err := s.events.AppendAssessmentEvent(ctx, ev); err != nil {
		s.log.Warn("failed to record assessment event", zap.String("kind", ev.Kind), zap.Error(err))
	}
}
