package assessment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nashtech/odmat/internal/metrics"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/store"
)

type stubRecommender struct {
	recs  []string
	err   error
	calls int
}

func (s *stubRecommender) Recommend(_ context.Context, _ Result, _ Answers) ([]string, error) {
	s.calls++
	return s.recs, s.err
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.OpenMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestSession(t *testing.T, st *store.Store, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithEvents(st.EventRepo())}, opts...)
	return NewSession(questions.Default(), st.AssessmentRepo(), opts...)
}

func TestSession_StartCreatesRecord(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := newTestSession(t, st)

	resumed, err := s.Start(ctx, validDetails())
	require.NoError(t, err)
	assert.False(t, resumed)
	require.NotEmpty(t, s.RecordID())

	rec, err := st.AssessmentRepo().Get(ctx, s.RecordID())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.org", rec.UserDetails.EmailAddress)
	assert.False(t, rec.Completed)
	assert.False(t, rec.StartTime.IsZero())
}

func TestSession_StartRejectsInvalidDetails(t *testing.T) {
	st := openStore(t)
	s := newTestSession(t, st)

	_, err := s.Start(context.Background(), UserDetails{FullName: "Ada"})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, s.HasUserDetails())
	assert.Empty(t, s.RecordID())
}

func TestSession_ResumeByNormalizedEmail(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	first := newTestSession(t, st)
	_, err := first.Start(ctx, validDetails())
	require.NoError(t, err)
	require.NoError(t, first.SetStep(ctx, StepWelcome))
	require.NoError(t, first.Enter(ctx))
	q, _ := first.Current()
	_, err = first.Answer(ctx, q.ID, q.Options[2])
	require.NoError(t, err)

	second := newTestSession(t, st)
	d := validDetails()
	d.EmailAddress = "ADA@example.org"
	resumed, err := second.Start(ctx, d)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, first.RecordID(), second.RecordID())

	data := second.Data()
	assert.Equal(t, StepFirstQuestion, data.CurrentStep)
	require.Len(t, data.Answers, 1)
	assert.Equal(t, 3, data.Answers[0].Score)
}

func TestSession_CompletedAssessmentIsNotResumed(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	first := newTestSession(t, st)
	_, err := first.Start(ctx, validDetails())
	require.NoError(t, err)
	id := first.Data().ID
	_, err = first.Complete(ctx)
	require.NoError(t, err)

	second := newTestSession(t, st)
	resumed, err := second.Start(ctx, validDetails())
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.NotEqual(t, id, second.RecordID())

	assert.ErrorIs(t, newTestSession(t, st).Restore(ctx, id), ErrNotResumable)
	assert.ErrorIs(t, newTestSession(t, st).Restore(ctx, "missing"), ErrNotResumable)
}

func TestSession_GuardWithoutDetails(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := newTestSession(t, st)

	assert.NoError(t, s.Guard(StepUserDetails))
	assert.ErrorIs(t, s.Guard(StepWelcome), ErrNoUserDetails)
	assert.ErrorIs(t, s.Enter(ctx), ErrNoUserDetails)
	_, err := s.Answer(ctx, 1, "1. Initial - x")
	assert.ErrorIs(t, err, ErrNoUserDetails)
	_, err = s.Complete(ctx)
	assert.ErrorIs(t, err, ErrNoUserDetails)
}

func TestSession_EnterClampsStep(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := newTestSession(t, st)
	_, err := s.Start(ctx, validDetails())
	require.NoError(t, err)

	require.NoError(t, s.Enter(ctx))
	assert.Equal(t, StepFirstQuestion, s.Data().CurrentStep)

	require.NoError(t, s.SetStep(ctx, 10))
	require.NoError(t, s.Enter(ctx))
	assert.Equal(t, 10, s.Data().CurrentStep, "a valid question step is kept")

	require.NoError(t, s.SetStep(ctx, LastStep(s.Bank().Total())+1))
	require.NoError(t, s.Enter(ctx))
	assert.Equal(t, StepFirstQuestion, s.Data().CurrentStep)
}

func TestSession_NextRequiresAnswer(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := newTestSession(t, st)
	_, err := s.Start(ctx, validDetails())
	require.NoError(t, err)
	require.NoError(t, s.Enter(ctx))

	_, err = s.Next(ctx, "")
	assert.ErrorIs(t, err, ErrNoAnswer)

	q, _ := s.Current()
	done, err := s.Next(ctx, q.Options[3])
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, StepFirstQuestion+1, s.Data().CurrentStep)

	// Previous keeps the selection made on the page being left.
	q2, _ := s.Current()
	require.NoError(t, s.Previous(ctx, q2.Options[0]))
	assert.Equal(t, StepFirstQuestion, s.Data().CurrentStep)
	got, ok := s.Data().Answers.Get(q2.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.Score)
}

func TestSession_FullRunCompletes(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	clock := &testClock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	rec := &stubRecommender{recs: []string{"Publish a data strategy.", "Train staff."}}
	s := newTestSession(t, st, WithRecommender(rec), WithClock(clock.now))

	_, err := s.Start(ctx, validDetails())
	require.NoError(t, err)
	require.NoError(t, s.Enter(ctx))

	var done bool
	for !done {
		q, ok := s.Current()
		require.True(t, ok)
		clock.advance(10 * time.Second)
		done, err = s.Next(ctx, q.Options[3])
		require.NoError(t, err)
	}

	data := s.Data()
	assert.True(t, data.Completed)
	require.NotNil(t, data.Results)
	assert.Equal(t, 4.0, data.Results.OverallScore)
	assert.Equal(t, LevelLeading, data.Results.MaturityLevel)
	assert.Equal(t, rec.recs, data.Results.Recommendations)
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, "8 min", CompletionTime(data.StartTime, data.EndTime))
	assert.Empty(t, s.RecordID(), "completion forgets the record id")

	stored, err := st.AssessmentRepo().Get(ctx, data.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, "Leading", stored.Results.MaturityLevel)
	assert.Len(t, stored.Answers, 47)

	events, err := st.EventRepo().AssessmentEvents(ctx, data.ID, store.QueryOpts{})
	require.NoError(t, err)
	kinds := map[string]int{}
	for _, e := range events {
		kinds[e.Kind]++
	}
	assert.Equal(t, 47, kinds[EventAnswer])
	assert.Equal(t, 1, kinds[EventComplete])

	_, err = s.Answer(ctx, 1, "1. Initial - x")
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestSession_RecommenderFailureUsesFallback(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := newTestSession(t, st, WithRecommender(&stubRecommender{err: errors.New("quota")}))
	_, err := s.Start(ctx, validDetails())
	require.NoError(t, err)

	res, err := s.Complete(ctx)
	require.NoError(t, err)
	assert.Equal(t, FallbackRecommendations(), res.Recommendations)
	assert.Equal(t, LevelBeginner, res.MaturityLevel)
}

func TestSession_ResetAndClearDetails(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := newTestSession(t, st)
	_, err := s.Start(ctx, validDetails())
	require.NoError(t, err)
	require.NoError(t, s.Enter(ctx))
	_, err = s.Answer(ctx, 1, "2. Repeatable - x")
	require.NoError(t, err)

	s.ClearUserDetails()
	assert.False(t, s.HasUserDetails())
	assert.Len(t, s.Data().Answers, 1, "clearing details keeps answers")

	s.Reset(ctx)
	data := s.Data()
	assert.Empty(t, data.Answers)
	assert.Equal(t, StepUserDetails, data.CurrentStep)
	assert.False(t, data.Completed)
	assert.Empty(t, s.RecordID())
}

func TestSession_SaveSkippedWithoutDetails(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s := newTestSession(t, st)

	require.NoError(t, s.SetStep(ctx, StepUserDetails))
	list, err := st.AssessmentRepo().List(ctx, store.ListOpts{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

var errDiskFull = errors.New("disk full")

// flakyRepo fails the next failUpdates calls to Update.
type flakyRepo struct {
	store.AssessmentRepo
	failUpdates int
}

func (r *flakyRepo) Update(ctx context.Context, rec *store.AssessmentRecord) error {
	if r.failUpdates > 0 {
		r.failUpdates--
		return errDiskFull
	}
	return r.AssessmentRepo.Update(ctx, rec)
}

// onQuestion starts a session on a flaky repo and opens the first question.
func onQuestion(t *testing.T, st *store.Store) (*Session, *flakyRepo) {
	t.Helper()
	repo := &flakyRepo{AssessmentRepo: st.AssessmentRepo()}
	s := NewSession(questions.Default(), repo, WithEvents(st.EventRepo()))
	ctx := context.Background()
	_, err := s.Start(ctx, validDetails())
	require.NoError(t, err)
	require.NoError(t, s.Enter(ctx))
	return s, repo
}

func TestSession_FailedSaveLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ctx context.Context, s *Session) error
	}{
		{
			name: "answer",
			mutate: func(ctx context.Context, s *Session) error {
				_, err := s.Answer(ctx, 1, "3. Defined - x")
				return err
			},
		},
		{
			name: "set step",
			mutate: func(ctx context.Context, s *Session) error {
				return s.SetStep(ctx, StepFirstQuestion+5)
			},
		},
		{
			name: "complete",
			mutate: func(ctx context.Context, s *Session) error {
				_, err := s.Complete(ctx)
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := openStore(t)
			ctx := context.Background()
			s, repo := onQuestion(t, st)
			before := s.Data()

			repo.failUpdates = 1
			require.ErrorIs(t, tt.mutate(ctx, s), errDiskFull)
			assert.Equal(t, before, s.Data())
			assert.Equal(t, before.ID, s.RecordID())

			require.NoError(t, tt.mutate(ctx, s), "retry succeeds once the store recovers")
			stored, err := st.AssessmentRepo().Get(ctx, before.ID)
			require.NoError(t, err)
			after := s.Data()
			assert.Equal(t, after.CurrentStep, stored.CurrentStep)
			assert.Equal(t, after.Completed, stored.Completed)
			assert.Len(t, stored.Answers, len(after.Answers))
		})
	}
}

func TestSession_CompleteRetryIsPersisted(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s, repo := onQuestion(t, st)
	id := s.RecordID()

	repo.failUpdates = 1
	_, err := s.Complete(ctx)
	require.ErrorIs(t, err, errDiskFull)
	assert.False(t, s.Data().Completed)
	assert.Nil(t, s.Data().Results)

	_, err = s.Complete(ctx)
	require.NoError(t, err)
	stored, err := st.AssessmentRepo().Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.NotNil(t, stored.Results)
}

func TestSession_NextOnLastQuestionRetriesAfterFailedSave(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s, repo := onQuestion(t, st)
	id := s.RecordID()
	require.NoError(t, s.SetStep(ctx, LastStep(s.Bank().Total())))
	q, _ := s.Current()

	// The answer is saved, then completion fails.
	_, err := s.Answer(ctx, q.ID, q.Options[2])
	require.NoError(t, err)
	repo.failUpdates = 1
	_, err = s.Next(ctx, "")
	require.ErrorIs(t, err, errDiskFull)

	done, err := s.Next(ctx, q.Options[2])
	require.NoError(t, err)
	assert.True(t, done)
	stored, err := st.AssessmentRepo().Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
}

func TestSession_PreviousFromFirstQuestionGoesToWelcome(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s, _ := onQuestion(t, st)

	require.NoError(t, s.Previous(ctx, ""))
	assert.Equal(t, StepWelcome, s.Data().CurrentStep)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSession_LoadedCompletedAssessmentIsReadOnly(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	s, _ := onQuestion(t, st)
	id := s.RecordID()
	_, err := s.Complete(ctx)
	require.NoError(t, err)

	loaded := newTestSession(t, st)
	require.NoError(t, loaded.Load(ctx, id))
	assert.True(t, loaded.Data().Completed)
	assert.ErrorIs(t, loaded.SetStep(ctx, StepFirstQuestion), ErrCompleted)
	_, err = loaded.Answer(ctx, 1, "1. Initial - x")
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestSession_ResetOnlyCountsAttachedSessions(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	resets := func() float64 {
		return testutil.ToFloat64(metrics.Assessments.WithLabelValues(metrics.EventReset))
	}

	before := resets()
	newTestSession(t, st).Reset(ctx)
	assert.Equal(t, before, resets(), "a fresh session has nothing to reset")

	s, _ := onQuestion(t, st)
	s.Reset(ctx)
	assert.Equal(t, before+1, resets())
}
