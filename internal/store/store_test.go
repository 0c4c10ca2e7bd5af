package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := OpenMemory(name)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, tbl := range Tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", tbl.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", tbl.Name, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}

	// Reseeding must not reset the counter.
	if _, err := newSequenceCounter(ctx, s.DB()); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	next, err := s.seq.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), next)
}

func TestAssessmentCreateGetUpdate(t *testing.T) {
	s := openTestStore(t)
	repo := s.AssessmentRepo()
	ctx := context.Background()

	start := time.Now().UTC().Truncate(time.Second)
	rec := &AssessmentRecord{
		UserDetails: &UserDetailsData{
			FullName:     "Ada Lovelace",
			PhoneNumber:  "+44 20 7946 0000",
			EmailAddress: "ada@example.org",
			Organization: "Analytical Engines",
		},
		Answers:     []AnswerData{{QuestionID: 1, SelectedOption: "3. Defined - x", Score: 3}},
		CurrentStep: 2,
		StartTime:   start,
	}
	require.NoError(t, repo.Create(ctx, rec))
	require.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.UserDetails, got.UserDetails)
	assert.Equal(t, rec.Answers, got.Answers)
	assert.Equal(t, 2, got.CurrentStep)
	assert.True(t, start.Equal(got.StartTime), "start time %v != %v", got.StartTime, start)
	assert.Nil(t, got.EndTime)
	assert.Nil(t, got.Results)

	end := start.Add(7 * time.Minute)
	got.Completed = true
	got.EndTime = &end
	got.Results = &ResultData{
		OverallScore:    2.5,
		ThemeScores:     map[string]float64{"investment": 2.5},
		MaturityLevel:   "Advanced",
		Recommendations: []string{"do more"},
	}
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, again.Completed)
	require.NotNil(t, again.EndTime)
	assert.True(t, end.Equal(*again.EndTime))
	assert.Equal(t, got.Results, again.Results)
}

func TestAssessmentGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.AssessmentRepo().Get(context.Background(), "nope")
	assert.True(t, IsNotFound(err))

	err = s.AssessmentRepo().Update(context.Background(), &AssessmentRecord{ID: "nope"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssessmentFindIncomplete(t *testing.T) {
	s := openTestStore(t)
	repo := s.AssessmentRepo()
	ctx := context.Background()

	mk := func(email string, completed bool) *AssessmentRecord {
		rec := &AssessmentRecord{
			UserDetails: &UserDetailsData{EmailAddress: email},
			Completed:   completed,
			StartTime:   time.Now(),
		}
		require.NoError(t, repo.Create(ctx, rec))
		return rec
	}

	mk("done@example.org", true)
	_, err := repo.FindIncomplete(ctx, "done@example.org")
	assert.ErrorIs(t, err, ErrNotFound)

	first := mk("open@example.org", false)
	time.Sleep(2 * time.Millisecond)
	mk("open@example.org", false)

	got, err := repo.FindIncomplete(ctx, "open@example.org")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	list, err := repo.List(ctx, ListOpts{Email: "open@example.org"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	done, err := repo.List(ctx, ListOpts{CompletedOnly: true})
	require.NoError(t, err)
	assert.Len(t, done, 1)
}

func TestAssessmentEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendAssessmentEvent(ctx, AssessmentEventData{AssessmentID: "a", Kind: "answer", QuestionID: 1, Score: 4}))
	require.NoError(t, repo.AppendAssessmentEvent(ctx, AssessmentEventData{AssessmentID: "b", Kind: "step", Step: 3}))
	require.NoError(t, repo.AppendAssessmentEvent(ctx, AssessmentEventData{AssessmentID: "a", Kind: "complete"}))

	events, err := repo.AssessmentEvents(ctx, "a", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "answer", events[0].Kind)
	assert.Equal(t, 4, events[0].Score)
	assert.Equal(t, "complete", events[1].Kind)
	assert.Less(t, events[0].Sequence, events[1].Sequence)

	after, err := repo.AssessmentEvents(ctx, "a", QueryOpts{After: events[0].Sequence})
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "recommendations", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "recommendations", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "other", Success: false, ErrorMessage: "boom", RequestBody: "[user]\nhi"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	listed, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "gpt-4o-mini", listed[0].Model, "newest first")
	assert.False(t, listed[0].Success)

	one, err := repo.GetLLMEvent(ctx, listed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "boom", one.ErrorMessage)
	assert.Equal(t, "[user]\nhi", one.RequestBody)

	_, err = repo.GetLLMEvent(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "recommendations", byPurpose[0].Purpose)
	assert.Equal(t, 2, byPurpose[0].Calls)
	assert.Equal(t, 400, byPurpose[0].InputTokens)
	assert.Equal(t, 200, byPurpose[0].OutputTokens)
	assert.Equal(t, int64(300), byPurpose[0].AvgLatencyMs)

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", byModel[0].Model)
}

func TestBankSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.BankRepo()
	ctx := context.Background()

	_, err := repo.LatestBank(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Now().UTC()
	require.NoError(t, repo.SaveBank(ctx, BankRecord{Version: "v1.0.0", Content: []byte("a"), CreatedAt: base}))
	require.NoError(t, repo.SaveBank(ctx, BankRecord{Version: "v1.1.0", Content: []byte("b"), CreatedAt: base.Add(time.Second)}))

	latest, err := repo.LatestBank(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", latest.Version)
	assert.Equal(t, []byte("b"), latest.Content)

	// Same version replaces content.
	require.NoError(t, repo.SaveBank(ctx, BankRecord{Version: "v1.1.0", Content: []byte("c"), CreatedAt: base.Add(2 * time.Second)}))
	latest, err = repo.LatestBank(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), latest.Content)

	all, err := repo.ListBanks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSurveyCRUD(t *testing.T) {
	s := openTestStore(t)
	repo := s.SurveyRepo()
	ctx := context.Background()

	rec := &SurveyRecord{Title: "Feedback", Status: "DRAFT", SchemaJSON: []byte(`{"pages":[]}`), CreatedBy: 7}
	require.NoError(t, repo.Create(ctx, rec))
	require.NotZero(t, rec.ID)

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Feedback", got.Title)
	assert.JSONEq(t, `{"pages":[]}`, string(got.SchemaJSON))

	got.Status = "ACTIVE"
	require.NoError(t, repo.Update(ctx, got))

	mine, err := repo.ListByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ACTIVE", mine[0].Status)

	others, err := repo.ListByOwner(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, others)

	require.NoError(t, repo.Delete(ctx, rec.ID))
	_, err = repo.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, rec.ID), ErrNotFound)
}

func TestUserRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	exists, err := repo.ExistsByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.False(t, exists)

	u := &UserRecord{Email: "a@b.co", PasswordHash: "h", Roles: []string{"ROLE_USER"}, VerificationCode: "code"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	// Email is unique.
	assert.Error(t, repo.Create(ctx, &UserRecord{Email: "a@b.co", PasswordHash: "h", Roles: []string{}}))

	got, err := repo.GetByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "code", got.VerificationCode)
	assert.False(t, got.Enabled)

	got.Enabled = true
	got.VerificationCode = ""
	require.NoError(t, repo.Update(ctx, got))

	byID, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, byID.Enabled)
	assert.Empty(t, byID.VerificationCode)
	assert.Equal(t, []string{"ROLE_USER"}, byID.Roles)
}
