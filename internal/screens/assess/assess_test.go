package assess

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/export"
	"github.com/nashtech/odmat/internal/questions"
	"github.com/nashtech/odmat/internal/router"
	"github.com/nashtech/odmat/internal/screen"
	"github.com/nashtech/odmat/internal/store"
)

type stubRecommender struct{}

func (stubRecommender) Recommend(context.Context, assessment.Result, assessment.Answers) ([]string, error) {
	return []string{"Publish a data strategy.", "Appoint data stewards."}, nil
}

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.OpenMemory(name)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	sess := assessment.NewSession(questions.Default(), st.AssessmentRepo(),
		assessment.WithEvents(st.EventRepo()),
		assessment.WithRecommender(stubRecommender{}))
	return Deps{
		Session:   sess,
		ExportDir: t.TempDir(),
		Formats:   []export.Format{export.FormatExcel},
		Now:       func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) },
	}.withDefaults()
}

func validDetails() assessment.UserDetails {
	return assessment.UserDetails{
		FullName:     "Ada Lovelace",
		PhoneNumber:  "+44 (20) 7946-0000",
		EmailAddress: "ada@example.org",
		Organization: "Analytical Engines",
	}
}

func keyPress(k string) tea.KeyPressMsg {
	switch k {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(k)[0]
	return tea.KeyPressMsg{Code: r, Text: k}
}

func press(s screen.Screen, keys ...string) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		s, cmd = s.Update(keyPress(k))
	}
	return s, cmd
}

func typeText(s screen.Screen, text string) screen.Screen {
	for _, r := range text {
		s, _ = s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return s
}

// runMsg executes a background command the way the program loop would.
func runMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

// startedWelcome submits valid details and returns the welcome screen.
func startedWelcome(t *testing.T, d Deps) *WelcomeScreen {
	t.Helper()
	resumed, err := d.Session.Start(context.Background(), validDetails())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := enterWelcome(context.Background(), d.Session); err != nil {
		t.Fatalf("welcome: %v", err)
	}
	return newWelcome(d, take(d.Session), resumed)
}

// openQuestions begins the assessment from the welcome page.
func openQuestions(t *testing.T, d Deps) *QuestionScreen {
	t.Helper()
	w := startedWelcome(t, d)
	_, cmd := press(w, "enter")
	_, cmd = w.Update(runMsg(t, cmd))
	push, ok := runMsg(t, cmd).(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg after begin")
	}
	q, ok := push.Screen.(*QuestionScreen)
	if !ok {
		t.Fatalf("expected *QuestionScreen, got %T", push.Screen)
	}
	return q
}

func TestDetails_ShowsValidationErrors(t *testing.T) {
	d := newTestDeps(t)
	s := newDetails(d)
	s.Init()

	typeText(s, "A")
	press(s, "tab", "tab", "tab", "enter")

	if got := s.inputs[0].Err; got != "Name must be at least 2 characters" {
		t.Errorf("fullName error = %q", got)
	}
	if got := s.inputs[2].Err; got != "Email Address is required" {
		t.Errorf("emailAddress error = %q", got)
	}
	if s.focus != 0 {
		t.Errorf("expected focus on first invalid field, got %d", s.focus)
	}
	if s.busy || d.Session.HasUserDetails() {
		t.Error("invalid details should not start the session")
	}
}

func TestDetails_SubmitStartsAndPushesWelcome(t *testing.T) {
	d := newTestDeps(t)
	s := newDetails(d)
	s.Init()

	ud := validDetails()
	for i, v := range []string{ud.FullName, ud.PhoneNumber, "  ADA@example.org ", ud.Organization} {
		typeText(s, v)
		if i < 3 {
			press(s, "tab")
		}
	}
	_, cmd := press(s, "enter")
	if !s.busy {
		t.Fatal("expected busy while starting")
	}

	msg, ok := runMsg(t, cmd).(startedMsg)
	if !ok {
		t.Fatal("expected startedMsg")
	}
	if msg.err != nil {
		t.Fatalf("start failed: %v", msg.err)
	}
	if got := msg.snap.Data.UserDetails.EmailAddress; got != "ada@example.org" {
		t.Errorf("email not normalized: %q", got)
	}
	if msg.snap.Data.CurrentStep != assessment.StepWelcome {
		t.Errorf("expected welcome step, got %d", msg.snap.Data.CurrentStep)
	}

	_, cmd = s.Update(msg)
	push, ok := runMsg(t, cmd).(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*WelcomeScreen); !ok {
		t.Errorf("expected *WelcomeScreen, got %T", push.Screen)
	}
}

func TestDetails_RestoredSessionSkipsForm(t *testing.T) {
	d := newTestDeps(t)
	if _, err := d.Session.Start(context.Background(), validDetails()); err != nil {
		t.Fatal(err)
	}

	s := newDetails(d)
	if got := s.inputs[0].Value(); got != "Ada Lovelace" {
		t.Errorf("expected prefilled name, got %q", got)
	}
	msg, ok := runMsg(t, s.resume()).(startedMsg)
	if !ok || msg.err != nil || !msg.resumed {
		t.Fatalf("expected resumed startedMsg, got %+v", msg)
	}
}

func TestWelcome_ResumeNotice(t *testing.T) {
	d := newTestDeps(t)
	first := startedWelcome(t, d)
	if strings.Contains(first.View(100, 40), "restored") {
		t.Error("new assessment should not show the resume notice")
	}

	if _, err := d.Session.Answer(context.Background(), 1, "3. Defined - x"); err != nil {
		t.Fatal(err)
	}
	again := newWelcome(d, take(d.Session), true)
	view := again.View(120, 50)
	if !strings.Contains(view, "Welcome back") {
		t.Error("expected a welcome back greeting")
	}
	if !strings.Contains(view, "1 of 47") {
		t.Error("expected answered count in the resume notice")
	}
	if !strings.Contains(view, "Continue assessment") {
		t.Error("expected the continue action once answers exist")
	}
	if !strings.Contains(view, "Strategic Oversight") {
		t.Error("expected the theme overview")
	}
}

func TestQuestion_NextRequiresAnswer(t *testing.T) {
	d := newTestDeps(t)
	q := openQuestions(t, d)

	_, cmd := press(q, "right")
	if cmd != nil {
		t.Error("expected no command without an answer")
	}
	if q.errMsg != noAnswerMsg {
		t.Errorf("expected %q, got %q", noAnswerMsg, q.errMsg)
	}
}

func TestQuestion_TipToggle(t *testing.T) {
	d := newTestDeps(t)
	q := openQuestions(t, d)

	if !strings.Contains(q.View(100, 40), "press t for a tip") {
		t.Error("expected tip hint")
	}
	press(q, "t")
	if !q.showTip {
		t.Fatal("expected tip shown")
	}
	if !strings.Contains(q.View(100, 40), "Optimising") {
		t.Error("expected tip text in view")
	}
}

func TestQuestion_PreviousKeepsSelection(t *testing.T) {
	d := newTestDeps(t)
	q := openQuestions(t, d)

	_, cmd := press(q, "2", "right")
	q.Update(runMsg(t, cmd))
	if q.snap.Number() != 2 {
		t.Fatalf("expected question 2, got %d", q.snap.Number())
	}

	_, cmd = press(q, "5", "left")
	q.Update(runMsg(t, cmd))
	if q.snap.Number() != 1 {
		t.Fatalf("expected question 1, got %d", q.snap.Number())
	}
	if q.choice.Chosen != 1 {
		t.Errorf("expected saved answer preselected, got %d", q.choice.Chosen)
	}

	a, ok := d.Session.Data().Answers.Get(2)
	if !ok || a.Score != 5 {
		t.Errorf("expected question 2 saved with score 5 on previous, got %+v", a)
	}
}

func TestQuestion_PreviousFromFirstLeavesQuestions(t *testing.T) {
	d := newTestDeps(t)
	q := openQuestions(t, d)

	_, cmd := press(q, "left")
	_, cmd = q.Update(runMsg(t, cmd))
	pop, ok := runMsg(t, cmd).(router.PopScreenMsg)
	if !ok {
		t.Fatal("expected navigation back to the welcome page")
	}
	if _, ok := pop.Notify.(snapshotMsg); !ok {
		t.Errorf("expected the welcome page to be refreshed, got %T", pop.Notify)
	}
	if got := d.Session.Data().CurrentStep; got != assessment.StepWelcome {
		t.Errorf("expected welcome step, got %d", got)
	}
}

func TestFlow_CompletesToResults(t *testing.T) {
	d := newTestDeps(t)
	q := openQuestions(t, d)

	var results *ResultsScreen
	for i := 0; i < 47 && results == nil; i++ {
		_, cmd := press(q, "4", "right")
		_, cmd = q.Update(runMsg(t, cmd))
		if cmd == nil {
			continue
		}
		if reset, ok := runMsg(t, cmd).(router.ResetScreenMsg); ok {
			results, _ = reset.Screen.(*ResultsScreen)
		}
	}
	if results == nil {
		t.Fatal("expected results after the last question")
	}

	r := results.snap.Data.Results
	if r == nil || r.MaturityLevel != assessment.LevelLeading {
		t.Fatalf("expected Leading results, got %+v", r)
	}
	view := results.View(120, 200)
	for _, want := range []string{"80%", "Leading", "Managed Level", "Recommendations"} {
		if !strings.Contains(view, want) {
			t.Errorf("results view missing %q", want)
		}
	}
	if results.Status() != "80% Leading" {
		t.Errorf("status = %q", results.Status())
	}
}

func completedResults(t *testing.T, d Deps) *ResultsScreen {
	t.Helper()
	ctx := context.Background()
	if _, err := d.Session.Start(ctx, validDetails()); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Session.Complete(ctx); err != nil {
		t.Fatal(err)
	}
	return newResults(d, take(d.Session))
}

func TestResults_Export(t *testing.T) {
	d := newTestDeps(t)
	s := completedResults(t, d)

	_, cmd := press(s, "x")
	if !s.busy {
		t.Fatal("expected busy while exporting")
	}
	s.Update(runMsg(t, cmd))

	if s.errMsg != "" {
		t.Fatalf("export failed: %s", s.errMsg)
	}
	path := strings.TrimPrefix(s.notice, "Saved ")
	if !strings.HasSuffix(path, ".xlsx") {
		t.Fatalf("expected an xlsx path, got %q", s.notice)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestResults_NewAssessmentResetsSession(t *testing.T) {
	d := newTestDeps(t)
	s := completedResults(t, d)

	_, cmd := press(s, "n")
	reset, ok := runMsg(t, cmd).(router.ResetScreenMsg)
	if !ok {
		t.Fatal("expected ResetScreenMsg")
	}
	if _, ok := reset.Screen.(*DetailsScreen); !ok {
		t.Errorf("expected *DetailsScreen, got %T", reset.Screen)
	}
	if d.Session.HasUserDetails() || d.Session.Data().Completed {
		t.Error("expected a fresh session")
	}
}

func TestResults_ScrollClamps(t *testing.T) {
	d := newTestDeps(t)
	s := completedResults(t, d)

	press(s, "up")
	if s.offset != 0 {
		t.Errorf("offset should not go negative, got %d", s.offset)
	}
	for range 500 {
		press(s, "down")
	}
	if view := s.View(100, 10); view == "" {
		t.Error("expected a view past the end of the content")
	}
}
