package questions

import (
	"strings"
	"testing"
)

func TestDefault_EmbeddedBankIsValid(t *testing.T) {
	b := Default()
	if err := b.Validate(); err != nil {
		t.Fatalf("embedded bank validation failed: %v", err)
	}
	if b.Total() != 47 {
		t.Errorf("Total() = %d, want 47", b.Total())
	}
	if b.Version() == "" {
		t.Error("embedded bank has no version")
	}
}

func TestDefault_ThemeCounts(t *testing.T) {
	b := Default()
	tests := []struct {
		theme string
		want  int
	}{
		{"data-publication", 17},
		{"data-literacy", 6},
		{"customer-support", 9},
		{"investment", 6},
		{"strategic-oversight", 9},
	}
	themes := b.Themes()
	if len(themes) != len(tests) {
		t.Fatalf("got %d themes, want %d", len(themes), len(tests))
	}
	for i, tt := range tests {
		if themes[i].ID != tt.theme {
			t.Errorf("theme %d = %q, want %q", i, themes[i].ID, tt.theme)
		}
		if got := len(b.ByTheme(tt.theme)); got != tt.want {
			t.Errorf("ByTheme(%q) = %d questions, want %d", tt.theme, got, tt.want)
		}
	}
}

func TestDefault_EveryQuestionHasFiveOrderedOptions(t *testing.T) {
	for _, q := range Default().Questions() {
		if len(q.Options) != 5 {
			t.Errorf("question %d has %d options", q.ID, len(q.Options))
			continue
		}
		for i, opt := range q.Options {
			want := string(rune('1'+i)) + ". "
			if !strings.HasPrefix(opt, want) {
				t.Errorf("question %d option %d = %q, want prefix %q", q.ID, i, opt, want)
			}
		}
		if q.Type != TypeRating {
			t.Errorf("question %d type = %q, want rating", q.ID, q.Type)
		}
	}
}

func TestBank_QuestionLookup(t *testing.T) {
	b := Default()
	q, err := b.Question(1)
	if err != nil {
		t.Fatalf("Question(1): %v", err)
	}
	if q.Theme != "data-publication" {
		t.Errorf("Question(1).Theme = %q", q.Theme)
	}
	if _, err := b.Question(999); err == nil {
		t.Error("Question(999) should fail")
	}

	first, ok := b.At(0)
	if !ok || first.ID != 1 {
		t.Errorf("At(0) = %d, %v", first.ID, ok)
	}
	if _, ok := b.At(b.Total()); ok {
		t.Error("At(Total()) should be out of range")
	}
}

func TestBank_AccessorsReturnCopies(t *testing.T) {
	b := Default()
	qs := b.Questions()
	qs[0].Question = "mutated"
	if q, _ := b.Question(qs[0].ID); q.Question == "mutated" {
		t.Error("Questions() leaked internal storage")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate id",
			yaml: `
themes: [{id: a, title: A}]
questions:
  - {id: 1, theme: a, question: q, options: ["1. x", "2. y"]}
  - {id: 1, theme: a, question: q, options: ["1. x", "2. y"]}
`,
			want: "duplicate question ID",
		},
		{
			name: "unknown theme",
			yaml: `
themes: [{id: a, title: A}]
questions:
  - {id: 1, theme: a, question: q, options: ["1. x", "2. y"]}
  - {id: 2, theme: b, question: q, options: ["1. x", "2. y"]}
`,
			want: "unknown theme",
		},
		{
			name: "empty theme",
			yaml: `
themes: [{id: a, title: A}, {id: b, title: B}]
questions:
  - {id: 1, theme: a, question: q, options: ["1. x", "2. y"]}
`,
			want: `theme "b" has no questions`,
		},
		{
			name: "option prefix",
			yaml: `
themes: [{id: a, title: A}]
questions:
  - {id: 1, theme: a, question: q, options: ["x", "2. y"]}
`,
			want: "prefix",
		},
		{
			name: "too few options",
			yaml: `
themes: [{id: a, title: A}]
questions:
  - {id: 1, theme: a, question: q, options: ["1. x"]}
`,
			want: "at least 2 options",
		},
		{
			name: "malformed",
			yaml: "themes: [",
			want: "decode question bank",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestThemeLabel(t *testing.T) {
	if got := ThemeLabel("data-publication"); got != "DATA PUBLICATION" {
		t.Errorf("ThemeLabel = %q", got)
	}
	if got := ThemeLabel("investment"); got != "INVESTMENT" {
		t.Errorf("ThemeLabel = %q", got)
	}
}
