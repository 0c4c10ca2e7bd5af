package recommend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/nashtech/odmat/internal/assessment"
	"github.com/nashtech/odmat/internal/questions"
)

// weakestAnswers is how many low-scoring answers the prompt quotes.
const weakestAnswers = 5

const systemPrompt = `You are an expert consultant in Open Data Maturity.
Based on the assessment results you are given, provide 3-5 specific, actionable recommendations
to help the organization improve their Open Data maturity.
Each recommendation is one or two sentences of plain text.`

const outputInstructions = `Please format the output as a simple JSON array of strings, e.g.:
[
  "Recommendation 1...",
  "Recommendation 2...",
  "Recommendation 3..."
]
Do not include markdown formatting like ` + "```json or ```" + `. Just the raw JSON array.`

// BuildPrompt renders the user prompt: the maturity level, every theme
// score in bank order and the five weakest answers.
func BuildPrompt(bank *questions.Bank, res assessment.Result, answers assessment.Answers) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Organization Maturity Level: %s\n\n", res.MaturityLevel)

	b.WriteString("Theme Scores (1-5 scale):\n")
	for _, ts := range assessment.OrderedThemeScores(bank, res) {
		fmt.Fprintf(&b, "- %s: %.1f\n", ts.Theme.ID, ts.Score)
	}

	b.WriteString("\nKey Answers provided:\n")
	for _, a := range Weakest(answers, weakestAnswers) {
		fmt.Fprintf(&b, "- Question ID %d (Score: %d): %s\n", a.QuestionID, a.Score, a.SelectedOption)
	}

	b.WriteString("\n")
	b.WriteString(outputInstructions)
	return b.String()
}

// Weakest returns up to n answers with the lowest scores. Ties keep their
// answer order.
func Weakest(answers assessment.Answers, n int) assessment.Answers {
	sorted := slices.Clone(answers)
	slices.SortStableFunc(sorted, func(a, b assessment.Answer) int {
		return a.Score - b.Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
