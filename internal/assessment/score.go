package assessment

import (
	"fmt"
	"math"

	"github.com/nashtech/odmat/internal/questions"
)

// Level is an overall maturity band.
type Level string

const (
	LevelBeginner   Level = "Beginner"
	LevelDeveloping Level = "Developing"
	LevelAdvanced   Level = "Advanced"
	LevelLeading    Level = "Leading"
	LevelOptimizing Level = "Optimizing"
)

// Levels lists the bands from lowest to highest.
var Levels = []Level{LevelBeginner, LevelDeveloping, LevelAdvanced, LevelLeading, LevelOptimizing}

// emptyThemeScore is the score of a theme with no answers.
const emptyThemeScore = 1.0

// LevelFor maps a 1-5 score to its maturity band.
func LevelFor(score float64) Level {
	switch {
	case score >= 4.5:
		return LevelOptimizing
	case score >= 3.5:
		return LevelLeading
	case score >= 2.5:
		return LevelAdvanced
	case score >= 1.5:
		return LevelDeveloping
	default:
		return LevelBeginner
	}
}

var levelInfo = map[Level]struct {
	stage       string
	explanation string
}{
	LevelBeginner: {"Initial",
		"Your organization is at the Initial level. NashTech Accelerators can help establish foundational processes quickly."},
	LevelDeveloping: {"Repeatable",
		"Your organization shows Repeatable practices. Our accelerator templates can standardize your approach."},
	LevelAdvanced: {"Defined",
		"Your organization has Defined processes. NashTech can help optimize and scale these practices."},
	LevelLeading: {"Managed",
		"Your organization demonstrates Managed practices. Let us help you drive innovation."},
	LevelOptimizing: {"Optimising",
		"Your organization exemplifies the Optimising level. Partner with NashTech to lead transformation."},
}

// Stage is the ODI stage name of the level, e.g. "Defined".
func (l Level) Stage() string {
	return levelInfo[l].stage
}

// Description returns e.g. "Defined Level".
func (l Level) Description() string {
	if s := l.Stage(); s != "" {
		return s + " Level"
	}
	return ""
}

// Explanation is the sentence shown under the level on the results page.
func (l Level) Explanation() string {
	return levelInfo[l].explanation
}

// ThemeLevel labels a per-theme score with the ODI stage name.
func ThemeLevel(score float64) string {
	return LevelFor(score).Stage()
}

// Percentage converts a 1-5 score to a rounded percentage of 5.
func Percentage(score float64) int {
	return int(math.Round(score / 5 * 100))
}

// Result is the scored outcome of an assessment.
type Result struct {
	OverallScore    float64            `json:"overallScore"`
	ThemeScores     map[string]float64 `json:"themeScores"`
	MaturityLevel   Level              `json:"maturityLevel"`
	Recommendations []string           `json:"recommendations"`
}

// ThemeScore is one theme's score in bank order.
type ThemeScore struct {
	Theme questions.Theme
	Score float64
}

// Score computes theme averages, the overall average and the maturity
// level. Recommendations are left empty.
func Score(bank *questions.Bank, answers Answers) Result {
	themes := bank.Themes()
	res := Result{ThemeScores: make(map[string]float64, len(themes))}

	sums := make(map[string]int, len(themes))
	counts := make(map[string]int, len(themes))
	for _, a := range answers {
		q, err := bank.Question(a.QuestionID)
		if err != nil {
			continue
		}
		sums[q.Theme] += a.Score
		counts[q.Theme]++
	}

	var total float64
	for _, t := range themes {
		s := emptyThemeScore
		if counts[t.ID] > 0 {
			s = float64(sums[t.ID]) / float64(counts[t.ID])
		}
		res.ThemeScores[t.ID] = s
		total += s
	}
	if len(themes) > 0 {
		res.OverallScore = total / float64(len(themes))
	}
	res.MaturityLevel = LevelFor(res.OverallScore)
	return res
}

// OrderedThemeScores returns r's theme scores in bank order. Themes
// missing from r are skipped.
func OrderedThemeScores(bank *questions.Bank, r Result) []ThemeScore {
	var out []ThemeScore
	for _, t := range bank.Themes() {
		if s, ok := r.ThemeScores[t.ID]; ok {
			out = append(out, ThemeScore{Theme: t, Score: s})
		}
	}
	return out
}

// ShareText is a one-line summary suitable for social posts.
func ShareText(r Result) string {
	return fmt.Sprintf("I completed the NashTech Open Data Assessment using the official ODI framework and scored %d%% (%s level)! Powered by NashTech Accelerators.",
		Percentage(r.OverallScore), r.MaturityLevel)
}

// FallbackRecommendations is used when no recommender is configured or it
// fails.
func FallbackRecommendations() []string {
	return []string{
		"Unable to generate personalized recommendations at this time.",
		"Please review your lowest scoring areas and focus on foundational improvements.",
		"Consult with a NashTech expert for a detailed analysis.",
	}
}
