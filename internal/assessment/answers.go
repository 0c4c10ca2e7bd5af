package assessment

import (
	"regexp"
	"strconv"
)

var (
	scorePrefix  = regexp.MustCompile(`^(\d+)\.`)
	optionParts  = regexp.MustCompile(`^\d+\. (\w+) - (.+)$`)
	defaultScore = 1
)

// Answer is the option a participant picked for one question.
type Answer struct {
	QuestionID     int    `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	Score          int    `json:"score"`
}

// Answers is an insertion-ordered answer list with at most one entry per
// question.
type Answers []Answer

// Save records option for qid, replacing an earlier answer in place.
func (a *Answers) Save(qid int, option string) Answer {
	ans := Answer{QuestionID: qid, SelectedOption: option, Score: ScoreOption(option)}
	for i := range *a {
		if (*a)[i].QuestionID == qid {
			(*a)[i] = ans
			return ans
		}
	}
	*a = append(*a, ans)
	return ans
}

// Get returns the answer for qid.
func (a Answers) Get(qid int) (Answer, bool) {
	for _, ans := range a {
		if ans.QuestionID == qid {
			return ans, true
		}
	}
	return Answer{}, false
}

// ScoreOption extracts the numeric score from an option such as
// "3. Defined - ...". Options without a numeric prefix score 1.
func ScoreOption(option string) int {
	m := scorePrefix.FindStringSubmatch(option)
	if m == nil {
		return defaultScore
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultScore
	}
	return n
}

// OptionText strips the "N. Label - " prefix from an option.
func OptionText(option string) string {
	if m := optionParts.FindStringSubmatch(option); m != nil {
		return m[2]
	}
	return option
}

// OptionLabel returns the maturity label of an option, e.g. "Defined".
func OptionLabel(option string) string {
	if m := optionParts.FindStringSubmatch(option); m != nil {
		return m[1]
	}
	return ""
}
