package assessment

import (
	"fmt"
	"math"
	"time"
)

// ProgressPercent is the rounded share of answered questions.
func ProgressPercent(answered, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(answered) / float64(total) * 100))
}

// ProgressText describes how far along the participant is.
func ProgressText(answered, total int) string {
	t := float64(total)
	n := float64(answered)
	switch {
	case answered == 0:
		return "Getting Started"
	case n < t*0.25:
		return "Just Started"
	case n < t*0.5:
		return "Making Progress"
	case n < t*0.75:
		return "Halfway There"
	case n < t:
		return "Almost Complete"
	default:
		return "Assessment Complete"
	}
}

// CompletionTime renders the duration between start and end in minutes.
func CompletionTime(start time.Time, end *time.Time) string {
	if start.IsZero() || end == nil || end.IsZero() {
		return "N/A"
	}
	mins := int(math.Round(end.Sub(start).Minutes()))
	switch {
	case mins < 1:
		return "< 1 min"
	case mins == 1:
		return "1 min"
	default:
		return fmt.Sprintf("%d min", mins)
	}
}
