package recommend

import (
	"encoding/json"
	"errors"
	"strings"
)

var errEmpty = errors.New("recommend: no recommendations in response")

// Parse extracts recommendations from model output. It accepts a JSON
// array, an object with a "recommendations" array, either one wrapped in
// markdown code fences, and falls back to one recommendation per
// non-empty line.
func Parse(text string) ([]string, error) {
	clean := stripFences(text)
	if clean == "" {
		return nil, errEmpty
	}

	var list []string
	if err := json.Unmarshal([]byte(clean), &list); err == nil {
		return compact(list)
	}

	var obj struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(clean), &obj); err == nil && obj.Recommendations != nil {
		return compact(obj.Recommendations)
	}

	return compact(strings.Split(text, "\n"))
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func compact(items []string) ([]string, error) {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil, errEmpty
	}
	return out, nil
}
