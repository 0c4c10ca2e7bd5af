package questions

import (
	"fmt"
	"regexp"
	"strings"
)

var optionPrefix = regexp.MustCompile(`^\d+\.`)

// validateBank performs all structural checks on a bank.
// Returns a combined error describing all problems found, or nil if valid.
func validateBank(themes []Theme, qs []Question) error {
	var errs []string

	themeSet := make(map[string]bool, len(themes))
	for _, t := range themes {
		if t.ID == "" {
			errs = append(errs, "theme with empty ID")
			continue
		}
		if themeSet[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate theme ID: %q", t.ID))
		}
		themeSet[t.ID] = true
	}

	idSet := make(map[int]bool, len(qs))
	populated := make(map[string]bool, len(themes))
	for _, q := range qs {
		if idSet[q.ID] {
			errs = append(errs, fmt.Sprintf("duplicate question ID: %d", q.ID))
		}
		idSet[q.ID] = true

		if !themeSet[q.Theme] {
			errs = append(errs, fmt.Sprintf("question %d references unknown theme %q", q.ID, q.Theme))
		}
		populated[q.Theme] = true

		if strings.TrimSpace(q.Question) == "" {
			errs = append(errs, fmt.Sprintf("question %d has no text", q.ID))
		}
		if len(q.Options) < 2 {
			errs = append(errs, fmt.Sprintf("question %d: need at least 2 options, got %d", q.ID, len(q.Options)))
		}
		for i, opt := range q.Options {
			if !optionPrefix.MatchString(opt) {
				errs = append(errs, fmt.Sprintf("question %d option %d: missing \"N.\" prefix: %q", q.ID, i, opt))
			}
		}
	}

	for _, t := range themes {
		if !populated[t.ID] {
			errs = append(errs, fmt.Sprintf("theme %q has no questions", t.ID))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("question bank validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
