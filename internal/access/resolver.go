// Package access computes which tests and results a given user may
// administer or view, from the static category table and the user's
// per-category certifications.
package access

import (
	"strings"

	"github.com/kdrivas1989/judgetest/internal/quiz"
)

const regionalMarker = "_regional"

// ResolveTests returns the tests the user may administer, keyed by id.
// Admins see everything. For proctors, each held category contributes its
// governed tests according to the certification level: regional sees only
// regional variants, national and examiner see both. An unrecognized
// level contributes nothing. Test ids missing from all are skipped.
func ResolveTests(user quiz.User, all map[string]quiz.Test, includeGeneral bool) map[string]quiz.Test {
	if user.Role == quiz.RoleAdmin {
		return all
	}

	out := map[string]quiz.Test{}
	if includeGeneral {
		if t, ok := all[quiz.GeneralTestID]; ok {
			out[quiz.GeneralTestID] = t
		}
	}

	for catID, cert := range user.Categories {
		cat, ok := quiz.Categories[catID]
		if !ok {
			continue
		}
		for _, testID := range cat.Tests {
			if !levelCovers(cert.Level, testID) {
				continue
			}
			if t, ok := all[testID]; ok {
				out[testID] = t
			}
		}
	}
	return out
}

func levelCovers(level quiz.Level, testID string) bool {
	switch level {
	case quiz.LevelRegional:
		return strings.Contains(testID, regionalMarker)
	case quiz.LevelNational, quiz.LevelExaminer:
		return true
	default:
		// fail closed on unknown levels
		return false
	}
}

// ResolveResults filters results down to tests the user may administer,
// general test included.
func ResolveResults(user quiz.User, allTests map[string]quiz.Test, allResults map[string]quiz.TestResult) map[string]quiz.TestResult {
	visible := ResolveTests(user, allTests, true)
	out := map[string]quiz.TestResult{}
	for id, r := range allResults {
		if _, ok := visible[r.TestID]; ok {
			out[id] = r
		}
	}
	return out
}
