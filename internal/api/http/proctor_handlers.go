package http

import (
	"net/http"
	"strings"

	"github.com/kdrivas1989/judgetest/internal/access"
	"github.com/kdrivas1989/judgetest/internal/quiz"
)

type studentOverview struct {
	Username       string          `json:"username"`
	Name           string          `json:"name"`
	AssignedTests  []string        `json:"assigned_tests"`
	TestsAssigned  int             `json:"tests_assigned"`
	TestsCompleted int             `json:"tests_completed"`
	Completed      []completedTest `json:"completed_tests"`
}

type completedTest struct {
	TestID string  `json:"test_id"`
	Passed bool    `json:"passed"`
	Score  float64 `json:"score"`
}

type overviewResp struct {
	Tests      map[string]quiz.Test       `json:"tests"`
	Results    map[string]quiz.TestResult `json:"results"`
	Students   []studentOverview          `json:"students"`
	Categories []string                   `json:"categories"`
}

// GET /proctor/overview
// The dashboard payload: resolved tests and results, category labels,
// and the student roster with completion status.
func ProctorOverviewHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		allTests, err := store.ListTests(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		allResults, err := store.ListResults(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		allUsers, err := store.ListUsers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		tests := access.ResolveTests(user, allTests, true)
		sanitized := make(map[string]quiz.Test, len(tests))
		for id, t := range tests {
			sanitized[id] = t.Sanitized()
		}

		var students []studentOverview
		for _, u := range allUsers {
			if u.Role != quiz.RoleStudent {
				continue
			}
			so := studentOverview{
				Username:      u.Username,
				Name:          u.Name,
				AssignedTests: u.AssignedTests,
				TestsAssigned: len(u.AssignedTests),
				Completed:     []completedTest{},
			}
			for _, res := range allResults {
				if res.Username != u.Username {
					continue
				}
				so.Completed = append(so.Completed, completedTest{
					TestID: res.TestID,
					Passed: res.Passed,
					Score:  res.Score,
				})
			}
			so.TestsCompleted = len(so.Completed)
			students = append(students, so)
		}

		var catNames []string
		for id := range user.Categories {
			if quiz.ValidCategory(id) {
				catNames = append(catNames, strings.ToUpper(id))
			}
		}

		writeJSON(w, http.StatusOK, overviewResp{
			Tests:      sanitized,
			Results:    access.ResolveResults(user, allTests, allResults),
			Students:   students,
			Categories: catNames,
		})
	}
}
