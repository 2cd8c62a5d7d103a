package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kdrivas1989/judgetest/internal/audit"
	"github.com/kdrivas1989/judgetest/internal/grading"
	"github.com/kdrivas1989/judgetest/internal/quiz"
)

type submitReq struct {
	Answers  map[string]int    `json:"answers"`
	Sections map[string]string `json:"sections"`
}

// POST /tests/{testID}/submit
// Grades the submission and persists the result under a fresh short
// token. The response carries the aggregate only; per-question records
// are fetched from the results endpoint.
func SubmitTestHandler(store quiz.Store, engine *grading.Engine, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		user, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		t, err := store.GetTest(r.Context(), testID)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := canSeeTest(r.Context(), store, user, testID); err != nil {
			writeError(w, err)
			return
		}
		var req submitReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}

		result := engine.Grade(t, intKeys(req.Answers), intKeysStr(req.Sections))
		result.ID = newResultID()
		result.Username = user.Username
		result.Student = user.Name

		if err := store.SaveResult(r.Context(), result); err != nil {
			writeError(w, err)
			return
		}
		rec.Record(r.Context(), audit.EventTestSubmitted, result.ID, map[string]any{
			"username": result.Username,
			"test_id":  result.TestID,
			"score":    result.Score,
			"passed":   result.Passed,
		})

		writeJSON(w, http.StatusOK, map[string]any{
			"result_id":      result.ID,
			"score":          result.Score,
			"total_points":   result.TotalPoints,
			"total_possible": result.TotalPossible,
			"passing_score":  result.PassingScore,
			"passed":         result.Passed,
		})
	}
}

// newResultID is a short random token, the first uuid group.
func newResultID() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Submission payloads key answers by question id as JSON strings;
// unparsable keys are dropped rather than failing the whole submission.
func intKeys(m map[string]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		if id, err := strconv.Atoi(k); err == nil {
			out[id] = v
		}
	}
	return out
}

func intKeysStr(m map[string]string) map[int]string {
	out := make(map[int]string, len(m))
	for k, v := range m {
		if id, err := strconv.Atoi(k); err == nil {
			out[id] = v
		}
	}
	return out
}
