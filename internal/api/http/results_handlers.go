package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kdrivas1989/judgetest/internal/access"
	"github.com/kdrivas1989/judgetest/internal/audit"
	"github.com/kdrivas1989/judgetest/internal/grading"
	"github.com/kdrivas1989/judgetest/internal/quiz"
)

// GET /results
// Students get their own submissions, proctors the results of tests they
// cover (general included), admins everything.
func ListResultsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		all, err := store.ListResults(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		switch user.Role {
		case quiz.RoleStudent:
			own := map[string]quiz.TestResult{}
			for id, res := range all {
				if res.Username == user.Username {
					own[id] = res
				}
			}
			writeJSON(w, http.StatusOK, own)
		case quiz.RoleProctor:
			tests, err := store.ListTests(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, access.ResolveResults(user, tests, all))
		default:
			writeJSON(w, http.StatusOK, all)
		}
	}
}

// GET /results/{resultID}
func GetResultHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := store.GetResult(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := canSeeResult(r.Context(), store, user, res); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type approveReq struct {
	QuestionID int `json:"question_id"`
}

// POST /results/{resultID}/approve-reference
// Grants the reference half-point on a failed result and recomputes the
// score. A stale concurrent update surfaces as a conflict.
func ApproveReferenceHandler(store quiz.Store, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := store.GetResult(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := canSeeResult(r.Context(), store, user, res); err != nil {
			writeError(w, err)
			return
		}
		var req approveReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		updated, err := grading.ApproveReference(res, req.QuestionID, user.Username)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := store.UpdateResult(r.Context(), updated); err != nil {
			writeError(w, err)
			return
		}
		rec.Record(r.Context(), audit.EventReferenceApproved, updated.ID, map[string]any{
			"question_id": req.QuestionID,
			"approved_by": user.Username,
			"score":       updated.Score,
			"passed":      updated.Passed,
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"result_id":    updated.ID,
			"score":        updated.Score,
			"total_points": updated.TotalPoints,
			"passed":       updated.Passed,
		})
	}
}

func canSeeResult(ctx context.Context, store quiz.Store, user quiz.User, res quiz.TestResult) error {
	switch user.Role {
	case quiz.RoleStudent:
		if res.Username != user.Username {
			return fmt.Errorf("result %s: %w", res.ID, quiz.ErrUnauthorized)
		}
		return nil
	case quiz.RoleProctor:
		tests, err := store.ListTests(ctx)
		if err != nil {
			return err
		}
		if _, ok := access.ResolveTests(user, tests, true)[res.TestID]; !ok {
			return fmt.Errorf("result %s: %w", res.ID, quiz.ErrUnauthorized)
		}
		return nil
	default:
		return nil
	}
}
