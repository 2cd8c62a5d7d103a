package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kdrivas1989/judgetest/internal/audit"
	"github.com/kdrivas1989/judgetest/internal/quiz"
	"github.com/kdrivas1989/judgetest/internal/rbac"
	"github.com/kdrivas1989/judgetest/internal/review"
)

// PUT /verifications/{testID}/{questionID}
func VerifyHandler(tracker *review.Tracker, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		qid, err := strconv.Atoi(chi.URLParam(r, "questionID"))
		if err != nil {
			http.Error(w, "bad question id", http.StatusBadRequest)
			return
		}
		sub := rbac.SubjectFromContext(r.Context())
		name := rbac.NameFromContext(r.Context())
		if err := tracker.Verify(r.Context(), testID, qid, sub, name); err != nil {
			writeError(w, err)
			return
		}
		rec.Record(r.Context(), audit.EventQuestionVerified, testID, map[string]any{
			"question_id": qid,
			"verified_by": sub,
		})
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// DELETE /verifications/{testID}/{questionID} — idempotent.
func UnverifyHandler(tracker *review.Tracker, rec audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		qid, err := strconv.Atoi(chi.URLParam(r, "questionID"))
		if err != nil {
			http.Error(w, "bad question id", http.StatusBadRequest)
			return
		}
		if err := tracker.Unverify(r.Context(), testID, qid); err != nil {
			writeError(w, err)
			return
		}
		rec.Record(r.Context(), audit.EventQuestionUnverified, testID, map[string]any{
			"question_id": qid,
		})
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// GET /verifications?test_id=ch8_regional
func ListVerificationsHandler(tracker *review.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := tracker.List(r.Context(), r.URL.Query().Get("test_id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// GET /tests/{testID}/verification-stats
func VerificationStatsHandler(store quiz.Store, tracker *review.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		t, err := store.GetTest(r.Context(), testID)
		if err != nil {
			writeError(w, err)
			return
		}
		stats, err := tracker.StatsFor(r.Context(), testID, t.Questions)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
