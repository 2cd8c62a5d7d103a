package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kdrivas1989/judgetest/internal/access"
	"github.com/kdrivas1989/judgetest/internal/export"
	"github.com/kdrivas1989/judgetest/internal/quiz"
)

// GET /tests
// Students see their assigned tests, proctors the tests their categories
// cover, reviewers and admins everything. Answer keys are never included.
func ListTestsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		all, err := store.ListTests(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		visible := map[string]quiz.Test{}
		switch user.Role {
		case quiz.RoleStudent:
			for _, id := range user.AssignedTests {
				if t, ok := all[id]; ok {
					visible[id] = t
				}
			}
		case quiz.RoleProctor:
			visible = access.ResolveTests(user, all, true)
		default:
			visible = all
		}

		out := make(map[string]quiz.Test, len(visible))
		for id, t := range visible {
			out[id] = t.Sanitized()
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /tests/{testID}
// Always answer-stripped; students must be assigned the test, proctors
// must cover it.
func GetTestHandler(store quiz.Store) http.HandlerFunc {
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
		writeJSON(w, http.StatusOK, t.Sanitized())
	}
}

// GET /tests/{testID}/answer-key
// Full question set including answers. The general test is deliberately
// outside proctor answer-key access; it is resolved for results only.
func AnswerKeyHandler(store quiz.Store) http.HandlerFunc {
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
		if user.Role == quiz.RoleProctor {
			all, err := store.ListTests(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			if _, ok := access.ResolveTests(user, all, false)[testID]; !ok {
				writeError(w, fmt.Errorf("answer key %s: %w", testID, quiz.ErrUnauthorized))
				return
			}
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// PUT /tests/{testID}/questions
// Replaces the question set, all-or-nothing: the new set must validate
// and keep the existing question count.
func ReplaceQuestionsHandler(store quiz.Store) http.HandlerFunc {
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
		if err := canAdministerTest(r.Context(), store, user, testID); err != nil {
			writeError(w, err)
			return
		}
		var qs []quiz.Question
		if err := json.NewDecoder(r.Body).Decode(&qs); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := quiz.ValidateReplacement(t, qs); err != nil {
			writeError(w, err)
			return
		}
		t.Questions = qs
		if err := store.SaveTest(r.Context(), t); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// POST /tests/{testID}/reset restores the seeded question set.
func ResetTestHandler(store quiz.Store, seeds map[string]quiz.Test) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		user, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		seed, ok := seeds[testID]
		if !ok {
			writeError(w, fmt.Errorf("no seed content for %s: %w", testID, quiz.ErrNotFound))
			return
		}
		if err := canAdministerTest(r.Context(), store, user, testID); err != nil {
			writeError(w, err)
			return
		}
		if err := store.SaveTest(r.Context(), seed); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// GET /tests/{testID}/export?answers=1
// Writes a JSON artifact through the blob store and returns its URL.
func ExportTestHandler(store quiz.Store, bs export.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID := chi.URLParam(r, "testID")
		withAnswers := r.URL.Query().Get("answers") == "1"
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
		if withAnswers {
			if err := canAdministerTest(r.Context(), store, user, testID); err != nil {
				writeError(w, err)
				return
			}
		}
		url, err := export.WriteTest(bs, t, withAnswers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}

// canSeeTest allows students their assigned tests and proctors their
// resolved set (general included); other roles pass.
func canSeeTest(ctx context.Context, store quiz.Store, user quiz.User, testID string) error {
	switch user.Role {
	case quiz.RoleStudent:
		for _, id := range user.AssignedTests {
			if id == testID {
				return nil
			}
		}
		return fmt.Errorf("test %s not assigned: %w", testID, quiz.ErrUnauthorized)
	case quiz.RoleProctor:
		return canAdministerTest(ctx, store, user, testID)
	default:
		return nil
	}
}

// canAdministerTest lets admins and reviewers through and holds proctors
// to their resolved test set.
func canAdministerTest(ctx context.Context, store quiz.Store, user quiz.User, testID string) error {
	if user.Role != quiz.RoleProctor {
		return nil
	}
	all, err := store.ListTests(ctx)
	if err != nil {
		return err
	}
	if _, ok := access.ResolveTests(user, all, true)[testID]; !ok {
		return fmt.Errorf("test %s not in certified categories: %w", testID, quiz.ErrUnauthorized)
	}
	return nil
}
