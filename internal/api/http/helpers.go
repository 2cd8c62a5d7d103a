package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kdrivas1989/judgetest/internal/quiz"
	"github.com/kdrivas1989/judgetest/internal/rbac"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps the core error taxonomy onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, quiz.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, quiz.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, quiz.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, quiz.ErrStorageUnavailable):
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// currentUser loads the authenticated account backing the request.
func currentUser(ctx context.Context, store quiz.Store) (quiz.User, error) {
	sub := rbac.SubjectFromContext(ctx)
	if sub == "" {
		return quiz.User{}, quiz.ErrUnauthorized
	}
	return store.GetUser(ctx, sub)
}
