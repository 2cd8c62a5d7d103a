package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kdrivas1989/judgetest/internal/auth"
	"github.com/kdrivas1989/judgetest/internal/quiz"
	"github.com/kdrivas1989/judgetest/internal/rbac"
)

const minPasswordLen = 6

// GET /users?role=proctor
func ListUsersHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		roleFilter := quiz.Role(r.URL.Query().Get("role"))
		out := map[string]quiz.User{}
		for name, u := range users {
			if roleFilter != "" && u.Role != roleFilter {
				continue
			}
			out[name] = u
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /users/{username}
func GetUserHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := store.GetUser(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type createUserReq struct {
	Username      string                `json:"username"`
	Password      string                `json:"password"`
	Name          string                `json:"name"`
	Role          quiz.Role             `json:"role"`
	AssignedTests []string              `json:"assigned_tests"`
	Categories    quiz.CertificationSet `json:"categories"`
}

// POST /users
// Admins create any role; proctors only students. Unknown categories are
// dropped rather than rejected, matching the original admin endpoints.
func CreateUserHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		req.Username = strings.ToLower(strings.TrimSpace(req.Username))
		if req.Role == "" {
			req.Role = quiz.RoleStudent
		}
		if req.Username == "" || req.Name == "" {
			writeError(w, fmt.Errorf("%w: username and name are required", quiz.ErrValidation))
			return
		}
		if !req.Role.Valid() {
			writeError(w, fmt.Errorf("%w: invalid role %q", quiz.ErrValidation, req.Role))
			return
		}
		actorRole := rbac.RoleFromContext(r.Context())
		if actorRole == quiz.RoleProctor && req.Role != quiz.RoleStudent {
			writeError(w, fmt.Errorf("proctors may only add students: %w", quiz.ErrUnauthorized))
			return
		}
		if _, err := store.GetUser(r.Context(), req.Username); err == nil {
			writeError(w, fmt.Errorf("%w: username %s already exists", quiz.ErrConflict, req.Username))
			return
		}
		if req.Role == quiz.RoleStudent && req.Password == "" {
			writeError(w, fmt.Errorf("%w: password is required", quiz.ErrValidation))
			return
		}
		if req.Password == "" {
			// proctor/reviewer accounts start with a default password
			req.Password = "password"
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		u := quiz.User{
			Username:      req.Username,
			PasswordHash:  hash,
			Role:          req.Role,
			Name:          req.Name,
			AssignedTests: req.AssignedTests,
			Categories:    validCategories(req.Categories),
		}
		if err := store.SaveUser(r.Context(), u); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("%s %s added", req.Role, req.Name),
		})
	}
}

type updateUserReq struct {
	Name          *string                `json:"name"`
	Password      *string                `json:"password"`
	AssignedTests *[]string              `json:"assigned_tests"`
	Categories    *quiz.CertificationSet `json:"categories"`
}

// PUT /users/{username} — partial update; absent fields are untouched.
func UpdateUserHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := store.GetUser(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, err)
			return
		}
		var req updateUserReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Name != nil && *req.Name != "" {
			u.Name = *req.Name
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				writeError(w, err)
				return
			}
			u.PasswordHash = hash
		}
		if req.AssignedTests != nil {
			u.AssignedTests = *req.AssignedTests
		}
		if req.Categories != nil {
			u.Categories = validCategories(*req.Categories)
		}
		if err := store.SaveUser(r.Context(), u); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// DELETE /users/{username}
func DeleteUserHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if _, err := store.GetUser(r.Context(), username); err != nil {
			writeError(w, err)
			return
		}
		if err := store.DeleteUser(r.Context(), username); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// POST /users/change-password — actors change their own password.
func ChangePasswordHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := currentUser(r.Context(), store)
		if err != nil {
			writeError(w, err)
			return
		}
		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
			writeError(w, fmt.Errorf("%w: all fields required", quiz.ErrValidation))
			return
		}
		if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
			writeError(w, fmt.Errorf("%w: current password is incorrect", quiz.ErrValidation))
			return
		}
		if req.NewPassword != req.ConfirmPassword {
			writeError(w, fmt.Errorf("%w: new passwords do not match", quiz.ErrValidation))
			return
		}
		if len(req.NewPassword) < minPasswordLen {
			writeError(w, fmt.Errorf("%w: password must be at least %d characters",
				quiz.ErrValidation, minPasswordLen))
			return
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			writeError(w, err)
			return
		}
		u.PasswordHash = hash
		if err := store.SaveUser(r.Context(), u); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password changed successfully"})
	}
}

func validCategories(in quiz.CertificationSet) quiz.CertificationSet {
	out := quiz.CertificationSet{}
	for id, cert := range in {
		if quiz.ValidCategory(id) {
			out[id] = cert
		}
	}
	return out
}
