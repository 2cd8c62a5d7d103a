package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kdrivas1989/judgetest/internal/audit"
	"github.com/kdrivas1989/judgetest/internal/grading"
	"github.com/kdrivas1989/judgetest/internal/quiz"
	"github.com/kdrivas1989/judgetest/internal/rbac"
)

func fixtureStore(t *testing.T) quiz.Store {
	t.Helper()
	ctx := context.Background()
	store := quiz.NewInMemoryStore()

	test := quiz.Test{
		ID:           "ch8_regional",
		Name:         "Airline Regional",
		Chapter:      "8",
		PassingScore: 80,
		Questions: []quiz.Question{
			{ID: 1, Question: "q1", Options: []string{"a", "b", "c", "d"}, Correct: 0, CorrectSection: "8-1"},
			{ID: 2, Question: "q2", Options: []string{"a", "b", "c", "d"}, Correct: 1, CorrectSection: "8-2"},
		},
	}
	if err := store.SaveTest(ctx, test); err != nil {
		t.Fatal(err)
	}
	users := []quiz.User{
		{Username: "sam", Role: quiz.RoleStudent, Name: "Sam Rivera", AssignedTests: []string{"ch8_regional"}},
		{Username: "pat", Role: quiz.RoleProctor, Name: "Pat Chen",
			Categories: quiz.CertificationSet{"al": {Level: quiz.LevelRegional}}},
		{Username: "root", Role: quiz.RoleAdmin, Name: "Administrator"},
	}
	for _, u := range users {
		if err := store.SaveUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func asUser(r *http.Request, store quiz.Store, username string) *http.Request {
	u, err := store.GetUser(r.Context(), username)
	if err != nil {
		panic(fmt.Sprintf("fixture user %s: %v", username, err))
	}
	ctx := rbac.WithIdentity(r.Context(), u.Username, u.Role, u.Name)
	return r.WithContext(ctx)
}

func submitRouter(store quiz.Store) chi.Router {
	r := chi.NewRouter()
	engine := grading.NewEngine()
	r.Post("/tests/{testID}/submit", SubmitTestHandler(store, engine, audit.Nop{}))
	r.Post("/results/{resultID}/approve-reference", ApproveReferenceHandler(store, audit.Nop{}))
	r.Get("/results/{resultID}", GetResultHandler(store))
	return r
}

func TestSubmitAndApproveFlow(t *testing.T) {
	store := fixtureStore(t)
	router := submitRouter(store)

	// One fully correct answer, one correct choice with a wrong section:
	// 4 + 3.5 of 8 possible, 93.8, below nothing since passing is 80.
	body := `{"answers": {"1": 0, "2": 1}, "sections": {"1": "Section 8-1", "2": "9-9"}}`
	req := httptest.NewRequest(http.MethodPost, "/tests/ch8_regional/submit", bytes.NewBufferString(body))
	req = asUser(req, store, "sam")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rr.Code, rr.Body.String())
	}

	var submitted struct {
		ResultID string  `json:"result_id"`
		Score    float64 `json:"score"`
		Passed   bool    `json:"passed"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if submitted.Score != 93.8 {
		t.Errorf("score = %v, want 93.8", submitted.Score)
	}
	if !submitted.Passed {
		t.Error("expected a pass at 93.8 against 80")
	}

	// A passing result cannot take the reference half point.
	approveBody := `{"question_id": 2}`
	req = httptest.NewRequest(http.MethodPost, "/results/"+submitted.ResultID+"/approve-reference",
		bytes.NewBufferString(approveBody))
	req = asUser(req, store, "pat")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Errorf("approve on passing result status = %d, want 409", rr.Code)
	}
}

func TestApproveReferenceLiftsFailedResult(t *testing.T) {
	store := fixtureStore(t)
	router := submitRouter(store)
	ctx := context.Background()

	// Seed a failed result directly: one correct choice, section missed.
	failed := quiz.TestResult{
		ID:             "fail0001",
		Username:       "sam",
		Student:        "Sam Rivera",
		TestID:         "ch8_regional",
		TestName:       "Airline Regional",
		Score:          43.8,
		TotalPoints:    3.5,
		TotalPossible:  8,
		TotalQuestions: 2,
		PassingScore:   80,
		Passed:         false,
		Results: []quiz.QuestionResult{
			{ID: 1, IsCorrect: true, IsSectionCorrect: false, Points: 3.5},
			{ID: 2, IsCorrect: false, IsSectionCorrect: false, Points: 0},
		},
	}
	if err := store.SaveResult(ctx, failed); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/results/fail0001/approve-reference",
		bytes.NewBufferString(`{"question_id": 1}`))
	req = asUser(req, store, "pat")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("approve status = %d, body %s", rr.Code, rr.Body.String())
	}

	got, err := store.GetResult(ctx, "fail0001")
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalPoints != 4 {
		t.Errorf("total points = %v, want 4", got.TotalPoints)
	}
	if got.Score != 50 {
		t.Errorf("score = %v, want 50", got.Score)
	}
	if got.Results[0].ApprovedBy != "pat" {
		t.Errorf("approved by = %q, want pat", got.Results[0].ApprovedBy)
	}
	if got.Revision != 1 {
		t.Errorf("revision = %d, want 1 after update", got.Revision)
	}
}

func TestStudentCannotReadOthersResult(t *testing.T) {
	store := fixtureStore(t)
	router := submitRouter(store)
	ctx := context.Background()

	if err := store.SaveUser(ctx, quiz.User{Username: "lee", Role: quiz.RoleStudent, Name: "Lee"}); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveResult(ctx, quiz.TestResult{ID: "r1", Username: "sam", TestID: "ch8_regional"}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/results/r1", nil)
	req = asUser(req, store, "lee")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("cross-student read status = %d, want 403", rr.Code)
	}
}

func TestSubmitUnassignedTestRejected(t *testing.T) {
	store := fixtureStore(t)
	router := submitRouter(store)
	ctx := context.Background()

	unassigned := quiz.Test{
		ID:           "ch9_regional",
		Name:         "Fire Safety Regional",
		PassingScore: 80,
		Questions: []quiz.Question{
			{ID: 1, Options: []string{"a", "b", "c", "d"}, Correct: 0},
		},
	}
	if err := store.SaveTest(ctx, unassigned); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/tests/ch9_regional/submit",
		bytes.NewBufferString(`{"answers": {"1": 0}}`))
	req = asUser(req, store, "sam")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("unassigned submit status = %d, want 403", rr.Code)
	}
}
