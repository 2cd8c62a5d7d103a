package grading

import (
	"testing"
	"time"

	"github.com/kdrivas1989/judgetest/internal/quiz"
)

func testClock() func() time.Time {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func twoQuestionTest() quiz.Test {
	return quiz.Test{
		ID:           "ch8_regional",
		Name:         "Chapter 8 Regional",
		PassingScore: 80,
		Questions: []quiz.Question{
			{
				ID:             1,
				Question:       "First question",
				Options:        []string{"a", "b", "c", "d"},
				Correct:        2,
				CorrectSection: "8-1.3.1",
			},
			{
				ID:             2,
				Question:       "Second question",
				Options:        []string{"a", "b", "c", "d"},
				Correct:        0,
				CorrectSection: "8-2.1",
			},
		},
	}
}

func TestGradeAllCorrect(t *testing.T) {
	e := NewEngine(withClock(testClock()))
	res := e.Grade(twoQuestionTest(),
		map[int]int{1: 2, 2: 0},
		map[int]string{1: "Section 8-1.3.1", 2: "8.2.1"})

	if res.TotalPossible != 8 {
		t.Fatalf("total_possible = %d, want 8", res.TotalPossible)
	}
	if res.Score != 100.0 {
		t.Errorf("score = %v, want 100.0", res.Score)
	}
	if !res.Passed {
		t.Errorf("passed = false, want true")
	}
	for _, qr := range res.Results {
		if qr.Points != 4.0 {
			t.Errorf("question %d points = %v, want 4.0", qr.ID, qr.Points)
		}
	}
}

func TestGradeAllWrong(t *testing.T) {
	e := NewEngine(withClock(testClock()))
	res := e.Grade(twoQuestionTest(),
		map[int]int{1: 0, 2: 3},
		map[int]string{1: "nope", 2: "also wrong"})
	if res.Score != 0.0 {
		t.Errorf("score = %v, want 0.0", res.Score)
	}
	if res.Passed {
		t.Errorf("passed = true, want false")
	}
}

func TestGradeChoiceOnlyContributes3Point5(t *testing.T) {
	e := NewEngine(withClock(testClock()))
	res := e.Grade(twoQuestionTest(),
		map[int]int{1: 2},
		map[int]string{})
	if res.Results[0].Points != 3.5 {
		t.Errorf("q1 points = %v, want 3.5", res.Results[0].Points)
	}
	// Q2 has an unanswered choice and an empty submitted section against a
	// non-empty expected one: zero points.
	if res.Results[1].Points != 0 {
		t.Errorf("q2 points = %v, want 0", res.Results[1].Points)
	}
	if res.Results[1].UserAnswer != nil {
		t.Errorf("q2 user_answer = %v, want nil", *res.Results[1].UserAnswer)
	}
}

func TestGradeEndToEnd(t *testing.T) {
	// Correct choice + correct ref on Q1, wrong choice + correct ref on
	// Q2: 4.0 + 0.5 = 4.5 of 8 => 56.3 after one-decimal rounding.
	e := NewEngine(withClock(testClock()))
	res := e.Grade(twoQuestionTest(),
		map[int]int{1: 2, 2: 1},
		map[int]string{1: "8-1.3.1", 2: "8-2.1"})
	if res.TotalPoints != 4.5 {
		t.Fatalf("total_points = %v, want 4.5", res.TotalPoints)
	}
	if res.Score != 56.3 {
		t.Errorf("score = %v, want 56.3", res.Score)
	}
	if res.Passed {
		t.Errorf("passed = true, want false (passing_score=80)")
	}
}

func TestGradeBothSectionsEmptyMatches(t *testing.T) {
	// Known edge case: an empty submitted reference against an empty
	// expected one counts as a match under normalization equality.
	test := twoQuestionTest()
	test.Questions[0].CorrectSection = ""
	e := NewEngine(withClock(testClock()))
	res := e.Grade(test, map[int]int{}, map[int]string{})
	if !res.Results[0].IsSectionCorrect {
		t.Errorf("empty vs empty section: is_section_correct = false, want true")
	}
	if res.Results[0].Points != 0.5 {
		t.Errorf("points = %v, want 0.5", res.Results[0].Points)
	}
}

func TestGradeLegacyScheme(t *testing.T) {
	e := NewEngine(WithLegacyScoring(true), withClock(testClock()))
	res := e.Grade(twoQuestionTest(),
		map[int]int{1: 2, 2: 1},
		map[int]string{1: "wrong", 2: "8-2.1"})
	// Q1: correct choice => 4 regardless of section. Q2: wrong choice,
	// correct section => 1.
	if res.Results[0].Points != 4 {
		t.Errorf("legacy q1 points = %v, want 4", res.Results[0].Points)
	}
	if res.Results[1].Points != 1 {
		t.Errorf("legacy q2 points = %v, want 1", res.Results[1].Points)
	}
}

func TestGradeZeroQuestions(t *testing.T) {
	e := NewEngine(withClock(testClock()))
	res := e.Grade(quiz.Test{ID: "empty", PassingScore: 80}, nil, nil)
	if res.TotalPossible != 0 || res.Score != 0 {
		t.Errorf("empty test: possible=%d score=%v, want 0/0", res.TotalPossible, res.Score)
	}
}

func TestApproveReference(t *testing.T) {
	e := NewEngine(withClock(testClock()))
	res := e.Grade(twoQuestionTest(),
		map[int]int{1: 2, 2: 1},
		map[int]string{1: "8-1.3.1", 2: "wrong"})
	res.ID = "abc123"
	if res.Passed {
		t.Fatalf("fixture should not pass")
	}

	updated, err := ApproveReference(res, 2, "proctor1")
	if err != nil {
		t.Fatalf("ApproveReference: %v", err)
	}
	if got, want := updated.TotalPoints, res.TotalPoints+0.5; got != want {
		t.Errorf("total_points = %v, want %v", got, want)
	}
	if got, want := updated.Score, Score(updated.TotalPoints, updated.TotalPossible); got != want {
		t.Errorf("score = %v, want recomputed %v", got, want)
	}
	if !updated.Results[1].IsSectionCorrect {
		t.Errorf("approved entry still marked section-incorrect")
	}
	if updated.Results[1].ApprovedBy != "proctor1" {
		t.Errorf("approved_by = %q, want proctor1", updated.Results[1].ApprovedBy)
	}
	// The original record is untouched.
	if res.Results[1].IsSectionCorrect || res.Results[1].Points != updated.Results[1].Points-0.5 {
		t.Errorf("input result mutated in place")
	}
}

func TestApproveReferenceRejections(t *testing.T) {
	e := NewEngine(withClock(testClock()))

	passing := e.Grade(twoQuestionTest(),
		map[int]int{1: 2, 2: 0},
		map[int]string{1: "8-1.3.1", 2: "8-2.1"})
	if _, err := ApproveReference(passing, 1, "p"); err == nil {
		t.Errorf("approving a passing result should fail")
	}

	failing := e.Grade(twoQuestionTest(),
		map[int]int{},
		map[int]string{1: "8-1.3.1"})
	if _, err := ApproveReference(failing, 99, "p"); err == nil {
		t.Errorf("approving an unknown question should fail")
	}
	// Q1's section is already correct.
	if _, err := ApproveReference(failing, 1, "p"); err == nil {
		t.Errorf("approving an already-correct reference should fail")
	}
}

func TestScoreRounding(t *testing.T) {
	tests := []struct {
		points   float64
		possible int
		want     float64
	}{
		{4.5, 8, 56.3}, // 56.25 rounds up, not to even
		{4, 8, 50},
		{0, 8, 0},
		{8, 8, 100},
		{1, 3, 33.3},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := Score(tt.points, tt.possible); got != tt.want {
			t.Errorf("Score(%v, %d) = %v, want %v", tt.points, tt.possible, got, tt.want)
		}
	}
}
