package grading

import (
	"fmt"
	"math"
	"time"

	"github.com/kdrivas1989/judgetest/internal/quiz"
)

// Weighted scheme: the multiple-choice answer is worth 3.5 points and the
// section reference 0.5, independently, for a 4-point question maximum.
const (
	choicePoints  = 3.5
	sectionPoints = 0.5
	maxPerQ       = 4
)

// Legacy scheme kept behind an option: a correct choice is worth the full
// 4 points, a correct reference alone 1 point, never both.
const (
	legacyChoicePoints  = 4
	legacySectionPoints = 1
)

type Option func(*Engine)

// WithLegacyScoring switches the engine to the strict 4/1/0 scheme used
// by earlier revisions of the test. The two schemes are never merged.
func WithLegacyScoring(b bool) Option { return func(e *Engine) { e.legacy = b } }

func withClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// Engine computes scores for submissions. It is purely computational: the
// caller fetches the test and persists the returned result.
type Engine struct {
	legacy bool
	now    func() time.Time
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Grade scores one submission against a test definition, in the test's
// question order. Answers and sections are keyed by question id; an
// absent answer never matches any option.
func (e *Engine) Grade(t quiz.Test, answers map[int]int, sections map[int]string) quiz.TestResult {
	var total float64
	entries := make([]quiz.QuestionResult, 0, len(t.Questions))

	for _, q := range t.Questions {
		var chosen *int
		if a, ok := answers[q.ID]; ok {
			a := a
			chosen = &a
		}
		correct := chosen != nil && *chosen == q.Correct
		rawSection := sections[q.ID]
		sectionCorrect := Normalize(rawSection) == Normalize(q.CorrectSection)

		points := e.questionPoints(correct, sectionCorrect)
		total += points

		entries = append(entries, quiz.QuestionResult{
			ID:               q.ID,
			Question:         q.Question,
			UserAnswer:       chosen,
			CorrectAnswer:    q.Correct,
			IsCorrect:        correct,
			UserSection:      rawSection,
			CorrectSection:   q.CorrectSection,
			IsSectionCorrect: sectionCorrect,
			Points:           points,
			Options:          q.Options,
		})
	}

	possible := len(t.Questions) * maxPerQ
	score := Score(total, possible)
	return quiz.TestResult{
		TestID:         t.ID,
		TestName:       t.Name,
		Score:          score,
		TotalPoints:    total,
		TotalPossible:  possible,
		TotalQuestions: len(t.Questions),
		PassingScore:   t.PassingScore,
		Passed:         score >= float64(t.PassingScore),
		Timestamp:      e.now().UTC(),
		Results:        entries,
	}
}

func (e *Engine) questionPoints(correct, sectionCorrect bool) float64 {
	if e.legacy {
		switch {
		case correct:
			return legacyChoicePoints
		case sectionCorrect:
			return legacySectionPoints
		default:
			return 0
		}
	}
	var p float64
	if correct {
		p += choicePoints
	}
	if sectionCorrect {
		p += sectionPoints
	}
	return p
}

// Score converts raw points into a 0-100 percentage with one-decimal
// half-away-from-zero rounding. Zero questions score zero.
func Score(points float64, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return math.Round(points/float64(possible)*1000) / 10
}

// ApproveReference grants the reference half-point for one question of a
// failed result and recomputes the aggregate. It returns a copy; callers
// persist it under the same identifier. Approving a passing result, an
// unknown question, or an already-correct reference is a rejected no-op.
func ApproveReference(r quiz.TestResult, questionID int, approver string) (quiz.TestResult, error) {
	if r.Passed {
		return quiz.TestResult{}, fmt.Errorf("%w: result %s already passed", quiz.ErrConflict, r.ID)
	}
	idx := -1
	for i, qr := range r.Results {
		if qr.ID == questionID && !qr.IsSectionCorrect {
			idx = i
			break
		}
	}
	if idx < 0 {
		return quiz.TestResult{}, fmt.Errorf("%w: no unapproved reference for question %d",
			quiz.ErrConflict, questionID)
	}

	updated := r
	updated.Results = make([]quiz.QuestionResult, len(r.Results))
	copy(updated.Results, r.Results)

	entry := updated.Results[idx]
	entry.IsSectionCorrect = true
	entry.ApprovedBy = approver
	entry.Points += sectionPoints
	updated.Results[idx] = entry

	var total float64
	for _, qr := range updated.Results {
		total += qr.Points
	}
	updated.TotalPoints = total
	updated.Score = Score(total, updated.TotalPossible)
	updated.Passed = updated.Score >= float64(updated.PassingScore)
	return updated, nil
}
