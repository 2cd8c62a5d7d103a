// Package review tracks which questions of a test have had their
// reference answer checked by a reviewer. Verification state lives beside
// the tests, independent of any submission.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/kdrivas1989/judgetest/internal/grading"
	"github.com/kdrivas1989/judgetest/internal/quiz"
)

type Tracker struct {
	store quiz.Store
	now   func() time.Time
}

func NewTracker(store quiz.Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Verify upserts the sign-off for (testID, questionID), overwriting any
// prior verifier and timestamp. The test and question must exist.
func (t *Tracker) Verify(ctx context.Context, testID string, questionID int, username, name string) error {
	test, err := t.store.GetTest(ctx, testID)
	if err != nil {
		return fmt.Errorf("verify %s/%d: %w", testID, questionID, err)
	}
	if !hasQuestion(test, questionID) {
		return fmt.Errorf("verify %s/%d: question: %w", testID, questionID, quiz.ErrNotFound)
	}
	return t.store.SaveVerification(ctx, quiz.Verification{
		TestID:         testID,
		QuestionID:     questionID,
		VerifiedBy:     username,
		VerifiedByName: name,
		VerifiedAt:     t.now().UTC(),
	})
}

// Unverify removes the sign-off. Removing an absent record is not an error.
func (t *Tracker) Unverify(ctx context.Context, testID string, questionID int) error {
	return t.store.DeleteVerification(ctx, testID, questionID)
}

// List returns verification records, all of them or those of one test.
func (t *Tracker) List(ctx context.Context, testID string) ([]quiz.Verification, error) {
	return t.store.GetVerifications(ctx, testID)
}

type Stats struct {
	Total    int     `json:"total"`
	Verified int     `json:"verified"`
	Percent  float64 `json:"percent"`
}

// StatsFor reports sign-off coverage over the given question set. Records
// for questions no longer in the test are not counted. A test with no
// questions reports zero percent.
func (t *Tracker) StatsFor(ctx context.Context, testID string, questions []quiz.Question) (Stats, error) {
	recs, err := t.store.GetVerifications(ctx, testID)
	if err != nil {
		return Stats{}, err
	}
	ids := make(map[int]bool, len(questions))
	for _, q := range questions {
		ids[q.ID] = true
	}
	verified := 0
	for _, v := range recs {
		if ids[v.QuestionID] {
			verified++
		}
	}
	return Stats{
		Total:    len(questions),
		Verified: verified,
		Percent:  grading.Score(float64(verified), len(questions)),
	}, nil
}

func hasQuestion(t quiz.Test, questionID int) bool {
	for _, q := range t.Questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
