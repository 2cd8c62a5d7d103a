package quiz

import "fmt"

const optionCount = 4

// ValidateQuestions rejects a malformed question set before any mutation
// happens: exactly four options per question, correct index in range,
// unique ids within the test.
func ValidateQuestions(qs []Question) error {
	seen := make(map[int]bool, len(qs))
	for _, q := range qs {
		if len(q.Options) != optionCount {
			return fmt.Errorf("%w: question %d has %d options, want %d",
				ErrValidation, q.ID, len(q.Options), optionCount)
		}
		if q.Correct < 0 || q.Correct >= optionCount {
			return fmt.Errorf("%w: question %d correct index %d out of range",
				ErrValidation, q.ID, q.Correct)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate question id %d", ErrValidation, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// ValidateReplacement additionally requires the replacement set to keep
// the question count of the existing test.
func ValidateReplacement(existing Test, qs []Question) error {
	if err := ValidateQuestions(qs); err != nil {
		return err
	}
	if len(qs) != len(existing.Questions) {
		return fmt.Errorf("%w: test %s has %d questions, replacement has %d",
			ErrValidation, existing.ID, len(existing.Questions), len(qs))
	}
	return nil
}
