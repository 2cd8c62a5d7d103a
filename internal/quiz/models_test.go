package quiz

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCertificationSetUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want CertificationSet
	}{
		{
			name: "modern object form",
			in:   `{"al": {"level": "national", "expiration": "2026-01-31"}, "fs": {"level": "regional"}}`,
			want: CertificationSet{
				"al": {Level: LevelNational, Expiration: "2026-01-31"},
				"fs": {Level: LevelRegional},
			},
		},
		{
			name: "legacy flat array defaults to regional",
			in:   `["al", "fs"]`,
			want: CertificationSet{
				"al": {Level: LevelRegional},
				"fs": {Level: LevelRegional},
			},
		},
		{
			name: "empty array",
			in:   `[]`,
			want: CertificationSet{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CertificationSet
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for id, cert := range tt.want {
				if got[id] != cert {
					t.Errorf("%s = %+v, want %+v", id, got[id], cert)
				}
			}
		})
	}

	var got CertificationSet
	if err := json.Unmarshal([]byte(`"not valid"`), &got); err == nil {
		t.Errorf("expected error for scalar input")
	}
}

func TestSanitizedStripsAnswers(t *testing.T) {
	test := Test{
		ID: "ch8_regional",
		Questions: []Question{
			{ID: 1, Options: []string{"a", "b", "c", "d"}, Correct: 2, CorrectSection: "8-1", Reference: "SCM 8-1"},
		},
	}
	s := test.Sanitized()
	if s.Questions[0].Correct != -1 || s.Questions[0].CorrectSection != "" || s.Questions[0].Reference != "" {
		t.Errorf("answers not stripped: %+v", s.Questions[0])
	}
	// Original untouched.
	if test.Questions[0].Correct != 2 || test.Questions[0].CorrectSection != "8-1" {
		t.Errorf("source test mutated: %+v", test.Questions[0])
	}
}

func validQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:      i + 1,
			Options: []string{"a", "b", "c", "d"},
			Correct: i % 4,
		}
	}
	return qs
}

func TestValidateQuestions(t *testing.T) {
	if err := ValidateQuestions(validQuestions(3)); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func([]Question) []Question
	}{
		{"three options", func(qs []Question) []Question {
			qs[0].Options = qs[0].Options[:3]
			return qs
		}},
		{"five options", func(qs []Question) []Question {
			qs[0].Options = append(qs[0].Options, "e")
			return qs
		}},
		{"correct index too high", func(qs []Question) []Question {
			qs[1].Correct = 4
			return qs
		}},
		{"correct index negative", func(qs []Question) []Question {
			qs[1].Correct = -1
			return qs
		}},
		{"duplicate ids", func(qs []Question) []Question {
			qs[2].ID = qs[0].ID
			return qs
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestions(tt.mutate(validQuestions(3)))
			if !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestValidateReplacementCountMismatch(t *testing.T) {
	existing := Test{ID: "t", Questions: validQuestions(3)}
	if err := ValidateReplacement(existing, validQuestions(3)); err != nil {
		t.Fatalf("same-count replacement rejected: %v", err)
	}
	if err := ValidateReplacement(existing, validQuestions(2)); !errors.Is(err, ErrValidation) {
		t.Errorf("count mismatch err = %v, want ErrValidation", err)
	}
}
