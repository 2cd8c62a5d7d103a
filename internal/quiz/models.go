package quiz

import (
	"encoding/json"
	"time"
)

// Role is the closed set of account roles. Permission checks live in
// internal/rbac; nothing outside it should compare roles directly.
type Role string

const (
	RoleStudent  Role = "student"
	RoleProctor  Role = "proctor"
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleProctor, RoleAdmin, RoleReviewer:
		return true
	}
	return false
}

// Level is a proctor certification tier. National and examiner subsume
// regional test access; an unrecognized level grants nothing.
type Level string

const (
	LevelRegional Level = "regional"
	LevelNational Level = "national"
	LevelExaminer Level = "examiner"
)

// Certification is a proctor's standing in one category.
type Certification struct {
	Level      Level  `json:"level"`
	Expiration string `json:"expiration,omitempty"`
}

// CertificationSet maps category id -> certification. The persisted form
// evolved from a flat array of category ids to the keyed object, so
// unmarshaling accepts both; legacy array entries default to regional.
type CertificationSet map[string]Certification

func (cs *CertificationSet) UnmarshalJSON(data []byte) error {
	var obj map[string]Certification
	if err := json.Unmarshal(data, &obj); err == nil {
		*cs = obj
		return nil
	}
	var legacy []string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	out := make(CertificationSet, len(legacy))
	for _, id := range legacy {
		out[id] = Certification{Level: LevelRegional}
	}
	*cs = out
	return nil
}

// User is an account record. Usernames are stored lowercase.
// AssignedTests is meaningful for students, Categories for proctors.
type User struct {
	Username      string           `json:"username"`
	PasswordHash  string           `json:"-"`
	Role          Role             `json:"role"`
	Name          string           `json:"name"`
	AssignedTests []string         `json:"assigned_tests,omitempty"`
	Categories    CertificationSet `json:"categories,omitempty"`
}

// Question is one multiple-choice item. Options always has exactly four
// entries and Correct indexes into it.
type Question struct {
	ID             int      `json:"id"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Correct        int      `json:"correct"`
	CorrectSection string   `json:"correct_section"`
	Reference      string   `json:"reference,omitempty"`
}

type Test struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Chapter      string     `json:"chapter,omitempty"`
	PassingScore int        `json:"passing_score"`
	Questions    []Question `json:"questions"`
}

// Sanitized returns a copy safe to serve to students: the correct choice
// and expected section are stripped, mirroring how exams hide answer keys.
func (t Test) Sanitized() Test {
	qs := make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		q.Correct = -1
		q.CorrectSection = ""
		q.Reference = ""
		qs[i] = q
	}
	t.Questions = qs
	return t
}

// QuestionResult is the per-question grading record kept inside a
// TestResult. UserAnswer is nil when the student never chose an option.
type QuestionResult struct {
	ID               int      `json:"id"`
	Question         string   `json:"question"`
	UserAnswer       *int     `json:"user_answer"`
	CorrectAnswer    int      `json:"correct_answer"`
	IsCorrect        bool     `json:"is_correct"`
	UserSection      string   `json:"user_section"`
	CorrectSection   string   `json:"correct_section"`
	IsSectionCorrect bool     `json:"is_section_correct"`
	Points           float64  `json:"question_points"`
	Options          []string `json:"options"`
	ApprovedBy       string   `json:"approved_by,omitempty"`
}

// TestResult is one graded submission. The identifier never changes;
// reference approval mutates entries and recomputes the aggregate fields.
// Revision guards concurrent read-modify-write updates.
type TestResult struct {
	ID             string           `json:"result_id"`
	Student        string           `json:"student"`
	Username       string           `json:"username"`
	TestID         string           `json:"test_id"`
	TestName       string           `json:"test_name"`
	Score          float64          `json:"score"`
	TotalPoints    float64          `json:"total_points"`
	TotalPossible  int              `json:"total_possible"`
	TotalQuestions int              `json:"total_questions"`
	PassingScore   int              `json:"passing_score"`
	Passed         bool             `json:"passed"`
	Timestamp      time.Time        `json:"timestamp"`
	Results        []QuestionResult `json:"results"`
	Revision       int              `json:"revision"`
}

// Verification marks a question's reference answer as checked by a
// reviewer. Keyed by (TestID, QuestionID), independent of any submission.
type Verification struct {
	TestID         string    `json:"test_id"`
	QuestionID     int       `json:"question_id"`
	VerifiedBy     string    `json:"verified_by"`
	VerifiedByName string    `json:"verified_by_name"`
	VerifiedAt     time.Time `json:"verified_at"`
}
