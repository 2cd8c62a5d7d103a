package quiz

import "context"

// Store is the persistence contract consumed by the grading engine, the
// access resolver and the verification tracker. Implementations: an
// in-memory map store (tests, degraded mode) and a SQL store.
type Store interface {
	GetTest(ctx context.Context, id string) (Test, error)
	ListTests(ctx context.Context) (map[string]Test, error)
	SaveTest(ctx context.Context, t Test) error

	GetUser(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) (map[string]User, error)
	SaveUser(ctx context.Context, u User) error
	DeleteUser(ctx context.Context, username string) error

	GetResult(ctx context.Context, id string) (TestResult, error)
	ListResults(ctx context.Context) (map[string]TestResult, error)
	SaveResult(ctx context.Context, r TestResult) error
	// UpdateResult persists a mutated result. The stored revision must
	// match r.Revision or ErrConflict is returned; on success the stored
	// record carries r.Revision+1.
	UpdateResult(ctx context.Context, r TestResult) error

	// GetVerifications returns all verification records, or only those
	// for one test when testID is non-empty.
	GetVerifications(ctx context.Context, testID string) ([]Verification, error)
	SaveVerification(ctx context.Context, v Verification) error
	DeleteVerification(ctx context.Context, testID string, questionID int) error
}
