package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

func unixTime(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

// SQLStore persists the domain through database/sql. Works against sqlite
// (modernc) and postgres (pgx stdlib); both accept $N placeholders.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// storeErr folds driver-level failures into the shared taxonomy so the
// HTTP layer can surface a degraded-mode error on an unreachable store.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || isConnFailure(err) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

func isConnFailure(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "connection reset")
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, chapter, passing_score, questions_json FROM tests WHERE id=$1`, id)
	var t Test
	var qj string
	if err := row.Scan(&t.ID, &t.Name, &t.Chapter, &t.PassingScore, &qj); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrNotFound
		}
		return Test{}, storeErr(err)
	}
	if err := json.Unmarshal([]byte(qj), &t.Questions); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTests(ctx context.Context) (map[string]Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, chapter, passing_score, questions_json FROM tests`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := map[string]Test{}
	for rows.Next() {
		var t Test
		var qj string
		if err := rows.Scan(&t.ID, &t.Name, &t.Chapter, &t.PassingScore, &qj); err != nil {
			return nil, storeErr(err)
		}
		if err := json.Unmarshal([]byte(qj), &t.Questions); err != nil {
			return nil, err
		}
		out[t.ID] = t
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveTest(ctx context.Context, t Test) error {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tests (id, name, chapter, passing_score, questions_json)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, chapter=EXCLUDED.chapter,
		   passing_score=EXCLUDED.passing_score, questions_json=EXCLUDED.questions_json`,
		t.ID, t.Name, t.Chapter, t.PassingScore, string(qj))
	return storeErr(err)
}

func (s *SQLStore) GetUser(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT username, password_hash, role, name, categories_json, assigned_tests_json
		 FROM users WHERE username=$1`, strings.ToLower(username))
	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, storeErr(err)
	}
	return u, nil
}

func (s *SQLStore) ListUsers(ctx context.Context) (map[string]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, password_hash, role, name, categories_json, assigned_tests_json
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := map[string]User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, storeErr(err)
		}
		out[u.Username] = u
	}
	return out, rows.Err()
}

func scanUser(scan func(...any) error) (User, error) {
	var u User
	var role, cj, aj string
	if err := scan(&u.Username, &u.PasswordHash, &role, &u.Name, &cj, &aj); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	if cj != "" {
		if err := json.Unmarshal([]byte(cj), &u.Categories); err != nil {
			return User{}, err
		}
	}
	if aj != "" {
		if err := json.Unmarshal([]byte(aj), &u.AssignedTests); err != nil {
			return User{}, err
		}
	}
	return u, nil
}

func (s *SQLStore) SaveUser(ctx context.Context, u User) error {
	cj, err := json.Marshal(u.Categories)
	if err != nil {
		return err
	}
	aj, err := json.Marshal(u.AssignedTests)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, role, name, categories_json, assigned_tests_json)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (username) DO UPDATE SET password_hash=EXCLUDED.password_hash,
		   role=EXCLUDED.role, name=EXCLUDED.name, categories_json=EXCLUDED.categories_json,
		   assigned_tests_json=EXCLUDED.assigned_tests_json`,
		strings.ToLower(u.Username), u.PasswordHash, string(u.Role), u.Name, string(cj), string(aj))
	return storeErr(err)
}

func (s *SQLStore) DeleteUser(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username=$1`, strings.ToLower(username))
	return storeErr(err)
}

func (s *SQLStore) GetResult(ctx context.Context, id string) (TestResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data, revision FROM test_results WHERE result_id=$1`, id)
	var data string
	var rev int
	if err := row.Scan(&data, &rev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TestResult{}, ErrNotFound
		}
		return TestResult{}, storeErr(err)
	}
	var r TestResult
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return TestResult{}, err
	}
	r.ID = id
	r.Revision = rev
	return r, nil
}

func (s *SQLStore) ListResults(ctx context.Context) (map[string]TestResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT result_id, data, revision FROM test_results`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := map[string]TestResult{}
	for rows.Next() {
		var id, data string
		var rev int
		if err := rows.Scan(&id, &data, &rev); err != nil {
			return nil, storeErr(err)
		}
		var r TestResult
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, err
		}
		r.ID = id
		r.Revision = rev
		out[id] = r
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveResult(ctx context.Context, r TestResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO test_results (result_id, data, revision) VALUES ($1,$2,$3)
		 ON CONFLICT (result_id) DO UPDATE SET data=EXCLUDED.data, revision=EXCLUDED.revision`,
		r.ID, string(data), r.Revision)
	return storeErr(err)
}

// UpdateResult is compare-and-swap on the revision column. The source
// system had no isolation here; the guard is a documented strengthening.
func (s *SQLStore) UpdateResult(ctx context.Context, r TestResult) error {
	next := r
	next.Revision = r.Revision + 1
	data, err := json.Marshal(next)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE test_results SET data=$1, revision=$2 WHERE result_id=$3 AND revision=$4`,
		string(data), next.Revision, r.ID, r.Revision)
	if err != nil {
		return storeErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row vanished or someone got there first.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM test_results WHERE result_id=$1`, r.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return storeErr(err)
		}
		return ErrConflict
	}
	return nil
}

func (s *SQLStore) GetVerifications(ctx context.Context, testID string) ([]Verification, error) {
	var rows *sql.Rows
	var err error
	if testID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT test_id, question_id, verified_by, verified_by_name, verified_at FROM verifications`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT test_id, question_id, verified_by, verified_by_name, verified_at
			 FROM verifications WHERE test_id=$1`, testID)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()
	out := []Verification{}
	for rows.Next() {
		var v Verification
		var at int64
		if err := rows.Scan(&v.TestID, &v.QuestionID, &v.VerifiedBy, &v.VerifiedByName, &at); err != nil {
			return nil, storeErr(err)
		}
		v.VerifiedAt = unixTime(at)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveVerification(ctx context.Context, v Verification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verifications (test_id, question_id, verified_by, verified_by_name, verified_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (test_id, question_id) DO UPDATE SET verified_by=EXCLUDED.verified_by,
		   verified_by_name=EXCLUDED.verified_by_name, verified_at=EXCLUDED.verified_at`,
		v.TestID, v.QuestionID, v.VerifiedBy, v.VerifiedByName, v.VerifiedAt.Unix())
	return storeErr(err)
}

func (s *SQLStore) DeleteVerification(ctx context.Context, testID string, questionID int) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM verifications WHERE test_id=$1 AND question_id=$2`, testID, questionID)
	return storeErr(err)
}
