package quiz

import (
	"context"
	"strconv"
	"strings"
	"sync"
)

type memoryStore struct {
	mu            sync.RWMutex
	tests         map[string]Test
	users         map[string]User
	results       map[string]TestResult
	verifications map[string]Verification // key: testID|questionID
}

// NewInMemoryStore returns a Store backed by process memory. Used by unit
// tests and as the degraded-mode fallback when the database is unreachable
// at startup.
func NewInMemoryStore() Store {
	return &memoryStore{
		tests:         map[string]Test{},
		users:         map[string]User{},
		results:       map[string]TestResult{},
		verifications: map[string]Verification{},
	}
}

func vkey(testID string, questionID int) string {
	return testID + "|" + strconv.Itoa(questionID)
}

func (m *memoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrNotFound
	}
	return t, nil
}

func (m *memoryStore) ListTests(_ context.Context) (map[string]Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Test, len(m.tests))
	for id, t := range m.tests {
		out[id] = t
	}
	return out, nil
}

func (m *memoryStore) SaveTest(_ context.Context, t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetUser(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[strings.ToLower(username)]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memoryStore) ListUsers(_ context.Context) (map[string]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]User, len(m.users))
	for id, u := range m.users {
		out[id] = u
	}
	return out, nil
}

func (m *memoryStore) SaveUser(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[strings.ToLower(u.Username)] = u
	return nil
}

func (m *memoryStore) DeleteUser(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, strings.ToLower(username))
	return nil
}

func (m *memoryStore) GetResult(_ context.Context, id string) (TestResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[id]
	if !ok {
		return TestResult{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) ListResults(_ context.Context) (map[string]TestResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]TestResult, len(m.results))
	for id, r := range m.results {
		out[id] = r
	}
	return out, nil
}

func (m *memoryStore) SaveResult(_ context.Context, r TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.ID] = r
	return nil
}

func (m *memoryStore) UpdateResult(_ context.Context, r TestResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.results[r.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Revision != r.Revision {
		return ErrConflict
	}
	r.Revision++
	m.results[r.ID] = r
	return nil
}

func (m *memoryStore) GetVerifications(_ context.Context, testID string) ([]Verification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Verification{}
	for _, v := range m.verifications {
		if testID == "" || v.TestID == testID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveVerification(_ context.Context, v Verification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications[vkey(v.TestID, v.QuestionID)] = v
	return nil
}

func (m *memoryStore) DeleteVerification(_ context.Context, testID string, questionID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.verifications, vkey(testID, questionID))
	return nil
}
