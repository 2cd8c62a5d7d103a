package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// LoadTestsFile reads seed test content from a JSON file: either an array
// of tests or an object keyed by test id. Every test is validated before
// any is returned.
func LoadTestsFile(path string) (map[string]Test, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []Test
	if err := json.Unmarshal(raw, &list); err != nil {
		var keyed map[string]Test
		if err2 := json.Unmarshal(raw, &keyed); err2 != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		for id, t := range keyed {
			if t.ID == "" {
				t.ID = id
			}
			list = append(list, t)
		}
	}
	out := make(map[string]Test, len(list))
	for _, t := range list {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: test with empty id in %s", ErrValidation, path)
		}
		if err := ValidateQuestions(t.Questions); err != nil {
			return nil, fmt.Errorf("test %s: %w", t.ID, err)
		}
		out[t.ID] = t
	}
	return out, nil
}

// SeedTests inserts seed tests that the store does not already hold.
// Existing tests are left alone so proctor edits survive restarts.
func SeedTests(ctx context.Context, store Store, seeds map[string]Test) error {
	for id, t := range seeds {
		if _, err := store.GetTest(ctx, id); err == nil {
			continue
		}
		if err := store.SaveTest(ctx, t); err != nil {
			return fmt.Errorf("seed test %s: %w", id, err)
		}
	}
	return nil
}

// SeedAdmin creates the default admin account on first boot.
func SeedAdmin(ctx context.Context, store Store, username, passwordHash string) error {
	if _, err := store.GetUser(ctx, username); err == nil {
		return nil
	}
	return store.SaveUser(ctx, User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
		Name:         "Administrator",
	})
}
