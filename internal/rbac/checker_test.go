package rbac

import (
	"context"
	"testing"

	"github.com/kdrivas1989/judgetest/internal/quiz"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role quiz.Role
		perm string
		want bool
	}{
		{quiz.RoleStudent, "test:view", true},
		{quiz.RoleStudent, "test:submit", true},
		{quiz.RoleStudent, "answerkey:view", false},
		{quiz.RoleStudent, "student:manage", false},
		{quiz.RoleProctor, "answerkey:view", true},
		{quiz.RoleProctor, "test:edit", true},
		{quiz.RoleProctor, "verify:add", false},
		{quiz.RoleReviewer, "verify:add", true},
		{quiz.RoleReviewer, "verify:remove", true},
		{quiz.RoleReviewer, "result:view", false},
		{quiz.RoleAdmin, "anything:at:all", true},
		{quiz.Role("ghost"), "test:view", false},
	}
	for _, tt := range tests {
		if got := c.Has(tt.role, tt.perm); got != tt.want {
			t.Errorf("Has(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any(quiz.RoleStudent, "student:manage", "test:view") {
		t.Error("Any should pass when one permission matches")
	}
	if c.Any(quiz.RoleStudent, "student:manage", "verify:add") {
		t.Error("Any should fail when none match")
	}
}

func TestMatchPerm(t *testing.T) {
	tests := []struct {
		pattern, perm string
		want          bool
	}{
		{"*", "anything", true},
		{"verify:*", "verify:add", true},
		{"verify:*", "verify:remove", true},
		{"verify:*", "result:view", false},
		{"test:view", "test:view", true},
		{"test:view", "test:viewer", false},
	}
	for _, tt := range tests {
		if got := matchPerm(tt.pattern, tt.perm); got != tt.want {
			t.Errorf("matchPerm(%q, %q) = %v, want %v", tt.pattern, tt.perm, got, tt.want)
		}
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), "pat", quiz.RoleProctor, "Pat Chen")
	if got := SubjectFromContext(ctx); got != "pat" {
		t.Errorf("subject = %q", got)
	}
	if got := RoleFromContext(ctx); got != quiz.RoleProctor {
		t.Errorf("role = %q", got)
	}
	if got := NameFromContext(ctx); got != "Pat Chen" {
		t.Errorf("name = %q", got)
	}

	empty := context.Background()
	if SubjectFromContext(empty) != "" || RoleFromContext(empty) != "" || NameFromContext(empty) != "" {
		t.Error("empty context should yield zero identity")
	}
}
