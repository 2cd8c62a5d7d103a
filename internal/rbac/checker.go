package rbac

import (
	"context"
	"strings"

	"github.com/kdrivas1989/judgetest/internal/quiz"
)

type Checker struct {
	perms map[quiz.Role][]string
}

func NewChecker(perms map[quiz.Role][]string) *Checker {
	if perms == nil {
		perms = RolePermissions
	}
	return &Checker{perms: perms}
}

func (c *Checker) Has(role quiz.Role, perm string) bool {
	for _, p := range c.perms[role] {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role quiz.Role, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// ---- identity in context ----

type ctxKey int

const (
	ctxKeySubject ctxKey = iota
	ctxKeyRole
	ctxKeyName
)

func WithIdentity(ctx context.Context, subject string, role quiz.Role, name string) context.Context {
	ctx = context.WithValue(ctx, ctxKeySubject, subject)
	ctx = context.WithValue(ctx, ctxKeyRole, role)
	return context.WithValue(ctx, ctxKeyName, name)
}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeySubject).(string)
	return s
}

func RoleFromContext(ctx context.Context) quiz.Role {
	r, _ := ctx.Value(ctxKeyRole).(quiz.Role)
	return r
}

func NameFromContext(ctx context.Context) string {
	s, _ := ctx.Value(ctxKeyName).(string)
	return s
}
