package rbac

import "github.com/kdrivas1989/judgetest/internal/quiz"

// RolePermissions is the whole authorization policy. Handlers never
// compare roles directly; they declare a permission and let the checker
// decide.
var RolePermissions = map[quiz.Role][]string{
	quiz.RoleStudent: {
		"test:view",
		"test:submit",
		"result:view-own",
	},
	quiz.RoleProctor: {
		"test:view",
		"test:edit",
		"answerkey:view",
		"result:view",
		"result:approve-ref",
		"student:manage",
		"user:change_password",
		"proctor:overview",
	},
	quiz.RoleReviewer: {
		"test:view",
		"answerkey:view",
		"verify:*",
	},
	quiz.RoleAdmin: {
		"*", // everything
	},
}
