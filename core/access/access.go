// Package access holds the role-gated operation table and the single check consulting it.
package access

import (
	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/user"
)

type Operation string

const (
	// public
	Signup Operation = "signup"
	Login  Operation = "login"

	// admin
	ListTeachers         Operation = "users:list-teachers"
	ListPendingUsers     Operation = "users:list-pending"
	ApproveUser          Operation = "users:approve"
	DeclineUser          Operation = "users:decline"
	DeleteUser           Operation = "users:delete"
	AssignTeacher        Operation = "users:assign-teacher"
	ListApprovedStudents Operation = "users:list-students"

	// teacher
	ListStudents      Operation = "students:list"
	RetrieveStudent   Operation = "students:retrieve"
	CreateStudent     Operation = "students:create"
	UpdateStudent     Operation = "students:update"
	DeleteStudent     Operation = "students:delete"
	ListSubjects      Operation = "subjects:list"
	CreateSubject     Operation = "subjects:create"
	UpdateSubject     Operation = "subjects:update"
	DeleteSubject     Operation = "subjects:delete"
	ViewGrades        Operation = "grades:list-by-student"
	ViewSubjectGrades Operation = "grades:list-by-subject"
	CreateGrade       Operation = "grades:create"
	UpdateGrade       Operation = "grades:update"
	DeleteGrade       Operation = "grades:delete"

	// any authenticated user
	ViewReportCard Operation = "grades:report-card"
	ViewOwnUser    Operation = "users:current"
	ViewOwnStudent Operation = "students:by-user"
	RefreshToken   Operation = "auth:token-refresh"
)

var (
	adminOnly   = []user.Role{user.RoleAdmin}
	teacherOnly = []user.Role{user.RoleTeacher}
	staff       = []user.Role{user.RoleAdmin, user.RoleTeacher}
	anyRole     = user.AllRoles

	// permissions maps every Operation to the roles allowed to perform it.
	// A nil role set marks a public operation.
	permissions = map[Operation][]user.Role{
		Signup: nil,
		Login:  nil,

		ListTeachers:         adminOnly,
		ListPendingUsers:     adminOnly,
		ApproveUser:          adminOnly,
		DeclineUser:          adminOnly,
		DeleteUser:           adminOnly,
		AssignTeacher:        adminOnly,
		ListApprovedStudents: staff,

		ListStudents:      teacherOnly,
		RetrieveStudent:   teacherOnly,
		CreateStudent:     teacherOnly,
		UpdateStudent:     teacherOnly,
		DeleteStudent:     teacherOnly,
		ListSubjects:      teacherOnly,
		CreateSubject:     adminOnly,
		UpdateSubject:     adminOnly,
		DeleteSubject:     adminOnly,
		ViewGrades:        teacherOnly,
		ViewSubjectGrades: teacherOnly,
		CreateGrade:       teacherOnly,
		UpdateGrade:       teacherOnly,
		DeleteGrade:       teacherOnly,

		ViewReportCard: anyRole,
		ViewOwnUser:    anyRole,
		ViewOwnStudent: anyRole,
		RefreshToken:   anyRole,
	}
)

// IsPublic reports whether op can be performed without credentials.
func IsPublic(op Operation) bool {
	roles, ok := permissions[op]
	return ok && roles == nil
}

// Roles returns the roles allowed to perform op.
func Roles(op Operation) []user.Role {
	return permissions[op]
}

// Operations returns all known operations.
func Operations() []Operation {
	ops := make([]Operation, 0, len(permissions))
	for op := range permissions {
		ops = append(ops, op)
	}
	return ops
}

// Authorize checks that `role` may perform `op`.
// Unknown operations are denied.
func Authorize(role user.Role, op Operation) error {
	roles, ok := permissions[op]
	if !ok {
		return core.ErrForbidden
	}
	if roles == nil {
		return nil
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return core.ErrForbidden
}
