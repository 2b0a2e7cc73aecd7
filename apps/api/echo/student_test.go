package echoapi_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/user"
	"github.com/trezcool/gradeportal/tests"
)

func Test_studentApi_query(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	_, studentToken := app.createUser(t, "student", user.RoleStudent)

	zawadi := testutil.CreateStudent(t, app.studentRepo, "Zawadi", "6A", nil)
	amina := testutil.CreateStudent(t, app.studentRepo, "Amina", "6B", nil)
	baraka := testutil.CreateStudent(t, app.studentRepo, "Baraka", "6A", nil)
	amin := testutil.CreateStudent(t, app.studentRepo, "Mohamed Amin", "6A", nil)

	path := func(search, section, ordering string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if section != "" {
			v.Add("section", section)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		return "/api/students?" + v.Encode()
	}

	tests := []httpTest{
		{name: "Auth required", path: "/api/students", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Teacher required (admin)", path: "/api/students", token: adminToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Teacher required (student)", path: "/api/students", token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", path: "/api/students", token: teacherToken, wantData: marchallList(t, amina, baraka, amin, zawadi)},
		{name: "search (unknown)", path: path("lol", "", ""), token: teacherToken, wantData: marchallList(t)},
		{name: "search=AMIN", path: path("AMIN", "", ""), token: teacherToken, wantData: marchallList(t, amina, amin)},
		{name: "section=6A", path: path("", "6A", ""), token: teacherToken, wantData: marchallList(t, baraka, amin, zawadi)},
		{name: "search & section", path: path("amin", "6A", ""), token: teacherToken, wantData: marchallList(t, amin)},
		{name: "order by -name", path: path("", "", "-name"), token: teacherToken, wantData: marchallList(t, zawadi, amin, baraka, amina)},
		{name: "order by section,-name", path: path("", "", "section,-name"), token: teacherToken, wantData: marchallList(t, zawadi, amin, baraka, amina)},
		{name: "order by unknown field", path: path("", "", "password"), token: teacherToken, wantData: marchallList(t, amina, baraka, amin, zawadi)},
	}
	app.run(t, tests)
}

func Test_studentApi_create(t *testing.T) {
	app := setup(t)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	usr, _ := app.createUser(t, "amani", user.RoleStudent)
	testutil.CreateStudent(t, app.studentRepo, "Baraka", "6A", nil)

	body := func(name, section string, userID *int64) []byte {
		return marchallObj(t, student.NewStudent{Name: name, Section: section, UserID: userID})
	}

	tests := []httpTest{
		{name: "Teacher required", body: body("Amani", "6A", nil), token: adminToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "required fields", body: []byte(`{"name": "  "}`), token: teacherToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "section": "this field is required"}),
		},
		{
			name: "duplicate in section", body: body("Baraka", "6A", nil), token: teacherToken, wantCode: http.StatusConflict,
			wantData: marchallObj(t, map[string]string{"name": "a student with this name already exists in this section"}),
		},
		{
			name: "unknown user", body: body("Amani", "6A", testutil.Int64Ptr(999)), token: teacherToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"user_id": "user not found"}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/students"
	}
	app.run(t, tests)

	t.Run("created", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/api/students", teacherToken, body(" Amani ", "6A", &usr.ID))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got student.Student
		unmarshal(t, rec, &got)
		assert.Equal(t, "Amani", got.Name)
		assert.True(t, got.IsOwnedBy(usr.ID))
		checkCodeAndData(t, httpTest{wantCode: http.StatusCreated, wantData: marchallObj(t, app.refetchStudent(t, got.ID))}, rec)

		// a user links to one student at most
		rec = app.do(http.MethodPost, "/api/students", teacherToken, body("Amani", "6B", &usr.ID))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, map[string]string{"user_id": "this user is already linked to a student"}),
		}, rec)
	})
}

func Test_studentApi_retrieve(t *testing.T) {
	app := setup(t)
	_, adminToken := app.createUser(t, "admin", user.RoleAdmin)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	usr, studentToken := app.createUser(t, "amani", user.RoleStudent)
	other, otherToken := app.createUser(t, "baraka", user.RoleStudent)

	amani := testutil.CreateStudent(t, app.studentRepo, "Amani", "6A", &usr.ID)

	detail := func(id int64) string { return fmt.Sprintf("/api/students/%d", id) }
	byUser := func(id int64) string { return fmt.Sprintf("/api/students/user/%d", id) }
	errStudentNotFound := marchallObj(t, httpErr{Error: "student not found"})

	tests := []httpTest{
		{name: "detail: teacher required", path: detail(amani.ID), token: studentToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "detail", path: detail(amani.ID), token: teacherToken, wantData: marchallObj(t, amani)},
		{name: "detail: not found", path: detail(999), token: teacherToken, wantCode: http.StatusNotFound, wantData: errStudentNotFound},
		{name: "detail: malformed id", path: "/api/students/0", token: teacherToken, wantCode: http.StatusNotFound},

		{name: "by user: own record", path: byUser(usr.ID), token: studentToken, wantData: marchallObj(t, amani)},
		{name: "by user: other's record", path: byUser(usr.ID), token: otherToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "by user: no record", path: byUser(other.ID), token: otherToken, wantCode: http.StatusNotFound, wantData: errStudentNotFound},
		{name: "by user: teacher", path: byUser(usr.ID), token: teacherToken, wantData: marchallObj(t, amani)},
		{name: "by user: admin", path: byUser(usr.ID), token: adminToken, wantData: marchallObj(t, amani)},
	}
	app.run(t, tests)
}

func Test_studentApi_updateDestroy(t *testing.T) {
	app := setup(t)
	_, teacherToken := app.createUser(t, "teacher", user.RoleTeacher)
	_, studentToken := app.createUser(t, "student", user.RoleStudent)

	amani := testutil.CreateStudent(t, app.studentRepo, "Amani", "6A", nil)
	baraka := testutil.CreateStudent(t, app.studentRepo, "Baraka", "6A", nil)
	graded := testutil.CreateStudent(t, app.studentRepo, "Zawadi", "6B", nil)
	math := testutil.CreateSubject(t, app.subjectRepo, "Mathematics")
	g := testutil.CreateGrade(t, app.gradeRepo, graded.ID, math.ID, 75)

	detail := func(id int64) string { return fmt.Sprintf("/api/students/%d", id) }
	body := func(name, section string) []byte {
		return marchallObj(t, student.UpdateStudent{Name: name, Section: section})
	}

	tests := []httpTest{
		{name: "update: teacher required", method: http.MethodPut, path: detail(amani.ID), body: body("Amani", "6B"), token: studentToken, wantCode: http.StatusForbidden},
		{
			name: "update: duplicate", method: http.MethodPut, path: detail(amani.ID), body: body("Baraka", "6A"), token: teacherToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, map[string]string{"name": "a student with this name already exists in this section"}),
		},
		{name: "update: not found", method: http.MethodPut, path: detail(999), body: body("X", "6A"), token: teacherToken, wantCode: http.StatusNotFound},
		{name: "update", method: http.MethodPut, path: detail(amani.ID), body: body("Amani K.", "6B"), token: teacherToken},

		{name: "delete: teacher required", method: http.MethodDelete, path: detail(baraka.ID), token: studentToken, wantCode: http.StatusForbidden},
		{
			name: "delete: has grades", method: http.MethodDelete, path: detail(graded.ID), token: teacherToken,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "student has grades and cannot be deleted"}),
		},
		{name: "delete", method: http.MethodDelete, path: detail(baraka.ID), token: teacherToken, wantCode: http.StatusNoContent},
		{name: "delete: not found", method: http.MethodDelete, path: detail(baraka.ID), token: teacherToken, wantCode: http.StatusNotFound},
	}
	app.run(t, tests)

	updated := app.refetchStudent(t, amani.ID)
	assert.Equal(t, "Amani K.", updated.Name)
	assert.Equal(t, "6B", updated.Section)

	// the graded student & their grades are untouched
	app.refetchStudent(t, graded.ID)
	assert.Equal(t, 75.0, app.refetchGrade(t, g.ID).Value)
}
