package student_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/user"
	dummydb "github.com/trezcool/gradeportal/storage/database/dummy"
	"github.com/trezcool/gradeportal/tests"
)

type fixtures struct {
	db       *dummydb.DB
	svc      *student.Service
	repo     student.Repository
	userRepo user.Repository
}

func setup(t *testing.T) fixtures {
	t.Helper()
	db := dummydb.Open()
	f := fixtures{
		db:       db,
		repo:     dummydb.NewStudentRepository(db),
		userRepo: dummydb.NewUserRepository(db),
	}
	f.svc = student.NewService(f.repo, f.userRepo)
	return f
}

func names(students []student.Student) []string {
	res := make([]string, 0, len(students))
	for _, s := range students {
		res = append(res, s.Name)
	}
	return res
}

func TestService_Create(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, f.userRepo, "amani", "S3cure!Pwd", user.RoleStudent, user.StatusApproved)

	s, err := f.svc.Create(ctx, student.NewStudent{Name: "Amani", Section: "6A", UserID: &usr.ID})
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.True(t, s.IsOwnedBy(usr.ID))

	linked, err := f.svc.GetByUserID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, linked.ID)

	// same name in another section is fine
	_, err = f.svc.Create(ctx, student.NewStudent{Name: "Amani", Section: "6B"})
	assert.NoError(t, err)

	tests := []struct {
		name    string
		ns      student.NewStudent
		wantErr func(error) bool
		wantMsg string
	}{
		{
			name:    "duplicate name in section",
			ns:      student.NewStudent{Name: "Amani", Section: "6A"},
			wantErr: core.IsConflict,
			wantMsg: student.ErrStudentExists.Error(),
		},
		{
			name:    "user already linked",
			ns:      student.NewStudent{Name: "Baraka", Section: "6A", UserID: &usr.ID},
			wantErr: core.IsConflict,
			wantMsg: student.ErrUserLinked.Error(),
		},
		{
			name:    "unknown user",
			ns:      student.NewStudent{Name: "Baraka", Section: "6A", UserID: testutil.Int64Ptr(999)},
			wantErr: core.IsValidation,
			wantMsg: student.ErrUserNotFound.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.ns)
			require.Error(t, err)
			assert.True(t, tt.wantErr(err), err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestService_Query(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	testutil.CreateStudent(t, f.repo, "Zawadi", "6A", nil)
	testutil.CreateStudent(t, f.repo, "amina", "6B", nil)
	testutil.CreateStudent(t, f.repo, "Baraka", "6A", nil)
	testutil.CreateStudent(t, f.repo, "Mohamed Amin", "6A", nil)

	tests := []struct {
		name      string
		filter    student.QueryFilter
		orderings []core.DBOrdering
		want      []string
	}{
		{name: "all", want: []string{"Baraka", "Mohamed Amin", "Zawadi", "amina"}},
		{name: "search is case-insensitive", filter: student.QueryFilter{Search: " AMIN "}, want: []string{"Mohamed Amin", "amina"}},
		{name: "section", filter: student.QueryFilter{Section: "6A"}, want: []string{"Baraka", "Mohamed Amin", "Zawadi"}},
		{name: "search & section", filter: student.QueryFilter{Search: "amin", Section: "6B"}, want: []string{"amina"}},
		{name: "no match", filter: student.QueryFilter{Search: "%"}, want: []string{}},
		{
			name:      "ordering",
			filter:    student.QueryFilter{Section: "6A"},
			orderings: []core.DBOrdering{{Field: "name", Ascending: false}},
			want:      []string{"Zawadi", "Mohamed Amin", "Baraka"},
		},
		{
			name:      "unknown ordering field is ignored",
			filter:    student.QueryFilter{Section: "6A"},
			orderings: []core.DBOrdering{{Field: "password", Ascending: false}},
			want:      []string{"Baraka", "Mohamed Amin", "Zawadi"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			students, err := f.svc.Query(ctx, tt.filter, tt.orderings...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(students))
		})
	}
}

func TestService_Update(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, f.repo, "Amani", "6A", nil)
	testutil.CreateStudent(t, f.repo, "Baraka", "6B", nil)

	updated, err := f.svc.Update(ctx, s.ID, student.UpdateStudent{Name: "Amani K.", Section: "6B"})
	require.NoError(t, err)
	assert.Equal(t, "Amani K.", updated.Name)
	assert.Equal(t, "6B", updated.Section)

	_, err = f.svc.Update(ctx, s.ID, student.UpdateStudent{Name: "Baraka", Section: "6B"})
	assert.True(t, core.IsConflict(err))

	_, err = f.svc.Update(ctx, 999, student.UpdateStudent{Name: "X", Section: "6B"})
	assert.Equal(t, student.ErrNotFound, err)
}

func TestService_Delete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, f.repo, "Amani", "6A", nil)
	other := testutil.CreateStudent(t, f.repo, "Baraka", "6A", nil)
	subj := testutil.CreateSubject(t, dummydb.NewSubjectRepository(f.db), "Mathematics")
	gradeRepo := dummydb.NewGradeRepository(f.db)
	g := testutil.CreateGrade(t, gradeRepo, s.ID, subj.ID, 75)

	err := f.svc.Delete(ctx, s.ID)
	require.Error(t, err)
	assert.True(t, core.IsConflict(err))
	assert.Equal(t, student.ErrHasGrades.Error(), err.Error())

	// nothing deleted
	_, err = f.svc.GetByID(ctx, s.ID)
	assert.NoError(t, err)
	_, err = gradeRepo.GetGradeByID(ctx, g.ID)
	assert.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, other.ID))
	_, err = f.svc.GetByID(ctx, other.ID)
	assert.Equal(t, student.ErrNotFound, err)
	assert.Equal(t, student.ErrNotFound, f.svc.Delete(ctx, other.ID))
}

func TestService_userDeletionUnlinks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, f.userRepo, "amani", "S3cure!Pwd", user.RoleStudent, user.StatusApproved)
	s := testutil.CreateStudent(t, f.repo, "Amani", "6A", &usr.ID)

	require.NoError(t, f.userRepo.DeleteUser(ctx, usr.ID))

	s, err := f.svc.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, s.UserID)
	_, err = f.svc.GetByUserID(ctx, usr.ID)
	assert.Equal(t, student.ErrNotFound, err)
}
