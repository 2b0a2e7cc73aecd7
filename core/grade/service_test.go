package grade_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/grade"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/subject"
	dummydb "github.com/trezcool/gradeportal/storage/database/dummy"
	"github.com/trezcool/gradeportal/tests"
)

type fixtures struct {
	svc         *grade.Service
	gradeRepo   grade.Repository
	studentRepo student.Repository
	subjectRepo subject.Repository
}

func setup(t *testing.T) fixtures {
	db := dummydb.Open()
	f := fixtures{
		gradeRepo:   dummydb.NewGradeRepository(db),
		studentRepo: dummydb.NewStudentRepository(db),
		subjectRepo: dummydb.NewSubjectRepository(db),
	}
	f.svc = grade.NewService(f.gradeRepo, f.studentRepo, f.subjectRepo)
	return f
}

func mockNow(t *testing.T, now time.Time) {
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func TestService_Assign(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, f.studentRepo, "Amani", "6A", nil)
	math := testutil.CreateSubject(t, f.subjectRepo, "Mathematics")

	day1 := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	mockNow(t, day1)
	g1, err := f.svc.Assign(ctx, s.ID, math.ID, 85)
	require.NoError(t, err)
	assert.Equal(t, 85.0, g1.Value)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), g1.DateAssigned)

	// same pair: overwritten, never duplicated
	day2 := day1.Add(48 * time.Hour)
	mockNow(t, day2)
	g2, err := f.svc.Assign(ctx, s.ID, math.ID, 92)
	require.NoError(t, err)
	assert.Equal(t, g1.ID, g2.ID)
	assert.Equal(t, 92.0, g2.Value)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), g2.DateAssigned)
	assert.Equal(t, day1, g2.CreatedAt)
	assert.Equal(t, day2, g2.UpdatedAt)

	grades, err := f.svc.ListByStudent(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 92.0, grades[0].Value)
	assert.Equal(t, "Mathematics", grades[0].SubjectName)
	assert.Equal(t, "Amani", grades[0].StudentName)
}

func TestService_Assign_errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, f.studentRepo, "Amani", "6A", nil)
	math := testutil.CreateSubject(t, f.subjectRepo, "Mathematics")

	tests := []struct {
		name      string
		studentID int64
		subjectID int64
		value     float64
		wantErr   func(error) bool
		wantCause error
	}{
		{name: "negative value", studentID: s.ID, subjectID: math.ID, value: -1, wantErr: core.IsValidation},
		{name: "value above 100", studentID: s.ID, subjectID: math.ID, value: 100.5, wantErr: core.IsValidation},
		{name: "invalid value & unknown student", studentID: 999, subjectID: math.ID, value: 101, wantErr: core.IsValidation},
		{name: "unknown student", studentID: 999, subjectID: math.ID, value: 50, wantCause: student.ErrNotFound},
		{name: "unknown subject", studentID: s.ID, subjectID: 999, value: 50, wantCause: subject.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Assign(ctx, tt.studentID, tt.subjectID, tt.value)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err), err)
			}
			if tt.wantCause != nil {
				assert.Equal(t, tt.wantCause, err)
			}
		})
	}

	// nothing was persisted
	grades, err := f.svc.ListByStudent(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, grades)
}

func TestService_UpdateDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, f.studentRepo, "Amani", "6A", nil)
	math := testutil.CreateSubject(t, f.subjectRepo, "Mathematics")
	g := testutil.CreateGrade(t, f.gradeRepo, s.ID, math.ID, 40)

	_, err := f.svc.Update(ctx, g.ID, 101)
	assert.True(t, core.IsValidation(err))

	_, err = f.svc.Update(ctx, 999, 50)
	assert.Equal(t, grade.ErrNotFound, err)

	updated, err := f.svc.Update(ctx, g.ID, 75)
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.Value)
	assert.Equal(t, g.CreatedAt, updated.CreatedAt)

	require.NoError(t, f.svc.Delete(ctx, g.ID))
	assert.Equal(t, grade.ErrNotFound, f.svc.Delete(ctx, g.ID))
}

func TestService_ReportCard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.CreateStudent(t, f.studentRepo, "Amani", "6A", nil)
	other := testutil.CreateStudent(t, f.studentRepo, "Baraka", "6A", nil)

	_, err := f.svc.ReportCard(ctx, 999)
	assert.Equal(t, student.ErrNotFound, err)

	// no grades
	rc, err := f.svc.ReportCard(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, rc.TotalGrades)
	assert.Equal(t, 0.0, rc.AverageGrade)
	assert.Equal(t, grade.StatusNA, rc.OverallStatus)
	assert.Equal(t, "Amani", rc.StudentName)
	assert.Equal(t, "6A", rc.Section)

	for i, v := range []float64{90, 40, 70, 20} {
		subj := testutil.CreateSubject(t, f.subjectRepo, "Subject"+string(rune('A'+i)))
		testutil.CreateGrade(t, f.gradeRepo, s.ID, subj.ID, v)
		testutil.CreateGrade(t, f.gradeRepo, other.ID, subj.ID, 100)
	}

	rc, err = f.svc.ReportCard(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, rc.StudentID)
	assert.Equal(t, 4, rc.TotalGrades)
	assert.Equal(t, 2, rc.PassedGrades)
	assert.Equal(t, 2, rc.FailedGrades)
	assert.Equal(t, 55.0, rc.AverageGrade)
	assert.Equal(t, grade.StatusGood, rc.OverallStatus)
	for _, g := range rc.Grades {
		assert.Equal(t, s.ID, g.StudentID)
	}
}

func TestService_ListBySubject(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s1 := testutil.CreateStudent(t, f.studentRepo, "Amani", "6A", nil)
	s2 := testutil.CreateStudent(t, f.studentRepo, "Baraka", "6B", nil)
	math := testutil.CreateSubject(t, f.subjectRepo, "Mathematics")
	art := testutil.CreateSubject(t, f.subjectRepo, "Art")

	old := testutil.CreateGrade(t, f.gradeRepo, s1.ID, math.ID, 50, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	recent := testutil.CreateGrade(t, f.gradeRepo, s2.ID, math.ID, 60, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	testutil.CreateGrade(t, f.gradeRepo, s1.ID, art.ID, 70)

	_, err := f.svc.ListBySubject(ctx, 999)
	assert.Equal(t, subject.ErrNotFound, err)

	grades, err := f.svc.ListBySubject(ctx, math.ID)
	require.NoError(t, err)
	require.Len(t, grades, 2)
	// most recent first
	assert.Equal(t, recent.ID, grades[0].ID)
	assert.Equal(t, old.ID, grades[1].ID)
}
