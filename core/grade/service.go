package grade

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/gradeportal/core"
	"github.com/trezcool/gradeportal/core/student"
	"github.com/trezcool/gradeportal/core/subject"
)

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("grade")
	ErrInvalidValue = errors.New("grade must be between 0 and 100")
)

type (
	Repository interface {
		// UpsertGrade inserts the grade or, when one already exists for (student_id, subject_id),
		// overwrites its value, date_assigned & updated_at in the same statement.
		UpsertGrade(ctx context.Context, g Grade) (Grade, error)
		GetGradeByID(ctx context.Context, id int64) (Grade, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
		DeleteGrade(ctx context.Context, id int64) error
		// QueryGradeDetails returns grade projections ordered by date_assigned desc then id desc.
		QueryGradeDetails(ctx context.Context, filter QueryFilter) ([]Detail, error)
	}

	StudentFinder interface {
		GetStudentByID(ctx context.Context, id int64) (student.Student, error)
	}

	SubjectFinder interface {
		GetSubjectByID(ctx context.Context, id int64) (subject.Subject, error)
	}

	Service struct {
		repo     Repository
		students StudentFinder
		subjects SubjectFinder
	}
)

func NewService(repo Repository, students StudentFinder, subjects SubjectFinder) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(subjects, "subjects"),
	).CheckAndPanic()
	return &Service{repo: repo, students: students, subjects: subjects}
}

// Assign sets the grade of a student in a subject: it creates the Grade, or overwrites the value
// and date of the existing one for that (student, subject) pair.
func (svc *Service) Assign(ctx context.Context, studentID, subjectID int64, value float64) (Grade, error) {
	if err := checkValue(value); err != nil {
		return Grade{}, err
	}
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return Grade{}, err
	}
	if _, err := svc.subjects.GetSubjectByID(ctx, subjectID); err != nil {
		return Grade{}, err
	}

	now := core.NowFunc()
	g := Grade{
		StudentID:    studentID,
		SubjectID:    subjectID,
		Value:        value,
		DateAssigned: core.Today(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	g, err := svc.repo.UpsertGrade(ctx, g)
	if err != nil {
		return Grade{}, errors.Wrap(err, "upserting grade")
	}
	return g, nil
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Grade, error) {
	return svc.repo.GetGradeByID(ctx, id)
}

// Update overwrites the value and date of an existing Grade.
func (svc *Service) Update(ctx context.Context, id int64, value float64) (Grade, error) {
	if err := checkValue(value); err != nil {
		return Grade{}, err
	}
	g, err := svc.repo.GetGradeByID(ctx, id)
	if err != nil {
		return Grade{}, err
	}
	g.Value = value
	g.DateAssigned = core.Today()
	g.UpdatedAt = core.NowFunc()

	if g, err = svc.repo.UpdateGrade(ctx, g); err != nil {
		return Grade{}, errors.Wrap(err, "updating grade")
	}
	return g, nil
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteGrade(ctx, id)
}

// ListByStudent returns the grades of a student, most recent first.
func (svc *Service) ListByStudent(ctx context.Context, studentID int64) ([]Detail, error) {
	if _, err := svc.students.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryGradeDetails(ctx, QueryFilter{StudentID: studentID})
}

// ListBySubject returns the grades given in a subject, most recent first.
func (svc *Service) ListBySubject(ctx context.Context, subjectID int64) ([]Detail, error) {
	if _, err := svc.subjects.GetSubjectByID(ctx, subjectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryGradeDetails(ctx, QueryFilter{SubjectID: subjectID})
}

// ReportCard computes the report card of a student.
func (svc *Service) ReportCard(ctx context.Context, studentID int64) (ReportCard, error) {
	s, err := svc.students.GetStudentByID(ctx, studentID)
	if err != nil {
		return ReportCard{}, err
	}
	grades, err := svc.repo.QueryGradeDetails(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return ReportCard{}, errors.Wrap(err, "querying student grades")
	}

	rc := NewReportCard(grades)
	rc.StudentID = s.ID
	rc.StudentName = s.Name
	rc.Section = s.Section
	return rc, nil
}
